package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/harmony/internal/auth"
	"github.com/theirongolddev/harmony/internal/config"
	"github.com/theirongolddev/harmony/internal/store"
)

func TestParseAmount(t *testing.T) {
	for in, want := range map[string]float64{
		"1500000":     1500000,
		"1.500.000":   1500000,
		"$ 2,000,000": 2000000,
		" 750000 ":    750000,
	} {
		got, err := parseAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseAmount("mil")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := parseID(" 1712345678901 ")
	require.NoError(t, err)
	assert.Equal(t, int64(1712345678901), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestDirectoryFromConfig(t *testing.T) {
	hash, err := auth.HashPIN("4321")
	require.NoError(t, err)

	c := config.DefaultConfig()
	c.Auth.Users = []config.UserConfig{{Name: "maria", Role: "admin", PINHash: hash}}

	dir, err := directoryFrom(c)
	require.NoError(t, err)

	u, err := dir.Authenticate("maria", "4321")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, u.Role)

	_, err = dir.Authenticate("admin", "1989")
	assert.NoError(t, err, "built-in users remain")

	c.Auth.Users[0].Role = "owner"
	_, err = directoryFrom(c)
	assert.Error(t, err)
}

func TestBusinessOverrides(t *testing.T) {
	c := config.DefaultConfig()
	b := business(c)
	assert.Equal(t, "HARMONY GLASS", b.Name)

	c.Invoice.BusinessName = "Vidrios Andinos"
	c.Invoice.City = "Bogotá"
	b = business(c)
	assert.Equal(t, "Vidrios Andinos", b.Name)
	assert.Equal(t, "Bogotá", b.City)
	assert.NotEmpty(t, b.NIT)
}

func TestMaskURL(t *testing.T) {
	assert.Equal(t, "redis://****@cache:6379/0", maskURL("redis://user:pw@cache:6379/0"))
	assert.Equal(t, "https://script.example.com/exec?…", maskURL("https://script.example.com/exec?token=abc"))
	assert.Equal(t, "http://localhost:8787", maskURL("http://localhost:8787"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "abcd...wxyz", maskSecret("abcdefghijklmnopqrstuvwxyz"))
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", ":9000", "--detach=true"})
	assert.Equal(t, []string{"serve", "--addr", ":9000"}, got)
}

func TestProjectCommandsTakeExplicitIDs(t *testing.T) {
	for _, sub := range clientCmd.Commands() {
		assert.NotEqual(t, "select", sub.Name())
	}

	assert.Error(t, clientShowCmd.Args(clientShowCmd, nil))
	assert.NoError(t, clientShowCmd.Args(clientShowCmd, []string{"7"}))

	assert.Error(t, expenseAddCmd.Args(expenseAddCmd, []string{"Vidrio", "50000"}))
	assert.NoError(t, expenseAddCmd.Args(expenseAddCmd, []string{"7", "Vidrio", "50000"}))

	assert.Error(t, expenseRmCmd.Args(expenseRmCmd, []string{"3"}))
	assert.NoError(t, expenseRmCmd.Args(expenseRmCmd, []string{"7", "3"}))
	assert.Nil(t, expenseCmd.PersistentFlags().Lookup("client"))
}

func TestLastSaved(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, lastSaved(ctx, store.NewMemory()))

	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "harmony.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	assert.Empty(t, lastSaved(ctx, db))

	require.NoError(t, store.SetJSON(ctx, db, store.KeyClients, []int{}))
	assert.Regexp(t, `^(now|\d+ seconds? ago)$`, lastSaved(ctx, db))
}
