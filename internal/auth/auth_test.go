package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/theirongolddev/harmony/internal/store"
)

func TestAuthenticateBuiltins(t *testing.T) {
	d := NewDirectory()
	tests := []struct {
		user, pin string
		role      Role
	}{
		{"admin", "1989", RoleAdmin},
		{"  ADMIN ", "1989", RoleAdmin},
		{"lector", "1234", RoleBasic},
		{"Johan", "1111", RoleBasic},
	}
	for _, tt := range tests {
		u, err := d.Authenticate(tt.user, tt.pin)
		require.NoError(t, err, tt.user)
		assert.Equal(t, tt.role, u.Role)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	d := NewDirectory()
	_, err := d.Authenticate("admin", "0000")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = d.Authenticate("nobody", "1989")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDirectoryExtraUserOverrides(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("4321"), bcrypt.MinCost)
	require.NoError(t, err)
	d := NewDirectory(User{Name: "Admin", Role: RoleAdmin, PINHash: hash})

	_, err = d.Authenticate("admin", "1989")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = d.Authenticate("admin", "4321")
	assert.NoError(t, err)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)
	r, err = ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleBasic, r)
	_, err = ParseRole("root")
	assert.Error(t, err)
}

func TestLoginPersistsSession(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := NewSessions(kv, NewDirectory())

	_, ok, err := s.Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	sess, err := s.Login(ctx, " Admin", "1989")
	require.NoError(t, err)
	assert.Equal(t, Session{Username: "admin", Role: RoleAdmin}, sess)
	assert.True(t, sess.IsAdmin())

	raw, _, _ := kv.Get(ctx, store.KeySession)
	assert.Equal(t, `"admin"`, string(raw))

	cur, err := s.Require(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, cur)

	require.NoError(t, s.Logout(ctx))
	_, err = s.Require(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestBasicRoleForbidden(t *testing.T) {
	sess := Session{Username: "lector", Role: RoleBasic}
	assert.ErrorIs(t, sess.RequireAdmin(), ErrForbidden)
	assert.NoError(t, Session{Role: RoleAdmin}.RequireAdmin())
}

func TestBiometricLogin(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := NewSessions(kv, NewDirectory(), WithBiometricDelays(20*time.Millisecond, 10*time.Millisecond))

	require.NoError(t, s.SetBiometric(ctx, true))
	on, err := s.BiometricEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, on)

	start := time.Now()
	_, err = s.Login(ctx, "lector", "1234")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestBiometricLoginCancelled(t *testing.T) {
	kv := store.NewMemory()
	s := NewSessions(kv, NewDirectory(), WithBiometricDelays(time.Hour, 0))
	require.NoError(t, s.SetBiometric(context.Background(), true))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Login(ctx, "lector", "1234")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, ok, _ := s.Current(context.Background())
	assert.False(t, ok)
}

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens("s3cret", time.Hour)
	require.NoError(t, err)

	raw, exp, err := tokens.Issue(Session{Username: "admin", Role: RoleAdmin})
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	sess, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, Session{Username: "admin", Role: RoleAdmin}, sess)
}

func TestTokensRejectTamperedAndExpired(t *testing.T) {
	tokens, err := NewTokens("s3cret", time.Hour)
	require.NoError(t, err)

	other, _ := NewTokens("different", time.Hour)
	raw, _, err := other.Issue(Session{Username: "admin", Role: RoleAdmin})
	require.NoError(t, err)
	_, err = tokens.Parse(raw)
	assert.Error(t, err)

	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err = tokens.Issue(Session{Username: "admin", Role: RoleAdmin})
	require.NoError(t, err)
	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestNewTokensRequiresSecret(t *testing.T) {
	_, err := NewTokens("", time.Hour)
	assert.Error(t, err)
}
