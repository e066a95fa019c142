package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	t.Setenv(EnvRemoteURL, "")
	t.Setenv(EnvRedisURL, "")
	t.Setenv(EnvJWTSecret, "")
	t.Chdir(dir)
	return dir
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	useTempConfigDir(t)
	assert.False(t, Exists())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	useTempConfigDir(t)

	cfg := DefaultConfig()
	cfg.Remote.URL = "https://script.example.com/exec"
	cfg.Storage.Backend = "redis"
	cfg.Auth.Users = []UserConfig{{Name: "maria", Role: "admin", PINHash: "$2a$10$abc"}}
	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestEnvOverridesFile(t *testing.T) {
	useTempConfigDir(t)
	cfg := DefaultConfig()
	cfg.Remote.URL = "https://file.example.com"
	require.NoError(t, Save(cfg))

	t.Setenv(EnvRemoteURL, "https://env.example.com")
	t.Setenv(EnvJWTSecret, "from-env")

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", got.Remote.URL)
	assert.Equal(t, "from-env", got.Server.JWTSecret)
}

func TestDotEnvLoaded(t *testing.T) {
	dir := useTempConfigDir(t)
	require.NoError(t, os.Unsetenv(EnvRedisURL))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HARMONY_REDIS_URL=redis://localhost:6379/2\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv(EnvRedisURL) })

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/2", got.Storage.RedisURL)
}

func TestLoadRejectsBadTOML(t *testing.T) {
	dir := useTempConfigDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[storage\nbackend="), 0o600))

	_, err := Load()
	assert.Error(t, err)
}

func TestDerivedPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.DataDir = "/srv/harmony"
	assert.Equal(t, "/srv/harmony/harmony.db", SQLitePath(cfg))

	cfg.Storage.SQLitePath = "/tmp/x.db"
	assert.Equal(t, "/tmp/x.db", SQLitePath(cfg))

	assert.Equal(t, 15*time.Second, RemoteTimeout(DefaultConfig()))
	cfg.Remote.TimeoutSec = 0
	assert.Equal(t, time.Duration(0), RemoteTimeout(cfg))
}
