// Package config loads and saves harmony's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment overrides.
const (
	EnvRemoteURL = "HARMONY_REMOTE_URL"
	EnvRedisURL  = "HARMONY_REDIS_URL"
	EnvJWTSecret = "HARMONY_JWT_SECRET"
	EnvConfigDir = "HARMONY_CONFIG_DIR"
)

// Config holds all harmony configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Storage    StorageConfig    `toml:"storage"`
	Remote     RemoteConfig     `toml:"remote"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
	Invoice    InvoiceConfig    `toml:"invoice"`
	Auth       AuthConfig       `toml:"auth"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir string `toml:"data_dir,omitempty"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend     string `toml:"backend"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	RedisURL    string `toml:"redis_url,omitempty"`
	RedisPrefix string `toml:"redis_prefix,omitempty"`
}

// RemoteConfig points at the optional mirror endpoint.
type RemoteConfig struct {
	URL        string `toml:"url,omitempty"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	JWTSecret      string   `toml:"jwt_secret,omitempty"`
	TokenTTLHours  int      `toml:"token_ttl_hours"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
	LoginRate      string   `toml:"login_rate"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// InvoiceConfig overrides the invoice letterhead.
type InvoiceConfig struct {
	BusinessName string `toml:"business_name,omitempty"`
	NIT          string `toml:"nit,omitempty"`
	City         string `toml:"city,omitempty"`
	OutputDir    string `toml:"output_dir,omitempty"`
}

// AuthConfig lists extra users beyond the built-in ones.
type AuthConfig struct {
	Users []UserConfig `toml:"users,omitempty"`
}

// UserConfig is one extra login. PINHash is a bcrypt hash.
type UserConfig struct {
	Name    string `toml:"name"`
	Role    string `toml:"role"`
	PINHash string `toml:"pin_hash"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend:     "sqlite",
			RedisPrefix: "harmony:",
		},
		Remote: RemoteConfig{
			TimeoutSec: 15,
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:8787",
			TokenTTLHours: 12,
			LoginRate:     "10-M",
		},
		Appearance: AppearanceConfig{
			Theme: "harmony",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "harmony")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "harmony")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the directory holding the local database.
func DataDir(cfg Config) string {
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "harmony")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "harmony")
}

// SQLitePath returns the database file path.
func SQLitePath(cfg Config) string {
	if cfg.Storage.SQLitePath != "" {
		return cfg.Storage.SQLitePath
	}
	return filepath.Join(DataDir(cfg), "harmony.db")
}

// RemoteTimeout returns the per-call remote timeout.
func RemoteTimeout(cfg Config) time.Duration {
	if cfg.Remote.TimeoutSec <= 0 {
		return 0
	}
	return time.Duration(cfg.Remote.TimeoutSec) * time.Second
}

// Load reads the config file, returning defaults if it doesn't exist, then
// applies environment overrides. A .env file in the working directory is
// loaded first without replacing variables already set.
func Load() (Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading .env: %w", err)
	}

	data, err := os.ReadFile(Path())
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvRemoteURL)); v != "" {
		cfg.Remote.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisURL)); v != "" {
		cfg.Storage.RedisURL = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		cfg.Server.JWTSecret = v
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
