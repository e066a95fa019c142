package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/harmony/internal/config"
	"github.com/theirongolddev/harmony/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Storage]")
	fmt.Printf("    Backend:   %s\n", cfg.Storage.Backend)
	switch cfg.Storage.Backend {
	case store.BackendRedis:
		fmt.Printf("    Redis URL: %s\n", maskURL(cfg.Storage.RedisURL))
		fmt.Printf("    Prefix:    %s\n", cfg.Storage.RedisPrefix)
	case store.BackendMemory:
		fmt.Println("    Nothing is persisted between runs")
	default:
		fmt.Printf("    Database:  %s\n", config.SQLitePath(cfg))
	}
	fmt.Println()

	fmt.Println("  [Remote]")
	if cfg.Remote.URL != "" {
		fmt.Printf("    URL:     %s\n", maskURL(cfg.Remote.URL))
		fmt.Printf("    Timeout: %s\n", config.RemoteTimeout(cfg))
	} else {
		fmt.Println("    URL: not configured (local mode)")
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:    %s\n", cfg.Server.Addr)
	if cfg.Server.JWTSecret != "" {
		fmt.Printf("    JWT secret: %s\n", maskSecret(cfg.Server.JWTSecret))
	} else {
		fmt.Println("    JWT secret: not configured")
	}
	fmt.Printf("    Token TTL:  %dh\n", cfg.Server.TokenTTLHours)
	fmt.Printf("    Login rate: %s\n", cfg.Server.LoginRate)
	if len(cfg.Server.AllowedOrigins) > 0 {
		fmt.Printf("    Origins:    %s\n", strings.Join(cfg.Server.AllowedOrigins, ", "))
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	b := business(cfg)
	fmt.Println("  [Invoice]")
	fmt.Printf("    Business: %s\n", b.Name)
	fmt.Printf("    NIT:      %s\n", b.NIT)
	fmt.Printf("    City:     %s\n", b.City)
	if cfg.Invoice.OutputDir != "" {
		fmt.Printf("    Output:   %s\n", cfg.Invoice.OutputDir)
	}
	fmt.Println()

	if len(cfg.Auth.Users) > 0 {
		fmt.Println("  [Auth]")
		for _, u := range cfg.Auth.Users {
			fmt.Printf("    %-12s %s\n", u.Name, u.Role)
		}
		fmt.Println()
	}

	fmt.Println("  Run `harmony setup` to reconfigure.")
	return nil
}

func maskSecret(key string) string {
	if len(key) > 16 {
		return key[:4] + "..." + key[len(key)-4:]
	}
	return "****"
}

// maskURL hides any userinfo and query string.
func maskURL(raw string) string {
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[:i] + "?…"
	}
	if at := strings.LastIndex(raw, "@"); at >= 0 {
		if scheme := strings.Index(raw, "://"); scheme >= 0 && scheme < at {
			raw = raw[:scheme+3] + "****" + raw[at:]
		}
	}
	return raw
}
