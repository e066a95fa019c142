// Package cmd implements the harmony CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/harmony/internal/cli"
	"github.com/theirongolddev/harmony/internal/config"
	"github.com/theirongolddev/harmony/internal/logging"
	"github.com/theirongolddev/harmony/internal/store"
)

var (
	flagVerbose bool
	flagQuiet   bool
	flagLogJSON bool
	flagOffline bool
	flagDataDir string
	flagBackend string
)

var (
	cfg config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "harmony",
	Short:         "Harmony Glass project finance manager",
	Long:          "Track glass installation projects: contract totals, down payments, expenses, and company costs.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		log = logging.New(os.Stderr, logging.Options{
			Verbose: flagVerbose,
			JSON:    flagLogJSON,
			Quiet:   flagQuiet,
		})
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		if flagDataDir != "" {
			cfg.General.DataDir = flagDataDir
		}
		if flagBackend != "" {
			cfg.Storage.Backend = flagBackend
		}
		if flagOffline {
			cfg.Remote.URL = ""
		}
		return nil
	},
	RunE: runDashboard,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, cli.RenderError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Log as JSON lines")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "Ignore the remote endpoint for this run")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory for the local database")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Storage backend: sqlite, redis or memory")
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()

	active := env.mgr.Active()
	if len(active) == 0 {
		fmt.Println("\n  No hay obras activas.")
		fmt.Println("  Crea una con `harmony client new`.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("HARMONY GLASS  Obras activas"))
	fmt.Println()
	fmt.Print(renderProjects(active))

	p := env.mgr.Portfolio()
	fmt.Println()
	fmt.Print(cli.RenderField("Contratado", cli.FormatCOP(p.TotalContracted)))
	fmt.Print(cli.RenderField("Recaudado", cli.FormatCOP(p.TotalCollected)))
	fmt.Print(cli.RenderField("Por cobrar", cli.FormatCOP(p.PendingCollection)))
	if saved := lastSaved(cmd.Context(), env.kv); saved != "" {
		fmt.Print(cli.RenderField("Guardado", saved))
	}
	return nil
}

// lastSaved describes when the active collection was last written, or ""
// when the backend does not track it.
func lastSaved(ctx context.Context, kv store.KV) string {
	at, ok, err := store.LastWrite(ctx, kv, store.KeyClients)
	if err != nil || !ok {
		return ""
	}
	return humanize.Time(at)
}
