package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/harmony/internal/cli"
	"github.com/theirongolddev/harmony/internal/export"
	"github.com/theirongolddev/harmony/internal/model"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export projects, history and company expenses to Excel",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output .xlsx path (default harmony-YYYY-MM-DD.xlsx)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	data := export.Data{
		Active:  env.mgr.Active(),
		History: env.mgr.History(),
	}
	// The company ledger is per user; without a session only projects are exported.
	var entries []model.BusinessExpense
	if s, err := env.session(ctx); err == nil {
		if entries, err = env.ledgerFor(s).List(ctx); err != nil {
			return err
		}
	}
	data.Ledger = entries

	out := flagExportOut
	if out == "" {
		out = fmt.Sprintf("harmony-%s.xlsx", time.Now().Format("2006-01-02"))
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	//nolint:gosec // output path is chosen by the local user
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := export.WriteWorkbook(f, data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Println(cli.RenderOK(fmt.Sprintf("Exportado a %s (%d activas, %d en historial, %d gastos de empresa)",
		out, len(data.Active), len(data.History), len(data.Ledger))))
	return nil
}
