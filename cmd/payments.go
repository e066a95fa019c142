package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/harmony/internal/cli"
)

var paymentsCmd = &cobra.Command{
	Use:     "payments",
	Aliases: []string{"pagos"},
	Short:   "Payments overview across active projects",
	RunE:    runPayments,
}

func init() {
	rootCmd.AddCommand(paymentsCmd)
}

func runPayments(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()

	p := env.mgr.Portfolio()

	fmt.Println()
	fmt.Println(cli.RenderTitle("PAGOS  Resumen de cobros"))
	fmt.Println()

	rows := [][]string{
		{"Obras activas", cli.FormatNumber(int64(p.Projects))},
		{"---"},
		{"Contratado", cli.FormatCOP(p.TotalContracted)},
		{"Recaudado", cli.FormatCOP(p.TotalCollected)},
		{"Por cobrar", cli.FormatCOP(p.PendingCollection)},
		{"---"},
		{"Gastado", cli.FormatCOP(p.TotalSpent)},
		{"Utilidad", cli.FormatCOP(p.TotalUtility)},
		{"Con sobrecosto", cli.FormatNumber(int64(p.OverBudget))},
	}
	fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Métrica", "Valor"}, Rows: rows}))

	if len(p.Rows) == 0 {
		return nil
	}
	detail := make([][]string, 0, len(p.Rows))
	for _, r := range p.Rows {
		name := r.Client.Name
		if r.IsLoss {
			name += " ⚠"
		}
		detail = append(detail, []string{
			name,
			cli.FormatCOP(r.Client.Total),
			cli.FormatCOP(r.Metrics.Abono),
			cli.FormatCOP(r.Client.Total - r.Metrics.Abono),
			cli.FormatCOP(r.Metrics.Utility),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Por obra",
		Headers: []string{"Cliente", "Total", "Abono", "Pendiente", "Utilidad"},
		Rows:    detail,
	}))
	return nil
}
