package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/harmony/internal/cli"
	"github.com/theirongolddev/harmony/internal/clients"
	"github.com/theirongolddev/harmony/internal/finance"
	"github.com/theirongolddev/harmony/internal/invoice"
	"github.com/theirongolddev/harmony/internal/model"
)

var (
	flagHistorySearch string
	flagInvoiceOut    string
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"historial"},
	Short:   "Browse finalized projects",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List finalized projects",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a finalized project",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a finalized project (admin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRm,
}

var historyInvoiceCmd = &cobra.Command{
	Use:   "invoice <id>",
	Short: "Write the closing invoice as a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryInvoice,
}

var historyShareCmd = &cobra.Command{
	Use:   "share <id>",
	Short: "Print the WhatsApp message and link for a finalized project",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShare,
}

func init() {
	historyListCmd.Flags().StringVarP(&flagHistorySearch, "search", "s", "", "Filter by name or description")
	historyInvoiceCmd.Flags().StringVarP(&flagInvoiceOut, "out", "o", "", "Output file (defaults to the invoice directory)")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyRmCmd, historyInvoiceCmd, historyShareCmd)
	rootCmd.AddCommand(historyCmd)
}

func findArchived(env *appEnv, arg string) (model.Client, error) {
	id, err := parseID(arg)
	if err != nil {
		return model.Client{}, err
	}
	c, ok := env.mgr.FindArchived(id)
	if !ok {
		return c, fmt.Errorf("obra %d en historial: %w", id, clients.ErrNotFound)
	}
	return c, nil
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()

	list := clients.Search(env.mgr.History(), flagHistorySearch)
	if len(list) == 0 {
		fmt.Println("\n  El historial está vacío.")
		return nil
	}

	var profit float64
	rows := make([][]string, 0, len(list)+2)
	for _, c := range list {
		p := finance.ArchivedProfit(c)
		profit += p
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			c.End,
			cli.FormatCOP(c.Total),
			cli.FormatCOP(finance.TotalSpent(c)),
			cli.FormatCOP(p),
		})
	}
	rows = append(rows, []string{"---"}, []string{"", "Total", "", "", "", cli.FormatCOP(profit)})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Historial",
		Headers: []string{"ID", "Cliente", "Finalizada", "Total", "Gastos", "Ganancia"},
		Rows:    rows,
	}))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()

	c, err := findArchived(env, args[0])
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(c.Name + "  " + invoice.Number(c)))
	fmt.Print(cli.RenderField("Descripción", c.Desc))
	fmt.Print(cli.RenderField("Periodo", c.Start+" → "+c.End))
	fmt.Print(cli.RenderField("Total", cli.FormatCOP(c.Total)))
	fmt.Print(cli.RenderField("Recibido", cli.FormatCOP(c.Abono())))
	fmt.Print(cli.RenderField("Gastos", cli.FormatCOP(finance.TotalSpent(c))))
	fmt.Print(cli.RenderField("Ganancia", cli.FormatCOP(finance.ArchivedProfit(c))))
	fmt.Println()
	fmt.Print(renderExpenses(c.Expenses))
	return nil
}

func runHistoryRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	if _, err := env.admin(ctx); err != nil {
		return err
	}
	c, err := findArchived(env, args[0])
	if err != nil {
		return err
	}
	if err := env.mgr.DeleteFromHistory(ctx, c.ID); err != nil {
		return err
	}
	fmt.Println(cli.RenderOK("Eliminada del historial: " + c.Name))
	return nil
}

func runHistoryInvoice(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()

	c, err := findArchived(env, args[0])
	if err != nil {
		return err
	}

	out := flagInvoiceOut
	if out == "" {
		dir := cfg.Invoice.OutputDir
		if dir == "" {
			dir = "."
		}
		out = filepath.Join(dir, fmt.Sprintf("factura-%d.pdf", c.ID))
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
		return fmt.Errorf("creating invoice directory: %w", err)
	}

	//nolint:gosec // output path is chosen by the local user
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating invoice file: %w", err)
	}
	if err := invoice.WritePDF(f, invoice.Build(c, business(cfg), time.Now())); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Println(cli.RenderOK("Factura " + invoice.Number(c) + " guardada en " + out))
	return nil
}

func runHistoryShare(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()

	c, err := findArchived(env, args[0])
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(invoice.ShareMessage(c))
	fmt.Println()
	if c.Phone == "" {
		fmt.Println(cli.RenderMuted("  Sin teléfono registrado; copia el mensaje manualmente."))
		return nil
	}
	fmt.Println("  " + invoice.WhatsAppURL(c))
	return nil
}
