package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/harmony/internal/cli"
	"github.com/theirongolddev/harmony/internal/ledger"
	"github.com/theirongolddev/harmony/internal/model"
)

var (
	flagLedgerRef      string
	flagLedgerCategory string
)

var ledgerCmd = &cobra.Command{
	Use:     "ledger",
	Aliases: []string{"caja"},
	Short:   "Company expenses for the logged-in user",
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List company expenses, newest first",
	RunE:  runLedgerList,
}

var ledgerAddCmd = &cobra.Command{
	Use:   "add <item> <amount>",
	Short: "Record a company expense (admin)",
	Args:  cobra.ExactArgs(2),
	RunE:  runLedgerAdd,
}

var ledgerRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a company expense (admin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerRm,
}

var ledgerClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every company expense (admin)",
	RunE:  runLedgerClear,
}

func init() {
	ledgerAddCmd.Flags().StringVarP(&flagLedgerRef, "ref", "r", "", "Reference or supplier")
	ledgerAddCmd.Flags().StringVar(&flagLedgerCategory, "category", "other", "Category: fuel, tools, food or other")

	ledgerCmd.AddCommand(ledgerListCmd, ledgerAddCmd, ledgerRmCmd, ledgerClearCmd)
	rootCmd.AddCommand(ledgerCmd)
}

func runLedgerList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	s, err := env.session(ctx)
	if err != nil {
		return err
	}
	list, err := env.ledgerFor(s).List(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CAJA EMPRESA  " + s.Username))
	fmt.Println()
	if len(list) == 0 {
		fmt.Println("  Sin gastos de empresa registrados.")
		return nil
	}

	sums := ledger.ByCategory(list)
	catRows := make([][]string, 0, len(model.Categories)+2)
	for _, c := range model.Categories {
		if sums[c.ID] == 0 {
			continue
		}
		catRows = append(catRows, []string{c.Label, cli.FormatCOP(sums[c.ID])})
	}
	catRows = append(catRows, []string{"---"}, []string{"Total", cli.FormatCOP(ledger.Total(list))})
	fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Categoría", "Monto"}, Rows: catRows}))
	fmt.Println()

	rows := make([][]string, 0, len(list))
	for _, e := range list {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Date,
			e.Item,
			e.Ref,
			model.CategoryByID(e.Category).Label,
			cli.FormatCOP(e.Amount),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Movimientos",
		Headers: []string{"ID", "Fecha", "Ítem", "Referencia", "Categoría", "Monto"},
		Rows:    rows,
	}))
	return nil
}

func runLedgerAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	s, err := env.admin(ctx)
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	e, err := env.ledgerFor(s).Add(ctx, model.BusinessExpenseInput{
		Item:     args[0],
		Ref:      flagLedgerRef,
		Amount:   amount,
		Category: flagLedgerCategory,
	})
	if err != nil {
		return err
	}
	fmt.Println(cli.RenderOK(fmt.Sprintf("Gasto de empresa #%d: %s por %s", e.ID, e.Item, cli.FormatCOP(e.Amount))))
	return nil
}

func runLedgerRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	s, err := env.admin(ctx)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := env.ledgerFor(s).Delete(ctx, id); err != nil {
		return err
	}
	fmt.Println(cli.RenderOK(fmt.Sprintf("Gasto de empresa #%d eliminado", id)))
	return nil
}

func runLedgerClear(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	s, err := env.admin(ctx)
	if err != nil {
		return err
	}
	if err := env.ledgerFor(s).Clear(ctx); err != nil {
		return err
	}
	fmt.Println(cli.RenderOK("Caja de empresa vaciada"))
	return nil
}
