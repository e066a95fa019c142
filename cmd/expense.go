package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/harmony/internal/cli"
	"github.com/theirongolddev/harmony/internal/clients"
	"github.com/theirongolddev/harmony/internal/finance"
	"github.com/theirongolddev/harmony/internal/model"
)

var flagExpenseRef string

var expenseCmd = &cobra.Command{
	Use:     "expense",
	Aliases: []string{"gasto"},
	Short:   "Charge or remove project expenses (admin)",
}

var expenseAddCmd = &cobra.Command{
	Use:   "add <client-id> <item> <amount>",
	Short: "Charge an expense to a project's cash box",
	Args:  cobra.ExactArgs(3),
	RunE:  runExpenseAdd,
}

var expenseRmCmd = &cobra.Command{
	Use:   "rm <client-id> <expense-id>",
	Short: "Remove an expense from a project",
	Args:  cobra.ExactArgs(2),
	RunE:  runExpenseRm,
}

func init() {
	expenseAddCmd.Flags().StringVarP(&flagExpenseRef, "ref", "r", "", "Reference or supplier")

	expenseCmd.AddCommand(expenseAddCmd, expenseRmCmd)
	rootCmd.AddCommand(expenseCmd)
}

// activeClient resolves a project id argument to an active project.
func activeClient(env *appEnv, arg string) (model.Client, error) {
	id, err := parseID(arg)
	if err != nil {
		return model.Client{}, err
	}
	c, ok := env.mgr.Find(id)
	if !ok {
		return c, fmt.Errorf("obra %d: %w", id, clients.ErrNotFound)
	}
	return c, nil
}

func runExpenseAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	if _, err := env.admin(ctx); err != nil {
		return err
	}
	c, err := activeClient(env, args[0])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[2])
	if err != nil {
		return err
	}

	exp, err := env.mgr.AddExpense(ctx, c.ID, model.ExpenseInput{Item: args[1], Ref: flagExpenseRef, Amount: amount})
	if err != nil {
		return err
	}
	updated, _ := env.mgr.Find(c.ID)
	m := finance.Snapshot(updated)
	fmt.Println(cli.RenderOK(fmt.Sprintf("Gasto #%d: %s por %s", exp.ID, exp.Item, cli.FormatCOP(exp.Amount))))
	fmt.Print(cli.RenderField("Caja restante", cli.FormatCOP(m.Remaining)))
	fmt.Print(cli.RenderField("Estado", cli.RenderStatus(updated.Status)))
	if m.OverBudget {
		fmt.Print(cli.RenderField("Alerta", "Sobrecosto: los gastos superan el abono"))
	}
	return nil
}

func runExpenseRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	if _, err := env.admin(ctx); err != nil {
		return err
	}
	c, err := activeClient(env, args[0])
	if err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	if err := env.mgr.RemoveExpense(ctx, c.ID, id); err != nil {
		return err
	}
	fmt.Println(cli.RenderOK(fmt.Sprintf("Gasto #%d eliminado de %s", id, c.Name)))
	return nil
}
