package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/harmony/internal/cli"
	"github.com/theirongolddev/harmony/internal/clients"
	"github.com/theirongolddev/harmony/internal/finance"
	"github.com/theirongolddev/harmony/internal/model"
)

var (
	flagClientName     string
	flagClientDesc     string
	flagClientPhone    string
	flagClientLocation string
	flagClientTotal    float64
	flagClientAbono    float64
	flagClientSearch   string
)

var clientCmd = &cobra.Command{
	Use:     "client",
	Aliases: []string{"obra"},
	Short:   "Manage active projects",
}

var clientNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Register a new project (admin)",
	RunE:  runClientNew,
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active projects",
	RunE:  runClientList,
}

var clientShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one project with its expenses",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientShow,
}

var clientAbonoCmd = &cobra.Command{
	Use:   "abono <id> <amount>",
	Short: "Set the amount received from the customer (admin)",
	Args:  cobra.ExactArgs(2),
	RunE:  runClientAbono,
}

var clientArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Finalize a project and move it to history (admin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientArchive,
}

func init() {
	clientNewCmd.Flags().StringVar(&flagClientName, "name", "", "Customer name")
	clientNewCmd.Flags().StringVar(&flagClientDesc, "desc", "", "Work description")
	clientNewCmd.Flags().StringVar(&flagClientPhone, "phone", "", "Customer phone")
	clientNewCmd.Flags().StringVar(&flagClientLocation, "location", "", "Site address")
	clientNewCmd.Flags().Float64Var(&flagClientTotal, "total", 0, "Contract total in pesos")
	clientNewCmd.Flags().Float64Var(&flagClientAbono, "abono", model.DefaultAbonoPercent, "Down payment percent")

	clientListCmd.Flags().StringVarP(&flagClientSearch, "search", "s", "", "Filter by name or description")

	clientCmd.AddCommand(clientNewCmd, clientListCmd, clientShowCmd, clientAbonoCmd, clientArchiveCmd)
	rootCmd.AddCommand(clientCmd)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id inválido %q", s)
	}
	return id, nil
}

func parseAmount(s string) (float64, error) {
	v, err := model.ParseAmount(s)
	if err != nil {
		return 0, fmt.Errorf("monto inválido %q", s)
	}
	return v, nil
}

func runClientNew(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	if _, err := env.admin(ctx); err != nil {
		return err
	}

	in := model.NewClientInput{
		Name:     flagClientName,
		Desc:     flagClientDesc,
		Phone:    flagClientPhone,
		Location: flagClientLocation,
		Total:    flagClientTotal,
	}
	if cmd.Flags().Changed("abono") {
		in.AbonoPercent = model.Float(flagClientAbono)
	}
	if in.Name == "" || in.Total <= 0 {
		if err := promptNewClient(cmd, &in); err != nil {
			return err
		}
	}

	c, err := env.mgr.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Println(cli.RenderOK(fmt.Sprintf("Obra #%d creada para %s", c.ID, c.Name)))
	fmt.Print(renderClient(c))
	return nil
}

func promptNewClient(cmd *cobra.Command, in *model.NewClientInput) error {
	total := ""
	if in.Total > 0 {
		total = strconv.FormatFloat(in.Total, 'f', 0, 64)
	}
	abono := strconv.FormatFloat(model.DefaultAbonoPercent, 'f', 0, 64)

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Cliente").Value(&in.Name).Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("requerido")
			}
			return nil
		}),
		huh.NewInput().Title("Descripción de la obra").Placeholder(model.DefaultDesc).Value(&in.Desc),
		huh.NewInput().Title("Teléfono").Value(&in.Phone),
		huh.NewInput().Title("Ubicación").Value(&in.Location),
		huh.NewInput().Title("Valor total").Value(&total).Validate(func(s string) error {
			v, err := parseAmount(s)
			if err != nil || v <= 0 {
				return errors.New("debe ser mayor que cero")
			}
			return nil
		}),
		huh.NewInput().Title("Abono %").Value(&abono),
	))
	if err := form.RunWithContext(cmd.Context()); err != nil {
		return err
	}

	v, err := parseAmount(total)
	if err != nil {
		return err
	}
	in.Total = v
	if pct, err := strconv.ParseFloat(strings.TrimSpace(abono), 64); err == nil {
		in.AbonoPercent = model.Float(pct)
	}
	return nil
}

func runClientList(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()

	list := clients.Search(env.mgr.Active(), flagClientSearch)
	if len(list) == 0 {
		fmt.Println("\n  No hay obras que coincidan.")
		return nil
	}
	fmt.Println()
	fmt.Print(renderProjects(list))
	return nil
}

func runClientShow(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	c, ok := env.mgr.Find(id)
	if !ok {
		return fmt.Errorf("obra %d: %w", id, clients.ErrNotFound)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(c.Name))
	fmt.Print(renderClient(c))
	fmt.Println()
	fmt.Print(renderExpenses(c.Expenses))
	return nil
}

func runClientAbono(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	if _, err := env.admin(ctx); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	c, err := env.mgr.SetAbono(ctx, id, amount)
	if err != nil {
		return err
	}
	fmt.Println(cli.RenderOK(fmt.Sprintf("Abono de %s actualizado a %s (%s)", c.Name, cli.FormatCOP(c.Abono()), c.Pct)))
	return nil
}

func runClientArchive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	if _, err := env.admin(ctx); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	c, ok := env.mgr.Find(id)
	if !ok {
		return fmt.Errorf("obra %d: %w", id, clients.ErrNotFound)
	}
	if err := env.mgr.Archive(ctx, id); err != nil {
		return err
	}
	fmt.Println(cli.RenderOK(fmt.Sprintf("Obra de %s finalizada. Ganancia: %s", c.Name, cli.FormatCOP(finance.ArchivedProfit(c)))))
	return nil
}

// renderProjects renders the active-projects table.
func renderProjects(list []model.Client) string {
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		m := finance.Snapshot(c)
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			cli.FormatCOP(c.Total),
			cli.FormatCOP(m.Abono),
			cli.FormatCOP(m.TotalSpent),
			cli.FormatCOP(m.Remaining),
			cli.RenderCajaBar(m.CajaPercent, m.Band, 10),
		})
	}
	return cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Cliente", "Total", "Abono", "Gastado", "Caja", "Estado caja"},
		Rows:    rows,
	})
}

func renderClient(c model.Client) string {
	m := finance.Snapshot(c)
	var b strings.Builder
	b.WriteString(cli.RenderField("ID", strconv.FormatInt(c.ID, 10)))
	b.WriteString(cli.RenderField("Descripción", c.Desc))
	if c.Phone != "" {
		b.WriteString(cli.RenderField("Teléfono", c.Phone))
	}
	if c.Location != "" {
		b.WriteString(cli.RenderField("Ubicación", c.Location))
	}
	b.WriteString(cli.RenderField("Inicio", c.Start))
	b.WriteString(cli.RenderField("Estado", cli.RenderStatus(c.Status)))
	b.WriteString(cli.RenderField("Total", cli.FormatCOP(c.Total)))
	b.WriteString(cli.RenderField("Abono", cli.FormatCOP(m.Abono)+" ("+c.Pct+")"))
	b.WriteString(cli.RenderField("Gastado", cli.FormatCOP(m.TotalSpent)))
	b.WriteString(cli.RenderField("Caja restante", cli.FormatCOP(m.Remaining)))
	b.WriteString(cli.RenderField("Caja", cli.RenderCajaBar(m.CajaPercent, m.Band, 20)))
	b.WriteString(cli.RenderField("Utilidad", cli.FormatCOP(m.Utility)+" ("+cli.FormatPercent(m.UtilityPercent)+")"))
	if m.OverBudget {
		b.WriteString(cli.RenderField("Alerta", "Sobrecosto: los gastos superan el abono"))
	}
	return b.String()
}

func renderExpenses(list []model.Expense) string {
	if len(list) == 0 {
		return cli.RenderMuted("  Sin gastos registrados") + "\n"
	}
	rows := make([][]string, 0, len(list)+2)
	var total float64
	for _, e := range list {
		total += e.Amount
		rows = append(rows, []string{strconv.FormatInt(e.ID, 10), e.Item, e.Ref, cli.FormatCOP(e.Amount)})
	}
	rows = append(rows, []string{"---"}, []string{"", "Total", "", cli.FormatCOP(total)})
	return cli.RenderTable(cli.Table{
		Title:   "Gastos",
		Headers: []string{"ID", "Ítem", "Referencia", "Monto"},
		Rows:    rows,
	})
}
