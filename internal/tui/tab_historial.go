package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/harmony/internal/cli"
	"github.com/theirongolddev/harmony/internal/finance"
	"github.com/theirongolddev/harmony/internal/invoice"
	"github.com/theirongolddev/harmony/internal/model"
	"github.com/theirongolddev/harmony/internal/tui/components"
	"github.com/theirongolddev/harmony/internal/tui/theme"
)

func (a App) renderHistorialTab(cw, h int) string {
	t := theme.Active
	list := a.visibleHistory()
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var search string
	if a.hist.searching {
		search = a.hist.input.View() + "\n"
	}

	if len(list) == 0 {
		msg := "Aún no hay obras finalizadas."
		if a.hist.query != "" {
			msg = fmt.Sprintf("Sin resultados para “%s”.", a.hist.query)
		}
		return components.ContentCard("Historial", search+muted.Render(msg), cw)
	}

	var profit float64
	for _, c := range a.history {
		profit += finance.ArchivedProfit(c)
	}

	leftW := max(cw/3, 30)
	left := components.ContentCard(
		fmt.Sprintf("Historial (%d)", len(list)),
		search+a.renderClientList(list, a.hist, 0, components.CardInnerWidth(leftW), h-4),
		leftW,
	)
	right := renderArchivedDetail(list[a.hist.cursor], profit, cw-leftW)
	return components.CardRow([]string{left, right})
}

func renderArchivedDetail(c model.Client, totalProfit float64, w int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	field := func(k, v string) string {
		return label.Render(fmt.Sprintf("%-16s", k)) + value.Render(v)
	}

	profit := finance.ArchivedProfit(c)
	profitColor := t.Green
	if profit < 0 {
		profitColor = t.Red
	}

	var b strings.Builder
	b.WriteString(field("Factura", invoice.Number(c)) + "\n")
	b.WriteString(field("Descripción", c.Desc) + "\n")
	b.WriteString(field("Periodo", c.Start+" → "+c.End) + "\n\n")
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Total", Value: cli.FormatCOPShort(c.Total)},
		{Label: "Recibido", Value: cli.FormatCOPShort(c.Abono()), Color: t.Accent},
		{Label: "Gastos", Value: cli.FormatCOPShort(finance.TotalSpent(c)), Color: t.Orange},
		{Label: "Ganancia", Value: cli.FormatCOPShort(profit), Color: profitColor},
	}, components.CardInnerWidth(w)))
	b.WriteString("\n")
	b.WriteString(field("Ganancia total", cli.FormatCOP(totalProfit)) + "\n")
	b.WriteString(label.Render("Factura PDF: harmony history invoice " + fmt.Sprint(c.ID)))

	return components.ContentCard(c.Name, b.String(), w)
}
