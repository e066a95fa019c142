package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/harmony/internal/cli"
	"github.com/theirongolddev/harmony/internal/tui/components"
	"github.com/theirongolddev/harmony/internal/tui/theme"
)

func (a App) renderPagosTab(cw int) string {
	t := theme.Active
	p := a.portfolio

	utilityColor := t.Green
	if p.TotalUtility < 0 {
		utilityColor = t.Red
	}
	cards := components.MetricCardRow([]components.Metric{
		{Label: "Contratado", Value: cli.FormatCOP(p.TotalContracted), Note: fmt.Sprintf("%d obras", p.Projects)},
		{Label: "Recaudado", Value: cli.FormatCOP(p.TotalCollected), Color: t.Accent},
		{Label: "Por cobrar", Value: cli.FormatCOP(p.PendingCollection), Color: t.Yellow},
		{Label: "Utilidad", Value: cli.FormatCOP(p.TotalUtility), Color: utilityColor,
			Note: fmt.Sprintf("%d con sobrecosto", p.OverBudget)},
	}, cw)

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if len(p.Rows) == 0 {
		return cards + "\n" + components.ContentCard("Pagos por obra", muted.Render("No hay obras activas."), cw)
	}

	inner := components.CardInnerWidth(cw)
	nameW := max(inner-5*14, 10)
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	loss := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	var b strings.Builder
	b.WriteString(header.Render(fmt.Sprintf("%-*s%14s%14s%14s%14s%14s",
		nameW, "Cliente", "Total", "Abono", "Pendiente", "Gastado", "Utilidad")))
	for _, r := range p.Rows {
		pending := r.Client.Total - r.Metrics.Abono
		style := row
		if r.IsLoss {
			style = loss
		}
		b.WriteString("\n")
		b.WriteString(style.Render(fmt.Sprintf("%-*s%14s%14s%14s%14s%14s",
			nameW, truncStr(r.Client.Name, nameW),
			cli.FormatCOPShort(r.Client.Total),
			cli.FormatCOPShort(r.Metrics.Abono),
			cli.FormatCOPShort(pending),
			cli.FormatCOPShort(r.Metrics.TotalSpent),
			cli.FormatCOPShort(r.Metrics.Utility))))
	}

	return cards + "\n" + components.ContentCard("Pagos por obra", b.String(), cw)
}
