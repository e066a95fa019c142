package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/harmony/internal/cli"
	"github.com/theirongolddev/harmony/internal/finance"
	"github.com/theirongolddev/harmony/internal/model"
	"github.com/theirongolddev/harmony/internal/tui/components"
	"github.com/theirongolddev/harmony/internal/tui/theme"
)

func (a App) renderObrasTab(cw, h int) string {
	t := theme.Active
	list := a.visibleActive()
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var search string
	if a.obras.searching {
		search = a.obras.input.View() + "\n"
	}

	if len(list) == 0 {
		msg := "No hay obras activas. Crea una con `harmony client new`."
		if a.obras.query != "" {
			msg = fmt.Sprintf("Sin resultados para “%s”.", a.obras.query)
		}
		return components.ContentCard("Obras", search+muted.Render(msg), cw)
	}

	leftW := max(cw/3, 30)
	rightW := cw - leftW

	selected, _ := a.deps.Manager.Selected()
	left := components.ContentCard(
		fmt.Sprintf("Obras (%d)", len(list)),
		search+a.renderClientList(list, a.obras, selected.ID, components.CardInnerWidth(leftW), h-4),
		leftW,
	)
	right := a.renderClientDetail(list[a.obras.cursor], rightW)
	return components.CardRow([]string{left, right})
}

// renderClientList draws a scrolling list with the cursor row highlighted.
// marked is drawn with a dot.
func (a App) renderClientList(list []model.Client, ls listState, marked int64, w, visible int) string {
	t := theme.Active
	visible = max(visible, 3)
	offset := scrollWindow(ls.cursor, ls.offset, visible)

	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	cursor := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)

	var b strings.Builder
	end := min(offset+visible, len(list))
	for i := offset; i < end; i++ {
		c := list[i]
		prefix := "  "
		if c.ID == marked {
			prefix = "● "
		}
		badge := string(c.Status)
		nameW := max(w-lipgloss.Width(prefix)-lipgloss.Width(badge)-1, 4)
		name := fmt.Sprintf("%-*s", nameW, truncStr(c.Name, nameW))

		style := row
		if i == ls.cursor {
			style = cursor
		}
		b.WriteString(style.Render(prefix+name+" ") + components.StatusBadge(c.Status))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a App) renderClientDetail(c model.Client, w int) string {
	t := theme.Active
	m := finance.Snapshot(c)
	inner := components.CardInnerWidth(w)

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)

	field := func(k, v string) string {
		return label.Render(fmt.Sprintf("%-14s", k)) + value.Render(v)
	}

	var b strings.Builder
	b.WriteString(field("Descripción", c.Desc) + "\n")
	if c.Phone != "" {
		b.WriteString(field("Teléfono", c.Phone) + "\n")
	}
	if c.Location != "" {
		b.WriteString(field("Ubicación", c.Location) + "\n")
	}
	b.WriteString(field("Inicio", c.Start) + "\n\n")

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Total", Value: cli.FormatCOPShort(c.Total)},
		{Label: "Abono " + c.Pct, Value: cli.FormatCOPShort(m.Abono), Color: t.Accent},
		{Label: "Gastado", Value: cli.FormatCOPShort(m.TotalSpent), Color: t.Orange},
		{Label: "Caja", Value: cli.FormatCOPShort(m.Remaining), Color: t.Band(m.Band)},
	}, inner))
	b.WriteString("\n")
	b.WriteString(components.CajaBar(m.CajaPercent, m.Band, inner) + "\n")

	utility := field("Utilidad", cli.FormatCOP(m.Utility)+"  ("+cli.FormatPercent(m.UtilityPercent)+")")
	b.WriteString(utility + "\n")
	if m.OverBudget {
		b.WriteString(warn.Render("⚠ Sobrecosto: los gastos superan el abono") + "\n")
	}

	b.WriteString("\n" + label.Render("Gastos") + "\n")
	if len(c.Expenses) == 0 {
		b.WriteString(label.Render("  Sin gastos registrados"))
	}
	for i, e := range c.Expenses {
		amount := cli.FormatCOP(e.Amount)
		itemW := max(inner-lipgloss.Width(amount)-16, 6)
		b.WriteString(value.Render(fmt.Sprintf("  %-*s %-12s ", itemW, truncStr(e.Item, itemW), truncStr(e.Ref, 12))) +
			label.Render(amount))
		if i < len(c.Expenses)-1 {
			b.WriteString("\n")
		}
	}

	return components.ContentCard(c.Name, b.String(), w)
}
