package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/harmony/internal/cli"
	"github.com/theirongolddev/harmony/internal/ledger"
	"github.com/theirongolddev/harmony/internal/model"
	"github.com/theirongolddev/harmony/internal/tui/components"
	"github.com/theirongolddev/harmony/internal/tui/theme"
)

func (a App) renderCajaTab(cw, h int) string {
	t := theme.Active
	byCat := ledger.ByCategory(a.entries)

	metrics := make([]components.Metric, 0, len(model.Categories)+1)
	metrics = append(metrics, components.Metric{
		Label: "Total empresa",
		Value: cli.FormatCOP(ledger.Total(a.entries)),
		Note:  fmt.Sprintf("%d gastos", len(a.entries)),
		Color: t.Orange,
	})
	for _, c := range model.Categories {
		metrics = append(metrics, components.Metric{Label: c.Label, Value: cli.FormatCOPShort(byCat[c.ID])})
	}
	cards := components.MetricCardRow(metrics, cw)

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	title := "Caja de " + a.deps.Session.Username
	if len(a.entries) == 0 {
		return cards + "\n" + components.ContentCard(title, muted.Render("Sin gastos de empresa. Agrega uno con `harmony ledger add`."), cw)
	}

	inner := components.CardInnerWidth(cw)
	visible := max(h-lipgloss.Height(cards)-4, 3)
	offset := scrollWindow(a.caja.cursor, a.caja.offset, visible)

	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	cursor := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	itemW := max(inner-8-16-14-14, 8)

	var b strings.Builder
	end := min(offset+visible, len(a.entries))
	for i := offset; i < end; i++ {
		e := a.entries[i]
		style := row
		if i == a.caja.cursor {
			style = cursor
		}
		b.WriteString(style.Render(fmt.Sprintf("%-8s%-*s%-16s%-14s%14s",
			e.Date, itemW, truncStr(e.Item, itemW), truncStr(e.Ref, 15),
			model.CategoryByID(e.Category).Label, cli.FormatCOP(e.Amount))))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return cards + "\n" + components.ContentCard(title, b.String(), cw)
}
