package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/harmony/internal/model"
	"github.com/theirongolddev/harmony/internal/tui/theme"
)

// CajaBar renders the share of the down payment still available, colored
// by its status band. pct is on a 0-100 scale.
func CajaBar(pct float64, band model.Status, width int) string {
	t := theme.Active
	frac := min(max(pct/100, 0), 1)
	color := t.Band(band)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(width-7, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")
	return bar.ViewAs(frac) + space + pctStyle.Render(fmt.Sprintf("%5.1f%%", pct))
}

// StatusBadge renders a status name in its band color.
func StatusBadge(s model.Status) string {
	t := theme.Active
	return lipgloss.NewStyle().
		Foreground(t.Band(s)).
		Background(t.Surface).
		Bold(true).
		Render(string(s))
}
