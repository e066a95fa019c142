package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/harmony/internal/tui/theme"
)

// StatusInfo is what the bottom bar reports.
type StatusInfo struct {
	User    string
	Role    string
	Remote  bool
	Syncing string // spinner frame while a sync is running
	Flash   string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	flash := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)

	left := base.Render(" [?]ayuda  [q]salir  ")
	if info.Flash != "" {
		left += flash.Render(info.Flash)
	}

	mode := "local"
	if info.Remote {
		mode = "remoto"
	}
	if info.Syncing != "" {
		mode = info.Syncing + " sincronizando"
	}
	right := accent.Render(info.User) + base.Render(" ("+info.Role+") · "+mode+" ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + base.Render(strings.Repeat(" ", gap)) + right
}
