// Package theme defines color themes for the harmony TUI.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/harmony/internal/model"
)

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name         string
	Background   lipgloss.Color // Main app background
	Surface      lipgloss.Color // Card/panel backgrounds
	SurfaceHover lipgloss.Color // Selected row, active tab
	Border       lipgloss.Color
	BorderAccent lipgloss.Color
	TextDim      lipgloss.Color
	TextMuted    lipgloss.Color
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color
	AccentBright lipgloss.Color
	Green        lipgloss.Color
	Orange       lipgloss.Color
	Red          lipgloss.Color
	Blue         lipgloss.Color
	Yellow       lipgloss.Color
	Cyan         lipgloss.Color
	Magenta      lipgloss.Color
}

// Active is the currently selected theme.
var Active = Harmony

// Harmony is the default theme: slate surfaces with the glass-blue accent
// used on the company's invoices.
var Harmony = Theme{
	Name:         "harmony",
	Background:   lipgloss.Color("#0F172A"),
	Surface:      lipgloss.Color("#1E293B"),
	SurfaceHover: lipgloss.Color("#334155"),
	Border:       lipgloss.Color("#475569"),
	BorderAccent: lipgloss.Color("#38BDF8"),
	TextDim:      lipgloss.Color("#64748B"),
	TextMuted:    lipgloss.Color("#94A3B8"),
	TextPrimary:  lipgloss.Color("#F1F5F9"),
	Accent:       lipgloss.Color("#38BDF8"),
	AccentBright: lipgloss.Color("#7DD3FC"),
	Green:        lipgloss.Color("#10B981"),
	Orange:       lipgloss.Color("#F97316"),
	Red:          lipgloss.Color("#F43F5E"),
	Blue:         lipgloss.Color("#3B82F6"),
	Yellow:       lipgloss.Color("#F59E0B"),
	Cyan:         lipgloss.Color("#22D3EE"),
	Magenta:      lipgloss.Color("#A855F7"),
}

// FlexokiDark is a warm, paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	SurfaceHover: lipgloss.Color("#282726"),
	Border:       lipgloss.Color("#403E3C"),
	BorderAccent: lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Green:        lipgloss.Color("#879A39"),
	Orange:       lipgloss.Color("#DA702C"),
	Red:          lipgloss.Color("#D14D41"),
	Blue:         lipgloss.Color("#4385BE"),
	Yellow:       lipgloss.Color("#D0A215"),
	Cyan:         lipgloss.Color("#24837B"),
	Magenta:      lipgloss.Color("#CE5D97"),
}

// Terminal uses ANSI 16 colors only - maximum compatibility.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	SurfaceHover: lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Green:        lipgloss.Color("2"),
	Orange:       lipgloss.Color("3"),
	Red:          lipgloss.Color("1"),
	Blue:         lipgloss.Color("4"),
	Yellow:       lipgloss.Color("3"),
	Cyan:         lipgloss.Color("6"),
	Magenta:      lipgloss.Color("5"),
}

// All available themes.
var All = []Theme{Harmony, FlexokiDark, Terminal}

// ByName returns a theme by its name, defaulting to Harmony.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return Harmony
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Band returns the color for a project status.
func (t Theme) Band(s model.Status) lipgloss.Color {
	switch s {
	case model.StatusActivo, model.StatusIniciado:
		return t.Green
	case model.StatusMedio:
		return t.Yellow
	case model.StatusCritico:
		return t.Orange
	case model.StatusAgotado:
		return t.Red
	case model.StatusFinalizado:
		return t.Blue
	default:
		return t.TextMuted
	}
}
