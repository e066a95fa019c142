package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/harmony/internal/model"
)

func TestFormatCOP(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$ 0"},
		{950, "$ 950"},
		{1000000, "$ 1.000.000"},
		{1234567.6, "$ 1.234.568"},
		{-250000, "-$ 250.000"},
	}
	for _, tt := range tests {
		if got := FormatCOP(tt.in); got != tt.want {
			t.Errorf("FormatCOP(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(1234567); got != "1.234.567" {
		t.Errorf("FormatNumber = %q, want %q", got, "1.234.567")
	}
	if got := FormatNumber(-1000); got != "-1.000" {
		t.Errorf("FormatNumber = %q, want %q", got, "-1.000")
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(60); got != "60.0%" {
		t.Errorf("FormatPercent = %q, want %q", got, "60.0%")
	}
	if got := FormatPercentInt(59.6); got != "60%" {
		t.Errorf("FormatPercentInt = %q, want %q", got, "60%")
	}
}

func TestRenderTableAlignsAccentedText(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Obra", "Precio"},
		Rows: [][]string{
			{"Baño", "$ 1.000"},
			{"Ventanal", "$ 10"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("RenderTable lines = %d, want 6", len(lines))
	}
	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Errorf("line %d width = %d, want %d", i, w, want)
		}
	}
}

func TestRenderTableEmpty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("RenderTable(empty) = %q, want empty", got)
	}
}

func TestRenderCajaBarClamps(t *testing.T) {
	out := RenderCajaBar(140, model.StatusActivo, 10)
	if !strings.Contains(out, "100%") {
		t.Errorf("RenderCajaBar(140) = %q, want 100%%", out)
	}
	if got := RenderCajaBar(50, model.StatusMedio, 0); got != "" {
		t.Errorf("RenderCajaBar(width 0) = %q, want empty", got)
	}
}
