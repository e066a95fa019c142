// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatCOP formats pesos with dot thousands separators and no decimals.
// e.g., 1000000 -> "$ 1.000.000", -250000 -> "-$ 250.000"
func FormatCOP(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$ " + humanize.FormatFloat("#.###,", math.Round(v))
}

// FormatCOPShort abbreviates large amounts for narrow columns.
// e.g., 1500000 -> "$ 1,5M", 250000 -> "$ 250K"
func FormatCOPShort(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1_000_000:
		return sign + "$ " + humanize.FormatFloat("#.###,#", v/1_000_000) + "M"
	case v >= 10_000:
		return sign + "$ " + humanize.FormatFloat("#.###,", v/1_000) + "K"
	default:
		return sign + FormatCOP(v)
	}
}

// FormatNumber adds dot separators to an integer.
// e.g., 1234567 -> "1.234.567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	return humanize.FormatInteger("#.###,", int(n))
}

// FormatPercent formats a 0-100 value with one decimal.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatPercentInt formats a 0-100 value rounded to a whole number.
func FormatPercentInt(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}
