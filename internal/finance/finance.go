// Package finance derives the money figures shown for each project and
// for the portfolio as a whole. All functions are pure.
package finance

import (
	"fmt"
	"math"

	"github.com/theirongolddev/harmony/internal/model"
)

// Metrics is the derived financial state of one project.
type Metrics struct {
	Abono          float64      `json:"abono"`
	TotalSpent     float64      `json:"totalSpent"`
	Remaining      float64      `json:"remaining"`
	CajaPercent    float64      `json:"cajaPercent"`
	Utility        float64      `json:"utility"`
	UtilityPercent float64      `json:"utilityPercent"`
	OverBudget     bool         `json:"overBudget"`
	Band           model.Status `json:"band"`
}

// Totals aggregates payments across active projects.
type Totals struct {
	TotalContracted   float64 `json:"totalContracted"`
	TotalCollected    float64 `json:"totalCollected"`
	PendingCollection float64 `json:"pendingCollection"`
}

// TotalSpent sums the project's expenses.
func TotalSpent(c model.Client) float64 {
	var sum float64
	for _, e := range c.Expenses {
		sum += e.Amount
	}
	return sum
}

// RemainingBalance is the received amount minus spending. It may be negative.
func RemainingBalance(c model.Client) float64 {
	return c.Abono() - TotalSpent(c)
}

// CajaPercent is the share of the received amount still unspent, in [0, 100].
func CajaPercent(c model.Client) float64 {
	abono := c.Abono()
	if abono <= 0 {
		return 0
	}
	return clamp((abono-TotalSpent(c))/abono*100, 0, 100)
}

// Utility is the contract price minus spending.
func Utility(c model.Client) float64 {
	return c.Total - TotalSpent(c)
}

// UtilityPercent is Utility relative to the contract price, floored at 0.
func UtilityPercent(c model.Client) float64 {
	if c.Total <= 0 {
		return 0
	}
	return math.Max(0, Utility(c)/c.Total*100)
}

// IsOverBudget reports whether spending exceeds the contract price.
func IsOverBudget(c model.Client) bool {
	return TotalSpent(c) > c.Total
}

// StatusBand maps a caja percentage to a health label. Each band includes
// its upper bound: 60 is Medio, 30 is Crítico, 0 is Agotado.
func StatusBand(cajaPercent float64) model.Status {
	switch {
	case cajaPercent <= 0:
		return model.StatusAgotado
	case cajaPercent <= 30:
		return model.StatusCritico
	case cajaPercent <= 60:
		return model.StatusMedio
	default:
		return model.StatusActivo
	}
}

// PaymentPercent is the rounded share of the contract price received.
func PaymentPercent(abono, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(abono / total * 100))
}

// Refresh materializes the received amount and recomputes the payment label
// and health band after an edit. Finalized projects keep their status.
func Refresh(c model.Client) model.Client {
	abono := c.Abono()
	c.AbonoTotal = model.Float(abono)
	c.Pct = fmt.Sprintf("%d%%", PaymentPercent(abono, c.Total))
	if c.Status != model.StatusFinalizado {
		c.Status = StatusBand(CajaPercent(c))
	}
	return c
}

// Snapshot computes every derived figure for a project.
func Snapshot(c model.Client) Metrics {
	caja := CajaPercent(c)
	return Metrics{
		Abono:          c.Abono(),
		TotalSpent:     TotalSpent(c),
		Remaining:      RemainingBalance(c),
		CajaPercent:    caja,
		Utility:        Utility(c),
		UtilityPercent: UtilityPercent(c),
		OverBudget:     IsOverBudget(c),
		Band:           StatusBand(caja),
	}
}

// Aggregate totals contract prices and received amounts across projects.
func Aggregate(clients []model.Client) Totals {
	var t Totals
	for _, c := range clients {
		t.TotalContracted += c.Total
		t.TotalCollected += c.Abono()
	}
	t.PendingCollection = t.TotalContracted - t.TotalCollected
	return t
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
