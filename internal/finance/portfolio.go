package finance

import (
	"sort"

	"github.com/theirongolddev/harmony/internal/model"
)

// ProjectRow pairs a project with its derived metrics.
type ProjectRow struct {
	Client  model.Client `json:"client"`
	Metrics Metrics      `json:"metrics"`
	IsLoss  bool         `json:"isLoss"`
}

// PortfolioStats is the payments overview across active projects.
type PortfolioStats struct {
	Totals
	Projects     int          `json:"projects"`
	TotalSpent   float64      `json:"totalSpent"`
	TotalUtility float64      `json:"totalUtility"`
	OverBudget   int          `json:"overBudget"`
	Rows         []ProjectRow `json:"rows"`
}

// Portfolio builds the payments overview. Rows are sorted by utility,
// lowest first, so losses surface at the top.
func Portfolio(clients []model.Client) PortfolioStats {
	stats := PortfolioStats{
		Totals:   Aggregate(clients),
		Projects: len(clients),
		Rows:     make([]ProjectRow, 0, len(clients)),
	}
	for _, c := range clients {
		m := Snapshot(c)
		stats.TotalSpent += m.TotalSpent
		stats.TotalUtility += m.Utility
		if m.OverBudget {
			stats.OverBudget++
		}
		stats.Rows = append(stats.Rows, ProjectRow{Client: c, Metrics: m, IsLoss: m.Utility < 0})
	}
	sort.SliceStable(stats.Rows, func(i, j int) bool {
		return stats.Rows[i].Metrics.Utility < stats.Rows[j].Metrics.Utility
	})
	return stats
}

// ArchivedProfit is the realized result of a finalized project: received
// amount minus spending.
func ArchivedProfit(c model.Client) float64 {
	return c.Abono() - TotalSpent(c)
}
