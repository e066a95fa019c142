package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/harmony/internal/model"
)

func sampleClient() model.Client {
	return model.Client{
		ID:         1,
		Name:       "Ana",
		Total:      1000000,
		AbonoTotal: model.Float(500000),
		Pct:        "50%",
		Status:     model.StatusActivo,
		Expenses:   []model.Expense{{ID: 1, Item: "Vidrio", Amount: 200000}},
	}
}

func TestSnapshotWithinBudget(t *testing.T) {
	m := Snapshot(sampleClient())

	assert.Equal(t, 500000.0, m.Abono)
	assert.Equal(t, 200000.0, m.TotalSpent)
	assert.Equal(t, 300000.0, m.Remaining)
	assert.InDelta(t, 60.0, m.CajaPercent, 1e-9)
	assert.Equal(t, 800000.0, m.Utility)
	assert.InDelta(t, 80.0, m.UtilityPercent, 1e-9)
	assert.False(t, m.OverBudget)
	assert.Equal(t, model.StatusMedio, m.Band)
}

func TestSnapshotOverBudget(t *testing.T) {
	c := sampleClient()
	c.Expenses = append(c.Expenses, model.Expense{ID: 2, Item: "Aluminio", Amount: 900000})
	m := Snapshot(c)

	assert.Equal(t, 1100000.0, m.TotalSpent)
	assert.Equal(t, -100000.0, m.Utility)
	assert.Equal(t, 0.0, m.UtilityPercent)
	assert.True(t, m.OverBudget)
	assert.Equal(t, -600000.0, m.Remaining)
	assert.Equal(t, 0.0, m.CajaPercent)
	assert.Equal(t, model.StatusAgotado, m.Band)
}

func TestCajaPercentZeroAbono(t *testing.T) {
	c := model.Client{Total: 100, AbonoTotal: model.Float(0)}
	assert.Equal(t, 0.0, CajaPercent(c))
	assert.Equal(t, 100.0, UtilityPercent(c))
}

func TestCajaPercentCappedAtHundred(t *testing.T) {
	c := model.Client{Total: 100, AbonoTotal: model.Float(50), Expenses: []model.Expense{{Amount: -20}}}
	assert.Equal(t, 100.0, CajaPercent(c))
}

func TestUtilityPercentZeroTotal(t *testing.T) {
	assert.Equal(t, 0.0, UtilityPercent(model.Client{}))
}

func TestStatusBandBoundaries(t *testing.T) {
	tests := []struct {
		pct  float64
		want model.Status
	}{
		{100, model.StatusActivo},
		{60.01, model.StatusActivo},
		{60, model.StatusMedio},
		{30.5, model.StatusMedio},
		{30, model.StatusCritico},
		{0.01, model.StatusCritico},
		{0, model.StatusAgotado},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusBand(tt.pct), "pct %v", tt.pct)
	}
}

func TestRefresh(t *testing.T) {
	c := model.Client{Total: 1000000, Pct: "75%", Status: model.StatusIniciado}
	got := Refresh(c)

	if assert.NotNil(t, got.AbonoTotal) {
		assert.Equal(t, 750000.0, *got.AbonoTotal)
	}
	assert.Equal(t, "75%", got.Pct)
	assert.Equal(t, model.StatusActivo, got.Status)
	assert.Nil(t, c.AbonoTotal, "input must not be mutated")
}

func TestRefreshKeepsFinalized(t *testing.T) {
	c := sampleClient()
	c.Status = model.StatusFinalizado
	assert.Equal(t, model.StatusFinalizado, Refresh(c).Status)
}

func TestPaymentPercentRounds(t *testing.T) {
	assert.Equal(t, 33, PaymentPercent(1, 3))
	assert.Equal(t, 67, PaymentPercent(2, 3))
	assert.Equal(t, 0, PaymentPercent(10, 0))
}

func TestAggregate(t *testing.T) {
	clients := []model.Client{
		{Total: 1000000, AbonoTotal: model.Float(500000)},
		{Total: 2000000, AbonoTotal: model.Float(1000000)},
	}
	got := Aggregate(clients)
	assert.Equal(t, Totals{TotalContracted: 3000000, TotalCollected: 1500000, PendingCollection: 1500000}, got)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Equal(t, Totals{}, Aggregate(nil))
}

func TestPortfolioSortsLossesFirst(t *testing.T) {
	over := sampleClient()
	over.ID = 2
	over.Expenses = append(over.Expenses, model.Expense{Amount: 900000})

	stats := Portfolio([]model.Client{sampleClient(), over})

	assert.Equal(t, 2, stats.Projects)
	assert.Equal(t, 1, stats.OverBudget)
	assert.Equal(t, int64(2), stats.Rows[0].Client.ID)
	assert.True(t, stats.Rows[0].IsLoss)
	assert.False(t, stats.Rows[1].IsLoss)
	assert.Equal(t, 700000.0, stats.TotalUtility)
}

func TestArchivedProfit(t *testing.T) {
	assert.Equal(t, 300000.0, ArchivedProfit(sampleClient()))
}
