package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/harmony/internal/model"
)

func TestWriteWorkbook(t *testing.T) {
	d := Data{
		Active: []model.Client{{
			ID: 1, Name: "Ana", Desc: "Ventanal", Total: 1000000, AbonoTotal: model.Float(500000),
			Status: model.StatusActivo, Expenses: []model.Expense{{ID: 1, Item: "Vidrio", Amount: 200000}},
		}},
		History: []model.Client{{
			ID: 1718000123456, Name: "Luis", Desc: "Baño", Total: 2000000, AbonoTotal: model.Float(2000000),
			Status: model.StatusFinalizado, End: "15/10/2026",
		}},
		Ledger: []model.BusinessExpense{
			{ID: 2, Item: "Taladro", Amount: 250000, Category: "tools", Date: "05 oct"},
			{ID: 1, Item: "Gasolina", Amount: 80000, Category: "fuel", Date: "04 oct"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, d))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetActive, SheetHistory, SheetExpenses, SheetLedger}, f.GetSheetList())

	rows, err := f.GetRows(SheetActive)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Cliente", rows[0][1])
	assert.Equal(t, "Ana", rows[1][1])
	assert.Equal(t, "60%", rows[1][7])
	assert.Equal(t, "Medio", rows[1][9])

	hist, err := f.GetRows(SheetHistory)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "#HG-123456", hist[1][0])

	exp, err := f.GetRows(SheetExpenses)
	require.NoError(t, err)
	require.Len(t, exp, 2)
	assert.Equal(t, "Vidrio", exp[1][3])

	led, err := f.GetRows(SheetLedger)
	require.NoError(t, err)
	require.Len(t, led, 4)
	assert.Equal(t, "Herramientas", led[1][3])
	assert.Equal(t, "TOTAL", led[3][2])
}

func TestWriteWorkbookEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, Data{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetLedger)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
