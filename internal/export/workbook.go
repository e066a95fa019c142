// Package export writes project and ledger data to an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/harmony/internal/finance"
	"github.com/theirongolddev/harmony/internal/invoice"
	"github.com/theirongolddev/harmony/internal/ledger"
	"github.com/theirongolddev/harmony/internal/model"
)

// Sheet names, in workbook order.
const (
	SheetActive   = "Obras"
	SheetHistory  = "Historial"
	SheetExpenses = "Gastos"
	SheetLedger   = "Caja Empresa"
)

// Data is everything written to the workbook.
type Data struct {
	Active  []model.Client
	History []model.Client
	Ledger  []model.BusinessExpense
}

// WriteWorkbook renders d as an .xlsx file.
func WriteWorkbook(w io.Writer, d Data) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetActive); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	for _, name := range []string{SheetHistory, SheetExpenses, SheetLedger} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1152D4"}},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return fmt.Errorf("creating money style: %w", err)
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
		money   []string
	}{
		{SheetActive, activeHeaders, activeRows(d.Active), []string{"D", "E", "F", "G", "I"}},
		{SheetHistory, historyHeaders, historyRows(d.History), []string{"E", "F", "G", "H"}},
		{SheetExpenses, expenseHeaders, expenseRows(d.Active, d.History), []string{"F"}},
		{SheetLedger, ledgerHeaders, ledgerRows(d.Ledger), []string{"E"}},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.headers, s.rows); err != nil {
			return err
		}
		last := len(s.rows) + 1
		end, _ := excelize.CoordinatesToCellName(len(s.headers), 1)
		if err := f.SetCellStyle(s.name, "A1", end, header); err != nil {
			return err
		}
		for _, col := range s.money {
			if last < 2 {
				break
			}
			if err := f.SetCellStyle(s.name, col+"2", fmt.Sprintf("%s%d", col, last), money); err != nil {
				return err
			}
		}
		if err := f.SetColWidth(s.name, "A", "B", 24); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

var (
	activeHeaders  = []string{"ID", "Cliente", "Descripción", "Precio Venta", "Abono", "Gastado", "Saldo Caja", "Caja %", "Utilidad", "Estado", "Inicio"}
	historyHeaders = []string{"Factura", "Cliente", "Descripción", "Teléfono", "Precio Venta", "Abono", "Gastado", "Ganancia", "Inicio", "Fin"}
	expenseHeaders = []string{"Obra ID", "Cliente", "Estado Obra", "Concepto", "Referencia", "Monto"}
	ledgerHeaders  = []string{"ID", "Fecha", "Concepto", "Categoría", "Monto", "Referencia"}
)

func activeRows(list []model.Client) [][]any {
	rows := make([][]any, 0, len(list))
	for _, c := range list {
		m := finance.Snapshot(c)
		rows = append(rows, []any{
			c.ID, c.Name, c.Desc, c.Total, m.Abono, m.TotalSpent, m.Remaining,
			fmt.Sprintf("%.0f%%", m.CajaPercent), m.Utility, string(m.Band), c.Start,
		})
	}
	return rows
}

func historyRows(list []model.Client) [][]any {
	rows := make([][]any, 0, len(list))
	for _, c := range list {
		rows = append(rows, []any{
			invoice.Number(c), c.Name, c.Desc, c.Phone, c.Total, c.Abono(),
			finance.TotalSpent(c), finance.ArchivedProfit(c), c.Start, c.End,
		})
	}
	return rows
}

// expenseRows lists every project expense, active projects first.
func expenseRows(active, history []model.Client) [][]any {
	var rows [][]any
	for _, list := range [][]model.Client{active, history} {
		for _, c := range list {
			for _, e := range c.Expenses {
				rows = append(rows, []any{c.ID, c.Name, string(c.Status), e.Item, e.Ref, e.Amount})
			}
		}
	}
	return rows
}

func ledgerRows(list []model.BusinessExpense) [][]any {
	rows := make([][]any, 0, len(list)+1)
	for _, e := range list {
		rows = append(rows, []any{e.ID, e.Date, e.Item, model.CategoryByID(e.Category).Label, e.Amount, e.Ref})
	}
	if len(list) > 0 {
		rows = append(rows, []any{nil, nil, "TOTAL", nil, ledger.Total(list), nil})
	}
	return rows
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	head := make([]any, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
