package invoice

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/theirongolddev/harmony/internal/cli"
)

// WritePDF renders inv as an A4 PDF.
func WritePDF(w io.Writer, inv Invoice) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Factura "+inv.Number, true)
	pdf.SetAuthor(inv.Business.Name, true)
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	// Header
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(17, 82, 212)
	pdf.CellFormat(contentW/2, 10, tr(inv.Business.Name), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFillColor(17, 82, 212)
	pdf.CellFormat(contentW/2, 10, "FACTURA OFICIAL", "", 1, "C", true, 0, "")

	pdf.SetTextColor(100, 116, 139)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW/2, 5, tr(inv.Business.Tagline), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(15, 23, 42)
	pdf.CellFormat(contentW/2, 7, tr("DOCUMENTO No: "+inv.Number), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(contentW/2, 5, "NIT: "+inv.Business.NIT, "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, tr(inv.IssuedOn), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW, 5, tr(inv.Business.City), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	// Client block
	section(pdf, tr("Información del Cliente"))
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(15, 23, 42)
	pdf.CellFormat(contentW, 8, tr(inv.Client), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(71, 85, 105)
	pdf.CellFormat(contentW, 6, tr("Ubicación: "+inv.Location), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, tr("Teléfono: "+inv.Phone), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(21, 128, 61)
	pdf.CellFormat(contentW, 6, "PAGO RECIBIDO - Cero Deudas Pendientes", "", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Concepts
	pdf.SetFillColor(15, 23, 42)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW*0.7, 8, tr("Detalle de Servicios Técnicos"), "", 0, "L", true, 0, "")
	pdf.CellFormat(contentW*0.3, 8, "Monto Neto", "", 1, "R", true, 0, "")

	pdf.SetTextColor(15, 23, 42)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW*0.7, 9, tr(inv.Concept), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.3, 9, cli.FormatCOP(inv.Subtotal), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 116, 139)
	pdf.MultiCell(contentW*0.7, 5, tr(inv.Detail), "", "L", false)
	pdf.Ln(8)

	// Totals
	totalsX := left + contentW*0.55
	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetX(totalsX)
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(contentW*0.25, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.20, 7, value, "", 1, "R", false, 0, "")
	}
	pdf.SetTextColor(15, 23, 42)
	row("Subtotal", cli.FormatCOP(inv.Subtotal), false)
	row("ITBIS (0%)", cli.FormatCOP(inv.Tax), false)
	pdf.SetTextColor(17, 82, 212)
	row("Total Cobrado", cli.FormatCOP(inv.Total), true)
	pdf.Ln(8)

	// Warranty
	section(pdf, tr("Certificado de Garantía"))
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(71, 85, 105)
	pdf.MultiCell(contentW, 5, tr(inv.Warranty), "", "L", false)
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(15, 23, 42)
	pdf.CellFormat(contentW, 5, tr("Dirección Técnica"), "T", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr(inv.Business.Signatory), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering invoice pdf: %w", err)
	}
	return nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(148, 163, 184)
	pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
}
