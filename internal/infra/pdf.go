package infra

// pdf.go — daily close report generation using go-pdf/fpdf.
// One A4 page per cierre: opening balances, totals breakdown, theoretical
// vs declared amounts and the resulting diferencia.
// The output file is saved to storagePath/cierre_{fecha}_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"almapos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateCierrePDF renders the close report for a cierre snapshot.
// Returns the absolute path to the generated file.
func GenerateCierrePDF(cierre *model.CierreCaja, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("cierre_%s_%s.pdf", cierre.Fecha, cierre.ID.String()[:8])
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 40

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Cierre de Caja", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Fecha: %s", cierre.Fecha), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Generado: %s", cierre.CreatedAt.Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.Line(20, pdf.GetY(), pageW-20, pdf.GetY())
	pdf.Ln(4)

	labelW := contentW * 0.6
	valueW := contentW * 0.4

	row := func(label string, value decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(labelW, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 7, "$"+value.StringFixed(2), "", 1, "R", false, 0, "")
	}

	// ── Saldos iniciales ──────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Saldos iniciales", "", 1, "L", false, 0, "")
	row("Efectivo inicial", cierre.InicialEfectivo, false)
	row("Digital inicial", cierre.InicialDigital, false)
	pdf.Ln(3)

	// ── Movimientos del día ───────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Movimientos del día", "", 1, "L", false, 0, "")
	row("Total ventas", cierre.TotalVentas, false)
	row("Comisiones", cierre.TotalComisiones.Neg(), false)
	row("Ingresos extra", cierre.TotalIngresos, false)
	row("Gastos", cierre.TotalGastos.Neg(), false)
	pdf.Ln(3)

	pdf.Line(20, pdf.GetY(), pageW-20, pdf.GetY())
	pdf.Ln(3)

	// ── Arqueo ────────────────────────────────────────────────────────────────
	row("Teórico", cierre.Teorico, true)
	row("Declarado efectivo", cierre.DeclaradoEfectivo, false)
	row("Declarado digital", cierre.DeclaradoDigital, false)
	row("Diferencia", cierre.Diferencia, true)

	if !cierre.Diferencia.IsZero() {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 9)
		etiqueta := "Sobrante de caja"
		if cierre.Diferencia.IsNegative() {
			etiqueta = "Faltante de caja"
		}
		pdf.CellFormat(contentW, 5, etiqueta, "", 1, "L", false, 0, "")
	}

	if cierre.Observaciones != nil && *cierre.Observaciones != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Observaciones", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW, 5, *cierre.Observaciones, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
