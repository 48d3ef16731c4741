package infra

// pdf.go: Z report generation using go-pdf/fpdf.
// One A4 page per close:
//   - Register, cashier session and period
//   - Sales summary (count, voided, totals, IGTF, credit)
//   - One row per (moneda, metodo) drawer with the expected balance breakdown
//   - Declared count, difference and discrepancy classification when present
//
// The output file is saved to storagePath/cierre_{pdv}_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"blendcaja/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateCierrePDF renders the Z report of a closed session.
// storagePath is created if needed. Returns the path of the generated file.
func GenerateCierrePDF(cierre *model.CierreCaja, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("cierre_%d_%s.pdf", cierre.PuntoDeVenta, cierre.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, "BlendCaja - Reporte Z", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Punto de venta %d", cierre.PuntoDeVenta), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Apertura %s  -  Cierre %s",
		cierre.OpenedAt.Format("02/01/2006 15:04"), cierre.ClosedAt.Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Sales summary ────────────────────────────────────────────────────────
	half := contentW / 2
	resumen := []struct{ label, valor string }{
		{"Ventas", fmt.Sprintf("%d", cierre.CantidadVentas)},
		{"Anuladas", fmt.Sprintf("%d", cierre.CantidadAnuladas)},
		{"Total ventas", cierre.TotalVentas.StringFixed(2)},
		{"Total IGTF", cierre.TotalIGTF.StringFixed(2)},
		{"Total a credito", cierre.TotalCredito.StringFixed(2)},
		{"Gastos", fmt.Sprintf("%d", cierre.CantidadGastos)},
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Resumen", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, r := range resumen {
		pdf.CellFormat(half, 5, r.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(half, 5, r.valor, "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// ── Drawers ──────────────────────────────────────────────────────────────
	cols := []struct {
		titulo string
		ancho  float64
	}{
		{"Moneda/Metodo", 0.22},
		{"Inicial", 0.11},
		{"Ventas", 0.11},
		{"Gastos", 0.11},
		{"Abonos", 0.11},
		{"Esperado", 0.12},
		{"Declarado", 0.11},
		{"Dif.", 0.11},
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Arqueo por moneda y metodo", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 8)
	for i, col := range cols {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(contentW*col.ancho, 6, col.titulo, "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, s := range cierre.Saldos {
		valores := []string{
			s.Moneda + "/" + s.Metodo,
			s.Inicial.StringFixed(2),
			s.Ventas.StringFixed(2),
			s.Gastos.StringFixed(2),
			s.Abonos.StringFixed(2),
			s.Esperado.StringFixed(2),
			opcional(s.Declarado),
			opcional(s.Diferencia),
		}
		for i, v := range valores {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(contentW*cols[i].ancho, 5, v, "", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	// ── Discrepancy ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	if cierre.ClasificacionDesvio == nil {
		pdf.CellFormat(contentW, 6, "Sin declaracion de conteo", "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(contentW, 6, fmt.Sprintf("Desvio %s%% (%s)", opcional(cierre.DesvioPct), *cierre.ClasificacionDesvio),
			"", 1, "L", false, 0, "")
	}
	if cierre.Observaciones != nil && *cierre.Observaciones != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, tr("Observaciones: "+*cierre.Observaciones), "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func opcional(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}
