package infra

// pdf.go - shift report PDF generation using go-pdf/fpdf.
// Produces an A5 reconciliation report with:
//   - Drawer header (operator, status, opened/closed timestamps)
//   - Balance summary (opening, expected, counted, discrepancy)
//   - Ledger entry table (type, description, amount, running balance)
//   - Payment-method breakdown for the shift

import (
	"bytes"
	"fmt"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateDrawerReportPDF renders a shift report into PDF bytes. The caller
// decides whether to stream it to an HTTP response or write it to disk.
func GenerateDrawerReportPDF(report *dto.DrawerReportResponse, businessName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, businessName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Cash Drawer Shift Report", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	d := report.Drawer
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, "Drawer: "+d.ID, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Operator: "+d.OperatorID, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Status: "+d.Status, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Opened: "+d.OpenedAt, "", 1, "L", false, 0, "")
	if d.ClosedAt != nil {
		pdf.CellFormat(contentW, 4, "Closed: "+*d.ClosedAt, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	// ── Balances ─────────────────────────────────────────────────────────────
	half := contentW / 2
	writeAmount := func(label string, v decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 8)
		pdf.CellFormat(half, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(half, 5, v.StringFixed(2), "", 1, "R", false, 0, "")
	}
	writeAmount("Opening balance", d.OpeningBalance, false)
	writeAmount("Expected balance", d.ExpectedBalance, false)
	writeAmount("Current balance", d.CurrentBalance, true)
	if d.DeclaredBalance != nil {
		writeAmount("Counted balance", *d.DeclaredBalance, false)
		discrepancy := d.DeclaredBalance.Sub(d.ExpectedBalance)
		if !discrepancy.IsZero() {
			writeAmount("Discrepancy", discrepancy, true)
		}
	}
	pdf.Ln(2)

	// ── Ledger entries ───────────────────────────────────────────────────────
	col1 := contentW * 0.22
	col2 := contentW * 0.38
	col3 := contentW * 0.20
	col4 := contentW * 0.20

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Type", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Description", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 5, "Amount", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 5, "Balance", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, e := range report.Entries {
		descr := e.Description
		if len(descr) > 30 {
			descr = descr[:29] + "..."
		}
		pdf.CellFormat(col1, 4, e.Type, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 4, descr, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, e.Amount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 4, e.BalanceAfter.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	// ── Payment breakdown ────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Payments by method", "", 1, "L", false, 0, "")
	writeAmount("Cash", report.Breakdown.Cash, false)
	writeAmount("Card", report.Breakdown.Card, false)
	writeAmount("Mobile money", report.Breakdown.Mobile, false)
	writeAmount("Other", report.Breakdown.Other, false)
	writeAmount("Total", report.Breakdown.Total, true)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
