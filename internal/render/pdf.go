package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

var columnWidths = []float64{45, 65, 35, 35}

// PDF lays the report out on A4 pages using the core Helvetica font.
func (r *Renderer) PDF(report *domain.Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Account statement "+report.Client.ClientID, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Account statement", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		fmt.Sprintf("Client: %s (%s)", report.Client.Name, report.Client.ClientID),
		"Identification: " + report.Client.Identification,
		fmt.Sprintf("Period: %s to %s", report.StartDate.Format(dateLayout), report.EndDate.Format(dateLayout)),
		"Generated: " + report.GeneratedAt.Format(dateTimeLayout),
	}
	for _, l := range lines {
		pdf.CellFormat(0, 6, tr(l), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	for _, st := range report.AccountStatements {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("Account %s (%s)", st.Account.AccountNumber, st.Account.Type), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(240, 240, 240)
		for i, h := range []string{"Date", "Movement", "Value", "Balance"} {
			pdf.CellFormat(columnWidths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 10)
		if len(st.Movements) == 0 {
			pdf.CellFormat(sum(columnWidths), 7, "No movements in this period", "1", 1, "L", false, 0, "")
		}
		for _, m := range st.Movements {
			pdf.CellFormat(columnWidths[0], 7, m.Date.Format(dateTimeLayout), "1", 0, "L", false, 0, "")
			pdf.CellFormat(columnWidths[1], 7, m.Type.Description(), "1", 0, "L", false, 0, "")
			pdf.CellFormat(columnWidths[2], 7, money(m.Value), "1", 0, "R", false, 0, "")
			pdf.CellFormat(columnWidths[3], 7, money(m.BalanceAfter), "1", 1, "R", false, 0, "")
		}

		pdf.SetFont("Helvetica", "B", 10)
		summaryRow(pdf, "Total credits", money(st.TotalCredits))
		summaryRow(pdf, "Total debits", money(st.TotalDebits))
		summaryRow(pdf, "Current balance", money(st.FinalBalance))
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 11)
	summaryRow(pdf, "Total credits", money(report.TotalCredits))
	summaryRow(pdf, "Total debits", money(report.TotalDebits))
	summaryRow(pdf, "Total balance", money(report.TotalBalance))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func summaryRow(pdf *fpdf.Fpdf, label, value string) {
	labelWidth := sum(columnWidths[:3])
	pdf.CellFormat(labelWidth, 7, label, "1", 0, "L", false, 0, "")
	pdf.CellFormat(columnWidths[3], 7, value, "1", 1, "R", false, 0, "")
}

func sum(widths []float64) float64 {
	var total float64
	for _, w := range widths {
		total += w
	}
	return total
}
