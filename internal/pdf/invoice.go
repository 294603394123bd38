// Package pdf renders invoice summaries to a byte buffer. Layout is
// deliberately minimal; it is a display concern, not a domain one.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"backoffice-api/internal/model"
)

func InvoiceSummary(inv *model.Invoice, client *model.Client) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.Cell(0, 12, "Invoice "+shortID(inv.ID))
	doc.Ln(14)

	doc.SetFont("Helvetica", "", 11)
	line(doc, "Billed to", client.Name)
	if client.Email != "" {
		line(doc, "Email", client.Email)
	}
	line(doc, "Amount", fmt.Sprintf("%.2f", inv.Amount))
	line(doc, "Status", inv.Status)
	if inv.DueDate != nil {
		line(doc, "Due", inv.DueDate.Format("2006-01-02"))
	}
	if inv.PaidDate != nil {
		line(doc, "Paid", inv.PaidDate.Format("2006-01-02"))
	}
	line(doc, "Issued", inv.CreatedAt.Format("2006-01-02"))
	line(doc, "Generated", time.Now().Format(time.RFC3339))

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func line(doc *gofpdf.Fpdf, label, value string) {
	doc.CellFormat(40, 8, label, "", 0, "L", false, 0, "")
	doc.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
