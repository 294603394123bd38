package pdf

import (
	"bytes"
	"testing"
	"time"

	"backoffice-api/internal/model"
)

func TestInvoiceSummary(t *testing.T) {
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	inv := &model.Invoice{
		ID:       "inv-1",
		ClientID: "cl-1",
		Amount:   149.50,
		Status:   model.InvoicePending,
		DueDate:  &due,
	}
	cl := &model.Client{ID: "cl-1", Name: "Acme Corp", Email: "billing@acme.test"}

	doc, err := InvoiceSummary(inv, cl)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
}
