package logistics

import (
	"fmt"
	"time"

	"github.com/freightdesk/backoffice/pkg/listing"
)

// InvoiceStatus is the billing state of an invoice.
type InvoiceStatus string

// Invoice statuses
const (
	InvoiceDraft   InvoiceStatus = "Draft"
	InvoiceSent    InvoiceStatus = "Sent"
	InvoicePaid    InvoiceStatus = "Paid"
	InvoiceOverdue InvoiceStatus = "Overdue"
)

// Invoice is a customer bill for one or more shipments.
type Invoice struct {
	ID       string        `json:"id" yaml:"id"`
	Number   string        `json:"number" yaml:"number"`
	Customer string        `json:"customer" yaml:"customer"`
	Status   InvoiceStatus `json:"status" yaml:"status"`
	Amount   float64       `json:"amount" yaml:"amount"`
	Currency string        `json:"currency" yaml:"currency"`
	IssuedAt time.Time     `json:"issued_at" yaml:"issued_at"`
	DueAt    time.Time     `json:"due_at" yaml:"due_at"`
}

// RecordID implements Record.
func (i Invoice) RecordID() string { return i.ID }

var invoiceSchema = listing.MustSchema(
	Invoice.RecordID,
	listing.Field[Invoice]{Key: "number", Label: "Invoice #", Kind: listing.KindString, Searchable: true,
		Get: func(i Invoice) listing.Value { return str(i.Number) }},
	listing.Field[Invoice]{Key: "customer", Label: "Customer", Kind: listing.KindString, Searchable: true,
		Get: func(i Invoice) listing.Value { return str(i.Customer) }},
	listing.Field[Invoice]{Key: "status", Label: "Status", Kind: listing.KindString,
		Get: func(i Invoice) listing.Value { return str(string(i.Status)) }},
	listing.Field[Invoice]{Key: "amount", Label: "Amount", Kind: listing.KindNumber, Searchable: true,
		Get: func(i Invoice) listing.Value { return listing.Number(i.Amount) }},
	listing.Field[Invoice]{Key: "currency", Label: "Currency", Kind: listing.KindString,
		Get: func(i Invoice) listing.Value { return str(i.Currency) }},
	listing.Field[Invoice]{Key: "issued_at", Label: "Issued", Kind: listing.KindDate,
		Get: func(i Invoice) listing.Value { return listing.Date(i.IssuedAt) }},
	listing.Field[Invoice]{Key: "due_at", Label: "Due", Kind: listing.KindDate,
		Get: func(i Invoice) listing.Value { return listing.Date(i.DueAt) }},
)

// Invoices is the invoicing screen.
func Invoices() Screen[Invoice] {
	return Screen[Invoice]{
		Name:   "invoices",
		Title:  "Invoicing",
		Schema: invoiceSchema,
		Filters: []listing.FilterCondition{
			{ID: "status", Label: "Status", Type: listing.FilterSelect,
				Options: options(string(InvoiceDraft), string(InvoiceSent), string(InvoicePaid), string(InvoiceOverdue))},
			{ID: "currency", Label: "Currency", Type: listing.FilterCheckbox, Options: options("EUR", "USD", "GBP")},
			{ID: "issued_at", Label: "Issued", Type: listing.FilterDateRange},
		},
		DefaultSort: listing.SortSpec{Field: "issued_at", Direction: listing.SortDesc},
		Seed:        SeedInvoices,
		WithID:      func(i Invoice, id string) Invoice { i.ID = id; return i },
	}
}

// SeedInvoices returns the invoice fixtures.
func SeedInvoices() []Invoice {
	customers := []string{"Acme Logistics", "Northwind Traders", "Globex Freight", "Initech Supply", "Umbrella Retail"}
	statuses := []InvoiceStatus{InvoiceSent, InvoicePaid, InvoiceDraft, InvoiceOverdue, InvoicePaid}
	currencies := []string{"EUR", "EUR", "USD", "GBP"}

	out := make([]Invoice, 0, 24)
	for n := range 24 {
		issued := seedTime(-n * 30)
		out = append(out, Invoice{
			ID:       fmt.Sprintf("INV-%04d", 1001+n),
			Number:   fmt.Sprintf("2024-%05d", 300+n*7),
			Customer: pick(customers, n*3),
			Status:   pick(statuses, n),
			Amount:   float64(250+(n*137)%4800) + float64(n%4)*0.25,
			Currency: pick(currencies, n),
			IssuedAt: issued,
			DueAt:    issued.AddDate(0, 0, 30),
		})
	}
	return out
}
