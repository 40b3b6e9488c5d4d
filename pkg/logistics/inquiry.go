package logistics

import (
	"fmt"
	"time"

	"github.com/freightdesk/backoffice/pkg/listing"
)

// Inquiry is an inbound customer request.
type Inquiry struct {
	ID        string    `json:"id" yaml:"id"`
	Subject   string    `json:"subject" yaml:"subject"`
	Customer  string    `json:"customer" yaml:"customer"`
	Channel   string    `json:"channel" yaml:"channel"`
	Status    string    `json:"status" yaml:"status"`
	Priority  string    `json:"priority" yaml:"priority"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// RecordID implements Record.
func (i Inquiry) RecordID() string { return i.ID }

var inquirySchema = listing.MustSchema(
	Inquiry.RecordID,
	listing.Field[Inquiry]{Key: "subject", Label: "Subject", Kind: listing.KindString, Searchable: true,
		Get: func(i Inquiry) listing.Value { return str(i.Subject) }},
	listing.Field[Inquiry]{Key: "customer", Label: "Customer", Kind: listing.KindString, Searchable: true,
		Get: func(i Inquiry) listing.Value { return str(i.Customer) }},
	listing.Field[Inquiry]{Key: "channel", Label: "Channel", Kind: listing.KindString,
		Get: func(i Inquiry) listing.Value { return str(i.Channel) }},
	listing.Field[Inquiry]{Key: "status", Label: "Status", Kind: listing.KindString,
		Get: func(i Inquiry) listing.Value { return str(i.Status) }},
	listing.Field[Inquiry]{Key: "priority", Label: "Priority", Kind: listing.KindString,
		Get: func(i Inquiry) listing.Value { return str(i.Priority) }},
	listing.Field[Inquiry]{Key: "created_at", Label: "Received", Kind: listing.KindDate,
		Get: func(i Inquiry) listing.Value { return listing.Date(i.CreatedAt) }},
)

// Inquiries is the customer inquiries screen.
func Inquiries() Screen[Inquiry] {
	return Screen[Inquiry]{
		Name:   "inquiries",
		Title:  "Inquiries",
		Schema: inquirySchema,
		Filters: []listing.FilterCondition{
			{ID: "status", Label: "Status", Type: listing.FilterSelect, Options: options("New", "In Progress", "Answered", "Closed")},
			{ID: "channel", Label: "Channel", Type: listing.FilterCheckbox, Options: options("email", "phone", "portal")},
			{ID: "priority", Label: "Priority", Type: listing.FilterCheckbox, Options: options("low", "normal", "high")},
		},
		DefaultSort: listing.SortSpec{Field: "created_at", Direction: listing.SortDesc},
		Seed:        SeedInquiries,
		WithID:      func(i Inquiry, id string) Inquiry { i.ID = id; return i },
	}
}

// SeedInquiries returns the inquiry fixtures.
func SeedInquiries() []Inquiry {
	subjects := []string{"Rate request", "Delivery delay", "Damaged pallet", "Customs documents", "Pickup window change"}
	customers := []string{"Acme Logistics", "Northwind Traders", "Globex Freight", "Stark Components"}
	channels := []string{"email", "portal", "phone"}
	statuses := []string{"New", "In Progress", "Answered", "Closed"}
	priorities := []string{"normal", "high", "low", "normal"}

	out := make([]Inquiry, 0, 20)
	for n := range 20 {
		out = append(out, Inquiry{
			ID:        fmt.Sprintf("INQ-%04d", 301+n),
			Subject:   pick(subjects, n),
			Customer:  pick(customers, n*3),
			Channel:   pick(channels, n),
			Status:    pick(statuses, n/2),
			Priority:  pick(priorities, n*7),
			CreatedAt: seedTime(-n*9 - 2),
		})
	}
	return out
}
