package logistics

import (
	"fmt"
	"time"

	"github.com/freightdesk/backoffice/pkg/listing"
)

// Quote statuses
const (
	QuoteDraft         = "Draft"
	QuotePendingReview = "Pending Review"
	QuoteApproved      = "Approved"
	QuoteRejected      = "Rejected"
	QuoteExpired       = "Expired"
)

// Quote is a priced transport offer.
type Quote struct {
	ID          string    `json:"id" yaml:"id"`
	Customer    string    `json:"customer" yaml:"customer"`
	Origin      string    `json:"origin" yaml:"origin"`
	Destination string    `json:"destination" yaml:"destination"`
	Mode        string    `json:"mode" yaml:"mode"`
	Status      string    `json:"status" yaml:"status"`
	Amount      float64   `json:"amount" yaml:"amount"`
	WeightKg    float64   `json:"weight_kg" yaml:"weight_kg"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// RecordID implements Record.
func (q Quote) RecordID() string { return q.ID }

var quoteSchema = listing.MustSchema(
	Quote.RecordID,
	listing.Field[Quote]{Key: "customer", Label: "Customer", Kind: listing.KindString, Searchable: true,
		Get: func(q Quote) listing.Value { return str(q.Customer) }},
	listing.Field[Quote]{Key: "origin", Label: "Origin", Kind: listing.KindString, Searchable: true,
		Get: func(q Quote) listing.Value { return str(q.Origin) }},
	listing.Field[Quote]{Key: "destination", Label: "Destination", Kind: listing.KindString, Searchable: true,
		Get: func(q Quote) listing.Value { return str(q.Destination) }},
	listing.Field[Quote]{Key: "mode", Label: "Mode", Kind: listing.KindString,
		Get: func(q Quote) listing.Value { return str(q.Mode) }},
	listing.Field[Quote]{Key: "status", Label: "Status", Kind: listing.KindString,
		Get: func(q Quote) listing.Value { return str(q.Status) }},
	listing.Field[Quote]{Key: "amount", Label: "Price", Kind: listing.KindNumber,
		Get: func(q Quote) listing.Value { return listing.Number(q.Amount) }},
	listing.Field[Quote]{Key: "weight_kg", Label: "Weight (kg)", Kind: listing.KindNumber,
		Get: func(q Quote) listing.Value { return listing.Number(q.WeightKg) }},
	listing.Field[Quote]{Key: "created_at", Label: "Created", Kind: listing.KindDate,
		Get: func(q Quote) listing.Value { return listing.Date(q.CreatedAt) }},
)

func quoteFilters() []listing.FilterCondition {
	return []listing.FilterCondition{
		{ID: "status", Label: "Status", Type: listing.FilterSelect,
			Options: options(QuoteDraft, QuotePendingReview, QuoteApproved, QuoteRejected, QuoteExpired)},
		{ID: "mode", Label: "Mode", Type: listing.FilterCheckbox, Options: options("FTL", "LTL", "Intermodal", "Air")},
		{ID: "created_at", Label: "Created", Type: listing.FilterDateRange},
	}
}

// Quotes is the pricing screen.
func Quotes() Screen[Quote] {
	return Screen[Quote]{
		Name:        "quotes",
		Title:       "Pricing",
		Schema:      quoteSchema,
		Filters:     quoteFilters(),
		DefaultSort: listing.SortSpec{Field: "created_at", Direction: listing.SortDesc},
		Seed:        SeedQuotes,
		WithID:      func(q Quote, id string) Quote { q.ID = id; return q },
	}
}

// QuoteReview lists the quotes waiting for approval. It reads the quotes
// store and always applies the pending review status.
func QuoteReview() Screen[Quote] {
	s := Quotes()
	s.Name = "quote_review"
	s.Title = "Quote review"
	s.Source = "quotes"
	s.Presets = []listing.FilterCondition{
		{ID: "status", Type: listing.FilterSelect, Values: []string{QuotePendingReview}},
	}
	s.DefaultSort = listing.SortSpec{Field: "created_at", Direction: listing.SortAsc}
	return s
}

// SeedQuotes returns the quote fixtures.
func SeedQuotes() []Quote {
	customers := []string{"Acme Logistics", "Globex Freight", "Wayne Shipping", "Northwind Traders"}
	cities := []string{"Milan", "Munich", "Lyon", "Barcelona", "Rotterdam", "Hamburg", "Warsaw"}
	modes := []string{"FTL", "LTL", "Intermodal", "Air"}
	statuses := []string{QuotePendingReview, QuoteApproved, QuoteDraft, QuotePendingReview, QuoteRejected, QuoteExpired}

	out := make([]Quote, 0, 30)
	for n := range 30 {
		out = append(out, Quote{
			ID:          fmt.Sprintf("QT-%04d", 2001+n),
			Customer:    pick(customers, n),
			Origin:      pick(cities, n),
			Destination: pick(cities, n+3),
			Mode:        pick(modes, n/2),
			Status:      pick(statuses, n),
			Amount:      float64(400 + (n*389)%5200),
			WeightKg:    float64(500 + (n*911)%22000),
			CreatedAt:   seedTime(-n*11 - 6),
		})
	}
	return out
}
