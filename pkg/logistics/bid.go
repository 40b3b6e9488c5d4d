package logistics

import (
	"fmt"
	"time"

	"github.com/freightdesk/backoffice/pkg/listing"
)

// Bid is a driver's offer to haul a load.
type Bid struct {
	ID          string    `json:"id" yaml:"id"`
	Load        string    `json:"load" yaml:"load"`
	Driver      string    `json:"driver" yaml:"driver"`
	Lane        string    `json:"lane" yaml:"lane"`
	Status      string    `json:"status" yaml:"status"`
	Amount      float64   `json:"amount" yaml:"amount"`
	Equipment   string    `json:"equipment" yaml:"equipment"`
	SubmittedAt time.Time `json:"submitted_at" yaml:"submitted_at"`
}

// RecordID implements Record.
func (b Bid) RecordID() string { return b.ID }

var bidSchema = listing.MustSchema(
	Bid.RecordID,
	listing.Field[Bid]{Key: "load", Label: "Load", Kind: listing.KindString, Searchable: true,
		Get: func(b Bid) listing.Value { return str(b.Load) }},
	listing.Field[Bid]{Key: "driver", Label: "Driver", Kind: listing.KindString, Searchable: true,
		Get: func(b Bid) listing.Value { return str(b.Driver) }},
	listing.Field[Bid]{Key: "lane", Label: "Lane", Kind: listing.KindString, Searchable: true,
		Get: func(b Bid) listing.Value { return str(b.Lane) }},
	listing.Field[Bid]{Key: "status", Label: "Status", Kind: listing.KindString,
		Get: func(b Bid) listing.Value { return str(b.Status) }},
	listing.Field[Bid]{Key: "amount", Label: "Bid", Kind: listing.KindNumber,
		Get: func(b Bid) listing.Value { return listing.Number(b.Amount) }},
	listing.Field[Bid]{Key: "equipment", Label: "Equipment", Kind: listing.KindString,
		Get: func(b Bid) listing.Value { return str(b.Equipment) }},
	listing.Field[Bid]{Key: "submitted_at", Label: "Submitted", Kind: listing.KindDate,
		Get: func(b Bid) listing.Value { return listing.Date(b.SubmittedAt) }},
)

// Bids is the driver bidding screen.
func Bids() Screen[Bid] {
	return Screen[Bid]{
		Name:   "bids",
		Title:  "Driver bidding",
		Schema: bidSchema,
		Filters: []listing.FilterCondition{
			{ID: "status", Label: "Status", Type: listing.FilterSelect, Options: options("Open", "Accepted", "Rejected", "Withdrawn")},
			{ID: "equipment", Label: "Equipment", Type: listing.FilterCheckbox, Options: options("Dry van", "Reefer", "Flatbed", "Tanker")},
		},
		DefaultSort: listing.SortSpec{Field: "amount", Direction: listing.SortAsc},
		Seed:        SeedBids,
		WithID:      func(b Bid, id string) Bid { b.ID = id; return b },
	}
}

// SeedBids returns the bid fixtures.
func SeedBids() []Bid {
	drivers := []string{"Carlos Mendes", "Ava Thompson", "Piotr Nowak", "Fatima Zahra", "Kenji Sato", "Emma Schulz"}
	lanes := []string{"Milan → Munich", "Lyon → Barcelona", "Rotterdam → Hamburg", "Vienna → Prague"}
	statuses := []string{"Open", "Open", "Accepted", "Rejected", "Withdrawn"}
	equipment := []string{"Dry van", "Reefer", "Flatbed", "Tanker"}

	out := make([]Bid, 0, 30)
	for n := range 30 {
		out = append(out, Bid{
			ID:          fmt.Sprintf("BID-%04d", 701+n),
			Load:        fmt.Sprintf("LD-%04d", 9000+n/3),
			Driver:      pick(drivers, n*5),
			Lane:        pick(lanes, n/3),
			Status:      pick(statuses, n),
			Amount:      float64(900 + (n*233)%1700),
			Equipment:   pick(equipment, n/3),
			SubmittedAt: seedTime(-n*3 - 1),
		})
	}
	return out
}
