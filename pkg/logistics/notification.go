package logistics

import (
	"fmt"
	"time"

	"github.com/freightdesk/backoffice/pkg/listing"
)

// Notification is a message sent to drivers, customers or staff.
type Notification struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Audience string    `json:"audience" yaml:"audience"`
	Channel  string    `json:"channel" yaml:"channel"`
	Status   string    `json:"status" yaml:"status"`
	Tags     []string  `json:"tags" yaml:"tags"`
	SentAt   time.Time `json:"sent_at" yaml:"sent_at"`
}

// RecordID implements Record.
func (n Notification) RecordID() string { return n.ID }

var notificationSchema = listing.MustSchema(
	Notification.RecordID,
	listing.Field[Notification]{Key: "title", Label: "Title", Kind: listing.KindString, Searchable: true,
		Get: func(n Notification) listing.Value { return str(n.Title) }},
	listing.Field[Notification]{Key: "audience", Label: "Audience", Kind: listing.KindString,
		Get: func(n Notification) listing.Value { return str(n.Audience) }},
	listing.Field[Notification]{Key: "channel", Label: "Channel", Kind: listing.KindString,
		Get: func(n Notification) listing.Value { return str(n.Channel) }},
	listing.Field[Notification]{Key: "status", Label: "Status", Kind: listing.KindString,
		Get: func(n Notification) listing.Value { return str(n.Status) }},
	listing.Field[Notification]{Key: "tags", Label: "Tags", Kind: listing.KindList, Searchable: true,
		Get: func(n Notification) listing.Value { return listing.List(n.Tags...) }},
	// Scheduled notifications have no send time yet.
	listing.Field[Notification]{Key: "sent_at", Label: "Sent", Kind: listing.KindDate,
		Get: func(n Notification) listing.Value { return listing.Date(n.SentAt) }},
)

// Notifications is the notifications screen.
func Notifications() Screen[Notification] {
	return Screen[Notification]{
		Name:   "notifications",
		Title:  "Notifications",
		Schema: notificationSchema,
		Filters: []listing.FilterCondition{
			{ID: "audience", Label: "Audience", Type: listing.FilterSelect, Options: options("drivers", "customers", "staff")},
			{ID: "channel", Label: "Channel", Type: listing.FilterCheckbox, Options: options("push", "email", "sms")},
			{ID: "tags", Label: "Tags", Type: listing.FilterCheckbox, Options: options("urgent", "billing", "route", "maintenance")},
			{ID: "status", Label: "Status", Type: listing.FilterSelect, Options: options("Scheduled", "Sent", "Failed")},
		},
		DefaultSort: listing.SortSpec{Field: "sent_at", Direction: listing.SortDesc},
		Seed:        SeedNotifications,
		WithID:      func(n Notification, id string) Notification { n.ID = id; return n },
	}
}

// SeedNotifications returns the notification fixtures.
func SeedNotifications() []Notification {
	titles := []string{"Route change", "Invoice available", "Vehicle service due", "Weather alert", "New load posted"}
	audiences := []string{"drivers", "customers", "staff"}
	channels := []string{"push", "email", "sms", "push"}
	tagSets := [][]string{{"route", "urgent"}, {"billing"}, {"maintenance"}, {"urgent"}, {"route"}}
	statuses := []string{"Sent", "Sent", "Scheduled", "Failed", "Sent"}

	out := make([]Notification, 0, 25)
	for n := range 25 {
		status := pick(statuses, n)
		var sent time.Time
		if status != "Scheduled" {
			sent = seedTime(-n * 4)
		}
		out = append(out, Notification{
			ID:       fmt.Sprintf("NTF-%04d", 1+n),
			Title:    pick(titles, n),
			Audience: pick(audiences, n),
			Channel:  pick(channels, n*3),
			Status:   status,
			Tags:     append([]string(nil), pick(tagSets, n)...),
			SentAt:   sent,
		})
	}
	return out
}
