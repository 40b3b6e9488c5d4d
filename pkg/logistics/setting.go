package logistics

import (
	"time"

	"github.com/freightdesk/backoffice/pkg/listing"
)

// Setting is one system configuration entry editable from the back office.
type Setting struct {
	ID        string    `json:"id" yaml:"id"`
	Key       string    `json:"key" yaml:"key"`
	Group     string    `json:"group" yaml:"group"`
	Value     string    `json:"value" yaml:"value"`
	Scope     string    `json:"scope" yaml:"scope"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// RecordID implements Record.
func (s Setting) RecordID() string { return s.ID }

var settingSchema = listing.MustSchema(
	Setting.RecordID,
	listing.Field[Setting]{Key: "key", Label: "Key", Kind: listing.KindString, Searchable: true,
		Get: func(s Setting) listing.Value { return str(s.Key) }},
	listing.Field[Setting]{Key: "group", Label: "Group", Kind: listing.KindString,
		Get: func(s Setting) listing.Value { return str(s.Group) }},
	listing.Field[Setting]{Key: "value", Label: "Value", Kind: listing.KindString, Searchable: true,
		Get: func(s Setting) listing.Value { return str(s.Value) }},
	listing.Field[Setting]{Key: "scope", Label: "Scope", Kind: listing.KindString,
		Get: func(s Setting) listing.Value { return str(s.Scope) }},
	listing.Field[Setting]{Key: "updated_at", Label: "Updated", Kind: listing.KindDate,
		Get: func(s Setting) listing.Value { return listing.Date(s.UpdatedAt) }},
)

// Settings is the system configuration screen.
func Settings() Screen[Setting] {
	return Screen[Setting]{
		Name:   "settings",
		Title:  "System configuration",
		Schema: settingSchema,
		Filters: []listing.FilterCondition{
			{ID: "group", Label: "Group", Type: listing.FilterSelect, Options: options("billing", "dispatch", "notifications", "security")},
			{ID: "scope", Label: "Scope", Type: listing.FilterCheckbox, Options: options("global", "tenant")},
		},
		DefaultSort: listing.SortSpec{Field: "key", Direction: listing.SortAsc},
		Seed:        SeedSettings,
		WithID:      func(s Setting, id string) Setting { s.ID = id; return s },
	}
}

// SeedSettings returns the configuration fixtures.
func SeedSettings() []Setting {
	entries := []struct{ key, group, value, scope string }{
		{"billing.currency", "billing", "EUR", "global"},
		{"billing.payment_terms_days", "billing", "30", "tenant"},
		{"billing.vat_rate", "billing", "0.22", "tenant"},
		{"dispatch.max_daily_hours", "dispatch", "9", "global"},
		{"dispatch.auto_assign", "dispatch", "true", "tenant"},
		{"dispatch.bid_window_minutes", "dispatch", "45", "tenant"},
		{"notifications.sms_enabled", "notifications", "false", "tenant"},
		{"notifications.quiet_hours", "notifications", "22:00-06:00", "global"},
		{"security.session_timeout_minutes", "security", "60", "global"},
		{"security.mfa_required", "security", "true", "global"},
	}
	out := make([]Setting, len(entries))
	for n, e := range entries {
		out[n] = Setting{
			ID:        e.key,
			Key:       e.key,
			Group:     e.group,
			Value:     e.value,
			Scope:     e.scope,
			UpdatedAt: seedTime(-n * 48),
		}
	}
	return out
}
