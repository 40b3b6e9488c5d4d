package logistics

import (
	"fmt"
	"time"

	"github.com/freightdesk/backoffice/pkg/listing"
)

// AuditLog is one entry of the administrative audit trail.
type AuditLog struct {
	ID         string    `json:"id" yaml:"id"`
	Actor      string    `json:"actor" yaml:"actor"`
	Action     string    `json:"action" yaml:"action"`
	Entity     string    `json:"entity" yaml:"entity"`
	Severity   string    `json:"severity" yaml:"severity"`
	Message    string    `json:"message" yaml:"message"`
	OccurredAt time.Time `json:"occurred_at" yaml:"occurred_at"`
}

// RecordID implements Record.
func (a AuditLog) RecordID() string { return a.ID }

var auditSchema = listing.MustSchema(
	AuditLog.RecordID,
	listing.Field[AuditLog]{Key: "actor", Label: "Actor", Kind: listing.KindString, Searchable: true,
		Get: func(a AuditLog) listing.Value { return str(a.Actor) }},
	listing.Field[AuditLog]{Key: "action", Label: "Action", Kind: listing.KindString, Searchable: true,
		Get: func(a AuditLog) listing.Value { return str(a.Action) }},
	listing.Field[AuditLog]{Key: "entity", Label: "Entity", Kind: listing.KindString, Searchable: true,
		Get: func(a AuditLog) listing.Value { return str(a.Entity) }},
	listing.Field[AuditLog]{Key: "severity", Label: "Severity", Kind: listing.KindString,
		Get: func(a AuditLog) listing.Value { return str(a.Severity) }},
	listing.Field[AuditLog]{Key: "message", Label: "Message", Kind: listing.KindString, Searchable: true,
		Get: func(a AuditLog) listing.Value { return str(a.Message) }},
	listing.Field[AuditLog]{Key: "occurred_at", Label: "Time", Kind: listing.KindDate,
		Get: func(a AuditLog) listing.Value { return listing.Date(a.OccurredAt) }},
)

// AuditLogs is the audit log screen.
func AuditLogs() Screen[AuditLog] {
	return Screen[AuditLog]{
		Name:   "audit_logs",
		Title:  "Audit logs",
		Schema: auditSchema,
		Filters: []listing.FilterCondition{
			{ID: "action", Label: "Action", Type: listing.FilterCheckbox,
				Options: options("create", "update", "delete", "login", "export")},
			{ID: "severity", Label: "Severity", Type: listing.FilterSelect, Options: options("info", "warning", "critical")},
			{ID: "occurred_at", Label: "Time", Type: listing.FilterDateRange},
		},
		DefaultSort: listing.SortSpec{Field: "occurred_at", Direction: listing.SortDesc},
		Seed:        SeedAuditLogs,
		WithID:      func(a AuditLog, id string) AuditLog { a.ID = id; return a },
	}
}

// SeedAuditLogs returns the audit log fixtures.
func SeedAuditLogs() []AuditLog {
	actors := []string{"m.rossi", "a.keller", "j.nguyen", "system", "l.dubois"}
	actions := []string{"update", "create", "login", "delete", "export", "update"}
	entities := []string{"invoice", "quote", "vehicle", "setting", "user", "bid"}

	out := make([]AuditLog, 0, 40)
	for n := range 40 {
		action := pick(actions, n)
		entity := pick(entities, n*5)
		severity := "info"
		switch {
		case action == "delete":
			severity = "warning"
		case entity == "setting" && action != "login":
			severity = "critical"
		}
		out = append(out, AuditLog{
			ID:         fmt.Sprintf("AUD-%05d", 50001+n),
			Actor:      pick(actors, n*7),
			Action:     action,
			Entity:     entity,
			Severity:   severity,
			Message:    fmt.Sprintf("%s %s #%d", action, entity, 100+n),
			OccurredAt: seedTime(-n * 5),
		})
	}
	return out
}
