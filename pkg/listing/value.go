// Package listing implements the list-view data pipeline shared by every
// back-office screen: free-text search, multi-value filtering, stable sorting
// and pagination over an in-memory snapshot of records.
//
// Every stage is a pure function of its inputs. Records are never mutated and
// every stage returns a fresh slice, so a snapshot can be shared read-only by
// any number of concurrent views.
package listing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies how a field value is compared and rendered.
type Kind string

// Field kinds
const (
	// KindString is compared with the invariant-locale collator
	KindString Kind = "string"
	// KindNumber is compared numerically
	KindNumber Kind = "number"
	// KindDate is compared by instant
	KindDate Kind = "date"
	// KindList holds several string values (multi-select fields)
	KindList Kind = "list"
)

// Value is the result of reading one field from a record.
// The zero Value is missing.
type Value struct {
	kind    Kind
	str     string
	num     float64
	at      time.Time
	list    []string
	present bool
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s, present: true}
}

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n, present: true}
}

// Int returns a numeric value from an integer.
func Int(n int64) Value {
	return Number(float64(n))
}

// Date returns a date value. The zero time is treated as missing.
func Date(t time.Time) Value {
	if t.IsZero() {
		return Missing()
	}
	return Value{kind: KindDate, at: t, present: true}
}

// List returns a multi-value field.
func List(items ...string) Value {
	return Value{kind: KindList, list: append([]string(nil), items...), present: true}
}

// Missing returns a value for a field the record does not carry.
func Missing() Value {
	return Value{}
}

// Kind reports the kind of the value. Missing values have an empty kind.
func (v Value) Kind() Kind {
	return v.kind
}

// IsMissing reports whether the record had no value for the field.
func (v Value) IsMissing() bool {
	return !v.present
}

// Str returns the string payload.
func (v Value) Str() string { return v.str }

// Num returns the numeric payload.
func (v Value) Num() float64 { return v.num }

// Time returns the date payload.
func (v Value) Time() time.Time { return v.at }

// Items returns the list payload.
func (v Value) Items() []string { return v.list }

// Text normalizes the value to the string used for search and filter matching.
// Numbers use their shortest decimal form (50 -> "50"), dates render as
// 2006-01-02 when they fall on UTC midnight and RFC 3339 otherwise.
func (v Value) Text() string {
	if !v.present {
		return ""
	}
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		return formatDate(v.at)
	case KindList:
		return strings.Join(v.list, ", ")
	default:
		return ""
	}
}

// Strings returns the individual values used for filter membership.
// Scalars yield a single element, lists yield their items and missing
// values yield nothing.
func (v Value) Strings() []string {
	if !v.present {
		return nil
	}
	if v.kind == KindList {
		return v.list
	}
	return []string{v.Text()}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if !v.present {
		return "<missing>"
	}
	return fmt.Sprintf("%s(%s)", v.kind, v.Text())
}

func formatDate(t time.Time) string {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2",
}

// ParseDate parses the date formats accepted by date filters and fixtures.
// Layouts without a zone are interpreted as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
