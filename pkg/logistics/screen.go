// Package logistics declares the records shown by the back-office list
// screens together with their field schemas, filter menus and fixture data.
package logistics

import (
	"time"

	"github.com/freightdesk/backoffice/pkg/listing"
)

// Record is implemented by every record type of the back office.
type Record interface {
	RecordID() string
}

// Screen bundles what a list screen needs to run the listing pipeline over
// one record type.
type Screen[T Record] struct {
	// Name is the dataset name used in URLs and on the command line.
	Name  string
	Title string
	// Source names the dataset whose store backs this screen. Empty means
	// the screen owns its store.
	Source      string
	Schema      *listing.Schema[T]
	Filters     []listing.FilterCondition
	Presets     []listing.FilterCondition
	DefaultSort listing.SortSpec
	Seed        func() []T
	// WithID returns a copy of the record carrying id.
	WithID func(T, string) T
}

// StoreName returns the dataset name whose store the screen reads.
func (s Screen[T]) StoreName() string {
	if s.Source != "" {
		return s.Source
	}
	return s.Name
}

// seedEpoch anchors fixture timestamps so seeds are reproducible.
var seedEpoch = time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

func seedTime(hours int) time.Time {
	return seedEpoch.Add(time.Duration(hours) * time.Hour)
}

func options(values ...string) []listing.FilterOption {
	out := make([]listing.FilterOption, len(values))
	for i, v := range values {
		out[i] = listing.FilterOption{Value: v, Label: v}
	}
	return out
}

func pick[S ~[]E, E any](s S, i int) E {
	return s[i%len(s)]
}

func str(s string) listing.Value {
	if s == "" {
		return listing.Missing()
	}
	return listing.String(s)
}
