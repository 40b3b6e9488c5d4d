// Package dataset exposes each back-office screen as a named, type-erased
// listing endpoint backed by a record store.
package dataset

import (
	"context"

	"github.com/freightdesk/backoffice/pkg/listing"
)

// Descriptor describes a dataset to clients that build list screens.
type Descriptor struct {
	Name        string                    `json:"name" yaml:"name"`
	Title       string                    `json:"title" yaml:"title"`
	Source      string                    `json:"source,omitempty" yaml:"source,omitempty"`
	Fields      []listing.FieldInfo       `json:"fields" yaml:"fields"`
	Searchable  []string                  `json:"searchable" yaml:"searchable"`
	Sortable    []string                  `json:"sortable" yaml:"sortable"`
	Filters     []listing.FilterCondition `json:"filters" yaml:"filters"`
	Presets     []listing.FilterCondition `json:"presets,omitempty" yaml:"presets,omitempty"`
	DefaultSort listing.SortSpec          `json:"default_sort" yaml:"default_sort"`
}

// Result is one listing page in type-erased form.
type Result struct {
	// Items holds a []T of the dataset's record type.
	Items        any `json:"items" yaml:"items"`
	Count        int `json:"count" yaml:"count"`
	TotalItems   int `json:"total_items" yaml:"total_items"`
	TotalPages   int `json:"total_pages" yaml:"total_pages"`
	CurrentPage  int `json:"current_page" yaml:"current_page"`
	ItemsPerPage int `json:"items_per_page" yaml:"items_per_page"`
	// ClampedPage is the nearest page that holds results; clients showing
	// an empty out-of-range page navigate there.
	ClampedPage int           `json:"clamped_page" yaml:"clamped_page"`
	Query       listing.Query `json:"query" yaml:"query"`
	Version     uint64        `json:"version" yaml:"version"`
}

// Dataset is a named listing endpoint.
type Dataset interface {
	Name() string
	Describe() Descriptor
	// List runs the listing pipeline over a store snapshot.
	List(ctx context.Context, q listing.Query) (Result, error)
	Get(ctx context.Context, id string) (any, error)
	// Create decodes a JSON record and stores it. A record without an id
	// gets a generated one.
	Create(ctx context.Context, payload []byte) (any, error)
	// Update replaces the record with the given id by the decoded payload.
	Update(ctx context.Context, id string, payload []byte) (any, error)
	Delete(ctx context.Context, id string) error
	Version() uint64
}
