package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/freightdesk/backoffice/pkg/listing"
	"github.com/freightdesk/backoffice/pkg/logistics"
	"github.com/freightdesk/backoffice/pkg/observability/logger"
	"github.com/freightdesk/backoffice/pkg/observability/metrics"
	"github.com/freightdesk/backoffice/pkg/observability/tracing"
	"github.com/freightdesk/backoffice/pkg/store"
)

// Options configures a Typed dataset.
type Options struct {
	Logger  logger.Logger
	Metrics *metrics.ListingMetrics
	// StoreSystem is recorded as db.system on store spans.
	StoreSystem         string
	UnknownFieldPolicy  listing.UnknownFieldPolicy
	DefaultItemsPerPage int
}

// Typed binds a screen to the store holding its records.
type Typed[T logistics.Record] struct {
	screen   logistics.Screen[T]
	store    store.Store[T]
	pipeline *listing.Pipeline[T]
	logger   logger.Logger
	metrics  *metrics.ListingMetrics
	system   string
	perPage  int
}

// New creates a dataset for screen over s.
func New[T logistics.Record](screen logistics.Screen[T], s store.Store[T], opts Options) *Typed[T] {
	policy := opts.UnknownFieldPolicy
	if policy == "" {
		policy = listing.UnknownFieldExclude
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	system := opts.StoreSystem
	if system == "" {
		system = "memory"
	}
	perPage := opts.DefaultItemsPerPage
	if perPage < 1 {
		perPage = listing.DefaultItemsPerPage
	}
	return &Typed[T]{
		screen:   screen,
		store:    s,
		pipeline: listing.New(screen.Schema, listing.WithUnknownFieldPolicy(policy)),
		logger:   log.With("dataset", screen.Name),
		metrics:  opts.Metrics,
		system:   system,
		perPage:  perPage,
	}
}

// Name implements Dataset.
func (d *Typed[T]) Name() string { return d.screen.Name }

// Store returns the underlying record store.
func (d *Typed[T]) Store() store.Store[T] { return d.store }

// Describe implements Dataset.
func (d *Typed[T]) Describe() Descriptor {
	fields := d.screen.Schema.Fields()
	sortable := make([]string, len(fields))
	for i, f := range fields {
		sortable[i] = f.Key
	}
	return Descriptor{
		Name:        d.screen.Name,
		Title:       d.screen.Title,
		Source:      d.screen.Source,
		Fields:      fields,
		Searchable:  d.pipeline.SearchFields(),
		Sortable:    sortable,
		Filters:     cloneConditions(d.screen.Filters),
		Presets:     cloneConditions(d.screen.Presets),
		DefaultSort: d.screen.DefaultSort,
	}
}

// List implements Dataset. Screen presets are ANDed with the query's
// filters, an empty sort falls back to the screen default and a zero page
// spec to page 1 of the default size.
func (d *Typed[T]) List(ctx context.Context, q listing.Query) (Result, error) {
	start := time.Now()
	q = d.normalize(q)

	ctx, span := tracing.StartListingSpan(ctx, d.screen.Name, tracing.ListingQuery{
		Search:       q.Search,
		SearchFields: q.SearchFields,
		Filters:      activeIDs(q.Filters),
		Sort:         q.Sort.String(),
		Page:         q.Page.CurrentPage,
		ItemsPerPage: q.Page.ItemsPerPage,
	})
	defer span.End()

	records, err := d.snapshot(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		if d.metrics != nil {
			d.metrics.Failed(d.screen.Name)
		}
		return Result{}, fmt.Errorf("dataset %s: %w", d.screen.Name, err)
	}

	run := q.Clone()
	run.Filters = append(run.Filters, cloneConditions(d.screen.Presets)...)
	page := d.pipeline.Run(records, run)

	tracing.SetListingResult(span, page.TotalItems, page.TotalPages, len(page.Items))
	tracing.RecordSuccess(span)
	if d.metrics != nil {
		d.metrics.Observe(d.screen.Name, time.Since(start), page.TotalItems)
	}
	d.logger.WithContext(ctx).Debug("listing served",
		"total_items", page.TotalItems,
		"page", page.CurrentPage,
		"returned", len(page.Items),
	)

	return Result{
		Items:        page.Items,
		Count:        len(page.Items),
		TotalItems:   page.TotalItems,
		TotalPages:   page.TotalPages,
		CurrentPage:  page.CurrentPage,
		ItemsPerPage: page.ItemsPerPage,
		ClampedPage:  listing.ClampPage(page.CurrentPage, page.TotalItems, page.ItemsPerPage),
		Query:        q,
		Version:      d.store.Version(),
	}, nil
}

func (d *Typed[T]) normalize(q listing.Query) listing.Query {
	q = q.Clone()
	q.Search = strings.TrimSpace(q.Search)
	if q.Sort.Field == "" {
		q.Sort = d.screen.DefaultSort
	}
	if q.Page.ItemsPerPage == 0 {
		q.Page.ItemsPerPage = d.perPage
	}
	if q.Page.CurrentPage == 0 {
		q.Page.CurrentPage = 1
	}
	for i, f := range q.Filters {
		if f.Type == "" {
			q.Filters[i].Type = d.filterType(f.ID)
		}
	}
	return q
}

// filterType returns the widget type the screen declares for a filter key,
// so that callers sending bare key/value pairs get date range semantics.
func (d *Typed[T]) filterType(id string) listing.FilterType {
	key := listing.CanonicalKey(id)
	for _, f := range d.screen.Filters {
		if listing.CanonicalKey(f.ID) == key {
			return f.Type
		}
	}
	return ""
}

func (d *Typed[T]) snapshot(ctx context.Context) ([]T, error) {
	ctx, span := tracing.StartStoreSpan(ctx, d.system, "snapshot", d.screen.StoreName())
	defer span.End()
	records, err := d.store.Snapshot(ctx)
	tracing.RecordError(span, err)
	return records, err
}

// Get implements Dataset.
func (d *Typed[T]) Get(ctx context.Context, id string) (any, error) {
	ctx, span := tracing.StartStoreSpan(ctx, d.system, "get", d.screen.StoreName())
	defer span.End()
	record, err := d.store.Get(ctx, id)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return record, nil
}

// Create implements Dataset.
func (d *Typed[T]) Create(ctx context.Context, payload []byte) (any, error) {
	record, err := decode[T](payload)
	if err != nil {
		return nil, err
	}
	if record.RecordID() == "" {
		record = d.screen.WithID(record, uuid.NewString())
	}

	ctx, span := tracing.StartStoreSpan(ctx, d.system, "create", d.screen.StoreName())
	defer span.End()
	created, err := d.store.Create(ctx, record)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	d.logger.WithContext(ctx).Info("record created", "id", created.RecordID())
	return created, nil
}

// Update implements Dataset. A payload id, when present, must match id.
func (d *Typed[T]) Update(ctx context.Context, id string, payload []byte) (any, error) {
	record, err := decode[T](payload)
	if err != nil {
		return nil, err
	}
	if got := record.RecordID(); got != "" && got != id {
		return nil, fmt.Errorf("%w: payload id %q does not match %q", store.ErrInvalid, got, id)
	}
	record = d.screen.WithID(record, id)

	ctx, span := tracing.StartStoreSpan(ctx, d.system, "update", d.screen.StoreName())
	defer span.End()
	updated, err := d.store.Update(ctx, record)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	d.logger.WithContext(ctx).Info("record updated", "id", id)
	return updated, nil
}

// Delete implements Dataset.
func (d *Typed[T]) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartStoreSpan(ctx, d.system, "delete", d.screen.StoreName())
	defer span.End()
	if err := d.store.Delete(ctx, id); err != nil {
		tracing.RecordError(span, err)
		return err
	}
	d.logger.WithContext(ctx).Info("record deleted", "id", id)
	return nil
}

// Version implements Dataset.
func (d *Typed[T]) Version() uint64 { return d.store.Version() }

func decode[T any](payload []byte) (T, error) {
	var record T
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&record); err != nil {
		return record, fmt.Errorf("%w: %v", store.ErrInvalid, err)
	}
	return record, nil
}

func cloneConditions(in []listing.FilterCondition) []listing.FilterCondition {
	out := make([]listing.FilterCondition, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

func activeIDs(conditions []listing.FilterCondition) []string {
	var ids []string
	for _, c := range conditions {
		if c.Active() && !slices.Contains(ids, c.ID) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
