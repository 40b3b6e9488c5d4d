package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ListingQuery carries the query attributes recorded on a listing span.
type ListingQuery struct {
	Search       string
	SearchFields []string
	Filters      []string
	Sort         string
	Page         int
	ItemsPerPage int
}

// StartListingSpan starts the span that covers one listing request,
// named "listing <dataset>".
func StartListingSpan(ctx context.Context, dataset string, q ListingQuery) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("listing.dataset", dataset),
		attribute.Bool("listing.search", q.Search != ""),
		attribute.Int("listing.page", q.Page),
		attribute.Int("listing.items_per_page", q.ItemsPerPage),
	}
	if len(q.SearchFields) > 0 {
		attrs = append(attrs, attribute.StringSlice("listing.search_fields", q.SearchFields))
	}
	if len(q.Filters) > 0 {
		attrs = append(attrs, attribute.StringSlice("listing.filters", q.Filters))
	}
	if q.Sort != "" {
		attrs = append(attrs, attribute.String("listing.sort", q.Sort))
	}
	return otel.Tracer(InstrumentationName).Start(ctx, "listing "+dataset,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// SetListingResult records the outcome of a listing on its span.
func SetListingResult(span trace.Span, totalItems, totalPages, returned int) {
	span.SetAttributes(
		attribute.Int("listing.total_items", totalItems),
		attribute.Int("listing.total_pages", totalPages),
		attribute.Int("listing.returned", returned),
	)
}

// StartStoreSpan starts a client span around a record store call, named
// "store <operation> <dataset>".
func StartStoreSpan(ctx context.Context, system, operation, dataset string) (context.Context, trace.Span) {
	name := strings.Join([]string{"store", operation, dataset}, " ")
	return otel.Tracer(InstrumentationName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", system),
			attribute.String("db.operation", operation),
			attribute.String("db.collection", dataset),
		),
	)
}

// RecordError records err on span and marks it failed. A nil err is a no-op.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// RecordSuccess sets the span status to OK.
func RecordSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}
