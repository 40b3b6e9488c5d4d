package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := NewTestProvider(recorder)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return recorder
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestStartListingSpan(t *testing.T) {
	recorder := setupTestTracer(t)

	_, span := StartListingSpan(context.Background(), "invoices", ListingQuery{
		Search:       "acme",
		Filters:      []string{"status"},
		Sort:         "amount:desc",
		Page:         2,
		ItemsPerPage: 10,
	})
	SetListingResult(span, 24, 3, 10)
	RecordSuccess(span)
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	s := spans[0]
	if s.Name() != "listing invoices" {
		t.Errorf("span name = %q", s.Name())
	}
	if s.SpanKind() != trace.SpanKindInternal {
		t.Errorf("span kind = %v", s.SpanKind())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}
	attrs := attrMap(s.Attributes())
	if attrs["listing.dataset"].AsString() != "invoices" {
		t.Errorf("listing.dataset = %v", attrs["listing.dataset"])
	}
	if !attrs["listing.search"].AsBool() {
		t.Error("listing.search should be true")
	}
	if got := attrs["listing.filters"].AsStringSlice(); len(got) != 1 || got[0] != "status" {
		t.Errorf("listing.filters = %v", got)
	}
	if attrs["listing.total_items"].AsInt64() != 24 || attrs["listing.returned"].AsInt64() != 10 {
		t.Errorf("result attributes = %v", attrs)
	}
	if _, ok := attrs["listing.search_fields"]; ok {
		t.Error("empty search fields should not be recorded")
	}
}

func TestStartStoreSpan(t *testing.T) {
	recorder := setupTestTracer(t)

	ctx, parent := StartListingSpan(context.Background(), "quotes", ListingQuery{Page: 1, ItemsPerPage: 10})
	_, child := StartStoreSpan(ctx, "postgresql", "snapshot", "quotes")
	RecordError(child, errors.New("connection reset"))
	child.End()
	parent.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	s := spans[0]
	if s.Name() != "store snapshot quotes" || s.SpanKind() != trace.SpanKindClient {
		t.Errorf("span = %q kind %v", s.Name(), s.SpanKind())
	}
	if s.Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Error("store span should be a child of the listing span")
	}
	if s.Status().Code != codes.Error || s.Status().Description != "connection reset" {
		t.Errorf("status = %+v", s.Status())
	}
	if len(s.Events()) != 1 || s.Events()[0].Name != "exception" {
		t.Errorf("events = %v", s.Events())
	}
	if attrMap(s.Attributes())["db.system"].AsString() != "postgresql" {
		t.Errorf("db.system missing")
	}
}

func TestRecordError_Nil(t *testing.T) {
	recorder := setupTestTracer(t)
	_, span := StartStoreSpan(context.Background(), "memory", "get", "bids")
	RecordError(span, nil)
	span.End()

	if got := recorder.Ended()[0].Status().Code; got != codes.Unset {
		t.Errorf("status = %v, want Unset", got)
	}
}

func TestTracerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TracerConfig
		wantErr bool
	}{
		{name: "disabled", cfg: TracerConfig{}},
		{name: "enabled", cfg: TracerConfig{Enabled: true, ServiceName: "backoffice", Endpoint: "localhost:4317", SampleRate: 0.5}},
		{name: "missing endpoint", cfg: TracerConfig{Enabled: true, ServiceName: "backoffice", SampleRate: 1}, wantErr: true},
		{name: "bad rate", cfg: TracerConfig{Enabled: true, ServiceName: "backoffice", Endpoint: "x:1", SampleRate: 2}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), TracerConfig{})
	if err != nil {
		t.Fatalf("NewTracerProvider() error = %v", err)
	}
	if tp.Enabled() {
		t.Error("provider should be disabled")
	}
	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	span.End()
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewTracerProvider_InvalidConfig(t *testing.T) {
	if _, err := NewTracerProvider(context.Background(), TracerConfig{Enabled: true}); err == nil {
		t.Fatal("expected error for enabled config without endpoint")
	}
}
