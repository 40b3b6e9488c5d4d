package dataset

import (
	"slices"
	"testing"

	"github.com/freightdesk/backoffice/pkg/logistics"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	for _, ds := range []Dataset{
		New(logistics.Quotes(), nil, Options{}),
		New(logistics.QuoteReview(), nil, Options{}),
		New(logistics.Invoices(), nil, Options{}),
	} {
		if err := r.Register(ds); err != nil {
			t.Fatalf("Register(%s) error = %v", ds.Name(), err)
		}
	}

	if err := r.Register(New(logistics.Quotes(), nil, Options{})); err == nil {
		t.Error("expected duplicate registration error")
	}

	if got := r.Names(); !slices.Equal(got, []string{"quotes", "quote_review", "invoices"}) {
		t.Errorf("Names() = %v", got)
	}
	if len(r.All()) != 3 {
		t.Errorf("All() returned %d datasets", len(r.All()))
	}
	if _, ok := r.Lookup("quote_review"); !ok {
		t.Error("Lookup(quote_review) failed")
	}
	if _, ok := r.Lookup("shipments"); ok {
		t.Error("Lookup(shipments) should fail")
	}
}
