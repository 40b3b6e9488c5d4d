package listing

import (
	"reflect"
	"testing"
)

func newTestView() *View {
	return NewView([]FilterCondition{
		{ID: "status", Type: FilterSelect, Options: []FilterOption{{Value: "Sent", Label: "Sent"}, {Value: "Paid", Label: "Paid"}}},
		{ID: "tags", Type: FilterCheckbox},
		{ID: "issued_at", Type: FilterDateRange},
	}, SortSpec{Field: "issued_at", Direction: SortDesc}, 0)
}

func TestNewView_Defaults(t *testing.T) {
	v := newTestView()
	if v.Page() != 1 {
		t.Errorf("Page() = %d, want 1", v.Page())
	}
	if v.ItemsPerPage() != DefaultItemsPerPage {
		t.Errorf("ItemsPerPage() = %d, want %d", v.ItemsPerPage(), DefaultItemsPerPage)
	}
	if got := v.Sort(); got != (SortSpec{Field: "issued_at", Direction: SortDesc}) {
		t.Errorf("Sort() = %+v", got)
	}
}

func TestView_ChangesResetPage(t *testing.T) {
	tests := []struct {
		name   string
		change func(v *View)
	}{
		{name: "search", change: func(v *View) { v.SetSearch("acme") }},
		{name: "set filter", change: func(v *View) { v.SetFilter("status", "Sent") }},
		{name: "toggle filter", change: func(v *View) { v.ToggleFilterValue("tags", "hazmat") }},
		{name: "clear filters", change: func(v *View) { v.ClearFilters() }},
		{name: "page size", change: func(v *View) { v.SetItemsPerPage(25) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestView()
			v.SetPage(4)
			tt.change(v)
			if v.Page() != 1 {
				t.Errorf("Page() = %d, want 1", v.Page())
			}
		})
	}

	t.Run("sort keeps page", func(t *testing.T) {
		v := newTestView()
		v.SetPage(3)
		v.ToggleSort("amount")
		if v.Page() != 3 {
			t.Errorf("Page() = %d, want 3", v.Page())
		}
	})
}

func TestView_ToggleFilterValue(t *testing.T) {
	v := newTestView()

	v.ToggleFilterValue("status", "Sent")
	v.ToggleFilterValue("status", "Paid")
	if f, _ := v.Filter("status"); !reflect.DeepEqual(f.Values, []string{"Paid"}) {
		t.Errorf("select values = %v, want [Paid]", f.Values)
	}
	v.ToggleFilterValue("status", "Paid")
	if f, _ := v.Filter("status"); f.Active() {
		t.Errorf("select values = %v, want none", f.Values)
	}

	v.ToggleFilterValue("tags", "hazmat")
	v.ToggleFilterValue("tags", "express")
	v.ToggleFilterValue("tags", "hazmat")
	if f, _ := v.Filter("tags"); !reflect.DeepEqual(f.Values, []string{"express"}) {
		t.Errorf("checkbox values = %v, want [express]", f.Values)
	}

	if v.ToggleFilterValue("carrier", "x") {
		t.Error("ToggleFilterValue on undeclared filter reported true")
	}
}

func TestView_ToggleSort(t *testing.T) {
	v := newTestView()

	v.ToggleSort("issuedAt")
	if got := v.Sort(); got.Direction != SortAsc {
		t.Errorf("after toggle on current field Sort() = %+v, want asc", got)
	}
	v.ToggleSort("amount")
	if got := v.Sort(); got != (SortSpec{Field: "amount", Direction: SortAsc}) {
		t.Errorf("Sort() = %+v, want amount:asc", got)
	}
	v.ToggleSort("amount")
	if got := v.Sort(); got.Direction != SortDesc {
		t.Errorf("Sort() = %+v, want desc", got)
	}
}

func TestView_Reconcile(t *testing.T) {
	v := newTestView()
	v.SetPage(5)
	if got := v.Reconcile(3); got != 1 {
		t.Errorf("Reconcile(3) = %d, want 1", got)
	}

	v.SetItemsPerPage(2)
	v.SetPage(9)
	if got := v.Reconcile(7); got != 4 {
		t.Errorf("Reconcile(7) = %d, want 4", got)
	}
	if got := v.Reconcile(0); got != 1 {
		t.Errorf("Reconcile(0) = %d, want 1", got)
	}
}

func TestView_QueryIsSnapshot(t *testing.T) {
	v := newTestView()
	v.SetFilter("tags", "express")
	q := v.Query()
	q.Filters[1].Values[0] = "mutated"

	if f, _ := v.Filter("tags"); f.Values[0] != "express" {
		t.Errorf("view shares memory with its query: %v", f.Values)
	}
	if q.Page != (PageSpec{CurrentPage: 1, ItemsPerPage: DefaultItemsPerPage}) {
		t.Errorf("Query().Page = %+v", q.Page)
	}
}

func TestView_Reset(t *testing.T) {
	v := newTestView()
	v.SetSearch("acme")
	v.SetFilter("status", "Paid")
	v.ToggleSort("amount")
	v.SetItemsPerPage(50)
	v.SetPage(2)

	v.Reset()

	q := v.Query()
	if q.Search != "" || len(q.ActiveFilters()) != 0 {
		t.Errorf("Reset left search %q filters %v", q.Search, q.ActiveFilters())
	}
	if q.Sort != (SortSpec{Field: "issued_at", Direction: SortDesc}) {
		t.Errorf("Reset sort = %+v", q.Sort)
	}
	if q.Page != (PageSpec{CurrentPage: 1, ItemsPerPage: DefaultItemsPerPage}) {
		t.Errorf("Reset page = %+v", q.Page)
	}
}

func TestView_EmptyDateRangeIsInactive(t *testing.T) {
	v := newTestView()
	v.SetFilter("issued_at", "", "")
	if got := v.Query().ActiveFilters(); len(got) != 0 {
		t.Errorf("ActiveFilters() = %v, want none", got)
	}

	v.SetFilter("issued_at", "", "2024-03-01")
	if got := v.Query().ActiveFilters(); len(got) != 1 || got[0].ID != "issued_at" {
		t.Errorf("ActiveFilters() = %v, want issued_at", got)
	}
}
