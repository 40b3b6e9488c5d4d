package listing

import (
	"slices"
	"strings"
)

// View holds the mutable state one list screen owns: the search box, filter
// selections, sort menu and pagination controls. It is not safe for
// concurrent use; every open view keeps its own View.
type View struct {
	search       string
	filters      []FilterCondition
	sort         SortSpec
	page         int
	itemsPerPage int

	initialSort         SortSpec
	initialItemsPerPage int
}

// NewView creates a view with the given filter definitions, default sort and
// page size. Filter values present in filters become the initial selection
// only until Reset or ClearFilters.
func NewView(filters []FilterCondition, sort SortSpec, itemsPerPage int) *View {
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}
	v := &View{
		filters:             make([]FilterCondition, len(filters)),
		sort:                sort,
		page:                1,
		itemsPerPage:        itemsPerPage,
		initialSort:         sort,
		initialItemsPerPage: itemsPerPage,
	}
	for i, f := range filters {
		v.filters[i] = f.Clone()
	}
	return v
}

// Search returns the current search text.
func (v *View) Search() string { return v.search }

// Sort returns the current sort spec.
func (v *View) Sort() SortSpec { return v.sort }

// Page returns the current page.
func (v *View) Page() int { return v.page }

// ItemsPerPage returns the current page size.
func (v *View) ItemsPerPage() int { return v.itemsPerPage }

// SetSearch updates the search text and returns to the first page.
func (v *View) SetSearch(query string) {
	v.search = query
	v.page = 1
}

// Filter returns a copy of the filter with the given id.
func (v *View) Filter(id string) (FilterCondition, bool) {
	i := v.filterIndex(id)
	if i < 0 {
		return FilterCondition{}, false
	}
	return v.filters[i].Clone(), true
}

// SetFilter replaces the selected values of a filter. A filter id that was
// not declared is added as a select filter.
func (v *View) SetFilter(id string, values ...string) {
	i := v.filterIndex(id)
	if i < 0 {
		v.filters = append(v.filters, FilterCondition{ID: id, Type: FilterSelect})
		i = len(v.filters) - 1
	}
	v.filters[i].Values = slices.Clone(values)
	v.page = 1
}

// ToggleFilterValue selects or deselects one value. Select filters hold a
// single value, checkbox and text filters accumulate. Date ranges are set
// with SetFilter. It reports whether the filter exists.
func (v *View) ToggleFilterValue(id, value string) bool {
	i := v.filterIndex(id)
	if i < 0 {
		return false
	}
	f := &v.filters[i]
	pos := slices.Index(f.Values, value)

	switch f.Type {
	case FilterDateRange:
		return true
	case FilterSelect:
		if pos >= 0 && len(f.Values) == 1 {
			f.Values = nil
		} else {
			f.Values = []string{value}
		}
	default:
		if pos >= 0 {
			f.Values = slices.Delete(slices.Clone(f.Values), pos, pos+1)
		} else {
			f.Values = append(slices.Clone(f.Values), value)
		}
	}
	v.page = 1
	return true
}

// ClearFilter deselects every value of one filter.
func (v *View) ClearFilter(id string) {
	if i := v.filterIndex(id); i >= 0 {
		v.filters[i].Values = nil
		v.page = 1
	}
}

// ClearFilters deselects every filter value.
func (v *View) ClearFilters() {
	for i := range v.filters {
		v.filters[i].Values = nil
	}
	v.page = 1
}

// SetSort sets the sort spec.
func (v *View) SetSort(spec SortSpec) {
	v.sort = spec
}

// ToggleSort sorts by field, flipping the direction when the field is
// already selected and starting ascending otherwise.
func (v *View) ToggleSort(field string) {
	if CanonicalKey(v.sort.Field) == CanonicalKey(field) && v.sort.Field != "" {
		if v.sort.Direction == SortDesc {
			v.sort.Direction = SortAsc
		} else {
			v.sort.Direction = SortDesc
		}
		return
	}
	v.sort = SortSpec{Field: field, Direction: SortAsc}
}

// SetPage moves to page. Values below 1 become 1; the upper bound is applied
// by Reconcile once the result size is known.
func (v *View) SetPage(page int) {
	v.page = max(page, 1)
}

// SetItemsPerPage changes the page size and returns to the first page.
func (v *View) SetItemsPerPage(n int) {
	if n < 1 {
		n = DefaultItemsPerPage
	}
	v.itemsPerPage = n
	v.page = 1
}

// Reconcile clamps the current page after the result size changed and
// returns the resulting page.
func (v *View) Reconcile(totalItems int) int {
	v.page = ClampPage(v.page, totalItems, v.itemsPerPage)
	return v.page
}

// Reset restores the defaults the view was created with.
func (v *View) Reset() {
	v.search = ""
	v.sort = v.initialSort
	v.itemsPerPage = v.initialItemsPerPage
	v.ClearFilters()
}

// Query returns a snapshot of the state that shares no memory with the view.
func (v *View) Query() Query {
	q := Query{
		Search: v.search,
		Sort:   v.sort,
		Page:   PageSpec{CurrentPage: v.page, ItemsPerPage: v.itemsPerPage},
	}
	if len(v.filters) > 0 {
		q.Filters = make([]FilterCondition, len(v.filters))
		for i, f := range v.filters {
			q.Filters[i] = f.Clone()
		}
	}
	return q
}

func (v *View) filterIndex(id string) int {
	key := CanonicalKey(id)
	return slices.IndexFunc(v.filters, func(f FilterCondition) bool {
		return strings.EqualFold(CanonicalKey(f.ID), key)
	})
}
