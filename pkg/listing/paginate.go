package listing

// DefaultItemsPerPage is the page size used when none is given.
const DefaultItemsPerPage = 10

// PageSpec selects one page of results. CurrentPage is 1-based.
type PageSpec struct {
	CurrentPage  int `json:"current_page" yaml:"current_page"`
	ItemsPerPage int `json:"items_per_page" yaml:"items_per_page"`
}

// Offset returns the index of the first item of the page.
func (p PageSpec) Offset() int {
	if p.CurrentPage <= 0 {
		return 0
	}
	return (p.CurrentPage - 1) * p.size()
}

// Limit returns the page size.
func (p PageSpec) Limit() int {
	return p.size()
}

func (p PageSpec) size() int {
	if p.ItemsPerPage < 1 {
		return 1
	}
	return p.ItemsPerPage
}

// Page is one slice of the processed records plus paging metadata.
type Page[T any] struct {
	Items        []T `json:"items"`
	TotalItems   int `json:"total_items"`
	TotalPages   int `json:"total_pages"`
	CurrentPage  int `json:"current_page"`
	ItemsPerPage int `json:"items_per_page"`
}

// TotalPages returns max(1, ceil(totalItems/itemsPerPage)).
// A page size below 1 is treated as 1.
func TotalPages(totalItems, itemsPerPage int) int {
	if itemsPerPage < 1 {
		itemsPerPage = 1
	}
	if totalItems <= 0 {
		return 1
	}
	return 1 + (totalItems-1)/itemsPerPage
}

// Paginate slices records according to spec. A page outside
// [1, TotalPages] yields an empty Items slice, never an error.
func Paginate[T any](records []T, spec PageSpec) Page[T] {
	size := spec.size()
	total := len(records)
	pages := TotalPages(total, size)

	page := Page[T]{
		Items:        make([]T, 0),
		TotalItems:   total,
		TotalPages:   pages,
		CurrentPage:  spec.CurrentPage,
		ItemsPerPage: size,
	}
	if spec.CurrentPage < 1 || spec.CurrentPage > pages {
		return page
	}

	lo := (spec.CurrentPage - 1) * size
	hi := min(lo+size, total)
	if lo < hi {
		page.Items = append(make([]T, 0, hi-lo), records[lo:hi]...)
	}
	return page
}

// ClampPage moves page into [1, max(1, TotalPages(totalItems, itemsPerPage))].
// The collaborator owning the view calls it whenever the result size or the
// page size changes.
func ClampPage(page, totalItems, itemsPerPage int) int {
	if page < 1 {
		return 1
	}
	if last := TotalPages(totalItems, itemsPerPage); page > last {
		return last
	}
	return page
}
