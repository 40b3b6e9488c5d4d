package listing

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortDirection defines the direction of sorting.
type SortDirection string

// Sort direction constants
const (
	// SortAsc sorts in ascending order
	SortAsc SortDirection = "asc"
	// SortDesc sorts in descending order
	SortDesc SortDirection = "desc"
)

// SortSpec specifies field and direction for ordering results.
// An empty Field keeps the input order.
type SortSpec struct {
	Field     string        `json:"field" yaml:"field"`
	Direction SortDirection `json:"direction" yaml:"direction"`
}

// ParseSortSpec parses "field", "field:asc" or "field:desc".
// Any direction other than desc sorts ascending.
func ParseSortSpec(s string) SortSpec {
	field, dir, _ := strings.Cut(strings.TrimSpace(s), ":")
	spec := SortSpec{Field: strings.TrimSpace(field), Direction: SortAsc}
	if strings.EqualFold(strings.TrimSpace(dir), string(SortDesc)) {
		spec.Direction = SortDesc
	}
	return spec
}

// String renders the spec in the form accepted by ParseSortSpec.
func (s SortSpec) String() string {
	if s.Field == "" {
		return ""
	}
	dir := s.Direction
	if dir != SortDesc {
		dir = SortAsc
	}
	return s.Field + ":" + string(dir)
}

// Sort returns a new slice ordered by spec. The sort is stable for both
// directions: desc negates the comparator rather than reversing the result.
//
// Strings are collated in the invariant locale ignoring case, numbers in
// natural order and dates by instant. Missing values, or values whose kind
// differs from the field kind, sort after every comparable value in
// ascending order. An unknown field returns the records in input order.
func Sort[T any](schema *Schema[T], records []T, spec SortSpec) []T {
	out := slices.Clone(records)
	if spec.Field == "" || len(out) < 2 {
		return out
	}
	f, ok := schema.Field(spec.Field)
	if !ok {
		return out
	}

	keys := make([]Value, len(records))
	for i, r := range records {
		keys[i] = f.Get(r)
	}

	compare := comparator(f.Kind)
	sign := 1
	if spec.Direction == SortDesc {
		sign = -1
	}

	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return sign * compare(keys[a], keys[b])
	})

	for i, idx := range order {
		out[i] = records[idx]
	}
	return out
}

func comparator(kind Kind) func(a, b Value) int {
	var base func(a, b Value) int
	switch kind {
	case KindNumber:
		base = func(a, b Value) int { return cmp.Compare(a.Num(), b.Num()) }
	case KindDate:
		base = func(a, b Value) int { return a.Time().Compare(b.Time()) }
	default:
		// Collators hold iteration buffers and are not safe for concurrent use.
		coll := collate.New(language.Und, collate.IgnoreCase)
		base = func(a, b Value) int { return coll.CompareString(a.Text(), b.Text()) }
	}

	return func(a, b Value) int {
		okA, okB := sortable(a, kind), sortable(b, kind)
		switch {
		case okA && okB:
			return base(a, b)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	}
}

func sortable(v Value, kind Kind) bool {
	return !v.IsMissing() && v.Kind() == kind
}
