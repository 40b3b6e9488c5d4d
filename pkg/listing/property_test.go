package listing

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var (
	propStatuses = []string{"Draft", "Sent", "Paid", "Overdue"}
	propTags     = []string{"express", "hazmat", "fragile"}
)

// genInvoices generates record slices with unique ids and a small status
// domain, so sorts by status produce plenty of ties.
func genInvoices() gopter.Gen {
	record := gopter.CombineGens(
		gen.IntRange(0, len(propStatuses)-1),
		gen.IntRange(0, 500),
		gen.IntRange(0, 7),
		gen.AlphaString(),
	).Map(func(values []interface{}) testInvoice {
		mask := values[2].(int)
		var tags []string
		for i, tag := range propTags {
			if mask&(1<<i) != 0 {
				tags = append(tags, tag)
			}
		}
		return testInvoice{
			Status: propStatuses[values[0].(int)],
			Amount: float64(values[1].(int)),
			Tags:   tags,
			Note:   values[3].(string),
		}
	})

	return gen.SliceOf(record).Map(func(records []testInvoice) []testInvoice {
		out := make([]testInvoice, len(records))
		for i, r := range records {
			r.ID = fmt.Sprintf("R-%04d", i)
			out[i] = r
		}
		return out
	})
}

func propParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	return parameters
}

// TestProperty_PipelineIsDeterministic verifies that running the pipeline
// twice over the same records and query yields identical pages.
func TestProperty_PipelineIsDeterministic(t *testing.T) {
	properties := gopter.NewProperties(propParameters())
	pipeline := New(invoiceSchema)

	properties.Property("same input yields same page", prop.ForAll(
		func(records []testInvoice, query string, status, page, perPage int, desc bool) bool {
			dir := SortAsc
			if desc {
				dir = SortDesc
			}
			q := Query{
				Search:  query,
				Filters: []FilterCondition{{ID: "status", Values: []string{propStatuses[status]}}},
				Sort:    SortSpec{Field: "amount", Direction: dir},
				Page:    PageSpec{CurrentPage: page, ItemsPerPage: perPage},
			}
			first := pipeline.Run(records, q)
			second := pipeline.Run(records, q)
			return reflect.DeepEqual(first, second)
		},
		genInvoices(),
		gen.AlphaString(),
		gen.IntRange(0, len(propStatuses)-1),
		gen.IntRange(1, 5),
		gen.IntRange(1, 10),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestProperty_SearchIsMonotonic verifies that extending a query never
// widens the result: every match of the longer query matches the shorter one.
func TestProperty_SearchIsMonotonic(t *testing.T) {
	properties := gopter.NewProperties(propParameters())
	fields := invoiceSchema.SearchFields()

	properties.Property("longer query matches a subset", prop.ForAll(
		func(records []testInvoice, prefix, query, suffix string) bool {
			short := ids(Search(invoiceSchema, records, query, fields))
			long := ids(Search(invoiceSchema, records, prefix+query+suffix, fields))
			for _, id := range long {
				if !slices.Contains(short, id) {
					return false
				}
			}
			return true
		},
		genInvoices(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// TestProperty_FiltersCompose verifies that applying conditions together,
// in either order, or one after the other gives the same result.
func TestProperty_FiltersCompose(t *testing.T) {
	properties := gopter.NewProperties(propParameters())

	properties.Property("filter conditions are AND-ed and order independent", prop.ForAll(
		func(records []testInvoice, status, tag int) bool {
			byStatus := FilterCondition{ID: "status", Values: []string{propStatuses[status]}}
			byTag := FilterCondition{ID: "tags", Type: FilterCheckbox, Values: []string{propTags[tag]}}

			together := ApplyFilters(invoiceSchema, records, []FilterCondition{byStatus, byTag}, UnknownFieldExclude)
			swapped := ApplyFilters(invoiceSchema, records, []FilterCondition{byTag, byStatus}, UnknownFieldExclude)
			chained := ApplyFilters(invoiceSchema,
				ApplyFilters(invoiceSchema, records, []FilterCondition{byStatus}, UnknownFieldExclude),
				[]FilterCondition{byTag}, UnknownFieldExclude)

			return reflect.DeepEqual(ids(together), ids(swapped)) && reflect.DeepEqual(ids(together), ids(chained))
		},
		genInvoices(),
		gen.IntRange(0, len(propStatuses)-1),
		gen.IntRange(0, len(propTags)-1),
	))

	properties.TestingRun(t)
}

// TestProperty_SortIsStable verifies that records with equal keys keep their
// input order in both directions and that keys end up ordered.
func TestProperty_SortIsStable(t *testing.T) {
	properties := gopter.NewProperties(propParameters())

	properties.Property("ties keep input order", prop.ForAll(
		func(records []testInvoice, desc bool) bool {
			dir := SortAsc
			if desc {
				dir = SortDesc
			}
			sorted := Sort(invoiceSchema, records, SortSpec{Field: "amount", Direction: dir})
			if len(sorted) != len(records) {
				return false
			}
			for i := 1; i < len(sorted); i++ {
				prev, cur := sorted[i-1], sorted[i]
				switch {
				case prev.Amount == cur.Amount:
					// ids are assigned in input order
					if prev.ID >= cur.ID {
						return false
					}
				case dir == SortAsc && prev.Amount > cur.Amount:
					return false
				case dir == SortDesc && prev.Amount < cur.Amount:
					return false
				}
			}
			return true
		},
		genInvoices(),
		gen.Bool(),
	))

	properties.Property("string ties keep input order", prop.ForAll(
		func(records []testInvoice) bool {
			sorted := Sort(invoiceSchema, records, SortSpec{Field: "status", Direction: SortDesc})
			last := map[string]string{}
			for _, r := range sorted {
				if prev, ok := last[r.Status]; ok && prev >= r.ID {
					return false
				}
				last[r.Status] = r.ID
			}
			return true
		},
		genInvoices(),
	))

	properties.TestingRun(t)
}

// TestProperty_PagesCoverResult verifies that concatenating pages 1 through
// TotalPages reproduces the processed result exactly once.
func TestProperty_PagesCoverResult(t *testing.T) {
	properties := gopter.NewProperties(propParameters())

	properties.Property("pages partition the result", prop.ForAll(
		func(records []testInvoice, perPage int) bool {
			first := Paginate(records, PageSpec{CurrentPage: 1, ItemsPerPage: perPage})
			var all []testInvoice
			for p := 1; p <= first.TotalPages; p++ {
				page := Paginate(records, PageSpec{CurrentPage: p, ItemsPerPage: perPage})
				if len(page.Items) > perPage {
					return false
				}
				all = append(all, page.Items...)
			}
			return reflect.DeepEqual(ids(all), ids(records))
		},
		genInvoices(),
		gen.IntRange(1, 25),
	))

	properties.Property("page count is max(1, ceil(total/per))", prop.ForAll(
		func(total, perPage int) bool {
			want := (total + perPage - 1) / perPage
			if want < 1 {
				want = 1
			}
			return TotalPages(total, perPage) == want
		},
		gen.IntRange(0, 10000),
		gen.IntRange(1, 500),
	))

	properties.Property("page count holds for any positive page size", prop.ForAll(
		func(total, perPage int) bool {
			want := total / perPage
			if total%perPage != 0 || want == 0 {
				want++
			}
			return TotalPages(total, perPage) == want
		},
		gen.IntRange(0, math.MaxInt),
		gen.IntRange(1, math.MaxInt),
	))

	properties.TestingRun(t)
}
