package api

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/freightdesk/backoffice/pkg/controller"
	"github.com/freightdesk/backoffice/pkg/listing"
)

// Listing query parameters.
const (
	ParamSearch       = "q"
	ParamSearchFields = "search_fields"
	ParamSort         = "sort"
	ParamPage         = "page"
	ParamPerPage      = "per_page"
	FilterPrefix      = "filter."
)

// ParseListQuery builds a listing query from URL parameters.
//
// Filters are given as filter.<key>=v1,v2 and may be repeated. The sort is
// <field>[:asc|desc]. Absent page and per_page are left zero for the dataset
// to default. A non-numeric or non-positive page, and a per_page outside
// 1..maxPerPage, are validation errors.
func ParseListQuery(values url.Values, maxPerPage int) (listing.Query, error) {
	q := listing.Query{
		Search:       values.Get(ParamSearch),
		SearchFields: splitValues(values[ParamSearchFields]),
		Sort:         listing.ParseSortSpec(values.Get(ParamSort)),
	}
	if q.Sort.Field == "" {
		q.Sort = listing.SortSpec{}
	}

	page, err := positiveInt(values.Get(ParamPage))
	if err != nil {
		return listing.Query{}, controller.NewValidationErrorWithCode("validation.page",
			"page must be a positive integer", map[string]any{"page": values.Get(ParamPage)})
	}
	perPage, err := positiveInt(values.Get(ParamPerPage))
	if err != nil || (maxPerPage > 0 && perPage > maxPerPage) {
		return listing.Query{}, controller.NewValidationErrorWithCode("validation.per_page",
			"per_page must be an integer between 1 and "+strconv.Itoa(maxPerPage),
			map[string]any{"per_page": values.Get(ParamPerPage), "max": maxPerPage})
	}
	q.Page = listing.PageSpec{CurrentPage: page, ItemsPerPage: perPage}

	keys := make([]string, 0)
	for key := range values {
		if strings.HasPrefix(key, FilterPrefix) && len(key) > len(FilterPrefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	for _, key := range keys {
		filterValues := positionalValues(values[key])
		if len(filterValues) == 0 {
			continue
		}
		q.Filters = append(q.Filters, listing.FilterCondition{
			ID:     strings.TrimPrefix(key, FilterPrefix),
			Values: filterValues,
		})
	}
	return q, nil
}

// positiveInt parses s, returning 0 for an empty string.
func positiveInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// splitValues splits every raw value on commas and drops empty parts.
func splitValues(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// positionalValues splits like splitValues but keeps empty parts in place,
// so ",2024-03-01" stays an open-ended date range. A value list with no
// non-empty part is nil.
func positionalValues(raw []string) []string {
	var out []string
	nonEmpty := false
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			part = strings.TrimSpace(part)
			nonEmpty = nonEmpty || part != ""
			out = append(out, part)
		}
	}
	if !nonEmpty {
		return nil
	}
	return out
}
