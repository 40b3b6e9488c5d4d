package listing

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Search returns the records for which at least one of the given fields
// contains query as a case-folded substring. An empty query returns every
// record. Unknown field keys never match and missing values match as "".
func Search[T any](schema *Schema[T], records []T, query string, fields []string) []T {
	if query == "" {
		return slices.Clone(records)
	}

	// Casers keep internal state and must not be shared across goroutines.
	fold := cases.Fold()
	needle := fold.String(query)

	resolved := make([]Field[T], 0, len(fields))
	for _, key := range fields {
		if f, ok := schema.Field(key); ok {
			resolved = append(resolved, f)
		}
	}

	out := make([]T, 0, len(records))
	for _, record := range records {
		for _, f := range resolved {
			if strings.Contains(fold.String(f.Get(record).Text()), needle) {
				out = append(out, record)
				break
			}
		}
	}
	return out
}
