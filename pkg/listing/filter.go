package listing

import (
	"slices"
	"strings"
	"time"
)

// FilterType is the widget a filter is rendered with.
type FilterType string

// Filter types
const (
	FilterSelect    FilterType = "select"
	FilterCheckbox  FilterType = "checkbox"
	FilterText      FilterType = "text"
	FilterDateRange FilterType = "dateRange"
)

// FilterOption is one selectable value of a filter.
type FilterOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// FilterCondition is a named multi-value inclusion filter on one field.
// A condition with no values is inactive and never excludes a record.
//
// For dateRange conditions Values[0] is the inclusive lower bound and the
// optional Values[1] the inclusive upper bound; an empty bound is open.
type FilterCondition struct {
	ID      string         `json:"id" yaml:"id"`
	Label   string         `json:"label,omitempty" yaml:"label,omitempty"`
	Type    FilterType     `json:"type,omitempty" yaml:"type,omitempty"`
	Values  []string       `json:"values" yaml:"values"`
	Options []FilterOption `json:"options,omitempty" yaml:"options,omitempty"`
}

// Active reports whether the condition has selected values. A date range
// with no bound set is inactive.
func (c FilterCondition) Active() bool {
	if c.Type == FilterDateRange {
		return slices.ContainsFunc(c.Values, func(v string) bool { return v != "" })
	}
	return len(c.Values) > 0
}

// Clone returns a deep copy of the condition.
func (c FilterCondition) Clone() FilterCondition {
	c.Values = slices.Clone(c.Values)
	c.Options = slices.Clone(c.Options)
	return c
}

// UnknownFieldPolicy decides what an active filter on an undeclared field does.
type UnknownFieldPolicy string

// Unknown field policies
const (
	// UnknownFieldExclude excludes every record, so a misspelled filter key
	// shows an empty list instead of silently unfiltered results.
	UnknownFieldExclude UnknownFieldPolicy = "exclude"
	// UnknownFieldPassThrough ignores the condition.
	UnknownFieldPassThrough UnknownFieldPolicy = "pass_through"
)

// ParseUnknownFieldPolicy converts a configuration string to a policy.
func ParseUnknownFieldPolicy(s string) (UnknownFieldPolicy, bool) {
	switch UnknownFieldPolicy(s) {
	case UnknownFieldExclude, "":
		return UnknownFieldExclude, true
	case UnknownFieldPassThrough, "passthrough", "pass-through":
		return UnknownFieldPassThrough, true
	default:
		return "", false
	}
}

type matcher[T any] func(T) bool

// ApplyFilters returns the records that satisfy every active condition.
// Within a condition the values are OR-ed; across conditions the result is
// the logical AND, so the order of conditions does not matter.
func ApplyFilters[T any](schema *Schema[T], records []T, conditions []FilterCondition, policy UnknownFieldPolicy) []T {
	matchers := make([]matcher[T], 0, len(conditions))
	for _, c := range conditions {
		if !c.Active() {
			continue
		}
		f, ok := schema.Field(c.ID)
		if !ok {
			if policy == UnknownFieldPassThrough {
				continue
			}
			return make([]T, 0)
		}
		matchers = append(matchers, newMatcher(f, c))
	}

	if len(matchers) == 0 {
		return slices.Clone(records)
	}

	out := make([]T, 0, len(records))
	for _, record := range records {
		if matchAll(record, matchers) {
			out = append(out, record)
		}
	}
	return out
}

func matchAll[T any](record T, matchers []matcher[T]) bool {
	for _, m := range matchers {
		if !m(record) {
			return false
		}
	}
	return true
}

func newMatcher[T any](f Field[T], c FilterCondition) matcher[T] {
	if c.Type == FilterDateRange {
		return newRangeMatcher(f, c.Values)
	}

	allowed := make(map[string]struct{}, len(c.Values))
	for _, v := range c.Values {
		allowed[v] = struct{}{}
	}
	return func(record T) bool {
		for _, s := range f.Get(record).Strings() {
			if _, ok := allowed[s]; ok {
				return true
			}
		}
		return false
	}
}

func newRangeMatcher[T any](f Field[T], bounds []string) matcher[T] {
	var from, to time.Time
	var hasFrom, hasTo bool

	if len(bounds) > 0 && bounds[0] != "" {
		t, err := ParseDate(bounds[0])
		if err != nil {
			return func(T) bool { return false }
		}
		from, hasFrom = t, true
	}
	if len(bounds) > 1 && bounds[1] != "" {
		t, err := ParseDate(bounds[1])
		if err != nil {
			return func(T) bool { return false }
		}
		to, hasTo = endOfDay(bounds[1], t), true
	}

	return func(record T) bool {
		v := f.Get(record)
		var at time.Time
		switch v.Kind() {
		case KindDate:
			at = v.Time()
		case KindString:
			t, err := ParseDate(v.Str())
			if err != nil {
				return false
			}
			at = t
		default:
			return false
		}
		if hasFrom && at.Before(from) {
			return false
		}
		if hasTo && at.After(to) {
			return false
		}
		return true
	}
}

// endOfDay widens a date-only upper bound to cover the whole day.
func endOfDay(raw string, t time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if _, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Add(24*time.Hour - time.Nanosecond)
	}
	if _, err := time.Parse("2006-1-2", raw); err == nil {
		return t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}
