package listing

import "slices"

// Query is the complete view state the pipeline is run with.
type Query struct {
	Search       string            `json:"search" yaml:"search"`
	SearchFields []string          `json:"search_fields,omitempty" yaml:"search_fields,omitempty"`
	Filters      []FilterCondition `json:"filters,omitempty" yaml:"filters,omitempty"`
	Sort         SortSpec          `json:"sort" yaml:"sort"`
	Page         PageSpec          `json:"page" yaml:"page"`
}

// Clone returns a deep copy of the query.
func (q Query) Clone() Query {
	q.SearchFields = slices.Clone(q.SearchFields)
	if q.Filters != nil {
		filters := make([]FilterCondition, len(q.Filters))
		for i, f := range q.Filters {
			filters[i] = f.Clone()
		}
		q.Filters = filters
	}
	return q
}

// ActiveFilters returns the conditions that have selected values.
func (q Query) ActiveFilters() []FilterCondition {
	var out []FilterCondition
	for _, f := range q.Filters {
		if f.Active() {
			out = append(out, f)
		}
	}
	return out
}

type options struct {
	searchFields []string
	policy       UnknownFieldPolicy
}

// Option configures a Pipeline.
type Option func(*options)

// WithSearchFields overrides the schema's default searchable fields.
func WithSearchFields(fields ...string) Option {
	return func(o *options) {
		o.searchFields = slices.Clone(fields)
	}
}

// WithUnknownFieldPolicy sets how filters on undeclared fields behave.
func WithUnknownFieldPolicy(policy UnknownFieldPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// Pipeline runs Search, ApplyFilters, Sort and Paginate in order for one
// record type. It holds no mutable state and is safe for concurrent use.
type Pipeline[T any] struct {
	schema       *Schema[T]
	searchFields []string
	policy       UnknownFieldPolicy
}

// New creates a pipeline for schema.
func New[T any](schema *Schema[T], opts ...Option) *Pipeline[T] {
	o := options{
		searchFields: schema.SearchFields(),
		policy:       UnknownFieldExclude,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Pipeline[T]{
		schema:       schema,
		searchFields: o.searchFields,
		policy:       o.policy,
	}
}

// Schema returns the schema the pipeline reads fields with.
func (p *Pipeline[T]) Schema() *Schema[T] {
	return p.schema
}

// SearchFields returns the default searchable field keys.
func (p *Pipeline[T]) SearchFields() []string {
	return slices.Clone(p.searchFields)
}

// Policy returns the unknown filter field policy.
func (p *Pipeline[T]) Policy() UnknownFieldPolicy {
	return p.policy
}

// Run executes the pipeline over records. Running it twice with the same
// inputs yields identical pages.
func (p *Pipeline[T]) Run(records []T, q Query) Page[T] {
	return Paginate(p.Process(records, q), q.Page)
}

// Process runs the search, filter and sort stages and returns the full
// ordered result before pagination.
func (p *Pipeline[T]) Process(records []T, q Query) []T {
	fields := q.SearchFields
	if len(fields) == 0 {
		fields = p.searchFields
	}
	matched := Search(p.schema, records, q.Search, fields)
	filtered := ApplyFilters(p.schema, matched, q.Filters, p.policy)
	return Sort(p.schema, filtered, q.Sort)
}
