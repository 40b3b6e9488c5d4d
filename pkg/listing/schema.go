package listing

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// IDKey is the key of the implicit identifier field every schema carries.
const IDKey = "id"

// Field describes how to read one named field from a record of type T.
type Field[T any] struct {
	Key        string
	Label      string
	Kind       Kind
	Searchable bool
	Get        func(T) Value
}

// FieldInfo is the type-independent description of a field.
type FieldInfo struct {
	Key        string `json:"key" yaml:"key"`
	Label      string `json:"label" yaml:"label"`
	Kind       Kind   `json:"kind" yaml:"kind"`
	Searchable bool   `json:"searchable" yaml:"searchable"`
}

// Schema is the field-accessor table of one record type.
// It is built once and is safe for concurrent use.
type Schema[T any] struct {
	id     func(T) string
	fields []Field[T]
	index  map[string]int
}

// NewSchema builds a schema from an identifier accessor and a set of fields.
// Keys are canonicalized with CanonicalKey; empty or duplicate keys are rejected.
// When no field is keyed "id" an implicit searchable string field is added.
func NewSchema[T any](id func(T) string, fields ...Field[T]) (*Schema[T], error) {
	if id == nil {
		return nil, errors.New("schema requires an id accessor")
	}

	s := &Schema[T]{
		id:     id,
		fields: make([]Field[T], 0, len(fields)+1),
		index:  make(map[string]int, len(fields)+1),
	}

	var errs []error
	for i, f := range fields {
		key := CanonicalKey(f.Key)
		if key == "" {
			errs = append(errs, fmt.Errorf("field %d: key is required", i))
			continue
		}
		if f.Get == nil {
			errs = append(errs, fmt.Errorf("field %q: accessor is required", key))
			continue
		}
		if _, dup := s.index[key]; dup {
			errs = append(errs, fmt.Errorf("field %q: duplicate key", key))
			continue
		}
		switch f.Kind {
		case KindString, KindNumber, KindDate, KindList:
		default:
			errs = append(errs, fmt.Errorf("field %q: unknown kind %q", key, f.Kind))
			continue
		}
		f.Key = key
		if f.Label == "" {
			f.Label = key
		}
		s.index[key] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if _, ok := s.index[IDKey]; !ok {
		s.index[IDKey] = len(s.fields)
		s.fields = append(s.fields, Field[T]{
			Key:        IDKey,
			Label:      "ID",
			Kind:       KindString,
			Searchable: true,
			Get:        func(r T) Value { return String(id(r)) },
		})
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on error. It is meant for
// package-level schema declarations.
func MustSchema[T any](id func(T) string, fields ...Field[T]) *Schema[T] {
	s, err := NewSchema(id, fields...)
	if err != nil {
		panic(fmt.Sprintf("listing: invalid schema: %v", err))
	}
	return s
}

// ID returns the identifier of a record.
func (s *Schema[T]) ID(record T) string {
	return s.id(record)
}

// Field looks up a field by key. The key is canonicalized first.
func (s *Schema[T]) Field(key string) (Field[T], bool) {
	i, ok := s.index[CanonicalKey(key)]
	if !ok {
		return Field[T]{}, false
	}
	return s.fields[i], true
}

// Has reports whether the schema declares the key.
func (s *Schema[T]) Has(key string) bool {
	_, ok := s.index[CanonicalKey(key)]
	return ok
}

// Fields returns the declared fields in declaration order.
func (s *Schema[T]) Fields() []FieldInfo {
	out := make([]FieldInfo, len(s.fields))
	for i, f := range s.fields {
		out[i] = FieldInfo{Key: f.Key, Label: f.Label, Kind: f.Kind, Searchable: f.Searchable}
	}
	return out
}

// SearchFields returns the keys of the fields flagged searchable.
func (s *Schema[T]) SearchFields() []string {
	var keys []string
	for _, f := range s.fields {
		if f.Searchable {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// Value reads a field from a record. The boolean is false for unknown keys.
func (s *Schema[T]) Value(record T, key string) (Value, bool) {
	f, ok := s.Field(key)
	if !ok {
		return Missing(), false
	}
	return f.Get(record), true
}

// CanonicalKey normalizes a field key to lower snake case so that "Status",
// "status", "issuedAt", "issued-at" and "Issued At" name the same field.
func CanonicalKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(key) + 4)
	runes := []rune(key)
	for i, r := range runes {
		switch {
		case r == ' ' || r == '-' || r == '.' || r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
		case unicode.IsUpper(r):
			if i > 0 && b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
