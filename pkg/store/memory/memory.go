// Package memory provides an in-memory copy-on-write record store.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/freightdesk/backoffice/pkg/store"
)

// Store keeps records in insertion order. Reads return the current snapshot
// without copying; writes build a new snapshot under the lock.
type Store[T store.Record] struct {
	mu      sync.RWMutex
	records []T
	index   map[string]int
	version uint64
}

// New creates a store holding seed. Duplicate or empty ids are rejected.
func New[T store.Record](seed []T) (*Store[T], error) {
	s := &Store[T]{}
	records := slices.Clone(seed)
	index, err := buildIndex(records)
	if err != nil {
		return nil, err
	}
	s.records, s.index = records, index
	return s, nil
}

func buildIndex[T store.Record](records []T) (map[string]int, error) {
	index := make(map[string]int, len(records))
	for i, r := range records {
		id := r.RecordID()
		if id == "" {
			return nil, fmt.Errorf("record %d: %w: empty id", i, store.ErrInvalid)
		}
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("record %q: %w", id, store.ErrConflict)
		}
		index[id] = i
	}
	return index, nil
}

// Snapshot implements store.Store.
func (s *Store[T]) Snapshot(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, nil
}

// Get implements store.Store.
func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return zero, fmt.Errorf("get %q: %w", id, store.ErrNotFound)
	}
	return s.records[i], nil
}

// Create implements store.Store.
func (s *Store[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	id := record.RecordID()
	if id == "" {
		return zero, fmt.Errorf("create: %w: empty id", store.ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.index[id]; dup {
		return zero, fmt.Errorf("create %q: %w", id, store.ErrConflict)
	}
	next := make([]T, len(s.records), len(s.records)+1)
	copy(next, s.records)
	next = append(next, record)

	index := make(map[string]int, len(s.index)+1)
	for k, v := range s.index {
		index[k] = v
	}
	index[id] = len(next) - 1
	s.publish(next, index)
	return record, nil
}

// Update implements store.Store.
func (s *Store[T]) Update(ctx context.Context, record T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := record.RecordID()
	i, ok := s.index[id]
	if !ok {
		return zero, fmt.Errorf("update %q: %w", id, store.ErrNotFound)
	}
	next := slices.Clone(s.records)
	next[i] = record
	s.publish(next, s.index)
	return record, nil
}

// UpdateMany implements store.Batcher. Either every record is replaced or,
// when one id is unknown, none is.
func (s *Store[T]) UpdateMany(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := slices.Clone(s.records)
	for _, r := range records {
		i, ok := s.index[r.RecordID()]
		if !ok {
			return fmt.Errorf("update %q: %w", r.RecordID(), store.ErrNotFound)
		}
		next[i] = r
	}
	s.publish(next, s.index)
	return nil
}

// Delete implements store.Store.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("delete %q: %w", id, store.ErrNotFound)
	}
	next := make([]T, 0, len(s.records)-1)
	next = append(next, s.records[:i]...)
	next = append(next, s.records[i+1:]...)
	index := make(map[string]int, len(next))
	for j, r := range next {
		index[r.RecordID()] = j
	}
	s.publish(next, index)
	return nil
}

// Version implements store.Store.
func (s *Store[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the number of records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store[T]) publish(records []T, index map[string]int) {
	s.records = records
	s.index = index
	s.version++
}
