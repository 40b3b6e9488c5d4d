// Package store defines the record store contract the listing endpoints read
// snapshots from.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a record with the same id already exists.
	ErrConflict = errors.New("record already exists")
	// ErrInvalid is returned for records that cannot be stored, such as a
	// record without an id.
	ErrInvalid = errors.New("invalid record")
)

// Record is anything identified by a string id.
type Record interface {
	RecordID() string
}

// Store holds the records of one dataset.
//
// A snapshot returned by Snapshot is never modified afterwards: every
// mutation publishes a new snapshot, so pages derived from an earlier
// snapshot stay valid. Callers must not modify the returned slice.
type Store[T Record] interface {
	Snapshot(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, record T) (T, error)
	Delete(ctx context.Context, id string) error
	// Version increases with every mutation made through this store.
	Version() uint64
}

// Batcher is implemented by stores that can replace several records in one
// mutation, publishing a single new snapshot.
type Batcher[T Record] interface {
	UpdateMany(ctx context.Context, records []T) error
}

// Adapter is the minimal lifecycle and health contract for storage adapters.
type Adapter interface {
	HealthCheck(ctx context.Context) error
	Close() error
}

// UpdateMany updates records through s, atomically when s is a Batcher and
// one record at a time otherwise.
func UpdateMany[T Record](ctx context.Context, s Store[T], records []T) error {
	if b, ok := s.(Batcher[T]); ok {
		return b.UpdateMany(ctx, records)
	}
	for _, r := range records {
		if _, err := s.Update(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
