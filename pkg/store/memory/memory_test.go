package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/freightdesk/backoffice/pkg/store"
)

type item struct {
	ID    string
	Value int
}

func (i item) RecordID() string { return i.ID }

func seed() []item {
	return []item{{ID: "a", Value: 1}, {ID: "b", Value: 2}, {ID: "c", Value: 3}}
}

func ids(items []item) string {
	return fmt.Sprint(func() []string {
		out := make([]string, len(items))
		for i, it := range items {
			out[i] = it.ID
		}
		return out
	}())
}

func TestNew_RejectsBadSeed(t *testing.T) {
	tests := []struct {
		name string
		seed []item
		want error
	}{
		{name: "duplicate id", seed: []item{{ID: "a"}, {ID: "a"}}, want: store.ErrConflict},
		{name: "empty id", seed: []item{{ID: ""}}, want: store.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.seed); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s, err := New(seed())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := s.Create(ctx, item{ID: "d", Value: 4}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.Create(ctx, item{ID: "a"}); !errors.Is(err, store.ErrConflict) {
		t.Errorf("Create(dup) error = %v, want ErrConflict", err)
	}

	if _, err := s.Update(ctx, item{ID: "b", Value: 20}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got, _ := s.Get(ctx, "b"); got.Value != 20 {
		t.Errorf("Get(b).Value = %d, want 20", got.Value)
	}
	if _, err := s.Update(ctx, item{ID: "zz"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "a"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}

	snap, _ := s.Snapshot(ctx)
	if got := ids(snap); got != "[b c d]" {
		t.Errorf("snapshot ids = %s, want [b c d]", got)
	}
	if got, _ := s.Get(ctx, "d"); got.Value != 4 {
		t.Errorf("index stale after delete: Get(d) = %+v", got)
	}
	if s.Version() != 3 {
		t.Errorf("Version() = %d, want 3", s.Version())
	}
}

func TestStore_SnapshotsAreImmutable(t *testing.T) {
	ctx := context.Background()
	s, _ := New(seed())

	before, _ := s.Snapshot(ctx)
	if _, err := s.Update(ctx, item{ID: "a", Value: 100}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, item{ID: "z"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatal(err)
	}

	if before[0].Value != 1 || ids(before) != "[a b c]" {
		t.Errorf("earlier snapshot changed: %+v", before)
	}
}

func TestStore_UpdateManyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s, _ := New(seed())

	err := s.UpdateMany(ctx, []item{{ID: "a", Value: 10}, {ID: "missing"}})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("UpdateMany() error = %v, want ErrNotFound", err)
	}
	if got, _ := s.Get(ctx, "a"); got.Value != 1 {
		t.Errorf("partial update applied: %+v", got)
	}

	if err := s.UpdateMany(ctx, []item{{ID: "a", Value: 10}, {ID: "c", Value: 30}}); err != nil {
		t.Fatalf("UpdateMany() error = %v", err)
	}
	if s.Version() != 1 {
		t.Errorf("Version() = %d, want a single published snapshot", s.Version())
	}
}

func TestStore_CanceledContext(t *testing.T) {
	s, _ := New(seed())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Snapshot(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Snapshot() error = %v, want context.Canceled", err)
	}
}

func TestStore_ConcurrentReadersAndWriters(t *testing.T) {
	ctx := context.Background()
	s, _ := New(seed())

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				_, _ = s.Create(ctx, item{ID: fmt.Sprintf("w%d-%d", w, i)})
			}
		}()
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				snap, err := s.Snapshot(ctx)
				if err != nil {
					t.Error(err)
					return
				}
				_ = len(snap)
			}
		}()
	}
	wg.Wait()

	if s.Len() != 3+4*50 {
		t.Errorf("Len() = %d, want %d", s.Len(), 3+4*50)
	}
}

func TestStore_DeleteReindexesLaterRecords(t *testing.T) {
	ctx := context.Background()
	s, _ := New(seed())

	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Update(ctx, item{ID: "c", Value: 33}); err != nil {
		t.Fatalf("Update(c) error = %v", err)
	}
	snap, _ := s.Snapshot(ctx)
	if ids(snap) != "[a c]" || snap[1].Value != 33 || snap[0].Value != 1 {
		t.Errorf("snapshot after delete and update = %+v", snap)
	}
	if _, err := s.Create(ctx, item{ID: "b"}); err != nil {
		t.Errorf("Create(b) after delete error = %v", err)
	}
}
