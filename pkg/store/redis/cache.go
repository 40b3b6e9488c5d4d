package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/freightdesk/backoffice/pkg/observability/logger"
	"github.com/freightdesk/backoffice/pkg/resilience"
	"github.com/freightdesk/backoffice/pkg/store"
)

// KV is the subset of Adapter the snapshot cache needs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// SnapshotCache is a read-through cache in front of a store. Snapshots are
// stored as JSON under one key per dataset and dropped on every mutation.
// Cache errors never fail a call: they are logged and the inner store
// answers instead.
type SnapshotCache[T store.Record] struct {
	inner   store.Store[T]
	kv      KV
	key     string
	ttl     time.Duration
	logger  logger.Logger
	breaker *resilience.CircuitBreaker
}

// CacheOption configures a SnapshotCache.
type CacheOption func(*cacheOptions)

type cacheOptions struct {
	breaker *resilience.CircuitBreaker
}

// WithBreaker routes snapshot reads and writes through cb, so that an
// unreachable Redis is skipped instead of timing out on every listing.
// Invalidations always reach Redis.
func WithBreaker(cb *resilience.CircuitBreaker) CacheOption {
	return func(o *cacheOptions) { o.breaker = cb }
}

// NewSnapshotCache wraps inner. The cache key is "<prefix>:<dataset>".
func NewSnapshotCache[T store.Record](inner store.Store[T], kv KV, prefix, dataset string, ttl time.Duration, log logger.Logger, opts ...CacheOption) *SnapshotCache[T] {
	var o cacheOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &SnapshotCache[T]{
		inner:   inner,
		kv:      kv,
		key:     prefix + ":" + dataset,
		ttl:     ttl,
		logger:  log.With("dataset", dataset, "cache_key", prefix+":"+dataset),
		breaker: o.breaker,
	}
}

// Key returns the cache key.
func (c *SnapshotCache[T]) Key() string { return c.key }

// Snapshot implements store.Store.
func (c *SnapshotCache[T]) Snapshot(ctx context.Context) ([]T, error) {
	var raw []byte
	err := c.guard(func() (err error) {
		raw, err = c.kv.Get(ctx, c.key)
		return err
	})
	switch {
	case err == nil:
		var records []T
		decodeErr := json.Unmarshal(raw, &records)
		if decodeErr == nil {
			return records, nil
		}
		c.logger.WithContext(ctx).Warn("discarding undecodable cached snapshot", "error", decodeErr)
	case errors.Is(err, ErrCacheMiss), errors.Is(err, resilience.ErrOpen):
	default:
		c.logger.WithContext(ctx).Warn("snapshot cache read failed", "error", err)
	}

	records, err := c.inner.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(records); err != nil {
		c.logger.WithContext(ctx).Warn("failed to encode snapshot", "error", err)
	} else if err := c.guard(func() error {
		return c.kv.SetWithTTL(ctx, c.key, raw, c.ttl)
	}); err != nil && !errors.Is(err, resilience.ErrOpen) {
		c.logger.WithContext(ctx).Warn("snapshot cache write failed", "error", err)
	}
	return records, nil
}

// Get implements store.Store. Single records bypass the cache.
func (c *SnapshotCache[T]) Get(ctx context.Context, id string) (T, error) {
	return c.inner.Get(ctx, id)
}

// Create implements store.Store.
func (c *SnapshotCache[T]) Create(ctx context.Context, record T) (T, error) {
	r, err := c.inner.Create(ctx, record)
	if err == nil {
		c.invalidate(ctx)
	}
	return r, err
}

// Update implements store.Store.
func (c *SnapshotCache[T]) Update(ctx context.Context, record T) (T, error) {
	r, err := c.inner.Update(ctx, record)
	if err == nil {
		c.invalidate(ctx)
	}
	return r, err
}

// UpdateMany implements store.Batcher.
func (c *SnapshotCache[T]) UpdateMany(ctx context.Context, records []T) error {
	err := store.UpdateMany(ctx, c.inner, records)
	c.invalidate(ctx)
	return err
}

// Delete implements store.Store.
func (c *SnapshotCache[T]) Delete(ctx context.Context, id string) error {
	err := c.inner.Delete(ctx, id)
	if err == nil {
		c.invalidate(ctx)
	}
	return err
}

// Version implements store.Store.
func (c *SnapshotCache[T]) Version() uint64 {
	return c.inner.Version()
}

func (c *SnapshotCache[T]) invalidate(ctx context.Context) {
	if err := c.kv.Delete(ctx, c.key); err != nil {
		c.logger.WithContext(ctx).Warn("snapshot cache invalidation failed", "error", err)
	}
}

// guard runs fn through the breaker, if any. A cache miss counts as a
// successful call.
func (c *SnapshotCache[T]) guard(fn func() error) error {
	if c.breaker == nil {
		return fn()
	}
	miss := false
	err := c.breaker.Execute(func() error {
		err := fn()
		if errors.Is(err, ErrCacheMiss) {
			miss = true
			return nil
		}
		return err
	})
	if miss {
		return ErrCacheMiss
	}
	return err
}
