package app

import (
	"context"
	"fmt"

	"github.com/freightdesk/backoffice/pkg/config"
	"github.com/freightdesk/backoffice/pkg/dataset"
	"github.com/freightdesk/backoffice/pkg/listing"
	"github.com/freightdesk/backoffice/pkg/logistics"
	"github.com/freightdesk/backoffice/pkg/observability/logger"
	"github.com/freightdesk/backoffice/pkg/observability/metrics"
	"github.com/freightdesk/backoffice/pkg/resilience"
	"github.com/freightdesk/backoffice/pkg/store"
	"github.com/freightdesk/backoffice/pkg/store/memory"
	"github.com/freightdesk/backoffice/pkg/store/redis"
	"github.com/freightdesk/backoffice/pkg/store/sqlstore"
)

// catalog opens one store per store name and registers the datasets that
// read them. Screens sharing a Source share the store instance.
type catalog struct {
	cfg      *config.Config
	logger   logger.Logger
	metrics  *metrics.Registry
	conn     *sqlstore.Conn
	cache    redis.KV
	breaker  *resilience.CircuitBreaker
	stores   map[string]any
	datasets *dataset.Registry
}

func newCatalog(cfg *config.Config, log logger.Logger, m *metrics.Registry, conn *sqlstore.Conn, cache redis.KV) *catalog {
	return &catalog{
		cfg:      cfg,
		logger:   log,
		metrics:  m,
		conn:     conn,
		cache:    cache,
		stores:   make(map[string]any),
		datasets: dataset.NewRegistry(),
	}
}

// register opens the screen's store and registers a dataset over it.
func register[T logistics.Record](ctx context.Context, c *catalog, screen logistics.Screen[T]) (store.Store[T], error) {
	s, err := openStore(ctx, c, screen)
	if err != nil {
		return nil, err
	}
	policy, _ := listing.ParseUnknownFieldPolicy(c.cfg.Listing.UnknownFilterPolicy)
	ds := dataset.New(screen, s, dataset.Options{
		Logger:              c.logger,
		Metrics:             c.metrics.Listing(),
		StoreSystem:         c.cfg.Store.Type,
		UnknownFieldPolicy:  policy,
		DefaultItemsPerPage: c.cfg.Listing.DefaultItemsPerPage,
	})
	if err := c.datasets.Register(ds); err != nil {
		return nil, err
	}
	return s, nil
}

func openStore[T logistics.Record](ctx context.Context, c *catalog, screen logistics.Screen[T]) (store.Store[T], error) {
	name := screen.StoreName()
	if existing, ok := c.stores[name]; ok {
		s, ok := existing.(store.Store[T])
		if !ok {
			return nil, fmt.Errorf("store %q already holds a different record type", name)
		}
		return s, nil
	}

	var seed []T
	if c.cfg.Store.Seed && screen.Seed != nil {
		seed = screen.Seed()
	}

	var s store.Store[T]
	switch c.cfg.Store.Type {
	case config.StoreMemory:
		mem, err := memory.New(seed)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", name, err)
		}
		s = mem
	case config.StorePostgres, config.StoreMySQL:
		sql := sqlstore.New[T](c.conn, name, sqlstore.JSONMapper[T]{})
		if err := sql.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		if len(seed) > 0 {
			seeded, err := sql.SeedIfEmpty(ctx, seed)
			if err != nil {
				return nil, err
			}
			if seeded {
				c.logger.Info("seeded table", "table", name, "records", len(seed))
			}
		}
		s = sql
	default:
		return nil, fmt.Errorf("unsupported store type %q", c.cfg.Store.Type)
	}

	if c.cache != nil {
		s = redis.NewSnapshotCache(s, c.cache, c.cfg.Cache.Prefix, name, c.cfg.Cache.TTL, c.logger,
			redis.WithBreaker(c.breaker))
	}
	c.stores[name] = s
	return s, nil
}

// registerScreens registers every back-office screen in menu order and
// returns the vehicles store the tracking simulator moves.
func registerScreens(ctx context.Context, c *catalog) (store.Store[logistics.Vehicle], error) {
	var vehicles store.Store[logistics.Vehicle]
	steps := []func() error{
		func() error { _, err := register(ctx, c, logistics.Invoices()); return err },
		func() error { _, err := register(ctx, c, logistics.Quotes()); return err },
		func() error { _, err := register(ctx, c, logistics.QuoteReview()); return err },
		func() error { _, err := register(ctx, c, logistics.Bids()); return err },
		func() error { _, err := register(ctx, c, logistics.Inquiries()); return err },
		func() error { _, err := register(ctx, c, logistics.Notifications()); return err },
		func() error {
			var err error
			vehicles, err = register(ctx, c, logistics.Vehicles())
			return err
		},
		func() error { _, err := register(ctx, c, logistics.AuditLogs()); return err },
		func() error { _, err := register(ctx, c, logistics.Settings()); return err },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return vehicles, nil
}
