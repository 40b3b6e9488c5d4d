// Package app assembles the back office from its configuration: stores,
// datasets, the tracking simulator and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/freightdesk/backoffice/pkg/api"
	"github.com/freightdesk/backoffice/pkg/config"
	"github.com/freightdesk/backoffice/pkg/dataset"
	"github.com/freightdesk/backoffice/pkg/health"
	"github.com/freightdesk/backoffice/pkg/observability/logger"
	"github.com/freightdesk/backoffice/pkg/observability/metrics"
	"github.com/freightdesk/backoffice/pkg/observability/tracing"
	"github.com/freightdesk/backoffice/pkg/resilience"
	"github.com/freightdesk/backoffice/pkg/server"
	"github.com/freightdesk/backoffice/pkg/store/mysql"
	"github.com/freightdesk/backoffice/pkg/store/postgres"
	"github.com/freightdesk/backoffice/pkg/store/redis"
	"github.com/freightdesk/backoffice/pkg/store/sqlstore"
	"github.com/freightdesk/backoffice/pkg/tracking"
	"github.com/freightdesk/backoffice/pkg/version"
)

// App is a fully wired back office.
type App struct {
	cfg       *config.Config
	logger    logger.Logger
	metrics   *metrics.Registry
	health    *health.Registry
	tracer    *tracing.TracerProvider
	datasets  *dataset.Registry
	simulator *tracking.Simulator
	api       *api.API
	server    *server.Server
	closers   []closer
}

type closer struct {
	name  string
	close func() error
}

// NewLogger builds the zap logger described by the observability section.
func NewLogger(cfg config.ObservabilityConfig) (*logger.ZapLogger, error) {
	level, err := logger.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logger.ParseLogFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return logger.NewZapLogger(logger.Config{Level: level, Format: format})
}

// New connects the configured backends and registers every dataset. On
// error everything opened so far is closed again.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}
	a := &App{
		cfg:     cfg,
		logger:  log,
		metrics: metrics.NewRegistry(),
		health:  health.NewRegistry(cfg.Observability.HealthTimeout),
	}
	if err := a.init(ctx); err != nil {
		_ = a.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	info := version.Current(a.cfg.Service.Name)
	tracer, err := tracing.NewTracerProvider(ctx, tracing.TracerConfig{
		ServiceName:    a.cfg.Service.Name,
		ServiceVersion: info.Version,
		Environment:    a.cfg.Service.Environment,
		Endpoint:       a.cfg.Observability.TracingEndpoint,
		SampleRate:     a.cfg.Observability.TracingSampleRate,
		Enabled:        a.cfg.Observability.TracingEnabled,
	})
	if err != nil {
		return err
	}
	a.tracer = tracer

	conn, err := a.openConn()
	if err != nil {
		return err
	}
	if conn != nil {
		a.onClose("store", conn.Close)
		a.health.Register(health.NewAdapterChecker("store", conn))
	}

	var cache redis.KV
	if a.cfg.Cache.Enabled {
		adapter, err := redis.NewAdapter(redis.Config{
			URL:              a.cfg.Cache.URL,
			MaxConns:         a.cfg.Cache.MaxConns,
			OperationTimeout: a.cfg.Cache.OperationTimeout,
		}, a.logger)
		if err != nil {
			return fmt.Errorf("connect cache: %w", err)
		}
		a.onClose("cache", adapter.Close)
		a.health.Register(health.NewOptionalChecker("cache", adapter))
		cache = adapter
	}

	c := newCatalog(a.cfg, a.logger, a.metrics, conn, cache)
	if cache != nil {
		c.breaker = resilience.NewCircuitBreaker(a.cfg.Cache.BreakerFailures, a.cfg.Cache.BreakerCooldown,
			resilience.OnStateChange(func(from, to resilience.State) {
				a.logger.Warn("cache circuit breaker changed state", "from", from.String(), "to", to.String())
			}))
	}
	vehicles, err := registerScreens(ctx, c)
	if err != nil {
		return fmt.Errorf("register datasets: %w", err)
	}
	a.datasets = c.datasets

	var feed api.Feed
	if a.cfg.Tracking.Enabled {
		a.simulator, err = tracking.NewSimulator(vehicles, tracking.Config{
			Interval: a.cfg.Tracking.Interval,
			MaxStep:  a.cfg.Tracking.MaxStep,
			Buffer:   a.cfg.Tracking.Buffer,
			Seed:     a.cfg.Tracking.Seed,
		}, a.logger, tracking.WithMetrics(a.metrics.Tracking()))
		if err != nil {
			return err
		}
		feed = a.simulator
	}

	a.api = api.New(api.Config{
		ServiceName:     a.cfg.Service.Name,
		MaxItemsPerPage: a.cfg.Listing.MaxItemsPerPage,
		MaxRequestSize:  a.cfg.HTTP.MaxRequestSize,
		RateLimit: api.RateLimitConfig{
			Enabled:           a.cfg.RateLimit.Enabled,
			RequestsPerSecond: a.cfg.RateLimit.RequestsPerSecond,
			Burst:             a.cfg.RateLimit.Burst,
		},
		Tracing:     a.cfg.Observability.TracingEnabled,
		Compression: a.cfg.HTTP.Compression,
		CORSOrigins: a.cfg.HTTP.CORSAllowedOrigins,
	}, api.Deps{
		Logger:   a.logger,
		Datasets: a.datasets,
		Health:   a.health,
		Metrics:  a.metrics,
		Tracking: feed,
	})

	a.server = server.NewServer(server.Config{
		Port:            a.cfg.HTTP.Port,
		ReadTimeout:     a.cfg.HTTP.ReadTimeout,
		WriteTimeout:    a.cfg.HTTP.WriteTimeout,
		IdleTimeout:     a.cfg.HTTP.IdleTimeout,
		ShutdownTimeout: a.cfg.HTTP.ShutdownTimeout,
	}, a.api.Handler(), a.logger)
	a.server.RegisterOnShutdown(a.api.Close)

	a.logger.Info("back office assembled",
		"store", a.cfg.Store.Type,
		"cache", a.cfg.Cache.Enabled,
		"tracking", a.cfg.Tracking.Enabled,
		"datasets", len(a.datasets.Names()),
	)
	return nil
}

func (a *App) openConn() (*sqlstore.Conn, error) {
	s := a.cfg.Store
	switch s.Type {
	case config.StorePostgres:
		return postgres.Open(postgres.Config{
			URL:             s.URL,
			MaxOpenConns:    s.MaxOpenConns,
			MaxIdleConns:    s.MaxIdleConns,
			ConnMaxLifetime: s.ConnMaxLifetime,
			ConnMaxIdleTime: s.ConnMaxIdleTime,
			QueryTimeout:    s.QueryTimeout,
		}, a.logger)
	case config.StoreMySQL:
		return mysql.Open(mysql.Config{
			URL:             s.URL,
			MaxOpenConns:    s.MaxOpenConns,
			MaxIdleConns:    s.MaxIdleConns,
			ConnMaxLifetime: s.ConnMaxLifetime,
			ConnMaxIdleTime: s.ConnMaxIdleTime,
			QueryTimeout:    s.QueryTimeout,
		}, a.logger)
	default:
		return nil, nil
	}
}

func (a *App) onClose(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, close: fn})
}

// Datasets returns the registered datasets.
func (a *App) Datasets() *dataset.Registry { return a.datasets }

// Health returns the dependency health registry.
func (a *App) Health() *health.Registry { return a.health }

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler { return a.api.Handler() }

// Run serves HTTP on the configured port and runs the tracking simulator
// until ctx is cancelled or either of them fails.
func (a *App) Run(ctx context.Context) error {
	return a.run(ctx, a.server.Start)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	return a.run(ctx, func(ctx context.Context) error { return a.server.Serve(ctx, ln) })
}

func (a *App) run(ctx context.Context, serve func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if a.simulator != nil {
		g.Go(func() error { return a.simulator.Run(gctx) })
	}
	g.Go(func() error { return serve(gctx) })
	return g.Wait()
}

// Close releases backends in reverse order of opening and flushes pending
// spans.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	a.closers = nil
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
