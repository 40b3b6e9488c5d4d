// Package api exposes the datasets, the tracking stream and the operational
// endpoints over HTTP.
package api

import (
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freightdesk/backoffice/pkg/controller"
	"github.com/freightdesk/backoffice/pkg/dataset"
	"github.com/freightdesk/backoffice/pkg/health"
	"github.com/freightdesk/backoffice/pkg/middleware/compression"
	"github.com/freightdesk/backoffice/pkg/middleware/cors"
	"github.com/freightdesk/backoffice/pkg/middleware/logging"
	mwmetrics "github.com/freightdesk/backoffice/pkg/middleware/metrics"
	"github.com/freightdesk/backoffice/pkg/middleware/ratelimit"
	"github.com/freightdesk/backoffice/pkg/middleware/recovery"
	"github.com/freightdesk/backoffice/pkg/middleware/requestid"
	"github.com/freightdesk/backoffice/pkg/middleware/requestsize"
	"github.com/freightdesk/backoffice/pkg/middleware/securityheaders"
	mwtracing "github.com/freightdesk/backoffice/pkg/middleware/tracing"
	"github.com/freightdesk/backoffice/pkg/observability/logger"
	"github.com/freightdesk/backoffice/pkg/observability/metrics"
	"github.com/freightdesk/backoffice/pkg/tracking"
)

// DefaultHeartbeat is the tracking stream keep-alive interval.
const DefaultHeartbeat = 15 * time.Second

// Config configures the HTTP surface.
type Config struct {
	ServiceName     string
	MaxItemsPerPage int
	// MaxRequestSize limits request bodies in bytes. Zero disables the limit.
	MaxRequestSize int64
	RateLimit      RateLimitConfig
	Tracing        bool
	Heartbeat      time.Duration
	// Compression enables gzip and Brotli encoding of /api responses.
	Compression bool
	// CORSOrigins are the web origins allowed to call the API. Empty
	// disables CORS.
	CORSOrigins []string
}

// RateLimitConfig configures per-client throttling of /api routes.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

// Feed is the source of tracking updates.
type Feed interface {
	Subscribe() (<-chan tracking.Update, func())
}

// Deps are the collaborators the handlers serve.
type Deps struct {
	Logger   logger.Logger
	Datasets *dataset.Registry
	Health   *health.Registry
	Metrics  *metrics.Registry
	// Tracking is optional. Without it the stream endpoint answers 503.
	Tracking Feed
}

// API owns the gin engine and the state of open streams.
type API struct {
	cfg    Config
	deps   Deps
	engine *gin.Engine

	closeOnce sync.Once
	closing   chan struct{}
}

// New builds the router.
func New(cfg Config, deps Deps) *API {
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = DefaultHeartbeat
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRegistry()
	}
	if deps.Health == nil {
		deps.Health = health.NewRegistry(health.DefaultTimeout)
	}
	if deps.Datasets == nil {
		deps.Datasets = dataset.NewRegistry()
	}

	a := &API{cfg: cfg, deps: deps, closing: make(chan struct{})}
	a.engine = a.routes()
	return a
}

// Handler returns the root HTTP handler.
func (a *API) Handler() http.Handler { return a.engine }

// Close ends every open tracking stream. Call it when the server starts
// shutting down so that streams do not hold shutdown open.
func (a *API) Close() {
	a.closeOnce.Do(func() { close(a.closing) })
}

func (a *API) routes() *gin.Engine {
	r := gin.New()
	r.ContextWithFallback = true

	r.Use(
		requestid.RequestID(),
		recovery.Recovery(a.deps.Logger),
		logging.Logging(a.deps.Logger),
		mwmetrics.Metrics(a.deps.Metrics.HTTP()),
	)
	if a.cfg.Tracing {
		r.Use(mwtracing.Tracing(mwtracing.Config{ExcludedPathPrefixes: []string{"/healthz", "/metrics"}}))
	}
	if len(a.cfg.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = slices.Clone(a.cfg.CORSOrigins)
		r.Use(cors.CORS(corsCfg))
	}
	r.Use(securityheaders.SecurityHeaders(securityheaders.DefaultConfig()))
	r.NoRoute(func(c *gin.Context) {
		controller.Error(c, controller.NewNotFoundError("route not found"))
	})

	r.GET("/healthz", a.healthz)
	r.GET("/metrics", gin.WrapH(a.deps.Metrics.Handler()))
	r.GET("/version", a.version)

	v1 := r.Group("/api/v1")
	if a.cfg.RateLimit.Enabled {
		limiter := ratelimit.NewTokenBucketLimiter(a.cfg.RateLimit.RequestsPerSecond, a.cfg.RateLimit.Burst)
		v1.Use(ratelimit.RateLimit(limiter, ratelimit.ByClientIP))
	}
	v1.Use(requestsize.Middleware(a.cfg.MaxRequestSize))
	if a.cfg.Compression {
		v1.Use(compression.Compression(compression.DefaultConfig()))
	}

	v1.GET("/datasets", a.listDatasets)
	v1.GET("/datasets/:name", a.listRecords)
	v1.GET("/datasets/:name/schema", a.describeDataset)
	v1.GET("/datasets/:name/records/:id", a.getRecord)
	v1.POST("/datasets/:name/records", a.createRecord)
	v1.PUT("/datasets/:name/records/:id", a.updateRecord)
	v1.DELETE("/datasets/:name/records/:id", a.deleteRecord)
	v1.GET("/tracking/stream", a.trackingStream)

	return r
}
