// Package config loads the service configuration from defaults, an optional
// file, an optional secrets file, BACKOFFICE_ environment variables and
// command-line flags, in increasing order of precedence.
package config

import "time"

// Store types
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMySQL    = "mysql"
)

// Config is the root configuration.
type Config struct {
	Service       ServiceConfig       `mapstructure:"service"`
	HTTP          HTTPConfig          `mapstructure:"http"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Listing       ListingConfig       `mapstructure:"listing"`
	Store         StoreConfig         `mapstructure:"store"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Tracking      TrackingConfig      `mapstructure:"tracking"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
}

// ServiceConfig configures service identity metadata.
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxRequestSize  int64         `mapstructure:"max_request_size"`
	Compression     bool          `mapstructure:"compression"`
	// CORSAllowedOrigins lists the web origins allowed to call the API.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// ObservabilityConfig configures logging, tracing and health checks.
type ObservabilityConfig struct {
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         string        `mapstructure:"log_format"`
	TracingEnabled    bool          `mapstructure:"tracing_enabled"`
	TracingEndpoint   string        `mapstructure:"tracing_endpoint"`
	TracingSampleRate float64       `mapstructure:"tracing_sample_rate"`
	HealthTimeout     time.Duration `mapstructure:"health_timeout"`
}

// ListingConfig tunes the listing endpoints.
type ListingConfig struct {
	DefaultItemsPerPage int `mapstructure:"default_items_per_page"`
	MaxItemsPerPage     int `mapstructure:"max_items_per_page"`
	// UnknownFilterPolicy is "exclude" or "pass_through".
	UnknownFilterPolicy string `mapstructure:"unknown_filter_policy"`
}

// StoreConfig selects and tunes the record store.
type StoreConfig struct {
	Type            string        `mapstructure:"type"`
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	// Seed fills empty tables with fixture data on startup.
	Seed bool `mapstructure:"seed"`
}

// CacheConfig configures the Redis snapshot cache.
type CacheConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	URL              string        `mapstructure:"url"`
	TTL              time.Duration `mapstructure:"ttl"`
	Prefix           string        `mapstructure:"prefix"`
	MaxConns         int           `mapstructure:"max_conns"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
	// BreakerFailures consecutive Redis errors stop cache use for
	// BreakerCooldown.
	BreakerFailures int           `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

// TrackingConfig configures the vehicle simulation.
type TrackingConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	MaxStep  float64       `mapstructure:"max_step"`
	Buffer   int           `mapstructure:"buffer"`
	Seed     uint64        `mapstructure:"seed"`
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// DefaultConfig returns a configuration that runs the service in memory
// with fixture data.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "backoffice",
			Environment: "development",
		},
		HTTP: HTTPConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxRequestSize:  1 << 20,
			Compression:     true,

			CORSAllowedOrigins: []string{},
		},
		Observability: ObservabilityConfig{
			LogLevel:          "info",
			LogFormat:         "json",
			TracingSampleRate: 0.1,
			HealthTimeout:     5 * time.Second,
		},
		Listing: ListingConfig{
			DefaultItemsPerPage: 10,
			MaxItemsPerPage:     100,
			UnknownFilterPolicy: "exclude",
		},
		Store: StoreConfig{
			Type:            StoreMemory,
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			QueryTimeout:    10 * time.Second,
			Seed:            true,
		},
		Cache: CacheConfig{
			TTL:              30 * time.Second,
			Prefix:           "backoffice:snapshot",
			MaxConns:         10,
			OperationTimeout: time.Second,
			BreakerFailures:  5,
			BreakerCooldown:  30 * time.Second,
		},
		Tracking: TrackingConfig{
			Enabled:  true,
			Interval: 2 * time.Second,
			MaxStep:  0.01,
			Buffer:   1,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
		},
	}
}

// setting is one dotted configuration key and its value.
type setting struct {
	key   string
	value any
}

// settings lists every key of c in display order. It drives defaults,
// environment bindings and the rendered configuration, so a new field only
// needs to be added here.
func (c *Config) settings() []setting {
	return []setting{
		{"service.name", c.Service.Name},
		{"service.environment", c.Service.Environment},

		{"http.port", c.HTTP.Port},
		{"http.read_timeout", c.HTTP.ReadTimeout},
		{"http.write_timeout", c.HTTP.WriteTimeout},
		{"http.idle_timeout", c.HTTP.IdleTimeout},
		{"http.shutdown_timeout", c.HTTP.ShutdownTimeout},
		{"http.max_request_size", c.HTTP.MaxRequestSize},
		{"http.compression", c.HTTP.Compression},
		{"http.cors_allowed_origins", c.HTTP.CORSAllowedOrigins},

		{"observability.log_level", c.Observability.LogLevel},
		{"observability.log_format", c.Observability.LogFormat},
		{"observability.tracing_enabled", c.Observability.TracingEnabled},
		{"observability.tracing_endpoint", c.Observability.TracingEndpoint},
		{"observability.tracing_sample_rate", c.Observability.TracingSampleRate},
		{"observability.health_timeout", c.Observability.HealthTimeout},

		{"listing.default_items_per_page", c.Listing.DefaultItemsPerPage},
		{"listing.max_items_per_page", c.Listing.MaxItemsPerPage},
		{"listing.unknown_filter_policy", c.Listing.UnknownFilterPolicy},

		{"store.type", c.Store.Type},
		{"store.url", c.Store.URL},
		{"store.max_open_conns", c.Store.MaxOpenConns},
		{"store.max_idle_conns", c.Store.MaxIdleConns},
		{"store.conn_max_lifetime", c.Store.ConnMaxLifetime},
		{"store.conn_max_idle_time", c.Store.ConnMaxIdleTime},
		{"store.query_timeout", c.Store.QueryTimeout},
		{"store.seed", c.Store.Seed},

		{"cache.enabled", c.Cache.Enabled},
		{"cache.url", c.Cache.URL},
		{"cache.ttl", c.Cache.TTL},
		{"cache.prefix", c.Cache.Prefix},
		{"cache.max_conns", c.Cache.MaxConns},
		{"cache.operation_timeout", c.Cache.OperationTimeout},
		{"cache.breaker_failures", c.Cache.BreakerFailures},
		{"cache.breaker_cooldown", c.Cache.BreakerCooldown},

		{"tracking.enabled", c.Tracking.Enabled},
		{"tracking.interval", c.Tracking.Interval},
		{"tracking.max_step", c.Tracking.MaxStep},
		{"tracking.buffer", c.Tracking.Buffer},
		{"tracking.seed", c.Tracking.Seed},

		{"rate_limit.enabled", c.RateLimit.Enabled},
		{"rate_limit.requests_per_second", c.RateLimit.RequestsPerSecond},
		{"rate_limit.burst", c.RateLimit.Burst},
	}
}
