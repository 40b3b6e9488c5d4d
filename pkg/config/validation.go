package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// MaxItemsPerPageLimit caps listing.max_items_per_page.
const MaxItemsPerPageLimit = 10000

func (c *Config) normalize() {
	c.Store.Type = strings.ToLower(strings.TrimSpace(c.Store.Type))
	c.Observability.LogLevel = strings.ToLower(strings.TrimSpace(c.Observability.LogLevel))
	c.Observability.LogFormat = strings.ToLower(strings.TrimSpace(c.Observability.LogFormat))
	c.Listing.UnknownFilterPolicy = strings.ToLower(strings.TrimSpace(c.Listing.UnknownFilterPolicy))
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Service.Name) == "" {
		errs = append(errs, errors.New("service.name is required"))
	}

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		errs = append(errs, errors.New("http read and write timeouts must be positive"))
	}
	if c.HTTP.MaxRequestSize <= 0 {
		errs = append(errs, errors.New("http.max_request_size must be positive"))
	}

	if !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, c.Observability.LogLevel) {
		errs = append(errs, fmt.Errorf("observability.log_level: unsupported level %q", c.Observability.LogLevel))
	}
	if !slices.Contains([]string{"json", "text", "console"}, c.Observability.LogFormat) {
		errs = append(errs, fmt.Errorf("observability.log_format: unsupported format %q", c.Observability.LogFormat))
	}
	if c.Observability.TracingEnabled && c.Observability.TracingEndpoint == "" {
		errs = append(errs, errors.New("observability.tracing_endpoint is required when tracing is enabled"))
	}
	if c.Observability.TracingSampleRate < 0 || c.Observability.TracingSampleRate > 1 {
		errs = append(errs, errors.New("observability.tracing_sample_rate must be between 0 and 1"))
	}

	if c.Listing.DefaultItemsPerPage < 1 {
		errs = append(errs, errors.New("listing.default_items_per_page must be at least 1"))
	}
	if c.Listing.MaxItemsPerPage < c.Listing.DefaultItemsPerPage {
		errs = append(errs, errors.New("listing.max_items_per_page must not be below listing.default_items_per_page"))
	}
	if c.Listing.MaxItemsPerPage > MaxItemsPerPageLimit {
		errs = append(errs, fmt.Errorf("listing.max_items_per_page must not exceed %d", MaxItemsPerPageLimit))
	}
	if !slices.Contains([]string{"exclude", "pass_through"}, c.Listing.UnknownFilterPolicy) {
		errs = append(errs, fmt.Errorf("listing.unknown_filter_policy must be exclude or pass_through, got %q", c.Listing.UnknownFilterPolicy))
	}

	switch c.Store.Type {
	case StoreMemory:
	case StorePostgres, StoreMySQL:
		if c.Store.URL == "" {
			errs = append(errs, fmt.Errorf("store.url is required for store type %s", c.Store.Type))
		}
		if c.Store.MaxOpenConns < 1 {
			errs = append(errs, errors.New("store.max_open_conns must be at least 1"))
		}
		if c.Store.MaxIdleConns > c.Store.MaxOpenConns {
			errs = append(errs, errors.New("store.max_idle_conns must not exceed store.max_open_conns"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.type must be one of memory, postgres, mysql, got %q", c.Store.Type))
	}

	if c.Cache.Enabled {
		if c.Cache.URL == "" {
			errs = append(errs, errors.New("cache.url is required when the cache is enabled"))
		}
		if c.Cache.TTL <= 0 {
			errs = append(errs, errors.New("cache.ttl must be positive"))
		}
		if c.Cache.Prefix == "" {
			errs = append(errs, errors.New("cache.prefix is required"))
		}
	}

	if c.Tracking.Enabled {
		if c.Tracking.Interval <= 0 {
			errs = append(errs, errors.New("tracking.interval must be positive"))
		}
		if c.Tracking.MaxStep <= 0 || c.Tracking.MaxStep > 1 {
			errs = append(errs, errors.New("tracking.max_step must be in (0, 1]"))
		}
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1) {
		errs = append(errs, errors.New("rate_limit requires a positive requests_per_second and burst"))
	}

	return errors.Join(errs...)
}
