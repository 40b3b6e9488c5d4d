// Package logging writes one access log entry per request.
package logging

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freightdesk/backoffice/pkg/observability/logger"
)

// Log field names.
const (
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldRoute      = "route"
	FieldStatus     = "status"
	FieldDurationMS = "duration_ms"
	FieldClientIP   = "client_ip"
	FieldUserAgent  = "user_agent"
	FieldQuery      = "query"
	FieldBytes      = "bytes"
	FieldError      = "error"
)

// Config configures the access log.
type Config struct {
	// ExcludedPathPrefixes are not logged. Probes and scrapes usually are.
	ExcludedPathPrefixes []string
	// LogStart also logs when a request starts, at debug level.
	LogStart bool
}

// DefaultConfig skips the health and metrics endpoints.
func DefaultConfig() Config {
	return Config{ExcludedPathPrefixes: []string{"/healthz", "/metrics"}}
}

// Logging creates middleware with default configuration.
func Logging(log logger.Logger) gin.HandlerFunc {
	return WithConfig(log, DefaultConfig())
}

// WithConfig logs every completed request. Requests that end with a 5xx or
// with errors recorded on the gin context are logged at error level, 4xx at
// warn and the rest at info.
func WithConfig(log logger.Logger, cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if cfg.excluded(path) {
			c.Next()
			return
		}

		start := time.Now()
		reqLog := log.WithContext(c.Request.Context())
		if cfg.LogStart {
			reqLog.Debug("request started", FieldMethod, c.Request.Method, FieldPath, path)
		}

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			FieldMethod, c.Request.Method,
			FieldPath, path,
			FieldRoute, c.FullPath(),
			FieldStatus, status,
			FieldDurationMS, time.Since(start).Milliseconds(),
			FieldClientIP, c.ClientIP(),
			FieldBytes, c.Writer.Size(),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, FieldQuery, q)
		}
		if ua := c.Request.UserAgent(); ua != "" {
			fields = append(fields, FieldUserAgent, ua)
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, FieldError, errs.String())
		}

		switch {
		case status >= 500:
			reqLog.Error("request failed", fields...)
		case status >= 400:
			reqLog.Warn("request rejected", fields...)
		default:
			reqLog.Info("request completed", fields...)
		}
	}
}

func (c Config) excluded(path string) bool {
	for _, prefix := range c.ExcludedPathPrefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
