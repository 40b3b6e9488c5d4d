// Package tracing opens an OpenTelemetry server span per request.
package tracing

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/freightdesk/backoffice/pkg/observability/logger"
	obstracing "github.com/freightdesk/backoffice/pkg/observability/tracing"
)

// Config holds configuration for the tracing middleware.
type Config struct {
	// TracerName defaults to the module's instrumentation name.
	TracerName string
	// ExcludedPathPrefixes are not traced.
	ExcludedPathPrefixes []string
}

// Tracing extracts the caller's trace context from the request headers and
// wraps the rest of the chain in a server span named after the route.
func Tracing(cfg Config) gin.HandlerFunc {
	if cfg.TracerName == "" {
		cfg.TracerName = obstracing.InstrumentationName
	}

	return func(c *gin.Context) {
		req := c.Request
		for _, prefix := range cfg.ExcludedPathPrefixes {
			if prefix != "" && strings.HasPrefix(req.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
		route := c.FullPath()
		if route == "" {
			route = req.URL.Path
		}
		ctx, span := otel.Tracer(cfg.TracerName).Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, route),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", req.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", req.URL.Path),
				attribute.String("http.user_agent", req.UserAgent()),
			),
		)
		defer span.End()

		if requestID := logger.RequestIDFromContext(req.Context()); requestID != "" {
			span.SetAttributes(attribute.String("request.id", requestID))
		}
		c.Request = req.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 && status >= 500 {
			span.RecordError(errs.Last())
		}
		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}
