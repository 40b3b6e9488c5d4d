// Package metrics records Prometheus HTTP metrics for every request.
package metrics

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freightdesk/backoffice/pkg/observability/metrics"
)

// unmatchedRoute labels requests that matched no route, keeping the path
// label's cardinality bounded.
const unmatchedRoute = "unmatched"

// Metrics tracks request duration, count and in-flight requests. The path
// label is the matched route template, not the raw URL.
func Metrics(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := m.Begin()
		defer done()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.Observe(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
