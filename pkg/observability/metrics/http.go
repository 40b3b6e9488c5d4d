package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics tracks request count, latency and concurrency.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
	inFlight prometheus.Gauge
}

func newHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		}),
	}
}

func (m *HTTPMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.duration, m.total, m.inFlight}
}

// Observe records one finished request. path should be the route template,
// not the raw URL, to keep label cardinality bounded.
func (m *HTTPMetrics) Observe(method, path string, status int, duration time.Duration) {
	s := strconv.Itoa(status)
	m.duration.WithLabelValues(method, path, s).Observe(duration.Seconds())
	m.total.WithLabelValues(method, path, s).Inc()
}

// Begin marks a request in flight and returns the func that ends it.
func (m *HTTPMetrics) Begin() func() {
	m.inFlight.Inc()
	return m.inFlight.Dec
}
