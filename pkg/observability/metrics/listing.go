package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ListingMetrics tracks listing pipeline runs per dataset.
type ListingMetrics struct {
	duration *prometheus.HistogramVec
	results  *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

func newListingMetrics() *ListingMetrics {
	return &ListingMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "listing_duration_seconds",
			Help:      "Time spent producing one listing page, snapshot read included",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"dataset"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "listing_results",
			Help:      "Number of records matching a listing query before pagination",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"dataset"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "listing_errors_total",
			Help:      "Listing requests that failed to read their snapshot",
		}, []string{"dataset"}),
	}
}

func (m *ListingMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.duration, m.results, m.errors}
}

// Observe records a successful listing.
func (m *ListingMetrics) Observe(dataset string, duration time.Duration, totalItems int) {
	m.duration.WithLabelValues(dataset).Observe(duration.Seconds())
	m.results.WithLabelValues(dataset).Observe(float64(totalItems))
}

// Failed records a listing that could not be produced.
func (m *ListingMetrics) Failed(dataset string) {
	m.errors.WithLabelValues(dataset).Inc()
}
