// Package metrics exposes the service's Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric owned by the service.
const Namespace = "backoffice"

// Registry owns a Prometheus registry with the HTTP, listing and tracking
// collectors plus the Go runtime and process collectors.
type Registry struct {
	registry *prometheus.Registry
	http     *HTTPMetrics
	listing  *ListingMetrics
	tracking *TrackingMetrics
}

// NewRegistry creates a registry with all service collectors registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		registry: reg,
		http:     newHTTPMetrics(),
		listing:  newListingMetrics(),
		tracking: newTrackingMetrics(),
	}
	reg.MustRegister(r.http.collectors()...)
	reg.MustRegister(r.listing.collectors()...)
	reg.MustRegister(r.tracking.collectors()...)
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

// HTTP returns the HTTP request metrics.
func (r *Registry) HTTP() *HTTPMetrics { return r.http }

// Listing returns the listing pipeline metrics.
func (r *Registry) Listing() *ListingMetrics { return r.listing }

// Tracking returns the vehicle simulation metrics.
func (r *Registry) Tracking() *TrackingMetrics { return r.tracking }

// MustRegister registers additional collectors and panics on error.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// Handler returns the /metrics handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Gatherer returns the underlying prometheus.Gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
