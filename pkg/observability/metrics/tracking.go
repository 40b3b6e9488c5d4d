package metrics

import "github.com/prometheus/client_golang/prometheus"

// TrackingMetrics tracks the vehicle position simulation.
type TrackingMetrics struct {
	ticks       prometheus.Counter
	dropped     prometheus.Counter
	subscribers prometheus.Gauge
}

func newTrackingMetrics() *TrackingMetrics {
	return &TrackingMetrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tracking_ticks_total",
			Help:      "Simulation ticks applied to the vehicle store",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tracking_dropped_updates_total",
			Help:      "Updates not delivered to a subscriber that was still busy",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "tracking_subscribers",
			Help:      "Open tracking streams",
		}),
	}
}

func (m *TrackingMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.ticks, m.dropped, m.subscribers}
}

// Tick counts one applied simulation step.
func (m *TrackingMetrics) Tick() { m.ticks.Inc() }

// Dropped counts one update skipped for a slow subscriber.
func (m *TrackingMetrics) Dropped() { m.dropped.Inc() }

// Subscribed adjusts the open stream gauge by delta.
func (m *TrackingMetrics) Subscribed(delta int) { m.subscribers.Add(float64(delta)) }
