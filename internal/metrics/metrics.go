// Package metrics exposes Prometheus counters for provider traffic and visit
// progress.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

type Metrics struct {
	ProviderCallsTotal *prometheus.CounterVec
	ProviderDuration   *prometheus.HistogramVec

	VisitTransitionsTotal *prometheus.CounterVec
	RoutesComputedTotal   prometheus.Counter
	RouteStops            prometheus.Histogram
}

// Default registers the metrics once on the global registry served by
// promhttp.Handler.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New registers a fresh set of metrics on reg.
//
// Metrics:
//   - salesday_provider_calls_total{provider,op,outcome}
//   - salesday_provider_duration_seconds{provider,op}
//   - salesday_visit_transitions_total{status}
//   - salesday_routes_computed_total
//   - salesday_route_stops
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ProviderCallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salesday_provider_calls_total",
				Help: "Total calls to external routing and map providers",
			},
			[]string{"provider", "op", "outcome"}, // outcome: "ok" or "error"
		),
		ProviderDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "salesday_provider_duration_seconds",
				Help:    "Latency of external provider calls in seconds",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
			},
			[]string{"provider", "op"},
		),
		VisitTransitionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salesday_visit_transitions_total",
				Help: "Total visit status changes by target status",
			},
			[]string{"status"},
		),
		RoutesComputedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "salesday_routes_computed_total",
				Help: "Total successful route computations",
			},
		),
		RouteStops: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "salesday_route_stops",
				Help:    "Number of stops per computed route",
				Buckets: prometheus.LinearBuckets(0, 2, 8),
			},
		),
	}
}

// RecordProviderCall records one provider round trip.
func (m *Metrics) RecordProviderCall(provider, op string, seconds float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ProviderCallsTotal.WithLabelValues(provider, op, outcome).Inc()
	m.ProviderDuration.WithLabelValues(provider, op).Observe(seconds)
}

func (m *Metrics) RecordVisitTransition(status string) {
	m.VisitTransitionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordRoute(stops int) {
	m.RoutesComputedTotal.Inc()
	m.RouteStops.Observe(float64(stops))
}
