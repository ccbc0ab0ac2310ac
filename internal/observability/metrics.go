package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "accident_map"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// accident query service and the map client.
type Metrics struct {
	// Backend query metrics.
	Queries           *prometheus.CounterVec // labels: outcome={success,empty,not_found,error}
	QueryDuration     prometheus.Histogram
	AccidentsReturned prometheus.Histogram
	SkippedRows       prometheus.Counter
	AuditPublishFails prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge

	// Client metrics.
	Fetches         *prometheus.CounterVec // labels: outcome={success,empty,backend_error,error}
	Renders         *prometheus.CounterVec // labels: mode={cluster,heatmap}
	AnimationFrames prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewUnregisteredMetrics()
	prometheus.MustRegister(m.Collectors()...)
	return m
}

// NewUnregisteredMetrics creates all metrics without registering them, for
// processes that expose no /metrics endpoint.
func NewUnregisteredMetrics() *Metrics {
	return &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Accident queries served, by outcome.",
		}, []string{"outcome"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Store query duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		AccidentsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "accidents_returned",
			Help:      "Number of accident features per successful query.",
			Buckets:   []float64{1, 10, 100, 500, 1000, 5000, 10000, 50000},
		}),
		SkippedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_rows_total",
			Help:      "Store rows dropped because their location WKT did not parse.",
		}),
		AuditPublishFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_publish_failures_total",
			Help:      "Query audit events that could not be published.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when Mapbox geocoding is enabled, 0 otherwise.",
		}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_fetches_total",
			Help:      "Client /geojson fetches by outcome.",
		}, []string{"outcome"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_renders_total",
			Help:      "Accident layer renders by view mode.",
		}, []string{"mode"}),
		AnimationFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_animation_frames_total",
			Help:      "Heatmap animation frames that updated the map.",
		}),
	}
}

// Collectors lists every collector in m, for registering with a registry.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Queries,
		m.QueryDuration,
		m.AccidentsReturned,
		m.SkippedRows,
		m.AuditPublishFails,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
		m.Fetches,
		m.Renders,
		m.AnimationFrames,
	}
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewUnregisteredMetrics()
}
