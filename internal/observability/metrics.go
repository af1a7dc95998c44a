package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_map"

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	// Feed metrics.
	FeedFetches         *prometheus.CounterVec // labels: outcome={success,error,circuit_open}
	FeedFetchDuration   prometheus.Histogram
	FeedFeaturesSkipped prometheus.Counter
	Earthquakes         prometheus.Gauge
	FeedLastSuccess     prometheus.Gauge

	PageRenders     *prometheus.CounterVec // labels: page={map,geojson,legend}
	EventsPublished prometheus.Counter
	TileTokenValid  prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FeedFetches,
		m.FeedFetchDuration,
		m.FeedFeaturesSkipped,
		m.Earthquakes,
		m.FeedLastSuccess,
		m.PageRenders,
		m.EventsPublished,
		m.TileTokenValid,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetches_total",
			Help:      "USGS feed fetch attempts by outcome.",
		}, []string{"outcome"}),
		FeedFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of a USGS feed fetch including retries.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FeedFeaturesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_features_skipped_total",
			Help:      "Feed features dropped because they had no point geometry.",
		}),
		Earthquakes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "earthquakes",
			Help:      "Earthquakes in the current snapshot.",
		}),
		FeedLastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful feed refresh.",
		}),
		PageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_renders_total",
			Help:      "Rendered responses by page.",
		}, []string{"page"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Earthquake events written to the sink topic.",
		}),
		TileTokenValid: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tile_token_valid",
			Help:      "1 when the Mapbox token validated, 0 otherwise.",
		}),
	}
}
