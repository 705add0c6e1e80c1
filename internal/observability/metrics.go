package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion run.
type Metrics struct {
	ObjectsProcessed *prometheus.CounterVec // label: status
	MessagesScanned  prometheus.Counter
	RowsAttempted    prometheus.Counter
	RunInProgress    prometheus.Gauge

	// Grid index metrics.
	GridCacheLookups *prometheus.CounterVec // label: result={hit,miss}

	// Fetch metrics.
	FetchDuration  prometheus.Histogram
	FetchRetries   prometheus.Counter
	ObjectDuration prometheus.Histogram

	// Optional Kafka sink metrics.
	SinkPublishErrors prometheus.Counter
}

// NewMetrics creates and registers all ingestion metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ObjectsProcessed,
		m.MessagesScanned,
		m.RowsAttempted,
		m.RunInProgress,
		m.GridCacheLookups,
		m.FetchDuration,
		m.FetchRetries,
		m.ObjectDuration,
		m.SinkPublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics left unregistered to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ObjectsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrrr_etl",
			Name:      "objects_processed_total",
			Help:      "Object keys handled, by terminal status.",
		}, []string{"status"}),
		MessagesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hrrr_etl",
			Name:      "messages_scanned_total",
			Help:      "GRIB messages scanned across all files.",
		}),
		RowsAttempted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hrrr_etl",
			Name:      "rows_attempted_total",
			Help:      "Point rows submitted for idempotent insertion.",
		}),
		RunInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hrrr_etl",
			Name:      "run_in_progress",
			Help:      "1 while the object loop is running, 0 otherwise.",
		}),
		GridCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrrr_etl",
			Name:      "grid_cache_lookups_total",
			Help:      "Grid signature cache lookups by result.",
		}, []string{"result"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hrrr_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Object download duration in seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hrrr_etl",
			Name:      "fetch_retries_total",
			Help:      "Download attempts beyond the first, across all objects.",
		}),
		ObjectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hrrr_etl",
			Name:      "object_processing_duration_seconds",
			Help:      "Duration of a complete fetch-resolve-extract-persist cycle.",
			Buckets:   []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		SinkPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hrrr_etl",
			Name:      "sink_publish_errors_total",
			Help:      "Failed publishes of extracted row batches to the Kafka sink.",
		}),
	}
}
