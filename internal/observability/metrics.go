package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	EventsFetched   prometheus.Counter
	EventsPublished prometheus.Counter
	TransformErrors prometheus.Counter
	FetchErrors     prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Upstream API metrics.
	FetchDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		EventsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "events_fetched_total",
			Help:      "Total events fetched from the AFAD API.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "events_published_total",
			Help:      "Total events written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "transform_errors_total",
			Help:      "Total transformation failures.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "fetch_errors_total",
			Help:      "Total failed fetch attempts against the AFAD API.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_etl",
			Name:      "batch_size",
			Help:      "Number of events per batch extracted from the AFAD API.",
			Buckets:   []float64{1, 10, 25, 50, 100, 250, 500, 750, 1000},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_etl",
			Name:      "fetch_duration_seconds",
			Help:      "AFAD API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}

	prometheus.MustRegister(
		m.EventsFetched,
		m.EventsPublished,
		m.TransformErrors,
		m.FetchErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.FetchDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		EventsFetched:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_etl", Name: "events_fetched_total"}),
		EventsPublished:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_etl", Name: "events_published_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_etl", Name: "transform_errors_total"}),
		FetchErrors:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_etl", Name: "fetch_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quake_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_etl", Name: "batch_processing_duration_seconds"}),
		FetchDuration:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_etl", Name: "fetch_duration_seconds"}),
	}
}
