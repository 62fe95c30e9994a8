package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "floatchat"

// Metrics holds the Prometheus counters, histograms, and gauges for the query service.
type Metrics struct {
	// Query metrics.
	Queries         *prometheus.CounterVec // labels: status={ok,empty,out_of_scope}
	QueryDuration   prometheus.Histogram
	ChartSelections *prometheus.CounterVec // labels: chart_type
	IntentSource    *prometheus.CounterVec // labels: source={augmenter,rules}

	// Ingestion and index metrics.
	RecordsIngested prometheus.Counter
	RecordsRejected prometheus.Counter
	RecordsUnparsed prometheus.Counter
	IndexSize       prometheus.Gauge

	// Augmenter metrics.
	AugmenterRequests *prometheus.CounterVec   // labels: provider, op={augment,elaborate}, outcome={success,error}
	AugmenterCache    *prometheus.CounterVec   // labels: op, result={hit,miss}
	AugmenterDuration *prometheus.HistogramVec // labels: provider, op
	AugmenterEnabled  prometheus.Gauge

	// Audit publishing.
	AuditPublishErrors prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Questions answered, by response status.",
		}, []string{"status"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "End-to-end duration of answering one question.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ChartSelections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_selections_total",
			Help:      "Charts chosen by the visualization selector.",
		}, []string{"chart_type"}),
		IntentSource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intent_source_total",
			Help:      "Query intents by the tier that produced them.",
		}, []string{"source"}),
		RecordsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_ingested_total",
			Help:      "Records accepted by the normalizer.",
		}),
		RecordsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_rejected_total",
			Help:      "Records rejected by the normalizer.",
		}),
		RecordsUnparsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_unparsed_timestamp_total",
			Help:      "Records kept out of the index for lacking a usable timestamp.",
		}),
		IndexSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_records",
			Help:      "Records currently held in the measurement index.",
		}),
		AugmenterRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "augmenter_requests_total",
			Help:      "Augmenter API requests by provider, operation and outcome.",
		}, []string{"provider", "op", "outcome"}),
		AugmenterCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "augmenter_cache_total",
			Help:      "Augmenter cache lookups by operation and result.",
		}, []string{"op", "result"}),
		AugmenterDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "augmenter_api_duration_seconds",
			Help:      "Augmenter API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider", "op"}),
		AugmenterEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "augmenter_enabled",
			Help:      "1 when an augmenter provider is configured, 0 otherwise.",
		}),
		AuditPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_publish_errors_total",
			Help:      "Query events that could not be published.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Queries,
		m.QueryDuration,
		m.ChartSelections,
		m.IntentSource,
		m.RecordsIngested,
		m.RecordsRejected,
		m.RecordsUnparsed,
		m.IndexSize,
		m.AugmenterRequests,
		m.AugmenterCache,
		m.AugmenterDuration,
		m.AugmenterEnabled,
		m.AuditPublishErrors,
	}
}
