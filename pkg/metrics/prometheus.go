// Package metrics provides Prometheus metrics for the tiewatch analyser.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for tiewatch.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Feed metrics
	feedRequests       *prometheus.CounterVec
	feedRequestLatency prometheus.Histogram
	feedRetries        prometheus.Counter
	feedPages          prometheus.Counter

	// Ingestion metrics
	recordsIngested prometheus.Counter
	pairOverwrites  prometheus.Counter

	// Analysis metrics
	groupsAnalyzed   *prometheus.CounterVec
	branchesPerGroup prometheus.Histogram
	analysisLatency  prometheus.Histogram
	analysisErrors   *prometheus.CounterVec

	// Pipeline health
	queueSize   prometheus.Gauge
	workerCount prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tiewatch",
		subsystem:        "groups",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.feedRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "feed_requests_total",
		Help:        "Requests made to the match results feed by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.feedRequestLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "feed_request_latency_milliseconds",
		Help:        "Latency of match results feed requests in milliseconds",
		Buckets:     []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		ConstLabels: m.constLabels,
	})

	m.feedRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "feed_retries_total",
		Help:        "Feed requests retried after a transient failure",
		ConstLabels: m.constLabels,
	})

	m.feedPages = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "feed_pages_total",
		Help:        "Feed pages fetched and ingested",
		ConstLabels: m.constLabels,
	})

	m.recordsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_ingested_total",
		Help:        "Match records ingested into the standings store",
		ConstLabels: m.constLabels,
	})

	m.pairOverwrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pair_overwrites_total",
		Help:        "Match records that replaced an earlier record of the same pair",
		ConstLabels: m.constLabels,
	})

	m.groupsAnalyzed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "analyzed_total",
		Help:        "Groups analysed by three-way tie classification",
		ConstLabels: m.constLabels,
	}, []string{"classification"})

	m.branchesPerGroup = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "branches",
		Help:        "Number of enumerated branches per group",
		Buckets:     prometheus.ExponentialBuckets(1, 4, 11),
		ConstLabels: m.constLabels,
	})

	m.analysisLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "analysis_latency_milliseconds",
		Help:        "Time to enumerate and classify one group in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.analysisErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "analysis_errors_total",
		Help:        "Groups whose analysis failed, by error type",
		ConstLabels: m.constLabels,
	}, []string{"type"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_size",
		Help:        "Groups waiting for analysis",
		ConstLabels: m.constLabels,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_count",
		Help:        "Number of analysis workers",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "HTTP requests served by endpoint, method and status",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordFeedRequest counts one feed request with its outcome
// ("ok", "retry", "error").
func RecordFeedRequest(outcome string) {
	globalManager.feedRequests.WithLabelValues(outcome).Inc()
}

// RecordFeedRequestLatency records feed request latency in milliseconds.
func RecordFeedRequestLatency(latencyMs float64) {
	globalManager.feedRequestLatency.Observe(latencyMs)
}

// RecordFeedRetry increments the feed retry counter.
func RecordFeedRetry() {
	globalManager.feedRetries.Inc()
}

// RecordFeedPage increments the fetched pages counter.
func RecordFeedPage() {
	globalManager.feedPages.Inc()
}

// RecordRecordIngested increments the ingested records counter.
func RecordRecordIngested() {
	globalManager.recordsIngested.Inc()
}

// RecordPairOverwrite increments the pair overwrite counter.
func RecordPairOverwrite() {
	globalManager.pairOverwrites.Inc()
}

// RecordGroupAnalyzed counts a classified group and its branch count.
func RecordGroupAnalyzed(classification string, branches int) {
	globalManager.groupsAnalyzed.WithLabelValues(classification).Inc()
	globalManager.branchesPerGroup.Observe(float64(branches))
}

// RecordAnalysisLatency records analysis latency in milliseconds.
func RecordAnalysisLatency(latencyMs float64) {
	globalManager.analysisLatency.Observe(latencyMs)
}

// RecordAnalysisError counts a failed group analysis.
func RecordAnalysisError(errorType string) {
	globalManager.analysisErrors.WithLabelValues(errorType).Inc()
}

// UpdateQueueSize sets the number of queued groups.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
