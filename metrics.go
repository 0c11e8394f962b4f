package tembang

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the dispatch lifecycle
// and the reliability layers around it. It is safe for concurrent use.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	retriesTotal *prometheus.CounterVec

	rateLimiterWait prometheus.Histogram

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheSize   *prometheus.GaugeVec

	dedupHits *prometheus.CounterVec

	errorsTotal *prometheus.CounterVec
}

// NewMetricsCollector creates a collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer, useful for tests and multi-client processes.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tembang_requests_total",
				Help: "Total number of dispatched requests by outcome",
			},
			[]string{"operation", "outcome"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tembang_request_duration_seconds",
				Help:    "Duration of dispatches in seconds, cache hits included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tembang_requests_in_flight",
				Help: "Number of dispatches currently in flight",
			},
			[]string{"operation"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tembang_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"operation"},
		),
		rateLimiterWait: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tembang_rate_limiter_wait_seconds",
				Help:    "Time spent waiting for a rate limiter permit",
				Buckets: prometheus.DefBuckets,
			},
		),
		cacheHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tembang_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"operation"},
		),
		cacheMisses: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tembang_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"operation"},
		),
		cacheSize: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tembang_cache_size",
				Help: "Current number of entries in the cache",
			},
			[]string{"name"},
		),
		dedupHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tembang_deduplication_hits_total",
				Help: "Total number of dispatches coalesced onto an in-flight call",
			},
			[]string{"operation"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tembang_errors_total",
				Help: "Total number of classified errors by kind",
			},
			[]string{"operation", "kind"},
		),
	}
}

// RecordRequestStart marks a dispatch as in flight.
func (m *MetricsCollector) RecordRequestStart(operation string) {
	m.requestsInFlight.WithLabelValues(operation).Inc()
}

// RecordRequestEnd marks a dispatch as done.
func (m *MetricsCollector) RecordRequestEnd(operation string) {
	m.requestsInFlight.WithLabelValues(operation).Dec()
}

// RecordRequest records the terminal outcome and duration of a dispatch.
func (m *MetricsCollector) RecordRequest(operation, outcome string, duration time.Duration) {
	m.requestsTotal.WithLabelValues(operation, outcome).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRetry records one retry attempt.
func (m *MetricsCollector) RecordRetry(operation string) {
	m.retriesTotal.WithLabelValues(operation).Inc()
}

// RecordLimiterWait records time spent waiting for a permit.
func (m *MetricsCollector) RecordLimiterWait(d time.Duration) {
	m.rateLimiterWait.Observe(d.Seconds())
}

// RecordCacheHit records a cache hit.
func (m *MetricsCollector) RecordCacheHit(operation string) {
	m.cacheHits.WithLabelValues(operation).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *MetricsCollector) RecordCacheMiss(operation string) {
	m.cacheMisses.WithLabelValues(operation).Inc()
}

// RecordCacheSize records the current entry count of the named cache.
func (m *MetricsCollector) RecordCacheSize(name string, size int) {
	m.cacheSize.WithLabelValues(name).Set(float64(size))
}

// RecordDedupHit records a dispatch that joined an in-flight call.
func (m *MetricsCollector) RecordDedupHit(operation string) {
	m.dedupHits.WithLabelValues(operation).Inc()
}

// RecordError records a classified error.
func (m *MetricsCollector) RecordError(operation string, kind ErrorKind) {
	m.errorsTotal.WithLabelValues(operation, string(kind)).Inc()
}
