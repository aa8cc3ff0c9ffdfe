// Package metrics provides Prometheus metrics for the Rampart training service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Business metrics - submissions and leaderboard churn.
	submissionsAccepted prometheus.Counter
	submissionsIgnored  prometheus.Counter
	submissionsRejected *prometheus.CounterVec
	recomputes          prometheus.Counter
	recomputeErrors     prometheus.Counter
	leaderboardSize     prometheus.Gauge

	// Storage metrics - key-value backend behavior.
	storeConflicts  prometheus.Counter
	storeRetries    prometheus.Counter
	storeOpLatency  *prometheus.HistogramVec
	storeOpErrors   *prometheus.CounterVec

	// Auth metrics.
	authFailures prometheus.Counter

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global manager registered on a custom registry so /healthz serves only the
// service's own metrics, not the default Go collectors.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager builds a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rampart",
		subsystem:        "arena",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.register()
	return m
}

func (m *Manager) register() {
	auto := promauto.With(m.registry)

	m.submissionsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_accepted_total",
		Help:      "Score submissions that raised a best score",
	})
	m.submissionsIgnored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_ignored_total",
		Help:      "Valid submissions that did not beat the stored best score",
	})
	m.submissionsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_rejected_total",
		Help:      "Submissions rejected before reaching storage",
	}, []string{"reason"})
	m.recomputes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_recomputes_total",
		Help:      "Leaderboard table rewrites triggered by improved scores",
	})
	m.recomputeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_recompute_errors_total",
		Help:      "Failed leaderboard rewrites leaving the table stale",
	})
	m.leaderboardSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_size",
		Help:      "Current number of entries in the leaderboard table",
	})

	m.storeConflicts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_cas_conflicts_total",
		Help:      "Compare-and-swap writes that lost a race",
	})
	m.storeRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_cas_retries_total",
		Help:      "Retry attempts after a compare-and-swap conflict",
	})
	m.storeOpLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_op_duration_milliseconds",
		Help:      "Key-value operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})
	m.storeOpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_op_errors_total",
		Help:      "Key-value operation failures by operation",
	}, []string{"op"})

	m.authFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "auth_failures_total",
		Help:      "Requests rejected for a missing or invalid bearer token",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method, and status",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// Package-level recording helpers backed by the global manager.

func RecordSubmissionAccepted() { globalManager.submissionsAccepted.Inc() }

func RecordSubmissionIgnored() { globalManager.submissionsIgnored.Inc() }

func RecordSubmissionRejected(reason string) {
	globalManager.submissionsRejected.WithLabelValues(reason).Inc()
}

func RecordRecompute() { globalManager.recomputes.Inc() }

func RecordRecomputeError() { globalManager.recomputeErrors.Inc() }

func UpdateLeaderboardSize(n int) { globalManager.leaderboardSize.Set(float64(n)) }

func RecordStoreConflict() { globalManager.storeConflicts.Inc() }

func RecordStoreRetry() { globalManager.storeRetries.Inc() }

func RecordStoreOpLatency(op string, latencyMs float64) {
	globalManager.storeOpLatency.WithLabelValues(op).Observe(latencyMs)
}

func RecordStoreOpError(op string) { globalManager.storeOpErrors.WithLabelValues(op).Inc() }

func RecordAuthFailure() { globalManager.authFailures.Inc() }

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry exposes the custom registry for the metrics HTTP handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
