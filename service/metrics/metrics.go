package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to every component that needs to record metrics.
type Metrics struct {
	// Ledger metrics
	txSubmittedTotal *prometheus.CounterVec
	txSettledTotal   *prometheus.CounterVec
	txDeletedTotal   prometheus.Counter

	// Scanner metrics
	scanRunsTotal    prometheus.Counter
	scanFlaggedTotal *prometheus.CounterVec

	// Reorder metrics
	reorderExecutionsTotal *prometheus.CounterVec
	reorderDuration        *prometheus.HistogramVec

	// Risk scorer metrics
	scorerCallsTotal *prometheus.CounterVec

	// HTTP metrics
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsTotal    *prometheus.CounterVec
	sseActiveConnections prometheus.Gauge
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		txSubmittedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dexsim_transactions_submitted_total",
				Help: "Total number of accepted transactions by kind and initial status",
			},
			[]string{"kind", "status"},
		),
		txSettledTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dexsim_transactions_settled_total",
				Help: "Total number of delayed settlements by kind",
			},
			[]string{"kind"},
		),
		txDeletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dexsim_transactions_deleted_total",
				Help: "Total number of transactions deleted from the ledger",
			},
		),
		scanRunsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dexsim_scan_runs_total",
				Help: "Total number of opportunity scans",
			},
		),
		scanFlaggedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dexsim_scan_flagged_total",
				Help: "Total number of transactions flagged by scans, by kind",
			},
			[]string{"kind"},
		),
		reorderExecutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dexsim_reorder_executions_total",
				Help: "Total number of reordering runs by strategy and outcome",
			},
			[]string{"strategy", "status"},
		),
		reorderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dexsim_reorder_duration_seconds",
				Help:    "Duration of complete reordering runs in seconds",
				Buckets: []float64{0.1, 1, 5, 10, 15, 20, 30, 60},
			},
			[]string{"strategy"},
		),
		scorerCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dexsim_scorer_calls_total",
				Help: "Total number of risk scorer calls by status (ok or fallback)",
			},
			[]string{"status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dexsim_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"handler", "method"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dexsim_http_requests_total",
				Help: "Total number of HTTP requests by handler, method, and status class",
			},
			[]string{"handler", "method", "status"},
		),
		sseActiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dexsim_sse_active_connections",
				Help: "Number of active SSE price-stream connections",
			},
		),
	}
}

// Ledger metric helpers

// RecordSubmission records an accepted transaction.
func (m *Metrics) RecordSubmission(kind, status string) {
	m.txSubmittedTotal.WithLabelValues(kind, status).Inc()
}

// RecordSettlement records a delayed pending-to-executed transition.
func (m *Metrics) RecordSettlement(kind string) {
	m.txSettledTotal.WithLabelValues(kind).Inc()
}

// RecordDeletion records a ledger deletion.
func (m *Metrics) RecordDeletion() {
	m.txDeletedTotal.Inc()
}

// Scanner metric helpers

// RecordScan records one opportunity scan and how many transactions of each
// kind it flagged.
func (m *Metrics) RecordScan(flaggedByKind map[string]int) {
	m.scanRunsTotal.Inc()
	for kind, n := range flaggedByKind {
		m.scanFlaggedTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// Reorder metric helpers

// RecordReorder records a completed or failed reordering run.
func (m *Metrics) RecordReorder(strategy, status string, duration float64) {
	m.reorderExecutionsTotal.WithLabelValues(strategy, status).Inc()
	m.reorderDuration.WithLabelValues(strategy).Observe(duration)
}

// Risk scorer metric helpers

// RecordScorerCall records a risk scorer invocation.
func (m *Metrics) RecordScorerCall(status string) {
	m.scorerCallsTotal.WithLabelValues(status).Inc()
}

// HTTP metric helpers

// RecordHTTPRequest records an HTTP request with duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, duration float64) {
	status := statusCodeToString(statusCode)
	m.httpRequestsTotal.WithLabelValues(handler, method, status).Inc()
	m.httpRequestDuration.WithLabelValues(handler, method).Observe(duration)
}

// RecordSSEConnectionChange records a change in SSE connection count.
func (m *Metrics) RecordSSEConnectionChange(delta float64) {
	m.sseActiveConnections.Add(delta)
}

// Helper functions

func statusCodeToString(code int) string {
	// Group status codes by class
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "unknown"
	}
}
