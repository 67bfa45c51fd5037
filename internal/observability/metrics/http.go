package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics contains Prometheus metrics for the HTTP/SSE surface.
type HTTPMetrics struct {
	// HTTP request metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// SSE (Server-Sent Events) metrics
	sseActiveConnections  prometheus.Gauge
	sseTotalConnections   *prometheus.CounterVec
	sseConnectionDuration *prometheus.HistogramVec
	sseMessagesSent       *prometheus.CounterVec
	sseErrors             *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewHTTPMetrics creates and registers new HTTP handler metrics
func NewHTTPMetrics(registry *prometheus.Registry) (*HTTPMetrics, error) {
	m := &HTTPMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize HTTP metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register HTTP metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *HTTPMetrics) initMetrics() error {
	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time taken for HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.sseActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_active_connections",
			Help: "Current number of open SSE connections",
		},
	)

	m.sseTotalConnections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sse_connections_total",
			Help: "Total number of SSE connections, by endpoint and close reason",
		},
		[]string{"endpoint", "reason"},
	)

	m.sseConnectionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sse_connection_duration_seconds",
			Help:    "Lifetime of SSE connections",
			Buckets: []float64{1, 10, 60, 300, 600, 1200, 1800},
		},
		[]string{"endpoint"},
	)

	m.sseMessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sse_messages_sent_total",
			Help: "Total number of SSE messages sent, by endpoint and message type",
		},
		[]string{"endpoint", "message_type"},
	)

	m.sseErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sse_errors_total",
			Help: "Total number of SSE write or encode errors, by endpoint and error type",
		},
		[]string{"endpoint", "error_type"},
	)

	return nil
}

// getCollectors returns all collectors in order for Describe/Collect operations
func (m *HTTPMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.sseActiveConnections,
		m.sseTotalConnections,
		m.sseConnectionDuration,
		m.sseMessagesSent,
		m.sseErrors,
	}
}

// Describe implements the Collector interface
func (m *HTTPMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *HTTPMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordHTTPRequest records an HTTP request
func (m *HTTPMetrics) RecordHTTPRequest(method, path string, statusCode int, duration float64) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// SSE connection close reason constants to prevent high cardinality metrics
const (
	SSECloseReasonClosed   = "closed"   // Normal client disconnect
	SSECloseReasonTimeout  = "timeout"  // Connection hit its lifetime cap
	SSECloseReasonCanceled = "canceled" // Context canceled
	SSECloseReasonError    = "error"    // Error occurred
)

// SSEConnectionStarted increments active connections and total connections counter
func (m *HTTPMetrics) SSEConnectionStarted(endpoint string) {
	m.sseActiveConnections.Inc()
	m.sseTotalConnections.WithLabelValues(endpoint, "established").Inc()
}

// SSEConnectionClosed decrements active connections and records duration.
// Reason must be one of the SSECloseReason* constants; unknown reasons are
// mapped to "error" to keep cardinality bounded.
func (m *HTTPMetrics) SSEConnectionClosed(endpoint string, duration float64, reason string) {
	switch reason {
	case SSECloseReasonClosed, SSECloseReasonTimeout, SSECloseReasonCanceled, SSECloseReasonError:
	default:
		reason = SSECloseReasonError
	}

	m.sseActiveConnections.Dec()
	m.sseTotalConnections.WithLabelValues(endpoint, reason).Inc()
	m.sseConnectionDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordSSEMessageSent records an SSE message sent
func (m *HTTPMetrics) RecordSSEMessageSent(endpoint, messageType string) {
	m.sseMessagesSent.WithLabelValues(endpoint, messageType).Inc()
}

// RecordSSEError records an SSE error
func (m *HTTPMetrics) RecordSSEError(endpoint, errorType string) {
	m.sseErrors.WithLabelValues(endpoint, errorType).Inc()
}
