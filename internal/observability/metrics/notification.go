// Package metrics provides custom Prometheus metrics for the Canopy service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// NotificationMetrics contains all Prometheus metrics for the notification
// registry: entry lifecycle, subscriber fan-out, and rate limiting.
type NotificationMetrics struct {
	// Lifecycle metrics
	CreatedTotal   *prometheus.CounterVec // Created notifications by severity and component
	DismissedTotal *prometheus.CounterVec // Dismissed notifications by severity and reason
	Active         prometheus.Gauge       // Current registry length
	NotifyDuration prometheus.Histogram   // Time spent in the notify path

	// Feed metrics
	Subscribers   prometheus.Gauge       // Currently attached subscribers
	DroppedEvents *prometheus.CounterVec // Events dropped on full subscriber buffers, by action

	// Rate limiting
	RateLimitedTotal prometheus.Counter // Notifications rejected by the rate limiter

	registry *prometheus.Registry
}

// NewNotificationMetrics creates a new instance of NotificationMetrics.
// It requires a Prometheus registry to register the metrics.
// It returns an error if metric registration fails.
func NewNotificationMetrics(registry *prometheus.Registry) (*NotificationMetrics, error) {
	m := &NotificationMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize notification metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register notification metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for NotificationMetrics.
func (m *NotificationMetrics) initMetrics() error {
	m.CreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_created_total",
			Help: "Total number of notifications created, by severity and originating component",
		},
		[]string{"severity", "component"},
	)

	m.DismissedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dismissed_total",
			Help: "Total number of notifications removed, by severity and reason",
		},
		[]string{"severity", "reason"}, // reason: user, expired
	)

	m.Active = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_active",
			Help: "Current number of active notifications in the registry",
		},
	)

	m.NotifyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notification_notify_duration_seconds",
			Help:    "Time taken to create, store, schedule, and broadcast a notification",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	m.Subscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_subscribers",
			Help: "Current number of attached event feed subscribers",
		},
	)

	m.DroppedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dropped_events_total",
			Help: "Total number of feed events dropped because a subscriber buffer was full, by action",
		},
		[]string{"action"}, // action: created, dismissed
	)

	m.RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_rate_limited_total",
			Help: "Total number of notifications rejected by the rate limiter",
		},
	)

	return nil
}

// getCollectors returns all collectors in order for Describe/Collect operations
func (m *NotificationMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CreatedTotal,
		m.DismissedTotal,
		m.Active,
		m.NotifyDuration,
		m.Subscribers,
		m.DroppedEvents,
		m.RateLimitedTotal,
	}
}

// Describe implements the Collector interface
func (m *NotificationMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *NotificationMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordCreated records a created notification.
func (m *NotificationMetrics) RecordCreated(severity, component string) {
	if component == "" {
		component = "none"
	}
	m.CreatedTotal.WithLabelValues(severity, component).Inc()
}

// RecordDismissed records a removed notification. Reason is "user" for
// explicit dismissals and "expired" for timer fires.
func (m *NotificationMetrics) RecordDismissed(severity, reason string) {
	m.DismissedTotal.WithLabelValues(severity, reason).Inc()
}

// SetActive updates the registry length gauge.
func (m *NotificationMetrics) SetActive(n int) {
	m.Active.Set(float64(n))
}

// ObserveNotifyDuration records the duration of one notify call in seconds.
func (m *NotificationMetrics) ObserveNotifyDuration(seconds float64) {
	m.NotifyDuration.Observe(seconds)
}

// SetSubscribers updates the subscriber count gauge.
func (m *NotificationMetrics) SetSubscribers(n int) {
	m.Subscribers.Set(float64(n))
}

// RecordDropped records events dropped during one broadcast.
func (m *NotificationMetrics) RecordDropped(action string, count int) {
	m.DroppedEvents.WithLabelValues(action).Add(float64(count))
}

// RecordRateLimited records a notification rejected by the rate limiter.
func (m *NotificationMetrics) RecordRateLimited() {
	m.RateLimitedTotal.Inc()
}
