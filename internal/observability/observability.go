// Package observability provides metrics and monitoring capabilities for the Canopy service.
package observability

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raolivei/canopy-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application. Everything is
// registered on a private registry so the /metrics endpoint never exposes
// collectors from stray library defaults.
type Metrics struct {
	registry     *prometheus.Registry
	Notification *metrics.NotificationMetrics
	Currency     *metrics.CurrencyMetrics
	HTTP         *metrics.HTTPMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors.
// It returns an error if any metric collector fails to initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	notificationMetrics, err := metrics.NewNotificationMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification metrics: %w", err)
	}

	currencyMetrics, err := metrics.NewCurrencyMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create currency metrics: %w", err)
	}

	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	return &Metrics{
		registry:     registry,
		Notification: notificationMetrics,
		Currency:     currencyMetrics,
		HTTP:         httpMetrics,
	}, nil
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// RegisterHandlers registers the metrics endpoint with the provided http.ServeMux.
func (m *Metrics) RegisterHandlers(mux *http.ServeMux) {
	mux.Handle("/metrics", m.Handler())
}
