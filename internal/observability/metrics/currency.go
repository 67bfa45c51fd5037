package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// CurrencyMetrics contains all Prometheus metrics for the exchange-rate
// boundary: conversions, remote rate fetches, cache behavior, and fallbacks.
type CurrencyMetrics struct {
	ConversionsTotal  *prometheus.CounterVec   // Conversions by outcome
	RateFetchesTotal  *prometheus.CounterVec   // Remote fetches by base currency and status
	RateFetchDuration *prometheus.HistogramVec // Remote fetch latency by base currency
	CacheHitsTotal    *prometheus.CounterVec   // Rate cache lookups by result
	FallbacksTotal    *prometheus.CounterVec   // Degraded rate sources used, by source

	registry *prometheus.Registry
}

// Conversion outcome label values.
const (
	ConversionOutcomeConverted    = "converted"     // remote or cached rate applied
	ConversionOutcomeSameCurrency = "same_currency" // short-circuit, no rate needed
	ConversionOutcomeFallback     = "fallback"      // original amount returned
)

// NewCurrencyMetrics creates a new instance of CurrencyMetrics.
// It requires a Prometheus registry to register the metrics.
// It returns an error if metric registration fails.
func NewCurrencyMetrics(registry *prometheus.Registry) (*CurrencyMetrics, error) {
	m := &CurrencyMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize currency metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register currency metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for CurrencyMetrics.
func (m *CurrencyMetrics) initMetrics() error {
	m.ConversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "currency_conversions_total",
			Help: "Total number of currency conversions, by outcome",
		},
		[]string{"outcome"}, // outcome: converted, same_currency, fallback
	)

	m.RateFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "currency_rate_fetches_total",
			Help: "Total number of remote exchange-rate fetches, by base currency and status",
		},
		[]string{"base", "status"}, // status: success, error
	)

	m.RateFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "currency_rate_fetch_duration_seconds",
			Help:    "Time taken to fetch exchange rates from the remote source",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"base"},
	)

	m.CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "currency_rate_cache_lookups_total",
			Help: "Total number of rate cache lookups, by result",
		},
		[]string{"result"}, // result: hit, miss, stale_hit
	)

	m.FallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "currency_rate_fallbacks_total",
			Help: "Total number of times a degraded rate source was used, by source",
		},
		[]string{"source"}, // source: stale_cache, static_table
	)

	return nil
}

// getCollectors returns all collectors in order for Describe/Collect operations
func (m *CurrencyMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ConversionsTotal,
		m.RateFetchesTotal,
		m.RateFetchDuration,
		m.CacheHitsTotal,
		m.FallbacksTotal,
	}
}

// Describe implements the Collector interface
func (m *CurrencyMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *CurrencyMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordConversion records a conversion by outcome.
func (m *CurrencyMetrics) RecordConversion(outcome string) {
	m.ConversionsTotal.WithLabelValues(outcome).Inc()
}

// RecordRateFetch records one remote fetch attempt.
func (m *CurrencyMetrics) RecordRateFetch(base, status string, durationSeconds float64) {
	m.RateFetchesTotal.WithLabelValues(base, status).Inc()
	m.RateFetchDuration.WithLabelValues(base).Observe(durationSeconds)
}

// RecordCacheLookup records a rate cache lookup result: hit, miss, or stale_hit.
func (m *CurrencyMetrics) RecordCacheLookup(result string) {
	m.CacheHitsTotal.WithLabelValues(result).Inc()
}

// RecordFallback records use of a degraded rate source.
func (m *CurrencyMetrics) RecordFallback(source string) {
	m.FallbacksTotal.WithLabelValues(source).Inc()
}
