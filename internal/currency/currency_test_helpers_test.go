package currency

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/raolivei/canopy-go/internal/conf"
	"github.com/raolivei/canopy-go/internal/httpclient"
)

// newMockedClient creates an HTTP client routed through httpmock's transport
// and registers responder cleanup. Responders registered via
// httpmock.RegisterResponder are honored and calls are counted.
func newMockedClient(t *testing.T) *httpclient.Client {
	t.Helper()
	t.Cleanup(httpmock.Reset)
	cfg := httpclient.DefaultConfig()
	cfg.Transport = httpmock.DefaultTransport
	return httpclient.New(&cfg)
}

// createTestSettings creates currency settings with test-friendly defaults.
func createTestSettings(t *testing.T, opts ...func(*conf.CurrencySettings)) *conf.CurrencySettings {
	t.Helper()

	settings := &conf.CurrencySettings{
		BaseCurrency:   "USD",
		APIURL:         DefaultAPIURL,
		CacheTTL:       time.Hour,
		RequestTimeout: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(settings)
	}

	return settings
}

// usdTestTable returns a rate table with values chosen so cached, stale, and
// static sources are distinguishable in assertions.
func usdTestTable() *RateTable {
	return &RateTable{
		Base: "USD",
		Rates: map[string]float64{
			"USD": 1.0,
			"EUR": 0.5,
			"GBP": 0.79,
			"CAD": 1.36,
			"JPY": 149.5,
		},
		Date:    "2025-08-22",
		Fetched: time.Now(),
	}
}

// fakeProvider is a RateProvider returning canned tables, for exercising the
// cache and degradation ladder without HTTP.
type fakeProvider struct {
	mu       sync.Mutex
	table    *RateTable
	err      error
	calls    int
	lastBase string
}

func (f *fakeProvider) FetchLatest(_ context.Context, base string) (*RateTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastBase = base
	if f.err != nil {
		return nil, f.err
	}
	if f.table != nil {
		return f.table.Clone(), nil
	}
	table := usdTestTable()
	table.Base = base
	return table, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeProvider) fetchedBase() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBase
}

func (f *fakeProvider) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// frankfurterSuccessResponse returns a valid latest-rates payload for USD.
func frankfurterSuccessResponse() string {
	return `{
  "amount": 1.0,
  "base": "USD",
  "date": "2025-08-22",
  "rates": {
    "AUD": 1.5501,
    "BRL": 5.4302,
    "CAD": 1.3829,
    "CHF": 0.8051,
    "CNY": 7.1609,
    "EUR": 0.9234,
    "GBP": 0.7921,
    "HKD": 7.8117,
    "INR": 87.31,
    "JPY": 147.35,
    "MXN": 18.6542,
    "NOK": 10.1208,
    "NZD": 1.6734,
    "SEK": 9.5527,
    "SGD": 1.2851
  }
}`
}

// registerFrankfurterResponder registers a mock responder for the rate API.
func registerFrankfurterResponder(t *testing.T, statusCode int, body string) {
	t.Helper()

	httpmock.RegisterResponder("GET", `=~^https://api\.frankfurter\.dev/v1/latest`,
		httpmock.NewStringResponder(statusCode, body))
}
