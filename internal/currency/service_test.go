package currency

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raolivei/canopy-go/internal/conf"
	"github.com/raolivei/canopy-go/internal/observability/metrics"
)

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(nil, &fakeProvider{})

	require.NotNil(t, svc)
	assert.Equal(t, DefaultBaseCurrency, svc.BaseCurrency())
	assert.Equal(t, DefaultCacheTTL, svc.ttl)
}

func TestNewService_SettingsApplied(t *testing.T) {
	settings := createTestSettings(t, func(s *conf.CurrencySettings) {
		s.BaseCurrency = " eur "
		s.CacheTTL = 30 * time.Minute
	})

	svc := NewService(settings, &fakeProvider{})

	assert.Equal(t, "EUR", svc.BaseCurrency(), "base currency should be normalized")
	assert.Equal(t, 30*time.Minute, svc.ttl)
}

func TestService_Convert_SameCurrency(t *testing.T) {
	fake := &fakeProvider{}
	svc := NewService(createTestSettings(t), fake)

	got, rate, ok := svc.Convert(t.Context(), 100, "USD", "USD")

	require.True(t, ok)
	assert.InDelta(t, 100.0, got, 0.0001)
	assert.InDelta(t, 1.0, rate, 0.0001)
	assert.Equal(t, 0, fake.callCount(), "same-currency conversion must not fetch rates")
}

func TestService_Convert_NormalizesCodes(t *testing.T) {
	fake := &fakeProvider{}
	svc := NewService(createTestSettings(t), fake)

	got, rate, ok := svc.Convert(t.Context(), 42.5, " usd ", "Usd")

	require.True(t, ok)
	assert.InDelta(t, 42.5, got, 0.0001)
	assert.InDelta(t, 1.0, rate, 0.0001)
	assert.Equal(t, 0, fake.callCount())
}

func TestService_Convert_Success(t *testing.T) {
	fake := &fakeProvider{table: usdTestTable()}
	svc := NewService(createTestSettings(t), fake)

	got, rate, ok := svc.Convert(t.Context(), 100, "USD", "EUR")

	require.True(t, ok)
	assert.InDelta(t, 50.0, got, 0.0001)
	assert.InDelta(t, 0.5, rate, 0.0001)
	assert.Equal(t, 1, fake.callCount())
}

func TestService_Convert_RoundsToTwoDecimals(t *testing.T) {
	fake := &fakeProvider{table: usdTestTable()}
	svc := NewService(createTestSettings(t), fake)

	got, rate, ok := svc.Convert(t.Context(), 19.99, "USD", "CAD")

	require.True(t, ok)
	assert.InDelta(t, 1.36, rate, 0.0001)
	assert.InDelta(t, 27.19, got, 0.0001, "19.99 * 1.36 = 27.1864 rounds to 27.19")
}

func TestService_Convert_CachesRates(t *testing.T) {
	fake := &fakeProvider{table: usdTestTable()}
	svc := NewService(createTestSettings(t), fake)

	_, _, ok := svc.Convert(t.Context(), 100, "USD", "EUR")
	require.True(t, ok)
	_, _, ok = svc.Convert(t.Context(), 25, "USD", "GBP")
	require.True(t, ok)

	assert.Equal(t, 1, fake.callCount(), "second conversion for the same base should be served from cache")
}

func TestService_Convert_FetchFailureReturnsOriginalAmount(t *testing.T) {
	fake := &fakeProvider{err: fmt.Errorf("rate source down")}
	svc := NewService(createTestSettings(t), fake)

	got, rate, ok := svc.Convert(t.Context(), 50, "USD", "EUR")

	assert.False(t, ok)
	assert.InDelta(t, 50.0, got, 0.0001, "failed conversion must return the original amount")
	assert.Zero(t, rate)
	assert.Equal(t, 1, fake.callCount())
}

func TestService_Convert_MissingTargetRate(t *testing.T) {
	fake := &fakeProvider{table: usdTestTable()}
	svc := NewService(createTestSettings(t), fake)

	got, rate, ok := svc.Convert(t.Context(), 75, "USD", "SEK")

	assert.False(t, ok)
	assert.InDelta(t, 75.0, got, 0.0001)
	assert.Zero(t, rate)
}

func TestService_Convert_ZeroRateTreatedAsMissing(t *testing.T) {
	table := usdTestTable()
	table.Rates["EUR"] = 0

	fake := &fakeProvider{table: table}
	svc := NewService(createTestSettings(t), fake)

	got, _, ok := svc.Convert(t.Context(), 75, "USD", "EUR")

	assert.False(t, ok)
	assert.InDelta(t, 75.0, got, 0.0001)
}

func TestService_Convert_StaleCacheServesFetchFailures(t *testing.T) {
	fake := &fakeProvider{table: usdTestTable()}
	settings := createTestSettings(t, func(s *conf.CurrencySettings) {
		s.CacheTTL = 20 * time.Millisecond
	})
	svc := NewService(settings, fake)

	got, rate, ok := svc.Convert(t.Context(), 100, "USD", "EUR")
	require.True(t, ok)
	require.InDelta(t, 50.0, got, 0.0001)

	// Let the fresh entry expire, then break the provider
	time.Sleep(100 * time.Millisecond)
	fake.setError(fmt.Errorf("rate source down"))

	got, rate, ok = svc.Convert(t.Context(), 100, "USD", "EUR")

	require.True(t, ok, "stale cache should back a failed fetch")
	assert.InDelta(t, 50.0, got, 0.0001)
	assert.InDelta(t, 0.5, rate, 0.0001)
	assert.Equal(t, 2, fake.callCount(), "expired cache should trigger one refetch attempt")
}

func TestService_GetRates_FetchesAndCaches(t *testing.T) {
	fake := &fakeProvider{table: usdTestTable()}
	svc := NewService(createTestSettings(t), fake)

	table, err := svc.GetRates(t.Context(), "usd")
	require.NoError(t, err)
	require.NotNil(t, table)
	assert.Equal(t, "USD", table.Base)
	assert.InDelta(t, 0.5, table.Rates["EUR"], 0.0001)

	_, err = svc.GetRates(t.Context(), "USD")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.callCount())
}

func TestService_GetRates_EmptyBaseUsesConfigured(t *testing.T) {
	fake := &fakeProvider{}
	settings := createTestSettings(t, func(s *conf.CurrencySettings) {
		s.BaseCurrency = "EUR"
	})
	svc := NewService(settings, fake)

	table, err := svc.GetRates(t.Context(), "")

	require.NoError(t, err)
	assert.Equal(t, "EUR", table.Base)
	assert.Equal(t, "EUR", fake.fetchedBase())
}

func TestService_GetRates_UnsupportedBase(t *testing.T) {
	fake := &fakeProvider{}
	svc := NewService(createTestSettings(t), fake)

	table, err := svc.GetRates(t.Context(), "DOLLARS")

	require.Error(t, err)
	assert.Nil(t, table)
	assert.Contains(t, err.Error(), "unsupported base currency")
	assert.Equal(t, 0, fake.callCount())
}

func TestService_GetRates_StaticFallback(t *testing.T) {
	fake := &fakeProvider{err: fmt.Errorf("rate source down")}
	svc := NewService(createTestSettings(t), fake)

	table, err := svc.GetRates(t.Context(), "USD")

	require.NoError(t, err, "rates endpoint must stay total for supported bases")
	require.NotNil(t, table)
	assert.Equal(t, "USD", table.Base)
	assert.InDelta(t, 1.36, table.Rates["CAD"], 0.0001, "static table rate expected")
	assert.NotEmpty(t, table.Date)
}

func TestService_GetRates_PrefersStaleOverStatic(t *testing.T) {
	fake := &fakeProvider{table: usdTestTable()}
	settings := createTestSettings(t, func(s *conf.CurrencySettings) {
		s.CacheTTL = 20 * time.Millisecond
	})
	svc := NewService(settings, fake)

	_, err := svc.GetRates(t.Context(), "USD")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	fake.setError(fmt.Errorf("rate source down"))

	table, err := svc.GetRates(t.Context(), "USD")

	require.NoError(t, err)
	// 0.5 is the fake's EUR rate; the static table carries 0.92
	assert.InDelta(t, 0.5, table.Rates["EUR"], 0.0001, "stale cache should win over the static table")
}

func TestService_GetRates_ReturnsCopies(t *testing.T) {
	fake := &fakeProvider{table: usdTestTable()}
	svc := NewService(createTestSettings(t), fake)

	first, err := svc.GetRates(t.Context(), "USD")
	require.NoError(t, err)
	first.Rates["EUR"] = 99.0

	second, err := svc.GetRates(t.Context(), "USD")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, second.Rates["EUR"], 0.0001, "callers must not be able to poison the cache")
}

// The two tests below run the full stack, real provider over a mocked
// transport, pinning the externally observable conversion behavior.

func TestService_Convert_SameCurrencyMakesNoRequests(t *testing.T) {
	provider := NewFrankfurterProvider("", newMockedClient(t))
	svc := NewService(createTestSettings(t), provider)
	registerFrankfurterResponder(t, http.StatusOK, frankfurterSuccessResponse())

	got, rate, ok := svc.Convert(t.Context(), 100, "USD", "USD")

	require.True(t, ok)
	assert.InDelta(t, 100.0, got, 0.0001)
	assert.InDelta(t, 1.0, rate, 0.0001)
	assert.Equal(t, 0, httpmock.GetTotalCallCount(), "no HTTP requests expected for a same-currency conversion")
}

func TestService_Convert_RemoteFailureFallsBackToOriginalAmount(t *testing.T) {
	provider := NewFrankfurterProvider("", newMockedClient(t))
	svc := NewService(createTestSettings(t), provider)
	httpmock.RegisterResponder("GET", `=~^https://api\.frankfurter\.dev/v1/latest`,
		httpmock.NewErrorResponder(fmt.Errorf("connection refused")))

	got, rate, ok := svc.Convert(t.Context(), 50, "USD", "EUR")

	assert.False(t, ok)
	assert.InDelta(t, 50.0, got, 0.0001)
	assert.Zero(t, rate)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestService_MetricsRecorded(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := metrics.NewCurrencyMetrics(registry)
	require.NoError(t, err)

	fake := &fakeProvider{table: usdTestTable()}
	svc := NewService(createTestSettings(t), fake)
	svc.SetMetrics(m)

	_, _, ok := svc.Convert(t.Context(), 100, "USD", "USD")
	require.True(t, ok)
	_, _, ok = svc.Convert(t.Context(), 100, "USD", "EUR")
	require.True(t, ok)
	_, _, ok = svc.Convert(t.Context(), 100, "USD", "SGD")
	assert.False(t, ok, "missing target rate should degrade to the original amount")

	sameCurrency := testutil.ToFloat64(m.ConversionsTotal.WithLabelValues(metrics.ConversionOutcomeSameCurrency))
	assert.Equal(t, float64(1), sameCurrency)

	converted := testutil.ToFloat64(m.ConversionsTotal.WithLabelValues(metrics.ConversionOutcomeConverted))
	assert.Equal(t, float64(1), converted)

	fallbacks := testutil.ToFloat64(m.ConversionsTotal.WithLabelValues(metrics.ConversionOutcomeFallback))
	assert.Equal(t, float64(1), fallbacks)

	fetches := testutil.ToFloat64(m.RateFetchesTotal.WithLabelValues("USD", "success"))
	assert.Equal(t, float64(1), fetches)
}
