package currency

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrankfurterProvider_FetchLatest_Success(t *testing.T) {
	provider := NewFrankfurterProvider("", newMockedClient(t))
	registerFrankfurterResponder(t, http.StatusOK, frankfurterSuccessResponse())

	table, err := provider.FetchLatest(t.Context(), "USD")

	require.NoError(t, err)
	require.NotNil(t, table)
	assert.Equal(t, "USD", table.Base)
	assert.Equal(t, "2025-08-22", table.Date)
	assert.False(t, table.Fetched.IsZero(), "Fetched timestamp should be set")

	// The source omits the base; the provider inserts it at 1.0
	assert.InDelta(t, 1.0, table.Rates["USD"], 0.0001)
	assert.InDelta(t, 0.9234, table.Rates["EUR"], 0.0001)
	assert.InDelta(t, 0.7921, table.Rates["GBP"], 0.0001)
	assert.InDelta(t, 147.35, table.Rates["JPY"], 0.0001)
	assert.Len(t, table.Rates, len(SupportedCodes()))
}

func TestFrankfurterProvider_FetchLatest_RequestShape(t *testing.T) {
	provider := NewFrankfurterProvider("", newMockedClient(t))

	var gotBase, gotSymbols string
	httpmock.RegisterResponder("GET", `=~^https://api\.frankfurter\.dev/v1/latest`,
		func(req *http.Request) (*http.Response, error) {
			gotBase = req.URL.Query().Get("base")
			gotSymbols = req.URL.Query().Get("symbols")
			return httpmock.NewStringResponse(http.StatusOK, frankfurterSuccessResponse()), nil
		})

	_, err := provider.FetchLatest(t.Context(), "eur")

	require.NoError(t, err)
	assert.Equal(t, "EUR", gotBase, "base should be normalized before the request")

	symbols := strings.Split(gotSymbols, ",")
	assert.Len(t, symbols, len(SupportedCodes())-1, "symbols should cover every currency but the base")
	assert.NotContains(t, symbols, "EUR", "base must not be requested as a symbol")
	assert.Contains(t, symbols, "USD")
}

func TestFrankfurterProvider_FetchLatest_UnsupportedBase(t *testing.T) {
	provider := NewFrankfurterProvider("", newMockedClient(t))
	registerFrankfurterResponder(t, http.StatusOK, frankfurterSuccessResponse())

	table, err := provider.FetchLatest(t.Context(), "DOLLARS")

	require.Error(t, err)
	assert.Nil(t, table)
	assert.Contains(t, err.Error(), "unsupported base currency")
	assert.Equal(t, 0, httpmock.GetTotalCallCount(), "validation failures must not hit the network")
}

func TestFrankfurterProvider_FetchLatest_HTTPError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"bad_request", http.StatusBadRequest},
		{"not_found", http.StatusNotFound},
		{"too_many_requests", http.StatusTooManyRequests},
		{"internal_server_error", http.StatusInternalServerError},
		{"service_unavailable", http.StatusServiceUnavailable},
	}

	provider := NewFrankfurterProvider("", newMockedClient(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			registerFrankfurterResponder(t, tt.statusCode, `{"message": "test error"}`)

			table, err := provider.FetchLatest(t.Context(), "USD")

			require.Error(t, err)
			assert.Nil(t, table)
			assert.Contains(t, err.Error(), "returned status")
		})
	}
}

func TestFrankfurterProvider_FetchLatest_NetworkError(t *testing.T) {
	provider := NewFrankfurterProvider("", newMockedClient(t))
	httpmock.RegisterResponder("GET", `=~^https://api\.frankfurter\.dev/v1/latest`,
		httpmock.NewErrorResponder(fmt.Errorf("connection refused")))

	table, err := provider.FetchLatest(t.Context(), "USD")

	require.Error(t, err)
	assert.Nil(t, table)
}

func TestFrankfurterProvider_FetchLatest_InvalidJSON(t *testing.T) {
	provider := NewFrankfurterProvider("", newMockedClient(t))
	registerFrankfurterResponder(t, http.StatusOK, `{invalid json`)

	table, err := provider.FetchLatest(t.Context(), "USD")

	require.Error(t, err)
	assert.Nil(t, table)
}

func TestFrankfurterProvider_FetchLatest_EmptyRates(t *testing.T) {
	provider := NewFrankfurterProvider("", newMockedClient(t))
	registerFrankfurterResponder(t, http.StatusOK, `{"base": "USD", "date": "2025-08-22", "rates": {}}`)

	table, err := provider.FetchLatest(t.Context(), "USD")

	require.Error(t, err)
	assert.Nil(t, table)
	assert.Contains(t, err.Error(), "no rates")
}

func TestNewFrankfurterProvider(t *testing.T) {
	t.Run("empty URL uses default", func(t *testing.T) {
		provider := NewFrankfurterProvider("", nil)
		assert.Equal(t, DefaultAPIURL, provider.baseURL)
	})

	t.Run("trailing slash trimmed", func(t *testing.T) {
		provider := NewFrankfurterProvider("https://rates.example.com/v1/", nil)
		assert.Equal(t, "https://rates.example.com/v1", provider.baseURL)
	})
}

func TestRateTable_Clone(t *testing.T) {
	original := usdTestTable()

	clone := original.Clone()
	require.NotNil(t, clone)
	clone.Rates["EUR"] = 99.0

	assert.InDelta(t, 0.5, original.Rates["EUR"], 0.0001, "clone mutation must not leak into the original")
	assert.Equal(t, original.Base, clone.Base)
	assert.Equal(t, original.Date, clone.Date)

	var nilTable *RateTable
	assert.Nil(t, nilTable.Clone())
}
