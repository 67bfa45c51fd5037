package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raolivei/canopy-go/internal/errors"
	"github.com/raolivei/canopy-go/internal/httpclient"
)

const (
	// DefaultAPIURL is the frankfurter.dev endpoint serving ECB reference rates.
	DefaultAPIURL = "https://api.frankfurter.dev/v1"

	frankfurterProviderName = "frankfurter"
	maxBodyPreviewSize      = 200 // maximum characters of an error body to keep in error context
)

// RateTable is one base currency's exchange-rate snapshot. Rates always
// include the base itself at 1.0.
type RateTable struct {
	Base    string             `json:"base"`
	Rates   map[string]float64 `json:"rates"`
	Date    string             `json:"date"` // as reported by the source, YYYY-MM-DD
	Fetched time.Time          `json:"-"`
}

// Clone returns a deep copy of the table so cached entries never leak
// mutable state to callers.
func (t *RateTable) Clone() *RateTable {
	if t == nil {
		return nil
	}
	rates := make(map[string]float64, len(t.Rates))
	for code, rate := range t.Rates {
		rates[code] = rate
	}
	return &RateTable{Base: t.Base, Rates: rates, Date: t.Date, Fetched: t.Fetched}
}

// RateProvider fetches the latest exchange rates for a base currency.
type RateProvider interface {
	// FetchLatest returns the current rate table for base against every
	// other supported currency.
	FetchLatest(ctx context.Context, base string) (*RateTable, error)
}

// FrankfurterProvider fetches rates from the frankfurter.dev API, a free
// source for the exchange reference rates published by the European Central
// Bank.
type FrankfurterProvider struct {
	baseURL string
	client  *httpclient.Client
}

// NewFrankfurterProvider creates a provider against the given endpoint base
// URL, DefaultAPIURL when empty. The HTTP client is shared, not owned.
func NewFrankfurterProvider(baseURL string, client *httpclient.Client) *FrankfurterProvider {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &FrankfurterProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// frankfurterResponse mirrors the fields read from the latest-rates payload.
type frankfurterResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// FetchLatest requests rates for base against all other supported
// currencies. The source omits the base itself, so it is inserted at 1.0
// before the table is returned.
func (p *FrankfurterProvider) FetchLatest(ctx context.Context, base string) (*RateTable, error) {
	base = NormalizeCode(base)
	if !IsSupported(base) {
		return nil, errors.Newf("unsupported base currency: %s", base).
			Component("currency").
			Category(errors.CategoryValidation).
			Context("base", base).
			Build()
	}

	symbols := make([]string, 0, len(supportedCurrencies)-1)
	for _, c := range supportedCurrencies {
		if c.Code != base {
			symbols = append(symbols, c.Code)
		}
	}

	url := fmt.Sprintf("%s/latest?base=%s&symbols=%s", p.baseURL, base, strings.Join(symbols, ","))

	resp, err := p.client.Get(ctx, url)
	if err != nil {
		return nil, errors.New(err).
			Component("currency").
			Category(errors.CategoryRateFetch).
			Context("provider", frankfurterProviderName).
			Context("base", base).
			NetworkContext(url, 0).
			Build()
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			currencyLogger.Debug("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyPreviewSize))
		return nil, errors.Newf("rate source returned status %d", resp.StatusCode).
			Component("currency").
			Category(errors.CategoryRateFetch).
			Context("provider", frankfurterProviderName).
			Context("base", base).
			Context("status_code", resp.StatusCode).
			Context("body_preview", string(preview)).
			Build()
	}

	var payload frankfurterResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.New(err).
			Component("currency").
			Category(errors.CategoryRateFetch).
			Context("provider", frankfurterProviderName).
			Context("operation", "decode_response").
			Context("base", base).
			Build()
	}

	if len(payload.Rates) == 0 {
		return nil, errors.Newf("rate source returned no rates").
			Component("currency").
			Category(errors.CategoryRateFetch).
			Context("provider", frankfurterProviderName).
			Context("base", base).
			Build()
	}

	rates := make(map[string]float64, len(payload.Rates)+1)
	for code, rate := range payload.Rates {
		rates[NormalizeCode(code)] = rate
	}
	// The source omits the base currency itself
	rates[base] = 1.0

	return &RateTable{
		Base:    base,
		Rates:   rates,
		Date:    payload.Date,
		Fetched: time.Now(),
	}, nil
}
