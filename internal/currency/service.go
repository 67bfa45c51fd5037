// Package currency implements the exchange-rate boundary of the Canopy
// dashboard: a remote rate source behind a cache, with a degradation ladder
// that keeps conversions total. A conversion that cannot be served returns
// the original amount; the failure is logged and counted, never raised.
package currency

import (
	"context"
	"io"
	"time"

	"log/slog"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/raolivei/canopy-go/internal/conf"
	"github.com/raolivei/canopy-go/internal/errors"
	"github.com/raolivei/canopy-go/internal/httpclient"
	"github.com/raolivei/canopy-go/internal/logging"
	"github.com/raolivei/canopy-go/internal/observability/metrics"
)

// Package logger for the currency service, file-backed with a runtime
// adjustable level.
var (
	currencyLogger      *slog.Logger
	currencyLevelVar    = new(slog.LevelVar)
	closeCurrencyLogger func() error
)

func init() {
	var err error
	currencyLogger, closeCurrencyLogger, err = logging.NewFileLogger(
		"logs/currency.log", "currency", currencyLevelVar)
	if err != nil {
		currencyLogger = slog.New(slog.NewJSONHandler(io.Discard, nil)).
			With("service", "currency")
		closeCurrencyLogger = func() error { return nil }
		logging.Error("failed to initialize currency file logger", "error", err)
	}
}

// Rate sources, used as log fields and metric labels.
const (
	sourceCache  = "cache"
	sourceRemote = "remote"
	sourceStale  = "stale_cache"
	sourceStatic = "static_table"
)

const (
	// DefaultCacheTTL is how long fetched rates stay fresh.
	DefaultCacheTTL = 4 * time.Hour

	cacheCleanupInterval = 10 * time.Minute
	cacheKeyPrefix       = "rates:"
	staleKeyPrefix       = "rates:stale:"
)

// Service answers rate and conversion queries. Fresh rates come from the
// provider and stay cached for the configured TTL; on fetch failure the
// service serves stale cache entries, and the rates endpoint degrades
// further to the compiled-in static table. Conversions skip the static
// table: rather than apply a coarse rate they return the original amount.
type Service struct {
	provider RateProvider
	cache    *cache.Cache
	ttl      time.Duration
	base     string
	debug    bool
	metrics  *metrics.CurrencyMetrics
	logger   *slog.Logger
}

// NewService creates a currency service from settings. A nil provider gets
// the frankfurter default over a shared HTTP client.
func NewService(settings *conf.CurrencySettings, provider RateProvider) *Service {
	ttl := DefaultCacheTTL
	base := DefaultBaseCurrency
	debug := false

	if settings != nil {
		if settings.CacheTTL > 0 {
			ttl = settings.CacheTTL
		}
		if settings.BaseCurrency != "" {
			base = NormalizeCode(settings.BaseCurrency)
		}
		debug = settings.Debug
	}
	if debug {
		currencyLevelVar.Set(slog.LevelDebug)
	}

	if provider == nil {
		apiURL := DefaultAPIURL
		timeout := httpclient.DefaultTimeout
		if settings != nil {
			if settings.APIURL != "" {
				apiURL = settings.APIURL
			}
			if settings.RequestTimeout > 0 {
				timeout = settings.RequestTimeout
			}
		}
		clientCfg := httpclient.DefaultConfig()
		clientCfg.DefaultTimeout = timeout
		provider = NewFrankfurterProvider(apiURL, httpclient.New(&clientCfg))
	}

	s := &Service{
		provider: provider,
		cache:    cache.New(ttl, cacheCleanupInterval),
		ttl:      ttl,
		base:     base,
		debug:    debug,
		logger:   currencyLogger,
	}

	s.logger.Info("currency service initialized",
		"base_currency", base,
		"cache_ttl", ttl,
		"supported", len(supportedCurrencies))

	return s
}

// SetMetrics wires Prometheus metrics into the service. Nil is allowed and
// leaves recording disabled.
func (s *Service) SetMetrics(m *metrics.CurrencyMetrics) {
	s.metrics = m
}

// BaseCurrency returns the configured dashboard display currency.
func (s *Service) BaseCurrency() string {
	return s.base
}

// Convert converts amount between two currencies. It reports the converted
// amount rounded to two decimal places, the rate applied, and whether a real
// conversion happened.
//
// Same-currency conversions short-circuit to (amount, 1, true) with no
// network call. When no fresh or stale rate can be had, Convert degrades
// silently: it logs, counts the fallback, and returns (amount, 0, false) so
// the dashboard shows the unconverted figure instead of an error.
func (s *Service) Convert(ctx context.Context, amount float64, from, to string) (converted, rate float64, ok bool) {
	from = NormalizeCode(from)
	to = NormalizeCode(to)

	if from == to {
		s.recordConversion(metrics.ConversionOutcomeSameCurrency)
		return amount, 1.0, true
	}

	table, err := s.ratesForConversion(ctx, from)
	if err != nil {
		s.recordConversion(metrics.ConversionOutcomeFallback)
		s.logger.Warn("conversion degraded to original amount",
			"from", from,
			"to", to,
			"error", err)
		return amount, 0, false
	}

	r, found := table.Rates[to]
	if !found || r <= 0 {
		s.recordConversion(metrics.ConversionOutcomeFallback)
		s.logger.Warn("no rate for target currency, returning original amount",
			"from", from,
			"to", to,
			"rate_date", table.Date)
		return amount, 0, false
	}

	result := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(r)).
		Round(2).
		InexactFloat64()

	s.recordConversion(metrics.ConversionOutcomeConverted)
	if s.debug {
		s.logger.Debug("converted amount",
			"from", from,
			"to", to,
			"rate", r,
			"rate_date", table.Date)
	}
	return result, r, true
}

// GetRates returns the rate table for a base currency. The operation is
// total for supported bases: remote failure falls back to a stale cache
// entry and finally to the static table, so the dashboard always has
// something to show. Unsupported bases are a validation error.
func (s *Service) GetRates(ctx context.Context, base string) (*RateTable, error) {
	base = NormalizeCode(base)
	if base == "" {
		base = s.base
	}
	if !IsSupported(base) {
		return nil, errors.Newf("unsupported base currency: %s", base).
			Component("currency").
			Category(errors.CategoryValidation).
			Context("base", base).
			Build()
	}

	table, err := s.ratesForConversion(ctx, base)
	if err == nil {
		return table, nil
	}

	s.recordFallback(sourceStatic)
	s.logger.Warn("serving static fallback rates", "base", base, "error", err)

	return &RateTable{
		Base:    base,
		Rates:   StaticRates(base),
		Date:    time.Now().Format("2006-01-02"),
		Fetched: time.Now(),
	}, nil
}

// ratesForConversion runs the fresh-cache, remote, stale-cache ladder and
// errors when all three miss. The static table is deliberately excluded.
func (s *Service) ratesForConversion(ctx context.Context, base string) (*RateTable, error) {
	if table, found := s.cachedTable(cacheKeyPrefix + base); found {
		s.recordCacheLookup("hit")
		if s.debug {
			s.logger.Debug("rates served from cache", "base", base, "source", sourceCache)
		}
		return table, nil
	}
	s.recordCacheLookup("miss")

	table, err := s.fetch(ctx, base)
	if err == nil {
		s.storeTable(table)
		return table, nil
	}

	if table, found := s.cachedTable(staleKeyPrefix + base); found {
		s.recordCacheLookup("stale_hit")
		s.recordFallback(sourceStale)
		s.logger.Warn("serving stale cached rates",
			"base", base,
			"age", time.Since(table.Fetched).Round(time.Second),
			"fetch_error", err)
		return table, nil
	}

	return nil, err
}

// fetch asks the provider for fresh rates, timing the call for metrics.
func (s *Service) fetch(ctx context.Context, base string) (*RateTable, error) {
	start := time.Now()
	table, err := s.provider.FetchLatest(ctx, base)
	elapsed := time.Since(start)

	if err != nil {
		s.recordRateFetch(base, "error", elapsed)
		return nil, err
	}

	s.recordRateFetch(base, "success", elapsed)
	s.logger.Info("fetched latest rates",
		"base", base,
		"currencies", len(table.Rates),
		"rate_date", table.Date,
		"elapsed", elapsed.Round(time.Millisecond))
	return table, nil
}

// cachedTable returns a copy of a cached table, if present.
func (s *Service) cachedTable(key string) (*RateTable, bool) {
	entry, found := s.cache.Get(key)
	if !found {
		return nil, false
	}
	table, valid := entry.(*RateTable)
	if !valid {
		return nil, false
	}
	return table.Clone(), true
}

// storeTable caches a fetched table twice: a fresh entry that expires after
// the TTL and a stale backup that never expires, serving fetch failures.
func (s *Service) storeTable(table *RateTable) {
	s.cache.Set(cacheKeyPrefix+table.Base, table.Clone(), s.ttl)
	s.cache.Set(staleKeyPrefix+table.Base, table.Clone(), cache.NoExpiration)
}

func (s *Service) recordConversion(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordConversion(outcome)
	}
}

func (s *Service) recordRateFetch(base, status string, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordRateFetch(base, status, elapsed.Seconds())
	}
}

func (s *Service) recordCacheLookup(result string) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(result)
	}
}

func (s *Service) recordFallback(source string) {
	if s.metrics != nil {
		s.metrics.RecordFallback(source)
	}
}

// CloseLogger closes the currency log file. Called on shutdown.
func CloseLogger() error {
	if closeCurrencyLogger != nil {
		return closeCurrencyLogger()
	}
	return nil
}
