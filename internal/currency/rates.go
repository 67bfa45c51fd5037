package currency

import (
	"strings"

	"github.com/raolivei/canopy-go/internal/format"
)

// DefaultBaseCurrency is the dashboard's default display currency.
const DefaultBaseCurrency = "USD"

// Currency describes one supported currency for the dashboard picker.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// currencyNames holds display names for the supported set; symbols come from
// the go-money currency table via format.Symbol so both stay consistent with
// the formatting utilities.
var currencyNames = []struct {
	code string
	name string
}{
	{"USD", "US Dollar"},
	{"CAD", "Canadian Dollar"},
	{"BRL", "Brazilian Real"},
	{"EUR", "Euro"},
	{"GBP", "British Pound"},
	{"JPY", "Japanese Yen"},
	{"AUD", "Australian Dollar"},
	{"CHF", "Swiss Franc"},
	{"CNY", "Chinese Yuan"},
	{"HKD", "Hong Kong Dollar"},
	{"INR", "Indian Rupee"},
	{"MXN", "Mexican Peso"},
	{"NOK", "Norwegian Krone"},
	{"NZD", "New Zealand Dollar"},
	{"SEK", "Swedish Krona"},
	{"SGD", "Singapore Dollar"},
}

var (
	supportedCurrencies []Currency
	supportedSet        map[string]bool
)

func init() {
	supportedCurrencies = make([]Currency, 0, len(currencyNames))
	supportedSet = make(map[string]bool, len(currencyNames))
	for _, entry := range currencyNames {
		supportedCurrencies = append(supportedCurrencies, Currency{
			Code:   entry.code,
			Symbol: format.Symbol(entry.code),
			Name:   entry.name,
		})
		supportedSet[entry.code] = true
	}
}

// SupportedCurrencies returns descriptors for every currency the dashboard
// offers, in display order. The slice is a copy.
func SupportedCurrencies() []Currency {
	out := make([]Currency, len(supportedCurrencies))
	copy(out, supportedCurrencies)
	return out
}

// SupportedCodes returns the supported currency codes in display order.
func SupportedCodes() []string {
	codes := make([]string, len(supportedCurrencies))
	for i, c := range supportedCurrencies {
		codes[i] = c.Code
	}
	return codes
}

// IsSupported reports whether code names a supported currency. The code must
// already be normalized.
func IsSupported(code string) bool {
	return supportedSet[code]
}

// NormalizeCode upper-cases a currency code and strips surrounding whitespace.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// staticRates is the compiled-in last-resort rate table, served by the rates
// endpoint when the remote source is unreachable and nothing is cached. The
// values are coarse by nature; they keep the dashboard functional, not
// accurate. Conversions never use this table.
var staticRates = map[string]map[string]float64{
	"USD": {"USD": 1.0, "CAD": 1.36, "BRL": 5.05, "EUR": 0.92, "GBP": 0.79, "JPY": 149.5},
	"CAD": {"USD": 0.74, "CAD": 1.0, "BRL": 3.72, "EUR": 0.68, "GBP": 0.58, "JPY": 110.0},
	"BRL": {"USD": 0.20, "CAD": 0.27, "BRL": 1.0, "EUR": 0.18, "GBP": 0.16, "JPY": 29.6},
	"EUR": {"USD": 1.09, "CAD": 1.48, "BRL": 5.50, "EUR": 1.0, "GBP": 0.86, "JPY": 163.0},
	"GBP": {"USD": 1.27, "CAD": 1.72, "BRL": 6.40, "EUR": 1.16, "GBP": 1.0, "JPY": 189.0},
}

// StaticRates returns a copy of the fallback table for base. Bases outside
// the static set get a minimal identity table.
func StaticRates(base string) map[string]float64 {
	if rates, ok := staticRates[base]; ok {
		out := make(map[string]float64, len(rates))
		for code, rate := range rates {
			out[code] = rate
		}
		return out
	}
	return map[string]float64{"USD": 1.0, base: 1.0}
}
