package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportedCurrencies(t *testing.T) {
	currencies := SupportedCurrencies()

	require.Len(t, currencies, 16)
	assert.Equal(t, "USD", currencies[0].Code, "USD leads the picker")

	for _, c := range currencies {
		assert.Len(t, c.Code, 3, "currency codes are ISO 4217")
		assert.NotEmpty(t, c.Symbol, "currency %s has no symbol", c.Code)
		assert.NotEmpty(t, c.Name, "currency %s has no name", c.Code)
	}
}

func TestSupportedCurrencies_ReturnsCopy(t *testing.T) {
	first := SupportedCurrencies()
	first[0].Symbol = "mutated"

	second := SupportedCurrencies()
	assert.Equal(t, "$", second[0].Symbol)
}

func TestSupportedCodes(t *testing.T) {
	codes := SupportedCodes()

	require.Len(t, codes, 16)
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
	assert.True(t, seen["USD"])
	assert.True(t, seen["EUR"])
	assert.True(t, seen["BRL"])
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"USD", true},
		{"EUR", true},
		{"JPY", true},
		{"XXX", false},
		{"usd", false}, // IsSupported expects normalized input
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSupported(tt.code))
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lower_case", "usd", "USD"},
		{"mixed_case", "eUr", "EUR"},
		{"whitespace", "  gbp  ", "GBP"},
		{"already_normalized", "JPY", "JPY"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCode(tt.input))
		})
	}
}

func TestStaticRates(t *testing.T) {
	rates := StaticRates("USD")

	assert.InDelta(t, 1.0, rates["USD"], 0.0001)
	assert.InDelta(t, 1.36, rates["CAD"], 0.0001)
	assert.InDelta(t, 0.92, rates["EUR"], 0.0001)
}

func TestStaticRates_ReturnsCopy(t *testing.T) {
	first := StaticRates("USD")
	first["CAD"] = 99.0

	second := StaticRates("USD")
	assert.InDelta(t, 1.36, second["CAD"], 0.0001)
}

func TestStaticRates_UnknownBase(t *testing.T) {
	rates := StaticRates("SGD")

	assert.InDelta(t, 1.0, rates["SGD"], 0.0001, "unknown bases get an identity entry")
	assert.InDelta(t, 1.0, rates["USD"], 0.0001)
}
