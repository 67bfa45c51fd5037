// Package format provides pure formatting helpers for dashboard values:
// currency symbols and amounts, compact magnitudes, and grouped integers.
// All functions are stateless and safe for concurrent use.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Symbol returns the display symbol for an ISO 4217 currency code, "USD"
// giving "$". Unknown codes fall back to the code itself.
func Symbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	cur := money.GetCurrency(code)
	if cur == nil || cur.Grapheme == "" {
		return code
	}
	return cur.Grapheme
}

// Amount renders a monetary amount with its currency's symbol, grouping, and
// minor-unit precision, "$1,234.56" for USD. Codes outside the go-money
// table render with the code as the symbol.
func Amount(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return money.NewFromFloat(amount, code).Display()
}

// Compact renders a number at reduced precision with a magnitude suffix:
// 950 stays "950", 1800 becomes "1.8K", 2400000 becomes "2.4M", and
// 1100000000 becomes "1.1B". The sign is preserved.
func Compact(n float64) string {
	abs := math.Abs(n)
	switch {
	case abs >= 1e9:
		return compactValue(n/1e9, "B")
	case abs >= 1e6:
		return compactValue(n/1e6, "M")
	case abs >= 1e3:
		return compactValue(n/1e3, "K")
	default:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
}

// compactValue formats to one decimal place and drops a trailing ".0" so
// whole magnitudes read "2M" rather than "2.0M".
func compactValue(v float64, suffix string) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s + suffix
}

var groupedPrinter = message.NewPrinter(language.English)

// Grouped renders an integer with thousands separators, 1234567 giving
// "1,234,567".
func Grouped(n int64) string {
	return groupedPrinter.Sprintf("%d", n)
}
