// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	localeMu sync.RWMutex
	locale   = language.AmericanEnglish
)

// SetLocale selects the BCP 47 locale used for digit grouping.
// Unparseable tags leave the current locale in place.
func SetLocale(tag string) error {
	t, err := language.Parse(tag)
	if err != nil {
		return fmt.Errorf("parsing locale %q: %w", tag, err)
	}
	localeMu.Lock()
	locale = t
	localeMu.Unlock()
	return nil
}

func printer() *message.Printer {
	localeMu.RLock()
	defer localeMu.RUnlock()
	return message.NewPrinter(locale)
}

// FormatMoney formats amount in the given ISO currency with no fractional
// digits, e.g. 139700.4 USD -> "$139,700", 1234.5 CHF -> "CHF 1,235".
func FormatMoney(amount float64, code string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "—"
	}

	p := printer()
	sym := strings.ToUpper(code)
	if unit, err := currency.ParseISO(code); err == nil {
		sym = p.Sprint(currency.Symbol(unit))
	}
	if r, _ := utf8.DecodeLastRuneInString(sym); unicode.IsLetter(r) {
		sym += " "
	}

	v := math.Round(amount)
	sign := ""
	if v < 0 {
		sign = "-"
	}
	v = math.Abs(v)
	return sign + sym + p.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}

// FormatCompactMoney abbreviates large amounts for narrow columns,
// e.g. 1534000 USD -> "$1.5M".
func FormatCompactMoney(amount float64, code string) string {
	abs := math.Abs(amount)
	var suffix string
	var scaled float64
	switch {
	case abs >= 1e12:
		scaled, suffix = amount/1e12, "T"
	case abs >= 1e9:
		scaled, suffix = amount/1e9, "B"
	case abs >= 1e6:
		scaled, suffix = amount/1e6, "M"
	default:
		return FormatMoney(amount, code)
	}
	full := FormatMoney(math.Copysign(1, scaled), code)
	prefix := strings.TrimSuffix(full, "1")
	return prefix + strconv.FormatFloat(math.Abs(scaled), 'f', 1, 64) + suffix
}

// FormatUnits formats a BTC amount with up to 8 fractional digits.
func FormatUnits(units float64) string {
	return printer().Sprint(number.Decimal(units, number.MaxFractionDigits(8)))
}

// FormatPct formats a percentage value as entered, e.g. 30 -> "30%", 12.5 -> "12.5%".
func FormatPct(pct float64) string {
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatNumber groups the digits of an integer for the current locale,
// e.g. 1234567 -> "1,234,567" in en-US.
func FormatNumber(n int64) string {
	return printer().Sprint(number.Decimal(n))
}
