package model

import (
	"slices"
	"strings"
	"time"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "USD"

// Currencies is the fixed set of quote currencies offered by the selector.
var Currencies = []string{"USD", "EUR", "GBP", "AUD", "CAD", "JPY", "CHF", "NZD", "SGD"}

// PercentSteps are the growth/drawdown selector options (0..80 in 5% steps).
var PercentSteps = func() []float64 {
	steps := make([]float64, 17)
	for i := range steps {
		steps[i] = float64(i * 5)
	}
	return steps
}()

// Quote is a single accepted price observation.
type Quote struct {
	Currency  string    `json:"currency"`
	Price     float64   `json:"price"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// IsSupportedCurrency reports whether code (any case) is in Currencies.
func IsSupportedCurrency(code string) bool {
	return slices.Contains(Currencies, strings.ToUpper(strings.TrimSpace(code)))
}

// NormalizeCurrency upper-cases code, falling back to DefaultCurrency
// when it is not one of the supported currencies.
func NormalizeCurrency(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !slices.Contains(Currencies, c) {
		return DefaultCurrency
	}
	return c
}

// NextCurrency returns the currency after (or before, when step < 0) code
// in the selector order, wrapping around.
func NextCurrency(code string, step int) string {
	idx := slices.Index(Currencies, NormalizeCurrency(code))
	n := len(Currencies)
	return Currencies[((idx+step)%n+n)%n]
}

// NextPercentStep moves pct to the adjacent selector step. Values between
// steps snap to the next step in the direction of travel; the result stays
// within the selector range.
func NextPercentStep(pct float64, step int) float64 {
	if step > 0 {
		for _, s := range PercentSteps {
			if s > pct {
				return s
			}
		}
		return PercentSteps[len(PercentSteps)-1]
	}
	for i := len(PercentSteps) - 1; i >= 0; i-- {
		if PercentSteps[i] < pct {
			return PercentSteps[i]
		}
	}
	return PercentSteps[0]
}

// DailyQuote summarizes the quotes recorded on one local calendar day.
// Count is zero for days with no quotes.
type DailyQuote struct {
	Date     time.Time `json:"date"`
	Currency string    `json:"currency"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Count    int       `json:"count"`
}
