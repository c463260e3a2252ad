// Package projection implements input normalization and the year-by-year
// growth/drawdown recurrence behind the planner table.
package projection

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Normalize converts a raw user value into a finite number.
// Numbers pass through, text has currency symbols, percent signs, thousands
// separators and whitespace stripped before parsing. Anything that does not
// parse to a finite number yields 0.
func Normalize(raw any) float64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		return finiteOrZero(v)
	case float32:
		return finiteOrZero(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case uint:
		return float64(v)
	case uint64:
		return float64(v)
	case string:
		return NormalizeString(v)
	case []byte:
		return NormalizeString(string(v))
	case interface{ String() string }:
		return NormalizeString(v.String())
	default:
		return 0
	}
}

// NormalizeString is Normalize for text input.
func NormalizeString(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '%', r == ',', r == '_':
			return -1
		case unicode.IsSpace(r), unicode.Is(unicode.Sc, r):
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return 0
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return finiteOrZero(f)
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
