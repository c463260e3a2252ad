package cli

import (
	"math"
	"strings"
	"testing"
)

func TestFormatMoney(t *testing.T) {
	if err := SetLocale("en-US"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{110000, "USD", "$110,000"},
		{139700.4, "USD", "$139,700"},
		{3300, "USD", "$3,300"},
		{0, "USD", "$0"},
		{-0.2, "USD", "$0"},
		{-2500.6, "USD", "-$2,501"},
		{1234.5, "GBP", "£1,235"},
		{99, "EUR", "€99"},
	}
	for _, tc := range tests {
		if got := FormatMoney(tc.amount, tc.code); got != tc.want {
			t.Errorf("FormatMoney(%v, %s) = %q, want %q", tc.amount, tc.code, got, tc.want)
		}
	}
}

func TestFormatMoney_NoFractionDigits(t *testing.T) {
	for _, code := range []string{"USD", "EUR", "GBP", "AUD", "CAD", "JPY", "CHF", "NZD", "SGD"} {
		got := FormatMoney(1234567.891, code)
		if !strings.HasSuffix(got, "1,234,568") {
			t.Errorf("FormatMoney(1234567.891, %s) = %q, want suffix 1,234,568", code, got)
		}
		if strings.Contains(got, ".") {
			t.Errorf("FormatMoney(%s) = %q contains a fractional part", code, got)
		}
	}
}

func TestFormatMoney_LetterSymbolGetsSpace(t *testing.T) {
	got := FormatMoney(1000, "CHF")
	if !strings.Contains(got, "CHF 1,000") {
		t.Fatalf("FormatMoney(1000, CHF) = %q, want it to contain %q", got, "CHF 1,000")
	}
}

func TestFormatCompactMoney(t *testing.T) {
	if err := SetLocale("en-US"); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		amount float64
		want   string
	}{
		{999999, "$999,999"},
		{1534000, "$1.5M"},
		{2_340_000_000, "$2.3B"},
		{-3_000_000, "-$3.0M"},
	}
	for _, tc := range tests {
		if got := FormatCompactMoney(tc.amount, "USD"); got != tc.want {
			t.Errorf("FormatCompactMoney(%v) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestFormatPct(t *testing.T) {
	if got := FormatPct(30); got != "30%" {
		t.Fatalf("FormatPct(30) = %q", got)
	}
	if got := FormatPct(12.5); got != "12.5%" {
		t.Fatalf("FormatPct(12.5) = %q", got)
	}
}

func TestSetLocaleRejectsGarbage(t *testing.T) {
	if err := SetLocale("not a locale!!"); err == nil {
		t.Fatal("SetLocale accepted an invalid tag")
	}
}

func TestFormatNumber(t *testing.T) {
	if err := SetLocale("en-US"); err != nil {
		t.Fatal(err)
	}
	tests := map[int64]string{
		0:             "0",
		999:           "999",
		1000:          "1,000",
		1234567:       "1,234,567",
		-45000:        "-45,000",
		math.MinInt64: "-9,223,372,036,854,775,808",
	}
	for n, want := range tests {
		if got := FormatNumber(n); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFormatNumberFollowsLocale(t *testing.T) {
	if err := SetLocale("de-DE"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = SetLocale("en-US") })

	if got := FormatNumber(1234567); got != "1.234.567" {
		t.Errorf("FormatNumber(1234567) in de-DE = %q, want %q", got, "1.234.567")
	}
}
