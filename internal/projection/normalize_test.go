package projection

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want float64
	}{
		{"currency with separators", "$1,234.50", 1234.5},
		{"percent", "30%", 30},
		{"empty", "", 0},
		{"nil", nil, 0},
		{"whitespace", "  42  ", 42},
		{"euro symbol", "€ 99", 99},
		{"pound symbol", "£1,000", 1000},
		{"yen symbol", "¥15000000", 15000000},
		{"underscores", "1_000_000", 1000000},
		{"negative", "-2.5", -2.5},
		{"exponent", "1e3", 1000},
		{"garbage", "abc", 0},
		{"only decoration", "$ %", 0},
		{"nan text", "NaN", 0},
		{"inf text", "Inf", 0},
		{"float passthrough", 0.125, 0.125},
		{"negative float passthrough", -7.0, -7},
		{"int", 3, 3},
		{"int64", int64(110000), 110000},
		{"float32", float32(1.5), 1.5},
		{"nan float", math.NaN(), 0},
		{"inf float", math.Inf(1), 0},
		{"bytes", []byte("12.5%"), 12.5},
		{"unsupported type", struct{}{}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.raw); got != tc.want {
				t.Fatalf("Normalize(%v) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizeIsTotal(t *testing.T) {
	inputs := []string{
		"", " ", "-", ".", "+", "1..2", "0x1p-2", "1e400", "-1e400",
		"$$$", "%%", ",,,", "١٢٣", "12abc", "∞", "\x00", "💰100",
	}
	for _, in := range inputs {
		got := NormalizeString(in)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("NormalizeString(%q) = %v, want a finite number", in, got)
		}
	}
}
