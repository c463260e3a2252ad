package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func TestFormatAxisLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{500, "500"},
		{2000, "2k"},
		{1500, "1.5k"},
		{3_000_000, "3M"},
		{2_500_000_000, "2.5B"},
	}
	for _, tt := range tests {
		if got := FormatAxisLabel(tt.in); got != tt.want {
			t.Errorf("FormatAxisLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBarChartLabelsAndHeight(t *testing.T) {
	values := []float64{100, 130, 169, 220}
	labels := []string{"0", "1", "2", "3"}

	out := BarChart(values, labels, lipgloss.Color("#F7931A"), 60, 8, func(v float64) string {
		return "$" + FormatAxisLabel(v)
	})

	lines := strings.Split(out, "\n")
	if len(lines) < 4 {
		t.Fatalf("chart has %d lines, want at least 4", len(lines))
	}
	if !strings.Contains(out, "$") {
		t.Fatal("custom label formatter not used")
	}
	if !strings.Contains(lines[len(lines)-1], "3") {
		t.Fatalf("last line %q should carry x labels", lines[len(lines)-1])
	}
}

func TestBarChartTooSmallFallsBackToSparkline(t *testing.T) {
	out := BarChart([]float64{1, 2, 3}, nil, lipgloss.Color("1"), 10, 2, nil)
	if lipgloss.Height(out) != 1 {
		t.Fatalf("expected single-line sparkline, got %q", out)
	}
}

func TestSparklineFlatSeries(t *testing.T) {
	out := Sparkline([]float64{5, 5, 5}, lipgloss.Color("1"))
	if strings.Count(out, "▅") != 3 {
		t.Fatalf("flat series = %q, want mid-height blocks", out)
	}
}

func TestRefreshBarWidth(t *testing.T) {
	if w := lipgloss.Width(RefreshBar(30*time.Second, time.Minute, 12)); w != 12 {
		t.Fatalf("RefreshBar width = %d, want 12", w)
	}
}

func TestTabVisualWidth(t *testing.T) {
	for _, tab := range Tabs {
		want := len(tab.Name) + 2*tabPadding
		if got := TabVisualWidth(tab, false); got != want {
			t.Fatalf("inactive %s width = %d, want %d", tab.Name, got, want)
		}
		if got := TabVisualWidth(tab, true); got != want {
			t.Fatalf("active %s width = %d, want %d", tab.Name, got, want)
		}
	}
}
