package components

import (
	"time"

	"github.com/theirongolddev/btcplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// RefreshBar renders a small bar that fills up until the next price refresh.
func RefreshBar(elapsed, interval time.Duration, width int) string {
	t := theme.Active

	pct := 0.0
	if interval > 0 {
		pct = float64(elapsed) / float64(interval)
	}
	pct = max(0, min(pct, 1))

	bar := progress.New(
		progress.WithSolidFill(string(t.Accent)),
		progress.WithWidth(max(width, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	return bar.ViewAs(pct)
}

// RateBar renders a percentage selector value as a labeled bar scaled to max.
func RateBar(pct, maxPct float64, width int, color lipgloss.Color) string {
	t := theme.Active

	frac := 0.0
	if maxPct > 0 {
		frac = pct / maxPct
	}
	frac = max(0, min(frac, 1))

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(width, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.SurfaceBright)

	return bar.ViewAs(frac)
}
