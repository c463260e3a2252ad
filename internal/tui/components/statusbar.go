package components

import (
	"strings"

	"github.com/theirongolddev/btcplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// PriceStatus describes the price feed for the status bar.
type PriceStatus struct {
	Source   string // provider name, empty when the price was typed
	Age      string // "updated 2 minutes ago"
	Stale    bool   // last refresh failed
	Fetching bool
	Offline  bool
	Spinner  string // rendered spinner frame shown while fetching
	Refresh  string // rendered countdown bar to the next refresh
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, ps PriceStatus) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	infoStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Faint(true)

	left := keyStyle.Render(" [?]help  [tab]field  [q]uit")

	var parts []string
	switch {
	case ps.Offline:
		parts = append(parts, dimStyle.Render("offline"))
	case ps.Fetching && ps.Spinner != "":
		parts = append(parts, ps.Spinner+infoStyle.Render(" fetching"))
	}
	if ps.Source != "" {
		parts = append(parts, infoStyle.Render(ps.Source))
	}
	if ps.Age != "" {
		parts = append(parts, infoStyle.Render(ps.Age))
	}
	if ps.Stale {
		parts = append(parts, dimStyle.Render("stale"))
	}
	if ps.Refresh != "" && !ps.Offline {
		parts = append(parts, ps.Refresh)
	}
	right := strings.Join(parts, barStyle.Render("  ")) + barStyle.Render(" ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return left + barStyle.Render(strings.Repeat(" ", padding)) + right
}
