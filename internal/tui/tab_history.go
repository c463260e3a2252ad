package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/btcplan/internal/cli"
	"github.com/theirongolddev/btcplan/internal/tui/components"
	"github.com/theirongolddev/btcplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// historyRows is the number of most recent quotes listed.
const historyRows = 12

func (a App) renderHistoryTab(cw int) string {
	t := theme.Active
	ccy := a.state.Currency()
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	switch {
	case a.quotes == nil:
		return components.ContentCard("Price history", muted.Render("Quote history is unavailable (the history store could not be opened)."), cw, false)
	case a.historyErr != nil:
		return components.ContentCard("Price history", muted.Render("Could not load history: "+a.historyErr.Error()), cw, false)
	case len(a.history) == 0:
		return components.ContentCard("Price history",
			muted.Render(fmt.Sprintf("No %s quotes recorded yet. Prices are recorded after each successful refresh.", ccy)), cw, false)
	}

	prices := make([]float64, len(a.history))
	lo, hi := a.history[0].Price, a.history[0].Price
	for i, q := range a.history {
		prices[i] = q.Price
		lo = min(lo, q.Price)
		hi = max(hi, q.Price)
	}
	first, latest := a.history[0], a.history[len(a.history)-1]

	change := ""
	if first.Price > 0 {
		change = fmt.Sprintf("%+.2f%% since %s", (latest.Price/first.Price-1)*100, humanize.RelTime(first.FetchedAt, a.now, "ago", "from now"))
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Latest", Value: cli.FormatMoney(latest.Price, ccy), Delta: change, Highlight: true},
		{Label: "Low", Value: cli.FormatMoney(lo, ccy)},
		{Label: "High", Value: cli.FormatMoney(hi, ccy)},
		{Label: "Quotes", Value: cli.FormatNumber(int64(len(a.history)))},
	}, cw))
	b.WriteString("\n")

	inner := components.CardInnerWidth(cw)
	spark := prices
	if len(spark) > inner {
		spark = spark[len(spark)-inner:]
	}
	b.WriteString(components.ContentCard("Trend", components.Sparkline(spark, t.Bitcoin), cw, false))
	b.WriteString("\n")

	timeStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Width(22)
	priceStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Align(lipgloss.Right).Width(16)
	upStyle := priceStyle.Foreground(t.Green).Width(12)
	downStyle := priceStyle.Foreground(t.Red).Width(12)
	srcStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).PaddingLeft(2)

	var rows strings.Builder
	shown := 0
	for i := len(a.history) - 1; i >= 0 && shown < historyRows; i-- {
		q := a.history[i]
		rows.WriteString(timeStyle.Render(humanize.RelTime(q.FetchedAt, a.now, "ago", "from now")))
		rows.WriteString(priceStyle.Render(cli.FormatMoney(q.Price, ccy)))
		if i > 0 && a.history[i-1].Price > 0 {
			pct := (q.Price/a.history[i-1].Price - 1) * 100
			style := upStyle
			if pct < 0 {
				style = downStyle
			}
			rows.WriteString(style.Render(fmt.Sprintf("%+.2f%%", pct)))
		} else {
			rows.WriteString(upStyle.Render(""))
		}
		rows.WriteString(srcStyle.Render(q.Source))
		shown++
		if shown < historyRows && i > 0 {
			rows.WriteString("\n")
		}
	}
	b.WriteString(components.ContentCard("Recent quotes ("+ccy+")", rows.String(), cw, false))
	return b.String()
}
