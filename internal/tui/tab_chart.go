package tui

import (
	"strconv"
	"strings"

	"github.com/theirongolddev/btcplan/internal/cli"
	"github.com/theirongolddev/btcplan/internal/tui/components"
	"github.com/theirongolddev/btcplan/internal/tui/theme"
)

func (a App) renderChartTab(cw, h int) string {
	t := theme.Active
	ccy := a.state.Currency()
	rows := a.state.Rows()

	years := make([]string, len(rows))
	balances := make([]float64, len(rows))
	drawdowns := make([]float64, len(rows))
	for i, r := range rows {
		years[i] = strconv.Itoa(r.Year)
		balances[i] = r.Balance
		drawdowns[i] = r.Drawdown
	}
	money := func(v float64) string { return cli.FormatCompactMoney(v, ccy) }

	if a.isCompactLayout() {
		chartH := max((h-8)/2, 4)
		inner := components.CardInnerWidth(cw)
		return components.ContentCard("Balance by year", components.BarChart(balances, years, t.Bitcoin, inner, chartH, money), cw, false) +
			"\n" +
			components.ContentCard("Drawdown taken by year", components.BarChart(drawdowns, years, t.Orange, inner, chartH, money), cw, false)
	}

	chartH := max(h-6, 6)
	widths := components.LayoutRow(cw, 2)
	var b strings.Builder
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Balance by year",
			components.BarChart(balances, years, t.Bitcoin, components.CardInnerWidth(widths[0]), chartH, money), widths[0], false),
		components.ContentCard("Drawdown taken by year",
			components.BarChart(drawdowns, years, t.Orange, components.CardInnerWidth(widths[1]), chartH, money), widths[1], false),
	}))
	return b.String()
}
