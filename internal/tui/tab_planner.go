package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/btcplan/internal/cli"
	"github.com/theirongolddev/btcplan/internal/model"
	"github.com/theirongolddev/btcplan/internal/tui/components"
	"github.com/theirongolddev/btcplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// inputsCardWidth is the outer width of the inputs card in the wide layout.
const inputsCardWidth = 48

func (a App) renderPlannerTab(cw int) string {
	in := a.state.Input()
	sum := a.state.Summary()
	ccy := a.state.Currency()

	metrics := []components.Metric{
		{
			Label:     "Starting balance",
			Value:     cli.FormatMoney(sum.StartingBalance, ccy),
			Delta:     cli.FormatUnits(in.Units) + " BTC × " + cli.FormatMoney(in.Price, ccy),
			Highlight: true,
		},
		{Label: "Growth rate", Value: cli.FormatPct(sum.GrowthPct), Delta: "per year"},
		{Label: "Drawdown rate", Value: cli.FormatPct(sum.DrawdownPct), Delta: "of each year's gain"},
		{
			Label: "Balance in 10 years",
			Value: cli.FormatMoney(sum.FinalBalance, ccy),
			Delta: "net " + cli.FormatPercent(sum.EffectiveRate) + " a year",
		},
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	if a.isCompactLayout() {
		b.WriteString(a.renderInputsCard(cw))
		b.WriteString("\n")
		b.WriteString(a.renderTableCard(cw))
		return b.String()
	}

	b.WriteString(components.CardRow([]string{
		a.renderInputsCard(inputsCardWidth),
		a.renderTableCard(cw - inputsCardWidth),
	}))
	return b.String()
}

func (a App) renderInputsCard(outerW int) string {
	t := theme.Active
	in := a.state.Input()
	ccy := a.state.Currency()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Width(16)
	focusLabelStyle := labelStyle.Foreground(t.Bitcoin).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	arrowStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	focusArrowStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	unitStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	selector := func(f field, value string) string {
		as := arrowStyle
		if a.focus == f {
			as = focusArrowStyle
		}
		return as.Render("‹ ") + valueStyle.Bold(a.focus == f).Render(value) + as.Render(" ›")
	}

	rows := []struct {
		f     field
		label string
		value string
	}{
		{fieldUnits, "BTC held", a.unitsIn.View() + unitStyle.Render(" BTC")},
		{fieldPrice, "Price per BTC", a.priceIn.View() + unitStyle.Render(" "+ccy)},
		{fieldCurrency, "Currency", selector(fieldCurrency, ccy)},
		{fieldGrowth, "Annual growth", selector(fieldGrowth, fmt.Sprintf("%3s", cli.FormatPct(in.GrowthPct))) +
			valueStyle.Render("  ") + components.RateBar(in.GrowthPct, lastStep(), 12, t.Green)},
		{fieldDrawdown, "Drawdown of gain", selector(fieldDrawdown, fmt.Sprintf("%3s", cli.FormatPct(in.DrawdownPct))) +
			valueStyle.Render("  ") + components.RateBar(in.DrawdownPct, lastStep(), 12, t.Orange)},
	}

	var b strings.Builder
	for _, r := range rows {
		marker, ls := "  ", labelStyle
		if a.focus == r.f {
			marker, ls = "▸ ", focusLabelStyle
		}
		b.WriteString(ls.Render(marker + r.label))
		b.WriteString(r.value)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("tab next field  ←/→ change  ? help"))

	return components.ContentCard("Inputs", b.String(), outerW, a.activeTab == tabPlanner)
}

func (a App) renderTableCard(outerW int) string {
	t := theme.Active
	ccy := a.state.Currency()
	rows := a.state.Rows()

	innerW := components.CardInnerWidth(outerW)
	yearW := 6
	colW := max((innerW-yearW)/4, 10)

	headerStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true).Align(lipgloss.Right).Width(colW)
	yearHeaderStyle := headerStyle.Align(lipgloss.Left).Width(yearW)
	cellStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Align(lipgloss.Right).Width(colW)
	yearStyle := cellStyle.Foreground(t.TextMuted).Align(lipgloss.Left).Width(yearW)
	gainStyle := cellStyle.Foreground(t.Green)
	drawStyle := cellStyle.Foreground(t.Orange)
	balanceStyle := cellStyle.Foreground(t.Bitcoin)

	var b strings.Builder
	b.WriteString(yearHeaderStyle.Render("Year"))
	for _, h := range []string{"After growth", "Gain", "Drawdown", "Balance"} {
		b.WriteString(headerStyle.Render(truncStr(h, colW)))
	}
	b.WriteString("\n")

	for i, r := range rows {
		last := i == len(rows)-1
		money := func(v float64) string { return fitMoney(v, ccy, colW-1) }
		b.WriteString(yearStyle.Bold(last).Render(fmt.Sprintf("%d", r.Year)))
		b.WriteString(cellStyle.Bold(last).Render(money(r.AfterGrowth)))
		b.WriteString(gainStyle.Bold(last).Render(money(r.Gain)))
		b.WriteString(drawStyle.Bold(last).Render(money(r.Drawdown)))
		b.WriteString(balanceStyle.Bold(true).Render(money(r.Balance)))
		if !last {
			b.WriteString("\n")
		}
	}

	return components.ContentCard("Projection ("+ccy+")", b.String(), outerW, false)
}

func lastStep() float64 {
	return model.PercentSteps[len(model.PercentSteps)-1]
}

// fitMoney formats v in full when it fits in w cells and abbreviates it
// otherwise, so a narrow column never shows a cut-off figure.
func fitMoney(v float64, ccy string, w int) string {
	if full := cli.FormatMoney(v, ccy); lipgloss.Width(full) <= w {
		return full
	}
	return truncStr(cli.FormatCompactMoney(v, ccy), w)
}
