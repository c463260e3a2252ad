package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/theirongolddev/btcplan/internal/cli"
	"github.com/theirongolddev/btcplan/internal/config"
	"github.com/theirongolddev/btcplan/internal/model"
	"github.com/theirongolddev/btcplan/internal/pricefeed"
)

func fixedSource(price float64) pricefeed.Source {
	return pricefeed.SourceFunc(func(context.Context, string) (float64, error) {
		return price, nil
	})
}

func newTestApp(t *testing.T, log *zap.Logger) App {
	t.Helper()
	if log == nil {
		log = zap.NewNop()
	}
	return NewApp(Options{
		Input:    model.DefaultInput(),
		Currency: "USD",
		Source:   fixedSource(100_000),
		Log:      log,
	})
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	next, ok := m.(App)
	require.True(t, ok)
	return next
}

func TestNewAppSeedsDefaults(t *testing.T) {
	a := newTestApp(t, nil)

	in := a.state.Input()
	assert.Equal(t, 1.0, in.Units)
	assert.Equal(t, 110_000.0, in.Price)
	assert.Equal(t, 30.0, in.GrowthPct)
	assert.Equal(t, 10.0, in.DrawdownPct)
	assert.Len(t, a.state.Rows(), 11)
	assert.True(t, a.fetching)
	assert.Equal(t, fieldUnits, a.focus)
}

func TestNewAppWithoutSourceIsOffline(t *testing.T) {
	a := NewApp(Options{Input: model.DefaultInput(), Currency: "EUR"})
	assert.True(t, a.offline)
	assert.False(t, a.fetching)
	assert.Equal(t, "EUR", a.state.Currency())
}

func TestPriceMsgAppliedForCurrentGeneration(t *testing.T) {
	a := newTestApp(t, nil)
	gen := a.state.PriceGen()

	a = update(t, a, PriceMsg{Gen: gen, Quote: model.Quote{
		Currency: "USD", Price: 95_000, Source: "test", FetchedAt: time.Now(),
	}})

	assert.Equal(t, 95_000.0, a.state.Input().Price)
	assert.Equal(t, "95000", a.priceIn.Value())
	assert.False(t, a.fetching)
	assert.False(t, a.stale)
	src, _ := a.state.PriceOrigin()
	assert.Equal(t, "test", src)
}

func TestStalePriceDiscardedAfterCurrencyChange(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := newTestApp(t, zap.New(core))
	oldGen := a.state.PriceGen()

	a.focus = fieldCurrency
	a = update(t, a, tea.KeyMsg{Type: tea.KeyRight})
	require.NotEqual(t, "USD", a.state.Currency())
	require.Greater(t, a.state.PriceGen(), oldGen)

	a = update(t, a, PriceMsg{Gen: oldGen, Quote: model.Quote{Currency: "USD", Price: 1, Source: "test"}})

	assert.Equal(t, 110_000.0, a.state.Input().Price)
	assert.Equal(t, 1, logs.FilterMessage("discarding stale price").Len())
}

func TestPriceErrorMarksStaleAndKeepsPrice(t *testing.T) {
	a := newTestApp(t, nil)
	a = update(t, a, PriceMsg{
		Gen:   a.state.PriceGen(),
		Quote: model.Quote{Currency: "USD"},
		Err:   errors.New("boom"),
	})

	assert.True(t, a.stale)
	assert.False(t, a.fetching)
	assert.Equal(t, 110_000.0, a.state.Input().Price)
	assert.Equal(t, uint64(1), a.tickSeq)
}

func TestTypingUnitsRecomputes(t *testing.T) {
	a := newTestApp(t, nil)
	require.Equal(t, "1", a.unitsIn.Value())

	a = update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})

	assert.Equal(t, "12", a.unitsIn.Value())
	assert.Equal(t, 12.0, a.state.Input().Units)
	assert.InDelta(t, 12*110_000.0, a.state.Rows()[0].Balance, 1e-6)
}

func TestTypingGarbageTreatedAsZero(t *testing.T) {
	a := newTestApp(t, nil)
	a = update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	assert.Equal(t, 0.0, a.state.Input().Units)
	for _, r := range a.state.Rows() {
		assert.Zero(t, r.Balance)
	}
}

func TestSelectorsStepRates(t *testing.T) {
	a := newTestApp(t, nil)

	a.focus = fieldGrowth
	a = update(t, a, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 35.0, a.state.Input().GrowthPct)

	a.focus = fieldDrawdown
	a = update(t, a, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 5.0, a.state.Input().DrawdownPct)
}

func TestPriceTickIgnoredUnlessLatest(t *testing.T) {
	a := newTestApp(t, nil)
	a = update(t, a, PriceMsg{Gen: a.state.PriceGen(), Quote: model.Quote{Currency: "USD", Price: 90_000}})
	require.False(t, a.fetching)

	_, cmd := a.Update(priceTickMsg{Gen: a.state.PriceGen(), Seq: a.tickSeq + 1})
	assert.Nil(t, cmd)

	_, cmd = a.Update(priceTickMsg{Gen: a.state.PriceGen() + 1, Seq: a.tickSeq})
	assert.Nil(t, cmd)

	_, cmd = a.Update(priceTickMsg{Gen: a.state.PriceGen(), Seq: a.tickSeq})
	assert.NotNil(t, cmd)
}

func TestHistoryMsgForOtherCurrencyIgnored(t *testing.T) {
	a := newTestApp(t, nil)
	a = update(t, a, historyMsg{Currency: "EUR", Quotes: []model.Quote{{Currency: "EUR", Price: 1}}})
	assert.Empty(t, a.history)

	a = update(t, a, historyMsg{Currency: "USD", Quotes: []model.Quote{{Currency: "USD", Price: 1}}})
	assert.Len(t, a.history, 1)
}

func TestQuitInvalidatesGeneration(t *testing.T) {
	a := newTestApp(t, nil)
	gen := a.state.PriceGen()

	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	a = m.(App)
	assert.Greater(t, a.state.PriceGen(), gen)
	assert.Error(t, a.fetchCtx.Err())
}

func TestTabAtX(t *testing.T) {
	a := newTestApp(t, nil)
	assert.Equal(t, 0, a.tabAtX(0))
	assert.Equal(t, -1, a.tabAtX(-1))
	assert.Equal(t, -1, a.tabAtX(500))
}

func TestTabKeysOutsidePlanner(t *testing.T) {
	a := newTestApp(t, nil)
	a = update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	assert.Equal(t, tabChart, a.activeTab)

	a = update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	assert.Equal(t, tabHistory, a.activeTab)
}

func TestViewRendersEachTab(t *testing.T) {
	for _, width := range []int{90, 140} {
		a := newTestApp(t, nil)
		a = update(t, a, tea.WindowSizeMsg{Width: width, Height: 40})
		for tab := tabPlanner; tab <= tabHistory; tab++ {
			a.activeTab = tab
			assert.NotEmpty(t, a.View())
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := newTestApp(t, nil)
	a = update(t, a, tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.Contains(t, a.View(), "too narrow")
}

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	v := DefaultSetupValues(cfg)
	assert.Equal(t, "USD", v.Currency)
	assert.Equal(t, 60, v.RefreshSec)

	v.Currency = "jpy"
	v.Theme = "tokyo-night"
	v.RefreshSec = 120
	v.APIKey = "  key  "
	v.Apply(&cfg)

	assert.Equal(t, "JPY", cfg.General.DefaultCurrency)
	assert.Equal(t, "tokyo-night", cfg.Appearance.Theme)
	assert.Equal(t, 120, cfg.Price.RefreshIntervalSec)
	assert.Equal(t, "key", cfg.Price.APIKey)
}

func TestValidateLocale(t *testing.T) {
	assert.NoError(t, validateLocale(""))
	assert.NoError(t, validateLocale("de-DE"))
	assert.Error(t, validateLocale("not a locale!"))
}

func TestFitMoneyAbbreviatesInsteadOfCutting(t *testing.T) {
	require.NoError(t, cli.SetLocale("en-US"))

	assert.Equal(t, "$139,700", fitMoney(139_700, "USD", 12))

	big := 1000 * 110_000.0 * 13.78
	got := fitMoney(big, "USD", 9)
	assert.Equal(t, cli.FormatCompactMoney(big, "USD"), got)
	assert.NotContains(t, got, "…")
	assert.LessOrEqual(t, lipgloss.Width(got), 9)
}
