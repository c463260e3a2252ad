package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/btcplan/internal/model"
)

func TestNew_Defaults(t *testing.T) {
	s := New("")

	assert.Equal(t, "USD", s.Currency())
	assert.Equal(t, model.DefaultInput(), s.Input())
	require.Len(t, s.Rows(), model.Horizon+1)
	assert.Equal(t, 110000.0, s.Rows()[0].Balance)
	assert.InDelta(t, 139700, s.Rows()[1].Balance, 1e-6)
}

func TestSetters_NormalizeAndRecompute(t *testing.T) {
	s := New("USD")
	v := s.Version()

	s.SetUnits("2.5")
	s.SetPrice("$1,000")
	s.SetGrowth("20%")
	s.SetDrawdown("")

	in := s.Input()
	assert.Equal(t, 2.5, in.Units)
	assert.Equal(t, 1000.0, in.Price)
	assert.Equal(t, 20.0, in.GrowthPct)
	assert.Equal(t, 0.0, in.DrawdownPct)
	assert.Greater(t, s.Version(), v)

	rows := s.Rows()
	require.Len(t, rows, model.Horizon+1)
	assert.Equal(t, 2500.0, rows[0].Balance)
	assert.InDelta(t, 3000, rows[1].Balance, 1e-9)
}

func TestSetters_InvalidBecomesZero(t *testing.T) {
	s := New("USD")
	s.SetUnits("abc")
	s.SetPrice("-50")

	assert.Equal(t, 0.0, s.Input().Units)
	assert.Equal(t, 0.0, s.Input().Price)
	for _, r := range s.Rows() {
		assert.Equal(t, 0.0, r.Balance)
	}
}

func TestStepSelectors(t *testing.T) {
	s := New("USD")

	s.StepGrowth(1)
	assert.Equal(t, 35.0, s.Input().GrowthPct)
	s.StepDrawdown(-1)
	assert.Equal(t, 5.0, s.Input().DrawdownPct)

	s.StepCurrency(-1)
	assert.Equal(t, "SGD", s.Currency())
}

func TestApplyQuote_CurrentGeneration(t *testing.T) {
	s := New("USD")
	gen := s.SetCurrency("EUR")
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	ok := s.ApplyQuote(gen, model.Quote{Currency: "EUR", Price: 95000, Source: "coingecko", FetchedAt: at})
	require.True(t, ok)
	assert.Equal(t, 95000.0, s.Input().Price)

	src, when := s.PriceOrigin()
	assert.Equal(t, "coingecko", src)
	assert.Equal(t, at, when)
	assert.Equal(t, 95000.0, s.Rows()[0].Balance)
}

func TestApplyQuote_RejectsStale(t *testing.T) {
	s := New("USD")
	usdGen := s.PriceGen()

	eurGen := s.SetCurrency("EUR")
	require.NotEqual(t, usdGen, eurGen)

	// USD result arrives after the switch.
	assert.False(t, s.ApplyQuote(usdGen, model.Quote{Currency: "USD", Price: 120000}))
	assert.Equal(t, float64(model.DefaultPrice), s.Input().Price)

	// Right generation, wrong currency.
	assert.False(t, s.ApplyQuote(eurGen, model.Quote{Currency: "USD", Price: 120000}))

	assert.True(t, s.ApplyQuote(eurGen, model.Quote{Currency: "EUR", Price: 90000}))
	assert.Equal(t, 90000.0, s.Input().Price)
}

func TestApplyQuote_AfterInvalidate(t *testing.T) {
	s := New("USD")
	gen := s.PriceGen()
	s.Invalidate()

	assert.False(t, s.ApplyQuote(gen, model.Quote{Currency: "USD", Price: 1}))
}

func TestSetPrice_ClearsOrigin(t *testing.T) {
	s := New("USD")
	require.True(t, s.ApplyQuote(s.PriceGen(), model.Quote{Currency: "USD", Price: 100000, Source: "coingecko", FetchedAt: time.Now()}))

	s.SetPrice("99000")

	src, at := s.PriceOrigin()
	assert.Empty(t, src)
	assert.True(t, at.IsZero())
}
