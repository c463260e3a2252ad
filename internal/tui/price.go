package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/theirongolddev/btcplan/internal/model"
	"github.com/theirongolddev/btcplan/internal/pricefeed"
	"github.com/theirongolddev/btcplan/internal/store"
)

// historyLimit is the number of recorded quotes shown on the History tab.
const historyLimit = 120

var errNoCachedQuote = errors.New("no cached quote")

// PriceMsg carries the result of a price fetch started under Gen.
type PriceMsg struct {
	Gen   uint64
	Quote model.Quote
	Err   error
}

// priceTickMsg schedules the next refresh. Only the most recently
// scheduled tick (Seq) of the current generation is honored.
type priceTickMsg struct {
	Gen uint64
	Seq uint64
}

// historyMsg carries recorded quotes for a currency.
type historyMsg struct {
	Currency string
	Quotes   []model.Quote
	Err      error
}

type clockMsg time.Time

func clockCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// fetchPriceCmd fetches one price. ctx is cancelled when the selection
// changes or the program quits.
func fetchPriceCmd(ctx context.Context, src pricefeed.Source, gen uint64, currency string, timeout time.Duration) tea.Cmd {
	name := pricefeed.SourceName(src)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		price, err := src.Fetch(ctx, currency)
		return PriceMsg{
			Gen: gen,
			Quote: model.Quote{
				Currency:  currency,
				Price:     price,
				Source:    name,
				FetchedAt: time.Now(),
			},
			Err: err,
		}
	}
}

func priceTickCmd(gen, seq uint64, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return priceTickMsg{Gen: gen, Seq: seq}
	})
}

// cachedPriceCmd answers with the last recorded quote for currency.
func cachedPriceCmd(quotes *store.Quotes, gen uint64, currency string) tea.Cmd {
	return func() tea.Msg {
		q, ok, err := quotes.Latest(currency)
		if err == nil && !ok {
			err = errNoCachedQuote
		}
		if err == nil {
			q.Source += " (cached)"
		}
		return PriceMsg{Gen: gen, Quote: q, Err: err}
	}
}

// recordQuoteCmd stores q and reloads the history for its currency.
func recordQuoteCmd(quotes *store.Quotes, q model.Quote, log *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		if err := quotes.Record(q); err != nil {
			log.Warn("recording quote", zap.Error(err))
		}
		hist, err := quotes.History(q.Currency, time.Time{}, historyLimit)
		return historyMsg{Currency: q.Currency, Quotes: hist, Err: err}
	}
}

func loadHistoryCmd(quotes *store.Quotes, currency string) tea.Cmd {
	return func() tea.Msg {
		hist, err := quotes.History(currency, time.Time{}, historyLimit)
		return historyMsg{Currency: currency, Quotes: hist, Err: err}
	}
}
