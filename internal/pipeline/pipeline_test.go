package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theirongolddev/btcplan/internal/model"
	"github.com/theirongolddev/btcplan/internal/pricefeed"
)

func TestFetchBoardKeepsOrderAndErrors(t *testing.T) {
	prices := map[string]float64{"USD": 100, "EUR": 90, "JPY": 15000}
	src := pricefeed.SourceFunc(func(_ context.Context, ccy string) (float64, error) {
		if p, ok := prices[ccy]; ok {
			return p, nil
		}
		return 0, errors.New("no price")
	})

	var calls atomic.Int64
	progress := func(current, total int) {
		calls.Add(1)
		if total != 4 {
			t.Errorf("total = %d, want 4", total)
		}
	}

	got := FetchBoard(context.Background(), src, []string{"USD", "eur", "GBP", "JPY"}, progress)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	want := []struct {
		ccy   string
		price float64
		err   bool
	}{
		{"USD", 100, false},
		{"EUR", 90, false},
		{"GBP", 0, true},
		{"JPY", 15000, false},
	}
	for i, w := range want {
		e := got[i]
		if e.Quote.Currency != w.ccy {
			t.Errorf("[%d] currency = %s, want %s", i, e.Quote.Currency, w.ccy)
		}
		if (e.Err != nil) != w.err {
			t.Errorf("[%d] err = %v, want error %v", i, e.Err, w.err)
		}
		if e.Quote.Price != w.price {
			t.Errorf("[%d] price = %v, want %v", i, e.Quote.Price, w.price)
		}
		if e.Quote.Source != "custom" {
			t.Errorf("[%d] source = %q, want custom", i, e.Quote.Source)
		}
	}
	if calls.Load() != 4 {
		t.Errorf("progress calls = %d, want 4", calls.Load())
	}
}

func TestFetchBoardCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := pricefeed.SourceFunc(func(context.Context, string) (float64, error) {
		t.Error("source called after cancel")
		return 1, nil
	})
	for _, e := range FetchBoard(ctx, src, model.Currencies, nil) {
		if !errors.Is(e.Err, context.Canceled) {
			t.Errorf("%s err = %v, want context.Canceled", e.Quote.Currency, e.Err)
		}
	}
}

func TestFetchBoardEmpty(t *testing.T) {
	if got := FetchBoard(context.Background(), nil, nil, nil); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestDaily(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	day3 := time.Date(2026, 3, 3, 9, 0, 0, 0, time.Local)
	quotes := []model.Quote{
		{Currency: "USD", Price: 100, FetchedAt: day1},
		{Currency: "USD", Price: 120, FetchedAt: day1.Add(time.Hour)},
		{Currency: "USD", Price: 90, FetchedAt: day1.Add(2 * time.Hour)},
		{Currency: "USD", Price: 110, FetchedAt: day1.Add(3 * time.Hour)},
		{Currency: "USD", Price: 130, FetchedAt: day3},
	}

	days := Daily(quotes, time.Time{}, time.Time{})
	if len(days) != 3 {
		t.Fatalf("len = %d, want 3", len(days))
	}
	if !days[0].Date.Equal(time.Date(2026, 3, 3, 0, 0, 0, 0, time.Local)) {
		t.Errorf("first day = %v, want Mar 3 (most recent first)", days[0].Date)
	}
	if days[1].Count != 0 {
		t.Errorf("gap day count = %d, want 0", days[1].Count)
	}

	d := days[2]
	if d.Open != 100 || d.High != 120 || d.Low != 90 || d.Close != 110 || d.Count != 4 {
		t.Errorf("day1 = %+v, want open 100 high 120 low 90 close 110 count 4", d)
	}
}

func TestDailyEmpty(t *testing.T) {
	if got := Daily(nil, time.Time{}, time.Time{}); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
