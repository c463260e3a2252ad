package pricefeed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/theirongolddev/btcplan/internal/model"
)

const waitFor = 2 * time.Second

func TestWatcher_FetchesImmediately(t *testing.T) {
	src := SourceFunc(func(_ context.Context, currency string) (float64, error) {
		return 50000, nil
	})
	w := NewWatcher(src, time.Hour, nil)

	var mu sync.Mutex
	var got []model.Quote
	w.OnQuote = func(_ uint64, q model.Quote) {
		mu.Lock()
		got = append(got, q)
		mu.Unlock()
	}

	w.Start(context.Background(), "gbp")
	defer w.Stop()

	require.Eventually(t, func() bool {
		_, ok := w.Current()
		return ok
	}, waitFor, 5*time.Millisecond)

	q, _ := w.Current()
	assert.Equal(t, "GBP", q.Currency)
	assert.Equal(t, 50000.0, q.Price)
	assert.Equal(t, "custom", q.Source)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
}

func TestWatcher_FailureKeepsPreviousQuote(t *testing.T) {
	var mu sync.Mutex
	fail := false
	src := SourceFunc(func(context.Context, string) (float64, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return 0, ErrRateLimited
		}
		return 42000, nil
	})
	w := NewWatcher(src, 10*time.Millisecond, nil)
	w.Start(context.Background(), "USD")
	defer w.Stop()

	require.Eventually(t, func() bool {
		_, ok := w.Current()
		return ok
	}, waitFor, 5*time.Millisecond)

	mu.Lock()
	fail = true
	mu.Unlock()

	require.Eventually(t, func() bool { return w.Status().Stale }, waitFor, 5*time.Millisecond)

	st := w.Status()
	assert.True(t, st.HasQuote)
	assert.Equal(t, 42000.0, st.Quote.Price)
	assert.Contains(t, st.LastError, "rate limited")
}

// A fetch started for USD that resolves after the switch to EUR must not
// overwrite the EUR quote.
func TestWatcher_DiscardsStaleResult(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	usdStarted := make(chan struct{})
	release := make(chan struct{})
	src := SourceFunc(func(_ context.Context, currency string) (float64, error) {
		if currency == "USD" {
			close(usdStarted)
			<-release
			return 100000, nil
		}
		return 90000, nil
	})

	w := NewWatcher(src, time.Hour, zap.New(core))
	w.Start(context.Background(), "USD")
	defer w.Stop()

	<-usdStarted
	w.SetCurrency("EUR")

	require.Eventually(t, func() bool {
		q, ok := w.Current()
		return ok && q.Currency == "EUR"
	}, waitFor, 5*time.Millisecond)

	close(release)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("discarding stale price").Len() == 1
	}, waitFor, 5*time.Millisecond)

	q, _ := w.Current()
	assert.Equal(t, "EUR", q.Currency)
	assert.Equal(t, 90000.0, q.Price)
	assert.Equal(t, "EUR", w.Status().Currency)
}

func TestWatcher_StopDiscardsInFlight(t *testing.T) {
	started := make(chan struct{})
	src := SourceFunc(func(ctx context.Context, _ string) (float64, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	w := NewWatcher(src, time.Hour, nil)
	w.Start(context.Background(), "USD")
	<-started

	w.Stop()

	_, ok := w.Current()
	assert.False(t, ok)
	assert.Empty(t, w.Status().LastError, "cancellation after stop is not a refresh failure")

	gen := w.Status().Generation
	assert.Equal(t, gen, w.SetCurrency("EUR"), "SetCurrency after Stop is a no-op")
}

func TestWatcher_ApplyRejectsOldGeneration(t *testing.T) {
	w := NewWatcher(SourceFunc(func(context.Context, string) (float64, error) {
		return 0, errors.New("unused")
	}), time.Hour, nil)
	w.gen = 3
	w.currency = "USD"

	assert.False(t, w.apply(2, "USD", 1, nil))
	assert.True(t, w.apply(3, "USD", 1, nil))

	q, ok := w.Current()
	require.True(t, ok)
	assert.Equal(t, 1.0, q.Price)
}
