package pricefeed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/btcplan/internal/model"
)

// DefaultInterval is the refresh period between fetches.
const DefaultInterval = 60 * time.Second

// Status is a snapshot of a Watcher.
type Status struct {
	Currency    string      `json:"currency"`
	Generation  uint64      `json:"generation"`
	Quote       model.Quote `json:"quote"`
	HasQuote    bool        `json:"has_quote"`
	Stale       bool        `json:"stale"`
	LastError   string      `json:"last_error,omitempty"`
	LastAttempt time.Time   `json:"last_attempt"`
}

// Watcher polls a Source for the selected currency. Each selection runs
// under a generation token; results from an older generation are dropped.
type Watcher struct {
	src      Source
	name     string
	interval time.Duration
	log      *zap.Logger

	// OnQuote is called outside the lock for every accepted quote, with the
	// generation it was fetched under. The selection may have moved on by
	// the time it runs; compare gen with Generation under the receiver's
	// own lock before publishing q. Set it before Start.
	OnQuote func(gen uint64, q model.Quote)

	mu          sync.Mutex
	parent      context.Context
	cancel      context.CancelFunc
	gen         uint64
	currency    string
	current     model.Quote
	hasQuote    bool
	lastErr     error
	lastAttempt time.Time
	stopped     bool

	wg sync.WaitGroup
}

// NewWatcher creates a watcher. A non-positive interval uses DefaultInterval;
// a nil logger discards output.
func NewWatcher(src Source, interval time.Duration, log *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		src:      src,
		name:     SourceName(src),
		interval: interval,
		log:      log,
		parent:   context.Background(),
	}
}

// Start begins polling currency. Cancelling ctx stops all polling.
func (w *Watcher) Start(ctx context.Context, currency string) uint64 {
	w.mu.Lock()
	w.parent = ctx
	w.mu.Unlock()
	return w.SetCurrency(currency)
}

// SetCurrency switches the watched currency. The previous poll loop and any
// in-flight request are cancelled and a fresh fetch starts immediately.
// It returns the new generation.
func (w *Watcher) SetCurrency(currency string) uint64 {
	currency = model.NormalizeCurrency(currency)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return w.gen
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.gen++
	w.currency = currency
	w.lastErr = nil

	ctx, cancel := context.WithCancel(w.parent)
	w.cancel = cancel
	gen := w.gen

	w.wg.Add(1)
	go w.run(ctx, gen, currency)

	w.log.Debug("watching currency", zap.String("currency", currency), zap.Uint64("gen", gen))
	return gen
}

// Generation returns the token of the current selection.
func (w *Watcher) Generation() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gen
}

// Stop cancels polling and waits for the poll loop to exit. Late results
// are discarded.
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.gen++
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()
	w.wg.Wait()
}

// Current returns the last accepted quote.
func (w *Watcher) Current() (model.Quote, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, w.hasQuote
}

// Status returns a snapshot for display.
func (w *Watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := Status{
		Currency:    w.currency,
		Generation:  w.gen,
		Quote:       w.current,
		HasQuote:    w.hasQuote,
		Stale:       w.lastErr != nil || (w.hasQuote && w.current.Currency != w.currency),
		LastAttempt: w.lastAttempt,
	}
	if w.lastErr != nil {
		st.LastError = w.lastErr.Error()
	}
	return st
}

func (w *Watcher) run(ctx context.Context, gen uint64, currency string) {
	defer w.wg.Done()

	w.poll(ctx, gen, currency)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx, gen, currency)
		}
	}
}

func (w *Watcher) poll(ctx context.Context, gen uint64, currency string) {
	price, err := w.src.Fetch(ctx, currency)
	w.apply(gen, currency, price, err)
}

// apply records a fetch result if gen is still current.
func (w *Watcher) apply(gen uint64, currency string, price float64, err error) bool {
	w.mu.Lock()
	if w.stopped || gen != w.gen {
		w.mu.Unlock()
		w.log.Debug("discarding stale price",
			zap.String("currency", currency),
			zap.Uint64("gen", gen),
		)
		return false
	}
	w.lastAttempt = time.Now()
	if err != nil {
		w.lastErr = err
		w.mu.Unlock()
		w.log.Warn("price refresh failed", zap.String("currency", currency), zap.Error(err))
		return false
	}

	q := model.Quote{Currency: currency, Price: price, Source: w.name, FetchedAt: w.lastAttempt}
	w.current = q
	w.hasQuote = true
	w.lastErr = nil
	cb := w.OnQuote
	w.mu.Unlock()

	w.log.Debug("price accepted", zap.String("currency", currency), zap.Float64("price", price))
	if cb != nil {
		cb(gen, q)
	}
	return true
}
