// Package daemon provides the background price watcher and its local
// HTTP/SSE API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/btcplan/internal/model"
	"github.com/theirongolddev/btcplan/internal/pricefeed"
)

// DefaultAddr is the loopback listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8799"

// Recorder persists accepted quotes.
type Recorder interface {
	Record(q model.Quote) error
}

// Config controls the daemon runtime behavior.
type Config struct {
	Currency     string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
}

// Delta captures the price move between two accepted quotes.
type Delta struct {
	Price float64 `json:"price"`
	Pct   float64 `json:"pct"`
}

func (d Delta) isZero() bool {
	return d.Price == 0
}

// Event is emitted for the first quote and whenever the price moves.
type Event struct {
	ID        int64       `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Quote     model.Quote `json:"quote"`
	Delta     Delta       `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time   `json:"started_at"`
	LastQuoteAt     time.Time   `json:"last_quote_at"`
	LastAttemptAt   time.Time   `json:"last_attempt_at"`
	PollIntervalSec int         `json:"poll_interval_sec"`
	QuoteCount      int64       `json:"quote_count"`
	Currency        string      `json:"currency"`
	Source          string      `json:"source"`
	Quote           model.Quote `json:"quote"`
	Stale           bool        `json:"stale"`
	LastError       string      `json:"last_error,omitempty"`
	EventCount      int         `json:"event_count"`
	SubscriberCount int         `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	watcher *pricefeed.Watcher
	source  string
	rec     Recorder
	log     *zap.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	quoteCount  int64
	hasQuote    bool
	last        model.Quote
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service polling src. rec may be nil when history
// is not recorded; a nil logger discards output.
func New(cfg Config, src pricefeed.Source, rec Recorder, log *zap.Logger) *Service {
	if cfg.Interval < 10*time.Second {
		cfg.Interval = pricefeed.DefaultInterval
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	cfg.Currency = model.NormalizeCurrency(cfg.Currency)
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		cfg:       cfg,
		source:    pricefeed.SourceName(src),
		rec:       rec,
		log:       log,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.watcher = pricefeed.NewWatcher(src, cfg.Interval, log.Named("watcher"))
	s.watcher.OnQuote = s.acceptQuote
	return s
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/quote", s.handleQuote)
	mux.HandleFunc("/v1/currency", s.handleCurrency)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run serves the HTTP API and polls prices until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.watcher.Start(gctx, s.cfg.Currency)
		s.log.Info("daemon started",
			zap.String("addr", s.cfg.Addr),
			zap.String("currency", s.cfg.Currency),
			zap.Duration("interval", s.cfg.Interval),
		)

		<-gctx.Done()
		s.watcher.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// acceptQuote publishes q and records it when gen is still the watcher's
// current generation. The check and the update share s.mu, so a quote for a
// superseded currency can never replace the current one.
func (s *Service) acceptQuote(gen uint64, q model.Quote) {
	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	if cur := s.watcher.Generation(); gen != cur {
		s.mu.Unlock()
		s.log.Debug("discarding stale quote",
			zap.String("currency", q.Currency),
			zap.Uint64("gen", gen),
			zap.Uint64("current", cur),
		)
		return
	}
	prev := s.last
	prevExists := s.hasQuote && prev.Currency == q.Currency

	s.hasQuote = true
	s.last = q
	s.quoteCount++

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "quote", Timestamp: q.FetchedAt, Quote: q}
		publish = true
	} else if delta := diffQuotes(prev, q); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "price_change", Timestamp: q.FetchedAt, Quote: q, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if s.rec != nil {
		if err := s.rec.Record(q); err != nil {
			s.log.Warn("recording quote", zap.Error(err))
		}
	}
	if publish {
		s.publishEvent(ev)
	}
}

func diffQuotes(prev, curr model.Quote) Delta {
	d := Delta{Price: curr.Price - prev.Price}
	if prev.Price != 0 {
		d.Pct = d.Price / prev.Price
	}
	return d
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	ws := s.watcher.Status()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		LastAttemptAt:   ws.LastAttempt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		QuoteCount:      s.quoteCount,
		Currency:        ws.Currency,
		Source:          s.source,
		Quote:           s.last,
		Stale:           ws.Stale,
		LastError:       ws.LastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if st.Currency == "" {
		st.Currency = s.cfg.Currency
	}
	if s.hasQuote {
		st.LastQuoteAt = s.last.FetchedAt
	}
	return st
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleQuote(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	q, ok := s.last, s.hasQuote
	s.mu.RUnlock()

	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no quote yet"})
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// handleCurrency switches the watched currency: POST /v1/currency?code=EUR.
func (s *Service) handleCurrency(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	code := r.URL.Query().Get("code")
	if !model.IsSupportedCurrency(code) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported currency " + code})
		return
	}
	gen := s.watcher.SetCurrency(code)
	s.log.Info("currency changed", zap.String("currency", model.NormalizeCurrency(code)), zap.Uint64("gen", gen))
	writeJSON(w, http.StatusAccepted, map[string]any{"currency": model.NormalizeCurrency(code), "generation": gen})
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	s.mu.RLock()
	current, has := s.last, s.hasQuote
	s.mu.RUnlock()
	if has {
		writeSSE(w, Event{Type: "quote", Timestamp: time.Now(), Quote: current})
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
