// Package store provides a SQLite-backed log of accepted price quotes.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/btcplan/internal/config"
	"github.com/theirongolddev/btcplan/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Quotes provides SQLite-backed quote history.
type Quotes struct {
	db *sql.DB
}

// DefaultPath is the quote database location under the cache dir.
func DefaultPath() string {
	return filepath.Join(config.CacheDir(), "quotes.db")
}

// Open opens or creates the quote database at the given path.
func Open(dbPath string) (*Quotes, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(2000)")
	if err != nil {
		return nil, fmt.Errorf("opening quote db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Quotes{db: db}, nil
}

// Close closes the quote database.
func (q *Quotes) Close() error {
	return q.db.Close()
}

// Record stores an accepted quote.
func (q *Quotes) Record(quote model.Quote) error {
	at := quote.FetchedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := q.db.Exec(`INSERT INTO quotes (currency, price, source, fetched_at_ns)
		VALUES (?, ?, ?, ?)`,
		strings.ToUpper(quote.Currency), quote.Price, quote.Source, at.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("recording quote: %w", err)
	}
	return nil
}

// Latest returns the most recent quote for a currency.
// ok is false when no quote has been recorded yet.
func (q *Quotes) Latest(currency string) (quote model.Quote, ok bool, err error) {
	row := q.db.QueryRow(`SELECT currency, price, source, fetched_at_ns
		FROM quotes WHERE currency = ?
		ORDER BY fetched_at_ns DESC, id DESC LIMIT 1`, strings.ToUpper(currency))

	quote, err = scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Quote{}, false, nil
	}
	if err != nil {
		return model.Quote{}, false, fmt.Errorf("loading latest quote: %w", err)
	}
	return quote, true, nil
}

// History returns up to limit quotes for a currency fetched at or after
// since, oldest first. A zero since returns the newest limit quotes.
func (q *Quotes) History(currency string, since time.Time, limit int) ([]model.Quote, error) {
	if limit <= 0 {
		limit = 500
	}
	var sinceNs int64
	if !since.IsZero() {
		sinceNs = since.UTC().UnixNano()
	}

	rows, err := q.db.Query(`SELECT currency, price, source, fetched_at_ns FROM (
			SELECT id, currency, price, source, fetched_at_ns FROM quotes
			WHERE currency = ? AND fetched_at_ns >= ?
			ORDER BY fetched_at_ns DESC, id DESC LIMIT ?
		) ORDER BY fetched_at_ns ASC, id ASC`,
		strings.ToUpper(currency), sinceNs, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var quotes []model.Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}
		quotes = append(quotes, quote)
	}
	return quotes, rows.Err()
}

// Prune deletes quotes older than before and returns how many were removed.
func (q *Quotes) Prune(before time.Time) (int64, error) {
	res, err := q.db.Exec("DELETE FROM quotes WHERE fetched_at_ns < ?", before.UTC().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("pruning quotes: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored quotes across all currencies.
func (q *Quotes) Count() (int, error) {
	var count int
	err := q.db.QueryRow("SELECT COUNT(*) FROM quotes").Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(s scanner) (model.Quote, error) {
	var quote model.Quote
	var atNs int64
	if err := s.Scan(&quote.Currency, &quote.Price, &quote.Source, &atNs); err != nil {
		return model.Quote{}, err
	}
	quote.FetchedAt = time.Unix(0, atNs)
	return quote, nil
}
