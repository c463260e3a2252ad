// Package pipeline fans price lookups out over a worker pool and rolls
// recorded quotes up into daily summaries.
package pipeline

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theirongolddev/btcplan/internal/model"
	"github.com/theirongolddev/btcplan/internal/pricefeed"
)

// maxWorkers caps concurrent requests so a full board stays under public
// API rate limits.
const maxWorkers = 4

// BoardEntry is the outcome of one currency lookup.
type BoardEntry struct {
	Quote model.Quote
	Err   error
}

// ProgressFunc is called as lookups complete.
// current is the number of currencies done so far, total is the total count.
type ProgressFunc func(current, total int)

// FetchBoard looks up the price in every currency using a bounded worker
// pool. Entries come back in the order of currencies; failures are
// reported per entry.
func FetchBoard(ctx context.Context, src pricefeed.Source, currencies []string, progressFn ProgressFunc) []BoardEntry {
	if len(currencies) == 0 {
		return nil
	}

	numWorkers := min(runtime.GOMAXPROCS(0), maxWorkers, len(currencies))
	if numWorkers < 1 {
		numWorkers = 1
	}
	name := pricefeed.SourceName(src)

	work := make(chan int, len(currencies))
	results := make([]BoardEntry, len(currencies))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range currencies {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				ccy := model.NormalizeCurrency(currencies[idx])
				entry := BoardEntry{Quote: model.Quote{Currency: ccy, Source: name}}
				if err := ctx.Err(); err != nil {
					entry.Err = err
				} else {
					entry.Quote.Price, entry.Err = src.Fetch(ctx, ccy)
					entry.Quote.FetchedAt = time.Now()
				}
				results[idx] = entry

				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(currencies))
				}
			}
		}()
	}

	wg.Wait()
	return results
}
