package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/btcplan/internal/model"
)

// Daily buckets quotes by local calendar day between since and until.
// Quotes must be oldest first (as store.History returns them). Every day in
// the range is present so gaps show as zero-count days; the result is
// most recent first. Zero bounds default to the first and last quote.
func Daily(quotes []model.Quote, since, until time.Time) []model.DailyQuote {
	if len(quotes) == 0 && (since.IsZero() || until.IsZero()) {
		return nil
	}
	if since.IsZero() {
		since = quotes[0].FetchedAt
	}
	if until.IsZero() {
		until = quotes[len(quotes)-1].FetchedAt
	}

	dayMap := make(map[string]*model.DailyQuote)

	for _, q := range quotes {
		if q.FetchedAt.IsZero() || q.FetchedAt.Before(since) || q.FetchedAt.After(until) {
			continue
		}
		dayKey := q.FetchedAt.Local().Format("2006-01-02")
		dq, ok := dayMap[dayKey]
		if !ok {
			t, _ := time.ParseInLocation("2006-01-02", dayKey, time.Local)
			dq = &model.DailyQuote{Date: t, Currency: q.Currency, Open: q.Price, High: q.Price, Low: q.Price}
			dayMap[dayKey] = dq
		}

		dq.High = max(dq.High, q.Price)
		dq.Low = min(dq.Low, q.Price)
		dq.Close = q.Price
		dq.Count++
	}

	// Fill in every day in the range.
	day := startOfDay(since)
	end := startOfDay(until)
	for !day.After(end) {
		dayKey := day.Format("2006-01-02")
		if _, ok := dayMap[dayKey]; !ok {
			dayMap[dayKey] = &model.DailyQuote{Date: day}
		}
		day = day.AddDate(0, 0, 1)
	}

	days := make([]model.DailyQuote, 0, len(dayMap))
	for _, dq := range dayMap {
		days = append(days, *dq)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
