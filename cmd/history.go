package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/btcplan/internal/cli"
	"github.com/theirongolddev/btcplan/internal/model"
	"github.com/theirongolddev/btcplan/internal/pipeline"
	"github.com/theirongolddev/btcplan/internal/store"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	flagHistorySince time.Duration
	flagHistoryLimit int
	flagHistoryPrune time.Duration
	flagHistoryDaily bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded price quotes",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().DurationVar(&flagHistorySince, "since", 7*24*time.Hour, "How far back to look")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Rows to list (newest first)")
	historyCmd.Flags().DurationVar(&flagHistoryPrune, "prune", 0, "Delete quotes older than this before listing")
	historyCmd.Flags().BoolVar(&flagHistoryDaily, "daily", false, "List one open/high/low/close row per day")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	if flagHistoryLimit <= 0 {
		return errors.New("--limit must be positive")
	}
	ccy, err := currency()
	if err != nil {
		return err
	}

	quotes, err := store.Open(store.DefaultPath())
	if err != nil {
		return fmt.Errorf("opening quote store: %w", err)
	}
	defer func() { _ = quotes.Close() }()

	if flagHistoryPrune > 0 {
		n, err := quotes.Prune(time.Now().Add(-flagHistoryPrune))
		if err != nil {
			return fmt.Errorf("pruning quotes: %w", err)
		}
		fmt.Printf("  Pruned %s quotes\n", cli.FormatNumber(n))
	}

	var since time.Time
	if flagHistorySince > 0 {
		since = time.Now().Add(-flagHistorySince)
	}
	hist, err := quotes.History(ccy, since, 0)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if len(hist) == 0 {
		fmt.Printf("\n  No %s quotes recorded in that window.\n", ccy)
		fmt.Println("  Run `btcplan price` or `btcplan daemon` to start recording.")
		return nil
	}

	stored := "unknown"
	if n, err := quotes.Count(); err == nil {
		stored = cli.FormatNumber(int64(n)) + " quotes, all currencies"
	}

	prices := make([]float64, len(hist))
	lo, hi := hist[0].Price, hist[0].Price
	for i, q := range hist {
		prices[i] = q.Price
		lo, hi = min(lo, q.Price), max(hi, q.Price)
	}
	first, last := hist[0], hist[len(hist)-1]

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BTC/%s  %d quotes", ccy, len(hist))))
	fmt.Println()
	fmt.Printf("  %s\n\n", cli.RenderSparkline(prices))
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Latest", cli.FormatMoney(last.Price, ccy)},
		{"Low", cli.FormatMoney(lo, ccy)},
		{"High", cli.FormatMoney(hi, ccy)},
		{"Change", fmt.Sprintf("%+.2f%% since %s", (last.Price/first.Price-1)*100, humanize.Time(first.FetchedAt))},
		{"Stored", stored},
	}))
	fmt.Println()

	if flagHistoryDaily {
		printDaily(pipeline.Daily(hist, since, time.Now()), ccy)
		return nil
	}

	limit := flagHistoryLimit
	rows := make([][]string, 0, min(limit, len(hist)))
	for i := len(hist) - 1; i >= 0 && len(rows) < limit; i-- {
		q := hist[i]
		change := ""
		if i > 0 && hist[i-1].Price > 0 {
			change = fmt.Sprintf("%+.2f%%", (q.Price/hist[i-1].Price-1)*100)
		}
		rows = append(rows, []string{
			q.FetchedAt.Local().Format("2006-01-02 15:04"),
			cli.FormatMoney(q.Price, ccy),
			change,
			q.Source,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Recent quotes",
		Headers: []string{"Time", "Price", "Change", "Source"},
		Rows:    rows,
	}))
	return nil
}

func printDaily(days []model.DailyQuote, ccy string) {
	if len(days) > flagHistoryLimit {
		days = days[:flagHistoryLimit]
	}
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		if d.Count == 0 {
			rows = append(rows, []string{d.Date.Format("Mon Jan 02"), "-", "-", "-", "-", "0"})
			continue
		}
		rows = append(rows, []string{
			d.Date.Format("Mon Jan 02"),
			cli.FormatMoney(d.Open, ccy),
			cli.FormatMoney(d.High, ccy),
			cli.FormatMoney(d.Low, ccy),
			cli.FormatMoney(d.Close, ccy),
			cli.FormatNumber(int64(d.Count)),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Daily",
		Headers: []string{"Date", "Open", "High", "Low", "Close", "Quotes"},
		Rows:    rows,
	}))
}
