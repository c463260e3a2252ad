package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/btcplan/internal/cli"
	"github.com/theirongolddev/btcplan/internal/model"
	"github.com/theirongolddev/btcplan/internal/pipeline"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagPriceJSON bool
	flagPriceAll  bool
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Fetch and print the current bitcoin price",
	RunE:  runPrice,
}

func init() {
	priceCmd.Flags().BoolVar(&flagPriceJSON, "json", false, "Print the quote as JSON")
	priceCmd.Flags().BoolVarP(&flagPriceAll, "all", "a", false, "Show the price in every supported currency")
	rootCmd.AddCommand(priceCmd)
}

func runPrice(cmd *cobra.Command, _ []string) error {
	if flagPriceAll {
		return runPriceBoard(cmd)
	}
	ccy, err := currency()
	if err != nil {
		return err
	}

	quotes := openQuotes()
	if quotes != nil {
		defer func() { _ = quotes.Close() }()
	}
	q, err := fetchQuote(cmd.Context(), ccy, quotes)
	if err != nil {
		return err
	}

	if flagPriceJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(q)
	}

	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"BTC/" + q.Currency, cli.FormatMoney(q.Price, q.Currency)},
		{"Source", q.Source},
		{"Fetched", humanize.Time(q.FetchedAt)},
	}))
	fmt.Println()
	return nil
}

func runPriceBoard(cmd *cobra.Command) error {
	if flagOffline {
		return errors.New("--all needs the price provider; drop --offline")
	}

	entries := pipeline.FetchBoard(cmd.Context(), newSource(), model.Currencies, func(current, total int) {
		if !flagPriceJSON {
			fmt.Fprintf(os.Stderr, "\r  Fetching [%d/%d]", current, total)
		}
	})
	if !flagPriceJSON {
		fmt.Fprint(os.Stderr, "\r                    \r")
	}

	quotes := openQuotes()
	if quotes != nil {
		defer func() { _ = quotes.Close() }()
	}

	var ok []model.Quote
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		if e.Err != nil {
			logger.Warn("price fetch failed", zap.String("currency", e.Quote.Currency), zap.Error(e.Err))
			rows = append(rows, []string{e.Quote.Currency, "-", e.Err.Error()})
			continue
		}
		ok = append(ok, e.Quote)
		rows = append(rows, []string{e.Quote.Currency, cli.FormatMoney(e.Quote.Price, e.Quote.Currency), ""})
		if quotes != nil && appCfg.Price.RecordHistory {
			if err := quotes.Record(e.Quote); err != nil {
				logger.Warn("recording quote", zap.Error(err))
			}
		}
	}
	if len(ok) == 0 {
		return errors.New("no prices fetched")
	}

	if flagPriceJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ok)
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "BTC price board",
		Headers: []string{"Currency", "Price", "Error"},
		Rows:    rows,
	}))
	return nil
}
