// Package cmd implements the btcplan CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/btcplan/internal/cli"
	"github.com/theirongolddev/btcplan/internal/config"
	"github.com/theirongolddev/btcplan/internal/logging"
	"github.com/theirongolddev/btcplan/internal/model"
	"github.com/theirongolddev/btcplan/internal/pricefeed"
	"github.com/theirongolddev/btcplan/internal/projection"
	"github.com/theirongolddev/btcplan/internal/report"
	"github.com/theirongolddev/btcplan/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagUnits    string
	flagPrice    string
	flagGrowth   string
	flagDrawdown string
	flagCurrency string
	flagOffline  bool
	flagFormat   string
	flagDebug    bool
)

// Loaded once per invocation in PersistentPreRunE.
var (
	appCfg config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "btcplan",
	Short: "Bitcoin CAGR and drawdown planner",
	Long: "Project a bitcoin holding ten years forward: compound a yearly growth rate,\n" +
		"withdraw a yearly drawdown, and see the balance year by year.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runPlan,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagUnits, "btc", "b", "", "Bitcoin held (default 1)")
	pf.StringVarP(&flagPrice, "price", "p", "", "Price per bitcoin; skips the live quote")
	pf.StringVarP(&flagGrowth, "growth", "g", "", "Yearly growth rate in percent, 0-200 (default 30)")
	pf.StringVarP(&flagDrawdown, "drawdown", "w", "", "Yearly drawdown rate in percent, 0-100 (default 10)")
	pf.StringVarP(&flagCurrency, "currency", "c", "", "Quote currency (default from config)")
	pf.BoolVar(&flagOffline, "offline", false, "Never contact the price provider")
	pf.BoolVar(&flagDebug, "debug", false, "Verbose logging")

	rootCmd.Flags().StringVarP(&flagFormat, "format", "f", "table", "Output format: table, json or yaml")
}

func setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderWarning(err.Error()+"; using defaults"))
	}
	appCfg = cfg
	if err := cli.SetLocale(cfg.General.Locale); err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderWarning(err.Error()))
	}
	logger = logging.Console(flagDebug || config.Debug())
	return nil
}

// currency resolves --currency against the configured default.
func currency() (string, error) {
	if flagCurrency == "" {
		return appCfg.General.DefaultCurrency, nil
	}
	if !model.IsSupportedCurrency(flagCurrency) {
		return "", fmt.Errorf("unsupported currency %q (supported: %s)",
			flagCurrency, strings.Join(model.Currencies, ", "))
	}
	return model.NormalizeCurrency(flagCurrency), nil
}

func newSource() pricefeed.Source {
	return pricefeed.NewCoinGecko(appCfg.Price.ProviderURL, appCfg.Price.APIKey, appCfg.Timeout())
}

// openQuotes opens the history store. Failure is logged, not fatal.
func openQuotes() *store.Quotes {
	q, err := store.Open(store.DefaultPath())
	if err != nil {
		logger.Warn("quote history unavailable", zap.Error(err))
		return nil
	}
	return q
}

// fetchQuote gets a live quote, falling back to the newest recorded one
// when offline or when the provider fails.
func fetchQuote(ctx context.Context, ccy string, quotes *store.Quotes) (model.Quote, error) {
	var fetchErr error
	if !flagOffline {
		src := newSource()
		fctx, cancel := context.WithTimeout(ctx, appCfg.Timeout())
		price, err := src.Fetch(fctx, ccy)
		cancel()
		if err == nil {
			q := model.Quote{Currency: ccy, Price: price, Source: pricefeed.SourceName(src), FetchedAt: time.Now()}
			if quotes != nil && appCfg.Price.RecordHistory {
				if err := quotes.Record(q); err != nil {
					logger.Warn("recording quote", zap.Error(err))
				}
			}
			return q, nil
		}
		fetchErr = err
		logger.Warn("price fetch failed", zap.String("currency", ccy), zap.Error(err))
	}

	if quotes != nil {
		q, ok, err := quotes.Latest(ccy)
		if err != nil {
			return model.Quote{}, fmt.Errorf("reading quote history: %w", err)
		}
		if ok {
			q.Source += " (cached)"
			return q, nil
		}
	}
	if fetchErr != nil {
		return model.Quote{}, fmt.Errorf("fetching %s price: %w", ccy, fetchErr)
	}
	return model.Quote{}, errors.New("offline and no recorded quote for " + ccy)
}

// resolveFlagInput applies the projection flags over the defaults and
// reports whether --price was given.
func resolveFlagInput() (model.ProjectionInput, bool) {
	in := model.DefaultInput()
	if flagUnits != "" {
		in.Units = max(projection.Normalize(flagUnits), 0)
	}
	if flagGrowth != "" {
		in.GrowthPct = projection.Normalize(flagGrowth)
	}
	if flagDrawdown != "" {
		in.DrawdownPct = projection.Normalize(flagDrawdown)
	}
	if flagPrice != "" {
		in.Price = max(projection.Normalize(flagPrice), 0)
		return in, true
	}
	return in, false
}

// resolveInput builds the projection input from flags. Without --price the
// live (or last recorded) quote is used, then the built-in default.
func resolveInput(ctx context.Context, ccy string) (model.ProjectionInput, string) {
	in, manual := resolveFlagInput()
	if manual {
		return in, "manual"
	}

	quotes := openQuotes()
	if quotes != nil {
		defer func() { _ = quotes.Close() }()
	}
	q, err := fetchQuote(ctx, ccy, quotes)
	if err != nil {
		logger.Warn("using default price", zap.Error(err))
		return in, "default"
	}
	in.Price = q.Price
	return in, q.Source
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ccy, err := currency()
	if err != nil {
		return err
	}
	in, src := resolveInput(cmd.Context(), ccy)
	doc := report.NewDocument(in, ccy, src)

	switch strings.ToLower(flagFormat) {
	case "json":
		return report.WriteJSON(os.Stdout, doc)
	case "yaml", "yml":
		return report.WriteYAML(os.Stdout, doc)
	case "table", "":
		printPlan(doc)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", flagFormat)
	}
}

func printPlan(doc report.Document) {
	ccy := doc.Currency
	s := doc.Summary

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BTC PLAN  %s  %s", cli.FormatUnits(doc.Input.Units), ccy)))
	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Price", fmt.Sprintf("%s  (%s)", cli.FormatMoney(doc.Input.Price, ccy), doc.PriceSource)},
		{"Starting balance", cli.FormatMoney(s.StartingBalance, ccy)},
		{"Growth rate", cli.FormatPct(s.GrowthPct)},
		{"Drawdown rate", cli.FormatPct(s.DrawdownPct)},
		{"Net yearly rate", cli.FormatPercent(s.EffectiveRate)},
	}))
	fmt.Println()

	rows := make([][]string, 0, len(doc.Rows))
	for _, r := range doc.Rows {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Year),
			cli.FormatMoney(r.AfterGrowth, ccy),
			cli.FormatMoney(r.Gain, ccy),
			cli.FormatMoney(r.Drawdown, ccy),
			cli.FormatMoney(r.Balance, ccy),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:         "Projection",
		Headers:       []string{"Year", "After growth", "Gain", "Drawdown", "Balance"},
		Rows:          rows,
		EmphasizeLast: true,
	}))
	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Balance in 10 years", cli.FormatMoney(s.FinalBalance, ccy)},
		{"Total gain", cli.FormatMoney(s.TotalGain, ccy)},
		{"Total drawdown", cli.FormatMoney(s.TotalDrawdown, ccy)},
	}))
	fmt.Println()
}
