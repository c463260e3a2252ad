package report

import (
	"fmt"
	"strconv"

	charts "github.com/vicanso/go-charts/v2"

	"github.com/theirongolddev/btcplan/internal/cli"
)

// Chart dimensions in pixels.
const (
	chartWidth  = 900
	chartHeight = 500
)

// ChartPNG renders the balance and after-growth lines by year as a PNG.
func ChartPNG(doc Document) ([]byte, error) {
	if len(doc.Rows) == 0 {
		return nil, fmt.Errorf("rendering chart: no rows")
	}

	years := make([]string, len(doc.Rows))
	balance := make([]float64, len(doc.Rows))
	afterGrowth := make([]float64, len(doc.Rows))
	for i, r := range doc.Rows {
		years[i] = strconv.Itoa(r.Year)
		balance[i] = r.Balance
		afterGrowth[i] = r.AfterGrowth
	}

	title := fmt.Sprintf("BTC balance projection (%s)", doc.Currency)
	subtitle := fmt.Sprintf("%s growth, %s drawdown, start %s",
		cli.FormatPct(doc.Input.GrowthPct),
		cli.FormatPct(doc.Input.DrawdownPct),
		cli.FormatMoney(doc.Summary.StartingBalance, doc.Currency),
	)

	p, err := charts.LineRender(
		[][]float64{afterGrowth, balance},
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        years,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: []string{"After growth", "Balance"},
			Top:  charts.PositionBottom,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(chartWidth),
		charts.HeightOptionFunc(chartHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding chart: %w", err)
	}
	return buf, nil
}
