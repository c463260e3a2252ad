package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/theirongolddev/btcplan/internal/cli"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// tableCols are the projection table columns and their widths in mm.
var tableCols = []struct {
	title string
	width float64
}{
	{"Year", 20},
	{"After growth", 45},
	{"Gain", 40},
	{"Drawdown", 35},
	{"Balance", 40},
}

// PDF renders doc as a one-page A4 report: summary figures then the
// projection table.
func PDF(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle("BTC CAGR & drawdown plan", true)
	pdf.SetCreator("btcplan", true)

	// Core fonts are cp1252; this maps currency symbols such as € and £.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(v float64) string { return tr(cli.FormatMoney(v, doc.Currency)) }

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(247, 147, 26)
	pdf.CellFormat(contentWidth, 12, "BTC CAGR & Drawdown Planner", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 116, 139)
	generated := "Generated " + doc.GeneratedAt.Format("2 January 2006 15:04 MST")
	if doc.PriceSource != "" {
		generated += ", price from " + doc.PriceSource
	}
	pdf.CellFormat(contentWidth, 6, generated, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Summary block.
	summary := [][2]string{
		{"Units held", cli.FormatUnits(doc.Input.Units)},
		{"Price per unit", money(doc.Input.Price)},
		{"Starting balance", money(doc.Summary.StartingBalance)},
		{"Growth rate", cli.FormatPct(doc.Summary.GrowthPct)},
		{"Drawdown rate (of gain)", cli.FormatPct(doc.Summary.DrawdownPct)},
		{"Effective annual rate", cli.FormatPercent(doc.Summary.EffectiveRate)},
		{"Total drawdown taken", money(doc.Summary.TotalDrawdown)},
		{"Balance after 10 years", money(doc.Summary.FinalBalance)},
	}
	pdf.SetDrawColor(226, 232, 240)
	pdf.SetFillColor(248, 250, 252)
	pdf.SetTextColor(15, 23, 42)
	for _, kv := range summary {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(contentWidth/2, 7, kv[0], "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentWidth/2, 7, kv[1], "1", 1, "R", true, 0, "")
	}
	pdf.Ln(8)

	// Projection table.
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(247, 147, 26)
	pdf.SetTextColor(255, 255, 255)
	for _, c := range tableCols {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(15, 23, 42)
	for i, r := range doc.Rows {
		fill := i%2 == 1
		pdf.SetFillColor(255, 247, 237)
		pdf.SetFont("Helvetica", "", 10)
		cells := []string{
			fmt.Sprintf("%d", r.Year),
			money(r.AfterGrowth),
			money(r.Gain),
			money(r.Drawdown),
			money(r.Balance),
		}
		for j, c := range tableCols {
			align := "R"
			if j == 0 {
				align = "C"
			}
			if j == len(tableCols)-1 {
				pdf.SetFont("Helvetica", "B", 10)
			}
			pdf.CellFormat(c.width, 7, cells[j], "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 116, 139)
	pdf.MultiCell(contentWidth, 5,
		"Each year the balance grows by the growth rate, then the drawdown rate is taken from that year's gain. "+
			"Figures are illustrative and not financial advice.", "", "L", false)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("building pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}
