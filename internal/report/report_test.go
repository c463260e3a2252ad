package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/btcplan/internal/model"
)

func testDoc() Document {
	return NewDocument(model.ProjectionInput{Units: 1, Price: 110000, GrowthPct: 30, DrawdownPct: 10}, "eur", "coingecko")
}

func TestNewDocument(t *testing.T) {
	doc := testDoc()

	if doc.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", doc.Currency)
	}
	if len(doc.Rows) != model.Horizon+1 {
		t.Fatalf("len(Rows) = %d, want %d", len(doc.Rows), model.Horizon+1)
	}
	if doc.Summary.StartingBalance != 110000 {
		t.Errorf("StartingBalance = %v, want 110000", doc.Summary.StartingBalance)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, testDoc()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var got Document
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(got.Rows) != 11 {
		t.Fatalf("len(Rows) = %d, want 11", len(got.Rows))
	}
	if got.Rows[1].Balance < 139699.99 || got.Rows[1].Balance > 139700.01 {
		t.Errorf("Rows[1].Balance = %v, want 139700", got.Rows[1].Balance)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(&buf, testDoc()); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	var got struct {
		Currency string           `yaml:"currency"`
		Rows     []map[string]any `yaml:"rows"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if got.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", got.Currency)
	}
	if len(got.Rows) != 11 {
		t.Fatalf("len(rows) = %d, want 11", len(got.Rows))
	}
	if _, ok := got.Rows[0]["after_growth"]; !ok {
		t.Errorf("row keys = %v, want after_growth", got.Rows[0])
	}
}

func TestChartPNG(t *testing.T) {
	png, err := ChartPNG(testDoc())
	if err != nil {
		t.Fatalf("ChartPNG: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("output does not start with the PNG signature")
	}
}

func TestChartPNG_NoRows(t *testing.T) {
	if _, err := ChartPNG(Document{}); err == nil {
		t.Fatal("ChartPNG with no rows should fail")
	}
}

func TestPDF(t *testing.T) {
	for _, ccy := range []string{"USD", "EUR", "GBP", "JPY", "CHF"} {
		t.Run(ccy, func(t *testing.T) {
			doc := testDoc()
			doc.Currency = ccy
			out, err := PDF(doc)
			if err != nil {
				t.Fatalf("PDF: %v", err)
			}
			if !bytes.HasPrefix(out, []byte("%PDF-")) {
				t.Fatalf("output does not start with %%PDF-")
			}
			if !bytes.Contains(out, []byte("%%EOF")) {
				t.Fatalf("output has no %%%%EOF trailer")
			}
		})
	}
}
