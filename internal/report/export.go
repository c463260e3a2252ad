// Package report renders a projection as JSON, YAML, PNG and PDF.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/btcplan/internal/model"
	"github.com/theirongolddev/btcplan/internal/projection"
)

// Document is the exported form of one projection.
type Document struct {
	GeneratedAt time.Time               `json:"generated_at" yaml:"generated_at"`
	Currency    string                  `json:"currency" yaml:"currency"`
	PriceSource string                  `json:"price_source,omitempty" yaml:"price_source,omitempty"`
	Input       model.ProjectionInput   `json:"input" yaml:"input"`
	Summary     model.ProjectionSummary `json:"summary" yaml:"summary"`
	Rows        []model.YearRow         `json:"rows" yaml:"rows"`
}

// NewDocument projects in and bundles the result for export.
func NewDocument(in model.ProjectionInput, currency, priceSource string) Document {
	rows := projection.ProjectInput(in)
	return Document{
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Currency:    model.NormalizeCurrency(currency),
		PriceSource: priceSource,
		Input:       in,
		Summary:     projection.Summarize(in, rows),
		Rows:        rows,
	}
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// WriteYAML writes doc as YAML.
func WriteYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}
