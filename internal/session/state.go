// Package session holds the planner's view state for a single interactive
// session: the four inputs, the selected currency, and the derived rows.
package session

import (
	"time"

	"github.com/theirongolddev/btcplan/internal/model"
	"github.com/theirongolddev/btcplan/internal/projection"
)

// State is owned by one view. It is not safe for concurrent use; the TUI
// mutates it from its update loop only.
type State struct {
	input    model.ProjectionInput
	currency string
	rows     []model.YearRow
	version  uint64

	priceGen    uint64
	priceSource string
	priceAt     time.Time
}

// New returns a state seeded with the default inputs.
func New(currency string) *State {
	s := &State{
		input:    model.DefaultInput(),
		currency: model.NormalizeCurrency(currency),
		priceGen: 1,
	}
	s.recompute()
	return s
}

// Input returns the current inputs.
func (s *State) Input() model.ProjectionInput { return s.input }

// Currency returns the selected currency code.
func (s *State) Currency() string { return s.currency }

// Rows returns the projection for the current inputs. The slice is shared;
// callers must not modify it.
func (s *State) Rows() []model.YearRow { return s.rows }

// Summary returns the aggregate figures for the current inputs.
func (s *State) Summary() model.ProjectionSummary {
	return projection.Summarize(s.input, s.rows)
}

// Version increases on every change to inputs or currency.
func (s *State) Version() uint64 { return s.version }

// PriceGen is the token a price fetch must carry to be applied.
func (s *State) PriceGen() uint64 { return s.priceGen }

// PriceOrigin reports where the current price came from and when.
// The source is empty while the price is user-entered or the default.
func (s *State) PriceOrigin() (source string, at time.Time) {
	return s.priceSource, s.priceAt
}

// SetUnits sets the unit count from raw user input.
func (s *State) SetUnits(raw any) {
	s.input.Units = nonNegative(projection.Normalize(raw))
	s.recompute()
}

// SetPrice sets the price per unit from raw user input. A typed price
// replaces any fetched one until the next accepted refresh.
func (s *State) SetPrice(raw any) {
	s.input.Price = nonNegative(projection.Normalize(raw))
	s.priceSource = ""
	s.priceAt = time.Time{}
	s.recompute()
}

// SetGrowth sets the growth percent from raw user input.
func (s *State) SetGrowth(raw any) {
	s.input.GrowthPct = projection.Normalize(raw)
	s.recompute()
}

// SetDrawdown sets the drawdown percent from raw user input.
func (s *State) SetDrawdown(raw any) {
	s.input.DrawdownPct = projection.Normalize(raw)
	s.recompute()
}

// StepGrowth moves growth to the adjacent selector step.
func (s *State) StepGrowth(step int) {
	s.SetGrowth(model.NextPercentStep(s.input.GrowthPct, step))
}

// StepDrawdown moves drawdown to the adjacent selector step.
func (s *State) StepDrawdown(step int) {
	s.SetDrawdown(model.NextPercentStep(s.input.DrawdownPct, step))
}

// SetCurrency selects a currency and returns the new price generation.
// Fetches started under an earlier generation will be rejected.
func (s *State) SetCurrency(code string) uint64 {
	s.currency = model.NormalizeCurrency(code)
	s.priceGen++
	s.version++
	return s.priceGen
}

// StepCurrency moves to the adjacent currency and returns the new generation.
func (s *State) StepCurrency(step int) uint64 {
	return s.SetCurrency(model.NextCurrency(s.currency, step))
}

// Invalidate bumps the price generation without changing currency, so that
// fetches already in flight are dropped (used on teardown).
func (s *State) Invalidate() {
	s.priceGen++
}

// ApplyQuote applies a fetched price if it was started under the current
// generation for the current currency. It reports whether it was applied.
func (s *State) ApplyQuote(gen uint64, q model.Quote) bool {
	if gen != s.priceGen || model.NormalizeCurrency(q.Currency) != s.currency {
		return false
	}
	if !(q.Price > 0) {
		return false
	}
	s.input.Price = q.Price
	s.priceSource = q.Source
	s.priceAt = q.FetchedAt
	s.recompute()
	return true
}

func (s *State) recompute() {
	s.rows = projection.ProjectInput(s.input)
	s.version++
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
