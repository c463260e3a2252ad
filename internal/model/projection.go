// Package model defines domain types for btcplan projections and price quotes.
package model

// Horizon is the number of projected years after the seed row.
const Horizon = 10

// Starting values for a fresh planner.
const (
	DefaultUnits       = 1
	DefaultPrice       = 110000
	DefaultGrowthPct   = 30
	DefaultDrawdownPct = 10
)

// DefaultInput returns the planner's starting values.
func DefaultInput() ProjectionInput {
	return ProjectionInput{
		Units:       DefaultUnits,
		Price:       DefaultPrice,
		GrowthPct:   DefaultGrowthPct,
		DrawdownPct: DefaultDrawdownPct,
	}
}

// ProjectionInput holds the four user-editable values behind a projection.
// Percent fields are stored as entered; the engine clamps and converts them.
type ProjectionInput struct {
	Units       float64 `json:"units" yaml:"units"`
	Price       float64 `json:"price" yaml:"price"`
	GrowthPct   float64 `json:"growth_pct" yaml:"growth_pct"`
	DrawdownPct float64 `json:"drawdown_pct" yaml:"drawdown_pct"`
}

// StartingBalance is units held times price per unit.
func (in ProjectionInput) StartingBalance() float64 {
	return in.Units * in.Price
}

// YearRow is one line of the projection table.
type YearRow struct {
	Year        int     `json:"year" yaml:"year"`
	AfterGrowth float64 `json:"after_growth" yaml:"after_growth"`
	Gain        float64 `json:"gain" yaml:"gain"`
	Drawdown    float64 `json:"drawdown" yaml:"drawdown"`
	Balance     float64 `json:"balance" yaml:"balance"`
}

// ProjectionSummary holds the aggregate figures shown above the table.
type ProjectionSummary struct {
	StartingBalance float64 `json:"starting_balance" yaml:"starting_balance"`
	FinalBalance    float64 `json:"final_balance" yaml:"final_balance"`
	TotalGain       float64 `json:"total_gain" yaml:"total_gain"`
	TotalDrawdown   float64 `json:"total_drawdown" yaml:"total_drawdown"`
	GrowthPct       float64 `json:"growth_pct" yaml:"growth_pct"`
	DrawdownPct     float64 `json:"drawdown_pct" yaml:"drawdown_pct"`
	EffectiveRate   float64 `json:"effective_rate" yaml:"effective_rate"` // g*(1-d) as a fraction
}
