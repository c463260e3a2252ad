package projection

import (
	"math"

	"github.com/theirongolddev/btcplan/internal/model"
)

// Rate bounds in percent. The selectors only offer 0..80, but direct entry
// is allowed up to these limits.
const (
	MaxGrowthPct   = 200.0
	MaxDrawdownPct = 100.0
)

// Clamp saturates v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}

// GrowthFraction clamps a growth percentage to [0, 200] and returns it as a fraction.
func GrowthFraction(pct float64) float64 {
	return Clamp(pct, 0, MaxGrowthPct) / 100
}

// DrawdownFraction clamps a drawdown percentage to [0, 100] and returns it as a fraction.
func DrawdownFraction(pct float64) float64 {
	return Clamp(pct, 0, MaxDrawdownPct) / 100
}

// Project computes the seed row plus model.Horizon yearly rows.
//
// Each year grows the previous balance, then takes the drawdown as a share of
// that year's gain (not of the grown balance). Negative balances are not
// rejected; they compound like any other value.
func Project(startingBalance, growthPct, drawdownPct float64) []model.YearRow {
	g := GrowthFraction(growthPct)
	d := DrawdownFraction(drawdownPct)

	rows := make([]model.YearRow, 0, model.Horizon+1)
	rows = append(rows, model.YearRow{
		Year:        0,
		AfterGrowth: startingBalance,
		Balance:     startingBalance,
	})

	prev := startingBalance
	for year := 1; year <= model.Horizon; year++ {
		gain := prev * g
		afterGrowth := prev + gain
		drawdown := gain * d
		balance := afterGrowth - drawdown

		rows = append(rows, model.YearRow{
			Year:        year,
			AfterGrowth: afterGrowth,
			Gain:        gain,
			Drawdown:    drawdown,
			Balance:     balance,
		})
		prev = balance
	}
	return rows
}

// ProjectInput runs Project for a full input set.
func ProjectInput(in model.ProjectionInput) []model.YearRow {
	return Project(in.StartingBalance(), in.GrowthPct, in.DrawdownPct)
}

// ClosedFormBalance returns balance_n = balance_0 * (1 + g*(1-d))^n.
func ClosedFormBalance(startingBalance, growthPct, drawdownPct float64, year int) float64 {
	return startingBalance * math.Pow(1+EffectiveRate(growthPct, drawdownPct), float64(year))
}

// EffectiveRate is the net annual rate g*(1-d) after drawdown, as a fraction.
func EffectiveRate(growthPct, drawdownPct float64) float64 {
	return GrowthFraction(growthPct) * (1 - DrawdownFraction(drawdownPct))
}

// Summarize collects the headline figures for a projection. The reported
// rates are the clamped values the projection actually used.
func Summarize(in model.ProjectionInput, rows []model.YearRow) model.ProjectionSummary {
	s := model.ProjectionSummary{
		StartingBalance: in.StartingBalance(),
		FinalBalance:    in.StartingBalance(),
		GrowthPct:       Clamp(in.GrowthPct, 0, MaxGrowthPct),
		DrawdownPct:     Clamp(in.DrawdownPct, 0, MaxDrawdownPct),
		EffectiveRate:   EffectiveRate(in.GrowthPct, in.DrawdownPct),
	}
	for _, r := range rows {
		s.TotalGain += r.Gain
		s.TotalDrawdown += r.Drawdown
	}
	if len(rows) > 0 {
		s.FinalBalance = rows[len(rows)-1].Balance
	}
	return s
}
