/*
predict.go - Burn-rate stock depletion forecasting

PURPOSE:
  Projects days-until-empty per branch and pallet type from trailing
  30-day movement averages and the confirmed stock snapshot.

ALGORITHM:
  Window: the 30 days ending at asOf, COMPLETED rows only.
    avgIn    = totalIn / 30
    avgOut   = totalOut / 30
    burnRate = avgOut - avgIn
  burnRate <= 0 means stock is flat or growing: no risk, no result.
  Otherwise daysUntilEmpty = floor(currentStock / burnRate).

REPORTING:
  Critical < 3 days, Warning < 7, else Safe. Only pairs with
  daysUntilEmpty < 14 (or Critical) are surfaced, so distant low-confidence
  forecasts don't flood the output. recommendedReplenishment covers two
  weeks of burn, rounded to the nearest unit.

  The burnRate <= 0 guard structurally avoids division by zero;
  zero-activity branches are simply omitted, never an error.
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PREDICTION
// =============================================================================

type PredictionStatus string

const (
	PredictionCritical PredictionStatus = "critical" // < 3 days of stock left
	PredictionWarning  PredictionStatus = "warning"  // < 7 days
	PredictionSafe     PredictionStatus = "safe"
)

const (
	trailingWindowDays  = 30
	surfaceHorizonDays  = 14
	replenishBufferDays = 14
)

// Prediction is a single branch/pallet depletion forecast.
type Prediction struct {
	BranchID       EntityID
	PalletID       PalletID
	CurrentStock   int
	AvgDailyIn     decimal.Decimal
	AvgDailyOut    decimal.Decimal
	BurnRate       decimal.Decimal // avgOut - avgIn, positive when depleting
	DaysUntilEmpty int
	Status         PredictionStatus

	// Two weeks of burn, rounded to the nearest whole pallet.
	RecommendedReplenishment int
}

// PredictDepletion forecasts depletion for one branch/pallet pair.
// Returns nil when there is no depletion risk or the pair is outside the
// surfacing horizon.
func PredictDepletion(txs []Transaction, snapshot StockSnapshot, branch EntityID, pallet PalletID, asOf TimePoint) *Prediction {
	windowStart := asOf.AddDays(-trailingWindowDays)

	totalIn, totalOut := 0, 0
	for _, tx := range txs {
		if tx.Status != StatusCompleted || tx.PalletID != pallet {
			continue
		}
		// Half-open window (windowStart, asOf]: exactly 30 days of rows
		// feed the 30-day divisor.
		if tx.Date.BeforeOrEqual(windowStart) || tx.Date.After(asOf) {
			continue
		}
		if tx.Dest == branch {
			totalIn += tx.Qty
		}
		if tx.Source == branch {
			totalOut += tx.Qty
		}
	}

	window := decimal.NewFromInt(trailingWindowDays)
	avgIn := decimal.NewFromInt(int64(totalIn)).Div(window)
	avgOut := decimal.NewFromInt(int64(totalOut)).Div(window)
	burnRate := avgOut.Sub(avgIn)

	if burnRate.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	stock := snapshot.Qty(branch, pallet)
	daysUntilEmpty := int(decimal.NewFromInt(int64(stock)).Div(burnRate).Floor().IntPart())

	status := PredictionSafe
	switch {
	case daysUntilEmpty < 3:
		status = PredictionCritical
	case daysUntilEmpty < 7:
		status = PredictionWarning
	}

	if daysUntilEmpty >= surfaceHorizonDays && status != PredictionCritical {
		return nil
	}

	return &Prediction{
		BranchID:                 branch,
		PalletID:                 pallet,
		CurrentStock:             stock,
		AvgDailyIn:               avgIn,
		AvgDailyOut:              avgOut,
		BurnRate:                 burnRate,
		DaysUntilEmpty:           daysUntilEmpty,
		Status:                   status,
		RecommendedReplenishment: int(burnRate.Mul(decimal.NewFromInt(replenishBufferDays)).Round(0).IntPart()),
	}
}

// PredictAll runs the predictor over every branch/pallet pair in the
// snapshot, ordered by branch then pallet for deterministic output.
func PredictAll(txs []Transaction, snapshot StockSnapshot, asOf TimePoint) []Prediction {
	branches := make([]EntityID, 0, len(snapshot))
	for b := range snapshot {
		branches = append(branches, b)
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i] < branches[j] })

	var out []Prediction
	for _, branch := range branches {
		pallets := make([]PalletID, 0, len(snapshot[branch]))
		for p := range snapshot[branch] {
			pallets = append(pallets, p)
		}
		sort.Slice(pallets, func(i, j int) bool { return pallets[i] < pallets[j] })

		for _, pallet := range pallets {
			if p := PredictDepletion(txs, snapshot, branch, pallet, asOf); p != nil {
				out = append(out, *p)
			}
		}
	}
	return out
}
