/*
rates.go - Rate schedule implementations

PURPOSE:
  Implements ledger.RateSchedule for the rental patterns partners actually
  use. Rates are daily, per unit, and may depend on the partner's current
  aggregate open balance.

SCHEDULE TYPES:
  FlatRate:
    - One rate regardless of volume
    - Used for small customers with a negotiated fixed fee

  TieredRate:
    - Per-unit rate drops as aggregate holdings cross volume thresholds
    - Used for the high-volume rental partner

TIER BOUNDARY CONVENTION:
  A tier applies when the aggregate balance is >= its minimum; the highest
  matching tier wins. Holding exactly 3000 units selects the 3000 tier
  (the cheaper of the two adjacent rates); holding 2999 does not.

EXAMPLE:
  rates := &TieredRate{
      Base: dec("1.25"),
      Tiers: []Tier{
          {MinBalance: 2000, Rate: dec("1.19")},
          {MinBalance: 3000, Rate: dec("1.14")},
      },
  }
  rates.DailyRate(1999) // 1.25
  rates.DailyRate(2500) // 1.19
  rates.DailyRate(3000) // 1.14

SEE ALSO:
  - ledger/accrual.go: Consumes these via ledger.RateSchedule
  - policies.go:       Pre-built partner configurations
*/
package partners

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FLAT RATE
// =============================================================================

// FlatRate charges the same per-unit daily rate at any volume.
type FlatRate struct {
	Rate decimal.Decimal
}

func (f *FlatRate) DailyRate(aggregateBalance int) decimal.Decimal {
	return f.Rate
}

// =============================================================================
// TIERED RATE
// =============================================================================

// Tier is one volume threshold. The tier applies when the aggregate
// balance is >= MinBalance.
type Tier struct {
	MinBalance int
	Rate       decimal.Decimal
}

// TieredRate drops the per-unit rate as aggregate holdings grow.
// Base applies below the lowest tier.
type TieredRate struct {
	Base  decimal.Decimal
	Tiers []Tier
}

func (t *TieredRate) DailyRate(aggregateBalance int) decimal.Decimal {
	rate := t.Base

	tiers := make([]Tier, len(t.Tiers))
	copy(tiers, t.Tiers)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinBalance < tiers[j].MinBalance })

	for _, tier := range tiers {
		if aggregateBalance >= tier.MinBalance {
			rate = tier.Rate
		}
	}
	return rate
}
