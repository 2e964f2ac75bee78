/*
accrual.go - Rent accrual and per-partner aging aggregation

PURPOSE:
  Applies partner-specific grace periods and daily rates to open loans and
  rolls them up into the aging/rental summary the read side consumes.

RATE SELECTION:
  The rate comes from the partner's RateSchedule evaluated against the
  partner's CURRENT AGGREGATE open balance, not the individual loan. A
  tiered schedule drops the per-unit rate as aggregate holdings cross
  volume thresholds; a flat schedule ignores volume entirely. Partners
  without a schedule (or absent from the config) are balance-only:
  rent stays zero, loans still age.

ACCRUAL:
  overdueDays = max(0, ageDays - gracePeriod)
  accruedRent = overdueDays * rate * qty          (exact decimal)
  Rounding to 2dp happens only at reporting (Loan.RoundedRent), never
  while accumulating.

AGING BUCKETS:
  dangerCount  = sum(qty) where ageDays > 10
  warningCount = sum(qty) where 7 < ageDays <= 10
  avgAge       = round(sum(ageDays*qty) / sum(qty))   (quantity-weighted)

SEE ALSO:
  - match.go:           Produces the loans accrued here
  - partners/rates.go:  Flat and tiered RateSchedule implementations
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Aging thresholds in days.
const (
	warningAgeDays = 7
	dangerAgeDays  = 10
)

// =============================================================================
// PER-LOAN ACCRUAL
// =============================================================================

// AccrueRent returns a copy of the loan with overdue days, rate and
// accrued rent filled in. The aggregate balance is the partner's current
// open position across pallet types, used only for tier selection.
func AccrueRent(loan Loan, partner Partner, aggregateBalance int) Loan {
	loan.OverdueDays = loan.AgeDays - partner.GracePeriod
	if loan.OverdueDays < 0 {
		loan.OverdueDays = 0
	}

	if partner.Rates == nil {
		loan.RentalRate = decimal.Zero
		loan.AccruedRent = decimal.Zero
		return loan
	}

	loan.RentalRate = partner.Rates.DailyRate(aggregateBalance)
	loan.AccruedRent = loan.RentalRate.
		Mul(decimal.NewFromInt(int64(loan.OverdueDays))).
		Mul(decimal.NewFromInt(int64(loan.Qty)))
	return loan
}

// =============================================================================
// PER-PARTNER AGGREGATION
// =============================================================================

// PartnerSummary aggregates a partner's open loans across pallet types.
type PartnerSummary struct {
	PartnerID   EntityID
	PartnerName string
	Balance     int // aggregate open position (tier selection input)
	OpenQty     int // sum of loan remainders; equals Balance when ledger is clean
	LoanCount   int
	TotalRent   decimal.Decimal // rounded to 2dp at this reporting boundary
	AvgAgeDays  int             // quantity-weighted, rounded to nearest
	DangerQty   int             // units aged > 10 days
	WarningQty  int             // units aged in (7, 10]
	AccruesRent bool
}

// AgingRentalSummary is the flat loan list plus per-partner rollups.
type AgingRentalSummary struct {
	AsOf        TimePoint
	Loans       []Loan
	Partners    []PartnerSummary
	TotalRent   decimal.Decimal
	Diagnostics []Diagnostic // malformed rows skipped during derivation
}

// BuildAgingSummary derives the full aging and rental picture for every
// configured partner. Input rows are validated first; bad rows are skipped
// and reported, never fatal. Partners are ordered by id so identical input
// yields byte-identical output.
func BuildAgingSummary(txs []Transaction, cfg PartnerConfig, asOf TimePoint) AgingRentalSummary {
	clean, diags := ValidateTransactions(txs)

	ids := make([]EntityID, 0, len(cfg))
	for id := range cfg {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	summary := AgingRentalSummary{
		AsOf:        asOf,
		TotalRent:   decimal.Zero,
		Diagnostics: diags,
	}

	for _, id := range ids {
		partner := cfg[id]
		pallets := partner.AllowedPallets
		if len(pallets) == 0 {
			pallets = PalletTypes(clean)
		}

		aggregate := AggregateBalance(clean, id, pallets)

		var partnerLoans []Loan
		for _, pallet := range pallets {
			for _, loan := range MatchLoans(clean, id, pallet, asOf) {
				partnerLoans = append(partnerLoans, AccrueRent(loan, partner, aggregate))
			}
		}
		if len(partnerLoans) == 0 && aggregate == 0 {
			continue
		}

		ps := summarizePartner(partner, aggregate, partnerLoans)
		summary.Partners = append(summary.Partners, ps)
		summary.Loans = append(summary.Loans, partnerLoans...)
		summary.TotalRent = summary.TotalRent.Add(ps.TotalRent)
	}
	return summary
}

func summarizePartner(partner Partner, aggregate int, loans []Loan) PartnerSummary {
	ps := PartnerSummary{
		PartnerID:   partner.ID,
		PartnerName: partner.Name,
		Balance:     aggregate,
		LoanCount:   len(loans),
		TotalRent:   decimal.Zero,
		AccruesRent: partner.Rates != nil,
	}

	weightedAge := 0
	for _, l := range loans {
		ps.OpenQty += l.Qty
		ps.TotalRent = ps.TotalRent.Add(l.AccruedRent)
		weightedAge += l.AgeDays * l.Qty

		switch {
		case l.AgeDays > dangerAgeDays:
			ps.DangerQty += l.Qty
		case l.AgeDays > warningAgeDays:
			ps.WarningQty += l.Qty
		}
	}

	if ps.OpenQty > 0 {
		// Round half up to the nearest whole day.
		ps.AvgAgeDays = (weightedAge*2 + ps.OpenQty) / (2 * ps.OpenQty)
	}
	ps.TotalRent = ps.TotalRent.Round(2)
	return ps
}
