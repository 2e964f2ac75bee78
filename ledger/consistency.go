/*
consistency.go - Ledger vs snapshot divergence detection

PURPOSE:
  The stock snapshot is maintained by the persistence layer as the
  authoritative running total; the ledger should imply the same numbers.
  In practice the two representations have been known to drift. This
  checker makes the drift visible instead of silently reproducing it.

  Divergence is a reportable data-quality signal, never an exception:
  the primary derivations (balances, loans, accrual) do not halt on it.

DISCREPANCY KINDS:
  snapshot_mismatch: ledger-derived branch balance != snapshot quantity
  return_overdraft:  a partner has returned more than it ever borrowed
                     (negative balance; the FIFO matcher absorbs the
                     excess and produces zero loans)
*/
package ledger

import "sort"

// =============================================================================
// DISCREPANCIES
// =============================================================================

type DiscrepancyKind string

const (
	DiscrepancySnapshotMismatch DiscrepancyKind = "snapshot_mismatch"
	DiscrepancyReturnOverdraft  DiscrepancyKind = "return_overdraft"
)

type DiscrepancySeverity string

const (
	SeverityLow  DiscrepancySeverity = "low"  // |delta| < 10
	SeverityHigh DiscrepancySeverity = "high" // |delta| >= 10
)

// Discrepancy is one detected divergence between the ledger and the
// confirmed stock snapshot (or an internally impossible partner position).
type Discrepancy struct {
	Kind        DiscrepancyKind
	EntityID    EntityID
	PalletID    PalletID
	LedgerQty   int // balance derived from completed transactions
	SnapshotQty int // confirmed snapshot figure (0 for overdrafts)
	Delta       int // LedgerQty - SnapshotQty
	Severity    DiscrepancySeverity
}

// CheckConsistency compares ledger-derived balances against the snapshot
// for every branch, and flags partners whose returns exceed their borrows.
// Results are ordered by entity then pallet so repeated runs over the same
// input are byte-identical.
func CheckConsistency(txs []Transaction, snapshot StockSnapshot, cfg PartnerConfig) []Discrepancy {
	clean, _ := ValidateTransactions(txs)
	var out []Discrepancy

	branches := make([]EntityID, 0, len(snapshot))
	for b := range snapshot {
		branches = append(branches, b)
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i] < branches[j] })

	for _, branch := range branches {
		pallets := make([]PalletID, 0, len(snapshot[branch]))
		for p := range snapshot[branch] {
			pallets = append(pallets, p)
		}
		sort.Slice(pallets, func(i, j int) bool { return pallets[i] < pallets[j] })

		for _, pallet := range pallets {
			derived := CalculateBalance(clean, branch, pallet)
			confirmed := snapshot.Qty(branch, pallet)
			if derived == confirmed {
				continue
			}
			out = append(out, Discrepancy{
				Kind:        DiscrepancySnapshotMismatch,
				EntityID:    branch,
				PalletID:    pallet,
				LedgerQty:   derived,
				SnapshotQty: confirmed,
				Delta:       derived - confirmed,
				Severity:    severityFor(derived - confirmed),
			})
		}
	}

	partnerIDs := make([]EntityID, 0, len(cfg))
	for id := range cfg {
		partnerIDs = append(partnerIDs, id)
	}
	sort.Slice(partnerIDs, func(i, j int) bool { return partnerIDs[i] < partnerIDs[j] })

	for _, id := range partnerIDs {
		for _, pallet := range PalletTypes(clean) {
			balance := CalculateBalance(clean, id, pallet)
			if balance >= 0 {
				continue
			}
			out = append(out, Discrepancy{
				Kind:      DiscrepancyReturnOverdraft,
				EntityID:  id,
				PalletID:  pallet,
				LedgerQty: balance,
				Delta:     balance,
				Severity:  severityFor(balance),
			})
		}
	}
	return out
}

func severityFor(delta int) DiscrepancySeverity {
	if delta < 0 {
		delta = -delta
	}
	if delta >= 10 {
		return SeverityHigh
	}
	return SeverityLow
}
