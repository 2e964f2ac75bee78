/*
match.go - FIFO loan matching

PURPOSE:
  Reconciles a partner's completed borrows against its completed returns
  to materialize the open loans that still age and accrue rent.

ALGORITHM:
  1. Collect COMPLETED borrows (dest == partner) for the pallet type,
     sorted ascending by date. Ties keep insertion order (stable sort,
     and transaction ids are monotonic with insertion).
  2. Pool all COMPLETED returns (source == partner) into a single
     availableReturns total. Returns are never matched to specific borrow
     docs by reference; they drain the oldest borrow first.
  3. Walk borrows oldest-first, consuming min(remaining, availableReturns)
     from each. Whatever remains open becomes a Loan with
     ageDays = floor(asOf - borrowDate).
  4. Fully returned borrows are dropped.

OVERDRAWN RETURNS:
  If returns exceed total borrows the matcher yields zero loans and the
  excess is silently absorbed. This is best-effort reconciliation, not a
  ledger audit: the anomaly shows up as a negative balance and is surfaced
  by the consistency checker, never raised here.

INVARIANT:
  sum(Loan.Qty) over the result == max(0, CalculateBalance(txs, partner, pallet)).
*/
package ledger

import "sort"

// =============================================================================
// FIFO LOAN MATCHER
// =============================================================================

// MatchLoans derives the partner's open loans for one pallet type as of
// the given date. The result is freshly built on every call; identical
// input yields identical output.
func MatchLoans(txs []Transaction, partner EntityID, pallet PalletID, asOf TimePoint) []Loan {
	var borrows []Transaction
	availableReturns := 0

	for _, tx := range txs {
		if tx.Status != StatusCompleted || tx.PalletID != pallet {
			continue
		}
		switch {
		case tx.Dest == partner:
			borrows = append(borrows, tx)
		case tx.Source == partner:
			availableReturns += tx.Qty
		}
	}

	sort.SliceStable(borrows, func(i, j int) bool {
		return borrows[i].Date.Before(borrows[j].Date)
	})

	var loans []Loan
	for _, b := range borrows {
		remaining := b.Qty
		consumed := min(remaining, availableReturns)
		remaining -= consumed
		availableReturns -= consumed

		if remaining > 0 {
			loans = append(loans, Loan{
				PartnerID:  partner,
				PalletID:   pallet,
				DocNo:      b.DocNo,
				BorrowDate: b.Date,
				Qty:        remaining,
				AgeDays:    DaysBetween(b.Date, asOf),
			})
		}
	}
	return loans
}

// OpenLoanQty is the total unreturned quantity across the partner's open
// loans for one pallet type.
func OpenLoanQty(loans []Loan) int {
	total := 0
	for _, l := range loans {
		total += l.Qty
	}
	return total
}
