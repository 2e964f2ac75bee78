/*
accessor.go - Read-only views over the transaction log

PURPOSE:
  Filtering primitives the rest of the engine builds on. Every function
  returns a fresh slice, preserves input order, and never mutates or
  retains the input. Empty input yields empty output; there is no error
  path here.

SEE ALSO:
  - balance.go: Uses Completed + entity filters
  - match.go:   Uses the borrow/return legs
*/
package ledger

// =============================================================================
// DATE AND STATUS FILTERS
// =============================================================================

// FilterByDate returns the sub-sequence with start <= Date <= end,
// order preserved.
func FilterByDate(txs []Transaction, start, end TimePoint) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if start.BeforeOrEqual(tx.Date) && tx.Date.BeforeOrEqual(end) {
			out = append(out, tx)
		}
	}
	return out
}

// FilterByEntityAndPallet returns all non-cancelled transactions of the
// given pallet type where the entity appears on either leg.
func FilterByEntityAndPallet(txs []Transaction, entity EntityID, pallet PalletID) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if tx.Status == StatusCancelled {
			continue
		}
		if tx.PalletID != pallet {
			continue
		}
		if tx.Touches(entity) {
			out = append(out, tx)
		}
	}
	return out
}

// Completed returns only COMPLETED transactions.
func Completed(txs []Transaction) []Transaction {
	return ForStatus(txs, StatusCompleted)
}

// ForStatus returns transactions with the given status.
func ForStatus(txs []Transaction, status TxStatus) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if tx.Status == status {
			out = append(out, tx)
		}
	}
	return out
}

// ForType returns transactions of the given movement type.
func ForType(txs []Transaction, txType TxType) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if tx.Type == txType {
			out = append(out, tx)
		}
	}
	return out
}

// ForDoc returns all lines of a multi-line shipment.
func ForDoc(txs []Transaction, docNo string) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if tx.DocNo == docNo {
			out = append(out, tx)
		}
	}
	return out
}

// PalletTypes returns the distinct pallet types present, in first-seen order.
func PalletTypes(txs []Transaction) []PalletID {
	seen := make(map[PalletID]bool)
	var out []PalletID
	for _, tx := range txs {
		if !seen[tx.PalletID] {
			seen[tx.PalletID] = true
			out = append(out, tx.PalletID)
		}
	}
	return out
}

// Entities returns the distinct entities appearing on either leg,
// in first-seen order.
func Entities(txs []Transaction) []EntityID {
	seen := make(map[EntityID]bool)
	var out []EntityID
	for _, tx := range txs {
		for _, e := range []EntityID{tx.Source, tx.Dest} {
			if e != "" && !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}
