/*
validate.go - Boundary validation with per-record recovery

PURPOSE:
  Guards the engine against malformed ledger rows. A single bad row must
  not blank out an entire dashboard, so validation skips the offending
  record and reports a diagnostic instead of failing the analysis.

WHAT COUNTS AS MALFORMED:
  - Non-positive quantity on a COMPLETED line
  - Zero date
  - Unknown movement type or status
  - Missing pallet type
  - Negative scrap quantity

CANCELLED ROWS:
  Cancelled rows are not validated beyond basic shape: they contribute
  nothing downstream, so a cancelled row with qty 0 is noise, not damage.
*/
package ledger

import "fmt"

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// Diagnostic describes one skipped record.
type Diagnostic struct {
	Index  int    // position in the input slice
	TxID   string // may be empty if the id itself is missing
	Field  string
	Reason string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("tx[%d] %s: %s %s", d.Index, d.TxID, d.Field, d.Reason)
}

// =============================================================================
// VALIDATION
// =============================================================================

var validTypes = map[TxType]bool{
	TxIn: true, TxOut: true, TxAdjust: true, TxMaintenance: true,
}

var validStatuses = map[TxStatus]bool{
	StatusPending: true, StatusCompleted: true, StatusCancelled: true,
}

// ValidateTransactions splits the input into usable rows and diagnostics.
// The returned slice preserves input order. Callers feed the clean slice
// into the derivations and may surface the diagnostics to the UI.
func ValidateTransactions(txs []Transaction) ([]Transaction, []Diagnostic) {
	clean := make([]Transaction, 0, len(txs))
	var diags []Diagnostic

	for i, tx := range txs {
		if d := checkTransaction(i, tx); d != nil {
			diags = append(diags, *d)
			continue
		}
		clean = append(clean, tx)
	}
	return clean, diags
}

// CheckTransaction validates a single row at the write boundary. Unlike
// ValidateTransactions this returns a hard error: rows should be rejected
// before they ever reach the ledger.
func CheckTransaction(tx Transaction) error {
	if d := checkTransaction(0, tx); d != nil {
		switch d.Field {
		case "qty", "scrapQty":
			return fmt.Errorf("%s %s: %w", d.Field, d.Reason, ErrInvalidQuantity)
		case "date":
			return fmt.Errorf("%s: %w", d.Reason, ErrInvalidDate)
		default:
			return fmt.Errorf("%s %s: invalid transaction", d.Field, d.Reason)
		}
	}
	return nil
}

func checkTransaction(i int, tx Transaction) *Diagnostic {
	if tx.ID == "" {
		return &Diagnostic{Index: i, Field: "id", Reason: "missing"}
	}
	if !validTypes[tx.Type] {
		return &Diagnostic{Index: i, TxID: tx.ID, Field: "type", Reason: fmt.Sprintf("unknown %q", tx.Type)}
	}
	if !validStatuses[tx.Status] {
		return &Diagnostic{Index: i, TxID: tx.ID, Field: "status", Reason: fmt.Sprintf("unknown %q", tx.Status)}
	}
	if tx.Status == StatusCancelled {
		return nil
	}
	if tx.PalletID == "" {
		return &Diagnostic{Index: i, TxID: tx.ID, Field: "palletId", Reason: "missing"}
	}
	if tx.Date.IsZero() {
		return &Diagnostic{Index: i, TxID: tx.ID, Field: "date", Reason: "zero date"}
	}
	if tx.Qty <= 0 {
		return &Diagnostic{Index: i, TxID: tx.ID, Field: "qty", Reason: fmt.Sprintf("non-positive (%d)", tx.Qty)}
	}
	if tx.ScrapQty < 0 {
		return &Diagnostic{Index: i, TxID: tx.ID, Field: "scrapQty", Reason: fmt.Sprintf("negative (%d)", tx.ScrapQty)}
	}
	return nil
}
