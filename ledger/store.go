/*
store.go - Persistence interface for the movement log and stock snapshot

PURPOSE:
  Defines the boundary between the pure engine and whatever supplies its
  inputs. The engine itself never writes: workflows (movements,
  maintenance, adjustments) append through this interface, and the read
  side hands the loaded slice plus snapshot to the pure functions.

APPEND-ONLY CONTRACT:
  Transactions are never deleted or rewritten. The only mutations are:
  - SetStatus: pending -> completed, or -> cancelled (a status change,
    never a deletion; cancelled rows stay in the log forever)
  - Correct: annotate a completed received line with its original
    pallet/qty and the corrected figures

SNAPSHOT OWNERSHIP:
  The store maintains the confirmed on-hand totals as movements complete.
  The engine reads the snapshot but never derives or repairs it; drift is
  detected by CheckConsistency and surfaced, not fixed.

IMPLEMENTATIONS:
  - ledger/store/memory.go: In-memory, for tests and dev
  - store/sqlite/sqlite.go: Production SQLite
*/
package ledger

import "context"

// =============================================================================
// STORE
// =============================================================================

// Store persists the movement log, partner configuration and the
// confirmed stock snapshot.
type Store interface {
	// Append persists one validated transaction.
	// Fails with ErrDuplicateTransaction if the id exists.
	Append(ctx context.Context, tx Transaction) error

	// AppendBatch persists all lines of a multi-line shipment atomically.
	AppendBatch(ctx context.Context, txs []Transaction) error

	// SetStatus transitions a transaction's status. Only pending rows may
	// be completed or cancelled; completed rows may only be cancelled.
	SetStatus(ctx context.Context, id string, status TxStatus) error

	// Correct annotates a completed line with post-hoc corrected figures,
	// preserving the originally recorded pallet type and quantity.
	Correct(ctx context.Context, id string, pallet PalletID, qty int) error

	// Transactions returns the full log ordered by date, then insertion.
	Transactions(ctx context.Context) ([]Transaction, error)

	// TransactionsInRange returns rows with from <= date <= to.
	TransactionsInRange(ctx context.Context, from, to TimePoint) ([]Transaction, error)

	// StockSnapshot returns the confirmed on-hand totals.
	StockSnapshot(ctx context.Context) (StockSnapshot, error)

	// AdjustStock moves the confirmed total for one branch/pallet pair.
	AdjustStock(ctx context.Context, branch EntityID, pallet PalletID, delta int) error
}

// PartnerStore persists partner configuration. Separated from Store
// because partner config is static business data with its own lifecycle.
type PartnerStore interface {
	SavePartner(ctx context.Context, p Partner) error
	Partners(ctx context.Context) (PartnerConfig, error)
}

// StatusChangeAllowed encodes the transaction lifecycle: pending rows may
// be completed or cancelled, completed rows may only be cancelled, and
// cancelled is terminal.
func StatusChangeAllowed(from, to TxStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusCompleted || to == StatusCancelled
	case StatusCompleted:
		return to == StatusCancelled
	default:
		return false
	}
}
