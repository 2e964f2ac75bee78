/*
Package ledger provides the core pallet reconciliation engine.

PURPOSE:
  This package contains the types and algorithms that turn an append-only
  movement log plus a point-in-time stock snapshot into derived read models:
  per-entity balances, FIFO-matched open loans with age, tiered daily rental
  accrual, and burn-rate depletion forecasts.

KEY CONCEPTS IN THIS FILE (types.go):
  - Transaction: An immutable ledger entry recording a pallet movement
  - EntityID / PalletID: Type-safe identifiers for branches, partners, pallets
  - Partner: Static rental configuration (grace period, rate schedule)
  - StockSnapshot: Confirmed on-hand stock per branch and pallet type
  - Loan: A derived open borrow, never persisted

DESIGN PRINCIPLES:
  1. Purity: Every derivation is a function of its explicit arguments.
     Identical input produces identical output; no state survives a call.
  2. Immutability: Transactions are never edited, only status-transitioned
     (cancellation) or annotated with correction fields.
  3. Precision: Rent money uses decimal.Decimal; quantities are integers.
  4. Typed records: Loan, PartnerSummary and Prediction are concrete structs
     with explicit fields, not loose maps.

SEE ALSO:
  - accessor.go: Filtering views over the transaction log
  - balance.go:  Signed net balance per (entity, pallet)
  - match.go:    FIFO loan matching
  - accrual.go:  Rent accrual and per-partner aggregation
  - predict.go:  Stock depletion forecasting
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EntityID identifies a branch or an external rental partner.
// Both appear on the source/dest legs of a transaction.
type EntityID string

// PalletID identifies a pallet type.
type PalletID string

const (
	PalletEuro     PalletID = "EURO"     // 1200x800 EUR-pool pallet
	PalletStandard PalletID = "STANDARD" // 1100x1100 standard
	PalletHalf     PalletID = "HALF"     // 800x600 half pallet
	PalletPlastic  PalletID = "PLASTIC"  // hygienic plastic
)

// =============================================================================
// TRANSACTION - Immutable ledger entry
// =============================================================================

type TxType string

const (
	TxIn          TxType = "in"          // Stock received by a branch
	TxOut         TxType = "out"         // Stock shipped out of a branch
	TxAdjust      TxType = "adjust"      // Manual count correction
	TxMaintenance TxType = "maintenance" // Sent for repair; may carry scrap
)

type TxStatus string

const (
	StatusPending   TxStatus = "pending"   // In transit, not yet confirmed
	StatusCompleted TxStatus = "completed" // Confirmed; counts toward balances
	StatusCancelled TxStatus = "cancelled" // Voided; contributes nothing
)

// Transaction is a single movement line. Lines sharing a DocNo form one
// multi-line shipment. Transactions are never deleted: cancellation is a
// status change, and post-hoc corrections only set the Original* fields.
type Transaction struct {
	ID       string // unique, monotonic with insertion order
	Type     TxType
	Source   EntityID
	Dest     EntityID
	PalletID PalletID
	Qty      int // positive for COMPLETED lines
	Date     TimePoint
	Status   TxStatus

	DocNo          string // grouping key for multi-line shipments
	ReferenceDocNo string // optional external reference

	// Set only when a received line was corrected after the fact.
	// The line then carries the corrected PalletID/Qty; these hold
	// what was originally recorded.
	OriginalPalletID PalletID
	OriginalQty      int

	// ScrapQty is the number of pallets written off during maintenance.
	// This replaces the legacy free-text "SCRAP: <n>" note marker.
	ScrapQty int

	Note      string
	CreatedAt TimePoint
}

// IsCorrected reports whether the line was amended after receipt.
func (t Transaction) IsCorrected() bool {
	return t.OriginalPalletID != "" || t.OriginalQty != 0
}

// Touches reports whether the entity appears on either leg.
func (t Transaction) Touches(entity EntityID) bool {
	return t.Source == entity || t.Dest == entity
}

// =============================================================================
// PARTNER - Static rental configuration
// =============================================================================

type PartnerType string

const (
	PartnerCustomer PartnerType = "customer" // borrows pallets from us
	PartnerProvider PartnerType = "provider" // lends pallets to us
)

// Partner holds the business configuration for an external rental partner.
// A partner without a rate schedule is balance-only: loans still age, but
// no rent accrues.
type Partner struct {
	ID             EntityID
	Name           string
	Type           PartnerType
	AllowedPallets []PalletID
	GracePeriod    int // days after borrowing before rent starts
	Rates          RateSchedule
}

// Allows reports whether the partner handles the given pallet type.
// An empty AllowedPallets list means all types are allowed.
func (p Partner) Allows(pallet PalletID) bool {
	if len(p.AllowedPallets) == 0 {
		return true
	}
	for _, ap := range p.AllowedPallets {
		if ap == pallet {
			return true
		}
	}
	return false
}

// PartnerConfig maps partner ids to their configuration. Partners missing
// from the map are treated as balance-only, never an error.
type PartnerConfig map[EntityID]Partner

// RateSchedule selects the daily per-unit rent rate for a partner.
// The rate may depend on the partner's current aggregate open balance
// (volume tiers), not on any individual loan.
type RateSchedule interface {
	// DailyRate returns the per-unit daily rate for the given aggregate
	// open balance across the partner's pallet types.
	DailyRate(aggregateBalance int) decimal.Decimal
}

// =============================================================================
// STOCK SNAPSHOT - Confirmed on-hand quantities
// =============================================================================

// StockSnapshot maps branch -> pallet type -> confirmed on-hand quantity.
// It is maintained by the persistence layer as the authoritative running
// total; the engine reads it but never re-derives it. Consistency between
// snapshot and ledger is checked separately (consistency.go).
type StockSnapshot map[EntityID]map[PalletID]int

// Qty returns the snapshot quantity, zero when the pair is absent.
func (s StockSnapshot) Qty(branch EntityID, pallet PalletID) int {
	return s[branch][pallet]
}

// =============================================================================
// LOAN - Derived open borrow (never persisted)
// =============================================================================

// Loan is the unreturned remainder of a borrow transaction. Loans are
// materialized fresh on every analysis call and discarded afterwards.
type Loan struct {
	PartnerID  EntityID
	PalletID   PalletID
	DocNo      string
	BorrowDate TimePoint
	Qty        int // unconsumed remainder
	AgeDays    int

	// Filled by the accrual engine; zero until then.
	OverdueDays int
	RentalRate  decimal.Decimal
	AccruedRent decimal.Decimal
}

// RoundedRent returns the accrued rent rounded to 2 decimal places.
// Rounding happens only at the point of reporting so that intermediate
// accumulation never compounds rounding error.
func (l Loan) RoundedRent() decimal.Decimal {
	return l.AccruedRent.Round(2)
}
