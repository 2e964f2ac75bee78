/*
balance.go - Signed net balance per (entity, pallet)

PURPOSE:
  The canonical answer to "how many units does X currently hold?".
  Balance is always derived by replaying COMPLETED transactions; there is
  no stored balance field that can drift (the confirmed stock snapshot is
  a separate collaborator, checked in consistency.go).

CONVENTION:
  Balance = sum(qty) where dest == entity  -  sum(qty) where source == entity,
  over COMPLETED transactions of the matching pallet type.

  Positive balance means the entity currently holds more than it has
  returned: for a partner this is the outstanding loan position, and it is
  the figure tier-based rate selection keys on.

CONSISTENCY:
  The FIFO matcher (match.go) must reproduce this total as the sum of
  open-loan remainders: sum(Loan.Qty) == max(0, CalculateBalance(...)).

SEE ALSO:
  - match.go:   FIFO matching against this balance
  - accrual.go: Tier selection on the aggregate balance
*/
package ledger

// =============================================================================
// BALANCE CALCULATOR
// =============================================================================

// CalculateBalance derives the signed net balance for an (entity, pallet)
// pair from COMPLETED transactions only.
func CalculateBalance(txs []Transaction, entity EntityID, pallet PalletID) int {
	balance := 0
	for _, tx := range txs {
		if tx.Status != StatusCompleted || tx.PalletID != pallet {
			continue
		}
		if tx.Dest == entity {
			balance += tx.Qty
		}
		if tx.Source == entity {
			balance -= tx.Qty
		}
	}
	return balance
}

// AggregateBalance sums the non-negative per-pallet balances for an entity
// across the given pallet types. This is the volume figure tiered rate
// schedules select on.
func AggregateBalance(txs []Transaction, entity EntityID, pallets []PalletID) int {
	total := 0
	for _, p := range pallets {
		if b := CalculateBalance(txs, entity, p); b > 0 {
			total += b
		}
	}
	return total
}

// InTransit sums PENDING quantity heading toward the entity. Pending lines
// never contribute to completed balances or loan aging.
func InTransit(txs []Transaction, entity EntityID, pallet PalletID) int {
	total := 0
	for _, tx := range txs {
		if tx.Status == StatusPending && tx.PalletID == pallet && tx.Dest == entity {
			total += tx.Qty
		}
	}
	return total
}

// BalancePosition bundles the derived figures for one (entity, pallet)
// pair, ready for the read side.
type BalancePosition struct {
	EntityID  EntityID
	PalletID  PalletID
	Balance   int
	InTransit int
}

// PositionsFor derives balance positions for every pallet type the entity
// has touched, in first-seen order.
func PositionsFor(txs []Transaction, entity EntityID) []BalancePosition {
	var out []BalancePosition
	for _, pallet := range PalletTypes(txs) {
		filtered := FilterByEntityAndPallet(txs, entity, pallet)
		if len(filtered) == 0 {
			continue
		}
		out = append(out, BalancePosition{
			EntityID:  entity,
			PalletID:  pallet,
			Balance:   CalculateBalance(filtered, entity, pallet),
			InTransit: InTransit(filtered, entity, pallet),
		})
	}
	return out
}
