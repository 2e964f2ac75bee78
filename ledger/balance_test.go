package ledger_test

import (
	"testing"
	"time"

	"github.com/depotline/pallet-engine/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================
// Shared by the other _test.go files in this package.

const (
	branchHamburg = ledger.EntityID("branch-hamburg")
	branchLeipzig = ledger.EntityID("branch-leipzig")
	partnerGU     = ledger.EntityID("partner-grandunion")
	partnerNF     = ledger.EntityID("partner-nordfresh")
)

// on returns the test epoch (2025-06-01) shifted by n days.
func on(n int) ledger.TimePoint {
	return ledger.NewTimePoint(2025, time.June, 1).AddDays(n)
}

func move(id string, source, dest ledger.EntityID, pallet ledger.PalletID, qty int, date ledger.TimePoint) ledger.Transaction {
	return ledger.Transaction{
		ID:       id,
		Type:     ledger.TxOut,
		Source:   source,
		Dest:     dest,
		PalletID: pallet,
		Qty:      qty,
		Date:     date,
		Status:   ledger.StatusCompleted,
	}
}

func pendingMove(id string, source, dest ledger.EntityID, pallet ledger.PalletID, qty int, date ledger.TimePoint) ledger.Transaction {
	tx := move(id, source, dest, pallet, qty, date)
	tx.Status = ledger.StatusPending
	return tx
}

func cancelledMove(id string, source, dest ledger.EntityID, pallet ledger.PalletID, qty int, date ledger.TimePoint) ledger.Transaction {
	tx := move(id, source, dest, pallet, qty, date)
	tx.Status = ledger.StatusCancelled
	return tx
}

// =============================================================================
// BALANCE CALCULATOR TESTS
// =============================================================================

func TestCalculateBalance_InMinusOut(t *testing.T) {
	// GIVEN: a partner that received 700 and returned 250 EURO pallets
	// WHEN: calculating the balance
	// THEN: the net position is 450

	txs := []ledger.Transaction{
		move("t1", branchHamburg, partnerGU, ledger.PalletEuro, 400, on(0)),
		move("t2", branchHamburg, partnerGU, ledger.PalletEuro, 300, on(5)),
		move("t3", partnerGU, branchHamburg, ledger.PalletEuro, 250, on(10)),
	}

	if got := ledger.CalculateBalance(txs, partnerGU, ledger.PalletEuro); got != 450 {
		t.Errorf("expected balance 450, got %d", got)
	}
}

func TestCalculateBalance_IgnoresPendingAndCancelled(t *testing.T) {
	// GIVEN: completed, pending and cancelled lines for the same pair
	// WHEN: calculating the balance
	// THEN: only the completed line counts

	txs := []ledger.Transaction{
		move("t1", branchHamburg, partnerGU, ledger.PalletEuro, 100, on(0)),
		pendingMove("t2", branchHamburg, partnerGU, ledger.PalletEuro, 50, on(1)),
		cancelledMove("t3", branchHamburg, partnerGU, ledger.PalletEuro, 75, on(2)),
	}

	if got := ledger.CalculateBalance(txs, partnerGU, ledger.PalletEuro); got != 100 {
		t.Errorf("expected balance 100, got %d", got)
	}
}

func TestCalculateBalance_IgnoresOtherPalletTypes(t *testing.T) {
	txs := []ledger.Transaction{
		move("t1", branchHamburg, partnerGU, ledger.PalletEuro, 100, on(0)),
		move("t2", branchHamburg, partnerGU, ledger.PalletStandard, 40, on(0)),
	}

	if got := ledger.CalculateBalance(txs, partnerGU, ledger.PalletEuro); got != 100 {
		t.Errorf("expected EURO balance 100, got %d", got)
	}
	if got := ledger.CalculateBalance(txs, partnerGU, ledger.PalletStandard); got != 40 {
		t.Errorf("expected STANDARD balance 40, got %d", got)
	}
}

func TestCalculateBalance_NegativeWhenReturnsExceedBorrows(t *testing.T) {
	// Overdrawn returns yield a negative balance; the consistency checker
	// surfaces it, the calculator just reports it.
	txs := []ledger.Transaction{
		move("t1", branchHamburg, partnerGU, ledger.PalletEuro, 100, on(0)),
		move("t2", partnerGU, branchHamburg, ledger.PalletEuro, 130, on(5)),
	}

	if got := ledger.CalculateBalance(txs, partnerGU, ledger.PalletEuro); got != -30 {
		t.Errorf("expected balance -30, got %d", got)
	}
}

func TestAggregateBalance_SumsPositivePositionsOnly(t *testing.T) {
	// GIVEN: +450 EURO, -30 STANDARD, +150 HALF
	// WHEN: aggregating across all three types
	// THEN: negative positions are clamped to zero, total is 600

	txs := []ledger.Transaction{
		move("t1", branchHamburg, partnerGU, ledger.PalletEuro, 450, on(0)),
		move("t2", partnerGU, branchHamburg, ledger.PalletStandard, 30, on(1)),
		move("t3", branchHamburg, partnerGU, ledger.PalletHalf, 150, on(2)),
	}

	pallets := []ledger.PalletID{ledger.PalletEuro, ledger.PalletStandard, ledger.PalletHalf}
	if got := ledger.AggregateBalance(txs, partnerGU, pallets); got != 600 {
		t.Errorf("expected aggregate 600, got %d", got)
	}
}

func TestInTransit_CountsPendingTowardDest(t *testing.T) {
	txs := []ledger.Transaction{
		pendingMove("t1", branchHamburg, branchLeipzig, ledger.PalletEuro, 80, on(0)),
		move("t2", branchHamburg, branchLeipzig, ledger.PalletEuro, 20, on(0)),
		pendingMove("t3", branchLeipzig, branchHamburg, ledger.PalletEuro, 10, on(0)),
	}

	if got := ledger.InTransit(txs, branchLeipzig, ledger.PalletEuro); got != 80 {
		t.Errorf("expected 80 in transit, got %d", got)
	}
}

func TestPositionsFor_CoversTouchedPalletTypes(t *testing.T) {
	txs := []ledger.Transaction{
		move("t1", branchHamburg, partnerGU, ledger.PalletEuro, 100, on(0)),
		move("t2", branchHamburg, partnerGU, ledger.PalletStandard, 40, on(1)),
		pendingMove("t3", branchHamburg, partnerGU, ledger.PalletEuro, 25, on(2)),
	}

	positions := ledger.PositionsFor(txs, partnerGU)
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
	if positions[0].PalletID != ledger.PalletEuro || positions[0].Balance != 100 || positions[0].InTransit != 25 {
		t.Errorf("unexpected EURO position: %+v", positions[0])
	}
	if positions[1].PalletID != ledger.PalletStandard || positions[1].Balance != 40 {
		t.Errorf("unexpected STANDARD position: %+v", positions[1])
	}
}
