package ledger_test

import (
	"testing"

	"github.com/depotline/pallet-engine/ledger"
)

// =============================================================================
// FIFO LOAN MATCHER TESTS
// =============================================================================

func TestMatchLoans_PartialReturnConsumesOldestFirst(t *testing.T) {
	// GIVEN: borrows of 400 (day 0) and 300 (day 5), a return of 250 (day 10)
	// WHEN: matching as of day 15
	// THEN: the return drains the oldest borrow, leaving 150 + 300 open

	txs := []ledger.Transaction{
		move("b1", branchHamburg, partnerGU, ledger.PalletEuro, 400, on(0)),
		move("b2", branchHamburg, partnerGU, ledger.PalletEuro, 300, on(5)),
		move("r1", partnerGU, branchHamburg, ledger.PalletEuro, 250, on(10)),
	}

	loans := ledger.MatchLoans(txs, partnerGU, ledger.PalletEuro, on(15))
	if len(loans) != 2 {
		t.Fatalf("expected 2 open loans, got %d", len(loans))
	}
	if loans[0].Qty != 150 || loans[0].AgeDays != 15 {
		t.Errorf("expected oldest loan 150 units aged 15d, got %d units aged %dd", loans[0].Qty, loans[0].AgeDays)
	}
	if loans[1].Qty != 300 || loans[1].AgeDays != 10 {
		t.Errorf("expected second loan 300 units aged 10d, got %d units aged %dd", loans[1].Qty, loans[1].AgeDays)
	}
}

func TestMatchLoans_SingleBorrowPartialReturn(t *testing.T) {
	// GIVEN: 100 borrowed on day 0, 40 returned on day 6
	// WHEN: matching as of day 15
	// THEN: one loan of 60 units, aged 15 days

	txs := []ledger.Transaction{
		move("b1", branchHamburg, partnerGU, ledger.PalletEuro, 100, on(0)),
		move("r1", partnerGU, branchHamburg, ledger.PalletEuro, 40, on(6)),
	}

	loans := ledger.MatchLoans(txs, partnerGU, ledger.PalletEuro, on(15))
	if len(loans) != 1 {
		t.Fatalf("expected 1 open loan, got %d", len(loans))
	}
	if loans[0].Qty != 60 {
		t.Errorf("expected 60 units open, got %d", loans[0].Qty)
	}
	if loans[0].AgeDays != 15 {
		t.Errorf("expected age 15 days, got %d", loans[0].AgeDays)
	}
}

func TestMatchLoans_ReturnPoolSpansBorrowBoundary(t *testing.T) {
	// GIVEN: borrows of 10 (day 1) and 5 (day 5), total returns of 12
	// WHEN: matching
	// THEN: the day-1 borrow is fully consumed and the day-5 borrow keeps
	//       exactly 3 open units

	txs := []ledger.Transaction{
		move("b1", branchHamburg, partnerGU, ledger.PalletEuro, 10, on(1)),
		move("b2", branchHamburg, partnerGU, ledger.PalletEuro, 5, on(5)),
		move("r1", partnerGU, branchHamburg, ledger.PalletEuro, 12, on(8)),
	}

	loans := ledger.MatchLoans(txs, partnerGU, ledger.PalletEuro, on(10))
	if len(loans) != 1 {
		t.Fatalf("expected 1 open loan, got %d", len(loans))
	}
	if !loans[0].BorrowDate.Equal(on(5)) {
		t.Errorf("expected the day-5 borrow to remain, got borrow date %s", loans[0].BorrowDate)
	}
	if loans[0].Qty != 3 {
		t.Errorf("expected 3 units open, got %d", loans[0].Qty)
	}
}

func TestMatchLoans_FullyReturnedBorrowIsDropped(t *testing.T) {
	txs := []ledger.Transaction{
		move("b1", branchHamburg, partnerGU, ledger.PalletEuro, 100, on(0)),
		move("b2", branchHamburg, partnerGU, ledger.PalletEuro, 50, on(3)),
		move("r1", partnerGU, branchHamburg, ledger.PalletEuro, 100, on(8)),
	}

	loans := ledger.MatchLoans(txs, partnerGU, ledger.PalletEuro, on(10))
	if len(loans) != 1 {
		t.Fatalf("expected 1 open loan, got %d", len(loans))
	}
	if loans[0].DocNo != "" && loans[0].BorrowDate.Equal(on(0)) {
		t.Errorf("fully returned borrow should be dropped, got %+v", loans[0])
	}
	if loans[0].Qty != 50 || !loans[0].BorrowDate.Equal(on(3)) {
		t.Errorf("expected the day-3 borrow with 50 open, got %+v", loans[0])
	}
}

func TestMatchLoans_OverdrawnReturnsYieldZeroLoans(t *testing.T) {
	// GIVEN: returns exceeding total borrows
	// WHEN: matching
	// THEN: the matcher absorbs the excess and reports no loans

	txs := []ledger.Transaction{
		move("b1", branchHamburg, partnerGU, ledger.PalletEuro, 100, on(0)),
		move("r1", partnerGU, branchHamburg, ledger.PalletEuro, 130, on(5)),
	}

	if loans := ledger.MatchLoans(txs, partnerGU, ledger.PalletEuro, on(10)); len(loans) != 0 {
		t.Errorf("expected no loans, got %d", len(loans))
	}
}

func TestMatchLoans_SameDayBorrowsKeepInsertionOrder(t *testing.T) {
	// Equal dates must not reorder: ids are monotonic with insertion, and
	// the stable sort preserves that.
	txs := []ledger.Transaction{
		move("b1", branchHamburg, partnerGU, ledger.PalletEuro, 10, on(0)),
		move("b2", branchHamburg, partnerGU, ledger.PalletEuro, 20, on(0)),
		move("r1", partnerGU, branchHamburg, ledger.PalletEuro, 10, on(1)),
	}

	loans := ledger.MatchLoans(txs, partnerGU, ledger.PalletEuro, on(2))
	if len(loans) != 1 {
		t.Fatalf("expected 1 open loan, got %d", len(loans))
	}
	if loans[0].Qty != 20 {
		t.Errorf("the return should consume b1 first, got %d units open", loans[0].Qty)
	}
}

func TestMatchLoans_OpenQtyMatchesBalance(t *testing.T) {
	// INVARIANT: sum of open loan remainders equals the clamped net balance.
	txs := []ledger.Transaction{
		move("b1", branchHamburg, partnerGU, ledger.PalletEuro, 400, on(0)),
		move("b2", branchHamburg, partnerGU, ledger.PalletEuro, 300, on(4)),
		move("r1", partnerGU, branchHamburg, ledger.PalletEuro, 250, on(7)),
		move("r2", partnerGU, branchHamburg, ledger.PalletEuro, 100, on(9)),
		pendingMove("p1", branchHamburg, partnerGU, ledger.PalletEuro, 500, on(10)),
	}

	loans := ledger.MatchLoans(txs, partnerGU, ledger.PalletEuro, on(12))
	balance := ledger.CalculateBalance(txs, partnerGU, ledger.PalletEuro)
	if got := ledger.OpenLoanQty(loans); got != balance {
		t.Errorf("open loan qty %d != balance %d", got, balance)
	}
}

func TestMatchLoans_Deterministic(t *testing.T) {
	txs := []ledger.Transaction{
		move("b1", branchHamburg, partnerGU, ledger.PalletEuro, 400, on(0)),
		move("r1", partnerGU, branchHamburg, ledger.PalletEuro, 150, on(3)),
		move("b2", branchHamburg, partnerGU, ledger.PalletEuro, 300, on(5)),
	}

	first := ledger.MatchLoans(txs, partnerGU, ledger.PalletEuro, on(10))
	second := ledger.MatchLoans(txs, partnerGU, ledger.PalletEuro, on(10))
	if len(first) != len(second) {
		t.Fatalf("repeated matching produced different loan counts: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("loan %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
