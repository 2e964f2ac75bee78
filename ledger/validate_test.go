package ledger_test

import (
	"errors"
	"testing"

	"github.com/depotline/pallet-engine/ledger"
)

// =============================================================================
// PER-RECORD VALIDATION TESTS
// =============================================================================

func TestValidateTransactions_SkipsAndReports(t *testing.T) {
	// GIVEN: two good rows and three broken ones
	// WHEN: validating
	// THEN: the good rows survive in order, each bad row gets a diagnostic

	good1 := move("g1", branchHamburg, partnerGU, ledger.PalletEuro, 100, on(0))
	good2 := move("g2", branchHamburg, partnerGU, ledger.PalletEuro, 50, on(1))

	noQty := move("bad-qty", branchHamburg, partnerGU, ledger.PalletEuro, 0, on(2))
	noDate := move("bad-date", branchHamburg, partnerGU, ledger.PalletEuro, 10, ledger.TimePoint{})
	noPallet := move("bad-pallet", branchHamburg, partnerGU, "", 10, on(3))

	clean, diags := ledger.ValidateTransactions([]ledger.Transaction{good1, noQty, good2, noDate, noPallet})

	if len(clean) != 2 || clean[0].ID != "g1" || clean[1].ID != "g2" {
		t.Fatalf("expected the two good rows in order, got %+v", clean)
	}
	if len(diags) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(diags))
	}

	fields := map[string]string{}
	for _, d := range diags {
		fields[d.TxID] = d.Field
	}
	if fields["bad-qty"] != "qty" || fields["bad-date"] != "date" || fields["bad-pallet"] != "palletId" {
		t.Errorf("unexpected diagnostic fields: %v", fields)
	}
}

func TestValidateTransactions_CancelledRowsPassAsIs(t *testing.T) {
	// A cancelled row contributes nothing downstream, so a zero quantity
	// on it is noise, not damage.
	cancelled := cancelledMove("c1", branchHamburg, partnerGU, ledger.PalletEuro, 0, on(0))

	clean, diags := ledger.ValidateTransactions([]ledger.Transaction{cancelled})
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics for a cancelled row, got %+v", diags)
	}
	if len(clean) != 1 {
		t.Errorf("cancelled row should survive validation, got %d rows", len(clean))
	}
}

func TestValidateTransactions_UnknownTypeAndStatus(t *testing.T) {
	badType := move("t1", branchHamburg, partnerGU, ledger.PalletEuro, 10, on(0))
	badType.Type = "teleport"
	badStatus := move("t2", branchHamburg, partnerGU, ledger.PalletEuro, 10, on(0))
	badStatus.Status = "maybe"

	clean, diags := ledger.ValidateTransactions([]ledger.Transaction{badType, badStatus})
	if len(clean) != 0 || len(diags) != 2 {
		t.Fatalf("expected both rows rejected, got %d clean, %d diags", len(clean), len(diags))
	}
}

func TestValidateTransactions_NegativeScrap(t *testing.T) {
	bad := move("t1", branchHamburg, "repair-depot", ledger.PalletEuro, 10, on(0))
	bad.Type = ledger.TxMaintenance
	bad.ScrapQty = -3

	_, diags := ledger.ValidateTransactions([]ledger.Transaction{bad})
	if len(diags) != 1 || diags[0].Field != "scrapQty" {
		t.Errorf("expected a scrapQty diagnostic, got %+v", diags)
	}
}

// =============================================================================
// WRITE-BOUNDARY CHECK TESTS
// =============================================================================

func TestCheckTransaction_HardErrorsAtWriteBoundary(t *testing.T) {
	zeroQty := move("t1", branchHamburg, partnerGU, ledger.PalletEuro, 0, on(0))
	if err := ledger.CheckTransaction(zeroQty); !errors.Is(err, ledger.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}

	zeroDate := move("t2", branchHamburg, partnerGU, ledger.PalletEuro, 10, ledger.TimePoint{})
	if err := ledger.CheckTransaction(zeroDate); !errors.Is(err, ledger.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}

	good := move("t3", branchHamburg, partnerGU, ledger.PalletEuro, 10, on(0))
	if err := ledger.CheckTransaction(good); err != nil {
		t.Errorf("expected valid row to pass, got %v", err)
	}
}
