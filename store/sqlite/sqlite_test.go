package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depotline/pallet-engine/ledger"
	"github.com/depotline/pallet-engine/partners"
	"github.com/depotline/pallet-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(n int) ledger.TimePoint {
	return ledger.NewTimePoint(2025, time.June, 1).AddDays(n)
}

func stubTx(id string, date ledger.TimePoint) ledger.Transaction {
	return ledger.Transaction{
		ID:       id,
		Type:     ledger.TxOut,
		Source:   "branch-hamburg",
		Dest:     "partner-grandunion",
		PalletID: ledger.PalletEuro,
		Qty:      10,
		Date:     date,
		Status:   ledger.StatusPending,
		DocNo:    "MOV-1",
	}
}

// =============================================================================
// MOVEMENT LOG
// =============================================================================

func TestSQLite_AppendAndReadBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tx := stubTx("t1", day(3))
	tx.Note = "first shipment"
	require.NoError(t, s.Append(ctx, tx))

	txs, err := s.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	got := txs[0]
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, ledger.TxOut, got.Type)
	assert.Equal(t, ledger.EntityID("branch-hamburg"), got.Source)
	assert.Equal(t, 10, got.Qty)
	assert.True(t, got.Date.Equal(day(3)))
	assert.Equal(t, "MOV-1", got.DocNo)
	assert.Equal(t, "first shipment", got.Note)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSQLite_DuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Append(ctx, stubTx("t1", day(0))))
	assert.ErrorIs(t, s.Append(ctx, stubTx("t1", day(1))), ledger.ErrDuplicateTransaction)
}

func TestSQLite_AppendBatchRollsBackOnDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Append(ctx, stubTx("existing", day(0))))

	err := s.AppendBatch(ctx, []ledger.Transaction{
		stubTx("new-1", day(1)),
		stubTx("existing", day(2)),
	})
	assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction)

	txs, err := s.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 1, "batch must roll back completely")
}

func TestSQLite_OrderedByDateThenInsertion(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Append(ctx, stubTx("late", day(10))))
	require.NoError(t, s.Append(ctx, stubTx("early-a", day(2))))
	require.NoError(t, s.Append(ctx, stubTx("early-b", day(2))))

	txs, err := s.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "early-a", txs[0].ID)
	assert.Equal(t, "early-b", txs[1].ID)
	assert.Equal(t, "late", txs[2].ID)
}

func TestSQLite_TransactionsInRange(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for i, id := range []string{"t0", "t1", "t2"} {
		require.NoError(t, s.Append(ctx, stubTx(id, day(i*5))))
	}

	txs, err := s.TransactionsInRange(ctx, day(0), day(5))
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	_, err = s.TransactionsInRange(ctx, day(5), day(0))
	assert.ErrorIs(t, err, ledger.ErrInvalidPeriod)
}

// =============================================================================
// LIFECYCLE AND CORRECTIONS
// =============================================================================

func TestSQLite_StatusLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Append(ctx, stubTx("t1", day(0))))

	require.NoError(t, s.SetStatus(ctx, "t1", ledger.StatusCompleted))
	require.NoError(t, s.SetStatus(ctx, "t1", ledger.StatusCancelled))

	err := s.SetStatus(ctx, "t1", ledger.StatusCompleted)
	assert.ErrorIs(t, err, ledger.ErrInvalidStatusChange)

	assert.ErrorIs(t, s.SetStatus(ctx, "ghost", ledger.StatusCompleted), ledger.ErrTransactionNotFound)
}

func TestSQLite_CorrectPreservesOriginals(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Append(ctx, stubTx("t1", day(0))))
	require.NoError(t, s.SetStatus(ctx, "t1", ledger.StatusCompleted))

	require.NoError(t, s.Correct(ctx, "t1", ledger.PalletStandard, 8))
	require.NoError(t, s.Correct(ctx, "t1", ledger.PalletHalf, 6))

	txs, err := s.Transactions(ctx)
	require.NoError(t, err)
	got := txs[0]
	assert.Equal(t, ledger.PalletHalf, got.PalletID)
	assert.Equal(t, 6, got.Qty)
	assert.Equal(t, ledger.PalletEuro, got.OriginalPalletID, "first correction's original must survive")
	assert.Equal(t, 10, got.OriginalQty)
}

func TestSQLite_CorrectGuards(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Append(ctx, stubTx("t1", day(0))))

	assert.ErrorIs(t, s.Correct(ctx, "t1", ledger.PalletEuro, 0), ledger.ErrInvalidQuantity)
	assert.ErrorIs(t, s.Correct(ctx, "t1", ledger.PalletEuro, 5), ledger.ErrInvalidStatusChange)
	assert.ErrorIs(t, s.Correct(ctx, "ghost", ledger.PalletEuro, 5), ledger.ErrTransactionNotFound)
}

// =============================================================================
// STOCK AND PARTNERS
// =============================================================================

func TestSQLite_StockUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.AdjustStock(ctx, "branch-hamburg", ledger.PalletEuro, 500))
	require.NoError(t, s.AdjustStock(ctx, "branch-hamburg", ledger.PalletEuro, -120))
	require.NoError(t, s.AdjustStock(ctx, "branch-leipzig", ledger.PalletHalf, 40))

	snapshot, err := s.StockSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 380, snapshot.Qty("branch-hamburg", ledger.PalletEuro))
	assert.Equal(t, 40, snapshot.Qty("branch-leipzig", ledger.PalletHalf))
}

func TestSQLite_PartnerRoundTripThroughJSON(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	original := partners.TieredRentalPartner("partner-grandunion", "Grand Union Pooling",
		ledger.PalletEuro, ledger.PalletStandard)
	require.NoError(t, s.SavePartner(ctx, original))

	cfg, err := s.Partners(ctx)
	require.NoError(t, err)
	require.Contains(t, cfg, ledger.EntityID("partner-grandunion"))

	restored := cfg["partner-grandunion"]
	assert.Equal(t, original.Name, restored.Name)
	assert.Equal(t, original.AllowedPallets, restored.AllowedPallets)
	require.NotNil(t, restored.Rates)
	assert.True(t, restored.Rates.DailyRate(2500).Equal(original.Rates.DailyRate(2500)))
}

func TestSQLite_SavePartnerIsUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := partners.BalanceOnlyPartner("partner-x", "First Name", ledger.PartnerCustomer)
	require.NoError(t, s.SavePartner(ctx, p))
	p.Name = "Second Name"
	require.NoError(t, s.SavePartner(ctx, p))

	cfg, err := s.Partners(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Second Name", cfg["partner-x"].Name)
}
