/*
seed.go - Demo dataset

PURPOSE:
  Seeds a small but representative dataset so a fresh server has
  something to show: two branches, a tiered pooling partner, a flat-fee
  customer, a provider, forty days of movements, and one deliberate
  snapshot drift for the audit views.

  Seed rows use fixed ids, so seeding twice fails on the duplicate check
  instead of doubling the data.
*/
package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/depotline/pallet-engine/ledger"
	"github.com/depotline/pallet-engine/partners"
)

// SeedDefaultPartners saves the partner configurations currently in
// effect. Safe to call on every boot: saving is an upsert.
func SeedDefaultPartners(ctx context.Context, store Store) error {
	defaults := []ledger.Partner{
		partners.TieredRentalPartner("partner-grandunion", "Grand Union Pooling",
			ledger.PalletEuro, ledger.PalletStandard),
		partners.FlatRentalPartner("partner-nordfresh", "NordFresh Logistics",
			decimal.RequireFromString("1.50"), 5, ledger.PalletEuro),
		partners.BalanceOnlyPartner("provider-poolco", "PoolCo Supply", ledger.PartnerProvider,
			ledger.PalletEuro, ledger.PalletStandard, ledger.PalletHalf),
	}
	for _, p := range defaults {
		if err := store.SavePartner(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// SeedDemo loads the demo dataset.
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := SeedDefaultPartners(ctx, h.store); err != nil {
		respondError(w, err)
		return
	}

	today := ledger.Today()
	type seedRow struct {
		id       string
		txType   ledger.TxType
		source   ledger.EntityID
		dest     ledger.EntityID
		pallet   ledger.PalletID
		qty      int
		daysAgo  int
		status   ledger.TxStatus
		docNo    string
		scrapQty int
	}

	rows := []seedRow{
		// Intake from the provider.
		{"seed-001", ledger.TxIn, "provider-poolco", "branch-hamburg", ledger.PalletEuro, 1200, 40, ledger.StatusCompleted, "PO-4711", 0},
		{"seed-002", ledger.TxIn, "provider-poolco", "branch-hamburg", ledger.PalletStandard, 600, 40, ledger.StatusCompleted, "PO-4711", 0},
		{"seed-003", ledger.TxIn, "provider-poolco", "branch-leipzig", ledger.PalletEuro, 500, 38, ledger.StatusCompleted, "PO-4712", 0},

		// Pooling partner borrows, aging past the danger threshold.
		{"seed-010", ledger.TxOut, "branch-hamburg", "partner-grandunion", ledger.PalletEuro, 400, 25, ledger.StatusCompleted, "MOV-1001", 0},
		{"seed-011", ledger.TxOut, "branch-hamburg", "partner-grandunion", ledger.PalletEuro, 300, 18, ledger.StatusCompleted, "MOV-1002", 0},
		{"seed-012", ledger.TxOut, "branch-hamburg", "partner-grandunion", ledger.PalletStandard, 150, 12, ledger.StatusCompleted, "MOV-1003", 0},
		// Partial return consumes the oldest borrow first.
		{"seed-013", ledger.TxIn, "partner-grandunion", "branch-hamburg", ledger.PalletEuro, 250, 9, ledger.StatusCompleted, "RET-2001", 0},

		// Flat-fee customer, still inside the grace period.
		{"seed-020", ledger.TxOut, "branch-leipzig", "partner-nordfresh", ledger.PalletEuro, 120, 4, ledger.StatusCompleted, "MOV-1010", 0},

		// Maintenance run with write-offs.
		{"seed-030", ledger.TxMaintenance, "branch-hamburg", "repair-depot", ledger.PalletEuro, 60, 7, ledger.StatusCompleted, "MNT-3001", 8},

		// In-transit transfer between branches.
		{"seed-040", ledger.TxOut, "branch-hamburg", "branch-leipzig", ledger.PalletStandard, 80, 1, ledger.StatusPending, "MOV-1020", 0},
	}

	txs := make([]ledger.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, ledger.Transaction{
			ID:        row.id,
			Type:      row.txType,
			Source:    row.source,
			Dest:      row.dest,
			PalletID:  row.pallet,
			Qty:       row.qty,
			Date:      today.AddDays(-row.daysAgo),
			Status:    row.status,
			DocNo:     row.docNo,
			ScrapQty:  row.scrapQty,
			CreatedAt: today,
		})
	}
	if err := h.store.AppendBatch(ctx, txs); err != nil {
		respondError(w, err)
		return
	}

	for _, tx := range txs {
		if tx.Status != ledger.StatusCompleted {
			continue
		}
		if err := h.applyStock(r, tx, +1); err != nil {
			respondError(w, err)
			return
		}
	}

	// One small drift so the audit views have something real to show.
	if err := h.store.AdjustStock(ctx, "branch-leipzig", ledger.PalletEuro, 3); err != nil {
		respondError(w, err)
		return
	}

	h.log.WithField("transactions", len(txs)).Info("demo dataset seeded")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"partners":     3,
		"transactions": len(txs),
	})
}
