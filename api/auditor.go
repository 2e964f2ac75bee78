/*
auditor.go - Background consistency audit

PURPOSE:
  Periodically replays the ledger against the confirmed stock snapshot
  and logs every divergence. Drift between the two representations is a
  known failure mode of manually adjusted stock counts; the auditor makes
  it visible in the logs long before anyone opens the audit endpoint.

DESIGN:
  Single goroutine on a ticker. Runs once immediately on Start so a
  freshly booted server reports existing drift without waiting a full
  interval. The auditor only reads and logs; repairs stay a human
  decision.
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/depotline/pallet-engine/ledger"
)

// Auditor runs the ledger/snapshot consistency check on an interval.
type Auditor struct {
	store    Store
	log      *logrus.Logger
	interval time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewAuditor(store Store, log *logrus.Logger, interval time.Duration) *Auditor {
	return &Auditor{
		store:    store,
		log:      log,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start launches the background audit loop.
func (a *Auditor) Start() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		a.runOnce()

		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.runOnce()
			case <-a.stop:
				return
			}
		}
	}()
	a.log.WithField("interval", a.interval.String()).Info("consistency auditor started")
}

// Stop halts the audit loop and waits for the current run to finish.
func (a *Auditor) Stop() {
	close(a.stop)
	a.wg.Wait()
	a.log.Info("consistency auditor stopped")
}

func (a *Auditor) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	txs, err := a.store.Transactions(ctx)
	if err != nil {
		a.log.WithError(err).Error("audit: loading transactions failed")
		return
	}
	snapshot, err := a.store.StockSnapshot(ctx)
	if err != nil {
		a.log.WithError(err).Error("audit: loading stock snapshot failed")
		return
	}
	cfg, err := a.store.Partners(ctx)
	if err != nil {
		a.log.WithError(err).Error("audit: loading partners failed")
		return
	}

	discrepancies := ledger.CheckConsistency(txs, snapshot, cfg)
	if len(discrepancies) == 0 {
		a.log.Debug("audit: ledger and snapshot agree")
		return
	}

	for _, d := range discrepancies {
		entry := a.log.WithFields(logrus.Fields{
			"kind":         string(d.Kind),
			"entity_id":    string(d.EntityID),
			"pallet_id":    string(d.PalletID),
			"ledger_qty":   d.LedgerQty,
			"snapshot_qty": d.SnapshotQty,
			"delta":        d.Delta,
		})
		if d.Severity == ledger.SeverityHigh {
			entry.Warn("audit: discrepancy detected")
		} else {
			entry.Info("audit: discrepancy detected")
		}
	}
}
