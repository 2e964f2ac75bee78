// Package store provides an in-memory ledger.Store for tests and dev.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/depotline/pallet-engine/ledger"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	txs   []ledger.Transaction
	byID  map[string]int // id -> index in txs
	stock ledger.StockSnapshot

	partners ledger.PartnerConfig
}

func NewMemory() *Memory {
	return &Memory{
		byID:     make(map[string]int),
		stock:    make(ledger.StockSnapshot),
		partners: make(ledger.PartnerConfig),
	}
}

// Append adds a single transaction, keeping the log ordered by date with
// insertion order preserved among equal dates.
func (m *Memory) Append(_ context.Context, tx ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(tx)
}

// AppendBatch adds all lines of a shipment atomically: every row is
// checked before any row is inserted.
func (m *Memory) AppendBatch(_ context.Context, txs []ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if _, exists := m.byID[tx.ID]; exists || seen[tx.ID] {
			return ledger.ErrDuplicateTransaction
		}
		seen[tx.ID] = true
		if err := ledger.CheckTransaction(tx); err != nil {
			return err
		}
	}
	for _, tx := range txs {
		if err := m.appendLocked(tx); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) appendLocked(tx ledger.Transaction) error {
	if _, exists := m.byID[tx.ID]; exists {
		return ledger.ErrDuplicateTransaction
	}
	if err := ledger.CheckTransaction(tx); err != nil {
		return err
	}

	// Binary search for the insertion point; stable among equal dates.
	i := sort.Search(len(m.txs), func(i int) bool {
		return m.txs[i].Date.After(tx.Date)
	})
	m.txs = append(m.txs, ledger.Transaction{})
	copy(m.txs[i+1:], m.txs[i:])
	m.txs[i] = tx

	// Reindex shifted rows.
	for j := i; j < len(m.txs); j++ {
		m.byID[m.txs[j].ID] = j
	}
	return nil
}

func (m *Memory) SetStatus(_ context.Context, id string, status ledger.TxStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.byID[id]
	if !ok {
		return ledger.ErrTransactionNotFound
	}
	tx := &m.txs[i]
	if !ledger.StatusChangeAllowed(tx.Status, status) {
		return &ledger.StatusChangeError{TxID: id, From: tx.Status, To: status}
	}
	tx.Status = status
	return nil
}

func (m *Memory) Correct(_ context.Context, id string, pallet ledger.PalletID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.byID[id]
	if !ok {
		return ledger.ErrTransactionNotFound
	}
	if qty <= 0 {
		return ledger.ErrInvalidQuantity
	}
	tx := &m.txs[i]
	if tx.Status != ledger.StatusCompleted {
		return &ledger.StatusChangeError{TxID: id, From: tx.Status, To: tx.Status}
	}
	if !tx.IsCorrected() {
		tx.OriginalPalletID = tx.PalletID
		tx.OriginalQty = tx.Qty
	}
	tx.PalletID = pallet
	tx.Qty = qty
	return nil
}

func (m *Memory) Transactions(_ context.Context) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ledger.Transaction, len(m.txs))
	copy(out, m.txs)
	return out, nil
}

func (m *Memory) TransactionsInRange(_ context.Context, from, to ledger.TimePoint) ([]ledger.Transaction, error) {
	if to.Before(from) {
		return nil, ledger.ErrInvalidPeriod
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ledger.Transaction
	for _, tx := range m.txs {
		if from.BeforeOrEqual(tx.Date) && tx.Date.BeforeOrEqual(to) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *Memory) StockSnapshot(_ context.Context) (ledger.StockSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(ledger.StockSnapshot, len(m.stock))
	for branch, byPallet := range m.stock {
		cp := make(map[ledger.PalletID]int, len(byPallet))
		for p, q := range byPallet {
			cp[p] = q
		}
		out[branch] = cp
	}
	return out, nil
}

func (m *Memory) AdjustStock(_ context.Context, branch ledger.EntityID, pallet ledger.PalletID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stock[branch] == nil {
		m.stock[branch] = make(map[ledger.PalletID]int)
	}
	m.stock[branch][pallet] += delta
	return nil
}

// =============================================================================
// PARTNER CONFIG
// =============================================================================

func (m *Memory) SavePartner(_ context.Context, p ledger.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partners[p.ID] = p
	return nil
}

func (m *Memory) Partners(_ context.Context) (ledger.PartnerConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(ledger.PartnerConfig, len(m.partners))
	for id, p := range m.partners {
		out[id] = p
	}
	return out, nil
}
