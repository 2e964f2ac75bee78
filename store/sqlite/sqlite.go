/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements ledger.Store and ledger.PartnerStore using SQLite. In
  production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

APPEND-ONLY ENFORCEMENT:
  Movement rows are never deleted. The only UPDATE statements touch the
  status column (complete/cancel) and the correction fields; both paths
  validate the transition before writing.

KEY TABLES:
  transactions: The movement log
  partners:     Partner configuration as JSON (parsed by factory)
  stock_levels: Confirmed on-hand totals, maintained as movements complete

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer and crash recovery is cleaner.

USAGE:
  store, err := sqlite.New("./data/pallets.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/store.go:        Interface definitions
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/depotline/pallet-engine/factory"
	"github.com/depotline/pallet-engine/ledger"
)

// Store implements ledger.Store and ledger.PartnerStore using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	factory *factory.PartnerFactory
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, factory: factory.NewPartnerFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Movement log. Rows are never deleted; cancellation and corrections
	-- are column updates guarded by the lifecycle rules.
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		tx_type TEXT NOT NULL,
		source TEXT NOT NULL,
		dest TEXT NOT NULL,
		pallet_id TEXT NOT NULL,
		qty INTEGER NOT NULL,
		tx_date TEXT NOT NULL,
		status TEXT NOT NULL,
		doc_no TEXT,
		reference_doc_no TEXT,
		original_pallet_id TEXT NOT NULL DEFAULT '',
		original_qty INTEGER NOT NULL DEFAULT 0,
		scrap_qty INTEGER NOT NULL DEFAULT 0,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_date
		ON transactions(tx_date);
	CREATE INDEX IF NOT EXISTS idx_transactions_source
		ON transactions(source, pallet_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_dest
		ON transactions(dest, pallet_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_doc
		ON transactions(doc_no) WHERE doc_no IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_transactions_status
		ON transactions(status);

	-- Partner configuration (JSON parsed by the factory package)
	CREATE TABLE IF NOT EXISTS partners (
		id TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Confirmed on-hand stock per branch and pallet type
	CREATE TABLE IF NOT EXISTS stock_levels (
		branch_id TEXT NOT NULL,
		pallet_id TEXT NOT NULL,
		qty INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (branch_id, pallet_id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (s *Store) Append(ctx context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(ctx, s.db, tx)
}

func (s *Store) AppendBatch(ctx context.Context, txs []ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer dbTx.Rollback()

	for _, tx := range txs {
		if err := s.insert(ctx, dbTx, tx); err != nil {
			return err
		}
	}
	return dbTx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) insert(ctx context.Context, db execer, tx ledger.Transaction) error {
	if err := ledger.CheckTransaction(tx); err != nil {
		return err
	}

	var exists int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM transactions WHERE id = ?`, tx.ID).Scan(&exists); err != nil {
		return err
	}
	if exists > 0 {
		return ledger.ErrDuplicateTransaction
	}

	createdAt := tx.CreatedAt
	if createdAt.IsZero() {
		createdAt = ledger.Today()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, tx_type, source, dest, pallet_id, qty, tx_date, status,
			 doc_no, reference_doc_no, original_pallet_id, original_qty,
			 scrap_qty, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Type), string(tx.Source), string(tx.Dest),
		string(tx.PalletID), tx.Qty, tx.Date.String(), string(tx.Status),
		tx.DocNo, tx.ReferenceDocNo, string(tx.OriginalPalletID),
		tx.OriginalQty, tx.ScrapQty, tx.Note,
		createdAt.Time.Format(time.RFC3339),
	)
	return err
}

func (s *Store) SetStatus(ctx context.Context, id string, status ledger.TxStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM transactions WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return ledger.ErrTransactionNotFound
	}
	if err != nil {
		return err
	}
	if !ledger.StatusChangeAllowed(ledger.TxStatus(current), status) {
		return &ledger.StatusChangeError{TxID: id, From: ledger.TxStatus(current), To: status}
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE transactions SET status = ? WHERE id = ?`, string(status), id)
	return err
}

func (s *Store) Correct(ctx context.Context, id string, pallet ledger.PalletID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		return ledger.ErrInvalidQuantity
	}

	var status, curPallet, origPallet string
	var curQty, origQty int
	err := s.db.QueryRowContext(ctx, `
		SELECT status, pallet_id, qty, original_pallet_id, original_qty
		FROM transactions WHERE id = ?`, id).
		Scan(&status, &curPallet, &curQty, &origPallet, &origQty)
	if err == sql.ErrNoRows {
		return ledger.ErrTransactionNotFound
	}
	if err != nil {
		return err
	}
	if ledger.TxStatus(status) != ledger.StatusCompleted {
		return &ledger.StatusChangeError{
			TxID: id, From: ledger.TxStatus(status), To: ledger.TxStatus(status),
		}
	}

	// Preserve the originally recorded figures on first correction only.
	if origPallet == "" && origQty == 0 {
		origPallet, origQty = curPallet, curQty
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE transactions
		SET pallet_id = ?, qty = ?, original_pallet_id = ?, original_qty = ?
		WHERE id = ?`,
		string(pallet), qty, origPallet, origQty, id)
	return err
}

const txColumns = `
	id, tx_type, source, dest, pallet_id, qty, tx_date, status,
	doc_no, reference_doc_no, original_pallet_id, original_qty,
	scrap_qty, note, created_at`

func (s *Store) Transactions(ctx context.Context) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+txColumns+` FROM transactions ORDER BY tx_date ASC, rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (s *Store) TransactionsInRange(ctx context.Context, from, to ledger.TimePoint) ([]ledger.Transaction, error) {
	if to.Before(from) {
		return nil, ledger.ErrInvalidPeriod
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+txColumns+` FROM transactions
		 WHERE tx_date >= ? AND tx_date <= ?
		 ORDER BY tx_date ASC, rowid ASC`,
		from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	for rows.Next() {
		var tx ledger.Transaction
		var txType, source, dest, pallet, date, status, origPallet, createdAt string
		var docNo, refDocNo, note sql.NullString

		if err := rows.Scan(&tx.ID, &txType, &source, &dest, &pallet, &tx.Qty,
			&date, &status, &docNo, &refDocNo, &origPallet, &tx.OriginalQty,
			&tx.ScrapQty, &note, &createdAt); err != nil {
			return nil, err
		}

		tx.Type = ledger.TxType(txType)
		tx.Source = ledger.EntityID(source)
		tx.Dest = ledger.EntityID(dest)
		tx.PalletID = ledger.PalletID(pallet)
		tx.Status = ledger.TxStatus(status)
		tx.OriginalPalletID = ledger.PalletID(origPallet)
		tx.DocNo = docNo.String
		tx.ReferenceDocNo = refDocNo.String
		tx.Note = note.String

		if d, err := ledger.ParseDay(date); err == nil {
			tx.Date = d
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			tx.CreatedAt = ledger.At(t)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// =============================================================================
// STOCK LEVELS
// =============================================================================

func (s *Store) StockSnapshot(ctx context.Context) (ledger.StockSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT branch_id, pallet_id, qty FROM stock_levels`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshot := make(ledger.StockSnapshot)
	for rows.Next() {
		var branch, pallet string
		var qty int
		if err := rows.Scan(&branch, &pallet, &qty); err != nil {
			return nil, err
		}
		b := ledger.EntityID(branch)
		if snapshot[b] == nil {
			snapshot[b] = make(map[ledger.PalletID]int)
		}
		snapshot[b][ledger.PalletID(pallet)] = qty
	}
	return snapshot, rows.Err()
}

func (s *Store) AdjustStock(ctx context.Context, branch ledger.EntityID, pallet ledger.PalletID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_levels (branch_id, pallet_id, qty)
		VALUES (?, ?, ?)
		ON CONFLICT(branch_id, pallet_id) DO UPDATE SET qty = qty + excluded.qty`,
		string(branch), string(pallet), delta)
	return err
}

// =============================================================================
// PARTNERS
// =============================================================================

func (s *Store) SavePartner(ctx context.Context, p ledger.Partner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := json.Marshal(factory.ToJSON(p))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO partners (id, config_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET config_json = excluded.config_json,
		                              updated_at = excluded.updated_at`,
		string(p.ID), string(cfg), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) Partners(ctx context.Context) (ledger.PartnerConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT config_json FROM partners`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cfg := make(ledger.PartnerConfig)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		p, err := s.factory.ParsePartner(raw)
		if err != nil {
			continue // skip unparsable configs; config gaps are never fatal
		}
		cfg[p.ID] = p
	}
	return cfg, rows.Err()
}
