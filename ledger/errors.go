/*
errors.go - Centralized error types for the engine

PURPOSE:
  All error types in one place. The engine's derivations are best-effort:
  malformed records are skipped and reported per-record (see validate.go)
  rather than aborting an analysis, so most of these errors surface at the
  persistence boundary, not inside the pure functions.

SEE ALSO:
  - validate.go: Per-record diagnostics for recoverable input problems
  - store.go:    Persistence interface that returns these errors
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateTransaction is returned when appending a transaction whose
	// id already exists. Expected behavior for retried writes.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")

	// ErrTransactionNotFound is returned for status changes or corrections
	// referencing an unknown transaction id.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvalidStatusChange is returned when a status transition is not
	// allowed (e.g. completing a cancelled line).
	ErrInvalidStatusChange = errors.New("invalid status change")

	// ErrInvalidQuantity is returned for non-positive quantities at the
	// write boundary.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidDate is returned for zero or unparsable dates at the
	// write boundary.
	ErrInvalidDate = errors.New("invalid date")

	// ErrPartnerNotFound is returned when looking up a partner that is not
	// configured. Note: the accrual engine itself never raises this; an
	// unconfigured partner is simply balance-only.
	ErrPartnerNotFound = errors.New("partner not found")

	// ErrInvalidPeriod is returned when a range query has end before start.
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StatusChangeError explains why a status transition was rejected.
type StatusChangeError struct {
	TxID string
	From TxStatus
	To   TxStatus
}

func (e *StatusChangeError) Error() string {
	return fmt.Sprintf("cannot change transaction %s from %s to %s", e.TxID, e.From, e.To)
}

func (e *StatusChangeError) Unwrap() error { return ErrInvalidStatusChange }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidStatusChange) ||
		errors.Is(err, ErrDuplicateTransaction) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrPartnerNotFound)
}
