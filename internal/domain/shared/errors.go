package shared

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidationError indicates a malformed, missing or out-of-range input field
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// NotFoundError indicates a referenced card or transaction does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return e.Resource + " not found: " + e.ID
}

// ConflictError indicates the operation was already applied
type ConflictError struct {
	Resource string
	ID       string
	Reason   string
}

func (e ConflictError) Error() string {
	return e.Resource + " " + e.ID + ": " + e.Reason
}

// InvalidStateError indicates the target exists but cannot take the requested transition
type InvalidStateError struct {
	Resource string
	ID       string
	State    string
	Reason   string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s is %s: %s", e.Resource, e.ID, e.State, e.Reason)
}

// InsufficientFundsError indicates a debit would take a balance below zero
type InsufficientFundsError struct {
	CardID   uuid.UUID
	Balance  decimal.Decimal
	Required decimal.Decimal
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on card %s: balance %s, required %s",
		e.CardID, e.Balance.StringFixed(2), e.Required.StringFixed(2))
}

// StorageError wraps a transient failure of the underlying store.
// No partial mutation is visible when it is returned, so callers may retry.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return "storage failure during " + e.Op + ": " + e.Err.Error()
}

func (e StorageError) Unwrap() error {
	return e.Err
}

// ErrConcurrentModification is reported when a versioned write lost a race
var ErrConcurrentModification = errors.New("concurrent modification detected")

// IsRetryable reports whether err is a transient condition
func IsRetryable(err error) bool {
	var storageErr StorageError
	return errors.As(err, &storageErr)
}

// IsLedgerError reports whether err already belongs to the ledger error taxonomy
func IsLedgerError(err error) bool {
	var (
		validationErr   ValidationError
		notFoundErr     NotFoundError
		conflictErr     ConflictError
		invalidStateErr InvalidStateError
		fundsErr        InsufficientFundsError
		storageErr      StorageError
	)
	return errors.As(err, &validationErr) ||
		errors.As(err, &notFoundErr) ||
		errors.As(err, &conflictErr) ||
		errors.As(err, &invalidStateErr) ||
		errors.As(err, &fundsErr) ||
		errors.As(err, &storageErr)
}

// WrapStorage classifies err: ledger errors pass through, anything else becomes a StorageError
func WrapStorage(op string, err error) error {
	if err == nil || IsLedgerError(err) {
		return err
	}
	return StorageError{Op: op, Err: err}
}
