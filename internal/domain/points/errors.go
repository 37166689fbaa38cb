package points

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount is returned when amount is missing, zero or negative
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrAccountNotFound is returned when no points account exists for the cleaner
	ErrAccountNotFound = errors.New("points account not found")

	// ErrInsufficientBalance is returned when a debit would drive the balance negative
	ErrInsufficientBalance = errors.New("insufficient point balance")

	// ErrTransactionConflict is returned when concurrent-write retries are exhausted.
	// No partial state was committed, so the caller may retry the whole operation.
	ErrTransactionConflict = errors.New("transaction conflict: retries exhausted")

	// ErrEntryNotFound is returned when an annotation target is missing
	ErrEntryNotFound = errors.New("ledger entry not found")

	// ErrEmptyBatch is returned when a batch request names no accounts
	ErrEmptyBatch = errors.New("batch requires at least one account")

	ErrInternal = errors.New("internal error")
)

// InsufficientBalanceError carries the balance and requested amount so callers
// can render a precise message. errors.Is(err, ErrInsufficientBalance) matches.
type InsufficientBalanceError struct {
	Balance   int
	Requested int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient point balance: have %d, requested %d", e.Balance, e.Requested)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
