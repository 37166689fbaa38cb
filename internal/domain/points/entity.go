package points

import (
	"time"

	"github.com/google/uuid"
)

// Kind defines the direction of a point transaction.
type Kind string

const (
	KindCredit Kind = "CREDIT"
	KindDebit  Kind = "DEBIT"
)

// Valid reports whether k is a known transaction kind.
func (k Kind) Valid() bool {
	return k == KindCredit || k == KindDebit
}

// Account is the per-cleaner balance record. The balance is mutated only
// through Apply; everything else about a cleaner lives in the cleaner domain.
type Account struct {
	CleanerID      uuid.UUID `db:"cleaner_id" json:"cleaner_id"`
	CurrentPoints  int       `db:"current_points" json:"current_points"`
	LastMutationAt time.Time `db:"last_mutation_at" json:"last_mutation_at"`
}

// LedgerEntry is one immutable audit row. Only Note may change after commit.
type LedgerEntry struct {
	ID           uuid.UUID `db:"id" json:"id"`
	CleanerID    uuid.UUID `db:"cleaner_id" json:"cleaner_id"`
	Kind         Kind      `db:"kind" json:"kind"`
	Amount       int       `db:"amount" json:"amount"`
	SignedAmount int       `db:"signed_amount" json:"signed_amount"`
	BalanceAfter int       `db:"balance_after" json:"balance_after"`
	Description  string    `db:"description" json:"description"`
	Note         string    `db:"note" json:"note"`
	InitiatedBy  string    `db:"initiated_by" json:"initiated_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ListFilters narrows ledger queries for the admin transaction history screen.
type ListFilters struct {
	Kind     *Kind
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// BatchOutcome is the per-account result of a batch operation: exactly one of
// Entry or Reason is set.
type BatchOutcome struct {
	CleanerID uuid.UUID    `json:"cleaner_id"`
	Entry     *LedgerEntry `json:"entry,omitempty"`
	Reason    string       `json:"reason,omitempty"`
}

// Succeeded reports whether this account's transaction committed.
func (o BatchOutcome) Succeeded() bool {
	return o.Entry != nil
}

// BatchResult aggregates per-account outcomes of one batch request.
// Partial failure is expected: failed accounts never roll back succeeded ones.
type BatchResult struct {
	Outcomes  []BatchOutcome `json:"outcomes"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
}
