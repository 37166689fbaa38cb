package points

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const queryTimeout = 3 * time.Second

// defaultMaxRetries bounds the re-read/re-apply loop on commit conflicts.
const defaultMaxRetries = 3

// applyFn is one attempt at committing a mutation. Overridable in tests so
// the retry loop can be driven without a live database.
type applyFn func(ctx context.Context, cleanerID uuid.UUID, kind Kind, amount int, description, initiatedBy string) (*LedgerEntry, error)

// Repository owns all reads and writes of cleaner point balances and the
// ledger. The balance update and the ledger append always commit together.
type Repository struct {
	db         *sqlx.DB
	maxRetries int
	apply      applyFn
}

func NewRepository(db *sqlx.DB) *Repository {
	r := &Repository{db: db, maxRetries: defaultMaxRetries}
	r.apply = r.applyOnce
	return r
}

// NewRepositoryWithRetries overrides the conflict retry bound.
func NewRepositoryWithRetries(db *sqlx.DB, maxRetries int) *Repository {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	r := &Repository{db: db, maxRetries: maxRetries}
	r.apply = r.applyOnce
	return r
}

// Apply commits one credit or debit: it locks the account row, validates the
// next balance, updates the balance and appends the ledger entry in a single
// transaction. Serialization failures and deadlocks are retried up to the
// configured bound before ErrTransactionConflict surfaces.
func (r *Repository) Apply(ctx context.Context, cleanerID uuid.UUID, kind Kind, amount int, description, initiatedBy string) (*LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInternal, kind)
	}

	var lastErr error
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		entry, err := r.apply(ctx, cleanerID, kind, amount, description, initiatedBy)
		if err == nil {
			return entry, nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %v", ErrTransactionConflict, lastErr)
}

func (r *Repository) applyOnce(ctx context.Context, cleanerID uuid.UUID, kind Kind, amount int, description, initiatedBy string) (*LedgerEntry, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	// Row lock serializes all mutations of this account; other accounts
	// proceed in parallel.
	var balance int
	err = tx.GetContext(ctx2, &balance, `
		SELECT current_points FROM cleaner_accounts WHERE cleaner_id = $1 FOR UPDATE
	`, cleanerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, wrapDBErr(err, "lock account row")
	}

	signed := amount
	if kind == KindDebit {
		signed = -amount
	}

	newBalance := balance + signed
	if newBalance < 0 {
		return nil, &InsufficientBalanceError{Balance: balance, Requested: amount}
	}

	if _, err := tx.ExecContext(ctx2, `
		UPDATE cleaner_accounts
		SET current_points = $2, last_mutation_at = now()
		WHERE cleaner_id = $1
	`, cleanerID, newBalance); err != nil {
		return nil, wrapDBErr(err, "update balance")
	}

	entry := &LedgerEntry{
		CleanerID:    cleanerID,
		Kind:         kind,
		Amount:       amount,
		SignedAmount: signed,
		BalanceAfter: newBalance,
		Description:  description,
		InitiatedBy:  initiatedBy,
	}

	err = tx.QueryRowContext(ctx2, `
		INSERT INTO point_ledger (
			id, cleaner_id, kind, amount, signed_amount, balance_after, description, note, initiated_by
		)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, '', $7)
		RETURNING id, created_at
	`, cleanerID, string(kind), amount, signed, newBalance, description, initiatedBy).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, wrapDBErr(err, "insert ledger entry")
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapDBErr(err, "commit tx")
	}

	return entry, nil
}

// GetAccount returns the balance record for a cleaner.
func (r *Repository) GetAccount(ctx context.Context, cleanerID uuid.UUID) (*Account, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var acc Account
	err := r.db.GetContext(ctx2, &acc, `
		SELECT cleaner_id, current_points, last_mutation_at
		FROM cleaner_accounts
		WHERE cleaner_id = $1
	`, cleanerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, wrapDBErr(err, "get account")
	}

	return &acc, nil
}

// GetBalance returns the current point balance for a cleaner.
func (r *Repository) GetBalance(ctx context.Context, cleanerID uuid.UUID) (int, error) {
	acc, err := r.GetAccount(ctx, cleanerID)
	if err != nil {
		return 0, err
	}
	return acc.CurrentPoints, nil
}

// GetEntry returns a single ledger entry by id.
func (r *Repository) GetEntry(ctx context.Context, entryID uuid.UUID) (*LedgerEntry, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var entry LedgerEntry
	err := r.db.GetContext(ctx2, &entry, `
		SELECT id, cleaner_id, kind, amount, signed_amount, balance_after, description, note, initiated_by, created_at
		FROM point_ledger
		WHERE id = $1
	`, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, wrapDBErr(err, "get entry")
	}

	return &entry, nil
}

// ListEntries returns a cleaner's ledger ordered by creation time descending.
func (r *Repository) ListEntries(ctx context.Context, cleanerID uuid.UUID, filters ListFilters) ([]LedgerEntry, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	base := `
		SELECT id, cleaner_id, kind, amount, signed_amount, balance_after, description, note, initiated_by, created_at
		FROM point_ledger
		WHERE cleaner_id = $1`
	args := []interface{}{cleanerID}
	idx := 2

	if filters.Kind != nil {
		base += fmt.Sprintf(" AND kind = $%d", idx)
		args = append(args, string(*filters.Kind))
		idx++
	}
	if filters.DateFrom != nil {
		base += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, *filters.DateFrom)
		idx++
	}
	if filters.DateTo != nil {
		base += fmt.Sprintf(" AND created_at <= $%d", idx)
		args = append(args, *filters.DateTo)
		idx++
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	base += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, filters.Offset)

	entries := make([]LedgerEntry, 0)
	if err := r.db.SelectContext(ctx2, &entries, base, args...); err != nil {
		return nil, wrapDBErr(err, "list entries")
	}

	return entries, nil
}

// AnnotateEntry overwrites the free-text note on an existing ledger entry.
// It touches nothing else: balances and financial fields stay immutable.
func (r *Repository) AnnotateEntry(ctx context.Context, entryID uuid.UUID, note string) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		UPDATE point_ledger SET note = $2 WHERE id = $1
	`, entryID, note)
	if err != nil {
		return wrapDBErr(err, "annotate entry")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return wrapDBErr(err, "rows affected")
	}
	if rows == 0 {
		return ErrEntryNotFound
	}

	return nil
}

// retryable reports whether a commit failed on a transient concurrency error:
// serialization_failure (40001) or deadlock_detected (40P01).
func retryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// wrapDBErr keeps the pq error in the chain so retryable can inspect it,
// while errors.Is(err, ErrInternal) still matches for callers.
func wrapDBErr(err error, op string) error {
	return fmt.Errorf("points %s: %w: %w", op, ErrInternal, err)
}
