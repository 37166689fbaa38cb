package cleaner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a cleaner together with its zero-balance points account.
// Both rows commit atomically so the points engine never sees a cleaner
// without an account.
func (r *Repository) Create(ctx context.Context, c *Cleaner) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx2, `
		INSERT INTO cleaners (id, name, phone, region, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, c.Name, c.Phone, c.Region, string(c.Status)).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert cleaner", ErrInternal)
	}

	if _, err := tx.ExecContext(ctx2, `
		INSERT INTO cleaner_accounts (cleaner_id, current_points, last_mutation_at)
		VALUES ($1, 0, now())
	`, c.ID); err != nil {
		return fmt.Errorf("%w: insert points account", ErrInternal)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit tx", ErrInternal)
	}

	return nil
}

// GetByID returns a cleaner by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Cleaner, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var c Cleaner
	err := r.db.GetContext(ctx2, &c, `
		SELECT id, name, phone, region, status, created_at, updated_at
		FROM cleaners
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get cleaner", ErrInternal)
	}

	return &c, nil
}

// List returns cleaners ordered by creation time descending.
func (r *Repository) List(ctx context.Context, pagination Pagination) ([]Cleaner, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	limit := pagination.Limit
	if limit <= 0 {
		limit = 20
	}

	cleaners := make([]Cleaner, 0)
	err := r.db.SelectContext(ctx2, &cleaners, `
		SELECT id, name, phone, region, status, created_at, updated_at
		FROM cleaners
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, pagination.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list cleaners", ErrInternal)
	}

	return cleaners, nil
}
