package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

// Store reads and updates the singleton point policy.
type Store interface {
	Get(ctx context.Context) (*PointPolicy, error)
	Update(ctx context.Context, p *PointPolicy) error
}

// Repository backs the policy store with the single point_policy row.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Get(ctx context.Context) (*PointPolicy, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var p PointPolicy
	err := r.db.GetContext(ctx2, &p, `
		SELECT target_scope, content_type, usage_type, fixed_amount, status, updated_at
		FROM point_policy
		WHERE id = 1
	`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Seed row missing: behave as disabled rather than erroring out.
			return &PointPolicy{
				ContentType: ContentTypeManual,
				UsageType:   UsageTypeManual,
				Status:      StatusInactive,
			}, nil
		}
		return nil, fmt.Errorf("%w: get policy", ErrInternal)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *Repository) Update(ctx context.Context, p *PointPolicy) error {
	if err := p.Validate(); err != nil {
		return err
	}

	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO point_policy (id, target_scope, content_type, usage_type, fixed_amount, status, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE SET
			target_scope = EXCLUDED.target_scope,
			content_type = EXCLUDED.content_type,
			usage_type = EXCLUDED.usage_type,
			fixed_amount = EXCLUDED.fixed_amount,
			status = EXCLUDED.status,
			updated_at = now()
	`, p.TargetScope, string(p.ContentType), string(p.UsageType), p.FixedAmount, string(p.Status))
	if err != nil {
		return fmt.Errorf("%w: update policy", ErrInternal)
	}

	return nil
}
