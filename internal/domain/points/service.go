package points

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Coordinator is the only surface allowed to mutate an account balance or
// append to the ledger. Every mutation is attributed to an explicit initiator.
type Coordinator interface {
	// Apply commits a single credit or debit and returns the ledger entry.
	Apply(ctx context.Context, cleanerID uuid.UUID, kind Kind, amount int, description, initiator string) (*LedgerEntry, error)

	// GetBalance returns the current point balance for a cleaner.
	GetBalance(ctx context.Context, cleanerID uuid.UUID) (int, error)

	// ListEntries returns the cleaner's ledger, newest first.
	ListEntries(ctx context.Context, cleanerID uuid.UUID, filters ListFilters) ([]LedgerEntry, error)

	// AnnotateEntry overwrites the note on an existing entry (last write wins).
	AnnotateEntry(ctx context.Context, entryID uuid.UUID, note string) error
}

type service struct {
	repo *Repository
}

// NewService creates the transaction coordinator over a points repository.
func NewService(repo *Repository) Coordinator {
	return &service{repo: repo}
}

func (s *service) Apply(ctx context.Context, cleanerID uuid.UUID, kind Kind, amount int, description, initiator string) (*LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !kind.Valid() {
		return nil, ErrInvalidAmount
	}

	if strings.TrimSpace(description) == "" {
		description = "point balance adjustment"
	}

	entry, err := s.repo.Apply(ctx, cleanerID, kind, amount, description, initiator)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("cleaner_id", cleanerID.String()).
		Str("kind", string(kind)).
		Int("amount", amount).
		Int("balance_after", entry.BalanceAfter).
		Str("initiator", initiator).
		Msg("point transaction applied")

	return entry, nil
}

func (s *service) GetBalance(ctx context.Context, cleanerID uuid.UUID) (int, error) {
	return s.repo.GetBalance(ctx, cleanerID)
}

func (s *service) ListEntries(ctx context.Context, cleanerID uuid.UUID, filters ListFilters) ([]LedgerEntry, error) {
	return s.repo.ListEntries(ctx, cleanerID, filters)
}

func (s *service) AnnotateEntry(ctx context.Context, entryID uuid.UUID, note string) error {
	if err := s.repo.AnnotateEntry(ctx, entryID, note); err != nil {
		return err
	}

	log.Info().Str("entry_id", entryID.String()).Msg("ledger entry annotated")
	return nil
}
