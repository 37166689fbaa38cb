package points

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Batch fans one credit/debit request out across many accounts. Each account
// gets its own independent transaction: there is no cross-account atomicity
// and no rollback of successes when other accounts fail.
type Batch struct {
	coordinator Coordinator
}

func NewBatch(coordinator Coordinator) *Batch {
	return &Batch{coordinator: coordinator}
}

// Apply runs the same transaction against every account concurrently and
// reports every input account exactly once, as a success or a failure.
// Duplicate ids are collapsed so no account is charged twice by one request.
// It fails outright only when the input set is empty.
func (b *Batch) Apply(ctx context.Context, cleanerIDs []uuid.UUID, kind Kind, amount int, description, initiator string) (*BatchResult, error) {
	ids := dedupe(cleanerIDs)
	if len(ids) == 0 {
		return nil, ErrEmptyBatch
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInternal, kind)
	}

	outcomes := make([]BatchOutcome, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()

			entry, err := b.coordinator.Apply(ctx, id, kind, amount, description, initiator)
			if err != nil {
				outcomes[i] = BatchOutcome{CleanerID: id, Reason: failureReason(err)}
				return
			}
			outcomes[i] = BatchOutcome{CleanerID: id, Entry: entry}
		}(i, id)
	}
	wg.Wait()

	result := &BatchResult{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Succeeded() {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	log.Info().
		Str("kind", string(kind)).
		Int("amount", amount).
		Int("accounts", len(ids)).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Str("initiator", initiator).
		Msg("batch point operation finished")

	return result, nil
}

// failureReason maps a per-account error to the stable reason string carried
// in the batch result.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return "ACCOUNT_NOT_FOUND"
	case errors.Is(err, ErrInsufficientBalance):
		return "INSUFFICIENT_BALANCE"
	case errors.Is(err, ErrTransactionConflict):
		return "TRANSACTION_CONFLICT"
	case errors.Is(err, ErrInvalidAmount):
		return "INVALID_AMOUNT"
	default:
		return "INTERNAL_ERROR"
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
