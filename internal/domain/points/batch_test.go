package points_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cleanhub/cleanhub-api/internal/domain/points"
)

// fakeCoordinator is an in-memory Coordinator for batch and handler tests.
type fakeCoordinator struct {
	mu        sync.Mutex
	balances  map[uuid.UUID]int
	notes     map[uuid.UUID]string
	entries   []points.LedgerEntry
	conflicts map[uuid.UUID]bool
}

func newFakeCoordinator(balances map[uuid.UUID]int) *fakeCoordinator {
	if balances == nil {
		balances = make(map[uuid.UUID]int)
	}
	return &fakeCoordinator{
		balances:  balances,
		notes:     make(map[uuid.UUID]string),
		conflicts: make(map[uuid.UUID]bool),
	}
}

// conflictOn makes every mutation of the given account fail the way the real
// repository fails once its serialization retries run out.
func (f *fakeCoordinator) conflictOn(cleanerID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conflicts[cleanerID] = true
}

func (f *fakeCoordinator) Apply(ctx context.Context, cleanerID uuid.UUID, kind points.Kind, amount int, description, initiator string) (*points.LedgerEntry, error) {
	if amount <= 0 {
		return nil, points.ErrInvalidAmount
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conflicts[cleanerID] {
		return nil, fmt.Errorf("%w: could not serialize access", points.ErrTransactionConflict)
	}

	balance, ok := f.balances[cleanerID]
	if !ok {
		return nil, points.ErrAccountNotFound
	}

	signed := amount
	if kind == points.KindDebit {
		signed = -amount
	}

	next := balance + signed
	if next < 0 {
		return nil, &points.InsufficientBalanceError{Balance: balance, Requested: amount}
	}

	f.balances[cleanerID] = next
	entry := points.LedgerEntry{
		ID:           uuid.New(),
		CleanerID:    cleanerID,
		Kind:         kind,
		Amount:       amount,
		SignedAmount: signed,
		BalanceAfter: next,
		Description:  description,
		InitiatedBy:  initiator,
		CreatedAt:    time.Now(),
	}
	f.entries = append(f.entries, entry)
	return &entry, nil
}

func (f *fakeCoordinator) GetBalance(ctx context.Context, cleanerID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	balance, ok := f.balances[cleanerID]
	if !ok {
		return 0, points.ErrAccountNotFound
	}
	return balance, nil
}

func (f *fakeCoordinator) ListEntries(ctx context.Context, cleanerID uuid.UUID, filters points.ListFilters) ([]points.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]points.LedgerEntry, 0)
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].CleanerID == cleanerID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

func (f *fakeCoordinator) AnnotateEntry(ctx context.Context, entryID uuid.UUID, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.entries {
		if f.entries[i].ID == entryID {
			f.entries[i].Note = note
			return nil
		}
	}
	return points.ErrEntryNotFound
}

func TestBatchPartialFailure(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	// b has no account.
	fake := newFakeCoordinator(map[uuid.UUID]int{a: 500, c: 0})
	batch := points.NewBatch(fake)

	result, err := batch.Apply(context.Background(), []uuid.UUID{a, b, c}, points.KindCredit, 100, "bulk bonus", "admin-1")
	if err != nil {
		t.Fatalf("batch must not fail on per-account errors: %v", err)
	}

	if result.Succeeded != 2 || result.Failed != 1 {
		t.Fatalf("expected 2 succeeded / 1 failed, got %d / %d", result.Succeeded, result.Failed)
	}
	if len(result.Outcomes) != 3 {
		t.Fatalf("every account must be reported exactly once, got %d outcomes", len(result.Outcomes))
	}

	byID := make(map[uuid.UUID]points.BatchOutcome)
	for _, o := range result.Outcomes {
		byID[o.CleanerID] = o
	}

	if o := byID[a]; !o.Succeeded() || o.Entry.BalanceAfter != 600 {
		t.Fatalf("expected account a credited to 600, got %+v", o)
	}
	if o := byID[b]; o.Succeeded() || o.Reason != "ACCOUNT_NOT_FOUND" {
		t.Fatalf("expected account b to fail with ACCOUNT_NOT_FOUND, got %+v", o)
	}
	if o := byID[c]; !o.Succeeded() || o.Entry.BalanceAfter != 100 {
		t.Fatalf("expected account c credited to 100, got %+v", o)
	}
}

func TestBatchDebitInsufficientIsolated(t *testing.T) {
	rich, poor := uuid.New(), uuid.New()

	fake := newFakeCoordinator(map[uuid.UUID]int{rich: 1000, poor: 10})
	batch := points.NewBatch(fake)

	result, err := batch.Apply(context.Background(), []uuid.UUID{rich, poor}, points.KindDebit, 100, "penalty", "admin-1")
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}

	if result.Succeeded != 1 || result.Failed != 1 {
		t.Fatalf("expected 1/1, got %d/%d", result.Succeeded, result.Failed)
	}

	// The success committed despite the sibling failure.
	balance, err := fake.GetBalance(context.Background(), rich)
	if err != nil || balance != 900 {
		t.Fatalf("expected rich account debited to 900, got %d (%v)", balance, err)
	}
	balance, err = fake.GetBalance(context.Background(), poor)
	if err != nil || balance != 10 {
		t.Fatalf("expected poor account untouched at 10, got %d (%v)", balance, err)
	}
}

func TestBatchEmptyInput(t *testing.T) {
	batch := points.NewBatch(newFakeCoordinator(nil))

	if _, err := batch.Apply(context.Background(), nil, points.KindCredit, 100, "x", "admin-1"); !errors.Is(err, points.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
	if _, err := batch.Apply(context.Background(), []uuid.UUID{}, points.KindCredit, 100, "x", "admin-1"); !errors.Is(err, points.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestBatchInvalidAmount(t *testing.T) {
	batch := points.NewBatch(newFakeCoordinator(nil))

	if _, err := batch.Apply(context.Background(), []uuid.UUID{uuid.New()}, points.KindCredit, 0, "x", "admin-1"); !errors.Is(err, points.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestBatchInvalidKind(t *testing.T) {
	batch := points.NewBatch(newFakeCoordinator(nil))

	_, err := batch.Apply(context.Background(), []uuid.UUID{uuid.New()}, points.Kind("TRANSFER"), 100, "x", "admin-1")
	if !errors.Is(err, points.ErrInternal) {
		t.Fatalf("expected ErrInternal for unknown kind, got %v", err)
	}
	if errors.Is(err, points.ErrInvalidAmount) {
		t.Fatalf("unknown kind must not masquerade as an amount error: %v", err)
	}
}

func TestBatchReportsTransactionConflict(t *testing.T) {
	contested, calm := uuid.New(), uuid.New()
	fake := newFakeCoordinator(map[uuid.UUID]int{contested: 500, calm: 500})
	fake.conflictOn(contested)
	batch := points.NewBatch(fake)

	result, err := batch.Apply(context.Background(), []uuid.UUID{contested, calm}, points.KindDebit, 100, "penalty", "admin-1")
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}
	if result.Succeeded != 1 || result.Failed != 1 {
		t.Fatalf("expected 1/1, got %d/%d", result.Succeeded, result.Failed)
	}

	for _, o := range result.Outcomes {
		if o.CleanerID == contested {
			if o.Succeeded() || o.Reason != "TRANSACTION_CONFLICT" {
				t.Fatalf("expected TRANSACTION_CONFLICT for contested account, got %+v", o)
			}
		}
	}

	balance, _ := fake.GetBalance(context.Background(), contested)
	if balance != 500 {
		t.Fatalf("conflicted account must be untouched at 500, got %d", balance)
	}
}

func TestBatchDeduplicatesAccounts(t *testing.T) {
	a := uuid.New()
	fake := newFakeCoordinator(map[uuid.UUID]int{a: 0})
	batch := points.NewBatch(fake)

	result, err := batch.Apply(context.Background(), []uuid.UUID{a, a, a}, points.KindCredit, 100, "bonus", "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Outcomes) != 1 || result.Succeeded != 1 {
		t.Fatalf("duplicates must collapse to one outcome, got %+v", result)
	}

	balance, _ := fake.GetBalance(context.Background(), a)
	if balance != 100 {
		t.Fatalf("account must be credited once, got balance %d", balance)
	}
}

func TestBatchLargeFanOut(t *testing.T) {
	ids := make([]uuid.UUID, 0, 50)
	balances := make(map[uuid.UUID]int, 50)
	for i := 0; i < 50; i++ {
		id := uuid.New()
		ids = append(ids, id)
		balances[id] = 0
	}

	fake := newFakeCoordinator(balances)
	batch := points.NewBatch(fake)

	result, err := batch.Apply(context.Background(), ids, points.KindCredit, 10, "mass grant", "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Succeeded != 50 || result.Failed != 0 {
		t.Fatalf("expected 50/0, got %d/%d", result.Succeeded, result.Failed)
	}
}
