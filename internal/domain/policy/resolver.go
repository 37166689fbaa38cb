package policy

import "context"

// Resolver computes the amount an automatic debit should take. It is pure
// with respect to account state: resolving never touches balances or the
// ledger, it only tells the caller what amount to debit next.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveAutoDebitAmount reads the singleton policy and returns the debit
// amount. callerAmount may be nil when the policy fixes the amount itself.
func (r *Resolver) ResolveAutoDebitAmount(ctx context.Context, callerAmount *int) (int, error) {
	p, err := r.store.Get(ctx)
	if err != nil {
		return 0, err
	}

	if p.Status != StatusActive {
		return 0, ErrPolicyInactive
	}

	// Either MANUAL flag hands the decision to the caller.
	if p.ContentType == ContentTypeManual || p.UsageType == UsageTypeManual {
		if callerAmount == nil || *callerAmount <= 0 {
			return 0, ErrInvalidAmount
		}
		return *callerAmount, nil
	}

	// FIXED usage ignores any caller-supplied value.
	return p.FixedAmount, nil
}
