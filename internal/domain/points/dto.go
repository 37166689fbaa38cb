package points

import "github.com/google/uuid"

// MutationRequest is the body for grant/redeem on a single cleaner.
type MutationRequest struct {
	Amount      int    `json:"amount" validate:"required,gte=1,lte=1000000"`
	Description string `json:"description" validate:"required,min=3,max=500"`
}

// BatchRequest applies one credit/debit across many cleaners.
type BatchRequest struct {
	CleanerIDs  []uuid.UUID `json:"cleaner_ids" validate:"required,min=1,max=500"`
	Kind        string      `json:"kind" validate:"required,tx_kind"`
	Amount      int         `json:"amount" validate:"required,gte=1,lte=1000000"`
	Description string      `json:"description" validate:"required,min=3,max=500"`
}

// AutoDebitRequest triggers a policy-resolved debit. Amount is only honoured
// when the policy leaves the amount to the caller.
type AutoDebitRequest struct {
	Amount      *int   `json:"amount" validate:"omitempty,gte=1,lte=1000000"`
	Description string `json:"description" validate:"required,min=3,max=500"`
}

// AnnotateRequest overwrites the note on a ledger entry.
type AnnotateRequest struct {
	Note string `json:"note" validate:"max=500"`
}
