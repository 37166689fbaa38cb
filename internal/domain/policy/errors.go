package policy

import "errors"

var (
	// ErrPolicyInactive is returned when an automatic debit is requested while
	// the policy is disabled; callers must fall back to manual handling
	ErrPolicyInactive = errors.New("point policy is inactive")

	// ErrInvalidAmount is returned when a caller-supplied amount is required
	// but absent or non-positive
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrInvalidPolicy is returned when a stored or submitted policy fails
	// enum validation
	ErrInvalidPolicy = errors.New("invalid point policy")

	ErrInternal = errors.New("internal error")
)
