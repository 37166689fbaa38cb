package cleaner

import "errors"

var (
	// ErrNotFound is returned when no cleaner exists for the given id
	ErrNotFound = errors.New("cleaner not found")

	ErrInternal = errors.New("internal error")
)
