package sales

import "errors"

var (
	// ErrValidation marks malformed input rejected before any write.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when no sale or item exists for the given id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when the requested status change is
	// not allowed from the sale's current state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict is returned when a concurrent writer updated the row
	// between the pre-image read and the write.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrDuplicateTransaction is returned when a generated transaction id
	// already exists.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
)
