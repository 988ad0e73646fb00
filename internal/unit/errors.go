package unit

import "errors"

// Domain errors for the unit package.
var (
	// ErrEmptyBatch is returned when a write or read request carries no entries.
	ErrEmptyBatch = errors.New("unit: empty batch")

	// ErrInvalidBatch is returned when a batch is not a JSON object.
	ErrInvalidBatch = errors.New("unit: invalid batch")
)
