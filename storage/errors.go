package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when no assessment exists for the
	// requested identifier.
	ErrNotFound = errors.New("assessment not found")
)
