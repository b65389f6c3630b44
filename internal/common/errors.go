package common

import "errors"

// Business logic errors
var (
	// Lookup errors
	ErrNotFound = errors.New("post not found")

	// Lifecycle errors
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidSchedule   = errors.New("invalid schedule date")

	// Creation / input errors
	ErrInvalidContentType = errors.New("invalid content type")
	ErrInvalidInput       = errors.New("invalid input")

	// Storage errors
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrStorageUnavailable     = errors.New("storage unavailable")
)
