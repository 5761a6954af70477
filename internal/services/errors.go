package services

import "errors"

// Sentinel errors for the three failure classes the HTTP boundary maps to
// status codes. Service methods wrap these with context via fmt.Errorf("%w").
var (
	// ErrValidation marks missing or malformed required input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an absent ID or a record outside the active window.
	ErrNotFound = errors.New("not found")
	// ErrStore marks a persistence failure; details are logged, never
	// returned to clients.
	ErrStore = errors.New("store failure")
)
