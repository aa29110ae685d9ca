package schema

import "errors"

// Error kinds shared by the embedded store and the remote client, so callers can use
// errors.Is regardless of which one they hold.
var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidField is returned when an update targets a field outside EditableFields.
	ErrInvalidField = errors.New("invalid field")
	// ErrValidation is returned for malformed create or update payloads.
	ErrValidation = errors.New("validation error")
	// ErrUpstreamUnavailable is returned when the record service cannot be reached
	// or answers with a server error.
	ErrUpstreamUnavailable = errors.New("record service unavailable")
)
