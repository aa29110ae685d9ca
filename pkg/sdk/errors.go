package sdk

import (
	"context"
	"errors"
	"fmt"

	"github.com/celerix-dev/celerix-grid/pkg/schema"
)

// UpstreamError is returned when the record service cannot be reached or answers with a server error.
// It matches schema.ErrUpstreamUnavailable as well as the underlying cause under errors.Is.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: record service returned %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: record service unavailable: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	return []error{schema.ErrUpstreamUnavailable, e.Err}
}

// Timeout reports whether the call ran out of time.
func (e *UpstreamError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}
