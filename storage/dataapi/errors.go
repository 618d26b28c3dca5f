package dataapi

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/examhub/portal/core"
)

// Error is returned by every failed data API call.
// Its message is the generic, user-facing one; the underlying failure is kept for logs.
type Error struct {
	Op         string // eg. "error fetching courses"
	StatusCode int    // 0 when no response was received
	Err        error
}

func (e *Error) Error() string { return e.Op }

func (e *Error) Unwrap() error { return e.Err }

// Detail describes the underlying failure.
func (e *Error) Detail() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// IsNotFound reports whether err comes from a 404 of the data API.
func IsNotFound(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return errors.Is(apiErr.Err, core.ErrNotFound)
	}
	return false
}
