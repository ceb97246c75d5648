package content

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by backends when a post or page does not exist.
	ErrNotFound = errors.New("content: not found")

	// ErrInvalidInput marks arguments rejected before any backend call.
	ErrInvalidInput = errors.New("content: invalid input")
)

// APIError is a non-2xx response from the Ghost Content API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ghost: http %d", e.Status)
	}
	return fmt.Sprintf("ghost: http %d: %s", e.Status, e.Message)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
