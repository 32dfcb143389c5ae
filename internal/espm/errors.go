package espm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the service answers 404.
	ErrNotFound = errors.New("entity not found")

	// ErrUnavailable marks failures where the service could not be reached
	// or answered with a server error. Callers may fall back to cached data.
	ErrUnavailable = errors.New("service unavailable")
)

// LoadError is the single error shape surfaced to list screens. Its message
// is shown to the user verbatim.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
