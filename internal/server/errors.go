package server

import "fmt"

// ListenError is returned when the listening socket cannot be bound.
// It is fatal: the server never retries or moves to another port.
type ListenError struct {
	Addr   string
	Flavor string
	Err    error
}

// Error implements the error interface
func (e *ListenError) Error() string {
	return fmt.Sprintf("failed to listen on %s (flavor: %s): %v", e.Addr, e.Flavor, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ListenError) Unwrap() error {
	return e.Err
}
