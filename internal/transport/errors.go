package transport

import "fmt"

// CredentialError is returned when a secure flavor was requested but the
// certificate or key could not be loaded. It is fatal at startup.
type CredentialError struct {
	Source string // file path, or "generated"
	Err    error
}

// Error implements the error interface
func (e *CredentialError) Error() string {
	return fmt.Sprintf("failed to load TLS credentials from %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *CredentialError) Unwrap() error {
	return e.Err
}
