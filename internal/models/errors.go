package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the service layer. Handlers translate these into
// HTTP status codes; none of them carry backend-specific wording.
var (
	// ErrAuthRequired means the operation needs a signed-in user. Callers
	// are expected to prompt for authentication and retry.
	ErrAuthRequired = errors.New("authentication required")

	// ErrForbidden means the signed-in user is not allowed to perform the
	// operation (e.g. editing someone else's comment).
	ErrForbidden = errors.New("operation not permitted")

	// ErrNotFound means the referenced document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken means sign-up was attempted with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials means sign-in failed. Deliberately does not
	// distinguish unknown email from wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError describes a rejected input field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// BackendError wraps a failure from an external collaborator (document
// store or identity provider). The wrapped error is logged, never shown
// to clients.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend operation %s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError wraps err with the failing operation name
func NewBackendError(op string, err error) *BackendError {
	return &BackendError{Op: op, Err: err}
}
