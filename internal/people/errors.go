package people

import (
	"errors"
	"fmt"
)

// APIError represents a status-coded failure reported by the remote
// contacts service.
type APIError struct {
	// Op is the operation that failed (e.g., "search", "update")
	Op string

	// Resource is the contact resource name involved, if any
	Resource string

	// Code is the HTTP status code from the remote service
	Code int

	// Message is the remote service's error message
	Message string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := fmt.Sprintf("people %s", e.Op)
	if e.Resource != "" {
		msg += fmt.Sprintf(" (%s)", e.Resource)
	}
	if e.Code != 0 {
		msg += fmt.Sprintf(": status %d", e.Code)
	}
	if e.Message != "" {
		msg += fmt.Sprintf(": %s", e.Message)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface
func (e *APIError) Unwrap() error {
	return e.Err
}

// NotFoundError indicates the requested contact does not exist on the
// remote service.
type NotFoundError struct {
	// Resource is the missing contact resource name
	Resource string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("contact %s not found", e.Resource)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
