package contacts

import "fmt"

// ValidationError reports a field that violates its shape constraints,
// such as a malformed email address or an impossible calendar date.
type ValidationError struct {
	// Field is the name of the offending field (e.g., "email")
	Field string

	// Reason describes why the value was rejected
	Reason string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
