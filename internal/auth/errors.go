package auth

import (
	"errors"
	"fmt"
)

// ErrCredentialsNotFound is returned by a CredentialStore when no
// record exists for the user.
var ErrCredentialsNotFound = errors.New("credentials not found")

// ReauthRequiredError indicates that no usable credential exists and
// the user must re-run the host-side activation flow. It is terminal
// from this process's point of view: nothing short of external
// re-activation will make remote calls succeed.
type ReauthRequiredError struct {
	// Reason describes why reauthorization is needed
	Reason string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface
func (e *ReauthRequiredError) Error() string {
	msg := fmt.Sprintf("reauthorization required: %s. Please re-run the tool activation flow to reconnect your account", e.Reason)
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface
func (e *ReauthRequiredError) Unwrap() error {
	return e.Err
}

// IsReauthRequired reports whether err is (or wraps) a ReauthRequiredError.
func IsReauthRequired(err error) bool {
	var target *ReauthRequiredError
	return errors.As(err, &target)
}
