package toolstore

import "fmt"

// StorageError represents a failure talking to the Tool Store API or
// its file storage.
type StorageError struct {
	// Op is the operation that failed (e.g., "getUserData", "upload")
	Op string

	// Path is the file or endpoint path involved, if any
	Path string

	// Status is the HTTP status code, if the request got that far
	Status int

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	msg := fmt.Sprintf("toolstore %s", e.Op)
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface
func (e *StorageError) Unwrap() error {
	return e.Err
}
