package transfer

import "fmt"

// FormatError represents a failure to decode or encode a transfer file.
type FormatError struct {
	// Format is the file format involved
	Format Format

	// Line is the 1-based entry number, 0 when the whole file is bad
	Line int

	// Reason describes what went wrong
	Reason string
}

// Error implements the error interface
func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s entry %d: %s", e.Format, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Format, e.Reason)
}
