package conversation

import "fmt"

// UpstreamError is returned when text generation fails. The turn is over;
// callers show a fixed apology.
type UpstreamError struct {
	Provider string
	Cause    error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generation via %q failed: %v", e.Provider, e.Cause)
}

// Unwrap returns the provider error.
func (e *UpstreamError) Unwrap() error {
	return e.Cause
}
