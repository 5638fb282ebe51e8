package altered

import (
	"errors"
	"fmt"
)

// TerminalError signals a response that must never be retried. The vendor
// returns 401 when the bearer token expired and 500 when a query itself is
// broken; repeating either request cannot succeed.
type TerminalError struct {
	StatusCode int
	URL        string
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("request failed with status code %d: %s", e.StatusCode, e.URL)
}

// IsTerminal reports whether err is (or wraps) a TerminalError.
func IsTerminal(err error) bool {
	var terminal *TerminalError
	return errors.As(err, &terminal)
}

// NotFoundError signals a 404 from the vendor, typically a card reference
// that does not exist (or no longer exists) in the catalog.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.URL)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
