package openlibrary

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches a DetailError for a 404 response.
var ErrNotFound = errors.New("openlibrary: not found")

// DetailError is returned by FetchDetail. Status is 0 when no HTTP response
// was received.
type DetailError struct {
	ID     string
	Status int
	Err    error
}

func (e *DetailError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch detail %s: status %d: %v", e.ID, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch detail %s: %v", e.ID, e.Err)
}

func (e *DetailError) Unwrap() error { return e.Err }

// Is reports ErrNotFound for 404 responses.
func (e *DetailError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// statusError is an unexpected HTTP status.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}
