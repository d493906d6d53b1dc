package openfoodfacts

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

// ErrInvalidFileName indicates a listed file name cannot be turned into a URL
// below the base directory.
var ErrInvalidFileName = errors.New("openfoodfacts: invalid file name")

// StatusError is a non-2xx response from the remote host.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return "unexpected status " + e.Status
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// TransportError is returned once every attempt at a request has failed.
// Err is the failure of the last attempt.
type TransportError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("openfoodfacts: GET %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes a TransportError match domain.ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == domain.ErrTransport
}

// DecodeError is returned when a payload is not a JSON array of records.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("openfoodfacts: decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes a DecodeError match domain.ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == domain.ErrDecode
}

// IsNotFound checks if the error is a 404 from the remote host.
func IsNotFound(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusNotFound
	}
	return false
}

// IsRateLimited checks if the error is a 429 from the remote host.
func IsRateLimited(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests
	}
	return false
}
