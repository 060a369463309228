package bookapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("bookshop API unavailable")
	ErrRejected        = errors.New("request rejected by bookshop API")
	ErrInvalidResponse = errors.New("invalid response from bookshop API")
)

// APIError is a non-2xx answer from the bookshop API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bookshop API returned %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// IsServerFailure reports whether err means the bookshop could not answer:
// a transport failure or a 5xx response. Such errors trip the breaker.
func IsServerFailure(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return true
}
