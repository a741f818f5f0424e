package client

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport wraps failures before a response was received.
	ErrTransport = errors.New("transport failure")
	// ErrMalformed marks a response body that does not have the expected shape.
	ErrMalformed = errors.New("malformed response")
	// ErrInFlight is returned when the same mutation is already running.
	ErrInFlight = errors.New("request already in flight")
)

// APIError is a non-2xx answer, or a 2xx one carrying success=false.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
