package models

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrNotFound = errors.New("not found")

type DomainError struct {
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
	StatusCode int
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

func (e *DomainError) Status() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	return http.StatusBadRequest
}

const (
	ErrCodeTransitionNotAllowed = "status_transition_not_allowed"
	ErrCodeUnknownStatus        = "unknown_status"
	ErrCodeUnknownKind          = "unknown_kind"
	ErrCodeInvalidInput         = "invalid_input"
	ErrCodeConcurrentChange     = "status_changed_concurrently"
)

func ErrTransitionNotAllowed(kind Kind, from, to Status) *DomainError {
	return &DomainError{
		Code:    ErrCodeTransitionNotAllowed,
		Message: fmt.Sprintf("%s: transition from %s to %s is not allowed", kind, from, to),
		Details: map[string]interface{}{
			"kind": string(kind),
			"from": string(from),
			"to":   string(to),
		},
		StatusCode: http.StatusConflict,
	}
}

func ErrUnknownStatus(kind Kind, status Status) *DomainError {
	return &DomainError{
		Code:    ErrCodeUnknownStatus,
		Message: fmt.Sprintf("%s: unknown status %q", kind, status),
		Details: map[string]interface{}{
			"kind":   string(kind),
			"status": string(status),
		},
		StatusCode: http.StatusBadRequest,
	}
}

func ErrUnknownKind(kind Kind) *DomainError {
	return &DomainError{
		Code:       ErrCodeUnknownKind,
		Message:    fmt.Sprintf("unknown entity kind %q", kind),
		Details:    map[string]interface{}{"kind": string(kind)},
		StatusCode: http.StatusNotFound,
	}
}

func ErrInvalidInput(message string) *DomainError {
	return &DomainError{
		Code:       ErrCodeInvalidInput,
		Message:    message,
		Details:    make(map[string]interface{}),
		StatusCode: http.StatusBadRequest,
	}
}

func ErrConcurrentChange(kind Kind, id string, expected Status) *DomainError {
	return &DomainError{
		Code:    ErrCodeConcurrentChange,
		Message: fmt.Sprintf("%s %s is no longer %s", kind, id, expected),
		Details: map[string]interface{}{
			"kind":     string(kind),
			"id":       id,
			"expected": string(expected),
		},
		StatusCode: http.StatusConflict,
	}
}
