package analyzer

import (
	"errors"
	"fmt"
)

// ValidationError means the request was rejected before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var (
	ErrEmptyCode       = &ValidationError{Reason: "Please write some code first!"}
	ErrPlaceholderCode = &ValidationError{Reason: "Please replace the placeholder with your own code first!"}
)

// ConnectionError means the backend could not be reached. The caller flips
// its connection state to disconnected.
type ConnectionError struct {
	Message string
	Cause   error
}

func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// BackendError means the backend answered but refused the request. The
// backend is reachable, so connection state stays as it was.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return e.Message
}

func statusMessage(code int) string {
	return fmt.Sprintf("HTTP error! status: %d", code)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConnection(err error) bool {
	var target *ConnectionError
	return errors.As(err, &target)
}

func IsBackend(err error) bool {
	var target *BackendError
	return errors.As(err, &target)
}
