package model

import (
	"errors"
	"fmt"
)

// GenericErrorMessage is shown when no more specific message is available.
const GenericErrorMessage = "Something went wrong. Please try again."

// ErrNotAuthenticated is returned by operations that require a session.
var ErrNotAuthenticated = errors.New("not authenticated")

// FieldError describes a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// NetworkError means the request never reached the service or no response came back.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError means a response or payload is missing a required field or carries
// an invalid value.
type ValidationError struct {
	Message string
	Fields  []FieldError
	Err     error
}

// NewValidationError creates a ValidationError with field details.
func NewValidationError(msg string, details ...FieldError) *ValidationError {
	return &ValidationError{Message: msg, Fields: details}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ServerError means the service answered with an explicit failure and message.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("server error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return "server error: " + e.Message
}

// StorageCorruptionError means persisted data exists but cannot be trusted.
type StorageCorruptionError struct {
	Key string
	Err error
}

func (e *StorageCorruptionError) Error() string {
	return fmt.Sprintf("corrupt stored %q: %v", e.Key, e.Err)
}

func (e *StorageCorruptionError) Unwrap() error { return e.Err }

// Messager is implemented by errors and payloads that carry a user-facing message.
type Messager interface {
	UserMessage() string
}

// UserMessage returns the most specific human-readable message for err.
// Order: NetworkError maps to the fallback, then ServerError, then any Messager
// in the chain (HTTP payloads), then ValidationError, then the fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return fallback
	}
	var srvErr *ServerError
	if errors.As(err, &srvErr) && srvErr.Message != "" {
		return srvErr.Message
	}
	var m Messager
	if errors.As(err, &m) {
		if msg := m.UserMessage(); msg != "" {
			return msg
		}
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) && valErr.Message != "" {
		return valErr.Message
	}
	return fallback
}
