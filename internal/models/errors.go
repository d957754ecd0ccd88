package models

import (
	"fmt"

	"go.temporal.io/sdk/temporal"
)

// ErrorType categorizes activity errors for appropriate handling.
type ErrorType int

const (
	ErrorTypeTransient       ErrorType = iota // network, timeout, 5xx
	ErrorTypeContextOverflow                  // context window exceeded
	ErrorTypeAPILimit                         // rate limit
	ErrorTypeToolFailure                      // individual tool failed, turn continues
	ErrorTypeFatal                            // unrecoverable, turn aborts
)

// String returns the string representation of ErrorType. It is also the
// ApplicationError type used across the activity boundary.
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeTransient:
		return "Transient"
	case ErrorTypeContextOverflow:
		return "ContextOverflow"
	case ErrorTypeAPILimit:
		return "APILimit"
	case ErrorTypeToolFailure:
		return "ToolFailure"
	case ErrorTypeFatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// ActivityError is a categorized error raised inside an activity.
type ActivityError struct {
	Type      ErrorType              `json:"type"`
	Retryable bool                   `json:"retryable"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ActivityError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// NewTransientError creates a retryable transient error.
func NewTransientError(message string) *ActivityError {
	return &ActivityError{Type: ErrorTypeTransient, Retryable: true, Message: message}
}

// NewContextOverflowError creates a context overflow error.
func NewContextOverflowError(message string) *ActivityError {
	return &ActivityError{Type: ErrorTypeContextOverflow, Retryable: false, Message: message}
}

// NewAPILimitError creates an API rate limit error.
func NewAPILimitError(message string) *ActivityError {
	return &ActivityError{Type: ErrorTypeAPILimit, Retryable: true, Message: message}
}

// NewToolFailureError creates a tool failure error.
func NewToolFailureError(message string) *ActivityError {
	return &ActivityError{Type: ErrorTypeToolFailure, Retryable: false, Message: message}
}

// NewFatalError creates a fatal error.
func NewFatalError(message string) *ActivityError {
	return &ActivityError{Type: ErrorTypeFatal, Retryable: false, Message: message}
}

// ToolErrorDetails is the structured detail payload attached to tool
// activity failures. The workflow reads it via ApplicationError.Details
// instead of parsing error messages.
type ToolErrorDetails struct {
	Reason string `json:"reason"`
}

// WrapActivityError converts an ActivityError into a temporal.ApplicationError
// so the workflow can classify it by Type() and the retry policy can honor
// non-retryable categories.
func WrapActivityError(err *ActivityError) error {
	details := ToolErrorDetails{Reason: err.Message}
	if err.Retryable {
		return temporal.NewApplicationErrorWithOptions(err.Message, err.Type.String(),
			temporal.ApplicationErrorOptions{Details: []interface{}{details}})
	}
	return temporal.NewApplicationErrorWithOptions(err.Message, err.Type.String(),
		temporal.ApplicationErrorOptions{NonRetryable: true, Details: []interface{}{details}})
}
