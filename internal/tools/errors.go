package tools

import "fmt"

// ValidationError indicates a malformed tool invocation (missing or
// mistyped arguments). It is not retryable.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid tool invocation: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// StringArg extracts a required string argument.
func StringArg(args map[string]interface{}, name string) (string, error) {
	raw, ok := args[name]
	if !ok {
		return "", NewValidationError("missing required argument: " + name)
	}
	value, ok := raw.(string)
	if !ok {
		return "", NewValidationError(name + " must be a string")
	}
	if value == "" {
		return "", NewValidationError(name + " cannot be empty")
	}
	return value, nil
}

// IntArg extracts an optional integer argument, returning fallback when the
// argument is absent. JSON numbers arrive as float64.
func IntArg(args map[string]interface{}, name string, fallback int) (int, error) {
	raw, ok := args[name]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, NewValidationError(name + " must be a number")
	}
}
