package task

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a mutation targets an id that is not in the
// collection.
var ErrNotFound = errors.New("task not found")

// ValidationError describes a rejected field value. It is raised at the
// service boundary before any state is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsNotFound reports whether err represents a missing task. Errors that
// crossed a service boundary arrive as plain strings, so the message text is
// checked as a fallback.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	return strings.Contains(err.Error(), "not found")
}

// IsValidation reports whether err represents rejected input, with the same
// string fallback as IsNotFound.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return strings.Contains(err.Error(), "validation failed")
}
