package photo

import (
	"errors"
	"fmt"
)

// Sentinel errors for photo operations.
var (
	// ErrNotFound is returned when the photo does not exist or is
	// soft-deleted and the operation only works on live photos.
	ErrNotFound = errors.New("photo not found")

	// ErrAccessDenied is returned when the requester lacks the grant
	// level an operation requires.
	ErrAccessDenied = errors.New("photo access denied")
)

// errValidation builds a field-level validation error. The "validation
// failed" prefix survives the request-reply transport as text and is what
// the API boundary classifies on.
func errValidation(field, message string) error {
	return fmt.Errorf("validation failed: %s: %s", field, message)
}
