// Package booking implements the reservation engine: settings access,
// availability computation, table allocation, booking creation and the
// reservation lifecycle state machine. Persistence goes through the
// store interfaces defined in service.go; lifecycle events are emitted
// to an event sink instead of calling notification I/O inline.
package booking

import (
	"errors"
	"fmt"
)

// ValidationError is a business-rule rejection. Its message is specific
// enough for UI display and maps to HTTP 400 at the handler layer.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// validationf builds a ValidationError from a format string.
func validationf(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a business-rule rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
