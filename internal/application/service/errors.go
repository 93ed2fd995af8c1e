package service

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no transaction matches the given id.
var ErrNotFound = errors.New("transaction not found")

// ErrStoreUnavailable wraps failures of the underlying store.
var ErrStoreUnavailable = errors.New("store unavailable")

// ValidationError reports rejected input. The message is safe to surface to
// the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
