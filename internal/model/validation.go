package model

import "fmt"

// ValidationError carries a client-facing description of rejected input.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Message string
}

// NewValidationError formats a ValidationError
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
