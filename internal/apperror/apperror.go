// Package apperror defines the error kinds shared by every layer.
//
// ERROR KINDS:
// The service layer only ever produces two "expected" failures:
//   - NotFound:   a referenced user/film/director/review/genre/MPA does not exist
//   - Validation: the input is malformed or contradicts a business rule
//
// Anything else (a closed database, a disk error) is NOT an AppError. It is
// wrapped with fmt.Errorf("...: %w") and travels up unchanged until the HTTP
// layer answers it with a generic 500.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)

type AppError struct {
	Err     error  // sentinel kind, matched with errors.Is
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing entity. id is formatted with %v so callers can
// pass int64 ids directly.
func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %v", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// IsNotFound reports whether err carries ErrNotFound anywhere in its chain.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err carries ErrValidation anywhere in its chain.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
