package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCategoryNotFound is returned when a category id or name resolves to nothing.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrResultNotFound is returned when a result id is unknown.
	ErrResultNotFound = errors.New("result not found")
	// ErrUserNotFound is returned when the authenticated user id is unknown to storage.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccessDenied is returned when a user reads a result they do not own.
	ErrAccessDenied = errors.New("access denied")
	// ErrMalformedCSV indicates a structural parse failure; the whole upload is rejected.
	ErrMalformedCSV = errors.New("malformed csv")
	// ErrNoValidQuestions is returned when every row of an upload was rejected.
	ErrNoValidQuestions = errors.New("no valid questions found")
)

// ValidationError carries a user-correctable message for 4xx responses.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is user-correctable input.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
