package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
// Field carries the request's JSON field name (e.g. "password_confirm").
type FieldError struct {
	Field string
	Error string
}

// ValidationError is raised by domain Validate methods for failures the
// shared validator cannot express, such as a settlement status outside the
// terminal set. The API error handler renders it as a 400 field map.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

// NewShutdownError marks an error as unrecoverable; the API server
// translates it into a graceful SIGTERM.
func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
