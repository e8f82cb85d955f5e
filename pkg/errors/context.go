package errors

import (
	"errors"
	"fmt"
)

// New returns an error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// contextError annotates an error with the operation that caused it. It's a
// struct (rather than a wrapped fmt.Errorf) so that tests can compare errors
// by value.
type contextError struct {
	context string
	err     error
}

func (err contextError) Error() string {
	return fmt.Sprintf("%s: %s", err.context, err.err)
}

func (err contextError) Unwrap() error {
	return err.err
}

// WithContext wraps `err` with a short description of the operation that
// failed. Contexts accumulate as the error propagates up the call stack, so
// the final message reads like a breadcrumb trail.
func WithContext(err error, context string) error {
	return contextError{context: context, err: err}
}

// RootCause returns the innermost error in a chain of contextErrors.
func RootCause(err error) error {
	for {
		ctxErr, ok := err.(contextError)
		if !ok {
			return err
		}
		err = ctxErr.err
	}
}
