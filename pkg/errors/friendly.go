package errors

import (
	"fmt"
)

// FriendlyError is an error that can be printed to the user without any
// additional context.
type FriendlyError interface {
	FriendlyMessage() string
	Error() string
}

type friendlyError struct {
	message string
}

func (err friendlyError) Error() string {
	return err.message
}

func (err friendlyError) FriendlyMessage() string {
	return err.message
}

// NewFriendlyError creates an error whose message is meant to be shown to the
// user directly, without the "context: cause" chain.
func NewFriendlyError(format string, args ...interface{}) error {
	return friendlyError{message: fmt.Sprintf(format, args...)}
}

// GetPrintableMessage returns the message that should be shown to the user
// for the given error. If any error in the chain is friendly, its message is
// used as is.
func GetPrintableMessage(err error) string {
	for curr := err; curr != nil; {
		if friendly, ok := curr.(FriendlyError); ok {
			return friendly.FriendlyMessage()
		}

		ctxErr, ok := curr.(contextError)
		if !ok {
			break
		}
		curr = ctxErr.err
	}
	return err.Error()
}
