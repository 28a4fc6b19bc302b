package command

import (
	"errors"
	"fmt"
)

var (
	ErrNoCommandNames     = errors.New("at least one command name is required for a non-fallback command")
	ErrFallbackExists     = errors.New("a fallback command is already registered")
	ErrInvalidCommandName = errors.New("command names must be non-empty and contain no whitespace")
	ErrInvalidHandler     = errors.New("handler has no function to run")
	ErrCommandNotFound    = errors.New("command not found")
)

const (
	errorPrefix    = "⚠️ Error:"
	genericFailure = "Something happened internally. For more information, contact the bot author."
)

// UserError is returned by handlers that want to tell the user what went wrong.
// Message is shown in the room; Err is only logged.
type UserError struct {
	Message string
	Err     error
}

func NewUserError(message string, err error) *UserError {
	return &UserError{Message: message, Err: err}
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NotFoundError is raised when neither a command nor a fallback matches.
type NotFoundError struct {
	Command string
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("command %q not found", e.Command)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrCommandNotFound
}

// ErrorReply renders err as the message the user sees.
func ErrorReply(err error) string {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Message
	}

	var ue *UserError
	if errors.As(err, &ue) && ue.Message != "" {
		return errorPrefix + " " + ue.Message
	}

	return errorPrefix + " " + genericFailure
}

// errorKind names the innermost error type, for logs.
func errorKind(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return fmt.Sprintf("%T", err)
		}
		err = next
	}
}
