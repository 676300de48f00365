package utils

import "fmt"

// UserError is an error whose message is safe to show in the channel that
// triggered a command.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// Userf formats a UserError.
func Userf(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}
