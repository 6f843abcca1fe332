package config

import (
	"errors"
	"fmt"
)

// Error is a configuration error: invalid settings, an unknown provider,
// a duplicate command registration or a malformed command argument. It is
// the only error kind allowed to abort the process.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an Error from a format string.
func Errorf(format string, args ...any) *Error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is, or wraps, a configuration error.
func IsConfigError(err error) bool {
	var cerr *Error
	return errors.As(err, &cerr)
}
