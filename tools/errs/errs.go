package errs

import (
	"github.com/pkg/errors"
)

// ErrNotFound marks the "record does not exist" outcome of a store call.
// Callers that need to tell a missing record from a store failure must
// check with IsNotFound rather than comparing errors directly.
var ErrNotFound = errors.New("record not found")

func New(msg string) error {
	return errors.New(msg)
}

func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// NotFound wraps ErrNotFound with context about what was missing.
func NotFound(what string) error {
	return errors.Wrap(ErrNotFound, what)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
