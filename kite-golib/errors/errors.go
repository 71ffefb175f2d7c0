// Package errors wraps github.com/pkg/errors with the helpers the analysis engine uses to
// report recoverable failures (wrapped errors, multi-errors) and to halt on misuse of the
// engine (invariant violations).
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errorf is Errorf re-exported from github.com/pkg/errors; the result carries a stack trace
var Errorf = errors.Errorf

// New is re-exported from github.com/pkg/errors
var New = errors.New

// WrapfOrNil is WithMessagef re-exported from github.com/pkg/errors
func WrapfOrNil(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(err, fmt.Sprintf(format, args...))
}

// Wrapf is WrapfOrNil if err != nil, and Errorf otherwise: it never returns nil
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return Errorf(format, args...)
	}
	return WrapfOrNil(err, format, args...)
}

// WithStack is re-exported from github.com/pkg/errors
var WithStack = errors.WithStack

// Cause is re-exported from github.com/pkg/errors
var Cause = errors.Cause

// InvariantError signals that the embedding code misused an API in a way that would otherwise
// produce silently wrong results. It is always delivered as a panic.
type InvariantError struct {
	err error
}

// Error implements error
func (e InvariantError) Error() string {
	return fmt.Sprintf("invariant violated: %v", e.err)
}

// Cause returns the underlying error, for use with Cause
func (e InvariantError) Cause() error {
	return e.err
}

// Invariantf panics with an InvariantError built from the format string.
func Invariantf(format string, args ...interface{}) {
	panic(InvariantError{errors.Errorf(format, args...)})
}

// FromPanic converts a recovered panic value into an error.
// InvariantErrors are re-panicked since they must never be swallowed.
func FromPanic(v interface{}) error {
	switch v := v.(type) {
	case nil:
		return nil
	case InvariantError:
		panic(v)
	case error:
		return errors.WithStack(v)
	default:
		return errors.Errorf("panic: %v", v)
	}
}
