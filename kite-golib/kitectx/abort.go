package kitectx

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// - aborts and recovery

type checkAbortPanic struct {
	err error
}

func abort(err error) {
	panic(checkAbortPanic{err})
}

func recoverAbort(parentCheck func(), err *error) {
	if v := recover(); v != nil {
		switch v := v.(type) {
		case checkAbortPanic:
			if parentCheck != nil {
				parentCheck() // continue unwinding if the parent Context is also expired
			}
			// otherwise, set the error
			*err = ContextExpiredError{v.err}
		default:
			// all other panics should continue unwinding
			panic(v)
		}
	}
}

// - API

// ContextExpiredError is returned when a computation is aborted because its Context expired
// or, for a CallContext, because it ran out of calls
type ContextExpiredError struct {
	Err error
}

// Error implements error
func (c ContextExpiredError) Error() string {
	return fmt.Sprintf("kitectx.Context expired: %s", c.Err)
}

// CheckAbort aborts if ctx is expired
func (ctx Context) CheckAbort() {
	if ctx.expired != nil { // a zero Context is not expired
		errPtr := (*error)(atomic.LoadPointer(ctx.expired))
		if errPtr != nil {
			abort(*errPtr)
		}
	}
}

// FromContext calls f with a Context that expires together with std. An abort inside f is
// returned as a ContextExpiredError. std should eventually expire, since a goroutine waits on it.
func FromContext(std context.Context, f func(Context) error) (err error) {
	if std == nil {
		panic("kitectx.FromContext called on nil context.Context")
	}

	if err := std.Err(); err != nil {
		return ContextExpiredError{err}
	}

	defer recoverAbort(nil, &err)
	ctx := Background().withContext(std)
	err = f(ctx)
	return
}

// WithTimeout is equivalent to WithDeadline called on time.Now().Add(timeout)
func (ctx Context) WithTimeout(timeout time.Duration, f func(Context) error) error {
	return ctx.WithDeadline(time.Now().Add(timeout), f)
}

// WithDeadline calls f with a Context that expires at deadline
func (ctx Context) WithDeadline(deadline time.Time, f func(Context) error) (err error) {
	defer recoverAbort(ctx.CheckAbort, &err)

	newStd, cancel := context.WithDeadline(ctx.Context(), deadline)
	defer cancel()
	if err := newStd.Err(); err != nil {
		return ContextExpiredError{err}
	}

	err = f(ctx.withContext(newStd))
	return
}
