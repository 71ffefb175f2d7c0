// Package kitectx encapsulates the capability to abort computations.
//
// kitectx.Context is analogous to the built-in context.Context, with some helper methods
// to easily define abort-able computations. ctx.CheckAbort() must be called sufficiently
// frequently during a computation in order for the abort condition to be checked.
//
// As a rule of thumb, ctx.CheckAbort should be called either directly or indirectly (by calling
// another function that calls it) at the start of every function that accepts a kitectx.Context.
//
// NOTE: a child Context should never be created in a separate go routine from the parent Context,
// since the child would have no handler to catch the parent's abort panic.
package kitectx

import (
	"context"
	"sync/atomic"
	"unsafe"
)

// Context manages an abort condition.
// It typically should be passed explicitly to functions rather than stored in another type;
// if a function accepts a Context, it should typically also call Context.CheckAbort at the top.
type Context struct {
	context context.Context
	expired *unsafe.Pointer // pointer to unsafe.Pointer to expiry error
}

// waitExpiry waits until ctx's underlying context.Context is expired, and sets the expired flag
func (ctx Context) waitExpiry() {
	stdctx := ctx.Context()
	if done := stdctx.Done(); done != nil {
		<-done
		err := stdctx.Err()
		atomic.StorePointer(ctx.expired, unsafe.Pointer(&err))
	}
}

// withContext handles asynchronously setting the expired flag
func (ctx Context) withContext(std context.Context) Context {
	ctx.context = std
	ctx.expired = new(unsafe.Pointer)
	go ctx.waitExpiry()
	return ctx
}

// Background returns a context that doesn't expire
func Background() Context {
	return Context{}
}

// Context returns a context.Context for use with libraries/packages that don't support kitectx
func (ctx Context) Context() context.Context {
	if ctx.context == nil {
		return context.Background()
	}
	return ctx.context
}

// IsDeadlineExceeded checks if the error is a context expired error
func IsDeadlineExceeded(err error) bool {
	switch err {
	case context.DeadlineExceeded, ContextExpiredError{context.DeadlineExceeded}:
		return true
	}
	return false
}
