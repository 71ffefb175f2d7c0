package kitectx

// CallLimitError is the abort reason when a CallContext exceeds its call budget
type CallLimitError struct{}

// Error implements error
func (CallLimitError) Error() string {
	return "call limit exceeded"
}

// CallContext is a Context that additionally bounds the depth of a recursive computation.
// Each nested step must be made with ctx.Call(), which aborts once the limit is exceeded.
type CallContext struct {
	Context
	calls int
	limit int
}

// WithCallLimit calls f with a CallContext allowing at most limit nested calls.
// Exceeding the limit aborts f and returns ContextExpiredError{CallLimitError{}}.
func (ctx Context) WithCallLimit(limit int, f func(CallContext) error) (err error) {
	defer recoverAbort(ctx.CheckAbort, &err)
	err = f(CallContext{Context: ctx, limit: limit})
	return
}

// Call returns a child CallContext one level deeper, aborting if the limit is exceeded
func (ctx CallContext) Call() CallContext {
	ctx.CheckAbort()
	if ctx.calls >= ctx.limit {
		abort(CallLimitError{})
	}
	ctx.calls++
	return ctx
}

// AtCallLimit returns true if the next Call would abort
func (ctx CallContext) AtCallLimit() bool {
	return ctx.calls >= ctx.limit
}

// Depth returns the number of nested calls made so far
func (ctx CallContext) Depth() int {
	return ctx.calls
}
