package kitectx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	x, cancel := context.WithCancel(context.Background())
	err := FromContext(x, func(ctx Context) error {
		cancel()
		ctx.WaitExpiry(t)
		ctx.CheckAbort()
		return nil
	})
	require.Equal(t, ContextExpiredError{context.Canceled}, err)
}

func TestFromContext_Immediate(t *testing.T) {
	x, cancel := context.WithCancel(context.Background())
	cancel()
	var ran bool
	err := FromContext(x, func(ctx Context) error {
		ran = true
		return nil
	})
	require.Error(t, err)
	require.False(t, ran)
}

func TestNoWaitExpiry(t *testing.T) {
	// the expiry flag is set asynchronously, so poll instead of calling WaitExpiry
	x, cancel := context.WithCancel(context.Background())
	err := FromContext(x, func(ctx Context) error {
		cancel()
		wait := time.Millisecond
		// wait up to 2^6 - 1 = 63 ms total
		for i := 0; i < 6; i++ {
			time.Sleep(wait)
			ctx.CheckAbort()
			wait *= 2
		}
		return nil
	})
	require.Error(t, err)
}

func TestSync(t *testing.T) {
	x, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := FromContext(x, func(ctx Context) error {
		require.NoError(t, ctx.Sync(t))
		cancel()
		require.Error(t, ctx.Sync(t))
		return nil
	})
	require.NoError(t, err)
}

func TestWithTimeout(t *testing.T) {
	var ran bool
	err := Background().WithTimeout(time.Millisecond, func(ctx Context) error {
		ran = true
		ctx.WaitExpiry(t)
		ctx.CheckAbort()
		return nil
	})
	require.True(t, IsDeadlineExceeded(err))
	require.True(t, ran)
}

func TestWithTimeout_Immediate(t *testing.T) {
	err := Background().WithTimeout(time.Duration(0), func(ctx Context) error {
		return nil
	})
	require.True(t, IsDeadlineExceeded(err))
}

func TestError(t *testing.T) {
	err := Background().WithTimeout(time.Hour, func(ctx Context) error {
		return errors.New("abort_test.TestError")
	})
	require.Error(t, err)
	require.Equal(t, err.Error(), "abort_test.TestError")
	require.False(t, IsDeadlineExceeded(err))
}

func TestOtherPanicsUnwind(t *testing.T) {
	require.PanicsWithValue(t, "boom", func() {
		Background().WithTimeout(time.Hour, func(ctx Context) error {
			panic("boom")
		})
	})
}

func TestNested_Inner(t *testing.T) {
	var innerErr, outerErr error
	outerErr = Background().WithTimeout(time.Hour, func(outer Context) error {
		innerErr = outer.WithTimeout(time.Millisecond, func(inner Context) error {
			inner.WaitExpiry(t)
			inner.CheckAbort()
			return nil
		})
		return nil
	})
	require.NoError(t, outerErr)
	require.True(t, IsDeadlineExceeded(innerErr))
}

func TestNested_Outer(t *testing.T) {
	var innerErr, outerErr error
	x, cancel := context.WithCancel(context.Background())
	outerErr = FromContext(x, func(outer Context) error {
		innerErr = outer.WithTimeout(time.Hour, func(inner Context) error {
			cancel()
			inner.WaitExpiry(t)
			outer.WaitExpiry(t)
			inner.CheckAbort()
			return nil
		})
		return nil
	})
	require.Error(t, outerErr)
	require.NoError(t, innerErr)
}

func TestWithCallLimit(t *testing.T) {
	var depth int
	var recurse func(ctx CallContext)
	recurse = func(ctx CallContext) {
		depth = ctx.Depth()
		recurse(ctx.Call())
	}

	err := Background().WithCallLimit(3, func(ctx CallContext) error {
		recurse(ctx)
		return nil
	})
	require.Equal(t, ContextExpiredError{CallLimitError{}}, err)
	require.Equal(t, 3, depth)
}

func TestAtCallLimit(t *testing.T) {
	err := Background().WithCallLimit(1, func(ctx CallContext) error {
		require.False(t, ctx.AtCallLimit())
		require.True(t, ctx.Call().AtCallLimit())
		return nil
	})
	require.NoError(t, err)
}
