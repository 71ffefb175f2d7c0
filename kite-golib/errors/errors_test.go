package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendNil(t *testing.T) {
	err := New("error")
	errs := Append(nil, err).sliceNoCopy()
	require.Len(t, errs, 1)
	require.Equal(t, err, errs[0])

	errs = Append(errorSlice([]error{err}), nil).sliceNoCopy()
	require.Len(t, errs, 1)
	require.Equal(t, err, errs[0])
}

func TestAppendMultiMulti(t *testing.T) {
	err0 := New("error0")
	err1 := New("error1")
	err2 := New("error2")

	var errs01 Errors
	errs01 = Append(errs01, err0)
	errs01 = Append(errs01, err1)

	errs := Append(errs01, Append(nil, err2)).sliceNoCopy()
	require.Len(t, errs, 3)
	require.Equal(t, err2, errs[2])
}

func TestCombine(t *testing.T) {
	e := New("e")
	f := New("f")

	assert.Nil(t, Combine(nil, nil))
	assert.Equal(t, e, Combine(e, nil))
	assert.Equal(t, f, Combine(nil, f))

	combined := Combine(e, f)
	require.Implements(t, (*Errors)(nil), combined)
	assert.Equal(t, 2, combined.(Errors).Len())
	assert.Contains(t, combined.Error(), "2 error(s)")
}

func TestWrapf(t *testing.T) {
	assert.Nil(t, WrapfOrNil(nil, "context"))

	base := New("base")
	wrapped := Wrapf(base, "querying %s", "oracle")
	assert.Equal(t, "querying oracle: base", wrapped.Error())
	assert.Equal(t, base, Cause(wrapped))

	assert.Error(t, Wrapf(nil, "fresh"))
}

func TestInvariantf(t *testing.T) {
	defer func() {
		v := recover()
		require.NotNil(t, v)
		inv, ok := v.(InvariantError)
		require.True(t, ok)
		assert.Contains(t, inv.Error(), "no scope for x")
	}()
	Invariantf("no scope for %s", "x")
}

func TestFromPanic(t *testing.T) {
	assert.Nil(t, FromPanic(nil))
	assert.EqualError(t, FromPanic("boom"), "panic: boom")

	base := New("base")
	assert.Equal(t, base, Cause(FromPanic(base)))

	assert.Panics(t, func() {
		FromPanic(InvariantError{New("bad")})
	})
}
