package errors

import (
	"bytes"
	"fmt"
)

// Errors represents a list of errors; any non-nil Errors value represents a non-empty list of errors.
// This invariant is maintained so that the client may simply compare an Errors value with nil to check for the absence of errors.
type Errors interface {
	error
	// Slice returns a (non-empty) slice of underlying (non-nil) errors.
	Slice() []error
	// Len is always > 0. To check for existence of an error, simply compare the Errors with nil.
	Len() int

	sliceNoCopy() []error
	append(e error) Errors
}

type errorSlice []error

func (m errorSlice) append(e error) Errors {
	return errorSlice(append(m, e))
}

func (m errorSlice) sliceNoCopy() []error {
	return []error(m)
}

func (m errorSlice) Slice() []error {
	return append([]error(nil), m...)
}

func (m errorSlice) Len() int {
	return len(m)
}

func (m errorSlice) Error() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%d error(s):", len(m))
	for _, err := range m {
		fmt.Fprintf(&b, "\n\t%v", err)
	}
	return b.String()
}

// Append appends the given (possibly nil) error to the given (possibly nil) Errors.
// If the error is nil, it returns the given Errors unchanged.
func Append(errs Errors, err error) Errors {
	if err == nil {
		return errs
	}
	if errs == nil {
		if multi, ok := err.(Errors); ok {
			return errorSlice(multi.Slice())
		}
		return errorSlice{err}
	}
	if multi, ok := err.(Errors); ok {
		for _, err := range multi.sliceNoCopy() {
			errs = errs.append(err)
		}
		return errs
	}
	return errs.append(err)
}

// Combine combines errors e & f into a single error
func Combine(e, f error) error {
	switch e := e.(type) {
	case nil:
		return f
	case Errors:
		// copy e to avoid mutating the backing array
		return Append(errorSlice(e.Slice()), f)
	default:
		if f == nil {
			return e
		}
		return Append(errorSlice{e}, f)
	}
}
