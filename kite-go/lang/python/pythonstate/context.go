package pythonstate

import (
	"encoding/binary"
	"fmt"
	"strings"

	spooky "github.com/dgryski/go-spooky"
	"github.com/kiteco/pyabsint/kite-golib/errors"
)

// Policy selects how contexts are derived on function entry
type Policy string

const (
	// Insensitive uses a single context for everything
	Insensitive Policy = "insensitive"
	// CallSiteSensitive distinguishes the last k call sites
	CallSiteSensitive Policy = "callsite"
	// ObjectSensitive distinguishes the last k receiver objects
	ObjectSensitive Policy = "object"
	// Hybrid is object-sensitive for method calls with a receiver and call-site sensitive otherwise
	Hybrid Policy = "hybrid"
	// KCFA is an alias of CallSiteSensitive
	KCFA Policy = "kcfa"
)

// ParsePolicy validates a policy name
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(s)); p {
	case Insensitive, CallSiteSensitive, ObjectSensitive, Hybrid, KCFA:
		return p, nil
	case "":
		return Insensitive, nil
	default:
		return "", errors.Errorf("unknown context policy %q", s)
	}
}

// Config is the part of the analysis configuration the state needs
type Config struct {
	Policy        Policy
	K             int
	FlowSensitive bool
}

// Context separates analysis state per call path or per receiver. It is an immutable value;
// the zero Context is the root context, which is also the only context under the insensitive
// policy.
type Context struct {
	elems []string
	key   string
}

// RootContext returns the context analysis starts in
func RootContext() Context {
	return Context{}
}

// Key returns an opaque identity for the context, suitable as a map key.
// The root context has the empty key.
func (c Context) Key() string {
	return c.key
}

// IsRoot returns true for the root context
func (c Context) IsRoot() bool {
	return len(c.elems) == 0
}

// Depth returns the number of call sites or receivers the context remembers
func (c Context) Depth() int {
	return len(c.elems)
}

// Elements returns the remembered call sites or receivers, oldest first
func (c Context) Elements() []string {
	return append([]string(nil), c.elems...)
}

// Equal returns true if both contexts have the same identity
func (c Context) Equal(d Context) bool {
	return c.key == d.key
}

func (c Context) String() string {
	if c.IsRoot() {
		return "[]"
	}
	return "[" + strings.Join(c.elems, " > ") + "]"
}

// Derive returns the context for entering a function from c under the given policy.
// callSite identifies the call statement and receiver the receiving object (empty if none).
// At most k elements are kept; the oldest drop off first.
func (c Context) Derive(p Policy, k int, callSite, receiver string) Context {
	switch p {
	case Insensitive, "":
		return RootContext()
	case CallSiteSensitive, KCFA:
		return c.push(callSite, k)
	case ObjectSensitive:
		return c.push(receiver, k)
	case Hybrid:
		if receiver != "" {
			return c.push(receiver, k)
		}
		return c.push(callSite, k)
	default:
		panic(fmt.Sprintf("unhandled context policy %q", p))
	}
}

func (c Context) push(elem string, k int) Context {
	if elem == "" {
		return c
	}
	elems := append(append(make([]string, 0, len(c.elems)+1), c.elems...), elem)
	if k < 0 {
		k = 0
	}
	if len(elems) > k {
		elems = elems[len(elems)-k:]
	}
	return newContext(elems)
}

func newContext(elems []string) Context {
	if len(elems) == 0 {
		return RootContext()
	}
	var h uint64
	for _, e := range elems {
		h = spooky.Hash64Seed([]byte(e), h)
		h = spooky.Hash64Seed([]byte{0}, h)
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, h)
	return Context{elems: elems, key: fmt.Sprintf("%x:%d", b, len(elems))}
}
