package pythonoracle

import (
	"github.com/kiteco/pyabsint/kite-golib/errors"
	"github.com/kiteco/pyabsint/kite-golib/kitelog"
)

// Guarded wraps an Oracle so that no query can fail: errors and panics raised by the oracle
// are logged, recorded, and replaced by the conservative answer for the query (an empty set,
// "may alias", "not a singleton"). A Guarded with no oracle answers every query conservatively.
type Guarded struct {
	oracle   Oracle
	logger   kitelog.Interface
	failures errors.Errors
}

// Guard wraps o, which may be nil. Failures are reported to logger, which may be nil.
func Guard(o Oracle, logger kitelog.Interface) *Guarded {
	return &Guarded{oracle: o, logger: logger}
}

// Available returns true if there is an underlying oracle
func (g *Guarded) Available() bool {
	return g != nil && g.oracle != nil
}

// Failures returns every failure recovered so far, or nil
func (g *Guarded) Failures() errors.Errors {
	return g.failures
}

// query runs f, converting an error or a panic into a recorded failure. It returns false if
// the answer must be discarded.
func (g *Guarded) query(desc string, f func() error) (ok bool) {
	if !g.Available() {
		return false
	}
	defer func() {
		if v := recover(); v != nil {
			g.fail(desc, errors.FromPanic(v))
			ok = false
		}
	}()
	if err := f(); err != nil {
		g.fail(desc, err)
		return false
	}
	return true
}

func (g *Guarded) fail(desc string, err error) {
	err = errors.Wrapf(err, "oracle query %s failed", desc)
	g.failures = errors.Append(g.failures, err)
	if g.logger != nil {
		g.logger.Printf("%v; using conservative default", err)
	}
}

// PossibleCallees returns the possible callees at site, or nil if unknown
func (g *Guarded) PossibleCallees(site CallSite, ctx ContextKey) []FunctionSymbol {
	var res []FunctionSymbol
	if !g.query(describe("PossibleCallees", site, ctx), func() (err error) {
		res, err = g.oracle.PossibleCallees(site, ctx)
		return
	}) {
		return nil
	}
	return res
}

// PointsTo returns the points-to set of v, or nil if unknown
func (g *Guarded) PointsTo(v Variable, ctx ContextKey) PointsToSet {
	var res PointsToSet
	if !g.query(describe("PointsTo", v, ctx), func() (err error) {
		res, err = g.oracle.PointsTo(v, ctx)
		return
	}) {
		return nil
	}
	return res
}

// FieldPointsTo returns the points-to set of a field, or nil if unknown
func (g *Guarded) FieldPointsTo(obj HeapObject, field FieldKey) PointsToSet {
	var res PointsToSet
	if !g.query(describe("FieldPointsTo", obj, field), func() (err error) {
		res, err = g.oracle.FieldPointsTo(obj, field)
		return
	}) {
		return nil
	}
	return res
}

// MayAlias returns false only if the oracle proves a and b never alias
func (g *Guarded) MayAlias(a, b Variable, ctx ContextKey) bool {
	var res bool
	if !g.query(describe("MayAlias", a, b, ctx), func() (err error) {
		res, err = g.oracle.MayAlias(a, b, ctx)
		return
	}) {
		return true
	}
	return res
}

// IsSingleton returns true only if the oracle proves t is a singleton
func (g *Guarded) IsSingleton(t Target, ctx ContextKey) bool {
	var res bool
	if !g.query(describe("IsSingleton", t, ctx), func() (err error) {
		res, err = g.oracle.IsSingleton(t, ctx)
		return
	}) {
		return false
	}
	return res
}

// CallGraphSuccessors returns the callees of fn, or nil if unknown
func (g *Guarded) CallGraphSuccessors(fn FunctionSymbol) []FunctionSymbol {
	var res []FunctionSymbol
	if !g.query(describe("CallGraphSuccessors", fn.Name), func() (err error) {
		res, err = g.oracle.CallGraphSuccessors(fn)
		return
	}) {
		return nil
	}
	return res
}

// DigestVersion returns the oracle's digest, or the empty string if unknown
func (g *Guarded) DigestVersion() string {
	var res string
	if !g.query("DigestVersion()", func() (err error) {
		res, err = g.oracle.DigestVersion()
		return
	}) {
		return ""
	}
	return res
}
