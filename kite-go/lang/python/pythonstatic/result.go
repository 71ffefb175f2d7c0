package pythonstatic

import (
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonstate"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyabsint/kite-golib/errors"
	"github.com/kiteco/pyabsint/kite-golib/kitelog"
)

// Stats counts the work done by one run
type Stats struct {
	// Statements is the number of statements interpreted
	Statements int
	// IterationCapHit counts analyses of a body stopped by MaxIterations
	IterationCapHit int
	// RecursionCutoffs counts calls not analyzed because of MaxRecursionDepth
	RecursionCutoffs int
	// EdgesProcessed counts items taken off the interprocedural worklist
	EdgesProcessed int
	// EdgesSkipped counts edges whose callee was already analyzed in the callee context
	EdgesSkipped int
	// DeepestRecursion is the largest number of times one function was on the call stack
	DeepestRecursion int
}

// Result is the outcome of Analyze
type Result struct {
	State     *pythonstate.State
	CallGraph *pythonstate.CallGraph
	Hierarchy *pythonstate.ClassHierarchy
	// Options echoes the configuration the run used
	Options        Options
	Stats          Stats
	Durations      kitelog.Durations
	OracleFailures errors.Errors
}

func (a *Analyzer) result() *Result {
	return &Result{
		State:          a.state,
		CallGraph:      a.state.CallGraph,
		Hierarchy:      a.state.Hierarchy,
		Options:        a.opts,
		Stats:          a.stats,
		Durations:      a.durations,
		OracleFailures: a.oracle.Failures(),
	}
}

// Complete returns false if a cap cut the analysis short, in which case the results are a
// conservative but partial picture
func (r *Result) Complete() bool {
	return r.Stats.IterationCapHit == 0 && r.Stats.RecursionCutoffs == 0
}

// Lookup returns the value of a variable of a scope under the root context
func (r *Result) Lookup(scope, name string) (pythontype.Value, bool) {
	return r.LookupIn(scope, pythonstate.RootContext(), name)
}

// LookupIn returns the value of a variable of a scope under the given context
func (r *Result) LookupIn(scope string, ctx pythonstate.Context, name string) (pythontype.Value, bool) {
	v, ok := r.State.Variables(scope, ctx)[name]
	return v, ok
}

// Merged joins the values of a variable of a scope across every context
func (r *Result) Merged(scope, name string) pythontype.Value {
	var out pythontype.Value
	for _, f := range r.State.FrameKeys() {
		if f.Scope != scope {
			continue
		}
		if v, ok := r.State.Variables(scope, f.Context)[name]; ok {
			out = pythontype.Merge(out, v)
		}
	}
	return out
}

// Contexts returns the contexts under which a scope holds bindings
func (r *Result) Contexts(scope string) []pythonstate.Context {
	var out []pythonstate.Context
	for _, f := range r.State.FrameKeys() {
		if f.Scope == scope {
			out = append(out, f.Context)
		}
	}
	return out
}
