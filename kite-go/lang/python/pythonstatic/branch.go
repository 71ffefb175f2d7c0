package pythonstatic

import (
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonir"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
)

// evaluate decides a branch condition where possible
func (a *Analyzer) evaluate(t pythonir.Test) pythontype.Tristate {
	switch {
	case t.Compare != nil:
		return pythontype.Compare(t.Compare.Op, a.operand(t.Compare.Left), a.operand(t.Compare.Right))
	case t.Literal != nil:
		return pythontype.Truthiness(literal(*t.Literal))
	default:
		return pythontype.Truthiness(a.lookup(t.Name))
	}
}

// branch schedules the successors of a conditional jump. A definite condition schedules only
// the successor that is taken. Otherwise both are scheduled and the current bindings are saved
// for every merge point the branch reaches.
func (a *Analyzer) branch(s step, t pythonir.Test, label string, jumpIf bool) {
	if !a.opts.FlowSensitive {
		return
	}
	flow := a.state.Flow
	g := flow.Graph(s.fn)
	target, hasTarget := g.Label(label)

	switch cond := a.evaluate(t); {
	case cond == pythontype.Maybe || !hasTarget:
		ctx := a.state.CurrentContext()
		snap := a.state.Snapshot()
		for _, mp := range flow.MergePointsFrom(s.fn, ctx, s.idx) {
			flow.SaveSnapshot(s.fn, ctx, mp, snap)
		}
		flow.EnqueueSuccessors(s.fn, s.idx)
	case (cond == pythontype.True) == jumpIf:
		a.trace("  branch to %s is always taken", label)
		flow.Enqueue(s.fn, target)
	default:
		a.trace("  branch to %s is never taken", label)
		flow.Enqueue(s.fn, s.idx+1)
	}
}

// jump schedules the target of a goto
func (a *Analyzer) jump(s step, label string) {
	if !a.opts.FlowSensitive {
		return
	}
	if target, ok := a.state.Flow.Graph(s.fn).Label(label); ok {
		a.state.Flow.Enqueue(s.fn, target)
	}
}

// label joins the bindings arriving at a merge point with the snapshots saved for it and
// writes the result back. A revisited merge point whose join did not change stops propagation,
// which is what terminates loops.
func (a *Analyzer) label(s step) {
	if !a.opts.FlowSensitive {
		return
	}
	flow := a.state.Flow
	g := flow.Graph(s.fn)
	if !g.IsMergePoint(s.idx) {
		a.advance(s)
		return
	}

	ctx := a.state.CurrentContext()
	saved, had := flow.Snapshot(s.fn, ctx, s.idx)
	merged := a.state.Snapshot()
	if had {
		merged = saved.Merge(merged)
	}
	a.state.Restore(merged)
	flow.SetSnapshot(s.fn, ctx, s.idx, merged)

	if s.revisits > 0 && had && merged.Equal(saved) {
		a.trace("  join at %d is stable", s.idx)
		return
	}
	a.advance(s)
}
