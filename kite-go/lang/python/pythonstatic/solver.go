package pythonstatic

import (
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonir"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonstate"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyabsint/kite-golib/kitectx"
)

// edgeMeta is what the interprocedural worklist needs to replay a call besides the edge
type edgeMeta struct {
	recv *pythonstate.Receiver
	ctor bool
}

// solve drains the interprocedural worklist of call edges in FIFO order
func (a *Analyzer) solve(ctx kitectx.Context) {
	for {
		k, _, ok := a.queue.PopOldest()
		if !ok {
			return
		}
		ctx.CheckAbort()
		a.stats.EdgesProcessed++

		item := k.(edgeItem)
		if item.propagate {
			a.propagate(ctx, a.edges[item.index])
			continue
		}
		a.processEdge(ctx, item.index)
	}
}

// processEdge skips an edge whose callee was already analyzed under the callee context. The
// memo is what bounds recursion here: contexts are finite, and direct calls made while the
// callee runs are capped by callFunction.
// Otherwise the callee is analyzed with the arguments as seen from the caller's context, its
// return value is joined into the call target, and the edge is queued once more to propagate
// that value through the rest of the caller.
func (a *Analyzer) processEdge(ctx kitectx.Context, index int) {
	e, meta := a.edges[index], a.metas[index]

	key := memoKey{e.Callee, e.CalleeContext.Key()}
	if a.memo[key] {
		a.stats.EdgesSkipped++
		return
	}
	call, ok := e.Stmt.(pythonir.Call)
	fn, known := a.state.Function(e.Callee)
	if !ok || !known || a.scopes[e.Callee] == nil {
		a.stats.EdgesSkipped++
		return
	}
	a.memo[key] = true

	a.trace("\n### PROPAGATING EDGE %v ###", e)
	a.state.SetCurrent(e.Caller, e.CallerContext)
	args := make([]pythontype.Value, len(call.Args))
	for i, arg := range call.Args {
		args[i] = a.lookup(arg)
	}

	ret := a.invoke(ctx, fn, call.Args, args, meta.recv, e.Caller, e.Index)
	if call.Target != "" && !meta.ctor {
		a.state.MergeVariable(call.Target, ret)
	}

	if !a.requeued[index] {
		a.requeued[index] = true
		a.queue.Set(edgeItem{index: index, propagate: true}, struct{}{})
	}
}

// propagate re-analyzes the caller of an edge from the statement after the call site, under
// the caller's context. The caller's return value found on the way is joined into its summary.
func (a *Analyzer) propagate(ctx kitectx.Context, e pythonstate.Edge) {
	a.trace("\n### REPROPAGATING %s AFTER %d ###", e.Caller, e.Index)

	a.state.PushCallStack(pythonstate.Frame{
		Callee:  e.Caller,
		Context: a.state.CurrentContext(),
		Scope:   a.state.CurrentScope(),
	})
	a.state.SetCurrent(e.Caller, e.CallerContext)
	if a.opts.FlowSensitive {
		a.runBody(ctx, e.Caller, e.Index+1)
	} else {
		a.runBody(ctx, e.Caller, 0)
	}

	// an empty value leaves the summary as it is
	ret, _ := a.state.ReturnValue()
	a.state.ExitFunction(&ret)
}
