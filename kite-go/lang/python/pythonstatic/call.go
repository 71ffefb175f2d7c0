package pythonstatic

import (
	"sort"
	"strings"

	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonir"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonoracle"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonstate"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyabsint/kite-golib/kitectx"
)

// call evaluates a call statement. The callee may resolve to a builtin, to functions and
// classes of the analyzed program, or, through the oracle, to further functions. The results
// of every resolved callee are joined; a call that resolves to nothing yields Unknown.
func (a *Analyzer) call(ctx kitectx.Context, s step, c pythonir.Call) pythontype.Value {
	args := make([]pythontype.Value, len(c.Args))
	for i, arg := range c.Args {
		args[i] = a.lookup(arg)
	}
	var recv *pythonstate.Receiver
	if c.Receiver != "" {
		rv := a.lookup(c.Receiver)
		recv = &pythonstate.Receiver{ID: receiverID(rv), Value: rv}
	}

	var result pythontype.Value
	var resolved bool
	called := make(map[string]bool)

	callee, bound := a.state.GetVariable(c.Callee)
	if !bound {
		if b, ok := builtins[c.Callee]; ok {
			result = b(a, args)
			resolved = true
			called[c.Callee] = true
		} else if fn, ok := a.state.Function(c.Callee); ok {
			callee = pythontype.NewValue(fn)
		} else if cls, ok := a.state.Hierarchy.Class(c.Callee); ok {
			callee = pythontype.NewValue(cls)
		}
	}

	for _, o := range callee.Objects() {
		var v pythontype.Value
		switch o := o.(type) {
		case pythontype.Function:
			v = a.callFunction(ctx, s, c, o, args, recv, false)
			called[o.Name] = true
		case pythontype.Class:
			v = a.instantiate(ctx, s, c, o, args)
			called[o.Name] = true
		case pythontype.ExternalClass:
			v = pythontype.NewValue(pythontype.ExternalInstance{Module: o.Module, Name: o.Name})
		default:
			v = pythontype.UnknownValue()
		}
		result = pythontype.Merge(result, v)
		resolved = true
	}

	if a.oracle.Available() {
		site := pythonoracle.CallSite{Function: s.fn, Index: s.idx}
		callees := a.oracle.PossibleCallees(site, a.contextKey())
		for _, sym := range callees {
			name := strings.TrimPrefix(sym.Name, "builtins.")
			if called[name] {
				continue
			}
			called[name] = true
			if b, ok := builtins[name]; ok {
				result = pythontype.Merge(result, b(a, args))
				resolved = true
			} else if fn, ok := a.state.Function(sym.Name); ok {
				result = pythontype.Merge(result, a.callFunction(ctx, s, c, fn, args, recv, false))
				resolved = true
			}
		}
		if len(callees) == 0 && !resolved {
			return pythontype.UnknownValue()
		}
	}

	if !resolved {
		return pythontype.UnknownValue()
	}
	return result
}

// receiverID identifies a receiver for object-sensitive contexts
func receiverID(v pythontype.Value) string {
	var ids []string
	for _, o := range v.Objects() {
		if id := pythontype.Identity(o); id != "" {
			ids = append(ids, id)
		} else if n := pythontype.TypeName(o); n != "" {
			ids = append(ids, n)
		}
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

// callFunction records the call edge and, with direct calls enabled, analyzes the callee
// synchronously and returns its return value. Without direct calls the callee's return value
// known so far is used and the interprocedural worklist does the rest.
func (a *Analyzer) callFunction(ctx kitectx.Context, s step, c pythonir.Call, fn pythontype.Function, args []pythontype.Value, recv *pythonstate.Receiver, ctor bool) pythontype.Value {
	site := pythonstate.CallSiteID(s.fn, s.idx)
	if recv != nil && fn.Binding != pythontype.InstanceMethod && fn.Binding != pythontype.ClassMethod {
		recv = nil
	}
	var recvID string
	if recv != nil {
		recvID = recv.ID
	}
	calleeCtx := a.state.CreateContext(site, recvID)
	a.registerCall(s, c, fn.Name, calleeCtx, edgeMeta{recv: recv, ctor: ctor})

	if a.scopes[fn.Name] == nil {
		return pythontype.UnknownValue()
	}
	summary, known := a.state.ReturnSummary(fn.Name, calleeCtx)
	if !a.opts.DirectCalls {
		return summary
	}
	if a.state.CallDepth(fn.Name) >= a.opts.MaxRecursionDepth {
		a.stats.RecursionCutoffs++
		a.trace("recursion cutoff for %s at %s", fn.Name, site)
		if known {
			return summary
		}
		return pythontype.UnknownValue()
	}

	a.memo[memoKey{fn.Name, calleeCtx.Key()}] = true
	return a.invoke(ctx, fn, c.Args, args, recv, s.fn, s.idx)
}

// invoke analyzes fn on an explicit call-stack frame under a context derived from the current
// one and returns its return value, or None if it returned nothing
func (a *Analyzer) invoke(ctx kitectx.Context, fn pythontype.Function, argNames []string, args []pythontype.Value, recv *pythonstate.Receiver, caller string, idx int) pythontype.Value {
	a.state.PushCallStack(pythonstate.Frame{
		Caller:  caller,
		Callee:  fn.Name,
		Index:   idx,
		Context: a.state.CurrentContext(),
	})
	if d := a.state.CallDepth(fn.Name); d > a.stats.DeepestRecursion {
		a.stats.DeepestRecursion = d
	}
	calleeCtx := a.state.EnterFunction(fn, args, pythonstate.CallSiteID(caller, idx), recv)
	a.trace("enter %s%s", fn.Name, calleeCtx)

	a.runBody(ctx, fn.Name, 0)
	a.analyzed[fn.Name] = true

	ret, ok := a.state.ReturnValue()
	if !ok {
		ret = pythontype.NoneValue()
	}
	params := a.parameterValues(fn, recv, len(argNames))
	a.state.ExitFunction(&ret)
	a.writeBackArguments(argNames, params)
	a.trace("exit %s%s -> %v", fn.Name, calleeCtx, ret)
	return ret
}

// parameterValues reads the final values of the first n positional parameters of fn from the
// current frame
func (a *Analyzer) parameterValues(fn pythontype.Function, recv *pythonstate.Receiver, n int) []pythontype.Value {
	params := fn.Params
	if recv != nil && len(params) > 0 {
		switch fn.Binding {
		case pythontype.InstanceMethod, pythontype.ClassMethod:
			params = params[1:]
		}
	}
	if len(params) < n {
		n = len(params)
	}
	out := make([]pythontype.Value, n)
	for i := 0; i < n; i++ {
		out[i], _ = a.state.GetVariable(params[i])
	}
	return out
}

// writeBackArguments joins the containers a callee left in its parameters into the caller's
// argument variables, so stores made through a parameter reach the caller's container
func (a *Analyzer) writeBackArguments(names []string, params []pythontype.Value) {
	for i, v := range params {
		cs := v.Containers()
		if len(cs) == 0 || names[i] == "" {
			continue
		}
		prev, ok := a.state.GetVariable(names[i])
		if !ok || len(prev.Containers()) == 0 {
			continue
		}
		objs := make([]pythontype.Object, len(cs))
		for j, c := range cs {
			objs[j] = c
		}
		a.state.UpdateVariable(names[i], pythontype.Merge(prev, pythontype.NewValue(objs...)))
	}
}

// instantiate models calling a class: a new instance allocated at the call site, initialized
// by the class's __init__ if there is one
func (a *Analyzer) instantiate(ctx kitectx.Context, s step, c pythonir.Call, cls pythontype.Class, args []pythontype.Value) pythontype.Value {
	inst := pythontype.NewInstance(cls.Name, pythonstate.CallSiteID(s.fn, s.idx))
	v := pythontype.NewValue(inst)

	if init, ok := a.state.LookupAttr(cls.Name, "__init__"); ok {
		recv := &pythonstate.Receiver{ID: pythontype.Identity(inst), Value: v}
		for _, fn := range init.Functions() {
			a.callFunction(ctx, s, c, fn, args, recv, true)
		}
	}
	return v
}

// registerCall records a call edge and schedules it on the interprocedural worklist if it is new
func (a *Analyzer) registerCall(s step, c pythonir.Call, callee string, calleeCtx pythonstate.Context, meta edgeMeta) {
	n := a.state.CallGraph.Len()
	e := a.state.RegisterCall(s.fn, callee, c, s.idx, nil, &calleeCtx)
	if a.state.CallGraph.Len() > n {
		a.edges = append(a.edges, e)
		a.metas = append(a.metas, meta)
		a.queue.Set(edgeItem{index: len(a.edges) - 1}, struct{}{})
	}
}
