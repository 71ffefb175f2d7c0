package pythonstatic

import (
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonir"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonoracle"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonstate"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyabsint/kite-golib/errors"
	"github.com/kiteco/pyabsint/kite-golib/kitectx"
)

// step is one statement being interpreted
type step struct {
	fn       string
	idx      int
	revisits int
	stmt     pythonir.Stmt
}

// runBody interprets a body starting at start in a fresh worklist segment. Under flow
// insensitivity the whole body is interpreted in order until the frame stops changing.
func (a *Analyzer) runBody(ctx kitectx.Context, fn string, start int) {
	if !a.opts.FlowSensitive {
		a.passes(ctx, fn)
		return
	}

	flow := a.state.Flow
	cur := flow.Current
	flow.PushSegment()
	defer flow.PopSegment(cur)

	flow.Enqueue(fn, start)
	var n int
	for {
		item, ok := flow.Dequeue()
		if !ok {
			return
		}
		if n >= a.opts.MaxIterations {
			a.stats.IterationCapHit++
			a.logger.Printf("iteration cap of %d reached in %s", a.opts.MaxIterations, fn)
			return
		}
		n++
		a.interpret(ctx, item)
	}
}

func (a *Analyzer) passes(ctx kitectx.Context, fn string) {
	s := a.scopes[fn]
	if s == nil {
		return
	}
	flow := a.state.Flow
	cur := flow.Current
	defer func() { flow.Current = cur }()

	var n int
	for {
		before := a.state.Snapshot()
		for idx := range s.Body {
			if n >= a.opts.MaxIterations {
				a.stats.IterationCapHit++
				a.logger.Printf("iteration cap of %d reached in %s", a.opts.MaxIterations, fn)
				return
			}
			n++
			flow.Current = pythonstate.WorkItem{Function: fn, Index: idx}
			a.interpret(ctx, flow.Current)
		}
		if a.state.Snapshot().Equal(before) {
			return
		}
	}
}

// interpret applies the transfer function of one statement
func (a *Analyzer) interpret(ctx kitectx.Context, item pythonstate.WorkItem) {
	ctx.CheckAbort()

	scope := a.scopes[item.Function]
	if scope == nil || item.Index < 0 || item.Index >= len(scope.Body) {
		errors.Invariantf("no statement %d in %s", item.Index, item.Function)
	}
	s := step{
		fn:       item.Function,
		idx:      item.Index,
		revisits: a.state.Flow.Visit(item.Function, a.state.CurrentContext(), item.Index),
		stmt:     scope.Body[item.Index],
	}
	a.stats.Statements++
	a.trace("%s:%d%s %v", s.fn, s.idx, a.state.CurrentContext(), s.stmt)

	switch stmt := s.stmt.(type) {
	case pythonir.Assign:
		a.assign(s, stmt.Target, a.lookup(stmt.Value))
	case pythonir.Const:
		a.assign(s, stmt.Target, literal(stmt.Value))
	case pythonir.BuildContainer:
		a.assign(s, stmt.Target, a.build(stmt))
	case pythonir.Opaque:
		a.assign(s, stmt.Target, pythontype.UnknownValue())
	case pythonir.Delete:
		for _, name := range stmt.Names {
			a.state.DeleteVariable(name)
		}
	case pythonir.AttrStore:
		a.attrStore(s, stmt)
	case pythonir.AttrLoad:
		a.assign(s, stmt.Target, a.attrLoad(stmt))
	case pythonir.SubscriptStore:
		a.subscriptStore(stmt)
	case pythonir.SubscriptLoad:
		a.assign(s, stmt.Target, a.subscriptLoad(stmt))
	case pythonir.Call:
		v := a.call(ctx, s, stmt)
		if stmt.Target != "" {
			a.assign(s, stmt.Target, v)
		}
	case pythonir.Return:
		v := pythontype.NoneValue()
		if stmt.Value != "" {
			v = a.lookup(stmt.Value)
		}
		a.state.SetReturnValue(v)
	case pythonir.Raise:
		v := pythontype.UnknownValue()
		if stmt.Value != "" {
			v = a.lookup(stmt.Value)
		}
		a.state.SetException(v)
	case pythonir.Yield:
		a.assign(s, stmt.Target, pythontype.UnknownValue())
	case pythonir.Await:
		a.assign(s, stmt.Target, pythontype.UnknownValue())
	case pythonir.FunctionDef:
		a.functionDef(s, stmt)
	case pythonir.ClassDef:
		a.classDef(ctx, s, stmt)
	case pythonir.JumpIfTrue:
		a.branch(s, stmt.Test, stmt.Label, true)
		return
	case pythonir.JumpIfFalse:
		a.branch(s, stmt.Test, stmt.Label, false)
		return
	case pythonir.Goto:
		a.jump(s, stmt.Label)
		return
	case pythonir.Label:
		a.label(s)
		return
	default:
		errors.Invariantf("unhandled statement %T", s.stmt)
	}
	a.advance(s)
}

// advance schedules the successors of a statement
func (a *Analyzer) advance(s step) {
	if a.opts.FlowSensitive {
		a.state.Flow.EnqueueSuccessors(s.fn, s.idx)
	}
}

// lookup resolves a variable, or returns Unknown if it is not bound
func (a *Analyzer) lookup(name string) pythontype.Value {
	if name == "" {
		return pythontype.UnknownValue()
	}
	if v, ok := a.state.GetVariable(name); ok {
		return v
	}
	return pythontype.UnknownValue()
}

func (a *Analyzer) operand(o pythonir.Operand) pythontype.Value {
	if o.Literal != nil {
		return literal(*o.Literal)
	}
	return a.lookup(o.Name)
}

func literal(l pythonir.Literal) pythontype.Value {
	switch l.Kind {
	case pythonir.IntLiteral:
		return pythontype.IntValue(l.Int)
	case pythonir.FloatLiteral:
		return pythontype.FloatValue(l.Float)
	case pythonir.StrLiteral:
		return pythontype.StrValue(l.Str)
	case pythonir.BoolLiteral:
		return pythontype.BoolValue(l.Bool)
	default:
		return pythontype.NoneValue()
	}
}

// assign binds a target, choosing between a strong and a weak update
func (a *Analyzer) assign(s step, target string, v pythontype.Value) {
	if target == "" {
		return
	}
	g := a.state.Flow.Graph(s.fn)
	var preds int
	if g != nil {
		preds = len(g.Preds[s.idx])
	}
	strong := strongUpdate(s.revisits, a.opts.FlowSensitive, preds, func() bool {
		return a.shouldUseStrongUpdate(s.fn, target)
	})
	if strong {
		a.state.SetVariable(target, v)
	} else {
		a.state.MergeVariable(target, v)
	}
}

// strongUpdate decides whether an assignment overwrites its target. In order: a revisited
// statement is always weak; without flow sensitivity the singleton check decides; at a merge
// point the assignment dominates and is strong; otherwise it is weak so that values still live
// from another branch survive.
func strongUpdate(revisits int, flowSensitive bool, preds int, singleton func() bool) bool {
	switch {
	case revisits > 0:
		return false
	case !flowSensitive:
		return singleton()
	case preds > 1:
		return true
	default:
		return false
	}
}

// shouldUseStrongUpdate asks the oracle whether a variable is a singleton, and otherwise treats
// variables local to the current scope as singletons
func (a *Analyzer) shouldUseStrongUpdate(fn, name string) bool {
	if a.oracle.Available() {
		v := pythonoracle.Variable{Scope: fn, Name: name}
		return a.oracle.IsSingleton(pythonoracle.VariableTarget(v), a.contextKey())
	}
	return a.locals[fn][name]
}

func (a *Analyzer) contextKey() pythonoracle.ContextKey {
	return pythonoracle.ContextKey(a.state.CurrentContext().Key())
}

func (a *Analyzer) build(b pythonir.BuildContainer) pythontype.Value {
	elems := make([]pythontype.Value, len(b.Elems))
	for i, e := range b.Elems {
		elems[i] = a.lookup(e)
	}
	switch b.Type {
	case pythonir.Tuple:
		return pythontype.NewValue(pythontype.NewTuple(elems...))
	case pythonir.Set:
		return pythontype.NewValue(pythontype.NewSet(elems...))
	case pythonir.Dict:
		keys := make([]pythontype.Value, len(b.Keys))
		for i, k := range b.Keys {
			keys[i] = a.lookup(k)
		}
		return pythontype.NewValue(pythontype.NewDict(keys, elems))
	default:
		return pythontype.NewValue(pythontype.NewList(elems...))
	}
}

func (a *Analyzer) functionDef(s step, def pythonir.FunctionDef) {
	fn, ok := a.state.Function(def.Name)
	if !ok {
		fn = pythontype.NewFunction(def.Name)
		a.state.RegisterFunction(fn)
	}
	v := pythontype.NewValue(fn)
	a.assign(s, def.Target, v)
	if sc := a.state.CurrentScope(); sc != nil && sc.Kind == pythonir.ClassScope && def.Target != "" {
		a.state.AddMethod(sc.Name, def.Target, v)
	}
}

func (a *Analyzer) classDef(ctx kitectx.Context, s step, def pythonir.ClassDef) {
	if len(def.Bases) == 0 {
		if cs := a.scopes[def.Name]; cs != nil {
			def.Bases = cs.Bases
		}
	}
	a.state.RegisterClass(def)
	a.runClassBody(ctx, def.Name)
	cls, _ := a.state.Hierarchy.Class(def.Name)
	a.assign(s, def.Target, pythontype.NewValue(cls))
}
