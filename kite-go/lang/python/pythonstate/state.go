package pythonstate

import (
	"sort"

	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonir"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyabsint/kite-golib/errors"
)

// Scope is a registered lexical scope
type Scope struct {
	Name   string
	Kind   pythonir.ScopeKind
	Parent *Scope
}

type memKey struct {
	scope string
	ctx   string
}

// FrameKey identifies one variable frame of the final state
type FrameKey struct {
	Scope   string
	Context Context
}

// Receiver is the object a method is invoked on. ID distinguishes receivers for
// object-sensitive contexts; Value is bound to the method's first parameter.
type Receiver struct {
	ID    string
	Value pythontype.Value
}

// State is the mutable analysis state of one run. Variables are stored per
// (scope, context) frame; under the insensitive policy every frame uses the root context.
type State struct {
	Config    Config
	Hierarchy *ClassHierarchy
	CallGraph *CallGraph
	Flow      *ControlFlow
	Frames    *FrameStack

	scopes     map[string]*Scope
	scopeOrder []string
	global     *Scope
	memory     map[memKey]map[string]pythontype.Value
	contexts   map[string]Context
	functions  map[string]pythontype.Function
	heap       map[string]pythontype.Attrs
	summaries  map[memKey]pythontype.Value

	current Context
	scope   *Scope

	ret, exc pythontype.Value
	hasRet   bool
}

// New returns an empty state for the given configuration
func New(config Config) *State {
	return &State{
		Config:    config,
		Hierarchy: NewClassHierarchy(),
		CallGraph: NewCallGraph(),
		Flow:      NewControlFlow(),
		Frames:    &FrameStack{},
		scopes:    make(map[string]*Scope),
		memory:    make(map[memKey]map[string]pythontype.Value),
		contexts:  map[string]Context{"": RootContext()},
		functions: make(map[string]pythontype.Function),
		heap:      make(map[string]pythontype.Attrs),
		summaries: make(map[memKey]pythontype.Value),
	}
}

// RegisterScope registers a scope if absent and returns it. The first module scope registered
// becomes the global scope. An unknown parent is registered as a module scope.
func (s *State) RegisterScope(name string, kind pythonir.ScopeKind, parent string) *Scope {
	sc, ok := s.scopes[name]
	if !ok {
		sc = &Scope{Name: name, Kind: kind}
		s.scopes[name] = sc
		s.scopeOrder = append(s.scopeOrder, name)
	}
	if sc.Parent == nil && parent != "" && parent != name {
		p, ok := s.scopes[parent]
		if !ok {
			p = s.RegisterScope(parent, pythonir.ModuleScope, "")
		}
		sc.Parent = p
	}
	if s.global == nil && kind == pythonir.ModuleScope {
		s.global = sc
	}
	return sc
}

// Scope returns a registered scope, or nil
func (s *State) Scope(name string) *Scope {
	return s.scopes[name]
}

// Scopes returns the names of the registered scopes in registration order
func (s *State) Scopes() []string {
	return append([]string(nil), s.scopeOrder...)
}

// Global returns the global scope, or nil if no module was registered
func (s *State) Global() *Scope {
	return s.global
}

// CurrentScope returns the scope statements are currently interpreted in
func (s *State) CurrentScope() *Scope {
	return s.scope
}

// CurrentContext returns the context statements are currently interpreted under
func (s *State) CurrentContext() Context {
	return s.current
}

// SetCurrent switches the current scope and context. An unknown scope selects the global scope.
func (s *State) SetCurrent(scope string, ctx Context) {
	sc := s.scopes[scope]
	if sc == nil {
		sc = s.global
	}
	s.scope = sc
	s.current = ctx
	s.contexts[ctx.Key()] = ctx
}

func (s *State) key(scope string, ctx Context) memKey {
	if s.Config.Policy == Insensitive {
		return memKey{scope: scope}
	}
	return memKey{scope: scope, ctx: ctx.Key()}
}

func (s *State) lookup(sc *Scope, name string) (pythontype.Value, bool) {
	_, v, ok := s.find(sc, name)
	return v, ok
}

// find returns the frame of sc that binds name under the current context, falling back to
// the root-context frame
func (s *State) find(sc *Scope, name string) (memKey, pythontype.Value, bool) {
	k := s.key(sc.Name, s.current)
	if v, ok := s.memory[k][name]; ok {
		return k, v, true
	}
	if !s.current.IsRoot() {
		k = memKey{scope: sc.Name}
		v, ok := s.memory[k][name]
		return k, v, ok
	}
	return memKey{}, pythontype.Value{}, false
}

// resolve walks the current scope and then its enclosing scopes, skipping enclosing class
// bodies, and returns the first frame that binds name
func (s *State) resolve(name string) (memKey, pythontype.Value, bool) {
	sc := s.scope
	if sc == nil {
		sc = s.global
	}
	for cur := sc; cur != nil; cur = cur.Parent {
		if cur != sc && cur.Kind == pythonir.ClassScope {
			continue
		}
		if k, v, ok := s.find(cur, name); ok {
			return k, v, true
		}
	}
	return memKey{}, pythontype.Value{}, false
}

// GetVariable resolves a name in the current scope and then its enclosing scopes, skipping
// enclosing class bodies. Each scope is consulted under the current context first and under
// the root context second.
func (s *State) GetVariable(name string) (pythontype.Value, bool) {
	_, v, ok := s.resolve(name)
	return v, ok
}

// UpdateVariable rebinds name in the frame GetVariable resolves it from, which may belong to an
// enclosing scope or to the root context. It returns false and changes nothing if name is unbound.
func (s *State) UpdateVariable(name string, v pythontype.Value) bool {
	k, _, ok := s.resolve(name)
	if !ok {
		return false
	}
	s.memory[k][name] = v
	return true
}

// GetVariableIn resolves a name in the given scope only. It returns false for unknown scopes.
func (s *State) GetVariableIn(scope, name string) (pythontype.Value, bool) {
	sc := s.scopes[scope]
	if sc == nil {
		return pythontype.Value{}, false
	}
	return s.lookup(sc, name)
}

// IsLocal returns true if name is bound in the current frame itself
func (s *State) IsLocal(name string) bool {
	sc := s.writeScope()
	if sc == nil {
		return false
	}
	_, ok := s.memory[s.key(sc.Name, s.current)][name]
	return ok
}

func (s *State) writeScope() *Scope {
	if s.scope != nil {
		return s.scope
	}
	return s.global
}

func (s *State) set(sc *Scope, name string, v pythontype.Value) {
	if sc == nil {
		errors.Invariantf("cannot set %s: no current scope and no global scope", name)
	}
	k := s.key(sc.Name, s.current)
	frame := s.memory[k]
	if frame == nil {
		frame = make(map[string]pythontype.Value)
		s.memory[k] = frame
	}
	frame[name] = v
	if _, ok := frame[name]; !ok {
		errors.Invariantf("variable %s cannot be read back from %s", name, sc.Name)
	}
}

// SetVariable binds a name in the current frame, overwriting any previous value
func (s *State) SetVariable(name string, v pythontype.Value) {
	s.set(s.writeScope(), name, v)
}

// SetVariableIn binds a name in the given scope under the current context. An unknown scope
// falls back to the global scope.
func (s *State) SetVariableIn(scope, name string, v pythontype.Value) {
	sc := s.scopes[scope]
	if sc == nil {
		sc = s.global
	}
	s.set(sc, name, v)
}

// MergeVariable joins v into the binding of name in the current scope and returns the result
func (s *State) MergeVariable(name string, v pythontype.Value) pythontype.Value {
	sc := s.writeScope()
	if sc == nil {
		errors.Invariantf("cannot merge %s: no current scope and no global scope", name)
	}
	prev, _ := s.lookup(sc, name)
	merged := pythontype.Merge(prev, v)
	s.set(sc, name, merged)
	return merged
}

// DeleteVariable removes a binding from the current frame
func (s *State) DeleteVariable(name string) {
	if sc := s.writeScope(); sc != nil {
		delete(s.memory[s.key(sc.Name, s.current)], name)
	}
}

// Snapshot copies the bindings of the current frame
func (s *State) Snapshot() Snapshot {
	sc := s.writeScope()
	if sc == nil {
		return Snapshot{}
	}
	snap := make(Snapshot)
	for k, v := range s.memory[s.key(sc.Name, s.current)] {
		snap[k] = v
	}
	return snap
}

// Restore writes every binding of snap into the current frame
func (s *State) Restore(snap Snapshot) {
	sc := s.writeScope()
	for _, name := range snap.Names() {
		s.set(sc, name, snap[name])
	}
}

// Variables returns the bindings of one frame
func (s *State) Variables(scope string, ctx Context) map[string]pythontype.Value {
	out := make(map[string]pythontype.Value)
	for k, v := range s.memory[s.key(scope, ctx)] {
		out[k] = v
	}
	return out
}

// FrameKeys returns the keys of all non-empty frames, sorted by scope and then context
func (s *State) FrameKeys() []FrameKey {
	var keys []FrameKey
	for k, vars := range s.memory {
		if len(vars) == 0 {
			continue
		}
		keys = append(keys, FrameKey{Scope: k.scope, Context: s.contexts[k.ctx]})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Scope != keys[j].Scope {
			return keys[i].Scope < keys[j].Scope
		}
		return keys[i].Context.String() < keys[j].Context.String()
	})
	return keys
}

// CreateContext derives a context from the current one under the configured policy
func (s *State) CreateContext(callSite, receiver string) Context {
	ctx := s.current.Derive(s.Config.Policy, s.Config.K, callSite, receiver)
	s.contexts[ctx.Key()] = ctx
	return ctx
}

// EnterFunction switches to a fresh context and frame for fn and binds its parameters left to
// right. Missing arguments bind None. If the function is a method and a receiver is given, the
// receiver binds the first parameter. Bindings that the callee frame already held are saved in
// the innermost call-stack frame and restored by ExitFunction.
func (s *State) EnterFunction(fn pythontype.Function, args []pythontype.Value, callSite string, recv *Receiver) Context {
	var recvID string
	if recv != nil {
		recvID = recv.ID
	}
	ctx := s.CreateContext(callSite, recvID)

	parent := ""
	if s.global != nil {
		parent = s.global.Name
	}
	sc := s.RegisterScope(fn.Name, pythonir.FunctionScope, parent)
	s.scope = sc
	s.current = ctx

	top := s.Frames.Top()
	if top != nil {
		top.calleeFrame = s.key(sc.Name, ctx)
	}
	bind := func(name string, v pythontype.Value) {
		if top != nil {
			prev, ok := s.memory[top.calleeFrame][name]
			top.save(name, prev, ok)
		}
		s.set(sc, name, v.OrUnknown())
	}

	params := fn.Params
	if recv != nil && len(params) > 0 {
		switch fn.Binding {
		case pythontype.InstanceMethod, pythontype.ClassMethod:
			bind(params[0], recv.Value)
			params = params[1:]
		}
	}
	for i, p := range params {
		v := pythontype.NoneValue()
		if i < len(args) {
			v = args[i]
		}
		bind(p, v)
	}
	return ctx
}

// PushCallStack pushes a caller frame before a nested analysis; the cursor is captured from
// the control-flow tracker
func (s *State) PushCallStack(f Frame) *Frame {
	f.Cursor = s.Flow.Current
	if f.Scope == nil {
		f.Scope = s.scope
	}
	s.Frames.Push(&f)
	return &f
}

// ExitFunction pops the innermost call-stack frame, records the return value for the
// function and context being left, restores the bindings saved on entry and switches back to
// the caller's scope and context. A nil ret uses the captured return value, or None.
func (s *State) ExitFunction(ret *pythontype.Value) (string, int, Context) {
	f := s.Frames.Pop()
	if f == nil {
		errors.Invariantf("exit from %s without a call-stack frame", s.scopeName())
	}

	var v pythontype.Value
	switch {
	case ret != nil:
		v = *ret
	case f.returned:
		v = f.Return
	default:
		v = pythontype.NoneValue()
	}
	k := memKey{scope: s.scopeName(), ctx: s.current.Key()}
	s.summaries[k] = pythontype.Merge(s.summaries[k], v)

	for name, b := range f.saved {
		if b.present {
			s.memory[f.calleeFrame][name] = b.value
		}
	}

	s.scope = f.Scope
	s.current = f.Context
	s.Flow.Current = f.Cursor
	return f.Caller, f.Index, f.Context
}

func (s *State) scopeName() string {
	if s.scope == nil {
		return ""
	}
	return s.scope.Name
}

// ReturnSummary returns the joined return values of fn under ctx
func (s *State) ReturnSummary(fn string, ctx Context) (pythontype.Value, bool) {
	v, ok := s.summaries[memKey{scope: fn, ctx: ctx.Key()}]
	return v, ok
}

// SetReturnValue joins v into the return slot of the innermost frame
func (s *State) SetReturnValue(v pythontype.Value) {
	if f := s.Frames.Top(); f != nil {
		f.Return = pythontype.Merge(f.Return, v)
		f.returned = true
		return
	}
	s.ret = pythontype.Merge(s.ret, v)
	s.hasRet = true
}

// ReturnValue returns the return slot of the innermost frame
func (s *State) ReturnValue() (pythontype.Value, bool) {
	if f := s.Frames.Top(); f != nil {
		return f.Return, f.returned
	}
	return s.ret, s.hasRet
}

// ResetReturnValue clears the return slot of the innermost frame
func (s *State) ResetReturnValue() {
	if f := s.Frames.Top(); f != nil {
		f.Return, f.returned = pythontype.Value{}, false
		return
	}
	s.ret, s.hasRet = pythontype.Value{}, false
}

// SetException joins v into the raised-exception slot of the innermost frame
func (s *State) SetException(v pythontype.Value) {
	if f := s.Frames.Top(); f != nil {
		f.Exception = pythontype.Merge(f.Exception, v)
		return
	}
	s.exc = pythontype.Merge(s.exc, v)
}

// Exception returns the raised-exception slot of the innermost frame
func (s *State) Exception() pythontype.Value {
	if f := s.Frames.Top(); f != nil {
		return f.Exception
	}
	return s.exc
}

// CallDepth returns how many times fn occurs on the call stack
func (s *State) CallDepth(fn string) int {
	return s.Frames.Count(fn)
}

// RegisterCall records a call-graph edge. A nil caller context means the current context and
// a nil callee context means a context freshly derived for the call site.
func (s *State) RegisterCall(caller, callee string, stmt pythonir.Stmt, idx int, callerCtx, calleeCtx *Context) Edge {
	e := Edge{Caller: caller, Callee: callee, Stmt: stmt, Index: idx, CallerContext: s.current}
	if callerCtx != nil {
		e.CallerContext = *callerCtx
	}
	if calleeCtx != nil {
		e.CalleeContext = *calleeCtx
	} else {
		e.CalleeContext = s.CreateContext(CallSiteID(caller, idx), "")
	}
	s.contexts[e.CallerContext.Key()] = e.CallerContext
	s.contexts[e.CalleeContext.Key()] = e.CalleeContext
	s.CallGraph.Add(e)
	return e
}

// RegisterClass creates the scope of a class body if absent and inserts the class into the
// hierarchy, returning the registered class object
func (s *State) RegisterClass(def pythonir.ClassDef) pythontype.Class {
	s.RegisterScope(def.Name, pythonir.ClassScope, s.scopeName())
	return s.Hierarchy.Register(pythontype.NewClass(def.Name, def.Bases...))
}

// AddMethod records a function defined in a class body as a member of the class
func (s *State) AddMethod(class, name string, v pythontype.Value) {
	c, ok := s.Hierarchy.Class(class)
	if !ok {
		c = s.Hierarchy.Register(pythontype.NewClass(class))
	}
	s.Hierarchy.Update(c.WithMethod(name, v))
}

// RegisterFunction records a function object so calls by name can be resolved
func (s *State) RegisterFunction(fn pythontype.Function) {
	if prev, ok := s.functions[fn.Name]; ok {
		if merged := pythontype.Merge(pythontype.NewValue(prev), pythontype.NewValue(fn)).Functions(); len(merged) == 1 {
			fn = merged[0]
		}
	}
	s.functions[fn.Name] = fn
}

// Function returns a registered function
func (s *State) Function(name string) (pythontype.Function, bool) {
	fn, ok := s.functions[name]
	return fn, ok
}

// Functions returns the names of all registered functions, sorted
func (s *State) Functions() []string {
	names := make([]string, 0, len(s.functions))
	for n := range s.functions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// HeapAttr returns an attribute stored for a heap object identity
func (s *State) HeapAttr(identity, name string) (pythontype.Value, bool) {
	return s.heap[identity].Get(name)
}

// StoreHeapAttr stores an attribute for a heap object identity; a weak store joins with the
// previous value
func (s *State) StoreHeapAttr(identity, name string, v pythontype.Value, strong bool) {
	if identity == "" {
		return
	}
	attrs := s.heap[identity]
	if prev, ok := attrs.Get(name); ok && !strong {
		v = pythontype.Merge(prev, v)
	}
	s.heap[identity] = attrs.With(name, v)
}

// LookupAttr resolves a class attribute along the resolution order: class-level members,
// then variables bound in the class body.
func (s *State) LookupAttr(class, name string) (pythontype.Value, bool) {
	for _, c := range s.Hierarchy.MRO(class) {
		if obj, ok := s.Hierarchy.Class(c); ok {
			if v, ok := obj.Attrs.Get(name); ok {
				return v, true
			}
			if v, ok := obj.Methods.Get(name); ok {
				return v, true
			}
		}
		if v, ok := s.memory[memKey{scope: c}][name]; ok {
			return v, true
		}
		if v, ok := s.heap["class:"+c].Get(name); ok {
			return v, true
		}
	}
	return pythontype.Value{}, false
}

// Context returns a context seen during the run by its key
func (s *State) Context(key string) (Context, bool) {
	ctx, ok := s.contexts[key]
	return ctx, ok
}
