package pythonstatic

import (
	"fmt"
	"io"
	"strings"

	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonir"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonoracle"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonstate"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyabsint/kite-golib/collections"
	"github.com/kiteco/pyabsint/kite-golib/errors"
	"github.com/kiteco/pyabsint/kite-golib/kitectx"
	"github.com/kiteco/pyabsint/kite-golib/kitelog"
)

// AnalyzerInputs bundles the inputs for the analyzer
type AnalyzerInputs struct {
	Options Options
	// Oracle answers points-to queries; it may be nil
	Oracle pythonoracle.Oracle
	// Logger receives oracle failures and cutoff notices; nil discards them
	Logger kitelog.Interface
}

type binding struct {
	scope, name string
	value       pythontype.Value
}

type memoKey struct {
	fn, ctx string
}

type edgeItem struct {
	index     int
	propagate bool
}

// Analyzer runs the abstract interpretation of a set of scopes
type Analyzer struct {
	opts        Options
	inputOracle pythonoracle.Oracle
	logger      kitelog.Interface
	traceWriter io.Writer

	scopes   map[string]*pythonir.Scope
	order    []string
	bindings []binding

	// per run
	state     *pythonstate.State
	oracle    *pythonoracle.Guarded
	locals    map[string]map[string]bool
	analyzed  map[string]bool
	memo      map[memoKey]bool
	edges     []pythonstate.Edge
	metas     []edgeMeta
	queue     collections.OrderedMap
	requeued  map[int]bool
	stats     Stats
	durations kitelog.Durations
}

// NewAnalyzer constructs an analyzer with no scopes
func NewAnalyzer(ai AnalyzerInputs) *Analyzer {
	logger := ai.Logger
	if logger == nil {
		logger = kitelog.Nop()
	}
	return &Analyzer{
		opts:        ai.Options,
		inputOracle: ai.Oracle,
		logger:      logger,
		scopes:      make(map[string]*pythonir.Scope),
	}
}

// SetTrace starts writing trace output to the given writer for the analysis
func (a *Analyzer) SetTrace(w io.Writer) {
	a.traceWriter = w
}

func (a *Analyzer) trace(format string, objs ...interface{}) {
	if a.traceWriter != nil {
		fmt.Fprintf(a.traceWriter, format+"\n", objs...)
	}
}

// AddScope adds the statement stream of one module, class or function
func (a *Analyzer) AddScope(s *pythonir.Scope) error {
	switch {
	case s == nil:
		return errors.Errorf("nil scope")
	case s.Name == "":
		return errors.Errorf("scope without a name")
	}
	if _, seen := a.scopes[s.Name]; seen {
		return errors.Errorf("scope %s added twice", s.Name)
	}
	a.scopes[s.Name] = s
	a.order = append(a.order, s.Name)
	return nil
}

// AddProgram adds every scope of a program
func (a *Analyzer) AddProgram(p *pythonir.Program) error {
	var errs errors.Errors
	for _, s := range p.Scopes {
		errs = errors.Append(errs, a.AddScope(s))
	}
	if errs != nil {
		return errs
	}
	return nil
}

// Bind binds a variable of a scope before analysis starts, under the root context
func (a *Analyzer) Bind(scope, name string, v pythontype.Value) {
	a.bindings = append(a.bindings, binding{scope: scope, name: name, value: v})
}

// Analyze runs the analysis to completion or until a cap is hit. The analysis aborts through
// ctx; callers that need cancellation should run it under kitectx.FromContext or similar.
func (a *Analyzer) Analyze(ctx kitectx.Context) (*Result, error) {
	ctx.CheckAbort()

	if err := a.opts.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid options")
	}
	if err := a.reset(); err != nil {
		return nil, err
	}

	a.durations.Time("intraprocedural", func() {
		for _, name := range a.order {
			if a.scopes[name].Kind == pythonir.ModuleScope {
				a.trace("\n### ANALYZING MODULE %s ###", name)
				a.runScope(ctx, name, pythonstate.RootContext())
			}
		}
		for _, name := range a.order {
			s := a.scopes[name]
			switch {
			case s.Kind == pythonir.ClassScope && !a.analyzed[name]:
				a.trace("\n### ANALYZING CLASS %s ###", name)
				a.runClassBody(ctx, name)
			case s.Kind == pythonir.FunctionScope && !a.analyzed[name]:
				a.trace("\n### ANALYZING FUNCTION %s ###", name)
				a.analyzeFunction(ctx, name)
			}
		}
	})

	a.durations.Time("interprocedural", func() {
		a.solve(ctx)
	})

	res := a.result()
	if !res.Complete() {
		a.logger.Printf("analysis incomplete: %d iteration cutoffs, %d recursion cutoffs",
			res.Stats.IterationCapHit, res.Stats.RecursionCutoffs)
	}
	return res, nil
}

func (a *Analyzer) reset() error {
	o := a.inputOracle
	if o != nil && a.opts.OracleCacheSize > 0 {
		cached, err := pythonoracle.NewCachingOracle(o, a.opts.OracleCacheSize)
		if err != nil {
			return errors.Wrapf(err, "error creating oracle cache")
		}
		o = cached
	}
	a.oracle = pythonoracle.Guard(o, a.logger)

	a.state = pythonstate.New(a.opts.stateConfig())
	a.locals = make(map[string]map[string]bool)
	a.analyzed = make(map[string]bool)
	a.memo = make(map[memoKey]bool)
	a.edges = nil
	a.metas = nil
	a.queue = collections.NewOrderedMap(64)
	a.requeued = make(map[int]bool)
	a.stats = Stats{}
	a.durations = nil

	// modules first so that the first module becomes the global scope
	for _, kind := range []pythonir.ScopeKind{pythonir.ModuleScope, pythonir.ClassScope, pythonir.FunctionScope} {
		for _, name := range a.order {
			if s := a.scopes[name]; s.Kind == kind {
				a.state.RegisterScope(s.Name, s.Kind, s.Parent)
			}
		}
	}

	for _, name := range a.order {
		s := a.scopes[name]
		a.state.Flow.Build(s.Name, s.Body)
		a.locals[s.Name] = localNames(s)
		switch s.Kind {
		case pythonir.FunctionScope:
			a.state.RegisterFunction(a.function(s))
		case pythonir.ClassScope:
			a.state.SetCurrent(s.Parent, pythonstate.RootContext())
			a.state.RegisterClass(pythonir.ClassDef{Name: s.Name, Bases: s.Bases})
		}
	}

	for _, b := range a.bindings {
		a.state.SetCurrent(b.scope, pythonstate.RootContext())
		a.state.SetVariableIn(b.scope, b.name, b.value)
	}
	return nil
}

// function builds the function object for a function scope
func (a *Analyzer) function(s *pythonir.Scope) pythontype.Function {
	fn := pythontype.NewFunction(s.Name, s.Params...)
	fn.Async = s.Async
	if parent := a.scopes[s.Parent]; parent != nil && parent.Kind == pythonir.ClassScope {
		switch {
		case s.HasDecorator("staticmethod"):
			fn.Binding = pythontype.StaticMethod
		case s.HasDecorator("classmethod"):
			fn.Binding = pythontype.ClassMethod
		default:
			fn.Binding = pythontype.InstanceMethod
		}
	}
	for _, d := range s.Decorators {
		switch {
		case d == "property":
			fn.Property |= pythontype.PropertyGetter
		case strings.HasSuffix(d, ".setter"):
			fn.Property |= pythontype.PropertySetter
		}
	}
	return fn
}

// localNames returns the names a scope binds itself
func localNames(s *pythonir.Scope) map[string]bool {
	locals := make(map[string]bool)
	for _, p := range s.Params {
		locals[p] = true
	}
	for _, stmt := range s.Body {
		for _, d := range stmt.Defs() {
			locals[d] = true
		}
	}
	return locals
}

// runScope analyzes a body under the given context and restores the current scope and context
// afterwards
func (a *Analyzer) runScope(ctx kitectx.Context, name string, c pythonstate.Context) {
	prevScope, prevCtx := a.state.CurrentScope(), a.state.CurrentContext()
	defer func() {
		if prevScope != nil {
			a.state.SetCurrent(prevScope.Name, prevCtx)
		}
	}()

	a.state.SetCurrent(name, c)
	a.runBody(ctx, name, 0)
	a.analyzed[name] = true
}

// runClassBody analyzes a class body under the root context, where class-level bindings live
func (a *Analyzer) runClassBody(ctx kitectx.Context, name string) {
	if a.scopes[name] == nil {
		return
	}
	a.runScope(ctx, name, pythonstate.RootContext())
}

// analyzeFunction analyzes a function that no analyzed code called, under the root context.
// Parameters that were not bound beforehand are unknown, except that the receiver of a method
// may be an instance of the defining class or any of its subclasses.
func (a *Analyzer) analyzeFunction(ctx kitectx.Context, name string) {
	s := a.scopes[name]
	fn, _ := a.state.Function(name)
	root := pythonstate.RootContext()

	prevScope, prevCtx := a.state.CurrentScope(), a.state.CurrentContext()
	a.state.PushCallStack(pythonstate.Frame{Callee: name, Context: prevCtx, Scope: prevScope})
	a.state.SetCurrent(name, root)

	for i, p := range s.Params {
		if a.state.IsLocal(p) {
			continue
		}
		v := pythontype.UnknownValue()
		if i == 0 {
			if recv := a.receivers(s.Parent, fn.Binding); !recv.Empty() {
				v = recv
			}
		}
		a.state.SetVariable(p, v)
	}

	a.runBody(ctx, name, 0)
	a.analyzed[name] = true

	ret, ok := a.state.ReturnValue()
	if !ok {
		ret = pythontype.NoneValue()
	}
	a.state.ExitFunction(&ret)
}

// receivers returns the possible receivers of a method of class: the class and its subclasses
// for class methods, or their instances for instance methods
func (a *Analyzer) receivers(class string, binding pythontype.MethodBinding) pythontype.Value {
	var objs []pythontype.Object
	for _, c := range append([]string{class}, a.state.Hierarchy.Subclasses(class)...) {
		switch binding {
		case pythontype.InstanceMethod:
			objs = append(objs, pythontype.NewInstance(c, ""))
		case pythontype.ClassMethod:
			if cls, ok := a.state.Hierarchy.Class(c); ok {
				objs = append(objs, cls)
			}
		}
	}
	return pythontype.NewValue(objs...)
}
