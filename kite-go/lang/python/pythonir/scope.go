package pythonir

// ScopeKind is the kind of lexical unit a Scope describes
type ScopeKind int

const (
	// ModuleScope is a module body
	ModuleScope ScopeKind = iota
	// ClassScope is a class body
	ClassScope
	// FunctionScope is a function body
	FunctionScope
)

func (k ScopeKind) String() string {
	switch k {
	case ClassScope:
		return "class"
	case FunctionScope:
		return "function"
	default:
		return "module"
	}
}

// Scope is the statement stream of one module, class or function body, identified by its
// qualified name. Parent is the qualified name of the lexically enclosing scope.
type Scope struct {
	Name       string
	Kind       ScopeKind
	Parent     string
	Params     []string
	Bases      []string
	Decorators []string
	Async      bool
	Body       []Stmt
}

// HasDecorator returns true if the scope was decorated with the given name
func (s *Scope) HasDecorator(name string) bool {
	for _, d := range s.Decorators {
		if d == name {
			return true
		}
	}
	return false
}

// Program is the output of lowering a set of modules
type Program struct {
	Scopes []*Scope
}

// Scope returns the scope with the given qualified name, or nil
func (p *Program) Scope(name string) *Scope {
	for _, s := range p.Scopes {
		if s.Name == name {
			return s
		}
	}
	return nil
}
