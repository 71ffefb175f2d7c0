package pythonoracle

import (
	"github.com/kiteco/pyabsint/kite-golib/errors"
)

// MockOracle is a map-driven Oracle for tests. Contexts are ignored. Missing entries produce
// the conservative answer. If Err is set every query fails with it, and if Panic is set every
// query panics.
type MockOracle struct {
	Callees    map[CallSite][]FunctionSymbol
	Vars       map[Variable]PointsToSet
	Fields     map[string]PointsToSet
	Singletons map[string]bool
	NoAlias    map[[2]Variable]bool
	Successors map[string][]FunctionSymbol
	Digest     string

	Err   error
	Panic bool

	// Calls counts the queries made, by method name
	Calls map[string]int
}

// NewMockOracle returns an empty MockOracle
func NewMockOracle() *MockOracle {
	return &MockOracle{
		Callees:    make(map[CallSite][]FunctionSymbol),
		Vars:       make(map[Variable]PointsToSet),
		Fields:     make(map[string]PointsToSet),
		Singletons: make(map[string]bool),
		NoAlias:    make(map[[2]Variable]bool),
		Successors: make(map[string][]FunctionSymbol),
		Digest:     "mock",
		Calls:      make(map[string]int),
	}
}

// SetField records the points-to set of a field
func (m *MockOracle) SetField(obj HeapObject, field FieldKey, pts PointsToSet) {
	m.Fields[obj.String()+field.String()] = pts
}

// SetSingleton records the singleton answer for a target
func (m *MockOracle) SetSingleton(t Target, singleton bool) {
	m.Singletons[t.String()] = singleton
}

func (m *MockOracle) check(method string) error {
	m.Calls[method]++
	if m.Panic {
		panic("mock oracle panic in " + method)
	}
	if m.Err != nil {
		return errors.Wrapf(m.Err, "mock %s", method)
	}
	return nil
}

// PossibleCallees implements Oracle
func (m *MockOracle) PossibleCallees(site CallSite, ctx ContextKey) ([]FunctionSymbol, error) {
	if err := m.check("PossibleCallees"); err != nil {
		return nil, err
	}
	return m.Callees[site], nil
}

// PointsTo implements Oracle
func (m *MockOracle) PointsTo(v Variable, ctx ContextKey) (PointsToSet, error) {
	if err := m.check("PointsTo"); err != nil {
		return nil, err
	}
	return m.Vars[v], nil
}

// FieldPointsTo implements Oracle
func (m *MockOracle) FieldPointsTo(obj HeapObject, field FieldKey) (PointsToSet, error) {
	if err := m.check("FieldPointsTo"); err != nil {
		return nil, err
	}
	return m.Fields[obj.String()+field.String()], nil
}

// MayAlias implements Oracle
func (m *MockOracle) MayAlias(a, b Variable, ctx ContextKey) (bool, error) {
	if err := m.check("MayAlias"); err != nil {
		return true, err
	}
	return !m.NoAlias[[2]Variable{a, b}] && !m.NoAlias[[2]Variable{b, a}], nil
}

// IsSingleton implements Oracle
func (m *MockOracle) IsSingleton(t Target, ctx ContextKey) (bool, error) {
	if err := m.check("IsSingleton"); err != nil {
		return false, err
	}
	return m.Singletons[t.String()], nil
}

// CallGraphSuccessors implements Oracle
func (m *MockOracle) CallGraphSuccessors(fn FunctionSymbol) ([]FunctionSymbol, error) {
	if err := m.check("CallGraphSuccessors"); err != nil {
		return nil, err
	}
	return m.Successors[fn.Name], nil
}

// DigestVersion implements Oracle
func (m *MockOracle) DigestVersion() (string, error) {
	if m.Panic || m.Err != nil {
		return "", m.check("DigestVersion")
	}
	m.Calls["DigestVersion"]++
	return m.Digest, nil
}
