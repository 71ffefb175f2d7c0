// Package pythonoracle defines the points-to oracle the analysis engine consults, together with
// wrappers that make it safe (Guard) and cheap (NewCachingOracle) to query.
//
// The oracle is produced by a separate pointer analysis. Every method must return a sound
// over-approximation when uncertain, except IsSingleton which must under-approximate.
package pythonoracle

import (
	"fmt"
	"strconv"
)

// ContextKey identifies an analysis context; the empty key means "any context"
type ContextKey string

// FunctionSymbol identifies a function by its qualified name
type FunctionSymbol struct {
	Name string
}

// CallSite identifies a call statement by its function and statement index
type CallSite struct {
	Function string
	Index    int
}

func (c CallSite) String() string {
	return c.Function + "#" + strconv.Itoa(c.Index)
}

// Variable identifies a variable by its scope and name
type Variable struct {
	Scope string
	Name  string
}

func (v Variable) String() string {
	return v.Scope + ":" + v.Name
}

// HeapObject is an abstract heap object: an allocation site and the type allocated there
type HeapObject struct {
	Site string
	Type string
}

func (h HeapObject) String() string {
	return h.Site + "<" + h.Type + ">"
}

// PointsToSet is a set of abstract heap objects
type PointsToSet []HeapObject

// FieldKind distinguishes the fields of a heap object
type FieldKind int

const (
	// AttributeField is a named attribute
	AttributeField FieldKind = iota
	// ElementField is a sequence element, optionally at a known index
	ElementField
	// ValueField is a mapping value, optionally under a known key
	ValueField
	// UnknownField is any field
	UnknownField
)

// FieldKey names a field of a heap object
type FieldKey struct {
	Kind  FieldKind
	Name  string
	Index *int
	Key   *string
}

// Attribute returns the key of a named attribute
func Attribute(name string) FieldKey {
	return FieldKey{Kind: AttributeField, Name: name}
}

// Element returns the key of a sequence element; index may be nil
func Element(index *int) FieldKey {
	return FieldKey{Kind: ElementField, Index: index}
}

// MapValue returns the key of a mapping value; key may be nil
func MapValue(key *string) FieldKey {
	return FieldKey{Kind: ValueField, Key: key}
}

func (f FieldKey) String() string {
	switch f.Kind {
	case AttributeField:
		return "." + f.Name
	case ElementField:
		if f.Index != nil {
			return "[" + strconv.Itoa(*f.Index) + "]"
		}
		return "[*]"
	case ValueField:
		if f.Key != nil {
			return "[" + strconv.Quote(*f.Key) + "]"
		}
		return "{*}"
	default:
		return ".?"
	}
}

// Target is the subject of a singleton query: either a variable or a field of a heap object
type Target struct {
	Variable *Variable
	Object   *HeapObject
	Field    *FieldKey
}

// VariableTarget returns a target for a variable
func VariableTarget(v Variable) Target {
	return Target{Variable: &v}
}

// FieldTarget returns a target for a field of a heap object
func FieldTarget(obj HeapObject, field FieldKey) Target {
	return Target{Object: &obj, Field: &field}
}

func (t Target) String() string {
	switch {
	case t.Variable != nil:
		return t.Variable.String()
	case t.Object != nil && t.Field != nil:
		return t.Object.String() + t.Field.String()
	case t.Object != nil:
		return t.Object.String()
	default:
		return "<nil target>"
	}
}

// Oracle answers points-to queries about the analyzed program
type Oracle interface {
	// PossibleCallees returns the functions that may be invoked at a call site
	PossibleCallees(site CallSite, ctx ContextKey) ([]FunctionSymbol, error)
	// PointsTo returns the heap objects a variable may reference
	PointsTo(v Variable, ctx ContextKey) (PointsToSet, error)
	// FieldPointsTo returns the heap objects a field of obj may reference
	FieldPointsTo(obj HeapObject, field FieldKey) (PointsToSet, error)
	// MayAlias returns true if a and b may reference the same heap object
	MayAlias(a, b Variable, ctx ContextKey) (bool, error)
	// IsSingleton returns true only if the target definitely denotes a single runtime location
	IsSingleton(t Target, ctx ContextKey) (bool, error)
	// CallGraphSuccessors returns the functions fn may call
	CallGraphSuccessors(fn FunctionSymbol) ([]FunctionSymbol, error)
	// DigestVersion identifies the analysis results the oracle serves
	DigestVersion() (string, error)
}

func describe(method string, args ...interface{}) string {
	s := method + "("
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprint(a)
	}
	return s + ")"
}
