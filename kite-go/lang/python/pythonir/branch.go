package pythonir

import (
	"strconv"
)

// LiteralKind is the type of a literal constant
type LiteralKind int

const (
	// NoneLiteral is None
	NoneLiteral LiteralKind = iota
	// IntLiteral is an integer
	IntLiteral
	// FloatLiteral is a float
	FloatLiteral
	// StrLiteral is a string
	StrLiteral
	// BoolLiteral is True or False
	BoolLiteral
)

// Literal is a constant appearing in the statement stream
type Literal struct {
	Kind  LiteralKind
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

// Int returns an integer literal
func Int(x int64) Literal { return Literal{Kind: IntLiteral, Int: x} }

// Float returns a float literal
func Float(x float64) Literal { return Literal{Kind: FloatLiteral, Float: x} }

// Str returns a string literal
func Str(s string) Literal { return Literal{Kind: StrLiteral, Str: s} }

// Bool returns a boolean literal
func Bool(b bool) Literal { return Literal{Kind: BoolLiteral, Bool: b} }

// None returns the None literal
func None() Literal { return Literal{Kind: NoneLiteral} }

func (l Literal) String() string {
	switch l.Kind {
	case IntLiteral:
		return strconv.FormatInt(l.Int, 10)
	case FloatLiteral:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case StrLiteral:
		return strconv.Quote(l.Str)
	case BoolLiteral:
		if l.Bool {
			return "True"
		}
		return "False"
	default:
		return "None"
	}
}

// Operand is either a variable name or a literal
type Operand struct {
	Name    string
	Literal *Literal
}

// Var returns an operand reading a variable
func Var(name string) Operand { return Operand{Name: name} }

// Lit returns a literal operand
func Lit(l Literal) Operand { return Operand{Literal: &l} }

func (o Operand) String() string {
	if o.Literal != nil {
		return o.Literal.String()
	}
	return o.Name
}

// Comparison is `Left Op Right` with Op one of ==, !=, <, <=, >, >=, is, is not
type Comparison struct {
	Left  Operand
	Op    string
	Right Operand
}

// Test is the condition of a conditional jump. Exactly one of Name, Literal or Compare is set;
// anything more complex is lowered into a temporary and tested by Name.
type Test struct {
	Name    string
	Literal *Literal
	Compare *Comparison
}

// Uses returns the variables the test reads
func (t Test) Uses() []string {
	switch {
	case t.Compare != nil:
		return names(t.Compare.Left.Name, t.Compare.Right.Name)
	default:
		return names(t.Name)
	}
}

func (t Test) String() string {
	switch {
	case t.Compare != nil:
		return t.Compare.Left.String() + " " + t.Compare.Op + " " + t.Compare.Right.String()
	case t.Literal != nil:
		return t.Literal.String()
	default:
		return t.Name
	}
}
