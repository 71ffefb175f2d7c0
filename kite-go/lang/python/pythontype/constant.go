package pythontype

import (
	"math"
)

// ConstType identifies the builtin type of a constant
type ConstType int

const (
	// IntType is the type of integer constants
	IntType ConstType = iota
	// FloatType is the type of floating point constants
	FloatType
	// StrType is the type of string constants
	StrType
	// BoolType is the type of True and False; the refinement holds 0 and/or 1
	BoolType
	// NoneType is the type of None
	NoneType
)

// String returns the runtime type name
func (t ConstType) String() string {
	switch t {
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case StrType:
		return "str"
	case BoolType:
		return "bool"
	case NoneType:
		return "NoneType"
	default:
		return "invalid-const"
	}
}

// Numeric returns true for int, float and bool
func (t ConstType) Numeric() bool {
	return t == IntType || t == FloatType || t == BoolType
}

// Constant is a numeric, string, boolean or none constant with its refinement.
// Num is set for numeric types and Str for strings.
type Constant struct {
	Type ConstType
	Num  NumericRefinement
	Str  StringRefinement
}

// Kind implements Object
func (Constant) Kind() Kind { return ConstantKind }

// String implements Object
func (c Constant) String() string {
	switch {
	case c.Type.Numeric():
		return c.Type.String() + c.Num.String()
	case c.Type == StrType:
		return c.Type.String() + c.Str.String()
	default:
		return "None"
	}
}

func (c Constant) mergeKey() string { return "const:" + c.Type.String() }

func (c Constant) hash() FlatID {
	h := rehash(saltConstant, FlatID(c.Type))
	switch {
	case c.Type.Numeric():
		return rehash(h, c.Num.hash())
	case c.Type == StrType:
		return rehash(h, c.Str.hash())
	default:
		return h
	}
}

func (Constant) attrs() Attrs { return Attrs{} }

func (c Constant) withAttrs(Attrs) Object { return c }

func (c Constant) merge(d Constant) Constant {
	out := Constant{Type: c.Type}
	switch {
	case c.Type.Numeric():
		out.Num = c.Num.join(d.Num)
	case c.Type == StrType:
		out.Str = c.Str.join(d.Str)
	}
	return out
}

// IntValue returns a Value holding exactly the given integer
func IntValue(xs ...int64) Value {
	fs := make([]float64, len(xs))
	for i, x := range xs {
		fs[i] = float64(x)
	}
	return NewValue(Constant{Type: IntType, Num: ExactNumbers(fs...)})
}

// IntRange returns a Value holding any integer in [lower, upper]; infinite bounds are allowed
func IntRange(lower, upper float64) Value {
	return NewValue(Constant{Type: IntType, Num: NumberRange(math.Ceil(lower), math.Floor(upper))})
}

// AnyInt returns a Value holding any integer
func AnyInt() Value {
	return NewValue(Constant{Type: IntType, Num: AnyNumber()})
}

// FloatValue returns a Value holding exactly the given floats
func FloatValue(xs ...float64) Value {
	return NewValue(Constant{Type: FloatType, Num: ExactNumbers(xs...)})
}

// AnyFloat returns a Value holding any float
func AnyFloat() Value {
	return NewValue(Constant{Type: FloatType, Num: AnyNumber()})
}

// NumericValue returns a Value of the given numeric type with an explicit refinement
func NumericValue(t ConstType, n NumericRefinement) Value {
	return NewValue(Constant{Type: t, Num: n.normalize()})
}

// StrValue returns a Value holding exactly the given strings
func StrValue(ss ...string) Value {
	return NewValue(Constant{Type: StrType, Str: ExactStrings(ss...)})
}

// StringValue returns a string Value with an explicit refinement
func StringValue(s StringRefinement) Value {
	return NewValue(Constant{Type: StrType, Str: s.normalize()})
}

// AnyStr returns a Value holding any string
func AnyStr() Value {
	return NewValue(Constant{Type: StrType, Str: AnyString()})
}

// BoolValue returns a Value holding exactly the given boolean
func BoolValue(b bool) Value {
	if b {
		return NewValue(Constant{Type: BoolType, Num: ExactNumbers(1)})
	}
	return NewValue(Constant{Type: BoolType, Num: ExactNumbers(0)})
}

// AnyBool returns a Value holding True or False
func AnyBool() Value {
	return NewValue(Constant{Type: BoolType, Num: ExactNumbers(0, 1)})
}

// NoneValue returns a Value holding None
func NoneValue() Value {
	return NewValue(Constant{Type: NoneType})
}
