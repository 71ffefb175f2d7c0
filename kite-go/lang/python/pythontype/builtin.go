package pythontype

import (
	"math"
	"strconv"
	"strings"
)

// Len models len(v): the result bounds come from the size bounds of the containers and the
// length bounds of the strings v may hold. The result is never negative and may be zero only
// if its lower bound is zero.
func Len(v Value) Value {
	if v.Empty() {
		return IntRange(0, math.Inf(1))
	}
	lower, upper := math.Inf(1), math.Inf(-1)
	for _, o := range v.objs {
		lo, hi := 0.0, math.Inf(1)
		switch o := o.(type) {
		case Container:
			lo = float64(o.MinSize)
			if o.Bounded() {
				hi = float64(o.MaxSize)
			}
		case Constant:
			if o.Type == StrType {
				lo = float64(o.Str.MinLen)
				if o.Str.MaxLen >= 0 {
					hi = float64(o.Str.MaxLen)
				}
			}
		}
		lower = math.Min(lower, lo)
		upper = math.Max(upper, hi)
	}
	if lower < 0 {
		lower = 0
	}
	return IntRange(lower, upper)
}

// ToInt models int(v)
func ToInt(v Value) Value {
	var out Value
	for _, o := range v.objs {
		c, ok := o.(Constant)
		if !ok {
			out = Merge(out, AnyInt())
			continue
		}
		switch {
		case c.Type.Numeric():
			if c.Num.Exact != nil {
				xs := make([]float64, len(c.Num.Exact))
				for i, x := range c.Num.Exact {
					xs[i] = math.Trunc(x)
				}
				out = Merge(out, NumericValue(IntType, ExactNumbers(xs...)))
			} else {
				out = Merge(out, NumericValue(IntType, NumberRange(math.Trunc(c.Num.Lower), math.Trunc(c.Num.Upper))))
			}
		case c.Type == StrType && c.Str.Exact != nil:
			for _, s := range c.Str.Exact {
				n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
				if err != nil {
					// int() raises for this string; nothing flows out of the call
					continue
				}
				out = Merge(out, IntValue(n))
			}
		default:
			out = Merge(out, AnyInt())
		}
	}
	if out.Empty() {
		return AnyInt()
	}
	return out
}

// ToStr models str(v)
func ToStr(v Value) Value {
	var out Value
	for _, o := range v.objs {
		c, ok := o.(Constant)
		if !ok {
			out = Merge(out, AnyStr())
			continue
		}
		switch {
		case c.Type == StrType:
			out = Merge(out, NewValue(c))
		case c.Type == NoneType:
			out = Merge(out, StrValue("None"))
		case c.Type == BoolType && c.Num.Exact != nil:
			for _, x := range c.Num.Exact {
				out = Merge(out, StrValue(boolRepr(x != 0)))
			}
		case c.Type.Numeric() && c.Num.Exact != nil:
			for _, x := range c.Num.Exact {
				out = Merge(out, StrValue(formatConstant(c.Type, x)))
			}
		default:
			s := AnyString()
			s.MinLen = 1
			out = Merge(out, StringValue(s))
		}
	}
	if out.Empty() {
		return AnyStr()
	}
	return out
}

func boolRepr(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func formatConstant(t ConstType, x float64) string {
	if t == IntType {
		return strconv.FormatFloat(x, 'f', 0, 64)
	}
	s := strconv.FormatFloat(x, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}

// ToBool models bool(v)
func ToBool(v Value) Value {
	switch Truthiness(v) {
	case True:
		return BoolValue(true)
	case False:
		return BoolValue(false)
	default:
		return AnyBool()
	}
}

// ToContainer models list(v), tuple(v) and set(v): the elements of the result are whatever
// iterating over v produces.
func ToContainer(t ContainerType, v Value) Value {
	var out Value
	for _, o := range v.objs {
		var elem Value
		min, max := 0, Unbounded
		switch o := o.(type) {
		case Container:
			elem = o.Elem
			if o.Type == DictType {
				elem = o.Key
			}
			min, max = o.MinSize, o.MaxSize
		case Constant:
			if o.Type != StrType {
				// iterating over a number raises
				continue
			}
			elem = chars(o.Str)
			min, max = o.Str.MinLen, o.Str.MaxLen
		default:
			elem = UnknownValue()
		}
		if t == SetType && min > 1 {
			min = 1
		}
		out = Merge(out, NewValue(NewContainer(t, elem, Value{}, min, max)))
	}
	if out.Empty() {
		return NewValue(NewContainer(t, UnknownValue(), Value{}, 0, Unbounded))
	}
	return out
}

// ToDict models dict(v)
func ToDict(v Value) Value {
	var out Value
	for _, o := range v.objs {
		if c, ok := o.(Container); ok && c.Type == DictType {
			out = Merge(out, NewValue(c))
			continue
		}
		out = Merge(out, NewValue(NewContainer(DictType, UnknownValue(), UnknownValue(), 0, Unbounded)))
	}
	if out.Empty() {
		return NewValue(NewContainer(DictType, Value{}, Value{}, 0, 0))
	}
	return out
}

// chars returns the value of a single character of a string with the given refinement
func chars(s StringRefinement) Value {
	if s.Exact == nil {
		return StringValue(StringRefinement{MinLen: 1, MaxLen: 1})
	}
	var cs []string
	for _, e := range s.Exact {
		for _, r := range e {
			cs = append(cs, string(r))
		}
	}
	if len(cs) == 0 {
		return Value{}
	}
	return StrValue(cs...)
}

// Sum models sum(v) over the containers v may hold
func Sum(v Value) Value {
	var out Value
	for _, o := range v.objs {
		c, ok := o.(Container)
		if !ok {
			out = Merge(out, AnyInt())
			continue
		}
		if c.MaxSize == 0 || c.Elem.Empty() {
			out = Merge(out, IntValue(0))
			continue
		}
		for _, e := range c.Elem.objs {
			ec, ok := e.(Constant)
			if !ok || !ec.Type.Numeric() {
				out = Merge(out, AnyInt())
				continue
			}
			t := IntType
			if ec.Type == FloatType {
				t = FloatType
			}
			lower, upper := sumBounds(ec.Num, c)
			out = Merge(out, NumericValue(t, NumberRange(lower, upper)))
		}
	}
	if out.Empty() {
		return AnyInt()
	}
	return out
}

// sumBounds returns the range of n*x for n in [c.MinSize, c.MaxSize] and x in [e.Lower, e.Upper]
func sumBounds(e NumericRefinement, c Container) (float64, float64) {
	minN := float64(c.MinSize)
	maxN := math.Inf(1)
	if c.Bounded() {
		maxN = float64(c.MaxSize)
	}
	lower := math.Inf(-1)
	switch {
	case e.Lower >= 0:
		lower = minN * e.Lower
	case c.Bounded():
		lower = maxN * e.Lower
	}
	upper := math.Inf(1)
	switch {
	case e.Upper <= 0:
		upper = minN * e.Upper
	case c.Bounded():
		upper = maxN * e.Upper
	}
	return lower, upper
}
