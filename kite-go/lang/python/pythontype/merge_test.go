package pythontype

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertEqual(t *testing.T, expected, actual Value) {
	if !Equal(expected, actual) {
		t.Errorf("expected %v but got %v", expected, actual)
	}
}

func assertNotEqual(t *testing.T, expected, actual Value) {
	if Equal(expected, actual) {
		t.Errorf("expected values to differ but both were %v", actual)
	}
}

func sampleValues() []Value {
	person := NewInstance("mod.Person", "mod:3")
	return []Value{
		{},
		IntValue(1),
		IntValue(10, 20),
		IntRange(-5, 5),
		FloatValue(0.5),
		StrValue("abc"),
		StringValue(StringRefinement{Prefixes: []string{"http"}, MaxLen: -1}),
		NoneValue(),
		AnyBool(),
		NewValue(NewList(IntValue(1), IntValue(2))),
		NewValue(NewDict([]Value{StrValue("k")}, []Value{FloatValue(1)})),
		NewValue(NewFunction("mod.f", "x")),
		NewValue(NewFunction("mod.f", "x", "y")),
		NewValue(Function{Name: "mod.f", Params: []string{"self"}, Async: true, Binding: InstanceMethod}),
		NewValue(NewClass("mod.Person")),
		NewValue(NewClass("mod.Person", "mod.A", "mod.B")),
		NewValue(NewClass("mod.Person", "mod.B", "mod.A")),
		NewValue(NewClass("mod.Person", "mod.C").WithMethod("greet", NewValue(NewFunction("mod.Person.greet")))),
		NewValue(WithAttr(person, "name", StrValue("bob"))),
		NewValue(ExternalInstance{Module: "os", Name: "PathLike"}),
		UnknownValue(),
		NewValue(Unknown{Attrs: NewAttrs(map[string]Value{"x": IntValue(3)})}),
	}
}

func TestMergeEmpty(t *testing.T) {
	x := IntValue(4)
	assertEqual(t, x, Merge(Value{}, x))
	assertEqual(t, x, Merge(x, Value{}))
	assert.True(t, Merge(Value{}, Value{}).Empty())
	assert.False(t, UnknownValue().Empty())
}

func TestMergeCommutative(t *testing.T) {
	vs := sampleValues()
	for _, a := range vs {
		for _, b := range vs {
			assertEqual(t, Merge(a, b), Merge(b, a))
		}
	}
}

func TestMergeAssociative(t *testing.T) {
	vs := sampleValues()
	for _, a := range vs {
		for _, b := range vs {
			for _, c := range vs {
				assertEqual(t, Merge(Merge(a, b), c), Merge(a, Merge(b, c)))
			}
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	for _, a := range sampleValues() {
		assertEqual(t, a, Merge(a, a))
	}
}

func TestMergeClasses(t *testing.T) {
	ab := NewValue(NewClass("m.C", "m.A", "m.B"))
	ba := NewValue(NewClass("m.C", "m.B", "m.A"))

	merged := Merge(ab, ba)
	assertEqual(t, merged, Merge(ba, ab))
	require.Len(t, merged.Classes(), 1)
	assert.Equal(t, []string{"m.A", "m.B"}, merged.Classes()[0].Bases)

	// a single declaration keeps its order
	assert.Equal(t, []string{"m.B", "m.A"}, Merge(ba, ba).Classes()[0].Bases)
}

func TestMergeFunctions(t *testing.T) {
	f := NewValue(NewFunction("m.f", "x"))
	g := NewValue(Function{Name: "m.f", Params: []string{"x", "y"}, Binding: StaticMethod, Property: PropertyGetter})

	merged := Merge(f, g)
	assertEqual(t, merged, Merge(g, f))
	require.Len(t, merged.Functions(), 1)
	fn := merged.Functions()[0]
	assert.Equal(t, []string{"x", "y"}, fn.Params)
	assert.Equal(t, StaticMethod, fn.Binding)
	assert.Equal(t, PropertyGetter, fn.Property)
}

func TestMergeNumeric(t *testing.T) {
	v := Merge(IntValue(20), IntValue(10))
	require.Equal(t, 1, v.Len())

	c := v.Constants()[0]
	assert.Equal(t, IntType, c.Type)
	assert.Equal(t, []float64{10, 20}, c.Num.Exact)
	assert.Equal(t, 10.0, c.Num.Lower)
	assert.Equal(t, 20.0, c.Num.Upper)
	assert.False(t, c.Num.MayBeZero)

	// an unconstrained side loses the exact set but not the hull
	w := Merge(v, IntRange(0, 5))
	c = w.Constants()[0]
	assert.Nil(t, c.Num.Exact)
	assert.Equal(t, 0.0, c.Num.Lower)
	assert.Equal(t, 20.0, c.Num.Upper)
	assert.True(t, c.Num.MayBeZero)
}

func TestMergeKeepsDistinctTypes(t *testing.T) {
	v := Merge(IntValue(1), StrValue("a"))
	assert.Equal(t, 2, v.Len())
	assert.True(t, v.IsDefinitelyConstant())

	v = Merge(v, NewValue(NewFunction("m.f")))
	assert.False(t, v.IsDefinitelyConstant())
	assert.True(t, v.IsPossiblyConstant())
}

func TestMergeObjectsIncompatible(t *testing.T) {
	f := WithAttr(NewFunction("m.f"), "a", IntValue(1))
	o := MergeObjects(f, Constant{Type: NoneType})
	require.Equal(t, UnknownKind, o.Kind())
	attr, ok := AttrsOf(o).Get("a")
	require.True(t, ok)
	assertEqual(t, IntValue(1), attr)
}

func TestMergeUnknownAbsorbs(t *testing.T) {
	inst := WithAttr(NewInstance("m.C", ""), "x", IntValue(1))
	v := Merge(NewValue(inst), UnknownValue())
	require.True(t, v.IsUnknown())

	x, ok := AttrsOf(v.Objects()[0]).Get("x")
	require.True(t, ok)
	assertEqual(t, IntValue(1), x)
}

func TestMergeTooManyObjects(t *testing.T) {
	var v Value
	for i := 0; i < maxObjects+1; i++ {
		v = Merge(v, NewValue(NewFunction(string(rune('a'+i)))))
	}
	assert.True(t, v.IsUnknown())
}

func TestMergeContainers(t *testing.T) {
	a := NewValue(NewContainer(ListType, IntValue(1), Value{}, 2, 5))
	b := NewValue(NewContainer(ListType, StrValue("x"), Value{}, 0, Unbounded))
	v := Merge(a, b)

	cs := v.Containers()
	require.Len(t, cs, 1)
	assert.Equal(t, 0, cs[0].MinSize)
	assert.False(t, cs[0].Bounded())
	assert.Equal(t, []string{"int", "str"}, cs[0].ElemTypes)

	// different container types are kept side by side
	assert.Equal(t, 2, Merge(a, NewValue(NewTuple())).Len())
}

func TestNumericRefinementSound(t *testing.T) {
	cases := []NumericRefinement{
		ExactNumbers(3, -2, 7),
		ExactNumbers(0),
		NumberRange(1, 9),
		NumberRange(-3, -1),
		NumberRange(math.Inf(-1), 0),
		AnyNumber(),
		NumericRefinement{Exact: []float64{1, 100}, Lower: 0, Upper: 50}.normalize(),
		ExactNumbers(1, 2).join(NumberRange(-4, 0)),
	}
	for _, n := range cases {
		for _, x := range n.Exact {
			assert.True(t, x >= n.Lower && x <= n.Upper, "%v outside [%v, %v]", x, n.Lower, n.Upper)
		}
		if !n.MayBeZero {
			assert.True(t, n.Lower > 0 || n.Upper < 0, "may_be_zero false with %v", n)
		}
		assert.Equal(t, n.Lower < 0, n.MayBeNegative)
		assert.Equal(t, n.Upper > 0, n.MayBePositive)
	}
}

func TestNumericDefaults(t *testing.T) {
	n := AnyNumber()
	assert.True(t, math.IsInf(n.Lower, -1))
	assert.True(t, math.IsInf(n.Upper, 1))
	assert.True(t, n.MayBeZero)
	assert.True(t, n.MayBeNegative)
	assert.True(t, n.MayBePositive)
}

func TestNumericFlagsFollowBounds(t *testing.T) {
	v := NumericValue(IntType, NumericRefinement{Lower: 1, Upper: 5, MayBeZero: true, MayBeNegative: true})
	n := v.Constants()[0].Num
	assert.False(t, n.MayBeZero)
	assert.False(t, n.MayBeNegative)
	assert.True(t, n.MayBePositive)

	v = NumericValue(IntType, NumericRefinement{Lower: -1, Upper: 1})
	n = v.Constants()[0].Num
	assert.True(t, n.MayBeZero)
	assert.True(t, n.MayBeNegative)
	assert.True(t, n.MayBePositive)
}

func TestExactSetCap(t *testing.T) {
	xs := make([]float64, maxExactValues+1)
	for i := range xs {
		xs[i] = float64(i)
	}
	n := ExactNumbers(xs...)
	assert.Nil(t, n.Exact)
	assert.Equal(t, 0.0, n.Lower)
	assert.Equal(t, float64(maxExactValues), n.Upper)
}

func TestStringRefinement(t *testing.T) {
	s := ExactStrings("http://a", "https://bc")
	assert.Equal(t, 8, s.MinLen)
	assert.Equal(t, 10, s.MaxLen)

	joined := s.join(StringRefinement{Prefixes: []string{"ftp"}, MaxLen: -1})
	assert.Nil(t, joined.Exact)
	assert.Equal(t, []string{"ftp", "http://a", "https://bc"}, joined.Prefixes)
	assert.Equal(t, -1, joined.MaxLen)
	assert.True(t, joined.Contains("ftp://x"))
	assert.False(t, joined.Contains("gopher://"))

	// one unconstrained side drops the prefix constraint
	assert.Nil(t, s.join(AnyString()).Prefixes)
}

func TestEqualAndHash(t *testing.T) {
	assertEqual(t, IntValue(1, 2), Merge(IntValue(2), IntValue(1)))
	assertNotEqual(t, IntValue(1), IntValue(2))
	assertNotEqual(t, IntValue(1), FloatValue(1))
	assert.Equal(t, IntValue(5).Hash(), IntValue(5).Hash())
	assert.NotEqual(t, StrValue("ab", "c").Hash(), StrValue("a", "bc").Hash())
}
