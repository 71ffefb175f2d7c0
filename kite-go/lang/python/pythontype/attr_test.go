package pythontype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockResolver map[string]map[string]Value

func (m mockResolver) LookupAttr(class, name string) (Value, bool) {
	v, ok := m[class][name]
	return v, ok
}

func TestAttrsCopyOnWrite(t *testing.T) {
	a := NewAttrs(map[string]Value{"x": IntValue(1)})
	b := a.With("y", IntValue(2))

	_, ok := a.Get("y")
	assert.False(t, ok, "With must not modify the receiver")
	assert.Equal(t, []string{"x", "y"}, b.Keys())

	merged := a.Merge(NewAttrs(map[string]Value{"x": IntValue(5)}))
	x, _ := merged.Get("x")
	assertEqual(t, IntValue(1, 5), x)
	x, _ = a.Get("x")
	assertEqual(t, IntValue(1), x)
}

func TestMergeDoesNotAliasAttrs(t *testing.T) {
	i := WithAttr(NewInstance("m.C", "s"), "x", IntValue(1))
	v := Merge(NewValue(i), NewValue(WithAttr(NewInstance("m.C", "s"), "x", IntValue(2))))

	x, ok := AttrsOf(i).Get("x")
	require.True(t, ok)
	assertEqual(t, IntValue(1), x)

	x = v.GetAttribute("x")
	assertEqual(t, IntValue(1, 2), x)
}

func TestGetAttribute(t *testing.T) {
	person := NewClass("m.Person", "m.Base").WithMethod("greet", NewValue(NewFunction("m.Person.greet", "self")))
	resolver := mockResolver{
		"m.Person": {"greet": NewValue(NewFunction("m.Person.greet", "self"))},
		"m.Base":   {"kind": StrValue("base")},
	}

	v := Merge(NewValue(person), NewValue(NewInstance("m.Person", "s1")))

	assert.Equal(t, 1, v.GetAttribute("greet").Len(), "class methods resolve without a resolver")
	assertEqual(t, StrValue("base"), v.GetAttributeWith("kind", resolver))
	assert.True(t, v.GetAttribute("missing").Empty())
	assert.True(t, IntValue(1).GetAttribute("real").Empty())
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, "", Identity(Unknown{}))
	assert.Equal(t, "", Identity(Constant{Type: NoneType}))
	assert.NotEqual(t, Identity(NewInstance("m.C", "a")), Identity(NewInstance("m.C", "b")))
}
