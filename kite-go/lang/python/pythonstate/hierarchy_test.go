package pythonstate

import (
	"fmt"
	"testing"

	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diamond() *ClassHierarchy {
	h := NewClassHierarchy()
	h.Register(pythontype.NewClass("A"))
	h.Register(pythontype.NewClass("B", "A"))
	h.Register(pythontype.NewClass("C", "A"))
	h.Register(pythontype.NewClass("D", "B", "C"))
	return h
}

func TestHierarchyRelations(t *testing.T) {
	h := diamond()

	assert.Equal(t, []string{"A", "B", "C", "D"}, h.Classes())
	assert.Equal(t, []string{"B", "C"}, h.DirectSupers("D"))
	assert.Equal(t, []string{"B", "C"}, h.DirectSubs("A"))
	assert.Equal(t, []string{"B", "A", "C"}, h.Superclasses("D"))
	assert.Equal(t, []string{"B", "C", "D"}, h.Subclasses("A"))
	assert.Equal(t, []string{"D", "B", "A", "C"}, h.MRO("D"))

	assert.True(t, h.IsSubclass("D", "A"))
	assert.True(t, h.IsSubclass("A", "A"))
	assert.False(t, h.IsSubclass("A", "D"))
	assert.False(t, h.IsSubclass("B", "C"))
}

func TestHierarchyCycle(t *testing.T) {
	h := NewClassHierarchy()
	h.Register(pythontype.NewClass("X", "Y"))
	h.Register(pythontype.NewClass("Y", "X"))

	assert.Equal(t, []string{"Y"}, h.Superclasses("X"))
	assert.Equal(t, []string{"Y"}, h.Subclasses("X"))
	assert.False(t, h.Truncated("X"))
}

func TestHierarchyDepthLimit(t *testing.T) {
	h := NewClassHierarchy()
	for i := 0; i < 2*maxHierarchyDepth; i++ {
		h.Register(pythontype.NewClass(fmt.Sprintf("C%d", i), fmt.Sprintf("C%d", i+1)))
	}

	supers := h.Superclasses("C0")
	require.Len(t, supers, maxHierarchyDepth+1)
	assert.Equal(t, "C1", supers[0])
	assert.True(t, h.Truncated("C0"))

	assert.Len(t, h.Superclasses("C100"), 2*maxHierarchyDepth-100)
	assert.False(t, h.Truncated("C100"))
}

func TestHierarchyLookup(t *testing.T) {
	h := diamond()
	fa := pythontype.NewValue(pythontype.NewFunction("A.f", "self"))
	fc := pythontype.NewValue(pythontype.NewFunction("C.f", "self"))

	a, _ := h.Class("A")
	h.Update(a.WithMethod("f", fa))
	c, _ := h.Class("C")
	h.Update(c.WithMethod("f", fc))

	v, ok := h.Lookup("D", "f")
	require.True(t, ok)
	assert.True(t, pythontype.Equal(fa, v), "B precedes C, and B inherits f from A")

	v, ok = h.Lookup("C", "f")
	require.True(t, ok)
	assert.True(t, pythontype.Equal(fc, v))

	_, ok = h.Lookup("D", "g")
	assert.False(t, ok)
}

func TestHierarchyRegisterMerges(t *testing.T) {
	h := NewClassHierarchy()
	h.Register(pythontype.NewClass("C", "A"))
	c := h.Register(pythontype.NewClass("C", "B"))

	assert.Equal(t, []string{"A", "B"}, c.Bases)
	assert.Equal(t, []string{"A", "B"}, h.DirectSupers("C"))
	assert.Equal(t, []string{"C"}, h.Classes())
}
