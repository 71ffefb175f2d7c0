package pythontype

import (
	"strconv"
	"strings"
)

// ContainerType identifies the builtin container type
type ContainerType int

const (
	// ListType is list
	ListType ContainerType = iota
	// TupleType is tuple
	TupleType
	// SetType is set
	SetType
	// DictType is dict
	DictType
)

// String returns the runtime type name
func (t ContainerType) String() string {
	switch t {
	case ListType:
		return "list"
	case TupleType:
		return "tuple"
	case SetType:
		return "set"
	case DictType:
		return "dict"
	default:
		return "invalid-container"
	}
}

// Unbounded is the MaxSize of a container whose size has no known upper bound
const Unbounded = -1

// Container represents a builtin list, tuple, set or dict. Elements are abstracted as a whole
// (not per index): Elem is the union of all elements (the values, for a dict) and Key the
// union of all keys of a dict.
type Container struct {
	Type      ContainerType
	ElemTypes []string
	Elem      Value
	KeyTypes  []string
	Key       Value
	MinSize   int
	MaxSize   int
}

// NewContainer builds a container of the given type holding the given element (and, for a
// dict, key) values, with size in [minSize, maxSize]; maxSize may be Unbounded.
func NewContainer(t ContainerType, elem, key Value, minSize, maxSize int) Container {
	return Container{
		Type:    t,
		Elem:    elem,
		Key:     key,
		MinSize: minSize,
		MaxSize: maxSize,
	}.normalize()
}

// NewList builds a list with exactly the given elements
func NewList(elems ...Value) Container {
	return newSequence(ListType, elems)
}

// NewTuple builds a tuple with exactly the given elements
func NewTuple(elems ...Value) Container {
	return newSequence(TupleType, elems)
}

// NewSet builds a set from the given elements
func NewSet(elems ...Value) Container {
	c := newSequence(SetType, elems)
	if c.MinSize > 1 {
		// duplicates may collapse
		c.MinSize = 1
	}
	return c
}

// NewDict builds a dict from parallel key and value lists
func NewDict(keys, values []Value) Container {
	var k, v Value
	for i := range keys {
		k = Merge(k, keys[i])
		if i < len(values) {
			v = Merge(v, values[i])
		}
	}
	min := len(keys)
	if min > 1 {
		min = 1
	}
	return NewContainer(DictType, v, k, min, len(keys))
}

func newSequence(t ContainerType, elems []Value) Container {
	var elem Value
	for _, e := range elems {
		elem = Merge(elem, e)
	}
	return NewContainer(t, elem, Value{}, len(elems), len(elems))
}

func (c Container) normalize() Container {
	c.ElemTypes = unionStrings(c.ElemTypes, TypeNames(c.Elem))
	c.KeyTypes = unionStrings(c.KeyTypes, TypeNames(c.Key))
	if c.MinSize < 0 {
		c.MinSize = 0
	}
	if c.MaxSize < 0 {
		c.MaxSize = Unbounded
	} else if c.MaxSize < c.MinSize {
		c.MaxSize = c.MinSize
	}
	return c
}

// Bounded returns true if the container has a known maximum size
func (c Container) Bounded() bool {
	return c.MaxSize != Unbounded
}

// WithStore returns the container after storing elem (under key, for a dict) at some index.
// The size bounds widen monotonically: at least one element is present afterwards and the
// maximum grows by one when it is known.
func (c Container) WithStore(elem, key Value) Container {
	out := c
	out.Elem = Merge(c.Elem, elem)
	if c.Type == DictType {
		out.Key = Merge(c.Key, key)
	}
	if out.MinSize < 1 {
		out.MinSize = 1
	}
	if out.Bounded() {
		out.MaxSize++
	}
	return out.normalize()
}

// Kind implements Object
func (Container) Kind() Kind { return ContainerKind }

// String implements Object
func (c Container) String() string {
	var b strings.Builder
	b.WriteString(c.Type.String())
	b.WriteString("[")
	if c.Type == DictType {
		b.WriteString(strings.Join(c.KeyTypes, "|"))
		b.WriteString(":")
	}
	b.WriteString(strings.Join(c.ElemTypes, "|"))
	b.WriteString("](")
	b.WriteString(strconv.Itoa(c.MinSize))
	b.WriteString("..")
	if c.Bounded() {
		b.WriteString(strconv.Itoa(c.MaxSize))
	} else {
		b.WriteString("inf")
	}
	b.WriteString(")")
	return b.String()
}

func (c Container) mergeKey() string { return "container:" + c.Type.String() }

func (c Container) hash() FlatID {
	h := rehashStrings(rehash(saltContainer, FlatID(c.Type)), c.ElemTypes...)
	h = rehashStrings(h, c.KeyTypes...)
	h = rehashFloats(h, float64(c.MinSize), float64(c.MaxSize))
	return rehashValues(h, c.Elem, c.Key)
}

func (Container) attrs() Attrs { return Attrs{} }

func (c Container) withAttrs(Attrs) Object { return c }

func (c Container) merge(d Container) Container {
	max := Unbounded
	if c.Bounded() && d.Bounded() {
		max = c.MaxSize
		if d.MaxSize > max {
			max = d.MaxSize
		}
	}
	return Container{
		Type:      c.Type,
		ElemTypes: unionStrings(c.ElemTypes, d.ElemTypes),
		Elem:      Merge(c.Elem, d.Elem),
		KeyTypes:  unionStrings(c.KeyTypes, d.KeyTypes),
		Key:       Merge(c.Key, d.Key),
		MinSize:   minInt(c.MinSize, d.MinSize),
		MaxSize:   max,
	}.normalize()
}
