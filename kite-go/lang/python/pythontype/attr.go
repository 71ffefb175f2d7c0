package pythontype

import (
	"sort"
	"strings"
)

// Attrs is a persistent attribute map: With and Merge never modify the receiver, so two
// objects can never share mutable attribute state.
type Attrs struct {
	m map[string]Value
}

// NewAttrs builds an attribute map from the given entries
func NewAttrs(entries map[string]Value) Attrs {
	if len(entries) == 0 {
		return Attrs{}
	}
	m := make(map[string]Value, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return Attrs{m: m}
}

// Len returns the number of attributes
func (a Attrs) Len() int {
	return len(a.m)
}

// Get returns the named attribute
func (a Attrs) Get(name string) (Value, bool) {
	v, ok := a.m[name]
	return v, ok
}

// With returns a copy of the map with name bound to v
func (a Attrs) With(name string, v Value) Attrs {
	m := make(map[string]Value, len(a.m)+1)
	for k, x := range a.m {
		m[k] = x
	}
	m[name] = v
	return Attrs{m: m}
}

// Merge returns the key-wise union of a and b; attributes present in both are merged
func (a Attrs) Merge(b Attrs) Attrs {
	switch {
	case len(b.m) == 0:
		return a
	case len(a.m) == 0:
		return b
	}
	m := make(map[string]Value, len(a.m)+len(b.m))
	for k, v := range a.m {
		m[k] = v
	}
	for k, v := range b.m {
		if prev, ok := m[k]; ok {
			m[k] = Merge(prev, v)
		} else {
			m[k] = v
		}
	}
	return Attrs{m: m}
}

// Keys returns the attribute names in sorted order
func (a Attrs) Keys() []string {
	keys := make([]string, 0, len(a.m))
	for k := range a.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns a readable representation of the map
func (a Attrs) String() string {
	var parts []string
	for _, k := range a.Keys() {
		parts = append(parts, k+"="+a.m[k].String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (a Attrs) hash() FlatID {
	h := FlatID(saltAttrs)
	for _, k := range a.Keys() {
		h = rehashValues(rehashStrings(h, k), a.m[k])
	}
	return h
}

// ClassResolver resolves attributes inherited through a class hierarchy. Implementations
// return false if the class or the attribute is not known.
type ClassResolver interface {
	LookupAttr(class, name string) (Value, bool)
}

// GetAttribute unions the named attribute across all objects of v. The result is empty if
// no object has the attribute; callers must treat that as unknown rather than absent.
func (v Value) GetAttribute(name string) Value {
	return v.GetAttributeWith(name, nil)
}

// GetAttributeWith is GetAttribute, additionally resolving class attributes of instances and
// base class attributes of classes through r (which may be nil)
func (v Value) GetAttributeWith(name string, r ClassResolver) Value {
	var out Value
	for _, o := range v.objs {
		if attr, ok := objectAttr(o, name, r); ok {
			out = Merge(out, attr)
		}
	}
	return out
}

// ObjectAttr returns the named attribute of a single object
func ObjectAttr(o Object, name string, r ClassResolver) (Value, bool) {
	return objectAttr(o, name, r)
}

func objectAttr(o Object, name string, r ClassResolver) (Value, bool) {
	if attr, ok := o.attrs().Get(name); ok {
		return attr, true
	}
	switch o := o.(type) {
	case Class:
		if m, ok := o.Methods.Get(name); ok {
			return m, true
		}
		if r != nil {
			for _, base := range o.Bases {
				if attr, ok := r.LookupAttr(base, name); ok {
					return attr, true
				}
			}
		}
	case Instance:
		if r != nil {
			return r.LookupAttr(o.Class, name)
		}
	}
	return Value{}, false
}

// WithAttr returns a copy of o in which the named attribute is set to v.
// Constants and containers have no attribute storage and are returned unchanged.
func WithAttr(o Object, name string, v Value) Object {
	switch o.Kind() {
	case ConstantKind, ContainerKind:
		return o
	}
	return o.withAttrs(o.attrs().With(name, v))
}

// AttrsOf returns the attribute map of an object
func AttrsOf(o Object) Attrs {
	return o.attrs()
}
