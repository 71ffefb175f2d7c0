package pythontype

// It is possible to write code that generates huge sets of possible objects, but if the
// number of objects is above this threshold then it is unlikely that we were going to get
// anything reasonable out of it anyway, so the value collapses to Unknown.
const maxObjects = 25

// Merge joins two values. It is total: type-compatible objects (same constant type, same
// container type, same function/class/instance identity) are merged pairwise, other objects
// are kept side by side, and Unknown absorbs everything while keeping the union of the
// attributes of everything it absorbed.
// Merge is commutative, associative and idempotent up to representation.
func Merge(a, b Value) Value {
	switch {
	case len(a.objs) == 0:
		return b
	case len(b.objs) == 0:
		return a
	case a.Has(UnknownKind) || b.Has(UnknownKind):
		return collapse(a.objs, b.objs)
	}

	objs := append(make([]Object, 0, len(a.objs)+len(b.objs)), a.objs...)
	byKey := make(map[string]int, len(objs))
	for i, o := range objs {
		byKey[o.mergeKey()] = i
	}
	for _, o := range b.objs {
		key := o.mergeKey()
		if i, ok := byKey[key]; ok {
			objs[i] = MergeObjects(objs[i], o)
			continue
		}
		byKey[key] = len(objs)
		objs = append(objs, o)
	}

	if len(objs) > maxObjects {
		return collapse(objs)
	}
	return Value{objs: canonical(objs)}
}

// MergeAll merges any number of values
func MergeAll(vs ...Value) Value {
	var out Value
	for _, v := range vs {
		out = Merge(out, v)
	}
	return out
}

// MergeObjects merges two objects. Type-incompatible objects merge to Unknown.
func MergeObjects(x, y Object) Object {
	if x.mergeKey() != y.mergeKey() {
		return Unknown{Attrs: x.attrs().Merge(y.attrs())}
	}
	switch x := x.(type) {
	case Constant:
		return x.merge(y.(Constant))
	case Container:
		return x.merge(y.(Container))
	case Function:
		return x.merge(y.(Function))
	case Class:
		return x.merge(y.(Class))
	default:
		return x.withAttrs(x.attrs().Merge(y.attrs()))
	}
}

// collapse merges the attributes of every object into a single Unknown
func collapse(groups ...[]Object) Value {
	var attrs Attrs
	for _, objs := range groups {
		for _, o := range objs {
			attrs = attrs.Merge(o.attrs())
		}
	}
	return Value{objs: []Object{Unknown{Attrs: attrs}}}
}
