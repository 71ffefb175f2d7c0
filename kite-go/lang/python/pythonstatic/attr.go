package pythonstatic

import (
	"strings"

	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonir"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonoracle"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
)

// heapObject maps an object to the abstract heap object the oracle knows it as
func heapObject(o pythontype.Object) pythonoracle.HeapObject {
	switch o := o.(type) {
	case pythontype.Instance:
		return pythonoracle.HeapObject{Site: o.Site, Type: o.Class}
	case pythontype.Function:
		return pythonoracle.HeapObject{Site: o.Name, Type: "function"}
	case pythontype.Class:
		return pythonoracle.HeapObject{Site: o.Name, Type: "type"}
	case pythontype.ExternalInstance:
		name := o.Module + "." + o.Name
		return pythonoracle.HeapObject{Site: name, Type: name}
	case pythontype.ExternalFunction:
		return pythonoracle.HeapObject{Site: o.Module + "." + o.Name, Type: "function"}
	case pythontype.ExternalClass:
		return pythonoracle.HeapObject{Site: o.Module + "." + o.Name, Type: "type"}
	default:
		return pythonoracle.HeapObject{Type: pythontype.TypeName(o)}
	}
}

// materialize converts an oracle points-to set into a value
func (a *Analyzer) materialize(pts pythonoracle.PointsToSet) pythontype.Value {
	var objs []pythontype.Object
	for _, h := range pts {
		switch h.Type {
		case "function":
			if fn, ok := a.state.Function(h.Site); ok {
				objs = append(objs, fn)
			} else {
				mod, name := splitQualified(h.Site)
				objs = append(objs, pythontype.ExternalFunction{Module: mod, Name: name})
			}
		case "type":
			if cls, ok := a.state.Hierarchy.Class(h.Site); ok {
				objs = append(objs, cls)
			} else {
				mod, name := splitQualified(h.Site)
				objs = append(objs, pythontype.ExternalClass{Module: mod, Name: name})
			}
		default:
			if _, ok := a.state.Hierarchy.Class(h.Type); ok {
				objs = append(objs, pythontype.NewInstance(h.Type, h.Site))
			} else if strings.Contains(h.Type, ".") {
				mod, name := splitQualified(h.Type)
				objs = append(objs, pythontype.ExternalInstance{Module: mod, Name: name})
			} else {
				objs = append(objs, pythontype.Unknown{})
			}
		}
	}
	return pythontype.NewValue(objs...)
}

func splitQualified(s string) (string, string) {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "", s
}

// attrStore stores an attribute on every object the base may hold. The oracle decides per
// object whether the store overwrites (singleton) or joins with the previous attribute value.
// The heap entry of the object's identity is updated as well as the copy held by the frame
// that binds the base.
func (a *Analyzer) attrStore(s step, st pythonir.AttrStore) {
	base := a.lookup(st.Object)
	v := a.lookup(st.Value)

	updated := base
	for _, o := range base.Objects() {
		strong := false
		if a.oracle.Available() {
			t := pythonoracle.FieldTarget(heapObject(o), pythonoracle.Attribute(st.Attr))
			strong = a.oracle.IsSingleton(t, a.contextKey())
		}

		attr := v
		if prev, ok := pythontype.AttrsOf(o).Get(st.Attr); ok && !strong {
			attr = pythontype.Merge(prev, v)
		}
		updated = updated.Replace(o, pythontype.WithAttr(o, st.Attr, attr))
		a.state.StoreHeapAttr(pythontype.Identity(o), st.Attr, v, strong)
	}

	a.state.UpdateVariable(st.Object, updated)
}

// attrLoad unions the attribute across every object the base may hold. Each object consults
// the oracle first; without an answer it joins its own attributes with those stored on its heap
// identity. Then it falls back to its
// class. Nothing found means Unknown.
func (a *Analyzer) attrLoad(st pythonir.AttrLoad) pythontype.Value {
	base := a.lookup(st.Object)

	var out pythontype.Value
	for _, o := range base.Objects() {
		if a.oracle.Available() {
			pts := a.oracle.FieldPointsTo(heapObject(o), pythonoracle.Attribute(st.Attr))
			if len(pts) > 0 {
				out = pythontype.Merge(out, a.materialize(pts))
				continue
			}
		}
		own, found := pythontype.AttrsOf(o).Get(st.Attr)
		if id := pythontype.Identity(o); id != "" {
			if v, ok := a.state.HeapAttr(id, st.Attr); ok {
				own, found = pythontype.Merge(own, v), true
			}
		}
		if found {
			out = pythontype.Merge(out, own)
			continue
		}
		if v, ok := pythontype.ObjectAttr(o, st.Attr, a.state); ok {
			out = pythontype.Merge(out, v)
		}
	}
	return out.OrUnknown()
}
