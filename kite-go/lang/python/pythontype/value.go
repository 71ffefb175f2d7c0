package pythontype

import (
	"sort"
	"strings"
)

// Kind distinguishes the variants of Object
type Kind int

const (
	// UnknownKind indicates a value about which nothing is known
	UnknownKind Kind = iota
	// ConstantKind indicates a numeric, string, boolean or none constant
	ConstantKind
	// ContainerKind indicates a builtin list, tuple, set or dict
	ContainerKind
	// FunctionKind indicates a function or method defined in the analyzed program
	FunctionKind
	// ClassKind indicates a class defined in the analyzed program
	ClassKind
	// InstanceKind indicates an instance of a class defined in the analyzed program
	InstanceKind
	// ExternalFunctionKind indicates a function defined outside the analyzed program
	ExternalFunctionKind
	// ExternalClassKind indicates a class defined outside the analyzed program
	ExternalClassKind
	// ExternalInstanceKind indicates an instance of an external class
	ExternalInstanceKind
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case UnknownKind:
		return "unknown"
	case ConstantKind:
		return "constant"
	case ContainerKind:
		return "container"
	case FunctionKind:
		return "function"
	case ClassKind:
		return "class"
	case InstanceKind:
		return "instance"
	case ExternalFunctionKind:
		return "external-function"
	case ExternalClassKind:
		return "external-class"
	case ExternalInstanceKind:
		return "external-instance"
	default:
		return "invalid-kind"
	}
}

// Object is one possible runtime value. The set of implementations is closed.
type Object interface {
	// Kind categorizes the object
	Kind() Kind
	// String gets a human-readable representation of the object
	String() string

	// mergeKey groups type-compatible objects; two objects with the same key are merged pairwise
	mergeKey() string
	hash() FlatID
	attrs() Attrs
	withAttrs(a Attrs) Object
}

// Value is the abstraction of everything a program location might hold: a finite set of
// Objects kept in canonical order, with at most one object per merge key.
// The zero Value holds no objects and means that no information reached this point yet,
// which is different from a Value holding Unknown.
// Values are immutable; every operation returns a new Value.
type Value struct {
	objs []Object
}

// NewValue builds a Value from the given objects, merging type-compatible ones
func NewValue(objs ...Object) Value {
	var v Value
	for _, o := range objs {
		if o == nil {
			continue
		}
		v = Merge(v, Value{objs: []Object{o}})
	}
	return v
}

// UnknownValue returns a Value holding only Unknown
func UnknownValue() Value {
	return Value{objs: []Object{Unknown{}}}
}

// Empty returns true if no information reached this value
func (v Value) Empty() bool {
	return len(v.objs) == 0
}

// Len returns the number of objects in the value
func (v Value) Len() int {
	return len(v.objs)
}

// Objects returns the objects held by the value
func (v Value) Objects() []Object {
	return append([]Object(nil), v.objs...)
}

// IsUnknown returns true if the value is the absorbing Unknown element
func (v Value) IsUnknown() bool {
	return len(v.objs) == 1 && v.objs[0].Kind() == UnknownKind
}

// Has returns true if any object in the value has the given kind
func (v Value) Has(k Kind) bool {
	for _, o := range v.objs {
		if o.Kind() == k {
			return true
		}
	}
	return false
}

// OrUnknown returns v, or Unknown if v is empty
func (v Value) OrUnknown() Value {
	if v.Empty() {
		return UnknownValue()
	}
	return v
}

// IsDefinitelyConstant returns true if every object the value may hold is a constant
func (v Value) IsDefinitelyConstant() bool {
	if v.Empty() {
		return false
	}
	for _, o := range v.objs {
		if o.Kind() != ConstantKind {
			return false
		}
	}
	return true
}

// IsPossiblyConstant returns true if the value may hold a constant at runtime
func (v Value) IsPossiblyConstant() bool {
	for _, o := range v.objs {
		switch o.Kind() {
		case ConstantKind, UnknownKind:
			return true
		}
	}
	return false
}

// Constants returns the constant objects held by the value
func (v Value) Constants() []Constant {
	var out []Constant
	for _, o := range v.objs {
		if c, ok := o.(Constant); ok {
			out = append(out, c)
		}
	}
	return out
}

// Containers returns the container objects held by the value
func (v Value) Containers() []Container {
	var out []Container
	for _, o := range v.objs {
		if c, ok := o.(Container); ok {
			out = append(out, c)
		}
	}
	return out
}

// Functions returns the function objects held by the value
func (v Value) Functions() []Function {
	var out []Function
	for _, o := range v.objs {
		if f, ok := o.(Function); ok {
			out = append(out, f)
		}
	}
	return out
}

// Classes returns the class objects held by the value
func (v Value) Classes() []Class {
	var out []Class
	for _, o := range v.objs {
		if c, ok := o.(Class); ok {
			out = append(out, c)
		}
	}
	return out
}

// Replace returns a value in which the object with the same identity as old is replaced by repl
func (v Value) Replace(old, repl Object) Value {
	key := old.mergeKey()
	objs := make([]Object, 0, len(v.objs))
	for _, o := range v.objs {
		if o.mergeKey() == key {
			objs = append(objs, repl)
		} else {
			objs = append(objs, o)
		}
	}
	return Value{objs: canonical(objs)}
}

// String returns a readable representation, e.g. {int{10,20} | str}
func (v Value) String() string {
	parts := make([]string, len(v.objs))
	for i, o := range v.objs {
		parts[i] = o.String()
	}
	return "{" + strings.Join(parts, " | ") + "}"
}

// Hash gets a hash that is equal for values holding the same constraints
func (v Value) Hash() FlatID {
	hs := make([]FlatID, 0, len(v.objs)+1)
	hs = append(hs, saltValue)
	for _, o := range v.objs {
		hs = append(hs, o.hash())
	}
	return rehash(hs...)
}

// Equal determines whether two values represent the same constraints
func Equal(a, b Value) bool {
	if len(a.objs) != len(b.objs) {
		return false
	}
	for i := range a.objs {
		if a.objs[i].mergeKey() != b.objs[i].mergeKey() || a.objs[i].hash() != b.objs[i].hash() {
			return false
		}
	}
	return true
}

// Identity returns a stable identity for objects that live on the heap (functions, classes,
// instances and external symbols), or the empty string for constants, containers and Unknown.
func Identity(o Object) string {
	switch o.Kind() {
	case FunctionKind, ClassKind, InstanceKind, ExternalFunctionKind, ExternalClassKind, ExternalInstanceKind:
		return o.mergeKey()
	default:
		return ""
	}
}

// TypeName gets the runtime type name of an object as used in container element-type sets.
// Unknown has no type name.
func TypeName(o Object) string {
	switch o := o.(type) {
	case Constant:
		return o.Type.String()
	case Container:
		return o.Type.String()
	case Function:
		return "function"
	case Class:
		return "type"
	case Instance:
		return o.Class
	case ExternalFunction:
		return "function"
	case ExternalClass:
		return "type"
	case ExternalInstance:
		return o.Module + "." + o.Name
	default:
		return ""
	}
}

// TypeNames returns the sorted type names of the objects in v
func TypeNames(v Value) []string {
	var names []string
	for _, o := range v.objs {
		if n := TypeName(o); n != "" {
			names = append(names, n)
		}
	}
	return unionStrings(names, nil)
}

func canonical(objs []Object) []Object {
	sort.SliceStable(objs, func(i, j int) bool {
		return objs[i].mergeKey() < objs[j].mergeKey()
	})
	return objs
}

// unionStrings returns the sorted, deduplicated union of two string slices
func unionStrings(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string(nil), a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Unknown is the absorbing element of the domain. It may carry attributes that were
// merged into it.
type Unknown struct {
	Attrs Attrs
}

// Kind implements Object
func (Unknown) Kind() Kind { return UnknownKind }

// String implements Object
func (u Unknown) String() string {
	if u.Attrs.Len() == 0 {
		return "unknown"
	}
	return "unknown" + u.Attrs.String()
}

func (Unknown) mergeKey() string { return "~unknown" }

func (u Unknown) hash() FlatID { return rehash(saltUnknown, u.Attrs.hash()) }

func (u Unknown) attrs() Attrs { return u.Attrs }

func (u Unknown) withAttrs(a Attrs) Object { return Unknown{Attrs: a} }
