package pythontype

import (
	"sort"
	"strings"
)

// MethodBinding describes how a function defined in a class body binds its receiver
type MethodBinding int

const (
	// PlainFunction is a function that is not a method
	PlainFunction MethodBinding = iota
	// InstanceMethod binds the receiving instance to the first parameter
	InstanceMethod
	// StaticMethod binds nothing
	StaticMethod
	// ClassMethod binds the receiving class to the first parameter
	ClassMethod
)

// String returns the decorator-style name of the binding
func (b MethodBinding) String() string {
	switch b {
	case InstanceMethod:
		return "method"
	case StaticMethod:
		return "staticmethod"
	case ClassMethod:
		return "classmethod"
	default:
		return "function"
	}
}

// PropertyFlags marks functions used as property accessors
type PropertyFlags int

const (
	// PropertyGetter marks a @property getter
	PropertyGetter PropertyFlags = 1 << iota
	// PropertySetter marks a @x.setter
	PropertySetter
)

// Function is a function defined in the analyzed program, identified by its qualified name
type Function struct {
	Name     string
	Params   []string
	Async    bool
	Binding  MethodBinding
	Property PropertyFlags
	Attrs    Attrs
}

// NewFunction returns a plain function object
func NewFunction(name string, params ...string) Function {
	return Function{Name: name, Params: params}
}

// Kind implements Object
func (Function) Kind() Kind { return FunctionKind }

// String implements Object
func (f Function) String() string {
	var flags []string
	if f.Async {
		flags = append(flags, "async")
	}
	if f.Binding != PlainFunction {
		flags = append(flags, f.Binding.String())
	}
	if f.Property&PropertyGetter != 0 {
		flags = append(flags, "getter")
	}
	if f.Property&PropertySetter != 0 {
		flags = append(flags, "setter")
	}
	prefix := "func "
	if len(flags) > 0 {
		prefix = strings.Join(flags, " ") + " " + prefix
	}
	return prefix + f.Name + "(" + strings.Join(f.Params, ", ") + ")"
}

func (f Function) mergeKey() string { return "func:" + f.Name }

func (f Function) hash() FlatID {
	h := rehashStrings(saltFunc, f.Name)
	h = rehashStrings(h, f.Params...)
	h = rehash(h, hashBool(f.Async), FlatID(f.Binding), FlatID(f.Property))
	return rehash(h, f.Attrs.hash())
}

func (f Function) attrs() Attrs { return f.Attrs }

func (f Function) withAttrs(a Attrs) Object {
	f.Attrs = a
	return f
}

func (f Function) merge(g Function) Function {
	params := f.Params
	if len(g.Params) > len(params) || (len(g.Params) == len(params) && strings.Join(g.Params, ",") < strings.Join(params, ",")) {
		params = g.Params
	}
	return Function{
		Name:     f.Name,
		Params:   params,
		Async:    f.Async || g.Async,
		Binding:  maxBinding(f.Binding, g.Binding),
		Property: f.Property | g.Property,
		Attrs:    f.Attrs.Merge(g.Attrs),
	}
}

func maxBinding(a, b MethodBinding) MethodBinding {
	if a > b {
		return a
	}
	return b
}

// Class is a class defined in the analyzed program
type Class struct {
	Name    string
	Bases   []string
	Methods Attrs
	Attrs   Attrs
}

// NewClass returns a class object with the given bases and no members
func NewClass(name string, bases ...string) Class {
	return Class{Name: name, Bases: bases}
}

// WithMethod returns a copy of the class with the given method
func (c Class) WithMethod(name string, f Value) Class {
	c.Methods = c.Methods.With(name, f)
	return c
}

// Kind implements Object
func (Class) Kind() Kind { return ClassKind }

// String implements Object
func (c Class) String() string {
	if len(c.Bases) == 0 {
		return "class " + c.Name
	}
	return "class " + c.Name + "(" + strings.Join(c.Bases, ", ") + ")"
}

func (c Class) mergeKey() string { return "class:" + c.Name }

func (c Class) hash() FlatID {
	h := rehashStrings(saltClass, c.Name)
	h = rehashStrings(h, c.Bases...)
	return rehash(h, c.Methods.hash(), c.Attrs.hash())
}

func (c Class) attrs() Attrs { return c.Attrs }

func (c Class) withAttrs(a Attrs) Object {
	c.Attrs = a
	return c
}

// merge keeps the bases when both sides declare the same list, otherwise it takes their sorted
// union so that the result does not depend on the operand order
func (c Class) merge(d Class) Class {
	bases := c.Bases
	if strings.Join(c.Bases, ",") != strings.Join(d.Bases, ",") {
		bases = append([]string(nil), c.Bases...)
		for _, b := range d.Bases {
			if !containsString(bases, b) {
				bases = append(bases, b)
			}
		}
		sort.Strings(bases)
	}
	return Class{
		Name:    c.Name,
		Bases:   bases,
		Methods: c.Methods.Merge(d.Methods),
		Attrs:   c.Attrs.Merge(d.Attrs),
	}
}

// Instance is an instance of a class defined in the analyzed program. Site identifies the
// allocation site, so instances of one class created at different sites stay distinct.
type Instance struct {
	Class string
	Site  string
	Attrs Attrs
}

// NewInstance returns an instance of the given class allocated at site
func NewInstance(class, site string) Instance {
	return Instance{Class: class, Site: site}
}

// Kind implements Object
func (Instance) Kind() Kind { return InstanceKind }

// String implements Object
func (i Instance) String() string {
	s := "instance " + i.Class
	if i.Site != "" {
		s += "@" + i.Site
	}
	if i.Attrs.Len() > 0 {
		s += i.Attrs.String()
	}
	return s
}

func (i Instance) mergeKey() string { return "instance:" + i.Class + "@" + i.Site }

func (i Instance) hash() FlatID {
	return rehash(rehashStrings(saltInstance, i.Class, i.Site), i.Attrs.hash())
}

func (i Instance) attrs() Attrs { return i.Attrs }

func (i Instance) withAttrs(a Attrs) Object {
	i.Attrs = a
	return i
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
