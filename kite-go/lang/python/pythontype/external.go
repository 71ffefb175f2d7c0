package pythontype

// ExternalFunction is a function defined outside the analyzed program
type ExternalFunction struct {
	Module string
	Name   string
	Attrs  Attrs
}

// Kind implements Object
func (ExternalFunction) Kind() Kind { return ExternalFunctionKind }

// String implements Object
func (f ExternalFunction) String() string { return "external func " + f.Module + "." + f.Name }

func (f ExternalFunction) mergeKey() string { return "extfunc:" + f.Module + "." + f.Name }

func (f ExternalFunction) hash() FlatID {
	return rehash(rehashStrings(saltExternalFunc, f.Module, f.Name), f.Attrs.hash())
}

func (f ExternalFunction) attrs() Attrs { return f.Attrs }

func (f ExternalFunction) withAttrs(a Attrs) Object {
	f.Attrs = a
	return f
}

// ExternalClass is a class defined outside the analyzed program
type ExternalClass struct {
	Module string
	Name   string
	Attrs  Attrs
}

// Kind implements Object
func (ExternalClass) Kind() Kind { return ExternalClassKind }

// String implements Object
func (c ExternalClass) String() string { return "external class " + c.Module + "." + c.Name }

func (c ExternalClass) mergeKey() string { return "extclass:" + c.Module + "." + c.Name }

func (c ExternalClass) hash() FlatID {
	return rehash(rehashStrings(saltExternalClass, c.Module, c.Name), c.Attrs.hash())
}

func (c ExternalClass) attrs() Attrs { return c.Attrs }

func (c ExternalClass) withAttrs(a Attrs) Object {
	c.Attrs = a
	return c
}

// ExternalInstance is an instance of an external class
type ExternalInstance struct {
	Module string
	Name   string
	Attrs  Attrs
}

// Kind implements Object
func (ExternalInstance) Kind() Kind { return ExternalInstanceKind }

// String implements Object
func (i ExternalInstance) String() string { return "external instance " + i.Module + "." + i.Name }

func (i ExternalInstance) mergeKey() string { return "extinstance:" + i.Module + "." + i.Name }

func (i ExternalInstance) hash() FlatID {
	return rehash(rehashStrings(saltExternalInstance, i.Module, i.Name), i.Attrs.hash())
}

func (i ExternalInstance) attrs() Attrs { return i.Attrs }

func (i ExternalInstance) withAttrs(a Attrs) Object {
	i.Attrs = a
	return i
}
