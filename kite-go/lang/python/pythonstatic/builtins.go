package pythonstatic

import (
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
)

type builtinFunc func(a *Analyzer, args []pythontype.Value) pythontype.Value

// builtins are the builtin functions modeled precisely. A program binding one of these names
// shadows the builtin.
var builtins = map[string]builtinFunc{
	"len": func(a *Analyzer, args []pythontype.Value) pythontype.Value {
		if len(args) == 0 {
			return pythontype.UnknownValue()
		}
		return pythontype.Len(args[0])
	},
	"isinstance": isinstance,
	"int": func(a *Analyzer, args []pythontype.Value) pythontype.Value {
		if len(args) == 0 {
			return pythontype.IntValue(0)
		}
		return pythontype.ToInt(args[0])
	},
	"str": func(a *Analyzer, args []pythontype.Value) pythontype.Value {
		if len(args) == 0 {
			return pythontype.StrValue("")
		}
		return pythontype.ToStr(args[0])
	},
	"bool": func(a *Analyzer, args []pythontype.Value) pythontype.Value {
		if len(args) == 0 {
			return pythontype.BoolValue(false)
		}
		return pythontype.ToBool(args[0])
	},
	"list":  containerBuiltin(pythontype.ListType),
	"tuple": containerBuiltin(pythontype.TupleType),
	"set":   containerBuiltin(pythontype.SetType),
	"dict": func(a *Analyzer, args []pythontype.Value) pythontype.Value {
		if len(args) == 0 {
			return pythontype.NewValue(pythontype.NewDict(nil, nil))
		}
		return pythontype.ToDict(args[0])
	},
	"sum": func(a *Analyzer, args []pythontype.Value) pythontype.Value {
		if len(args) == 0 {
			return pythontype.UnknownValue()
		}
		return pythontype.Sum(args[0])
	},
}

func containerBuiltin(t pythontype.ContainerType) builtinFunc {
	return func(a *Analyzer, args []pythontype.Value) pythontype.Value {
		if len(args) == 0 {
			return pythontype.NewValue(pythontype.NewContainer(t, pythontype.Value{}, pythontype.Value{}, 0, 0))
		}
		return pythontype.ToContainer(t, args[0])
	}
}

// isinstance is definite only when every possible object is an instance of an analyzed class
// and every possible class argument is an analyzed class
func isinstance(a *Analyzer, args []pythontype.Value) pythontype.Value {
	if len(args) < 2 || args[0].Empty() {
		return pythontype.AnyBool()
	}

	var classes []string
	for _, o := range args[1].Objects() {
		switch o := o.(type) {
		case pythontype.Class:
			classes = append(classes, o.Name)
		case pythontype.Container:
			for _, cls := range o.Elem.Classes() {
				classes = append(classes, cls.Name)
			}
			if len(o.Elem.Classes()) != o.Elem.Len() {
				return pythontype.AnyBool()
			}
		default:
			return pythontype.AnyBool()
		}
	}

	res := pythontype.Maybe
	for i, o := range args[0].Objects() {
		inst, ok := o.(pythontype.Instance)
		if !ok {
			return pythontype.AnyBool()
		}
		t := pythontype.False
		for _, cls := range classes {
			if a.state.Hierarchy.IsSubclass(inst.Class, cls) {
				t = pythontype.True
				break
			}
		}
		if i > 0 && t != res {
			return pythontype.AnyBool()
		}
		res = t
	}
	return pythontype.BoolValue(res == pythontype.True)
}
