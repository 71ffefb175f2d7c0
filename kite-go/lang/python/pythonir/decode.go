package pythonir

import (
	"fmt"
	"io"
	"io/ioutil"

	"github.com/kiteco/pyabsint/kite-golib/errors"
	yaml "gopkg.in/yaml.v2"
)

type rawProgram struct {
	Scopes []rawScope `yaml:"scopes"`
}

type rawScope struct {
	Name       string    `yaml:"name"`
	Kind       string    `yaml:"kind"`
	Parent     string    `yaml:"parent"`
	Params     []string  `yaml:"params"`
	Bases      []string  `yaml:"bases"`
	Decorators []string  `yaml:"decorators"`
	Async      bool      `yaml:"async"`
	Body       []rawStmt `yaml:"body"`
}

type rawStmt struct {
	Kind     string        `yaml:"kind"`
	Target   string        `yaml:"target"`
	Value    interface{}   `yaml:"value"`
	Object   string        `yaml:"object"`
	Attr     string        `yaml:"attr"`
	Index    string        `yaml:"index"`
	Callee   string        `yaml:"callee"`
	Receiver string        `yaml:"receiver"`
	Args     []string      `yaml:"args"`
	Kwargs   yaml.MapSlice `yaml:"kwargs"`
	Label    string        `yaml:"label"`
	Test     *rawTest      `yaml:"test"`
	Name     string        `yaml:"name"`
	Bases    []string      `yaml:"bases"`
	Names    []string      `yaml:"names"`
	Operands []string      `yaml:"operands"`
	Type     string        `yaml:"type"`
	Elems    []string      `yaml:"elems"`
	Keys     []string      `yaml:"keys"`
}

type rawTest struct {
	Name    string      `yaml:"name"`
	Value   interface{} `yaml:"value"`
	Compare *rawCompare `yaml:"compare"`
}

type rawCompare struct {
	Left  interface{} `yaml:"left"`
	Op    string      `yaml:"op"`
	Right interface{} `yaml:"right"`
}

// DecodeProgram reads a YAML document of the form
//
//   scopes:
//     - name: mod
//       kind: module
//       body:
//         - {kind: const, target: x, value: 42}
//         - {kind: call, target: y, callee: f, args: [x]}
//
// into a Program.
func DecodeProgram(r io.Reader) (*Program, error) {
	buf, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading program")
	}
	var raw rawProgram
	if err := yaml.UnmarshalStrict(buf, &raw); err != nil {
		return nil, errors.Wrapf(err, "error decoding program")
	}

	prog := &Program{}
	for _, rs := range raw.Scopes {
		scope, err := decodeScope(rs)
		if err != nil {
			return nil, err
		}
		prog.Scopes = append(prog.Scopes, scope)
	}
	return prog, nil
}

func decodeScope(rs rawScope) (*Scope, error) {
	if rs.Name == "" {
		return nil, errors.Errorf("scope without a name")
	}
	scope := &Scope{
		Name:       rs.Name,
		Parent:     rs.Parent,
		Params:     rs.Params,
		Bases:      rs.Bases,
		Decorators: rs.Decorators,
		Async:      rs.Async,
	}
	switch rs.Kind {
	case "", "module":
		scope.Kind = ModuleScope
	case "class":
		scope.Kind = ClassScope
	case "function":
		scope.Kind = FunctionScope
	default:
		return nil, errors.Errorf("scope %s: unknown kind %q", rs.Name, rs.Kind)
	}

	for i, raw := range rs.Body {
		stmt, err := decodeStmt(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "scope %s, statement %d", rs.Name, i)
		}
		scope.Body = append(scope.Body, stmt)
	}
	return scope, nil
}

func decodeStmt(r rawStmt) (Stmt, error) {
	switch r.Kind {
	case "assign":
		v, err := nameOf(r.Value)
		return Assign{Target: r.Target, Value: v}, err
	case "const":
		lit, err := literalOf(r.Value)
		return Const{Target: r.Target, Value: lit}, err
	case "build":
		t := ContainerType(r.Type)
		switch t {
		case List, Tuple, Set, Dict:
		default:
			return nil, errors.Errorf("unknown container type %q", r.Type)
		}
		return BuildContainer{Target: r.Target, Type: t, Elems: r.Elems, Keys: r.Keys}, nil
	case "attr_store":
		v, err := nameOf(r.Value)
		return AttrStore{Object: r.Object, Attr: r.Attr, Value: v}, err
	case "attr_load":
		return AttrLoad{Target: r.Target, Object: r.Object, Attr: r.Attr}, nil
	case "subscript_store":
		v, err := nameOf(r.Value)
		return SubscriptStore{Object: r.Object, Index: r.Index, Value: v}, err
	case "subscript_load":
		return SubscriptLoad{Target: r.Target, Object: r.Object, Index: r.Index}, nil
	case "call":
		call := Call{Target: r.Target, Callee: r.Callee, Receiver: r.Receiver, Args: r.Args}
		for _, item := range r.Kwargs {
			v, err := nameOf(item.Value)
			if err != nil {
				return nil, err
			}
			call.Kwargs = append(call.Kwargs, Keyword{Name: fmt.Sprint(item.Key), Value: v})
		}
		if call.Callee == "" {
			return nil, errors.Errorf("call without a callee")
		}
		return call, nil
	case "return":
		v, err := nameOf(r.Value)
		return Return{Value: v}, err
	case "raise":
		v, err := nameOf(r.Value)
		return Raise{Value: v}, err
	case "yield":
		v, err := nameOf(r.Value)
		return Yield{Target: r.Target, Value: v}, err
	case "await":
		v, err := nameOf(r.Value)
		return Await{Target: r.Target, Value: v}, err
	case "jump_if_true", "jump_if_false":
		test, err := testOf(r.Test)
		if err != nil {
			return nil, err
		}
		if r.Label == "" {
			return nil, errors.Errorf("%s without a label", r.Kind)
		}
		if r.Kind == "jump_if_true" {
			return JumpIfTrue{Test: test, Label: r.Label}, nil
		}
		return JumpIfFalse{Test: test, Label: r.Label}, nil
	case "goto":
		return Goto{Label: r.Label}, nil
	case "label":
		return Label{Name: r.Name}, nil
	case "class_def":
		return ClassDef{Target: r.Target, Name: r.Name, Bases: r.Bases}, nil
	case "function_def":
		return FunctionDef{Target: r.Target, Name: r.Name}, nil
	case "delete":
		return Delete{Names: r.Names}, nil
	case "opaque":
		return Opaque{Target: r.Target, Operands: r.Operands}, nil
	default:
		return nil, errors.Errorf("unknown statement kind %q", r.Kind)
	}
}

// nameOf accepts a variable name or nothing
func nameOf(v interface{}) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", errors.Errorf("expected a variable name, got %v (%T)", v, v)
	}
}

// literalOf converts a YAML scalar into a literal
func literalOf(v interface{}) (Literal, error) {
	switch v := v.(type) {
	case nil:
		return None(), nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint64:
		return Int(int64(v)), nil
	case float64:
		return Float(v), nil
	case string:
		return Str(v), nil
	default:
		return Literal{}, errors.Errorf("unsupported literal %v (%T)", v, v)
	}
}

// operandOf converts `x`, `{name: x}`, `{value: 1}` or a non-string scalar into an operand
func operandOf(v interface{}) (Operand, error) {
	switch v := v.(type) {
	case string:
		return Var(v), nil
	case map[interface{}]interface{}:
		if name, ok := v["name"]; ok {
			s, err := nameOf(name)
			return Var(s), err
		}
		lit, err := literalOf(v["value"])
		return Lit(lit), err
	default:
		lit, err := literalOf(v)
		return Lit(lit), err
	}
}

func testOf(r *rawTest) (Test, error) {
	switch {
	case r == nil:
		return Test{}, errors.Errorf("conditional jump without a test")
	case r.Compare != nil:
		left, err := operandOf(r.Compare.Left)
		if err != nil {
			return Test{}, err
		}
		right, err := operandOf(r.Compare.Right)
		if err != nil {
			return Test{}, err
		}
		return Test{Compare: &Comparison{Left: left, Op: r.Compare.Op, Right: right}}, nil
	case r.Name != "":
		return Test{Name: r.Name}, nil
	default:
		lit, err := literalOf(r.Value)
		if err != nil {
			return Test{}, err
		}
		return Test{Literal: &lit}, nil
	}
}
