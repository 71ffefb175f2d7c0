// Package pythonir defines the normalized statement stream the analysis engine consumes.
// Lowering from source text is done elsewhere; this package only fixes the shape of its output.
//
// Statements form a closed set: every implementation of Stmt lives in this package, so a type
// switch over the kinds below is exhaustive.
package pythonir

import (
	"fmt"
	"strings"
)

// Stmt is a single three-address statement
type Stmt interface {
	// Defs returns the variables the statement assigns
	Defs() []string
	// Uses returns the variables the statement reads
	Uses() []string
	// Dels returns the variables the statement deletes
	Dels() []string
	String() string

	stmt()
}

// Assign is `Target = Value` where Value is a variable name
type Assign struct {
	Target string
	Value  string
}

// Const is `Target = <literal>`
type Const struct {
	Target string
	Value  Literal
}

// ContainerType is the kind of builtin container built by BuildContainer
type ContainerType string

// Container types
const (
	List  ContainerType = "list"
	Tuple ContainerType = "tuple"
	Set   ContainerType = "set"
	Dict  ContainerType = "dict"
)

// BuildContainer is a container display such as `Target = [a, b]` or `Target = {k: v}`.
// For dicts Keys and Elems are parallel.
type BuildContainer struct {
	Target string
	Type   ContainerType
	Elems  []string
	Keys   []string
}

// AttrStore is `Object.Attr = Value`
type AttrStore struct {
	Object string
	Attr   string
	Value  string
}

// AttrLoad is `Target = Object.Attr`
type AttrLoad struct {
	Target string
	Object string
	Attr   string
}

// SubscriptStore is `Object[Index] = Value`; Index may be empty for slices
type SubscriptStore struct {
	Object string
	Index  string
	Value  string
}

// SubscriptLoad is `Target = Object[Index]`
type SubscriptLoad struct {
	Target string
	Object string
	Index  string
}

// Keyword is a keyword argument `Name=Value`
type Keyword struct {
	Name  string
	Value string
}

// Call is `Target = Callee(Args..., Kwargs...)`. Target is empty when the result is discarded.
// Receiver names the object the callee was loaded from for method calls (`Receiver.m(...)`),
// and is empty otherwise.
type Call struct {
	Target   string
	Callee   string
	Receiver string
	Args     []string
	Kwargs   []Keyword
}

// Return is `return Value`; Value is empty for a bare return
type Return struct {
	Value string
}

// Raise is `raise Value`; Value is empty for a bare re-raise
type Raise struct {
	Value string
}

// Yield is `Target = yield Value`
type Yield struct {
	Target string
	Value  string
}

// Await is `Target = await Value`
type Await struct {
	Target string
	Value  string
}

// JumpIfTrue transfers control to Label when Test holds
type JumpIfTrue struct {
	Test  Test
	Label string
}

// JumpIfFalse transfers control to Label when Test does not hold
type JumpIfFalse struct {
	Test  Test
	Label string
}

// Goto unconditionally transfers control to Label
type Goto struct {
	Label string
}

// Label marks a jump target
type Label struct {
	Name string
}

// ClassDef binds Target to the class with qualified name Name. The class body is a separate scope.
type ClassDef struct {
	Target string
	Name   string
	Bases  []string
}

// FunctionDef binds Target to the function with qualified name Name. The body is a separate scope.
type FunctionDef struct {
	Target string
	Name   string
}

// Delete is `del Names...`
type Delete struct {
	Names []string
}

// Opaque is `Target = <expression>` for expressions the engine does not evaluate; Operands
// lists the variables the expression reads.
type Opaque struct {
	Target   string
	Operands []string
}

func (Assign) stmt()         {}
func (Const) stmt()          {}
func (BuildContainer) stmt() {}
func (AttrStore) stmt()      {}
func (AttrLoad) stmt()       {}
func (SubscriptStore) stmt() {}
func (SubscriptLoad) stmt()  {}
func (Call) stmt()           {}
func (Return) stmt()         {}
func (Raise) stmt()          {}
func (Yield) stmt()          {}
func (Await) stmt()          {}
func (JumpIfTrue) stmt()     {}
func (JumpIfFalse) stmt()    {}
func (Goto) stmt()           {}
func (Label) stmt()          {}
func (ClassDef) stmt()       {}
func (FunctionDef) stmt()    {}
func (Delete) stmt()         {}
func (Opaque) stmt()         {}

// names drops empty names and duplicates, keeping the first occurrence
func names(ns ...string) []string {
	var out []string
	seen := make(map[string]bool, len(ns))
	for _, n := range ns {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Defs implements Stmt
func (s Assign) Defs() []string { return names(s.Target) }

// Uses implements Stmt
func (s Assign) Uses() []string { return names(s.Value) }

// Dels implements Stmt
func (Assign) Dels() []string { return nil }

func (s Assign) String() string { return s.Target + " = " + s.Value }

// Defs implements Stmt
func (s Const) Defs() []string { return names(s.Target) }

// Uses implements Stmt
func (Const) Uses() []string { return nil }

// Dels implements Stmt
func (Const) Dels() []string { return nil }

func (s Const) String() string { return s.Target + " = " + s.Value.String() }

// Defs implements Stmt
func (s BuildContainer) Defs() []string { return names(s.Target) }

// Uses implements Stmt
func (s BuildContainer) Uses() []string { return names(append(append([]string{}, s.Keys...), s.Elems...)...) }

// Dels implements Stmt
func (BuildContainer) Dels() []string { return nil }

func (s BuildContainer) String() string {
	if s.Type == Dict {
		var kvs []string
		for i, k := range s.Keys {
			v := ""
			if i < len(s.Elems) {
				v = s.Elems[i]
			}
			kvs = append(kvs, k+": "+v)
		}
		return s.Target + " = {" + strings.Join(kvs, ", ") + "}"
	}
	return fmt.Sprintf("%s = %s(%s)", s.Target, s.Type, strings.Join(s.Elems, ", "))
}

// Defs implements Stmt
func (AttrStore) Defs() []string { return nil }

// Uses implements Stmt
func (s AttrStore) Uses() []string { return names(s.Object, s.Value) }

// Dels implements Stmt
func (AttrStore) Dels() []string { return nil }

func (s AttrStore) String() string { return s.Object + "." + s.Attr + " = " + s.Value }

// Defs implements Stmt
func (s AttrLoad) Defs() []string { return names(s.Target) }

// Uses implements Stmt
func (s AttrLoad) Uses() []string { return names(s.Object) }

// Dels implements Stmt
func (AttrLoad) Dels() []string { return nil }

func (s AttrLoad) String() string { return s.Target + " = " + s.Object + "." + s.Attr }

// Defs implements Stmt
func (SubscriptStore) Defs() []string { return nil }

// Uses implements Stmt
func (s SubscriptStore) Uses() []string { return names(s.Object, s.Index, s.Value) }

// Dels implements Stmt
func (SubscriptStore) Dels() []string { return nil }

func (s SubscriptStore) String() string { return s.Object + "[" + s.Index + "] = " + s.Value }

// Defs implements Stmt
func (s SubscriptLoad) Defs() []string { return names(s.Target) }

// Uses implements Stmt
func (s SubscriptLoad) Uses() []string { return names(s.Object, s.Index) }

// Dels implements Stmt
func (SubscriptLoad) Dels() []string { return nil }

func (s SubscriptLoad) String() string { return s.Target + " = " + s.Object + "[" + s.Index + "]" }

// Defs implements Stmt
func (s Call) Defs() []string { return names(s.Target) }

// Uses implements Stmt
func (s Call) Uses() []string {
	uses := append([]string{s.Callee, s.Receiver}, s.Args...)
	for _, kw := range s.Kwargs {
		uses = append(uses, kw.Value)
	}
	return names(uses...)
}

// Dels implements Stmt
func (Call) Dels() []string { return nil }

func (s Call) String() string {
	args := append([]string{}, s.Args...)
	for _, kw := range s.Kwargs {
		args = append(args, kw.Name+"="+kw.Value)
	}
	call := s.Callee + "(" + strings.Join(args, ", ") + ")"
	if s.Target == "" {
		return call
	}
	return s.Target + " = " + call
}

// Defs implements Stmt
func (Return) Defs() []string { return nil }

// Uses implements Stmt
func (s Return) Uses() []string { return names(s.Value) }

// Dels implements Stmt
func (Return) Dels() []string { return nil }

func (s Return) String() string { return strings.TrimSpace("return " + s.Value) }

// Defs implements Stmt
func (Raise) Defs() []string { return nil }

// Uses implements Stmt
func (s Raise) Uses() []string { return names(s.Value) }

// Dels implements Stmt
func (Raise) Dels() []string { return nil }

func (s Raise) String() string { return strings.TrimSpace("raise " + s.Value) }

// Defs implements Stmt
func (s Yield) Defs() []string { return names(s.Target) }

// Uses implements Stmt
func (s Yield) Uses() []string { return names(s.Value) }

// Dels implements Stmt
func (Yield) Dels() []string { return nil }

func (s Yield) String() string { return s.Target + " = yield " + s.Value }

// Defs implements Stmt
func (s Await) Defs() []string { return names(s.Target) }

// Uses implements Stmt
func (s Await) Uses() []string { return names(s.Value) }

// Dels implements Stmt
func (Await) Dels() []string { return nil }

func (s Await) String() string { return s.Target + " = await " + s.Value }

// Defs implements Stmt
func (JumpIfTrue) Defs() []string { return nil }

// Uses implements Stmt
func (s JumpIfTrue) Uses() []string { return s.Test.Uses() }

// Dels implements Stmt
func (JumpIfTrue) Dels() []string { return nil }

func (s JumpIfTrue) String() string { return "if " + s.Test.String() + " goto " + s.Label }

// Defs implements Stmt
func (JumpIfFalse) Defs() []string { return nil }

// Uses implements Stmt
func (s JumpIfFalse) Uses() []string { return s.Test.Uses() }

// Dels implements Stmt
func (JumpIfFalse) Dels() []string { return nil }

func (s JumpIfFalse) String() string { return "if not " + s.Test.String() + " goto " + s.Label }

// Defs implements Stmt
func (Goto) Defs() []string { return nil }

// Uses implements Stmt
func (Goto) Uses() []string { return nil }

// Dels implements Stmt
func (Goto) Dels() []string { return nil }

func (s Goto) String() string { return "goto " + s.Label }

// Defs implements Stmt
func (Label) Defs() []string { return nil }

// Uses implements Stmt
func (Label) Uses() []string { return nil }

// Dels implements Stmt
func (Label) Dels() []string { return nil }

func (s Label) String() string { return s.Name + ":" }

// Defs implements Stmt
func (s ClassDef) Defs() []string { return names(s.Target) }

// Uses implements Stmt
func (ClassDef) Uses() []string { return nil }

// Dels implements Stmt
func (ClassDef) Dels() []string { return nil }

func (s ClassDef) String() string {
	return "class " + s.Target + "(" + strings.Join(s.Bases, ", ") + ") -> " + s.Name
}

// Defs implements Stmt
func (s FunctionDef) Defs() []string { return names(s.Target) }

// Uses implements Stmt
func (FunctionDef) Uses() []string { return nil }

// Dels implements Stmt
func (FunctionDef) Dels() []string { return nil }

func (s FunctionDef) String() string { return "def " + s.Target + " -> " + s.Name }

// Defs implements Stmt
func (Delete) Defs() []string { return nil }

// Uses implements Stmt
func (Delete) Uses() []string { return nil }

// Dels implements Stmt
func (s Delete) Dels() []string { return names(s.Names...) }

func (s Delete) String() string { return "del " + strings.Join(s.Names, ", ") }

// Defs implements Stmt
func (s Opaque) Defs() []string { return names(s.Target) }

// Uses implements Stmt
func (s Opaque) Uses() []string { return names(s.Operands...) }

// Dels implements Stmt
func (Opaque) Dels() []string { return nil }

func (s Opaque) String() string {
	return s.Target + " = <expr " + strings.Join(s.Operands, ", ") + ">"
}

// IsControlTransfer returns true for statements that choose their own successors
func IsControlTransfer(s Stmt) bool {
	switch s.(type) {
	case JumpIfTrue, JumpIfFalse, Goto, Label:
		return true
	}
	return false
}
