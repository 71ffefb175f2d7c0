package pythonir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const branchProgram = `
scopes:
  - name: mod
    body:
      - {kind: const, target: x, value: 42}
      - {kind: const, target: s, value: "hi"}
      - {kind: jump_if_false, test: {compare: {left: x, op: "<", right: 5}}, label: else}
      - {kind: call, target: r, callee: f, args: [x], kwargs: {key: s}}
      - {kind: goto, label: end}
      - {kind: label, name: else}
      - {kind: build, target: l, type: list, elems: [x, s]}
      - {kind: label, name: end}
  - name: mod.f
    kind: function
    parent: mod
    params: [a]
    decorators: [staticmethod]
    body:
      - {kind: return, value: a}
`

func TestDecodeProgram(t *testing.T) {
	prog, err := DecodeProgram(strings.NewReader(branchProgram))
	require.NoError(t, err)
	require.Len(t, prog.Scopes, 2)

	mod := prog.Scope("mod")
	require.NotNil(t, mod)
	assert.Equal(t, ModuleScope, mod.Kind)
	require.Len(t, mod.Body, 8)

	assert.Equal(t, Const{Target: "x", Value: Int(42)}, mod.Body[0])
	assert.Equal(t, Const{Target: "s", Value: Str("hi")}, mod.Body[1])

	jump, ok := mod.Body[2].(JumpIfFalse)
	require.True(t, ok)
	require.NotNil(t, jump.Test.Compare)
	assert.Equal(t, "x", jump.Test.Compare.Left.Name)
	require.NotNil(t, jump.Test.Compare.Right.Literal)
	assert.Equal(t, Int(5), *jump.Test.Compare.Right.Literal)
	assert.Equal(t, []string{"x"}, jump.Uses())

	call, ok := mod.Body[3].(Call)
	require.True(t, ok)
	assert.Equal(t, []Keyword{{Name: "key", Value: "s"}}, call.Kwargs)
	assert.Equal(t, []string{"f", "x", "s"}, call.Uses())
	assert.Equal(t, []string{"r"}, call.Defs())

	build, ok := mod.Body[6].(BuildContainer)
	require.True(t, ok)
	assert.Equal(t, List, build.Type)

	f := prog.Scope("mod.f")
	require.NotNil(t, f)
	assert.Equal(t, FunctionScope, f.Kind)
	assert.True(t, f.HasDecorator("staticmethod"))
	assert.Equal(t, Return{Value: "a"}, f.Body[0])
}

func TestDecodeErrors(t *testing.T) {
	cases := []string{
		"scopes: [{name: m, body: [{kind: teleport}]}]",
		"scopes: [{name: m, body: [{kind: assign, target: x, value: [1]}]}]",
		"scopes: [{name: m, body: [{kind: jump_if_true, label: l}]}]",
		"scopes: [{name: m, body: [{kind: build, type: heap}]}]",
		"scopes: [{name: m, kind: lambda}]",
		"scopes: [{body: []}]",
		"scopes: [{name: m, unknown_field: 1}]",
	}
	for _, c := range cases {
		_, err := DecodeProgram(strings.NewReader(c))
		assert.Error(t, err, c)
	}
}

func TestStmtDefsUsesDels(t *testing.T) {
	cases := []struct {
		stmt             Stmt
		defs, uses, dels []string
	}{
		{Assign{Target: "y", Value: "x"}, []string{"y"}, []string{"x"}, nil},
		{AttrStore{Object: "o", Attr: "a", Value: "v"}, nil, []string{"o", "v"}, nil},
		{SubscriptLoad{Target: "t", Object: "l", Index: "i"}, []string{"t"}, []string{"l", "i"}, nil},
		{Call{Callee: "m", Receiver: "o", Args: []string{"o", "a"}}, nil, []string{"m", "o", "a"}, nil},
		{Delete{Names: []string{"a", "b"}}, nil, nil, []string{"a", "b"}},
		{Return{}, nil, nil, nil},
		{JumpIfTrue{Test: Test{Literal: &Literal{Kind: BoolLiteral, Bool: true}}, Label: "l"}, nil, nil, nil},
	}
	for _, c := range cases {
		assert.Equal(t, c.defs, c.stmt.Defs(), c.stmt.String())
		assert.Equal(t, c.uses, c.stmt.Uses(), c.stmt.String())
		assert.Equal(t, c.dels, c.stmt.Dels(), c.stmt.String())
	}
	assert.True(t, IsControlTransfer(Label{Name: "l"}))
	assert.False(t, IsControlTransfer(Return{}))
}
