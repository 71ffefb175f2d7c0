package pythonstatic

import (
	"fmt"
	"testing"

	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonir"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonoracle"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonstate"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyabsint/kite-golib/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recursiveProgram() []*pythonir.Scope {
	return []*pythonir.Scope{
		module("m",
			pythonir.FunctionDef{Target: "f", Name: "m.f"},
			pythonir.Const{Target: "n", Value: pythonir.Int(1)},
			pythonir.Call{Target: "out", Callee: "f", Args: []string{"n"}},
		),
		function("m.f", "m", []string{"n"},
			pythonir.Call{Target: "r", Callee: "f", Args: []string{"n"}},
			pythonir.Return{Value: "r"},
		),
	}
}

func TestCall_RecursionTerminates(t *testing.T) {
	policies := []pythonstate.Policy{
		pythonstate.Insensitive,
		pythonstate.CallSiteSensitive,
		pythonstate.ObjectSensitive,
		pythonstate.Hybrid,
		pythonstate.KCFA,
	}
	for _, policy := range policies {
		for _, direct := range []bool{true, false} {
			for _, depth := range []int{1, 3} {
				name := fmt.Sprintf("%s/direct=%t/depth=%d", policy, direct, depth)
				t.Run(name, func(t *testing.T) {
					opts := DefaultOptions
					opts.Context = policy
					opts.DirectCalls = direct
					opts.MaxRecursionDepth = depth
					res := run(t, newAnalyzer(t, opts, nil, recursiveProgram()...))

					assert.True(t, res.Stats.DeepestRecursion <= depth)
					assert.Contains(t, res.CallGraph.CalleeNames("m.f"), "m.f")
					_, ok := res.Lookup("m", "out")
					assert.True(t, ok)
					if direct {
						assert.True(t, res.Stats.RecursionCutoffs > 0)
						assert.False(t, res.Complete())
					} else {
						// edges stop at the memo, not at a cap
						assert.Equal(t, 0, res.Stats.RecursionCutoffs)
						assert.True(t, res.Stats.EdgesSkipped > 0)
					}
				})
			}
		}
	}
}

func TestCall_RecursionDepthReached(t *testing.T) {
	opts := DefaultOptions
	opts.MaxRecursionDepth = 3
	res := run(t, newAnalyzer(t, opts, nil, recursiveProgram()...))

	assert.Equal(t, 3, res.Stats.DeepestRecursion)
	out, ok := res.Lookup("m", "out")
	require.True(t, ok)
	assert.True(t, out.IsUnknown())
}

func TestCall_MethodReceiverContexts(t *testing.T) {
	scopes := []*pythonir.Scope{
		module("m",
			pythonir.ClassDef{Target: "C", Name: "m.C"},
			pythonir.Call{Target: "a", Callee: "C"},
			pythonir.Call{Target: "b", Callee: "C"},
			pythonir.AttrLoad{Target: "ma", Object: "a", Attr: "me"},
			pythonir.Call{Target: "ra", Callee: "ma", Receiver: "a"},
			pythonir.AttrLoad{Target: "mb", Object: "b", Attr: "me"},
			pythonir.Call{Target: "rb", Callee: "mb", Receiver: "b"},
		),
		class("m.C", "m",
			pythonir.FunctionDef{Target: "me", Name: "m.C.me"},
		),
		function("m.C.me", "m.C", []string{"self"},
			pythonir.Return{Value: "self"},
		),
	}

	for _, policy := range []pythonstate.Policy{pythonstate.ObjectSensitive, pythonstate.Hybrid} {
		t.Run(string(policy), func(t *testing.T) {
			opts := DefaultOptions
			opts.Context = policy
			res := run(t, newAnalyzer(t, opts, nil, scopes...))

			assertTypes(t, res, "m", map[string]pythontype.Value{
				"ra": pythontype.NewValue(pythontype.NewInstance("m.C", "m:1")),
				"rb": pythontype.NewValue(pythontype.NewInstance("m.C", "m:2")),
			})
			assert.Len(t, res.Contexts("m.C.me"), 2)
		})
	}
}

func TestCall_OracleCallees(t *testing.T) {
	o := pythonoracle.NewMockOracle()
	o.Callees[pythonoracle.CallSite{Function: "m", Index: 2}] = []pythonoracle.FunctionSymbol{{Name: "m.helper"}}
	o.Callees[pythonoracle.CallSite{Function: "m", Index: 3}] = []pythonoracle.FunctionSymbol{{Name: "builtins.len"}}

	res := run(t, newAnalyzer(t, DefaultOptions, o,
		module("m",
			pythonir.Const{Target: "z", Value: pythonir.Int(0)},
			pythonir.BuildContainer{Target: "l", Type: pythonir.Tuple, Elems: []string{"z"}},
			pythonir.Call{Target: "r", Callee: "dyn"},
			pythonir.Call{Target: "n", Callee: "dyn2", Args: []string{"l"}},
			pythonir.Call{Target: "u", Callee: "dyn3"},
		),
		function("m.helper", "m", nil,
			pythonir.Const{Target: "v", Value: pythonir.Int(3)},
			pythonir.Return{Value: "v"},
		),
	))

	assertTypes(t, res, "m", map[string]pythontype.Value{
		"r": pythontype.IntValue(3),
		"n": pythontype.IntRange(1, 1),
		"u": pythontype.UnknownValue(),
	})
	assert.Equal(t, []string{"m.helper"}, res.CallGraph.CalleeNames("m"))
	assert.Nil(t, res.OracleFailures)
}

func attrProgram(loads ...pythonir.Stmt) []*pythonir.Scope {
	body := []pythonir.Stmt{
		pythonir.ClassDef{Target: "C", Name: "m.C"},
		pythonir.Call{Target: "obj", Callee: "C"},
		pythonir.Const{Target: "a", Value: pythonir.Int(1)},
		pythonir.Const{Target: "b", Value: pythonir.Int(2)},
		pythonir.AttrStore{Object: "obj", Attr: "x", Value: "a"},
		pythonir.AttrStore{Object: "obj", Attr: "x", Value: "b"},
		pythonir.AttrLoad{Target: "y", Object: "obj", Attr: "x"},
	}
	return []*pythonir.Scope{
		module("m", append(body, loads...)...),
		class("m.C", "m"),
	}
}

func TestCall_AttrStoreWeakWithoutOracle(t *testing.T) {
	res := analyze(t, attrProgram()...)

	assertTypes(t, res, "m", map[string]pythontype.Value{
		"y": pythontype.IntValue(1, 2),
	})
}

func TestCall_AttrStoreSingleton(t *testing.T) {
	o := pythonoracle.NewMockOracle()
	obj := pythonoracle.HeapObject{Site: "m:1", Type: "m.C"}
	o.SetSingleton(pythonoracle.FieldTarget(obj, pythonoracle.Attribute("x")), true)

	res := run(t, newAnalyzer(t, DefaultOptions, o, attrProgram()...))

	assertTypes(t, res, "m", map[string]pythontype.Value{
		"y": pythontype.IntValue(2),
	})
	assert.True(t, o.Calls["IsSingleton"] > 0)
}

func TestCall_OracleFieldPointsTo(t *testing.T) {
	o := pythonoracle.NewMockOracle()
	obj := pythonoracle.HeapObject{Site: "m:1", Type: "m.C"}
	o.SetField(obj, pythonoracle.Attribute("peer"), pythonoracle.PointsToSet{
		{Site: "m:9", Type: "m.C"},
		{Site: "ext.Thing", Type: "type"},
	})

	res := run(t, newAnalyzer(t, DefaultOptions, o, attrProgram(
		pythonir.AttrLoad{Target: "p", Object: "obj", Attr: "peer"},
	)...))

	assertTypes(t, res, "m", map[string]pythontype.Value{
		"y": pythontype.IntValue(1, 2),
		"p": pythontype.NewValue(
			pythontype.NewInstance("m.C", "m:9"),
			pythontype.ExternalClass{Module: "ext", Name: "Thing"},
		),
	})
}

func TestCall_OracleFailuresAreRecovered(t *testing.T) {
	tcs := []struct {
		name   string
		oracle func() *pythonoracle.MockOracle
	}{
		{"errors", func() *pythonoracle.MockOracle {
			o := pythonoracle.NewMockOracle()
			o.Err = errors.New("backend down")
			return o
		}},
		{"panics", func() *pythonoracle.MockOracle {
			o := pythonoracle.NewMockOracle()
			o.Panic = true
			return o
		}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions
			opts.OracleCacheSize = 0
			res := run(t, newAnalyzer(t, opts, tc.oracle(), attrProgram(
				pythonir.Call{Target: "u", Callee: "dyn"},
			)...))

			assertTypes(t, res, "m", map[string]pythontype.Value{
				"y": pythontype.IntValue(1, 2),
				"u": pythontype.UnknownValue(),
			})
			require.NotNil(t, res.OracleFailures)
			assert.True(t, res.OracleFailures.Len() > 0)
		})
	}
}

func TestCall_FlowInsensitiveAsksOracleForSingletons(t *testing.T) {
	o := pythonoracle.NewMockOracle()
	o.SetSingleton(pythonoracle.VariableTarget(pythonoracle.Variable{Scope: "m", Name: "x"}), true)

	opts := DefaultOptions
	opts.FlowSensitive = false
	res := run(t, newAnalyzer(t, opts, o, module("m",
		pythonir.Const{Target: "x", Value: pythonir.Int(1)},
		pythonir.Assign{Target: "y", Value: "x"},
	)))

	assertTypes(t, res, "m", map[string]pythontype.Value{
		"x": pythontype.IntValue(1),
		"y": pythontype.IntValue(1),
	})
	assert.True(t, o.Calls["IsSingleton"] > 0)
}

func TestCall_AttrStoreThroughEnclosingScope(t *testing.T) {
	res := analyze(t,
		module("m",
			pythonir.ClassDef{Target: "C", Name: "m.C"},
			pythonir.Call{Target: "o", Callee: "C"},
			pythonir.Const{Target: "a", Value: pythonir.Int(1)},
			pythonir.AttrStore{Object: "o", Attr: "x", Value: "a"},
			pythonir.FunctionDef{Target: "f", Name: "m.f"},
			pythonir.Call{Callee: "f"},
			pythonir.AttrLoad{Target: "y", Object: "o", Attr: "x"},
		),
		class("m.C", "m"),
		function("m.f", "m", nil,
			pythonir.Const{Target: "b", Value: pythonir.Int(2)},
			pythonir.AttrStore{Object: "o", Attr: "x", Value: "b"},
		),
	)

	assertTypes(t, res, "m", map[string]pythontype.Value{
		"y": pythontype.IntValue(1, 2),
	})
	for _, c := range res.Contexts("m.f") {
		_, ok := res.LookupIn("m.f", c, "o")
		assert.False(t, ok, "o was copied into m.f under %v", c)
	}
}

func TestCall_SubscriptStoreThroughEnclosingScope(t *testing.T) {
	res := analyze(t,
		module("m",
			pythonir.BuildContainer{Target: "xs", Type: pythonir.List},
			pythonir.FunctionDef{Target: "f", Name: "m.f"},
			pythonir.Call{Callee: "f"},
			pythonir.Call{Target: "n", Callee: "len", Args: []string{"xs"}},
			pythonir.Const{Target: "z", Value: pythonir.Int(0)},
			pythonir.SubscriptLoad{Target: "e", Object: "xs", Index: "z"},
		),
		function("m.f", "m", nil,
			pythonir.Const{Target: "i", Value: pythonir.Int(0)},
			pythonir.Const{Target: "v", Value: pythonir.Int(7)},
			pythonir.SubscriptStore{Object: "xs", Index: "i", Value: "v"},
		),
	)

	assertTypes(t, res, "m", map[string]pythontype.Value{
		"n": pythontype.IntRange(1, 1),
		"e": pythontype.IntValue(7),
	})
}

func TestCall_SubscriptStoreThroughParameter(t *testing.T) {
	res := analyze(t,
		module("m",
			pythonir.BuildContainer{Target: "xs", Type: pythonir.List},
			pythonir.FunctionDef{Target: "g", Name: "m.g"},
			pythonir.Call{Callee: "g", Args: []string{"xs"}},
			pythonir.Call{Target: "n", Callee: "len", Args: []string{"xs"}},
			pythonir.Const{Target: "z", Value: pythonir.Int(0)},
			pythonir.SubscriptLoad{Target: "e", Object: "xs", Index: "z"},
		),
		function("m.g", "m", []string{"p"},
			pythonir.Const{Target: "i", Value: pythonir.Int(0)},
			pythonir.Const{Target: "v", Value: pythonir.Int(7)},
			pythonir.SubscriptStore{Object: "p", Index: "i", Value: "v"},
		),
	)

	assertTypes(t, res, "m", map[string]pythontype.Value{
		"n": pythontype.IntRange(0, 1),
		"e": pythontype.IntValue(7),
	})
}
