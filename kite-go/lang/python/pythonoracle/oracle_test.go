package pythonoracle

import (
	"testing"

	"github.com/kiteco/pyabsint/kite-golib/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Printf(format string, v ...interface{}) {
	r.lines = append(r.lines, format)
}

func (r *recordingLogger) Println(v ...interface{}) {}

func TestGuardPassesAnswersThrough(t *testing.T) {
	mock := NewMockOracle()
	site := CallSite{Function: "mod", Index: 3}
	mock.Callees[site] = []FunctionSymbol{{Name: "mod.f"}}
	obj := HeapObject{Site: "mod:1", Type: "mod.C"}
	mock.SetSingleton(FieldTarget(obj, Attribute("x")), true)
	mock.NoAlias[[2]Variable{{"mod", "a"}, {"mod", "b"}}] = true

	g := Guard(mock, nil)
	require.True(t, g.Available())
	assert.Equal(t, []FunctionSymbol{{Name: "mod.f"}}, g.PossibleCallees(site, ""))
	assert.True(t, g.IsSingleton(FieldTarget(obj, Attribute("x")), ""))
	assert.False(t, g.IsSingleton(FieldTarget(obj, Attribute("y")), ""))
	assert.False(t, g.MayAlias(Variable{"mod", "b"}, Variable{"mod", "a"}, ""))
	assert.Equal(t, "mock", g.DigestVersion())
	assert.Nil(t, g.Failures())
}

func TestGuardRecoversErrors(t *testing.T) {
	mock := NewMockOracle()
	mock.Err = errors.New("backend down")
	logger := &recordingLogger{}
	g := Guard(mock, logger)

	assert.Nil(t, g.PossibleCallees(CallSite{}, ""))
	assert.Nil(t, g.PointsTo(Variable{}, ""))
	assert.True(t, g.MayAlias(Variable{}, Variable{}, ""))
	assert.False(t, g.IsSingleton(VariableTarget(Variable{}), ""))
	assert.Equal(t, "", g.DigestVersion())

	require.NotNil(t, g.Failures())
	assert.Equal(t, 5, g.Failures().Len())
	assert.Len(t, logger.lines, 5)
}

func TestGuardRecoversPanics(t *testing.T) {
	mock := NewMockOracle()
	mock.Panic = true
	g := Guard(mock, nil)

	assert.NotPanics(t, func() {
		assert.Nil(t, g.FieldPointsTo(HeapObject{}, Attribute("x")))
		assert.Nil(t, g.CallGraphSuccessors(FunctionSymbol{Name: "f"}))
	})
	require.NotNil(t, g.Failures())
	assert.Contains(t, g.Failures().Error(), "mock oracle panic")
}

func TestGuardWithoutOracle(t *testing.T) {
	g := Guard(nil, nil)
	assert.False(t, g.Available())
	assert.False(t, g.IsSingleton(VariableTarget(Variable{"m", "x"}), ""))
	assert.True(t, g.MayAlias(Variable{}, Variable{}, ""))
	assert.Nil(t, g.Failures())
}

func TestCachingOracle(t *testing.T) {
	mock := NewMockOracle()
	v := Variable{Scope: "mod", Name: "x"}
	mock.Vars[v] = PointsToSet{{Site: "mod:1", Type: "mod.C"}}

	cached, err := NewCachingOracle(mock, 16)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		pts, err := cached.PointsTo(v, "")
		require.NoError(t, err)
		assert.Equal(t, mock.Vars[v], pts)
	}
	assert.Equal(t, 1, mock.Calls["PointsTo"])

	// a new digest invalidates earlier answers
	mock.Digest = "mock-2"
	_, err = cached.PointsTo(v, "")
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Calls["PointsTo"])
}

func TestCachingOracleDoesNotCacheErrors(t *testing.T) {
	mock := NewMockOracle()
	cached, err := NewCachingOracle(mock, 16)
	require.NoError(t, err)

	mock.Err = errors.New("flaky")
	_, err = cached.IsSingleton(VariableTarget(Variable{"m", "x"}), "")
	require.Error(t, err)

	mock.Err = nil
	mock.SetSingleton(VariableTarget(Variable{"m", "x"}), true)
	ok, err := cached.IsSingleton(VariableTarget(Variable{"m", "x"}), "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewCachingOracleInvalidSize(t *testing.T) {
	_, err := NewCachingOracle(NewMockOracle(), 0)
	assert.Error(t, err)
}
