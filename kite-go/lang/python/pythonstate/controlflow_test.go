package pythonstate

import (
	"testing"

	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonir"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// if c: r = 20 else: r = 10
func ifElseBody() []pythonir.Stmt {
	return []pythonir.Stmt{
		pythonir.JumpIfFalse{Test: pythonir.Test{Name: "c"}, Label: "else"}, // 0
		pythonir.Const{Target: "r", Value: pythonir.Int(20)},                 // 1
		pythonir.Goto{Label: "end"},                                          // 2
		pythonir.Label{Name: "else"},                                         // 3
		pythonir.Const{Target: "r", Value: pythonir.Int(10)},                 // 4
		pythonir.Label{Name: "end"},                                          // 5
		pythonir.Return{Value: "r"},                                          // 6
	}
}

func TestBuildGraph(t *testing.T) {
	g := BuildGraph("f", ifElseBody())

	assert.Equal(t, 7, g.Len)
	assert.Equal(t, []int{1, 3}, g.Succs[0])
	assert.Equal(t, []int{5}, g.Succs[2])
	assert.Equal(t, []int{4}, g.Succs[3])
	assert.ElementsMatch(t, []int{2, 4}, g.Preds[5])
	assert.Empty(t, g.Succs[6])

	assert.True(t, g.IsMergePoint(5))
	assert.False(t, g.IsMergePoint(3))

	idx, ok := g.Label("end")
	require.True(t, ok)
	assert.Equal(t, 5, idx)
}

func TestBuildGraphUnknownLabel(t *testing.T) {
	g := BuildGraph("f", []pythonir.Stmt{
		pythonir.Goto{Label: "nowhere"},
		pythonir.Return{},
	})
	assert.Empty(t, g.Succs[0])
	assert.Empty(t, g.Preds[1])
}

func TestWorklistFIFO(t *testing.T) {
	c := NewControlFlow()
	c.Build("f", ifElseBody())

	assert.True(t, c.Enqueue("f", 3))
	assert.True(t, c.Enqueue("f", 1))
	assert.False(t, c.Enqueue("f", 3), "already scheduled")
	assert.False(t, c.Enqueue("f", 7), "out of range")
	assert.False(t, c.Enqueue("g", 0), "no graph")
	assert.Equal(t, 2, c.Pending())

	item, ok := c.Dequeue()
	require.True(t, ok)
	assert.Equal(t, WorkItem{"f", 3}, item)
	assert.Equal(t, item, c.Current)

	item, _ = c.Dequeue()
	assert.Equal(t, 1, item.Index)
	_, ok = c.Dequeue()
	assert.False(t, ok)
}

func TestWorklistSegments(t *testing.T) {
	c := NewControlFlow()
	c.Build("f", ifElseBody())
	c.Build("g", []pythonir.Stmt{pythonir.Return{}})

	c.Enqueue("f", 1)
	c.Enqueue("f", 2)
	c.Dequeue()
	cur := c.Current

	c.PushSegment()
	assert.Equal(t, 2, c.Depth())
	assert.Equal(t, 0, c.Pending())
	c.Enqueue("g", 0)
	item, _ := c.Dequeue()
	assert.Equal(t, "g", item.Function)

	c.PopSegment(cur)
	assert.Equal(t, cur, c.Current)
	item, ok := c.Dequeue()
	require.True(t, ok)
	assert.Equal(t, WorkItem{"f", 2}, item)

	assert.Panics(t, func() { c.PopSegment(cur) })
}

func TestVisitsAreCountedPerContext(t *testing.T) {
	c := NewControlFlow()
	ctx := RootContext().Derive(CallSiteSensitive, 1, "m:1", "")

	assert.Equal(t, 0, c.Visit("f", RootContext(), 1))
	assert.Equal(t, 1, c.Visit("f", RootContext(), 1))
	assert.Equal(t, 0, c.Visit("f", ctx, 1))
	assert.Equal(t, 2, c.Visits("f", RootContext(), 1))
}

func TestSnapshots(t *testing.T) {
	c := NewControlFlow()
	root := RootContext()

	c.SaveSnapshot("f", root, 5, Snapshot{"r": pythontype.IntValue(20)})
	c.SaveSnapshot("f", root, 5, Snapshot{"r": pythontype.IntValue(10), "s": pythontype.AnyStr()})

	snap, ok := c.Snapshot("f", root, 5)
	require.True(t, ok)
	assert.True(t, pythontype.Equal(pythontype.IntValue(10, 20), snap["r"]))
	assert.Equal(t, []string{"r", "s"}, snap.Names())

	c.SetSnapshot("f", root, 5, Snapshot{})
	snap, _ = c.Snapshot("f", root, 5)
	assert.Empty(t, snap)

	_, ok = c.Snapshot("f", root, 6)
	assert.False(t, ok)
}

func TestMergePointsFrom(t *testing.T) {
	c := NewControlFlow()
	c.Build("f", ifElseBody())
	root := RootContext()

	assert.Equal(t, []int{5}, c.MergePointsFrom("f", root, 0))

	// a loop: the back edge makes the header a merge point
	c.Build("loop", []pythonir.Stmt{
		pythonir.Opaque{Target: "i"},                                        // 0
		pythonir.Label{Name: "head"},                                        // 1
		pythonir.JumpIfFalse{Test: pythonir.Test{Name: "c"}, Label: "done"}, // 2
		pythonir.Opaque{Target: "x"},                                        // 3
		pythonir.Goto{Label: "head"},                                        // 4
		pythonir.Label{Name: "done"},                                        // 5
	})
	assert.Equal(t, []int{1}, c.MergePointsFrom("loop", root, 2))

	c.Visit("loop", root, 3)
	assert.Empty(t, c.MergePointsFrom("loop", root, 2))
}
