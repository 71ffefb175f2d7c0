package pythonstate

import (
	"sort"

	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonir"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyabsint/kite-golib/collections"
)

// Graph is the statement-level control-flow graph of one scope body
type Graph struct {
	Function string
	Len      int
	Succs    map[int][]int
	Preds    map[int][]int
	Labels   map[string]int
}

// BuildGraph computes the control-flow graph of a statement stream. Every statement falls
// through to the next one, except that a goto transfers only to its label and a conditional
// jump may additionally transfer to its label. Jumps to unknown labels have no target.
func BuildGraph(fn string, body []pythonir.Stmt) *Graph {
	g := &Graph{
		Function: fn,
		Len:      len(body),
		Succs:    make(map[int][]int),
		Preds:    make(map[int][]int),
		Labels:   make(map[string]int),
	}
	for i, s := range body {
		if l, ok := s.(pythonir.Label); ok {
			g.Labels[l.Name] = i
		}
	}

	for i, s := range body {
		switch s := s.(type) {
		case pythonir.Goto:
			g.addLabelEdge(i, s.Label)
		case pythonir.JumpIfTrue:
			g.addEdge(i, i+1)
			g.addLabelEdge(i, s.Label)
		case pythonir.JumpIfFalse:
			g.addEdge(i, i+1)
			g.addLabelEdge(i, s.Label)
		default:
			g.addEdge(i, i+1)
		}
	}
	return g
}

func (g *Graph) addLabelEdge(from int, label string) {
	if to, ok := g.Labels[label]; ok {
		g.addEdge(from, to)
	}
}

func (g *Graph) addEdge(from, to int) {
	if to < 0 || to >= g.Len {
		return
	}
	for _, s := range g.Succs[from] {
		if s == to {
			return
		}
	}
	g.Succs[from] = append(g.Succs[from], to)
	g.Preds[to] = append(g.Preds[to], from)
}

// IsMergePoint returns true if idx has more than one predecessor
func (g *Graph) IsMergePoint(idx int) bool {
	return len(g.Preds[idx]) > 1
}

// Label returns the index of the named label
func (g *Graph) Label(name string) (int, bool) {
	idx, ok := g.Labels[name]
	return idx, ok
}

// WorkItem is one pending statement on the control-flow worklist
type WorkItem struct {
	Function string
	Index    int
}

// Snapshot maps variable names to values at a program point
type Snapshot map[string]pythontype.Value

// Merge returns the variable-wise union of two snapshots
func (s Snapshot) Merge(t Snapshot) Snapshot {
	out := make(Snapshot, len(s)+len(t))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range t {
		out[k] = pythontype.Merge(out[k], v)
	}
	return out
}

// Equal returns true if both snapshots bind the same names to equal values
func (s Snapshot) Equal(t Snapshot) bool {
	if len(s) != len(t) {
		return false
	}
	for k, v := range s {
		w, ok := t[k]
		if !ok || !pythontype.Equal(v, w) {
			return false
		}
	}
	return true
}

// Names returns the sorted variable names of the snapshot
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type pointKey struct {
	fn    string
	ctx   string
	index int
}

// ControlFlow tracks per-function control-flow graphs, the statement worklist, visit counts
// and the snapshots saved for merge points. The worklist is a FIFO in which a pending item is
// scheduled at most once. Nested analyses of callees push a fresh worklist segment so that the
// caller's pending statements are resumed once the callee is done.
type ControlFlow struct {
	graphs    map[string]*Graph
	segments  []collections.OrderedMap
	visits    map[pointKey]int
	snapshots map[pointKey]Snapshot

	// Current is the statement being interpreted
	Current WorkItem
}

// NewControlFlow returns a tracker with an empty worklist
func NewControlFlow() *ControlFlow {
	return &ControlFlow{
		graphs:    make(map[string]*Graph),
		segments:  []collections.OrderedMap{collections.NewOrderedMap(16)},
		visits:    make(map[pointKey]int),
		snapshots: make(map[pointKey]Snapshot),
	}
}

// Build computes and stores the graph for a function body, replacing any previous one
func (c *ControlFlow) Build(fn string, body []pythonir.Stmt) *Graph {
	g := BuildGraph(fn, body)
	c.graphs[fn] = g
	return g
}

// Graph returns the graph of a function, or nil if it was not built
func (c *ControlFlow) Graph(fn string) *Graph {
	return c.graphs[fn]
}

func (c *ControlFlow) queue() collections.OrderedMap {
	return c.segments[len(c.segments)-1]
}

// Enqueue schedules a statement and returns false if it was already pending or out of range
func (c *ControlFlow) Enqueue(fn string, idx int) bool {
	g := c.graphs[fn]
	if g == nil || idx < 0 || idx >= g.Len {
		return false
	}
	return c.queue().Set(WorkItem{Function: fn, Index: idx}, struct{}{})
}

// EnqueueSuccessors schedules every successor of idx
func (c *ControlFlow) EnqueueSuccessors(fn string, idx int) {
	g := c.graphs[fn]
	if g == nil {
		return
	}
	for _, s := range g.Succs[idx] {
		c.Enqueue(fn, s)
	}
}

// Dequeue removes the oldest pending statement of the innermost segment
func (c *ControlFlow) Dequeue() (WorkItem, bool) {
	k, _, ok := c.queue().PopOldest()
	if !ok {
		return WorkItem{}, false
	}
	item := k.(WorkItem)
	c.Current = item
	return item, true
}

// Pending returns the number of statements pending in the innermost segment
func (c *ControlFlow) Pending() int {
	return c.queue().Len()
}

// Clear drops every statement pending in the innermost segment
func (c *ControlFlow) Clear() {
	c.segments[len(c.segments)-1] = collections.NewOrderedMap(16)
}

// PushSegment starts a nested worklist segment
func (c *ControlFlow) PushSegment() {
	c.segments = append(c.segments, collections.NewOrderedMap(16))
}

// PopSegment discards the innermost segment and restores the cursor to cur
func (c *ControlFlow) PopSegment(cur WorkItem) {
	if len(c.segments) == 1 {
		panic("pop of the outermost worklist segment")
	}
	c.segments = c.segments[:len(c.segments)-1]
	c.Current = cur
}

// Depth returns the number of nested segments
func (c *ControlFlow) Depth() int {
	return len(c.segments)
}

// Visit increments the visit count of a statement under a context and returns the count
// before the increment
func (c *ControlFlow) Visit(fn string, ctx Context, idx int) int {
	k := pointKey{fn, ctx.Key(), idx}
	n := c.visits[k]
	c.visits[k] = n + 1
	return n
}

// Visits returns how many times a statement was interpreted under a context
func (c *ControlFlow) Visits(fn string, ctx Context, idx int) int {
	return c.visits[pointKey{fn, ctx.Key(), idx}]
}

// SaveSnapshot merges snap into the snapshot stored for a merge point
func (c *ControlFlow) SaveSnapshot(fn string, ctx Context, idx int, snap Snapshot) {
	k := pointKey{fn, ctx.Key(), idx}
	if prev, ok := c.snapshots[k]; ok {
		snap = prev.Merge(snap)
	}
	c.snapshots[k] = snap
}

// SetSnapshot replaces the snapshot stored for a merge point
func (c *ControlFlow) SetSnapshot(fn string, ctx Context, idx int, snap Snapshot) {
	c.snapshots[pointKey{fn, ctx.Key(), idx}] = snap
}

// Snapshot returns the snapshot stored for a merge point
func (c *ControlFlow) Snapshot(fn string, ctx Context, idx int) (Snapshot, bool) {
	s, ok := c.snapshots[pointKey{fn, ctx.Key(), idx}]
	return s, ok
}

// MergePointsFrom returns the merge points reachable from the successors of idx, found by a
// depth-first walk that does not continue past statements already visited under ctx.
func (c *ControlFlow) MergePointsFrom(fn string, ctx Context, idx int) []int {
	g := c.graphs[fn]
	if g == nil {
		return nil
	}
	seen := map[int]bool{idx: true}
	var out []int
	var stack []int
	for i := len(g.Succs[idx]) - 1; i >= 0; i-- {
		stack = append(stack, g.Succs[idx][i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		if g.IsMergePoint(n) {
			out = append(out, n)
		}
		if c.Visits(fn, ctx, n) > 0 {
			continue
		}
		succs := g.Succs[n]
		for i := len(succs) - 1; i >= 0; i-- {
			stack = append(stack, succs[i])
		}
	}
	sort.Ints(out)
	return out
}
