package pythonstate

import (
	"fmt"
	"sort"

	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonir"
)

// Edge is one call-graph edge: a call statement in Caller that may invoke Callee
type Edge struct {
	Caller        string
	Callee        string
	Stmt          pythonir.Stmt
	Index         int
	CallerContext Context
	CalleeContext Context
}

// CallSite returns the identifier of the call statement, used for context derivation
func (e Edge) CallSite() string {
	return CallSiteID(e.Caller, e.Index)
}

func (e Edge) String() string {
	return fmt.Sprintf("%s:%d%s -> %s%s", e.Caller, e.Index, e.CallerContext, e.Callee, e.CalleeContext)
}

// CallSiteID identifies the statement at index idx of fn
func CallSiteID(fn string, idx int) string {
	return fmt.Sprintf("%s:%d", fn, idx)
}

type edgeKey struct {
	caller, callee       string
	index                int
	callerCtx, calleeCtx string
}

func (e Edge) key() edgeKey {
	return edgeKey{e.Caller, e.Callee, e.Index, e.CallerContext.Key(), e.CalleeContext.Key()}
}

// CallGraph is the set of call edges discovered during analysis, in discovery order
type CallGraph struct {
	edges    []Edge
	seen     map[edgeKey]int
	byCaller map[string][]int
	byCallee map[string][]int
}

// NewCallGraph returns an empty call graph
func NewCallGraph() *CallGraph {
	return &CallGraph{
		seen:     make(map[edgeKey]int),
		byCaller: make(map[string][]int),
		byCallee: make(map[string][]int),
	}
}

// Add records an edge and returns true if it was not known before
func (g *CallGraph) Add(e Edge) bool {
	k := e.key()
	if _, ok := g.seen[k]; ok {
		return false
	}
	i := len(g.edges)
	g.edges = append(g.edges, e)
	g.seen[k] = i
	g.byCaller[e.Caller] = append(g.byCaller[e.Caller], i)
	g.byCallee[e.Callee] = append(g.byCallee[e.Callee], i)
	return true
}

// Len returns the number of edges
func (g *CallGraph) Len() int {
	return len(g.edges)
}

// Edges returns all edges in discovery order
func (g *CallGraph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Callers returns the edges into callee under any context
func (g *CallGraph) Callers(callee string) []Edge {
	return g.collect(g.byCallee[callee], nil)
}

// CallersIn returns the edges into callee whose callee context is ctx
func (g *CallGraph) CallersIn(callee string, ctx Context) []Edge {
	return g.collect(g.byCallee[callee], func(e Edge) bool { return e.CalleeContext.Equal(ctx) })
}

// Callees returns the edges out of caller under any context
func (g *CallGraph) Callees(caller string) []Edge {
	return g.collect(g.byCaller[caller], nil)
}

// CalleesIn returns the edges out of caller whose caller context is ctx
func (g *CallGraph) CalleesIn(caller string, ctx Context) []Edge {
	return g.collect(g.byCaller[caller], func(e Edge) bool { return e.CallerContext.Equal(ctx) })
}

// CalleeNames returns the sorted names of the functions caller may invoke, ignoring contexts
func (g *CallGraph) CalleeNames(caller string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, i := range g.byCaller[caller] {
		if n := g.edges[i].Callee; !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

func (g *CallGraph) collect(idxs []int, keep func(Edge) bool) []Edge {
	var out []Edge
	for _, i := range idxs {
		if keep == nil || keep(g.edges[i]) {
			out = append(out, g.edges[i])
		}
	}
	return out
}
