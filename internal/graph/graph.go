// Package graph holds the file dependency graph built in the second pass of
// a run. Nodes keep walk order; every query answers in that order.
package graph

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph is an append-only directed graph over analyzed files. It has a
// single owner and is not safe for concurrent mutation.
type Graph struct {
	nodes []string
	index map[string]int
	out   [][]int
	in    [][]int
	edges map[[2]int]struct{}
	self  []int
}

// New creates a graph with one node per path, in the given order.
// Duplicate paths keep their first position.
func New(paths []string) *Graph {
	g := &Graph{
		index: make(map[string]int, len(paths)),
		edges: make(map[[2]int]struct{}),
	}
	for _, p := range paths {
		if _, ok := g.index[p]; ok {
			continue
		}
		g.index[p] = len(g.nodes)
		g.nodes = append(g.nodes, p)
	}
	g.out = make([][]int, len(g.nodes))
	g.in = make([][]int, len(g.nodes))
	g.self = make([]int, len(g.nodes))
	return g
}

// AddEdge records a reference from one node to another. It returns false when
// either end is not a node, when the edge already exists, or for a self
// reference, which is only counted.
func (g *Graph) AddEdge(from, to string) bool {
	f, ok := g.index[from]
	if !ok {
		return false
	}
	t, ok := g.index[to]
	if !ok {
		return false
	}
	if f == t {
		g.self[f]++
		return false
	}
	key := [2]int{f, t}
	if _, dup := g.edges[key]; dup {
		return false
	}
	g.edges[key] = struct{}{}
	g.out[f] = insertSorted(g.out[f], t)
	g.in[t] = insertSorted(g.in[t], f)
	return true
}

// Has reports whether path is a node
func (g *Graph) Has(path string) bool {
	_, ok := g.index[path]
	return ok
}

// Nodes returns the node paths in walk order
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// Len returns the number of nodes
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges
func (g *Graph) EdgeCount() int { return len(g.edges) }

// FanOut is the number of distinct outgoing edges of path
func (g *Graph) FanOut(path string) int {
	if i, ok := g.index[path]; ok {
		return len(g.out[i])
	}
	return 0
}

// FanIn is the number of distinct incoming edges of path
func (g *Graph) FanIn(path string) int {
	if i, ok := g.index[path]; ok {
		return len(g.in[i])
	}
	return 0
}

// Dependencies lists the nodes path references, in walk order
func (g *Graph) Dependencies(path string) []string {
	if i, ok := g.index[path]; ok {
		return g.names(g.out[i])
	}
	return nil
}

// Dependents lists the nodes referencing path, in walk order
func (g *Graph) Dependents(path string) []string {
	if i, ok := g.index[path]; ok {
		return g.names(g.in[i])
	}
	return nil
}

// SelfReferences counts references from path to itself
func (g *Graph) SelfReferences(path string) int {
	if i, ok := g.index[path]; ok {
		return g.self[i]
	}
	return 0
}

// Orphans returns nodes nothing references, skipping entry points
func (g *Graph) Orphans(isEntry func(string) bool) []string {
	var out []string
	for i, p := range g.nodes {
		if len(g.in[i]) > 0 {
			continue
		}
		if isEntry != nil && isEntry(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (g *Graph) names(ids []int) []string {
	if len(ids) == 0 {
		return []string{}
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id]
	}
	return out
}

// components maps each node to its strongly connected component, or -1 when
// the node sits on no cycle
func (g *Graph) components() []int {
	dg := simple.NewDirectedGraph()
	for i := range g.nodes {
		dg.AddNode(simple.Node(int64(i)))
	}
	for e := range g.edges {
		dg.SetEdge(simple.Edge{F: simple.Node(int64(e[0])), T: simple.Node(int64(e[1]))})
	}

	comp := make([]int, len(g.nodes))
	for i := range comp {
		comp[i] = -1
	}
	for id, scc := range topo.TarjanSCC(dg) {
		if len(scc) < 2 {
			continue
		}
		for _, n := range scc {
			comp[n.ID()] = id
		}
	}
	return comp
}

func insertSorted(list []int, v int) []int {
	i := sort.SearchInts(list, v)
	list = append(list, 0)
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}

// ctxCheckInterval is how many search steps run between context checks
const ctxCheckInterval = 256

func checkContext(ctx context.Context, steps *int) error {
	*steps++
	if *steps%ctxCheckInterval != 0 {
		return nil
	}
	return ctx.Err()
}
