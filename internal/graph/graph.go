// Package graph provides the directed graph used to order injectables before
// they are constructed.
package graph

// edge is a directed connection from a dependee to one of its dependencies.
type edge[N comparable] struct {
	from N
	to   N
}

// Graph is a directed graph with unique nodes and no parallel edges.
// Nodes and successors are kept in insertion order so that traversals are
// deterministic.
type Graph[N comparable] struct {
	nodes      map[N]struct{}
	order      []N
	successors map[N][]N
	edges      map[edge[N]]struct{}
}

// New creates an empty graph.
func New[N comparable]() *Graph[N] {
	return &Graph[N]{
		nodes:      make(map[N]struct{}),
		successors: make(map[N][]N),
		edges:      make(map[edge[N]]struct{}),
	}
}

// TryAddNode adds the node unless it is already part of the graph.
// It reports whether the node was added.
func (g *Graph[N]) TryAddNode(n N) bool {
	if _, ok := g.nodes[n]; ok {
		return false
	}
	g.nodes[n] = struct{}{}
	g.order = append(g.order, n)
	return true
}

// TryAddEdge adds a directed edge from -> to unless an identical edge
// exists. The endpoints do not need to be nodes yet.
func (g *Graph[N]) TryAddEdge(from, to N) bool {
	e := edge[N]{from: from, to: to}
	if _, ok := g.edges[e]; ok {
		return false
	}
	g.edges[e] = struct{}{}
	g.successors[from] = append(g.successors[from], to)
	return true
}

// Contains reports whether n is a node of the graph.
func (g *Graph[N]) Contains(n N) bool {
	_, ok := g.nodes[n]
	return ok
}

// Nodes returns the nodes in insertion order.
func (g *Graph[N]) Nodes() []N {
	out := make([]N, len(g.order))
	copy(out, g.order)
	return out
}

// Successors returns the targets of the out-edges of n.
func (g *Graph[N]) Successors(n N) []N {
	out := make([]N, len(g.successors[n]))
	copy(out, g.successors[n])
	return out
}

// Len returns the number of nodes.
func (g *Graph[N]) Len() int {
	return len(g.order)
}
