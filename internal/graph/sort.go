package graph

import (
	"errors"
	"fmt"
)

// ErrNodeNotFound is returned when the start node of a sort is not part of
// the graph.
var ErrNodeNotFound = errors.New("node not found in graph")

// CycleError is returned when a node is reached again while it is still on
// the traversal stack.
type CycleError[N comparable] struct {
	// Stack holds the nodes on the traversal stack, outermost first.
	Stack []N
	// Node is the node that was reached twice.
	Node N
}

func (e *CycleError[N]) Error() string {
	return fmt.Sprintf("cycle detected at %v (stack %v)", e.Node, e.Stack)
}

// Path returns the cycle itself: the stack from the first occurrence of the
// repeated node, followed by the node again.
func (e *CycleError[N]) Path() []N {
	start := 0
	for i, n := range e.Stack {
		if n == e.Node {
			start = i
			break
		}
	}
	path := make([]N, 0, len(e.Stack)-start+1)
	path = append(path, e.Stack[start:]...)
	return append(path, e.Node)
}

// DisconnectedError is returned when the traversal from the start node did
// not reach every node of the graph.
type DisconnectedError[N comparable] struct {
	Unvisited []N
}

func (e *DisconnectedError[N]) Error() string {
	return fmt.Sprintf("graph is not connected to its start node: unvisited %v", e.Unvisited)
}

type sorter[N comparable] struct {
	graph   *Graph[N]
	visited map[N]struct{}
	onStack map[N]struct{}
	stack   []N
	sorted  []N
}

// TopologicalSort orders the nodes reachable from start so that every node
// comes after all of its successors. The whole graph must be reachable from
// start.
func TopologicalSort[N comparable](g *Graph[N], start N) ([]N, error) {
	if !g.Contains(start) {
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, start)
	}

	s := &sorter[N]{
		graph:   g,
		visited: make(map[N]struct{}, g.Len()),
		onStack: make(map[N]struct{}),
		sorted:  make([]N, 0, g.Len()),
	}
	if err := s.visit(start); err != nil {
		return nil, err
	}

	if len(s.visited) != g.Len() {
		var unvisited []N
		for _, n := range g.order {
			if _, ok := s.visited[n]; !ok {
				unvisited = append(unvisited, n)
			}
		}
		return nil, &DisconnectedError[N]{Unvisited: unvisited}
	}

	return s.sorted, nil
}

func (s *sorter[N]) visit(n N) error {
	if _, ok := s.visited[n]; ok {
		return nil
	}
	if _, ok := s.onStack[n]; ok {
		stack := make([]N, len(s.stack))
		copy(stack, s.stack)
		return &CycleError[N]{Stack: stack, Node: n}
	}

	s.onStack[n] = struct{}{}
	s.stack = append(s.stack, n)
	for _, next := range s.graph.successors[n] {
		if err := s.visit(next); err != nil {
			return err
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.onStack, n)

	s.visited[n] = struct{}{}
	s.sorted = append(s.sorted, n)
	return nil
}
