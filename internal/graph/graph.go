// Package graph computes plugin load orders. It holds all nodes in one
// contiguous slice and references them by integer index; a node's parents
// are the plugins it depends on.
package graph

import "errors"

// ErrCycle is returned when the dependency graph is not acyclic. No
// partial order is produced in that case.
var ErrCycle = errors.New("dependency graph contains a cycle")

type mark uint8

const (
	unvisited mark = iota
	inProgress
	done
)

// Node is one plugin whose dependencies are all satisfied. Parents holds
// the indices of the nodes this node's plugin depends on.
type Node struct {
	Name    string
	Parents []int
}

// Graph is a single-use dependency graph. The visitation marks are mutated
// by TopologicalSort and never reset, so callers must build a fresh Graph
// for every load pass.
type Graph struct {
	nodes []Node
	marks []mark
}

// New builds a graph over the given node slice. Parent indices must be
// valid positions in nodes.
func New(nodes []Node) *Graph {
	return &Graph{nodes: nodes, marks: make([]mark, len(nodes))}
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// TopologicalSort returns the node names ordered so that every node appears
// after all of its parents. Any cycle aborts the whole sort with ErrCycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	order := make([]string, 0, len(g.nodes))
	for i := range g.nodes {
		if g.marks[i] != unvisited {
			continue
		}
		if !g.visit(i, &order) {
			return nil, ErrCycle
		}
	}
	return order, nil
}

// visit walks node i depth-first, emitting parents before the node itself.
// Hitting an in-progress node means a back-edge to an ancestor: a cycle.
func (g *Graph) visit(i int, order *[]string) bool {
	switch g.marks[i] {
	case done:
		return true
	case inProgress:
		return false
	}

	g.marks[i] = inProgress
	for _, p := range g.nodes[i].Parents {
		if !g.visit(p, order) {
			return false
		}
	}
	g.marks[i] = done
	*order = append(*order, g.nodes[i].Name)
	return true
}
