package sema

import "github.com/dotnet/roslyn-sub221/internal/symbols"

// constraintGraph has an edge i→j for "where Ti : Tj" between type
// parameters of one declaration.
type constraintGraph struct {
	edges [][]int
}

func newConstraintGraph(d *symbols.Symbol) constraintGraph {
	g := constraintGraph{edges: make([][]int, len(d.TypeParams))}
	for i, tp := range d.TypeParams {
		for _, r := range tp.Constraints.TypeParams {
			if r.Kind == symbols.RefTypeParam && r.Symbol == d.ID && r.Ordinal >= 0 && r.Ordinal < len(d.TypeParams) {
				g.edges[i] = append(g.edges[i], r.Ordinal)
			}
		}
	}
	return g
}

const (
	white uint8 = iota
	gray
	black
)

type dfsFrame struct {
	node int
	next int
}

// closingPredecessor runs an iterative DFS from s and returns the node whose
// edge leads back into s, or -1 when s is not on a cycle.
func (g constraintGraph) closingPredecessor(s int) int {
	color := make([]uint8, len(g.edges))
	color[s] = gray
	stack := []dfsFrame{{node: s}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(g.edges[top.node]) {
			to := g.edges[top.node][top.next]
			top.next++
			if to == s {
				return top.node
			}
			if color[to] == white {
				color[to] = gray
				stack = append(stack, dfsFrame{node: to})
			}
			continue
		}
		color[top.node] = black
		stack = stack[:len(stack)-1]
	}
	return -1
}

// reachable marks every node reachable from s by at least one edge.
func (g constraintGraph) reachable(s int) []bool {
	seen := make([]bool, len(g.edges))
	stack := append([]int(nil), g.edges[s]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, g.edges[n]...)
	}
	return seen
}

// cycles returns, for each node, the predecessor closing a cycle through it
// or -1.
func (g constraintGraph) cycles() []int {
	out := make([]int, len(g.edges))
	for i := range g.edges {
		out[i] = g.closingPredecessor(i)
	}
	return out
}

// acyclicEdges drops every edge i→j where j leads back to i.
func (g constraintGraph) acyclicEdges() [][]int {
	reach := make([][]bool, len(g.edges))
	for i := range g.edges {
		reach[i] = g.reachable(i)
	}
	out := make([][]int, len(g.edges))
	for i, es := range g.edges {
		for _, j := range es {
			if !reach[j][i] {
				out[i] = append(out[i], j)
			}
		}
	}
	return out
}
