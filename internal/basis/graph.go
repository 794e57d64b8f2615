// Package basis models the basic cells of a transportation plan as a
// bipartite graph over supplier and destination nodes.
//
// # Structure
//
// Every basic cell (i, j) is an edge between row node i and column node j.
// A valid basis is a spanning tree over all n+m nodes: connected, acyclic,
// with exactly n+m-1 edges. Degenerate plans keep zero-flow edges to
// preserve the tree.
//
// # Repair
//
// Builders and pivots can leave the graph disconnected or over-full.
// Repair reconnects components with cheap zero-flow edges and breaks
// cycles by removing zero-flow edges until the spanning-tree shape holds.
package basis

import (
	"sort"

	"transport/internal/allocation"
)

// Graph is the bipartite adjacency view of a basis. Row nodes are indexed
// 0..n-1, column nodes 0..m-1 in their own space.
type Graph struct {
	rows int
	cols int

	// rowAdj[i] lists the columns adjacent to row i; colAdj[j] the rows
	// adjacent to column j. Kept sorted for deterministic traversal.
	rowAdj [][]int
	colAdj [][]int

	edges int
}

// NewGraph returns an empty graph over n row nodes and m column nodes.
func NewGraph(n, m int) *Graph {
	return &Graph{
		rows:   n,
		cols:   m,
		rowAdj: make([][]int, n),
		colAdj: make([][]int, m),
	}
}

// FromAllocation builds the basis graph of the plan's basic cells.
func FromAllocation(a *allocation.Allocation, n, m int) *Graph {
	g := NewGraph(n, m)
	for _, c := range a.BasicCells() {
		g.AddEdge(c.Row, c.Col)
	}
	return g
}

// AddEdge inserts the edge (row, col). Duplicate edges are ignored.
func (g *Graph) AddEdge(row, col int) {
	for _, j := range g.rowAdj[row] {
		if j == col {
			return
		}
	}
	g.rowAdj[row] = insertSorted(g.rowAdj[row], col)
	g.colAdj[col] = insertSorted(g.colAdj[col], row)
	g.edges++
}

// RemoveEdge deletes the edge (row, col) if present.
func (g *Graph) RemoveEdge(row, col int) {
	before := len(g.rowAdj[row])
	g.rowAdj[row] = removeValue(g.rowAdj[row], col)
	if len(g.rowAdj[row]) == before {
		return
	}
	g.colAdj[col] = removeValue(g.colAdj[col], row)
	g.edges--
}

// HasEdge reports whether (row, col) is in the graph.
func (g *Graph) HasEdge(row, col int) bool {
	for _, j := range g.rowAdj[row] {
		if j == col {
			return true
		}
	}
	return false
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// RowNeighbors returns the columns adjacent to row i in ascending order.
// The returned slice is the graph's own storage and must not be mutated.
func (g *Graph) RowNeighbors(i int) []int {
	return g.rowAdj[i]
}

// ColNeighbors returns the rows adjacent to column j in ascending order.
func (g *Graph) ColNeighbors(j int) []int {
	return g.colAdj[j]
}

// RowDegree returns the number of columns adjacent to row i.
func (g *Graph) RowDegree(i int) int {
	return len(g.rowAdj[i])
}

// ColDegree returns the number of rows adjacent to column j.
func (g *Graph) ColDegree(j int) int {
	return len(g.colAdj[j])
}

// node encodes a bipartite node: rows as [0, n), columns as [n, n+m).
func (g *Graph) rowNode(i int) int { return i }
func (g *Graph) colNode(j int) int { return g.rows + j }

// Components labels every node with its connected component and returns
// the labels (rows first, then columns) plus the component count.
func (g *Graph) Components() ([]int, int) {
	total := g.rows + g.cols
	comp := make([]int, total)
	for i := range comp {
		comp[i] = -1
	}

	count := 0
	queue := make([]int, 0, total)
	for start := 0; start < total; start++ {
		if comp[start] != -1 {
			continue
		}
		comp[start] = count
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			if node < g.rows {
				for _, j := range g.rowAdj[node] {
					if next := g.colNode(j); comp[next] == -1 {
						comp[next] = count
						queue = append(queue, next)
					}
				}
			} else {
				for _, i := range g.colAdj[node-g.rows] {
					if comp[i] == -1 {
						comp[i] = count
						queue = append(queue, i)
					}
				}
			}
		}
		count++
	}
	return comp, count
}

// Connected reports whether every row and column node is reachable from
// every other.
func (g *Graph) Connected() bool {
	_, count := g.Components()
	return count == 1
}

// IsSpanningTree reports whether the graph is a valid basis: connected
// with exactly n+m-1 edges.
func (g *Graph) IsSpanningTree() bool {
	return g.edges == g.rows+g.cols-1 && g.Connected()
}

func insertSorted(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func removeValue(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	if i < len(s) && s[i] == v {
		return append(s[:i], s[i+1:]...)
	}
	return s
}
