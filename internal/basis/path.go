package basis

import "transport/internal/allocation"

// PathCells finds the unique tree path from column node col to row node
// row and returns it as basis cells in traversal order. The first cell
// touches column col, the last cell touches row row. Returns false when
// no path exists.
func (g *Graph) PathCells(row, col int) ([]allocation.Cell, bool) {
	return g.PathCellsBounded(row, col, 0)
}

// PathCellsBounded is PathCells with a cap on the search depth measured
// in edges from the starting column node. Zero means no cap. A search
// that hits the cap without reaching the goal reports no path, so
// callers must fall back to an unbounded search before treating the
// basis as disconnected.
func (g *Graph) PathCellsBounded(row, col, maxDepth int) ([]allocation.Cell, bool) {
	total := g.rows + g.cols
	start := g.colNode(col)
	goal := g.rowNode(row)

	parent := make([]int, total)
	for i := range parent {
		parent[i] = -1
	}
	parent[start] = start
	depth := make([]int, total)

	queue := []int{start}
	found := false
	for len(queue) > 0 && !found {
		node := queue[0]
		queue = queue[1:]
		if maxDepth > 0 && depth[node] >= maxDepth {
			continue
		}
		if node < g.rows {
			for _, j := range g.rowAdj[node] {
				next := g.colNode(j)
				if parent[next] == -1 {
					parent[next] = node
					depth[next] = depth[node] + 1
					queue = append(queue, next)
				}
			}
		} else {
			for _, i := range g.colAdj[node-g.rows] {
				if parent[i] == -1 {
					parent[i] = node
					depth[i] = depth[node] + 1
					queue = append(queue, i)
					if i == goal {
						found = true
						break
					}
				}
			}
		}
	}
	if parent[goal] == -1 {
		return nil, false
	}

	// Walk back from the goal and reverse to get the start-to-goal order.
	nodes := []int{goal}
	for node := goal; node != start; node = parent[node] {
		nodes = append(nodes, parent[node])
	}
	for l, r := 0, len(nodes)-1; l < r; l, r = l+1, r-1 {
		nodes[l], nodes[r] = nodes[r], nodes[l]
	}

	cells := make([]allocation.Cell, 0, len(nodes)-1)
	for k := 0; k+1 < len(nodes); k++ {
		cells = append(cells, g.edgeCell(nodes[k], nodes[k+1]))
	}
	return cells, true
}

// findCycle locates one cycle in the graph and returns its edges.
// Returns false when the graph is acyclic.
func (g *Graph) findCycle() ([]allocation.Cell, bool) {
	total := g.rows + g.cols
	parent := make([]int, total)
	for i := range parent {
		parent[i] = -2 // unvisited
	}

	for start := 0; start < total; start++ {
		if parent[start] != -2 {
			continue
		}
		parent[start] = -1
		stack := []int{start}
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, next := range g.neighbors(node) {
				if next == parent[node] {
					continue
				}
				if parent[next] != -2 {
					// Back edge: the cycle runs along both parent chains
					// up to the common ancestor.
					return g.cycleFromBackEdge(parent, node, next), true
				}
				parent[next] = node
				stack = append(stack, next)
			}
		}
	}
	return nil, false
}

func (g *Graph) neighbors(node int) []int {
	if node < g.rows {
		out := make([]int, len(g.rowAdj[node]))
		for k, j := range g.rowAdj[node] {
			out[k] = g.colNode(j)
		}
		return out
	}
	return g.colAdj[node-g.rows]
}

func (g *Graph) cycleFromBackEdge(parent []int, a, b int) []allocation.Cell {
	// Collect ancestor chains of both endpoints, find the deepest shared
	// node, then join the two chains plus the closing edge.
	ancestorsA := chain(parent, a)
	inA := make(map[int]int, len(ancestorsA))
	for depth, node := range ancestorsA {
		inA[node] = depth
	}

	var depthA int
	pathB := []int{}
	for node := b; ; node = parent[node] {
		if d, ok := inA[node]; ok {
			depthA = d
			break
		}
		pathB = append(pathB, node)
	}

	nodes := make([]int, 0, depthA+len(pathB)+1)
	nodes = append(nodes, ancestorsA[:depthA+1]...)
	for i := len(pathB) - 1; i >= 0; i-- {
		nodes = append(nodes, pathB[i])
	}

	cells := make([]allocation.Cell, 0, len(nodes))
	for k := 0; k < len(nodes); k++ {
		cells = append(cells, g.edgeCell(nodes[k], nodes[(k+1)%len(nodes)]))
	}
	return cells
}

// chain returns node and all its ancestors, node first.
func chain(parent []int, node int) []int {
	out := []int{node}
	for parent[node] >= 0 {
		node = parent[node]
		out = append(out, node)
	}
	return out
}

func (g *Graph) edgeCell(a, b int) allocation.Cell {
	if a < g.rows {
		return allocation.Cell{Row: a, Col: b - g.rows}
	}
	return allocation.Cell{Row: b, Col: a - g.rows}
}
