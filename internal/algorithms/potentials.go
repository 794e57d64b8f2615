package algorithms

import (
	"transport/internal/allocation"
	"transport/internal/basis"
	"transport/internal/problem"
	"transport/pkg/apperror"
)

// ComputePotentials solves u[i] + v[j] = C[i][j] over the basic cells.
//
// Row 0 anchors the system at u[0] = 0; the rest propagates by breadth
// first search over the basis tree. A node the search cannot reach means
// the basis is disconnected and the caller must repair it.
func ComputePotentials(p *problem.Problem, a *allocation.Allocation) ([]float64, []float64, error) {
	n, m := p.Rows(), p.Cols()
	g := basis.FromAllocation(a, n, m)

	u := make([]float64, n)
	v := make([]float64, m)
	uSet := make([]bool, n)
	vSet := make([]bool, m)

	type node struct {
		idx   int
		isRow bool
	}

	uSet[0] = true
	queue := []node{{idx: 0, isRow: true}}
	labeled := 1

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.isRow {
			i := cur.idx
			for _, j := range g.RowNeighbors(i) {
				if !vSet[j] {
					v[j] = p.Costs[i][j] - u[i]
					vSet[j] = true
					labeled++
					queue = append(queue, node{idx: j})
				}
			}
		} else {
			j := cur.idx
			for _, i := range g.ColNeighbors(j) {
				if !uSet[i] {
					u[i] = p.Costs[i][j] - v[j]
					uSet[i] = true
					labeled++
					queue = append(queue, node{idx: i, isRow: true})
				}
			}
		}
	}

	if labeled != n+m {
		return nil, nil, apperror.Wrap(apperror.ErrDisconnectedBasis, apperror.CodeDisconnectedBasis,
			"potential propagation cannot reach every node").
			WithDetails("labeled", labeled).WithDetails("nodes", n+m)
	}
	return u, v, nil
}

// ReducedCost returns C[i][j] - u[i] - v[j].
func ReducedCost(p *problem.Problem, u, v []float64, i, j int) float64 {
	return p.Costs[i][j] - u[i] - v[j]
}
