package builder

import (
	"math"

	"transport/internal/allocation"
	"transport/internal/problem"
)

// Northwest builds a plan by sweeping the matrix from the top-left
// corner, exhausting each supply and demand in index order.
//
// When a supply and a demand run out on the same cell, only the row index
// advances, so the next cell in the same column enters the basis with
// zero flow. Each step adds one cell and advances exactly one index,
// which yields n+m-1 basic cells on every input.
func Northwest(p *problem.Problem) *allocation.Allocation {
	n, m := p.Rows(), p.Cols()
	supply := append([]float64(nil), p.Supplies...)
	demand := append([]float64(nil), p.Demands...)

	a := allocation.New()
	i, j := 0, 0
	for {
		q := math.Min(supply[i], demand[j])
		a.Set(i, j, q)
		supply[i] -= q
		demand[j] -= q

		if i == n-1 && j == m-1 {
			return a
		}

		rowDone := supply[i] <= problem.Epsilon
		colDone := demand[j] <= problem.Epsilon
		switch {
		case rowDone && colDone:
			if i < n-1 {
				i++
			} else {
				j++
			}
		case rowDone:
			i++
		default:
			j++
		}
	}
}
