package algorithms

import (
	"transport/internal/allocation"
	"transport/internal/problem"
)

// Detector scans the cost matrix for an entering cell with a negative
// reduced cost. It keeps a cursor so restricted scans resume where the
// previous one stopped instead of rescanning the same corner.
type Detector struct {
	selection Selection
	bound     SearchBound
	epsilon   float64
	cursor    int
}

// NewDetector builds a detector from resolved options.
func NewDetector(opts SolverOptions) *Detector {
	return &Detector{
		selection: opts.Selection,
		bound:     opts.Bound,
		epsilon:   opts.Epsilon,
	}
}

// Find returns an entering cell and its reduced cost. When the bound is
// sampled or restricted and the bounded scan comes up empty, a full scan
// confirms before optimality is reported.
func (d *Detector) Find(p *problem.Problem, a *allocation.Allocation, u, v []float64) (allocation.Cell, float64, bool) {
	cell, delta, found := d.scan(p, a, u, v, d.bound)
	if !found && d.bound.Kind != BoundUnbounded {
		cell, delta, found = d.scan(p, a, u, v, Unbounded())
	}
	return cell, delta, found
}

func (d *Detector) scan(p *problem.Problem, a *allocation.Allocation, u, v []float64, bound SearchBound) (allocation.Cell, float64, bool) {
	n, m := p.Rows(), p.Cols()
	total := n * m

	stride := 1
	limit := total
	start := 0
	switch bound.Kind {
	case BoundSampled:
		stride = int(1 / bound.Fraction)
		if stride < 1 {
			stride = 1
		}
	case BoundRestricted:
		if bound.Size < total {
			limit = bound.Size
			start = d.cursor
		}
	}

	var best allocation.Cell
	bestDelta := -d.epsilon
	found := false

	inspected := 0
	for k := 0; k < total && inspected < limit; k += stride {
		idx := (start + k) % total
		inspected++
		i, j := idx/m, idx%m
		if a.IsBasic(i, j) {
			continue
		}
		delta := p.Costs[i][j] - u[i] - v[j]
		if delta < bestDelta {
			best = allocation.Cell{Row: i, Col: j}
			bestDelta = delta
			found = true
			if d.selection == SelectionFirst {
				d.cursor = (idx + 1) % total
				return best, bestDelta, true
			}
		}
	}

	if bound.Kind == BoundRestricted {
		d.cursor = (start + limit) % total
	}
	return best, bestDelta, found
}
