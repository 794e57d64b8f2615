// Package allocation holds the sparse shipment plan a solver works on.
//
// # Representation
//
// An Allocation stores only basic cells. A basic cell may carry zero flow:
// degenerate plans keep zero-flow cells in the basis so the basis graph
// stays a spanning tree with exactly n+m-1 edges. Non-basic cells are
// implicitly zero and are not stored.
//
// # Determinism
//
// BasicCells returns cells sorted by (row, col) so every traversal of the
// plan is reproducible regardless of map iteration order.
package allocation

import (
	"fmt"
	"math"
	"sort"

	"transport/internal/problem"
	"transport/pkg/apperror"
)

// Cell identifies a single (supplier, destination) pair in the cost matrix.
type Cell struct {
	Row int
	Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Allocation is a sparse map of basic cells to their flow values.
type Allocation struct {
	flows map[Cell]float64
}

// New returns an empty allocation.
func New() *Allocation {
	return &Allocation{flows: make(map[Cell]float64)}
}

// Set marks the cell as basic with the given flow. Setting an existing
// basic cell overwrites its flow.
func (a *Allocation) Set(row, col int, flow float64) {
	a.flows[Cell{Row: row, Col: col}] = flow
}

// Flow returns the flow on the cell. Non-basic cells report zero.
func (a *Allocation) Flow(row, col int) float64 {
	return a.flows[Cell{Row: row, Col: col}]
}

// IsBasic reports whether the cell belongs to the basis, including
// zero-flow basic cells.
func (a *Allocation) IsBasic(row, col int) bool {
	_, ok := a.flows[Cell{Row: row, Col: col}]
	return ok
}

// Remove drops the cell from the basis.
func (a *Allocation) Remove(row, col int) {
	delete(a.flows, Cell{Row: row, Col: col})
}

// Len returns the number of basic cells.
func (a *Allocation) Len() int {
	return len(a.flows)
}

// BasicCells returns all basic cells sorted by (row, col).
func (a *Allocation) BasicCells() []Cell {
	cells := make([]Cell, 0, len(a.flows))
	for c := range a.flows {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	return cells
}

// TotalCost computes the objective value of the plan against the problem's
// cost matrix.
func (a *Allocation) TotalCost(p *problem.Problem) float64 {
	var total float64
	for c, flow := range a.flows {
		total += p.Costs[c.Row][c.Col] * flow
	}
	return total
}

// Clone returns a deep copy of the allocation.
func (a *Allocation) Clone() *Allocation {
	cp := &Allocation{flows: make(map[Cell]float64, len(a.flows))}
	for c, f := range a.flows {
		cp.flows[c] = f
	}
	return cp
}

// Validate checks that the plan is a feasible basic solution for p:
// non-negative flows, row sums matching supplies, column sums matching
// demands, and exactly n+m-1 basic cells.
func (a *Allocation) Validate(p *problem.Problem) error {
	n, m := p.Rows(), p.Cols()

	rowSums := make([]float64, n)
	colSums := make([]float64, m)
	for c, flow := range a.flows {
		if c.Row < 0 || c.Row >= n || c.Col < 0 || c.Col >= m {
			return apperror.New(apperror.CodeInvariantViolation, "basic cell outside the cost matrix").
				WithDetails("row", c.Row).WithDetails("col", c.Col)
		}
		if flow < -problem.Epsilon {
			return apperror.New(apperror.CodeInvariantViolation, "negative flow on basic cell").
				WithDetails("row", c.Row).WithDetails("col", c.Col).WithDetails("flow", flow)
		}
		rowSums[c.Row] += flow
		colSums[c.Col] += flow
	}

	for i := 0; i < n; i++ {
		if math.Abs(rowSums[i]-p.Supplies[i]) > problem.Epsilon {
			return apperror.New(apperror.CodeInvariantViolation, "row flow does not match supply").
				WithDetails("row", i).WithDetails("sum", rowSums[i]).WithDetails("supply", p.Supplies[i])
		}
	}
	for j := 0; j < m; j++ {
		if math.Abs(colSums[j]-p.Demands[j]) > problem.Epsilon {
			return apperror.New(apperror.CodeInvariantViolation, "column flow does not match demand").
				WithDetails("col", j).WithDetails("sum", colSums[j]).WithDetails("demand", p.Demands[j])
		}
	}

	if want := n + m - 1; len(a.flows) != want {
		return apperror.New(apperror.CodeWrongBasisCount, "basis must contain exactly n+m-1 cells").
			WithDetails("expected", want).WithDetails("actual", len(a.flows))
	}
	return nil
}
