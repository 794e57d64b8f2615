package algorithms

import (
	"transport/internal/allocation"
	"transport/internal/basis"
	"transport/pkg/apperror"
)

// BuildCycle closes the entering cell against the basis tree and returns
// the alternating cycle, entering cell first.
//
// Cells at even positions gain flow during the pivot, cells at odd
// positions lose it; adjacent cells alternate between sharing a row and
// sharing a column, and the cycle length is always even.
//
// A positive radius bounds the tree search to that many edges around
// the entering cell; a miss inside the bound falls back to an unbounded
// search before the basis is reported broken.
func BuildCycle(g *basis.Graph, entering allocation.Cell, radius int) ([]allocation.Cell, error) {
	path, ok := g.PathCellsBounded(entering.Row, entering.Col, radius)
	if !ok && radius > 0 {
		path, ok = g.PathCells(entering.Row, entering.Col)
	}
	if !ok {
		return nil, apperror.Wrap(apperror.ErrCycleNotFound, apperror.CodeCycleNotFound,
			"no tree path closes the entering cell").
			WithDetails("row", entering.Row).WithDetails("col", entering.Col)
	}

	cycle := make([]allocation.Cell, 0, len(path)+1)
	cycle = append(cycle, entering)
	cycle = append(cycle, path...)

	if len(cycle)%2 != 0 {
		return nil, apperror.NewCritical(apperror.CodeCycleNotFound, "pivot cycle has odd length").
			WithDetails("length", len(cycle))
	}
	return cycle, nil
}
