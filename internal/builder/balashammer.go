package builder

import (
	"math"
	"sort"

	"transport/internal/allocation"
	"transport/internal/problem"
)

// BalasHammer builds a plan with Vogel's regret heuristic: at each step
// the row or column with the largest penalty (gap between its two
// cheapest active cells) receives an allocation at its cheapest cell.
//
// Lines with a single active cell left carry an infinite penalty, so
// forced allocations happen first. Ties are broken by the lower cell
// cost, then by the lower line index with rows before columns.
//
// When an allocation exhausts its row and column at once, only the row
// leaves the game (the column if the row is the last one active); the
// surviving line later receives a zero-flow cell, which keeps the basis
// at n+m-1 cells on degenerate inputs.
func BalasHammer(p *problem.Problem) *allocation.Allocation {
	s := newBHState(p)
	a := allocation.New()

	for s.activeRows > 0 && s.activeCols > 0 {
		i, j := s.pick()
		q := math.Min(s.supply[i], s.demand[j])
		a.Set(i, j, q)
		s.supply[i] -= q
		s.demand[j] -= q
		s.settle(i, j)
	}
	return a
}

// === state ===

type bhState struct {
	p      *problem.Problem
	supply []float64
	demand []float64

	rowActive  []bool
	colActive  []bool
	activeRows int
	activeCols int

	// Column indices per row and row indices per column, sorted by
	// ascending cost once up front. Scans skip inactive lines.
	rowOrder [][]int
	colOrder [][]int

	// Cached penalty data per line, refreshed lazily via dirty flags.
	rowCache []lineCache
	colCache []lineCache
	rowDirty []bool
	colDirty []bool
}

type lineCache struct {
	penalty float64 // gap between the two cheapest cells, +Inf if one cell left
	minCost float64
	minAt   int // index of the cheapest cell on the other axis
	second  float64
}

func newBHState(p *problem.Problem) *bhState {
	n, m := p.Rows(), p.Cols()
	s := &bhState{
		p:          p,
		supply:     append([]float64(nil), p.Supplies...),
		demand:     append([]float64(nil), p.Demands...),
		rowActive:  make([]bool, n),
		colActive:  make([]bool, m),
		activeRows: n,
		activeCols: m,
		rowOrder:   make([][]int, n),
		colOrder:   make([][]int, m),
		rowCache:   make([]lineCache, n),
		colCache:   make([]lineCache, m),
		rowDirty:   make([]bool, n),
		colDirty:   make([]bool, m),
	}
	for i := range s.rowActive {
		s.rowActive[i] = true
		s.rowDirty[i] = true
		order := make([]int, m)
		for j := range order {
			order[j] = j
		}
		costs := p.Costs[i]
		sort.SliceStable(order, func(a, b int) bool { return costs[order[a]] < costs[order[b]] })
		s.rowOrder[i] = order
	}
	for j := range s.colActive {
		s.colActive[j] = true
		s.colDirty[j] = true
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return p.Costs[order[a]][j] < p.Costs[order[b]][j] })
		s.colOrder[j] = order
	}
	return s
}

// pick selects the next allocation cell by the largest-penalty rule.
func (s *bhState) pick() (int, int) {
	bestRow, bestCol := -1, -1
	bestPenalty := math.Inf(-1)
	bestCost := math.Inf(1)

	for i, active := range s.rowActive {
		if !active {
			continue
		}
		c := s.row(i)
		if c.penalty > bestPenalty || (c.penalty == bestPenalty && c.minCost < bestCost) {
			bestPenalty, bestCost = c.penalty, c.minCost
			bestRow, bestCol = i, c.minAt
		}
	}
	for j, active := range s.colActive {
		if !active {
			continue
		}
		c := s.col(j)
		if c.penalty > bestPenalty || (c.penalty == bestPenalty && c.minCost < bestCost) {
			bestPenalty, bestCost = c.penalty, c.minCost
			bestRow, bestCol = c.minAt, j
		}
	}
	return bestRow, bestCol
}

// settle retires the exhausted line(s) after an allocation at (i, j).
func (s *bhState) settle(i, j int) {
	rowDone := s.supply[i] <= problem.Epsilon
	colDone := s.demand[j] <= problem.Epsilon

	switch {
	case rowDone && colDone && s.activeRows == 1 && s.activeCols == 1:
		s.retireRow(i)
		s.retireCol(j)
	case rowDone && colDone:
		// Retire one line only; the survivor keeps zero capacity and
		// receives a zero-flow cell on a later step.
		if s.activeRows > 1 {
			s.retireRow(i)
		} else {
			s.retireCol(j)
		}
	case rowDone:
		s.retireRow(i)
	default:
		s.retireCol(j)
	}
}

func (s *bhState) retireRow(i int) {
	s.rowActive[i] = false
	s.activeRows--
	// A column cache only moves when the retired row was among its two
	// cheapest cells.
	for j, active := range s.colActive {
		if active && !s.colDirty[j] && s.p.Costs[i][j] <= s.colCache[j].second {
			s.colDirty[j] = true
		}
	}
}

func (s *bhState) retireCol(j int) {
	s.colActive[j] = false
	s.activeCols--
	for i, active := range s.rowActive {
		if active && !s.rowDirty[i] && s.p.Costs[i][j] <= s.rowCache[i].second {
			s.rowDirty[i] = true
		}
	}
}

func (s *bhState) row(i int) lineCache {
	if s.rowDirty[i] {
		s.rowCache[i] = s.scan(s.rowOrder[i], s.colActive, func(j int) float64 { return s.p.Costs[i][j] })
		s.rowDirty[i] = false
	}
	return s.rowCache[i]
}

func (s *bhState) col(j int) lineCache {
	if s.colDirty[j] {
		s.colCache[j] = s.scan(s.colOrder[j], s.rowActive, func(i int) float64 { return s.p.Costs[i][j] })
		s.colDirty[j] = false
	}
	return s.colCache[j]
}

// scan walks a cost-sorted order and returns the cache for the first two
// active entries.
func (s *bhState) scan(order []int, active []bool, cost func(int) float64) lineCache {
	c := lineCache{penalty: math.Inf(1), minCost: math.Inf(1), minAt: -1, second: math.Inf(1)}
	for _, k := range order {
		if !active[k] {
			continue
		}
		if c.minAt == -1 {
			c.minCost = cost(k)
			c.minAt = k
			continue
		}
		c.second = cost(k)
		c.penalty = c.second - c.minCost
		break
	}
	return c
}
