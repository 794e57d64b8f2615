package basis

import (
	"math"

	"transport/internal/allocation"
	"transport/internal/problem"
	"transport/pkg/apperror"
)

// RepairReport summarizes what a repair pass changed.
type RepairReport struct {
	EdgesAdded   int
	EdgesRemoved int
}

// Changed reports whether the repair touched the basis at all.
func (r *RepairReport) Changed() bool {
	return r.EdgesAdded > 0 || r.EdgesRemoved > 0
}

// Repair restores the spanning-tree shape of a plan's basis in place.
//
// Disconnected components are joined by adding the cheapest zero-flow cell
// bridging two components. When the graph carries more than n+m-1 edges,
// cycles are broken by removing a zero-flow edge on the cycle. sampleSize
// bounds the candidate scan for large matrices; zero means a full scan.
// A full scan is always retried before giving up on a sampled pass.
func Repair(p *problem.Problem, a *allocation.Allocation, sampleSize int) (*RepairReport, error) {
	n, m := p.Rows(), p.Cols()
	g := FromAllocation(a, n, m)
	report := &RepairReport{}

	for {
		comp, count := g.Components()
		if count == 1 {
			break
		}
		row, col, ok := cheapestBridge(p, g, comp, sampleSize)
		if !ok {
			// Sampling can miss every bridge; the full scan cannot.
			row, col, ok = cheapestBridge(p, g, comp, 0)
		}
		if !ok {
			return report, apperror.NewCritical(apperror.CodeRepairFailed, "no cell can reconnect the basis").
				WithDetails("components", count)
		}
		a.Set(row, col, 0)
		g.AddEdge(row, col)
		report.EdgesAdded++
	}

	for g.EdgeCount() > n+m-1 {
		cycle, ok := g.findCycle()
		if !ok {
			return report, apperror.NewCritical(apperror.CodeRepairFailed, "too many basic cells but no cycle to break").
				WithDetails("edges", g.EdgeCount()).WithDetails("expected", n+m-1)
		}
		victim, ok := zeroFlowEdge(a, cycle)
		if !ok {
			// Every edge carries flow: shift flow around the cycle until
			// one edge drains, picking the orientation that does not
			// increase total cost.
			shiftCycleFlow(p, a, cycle)
			victim, ok = zeroFlowEdge(a, cycle)
			if !ok {
				return report, apperror.NewCritical(apperror.CodeRepairFailed, "cycle carries flow on every edge").
					WithDetails("cycle_len", len(cycle))
			}
		}
		a.Remove(victim.Row, victim.Col)
		g.RemoveEdge(victim.Row, victim.Col)
		report.EdgesRemoved++
	}

	if !g.IsSpanningTree() {
		return report, apperror.NewCritical(apperror.CodeRepairFailed, "basis is not a spanning tree after repair").
			WithDetails("edges", g.EdgeCount()).WithDetails("connected", g.Connected())
	}
	return report, nil
}

// cheapestBridge scans for the lowest-cost cell whose row and column live
// in different components. With sampleSize > 0 only every k-th cell is
// inspected, where k keeps the scan near sampleSize candidates.
func cheapestBridge(p *problem.Problem, g *Graph, comp []int, sampleSize int) (int, int, bool) {
	n, m := p.Rows(), p.Cols()

	stride := 1
	if sampleSize > 0 && n*m > sampleSize {
		stride = n * m / sampleSize
	}

	bestRow, bestCol := -1, -1
	bestCost := math.Inf(1)
	idx := 0
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			idx++
			if stride > 1 && idx%stride != 0 {
				continue
			}
			if comp[g.rowNode(i)] == comp[g.colNode(j)] {
				continue
			}
			if c := p.Costs[i][j]; c < bestCost {
				bestCost = c
				bestRow, bestCol = i, j
			}
		}
	}
	return bestRow, bestCol, bestRow >= 0
}

// shiftCycleFlow drains flow out of a cycle by adding theta on even
// positions and subtracting it on odd ones, where theta is the minimum
// flow over the subtracting positions. Cycles are even-length in the
// bipartite basis graph, so row and column sums are preserved. Of the
// two shift directions the one with non-positive per-unit cost delta is
// used, so repair never makes the plan more expensive.
func shiftCycleFlow(p *problem.Problem, a *allocation.Allocation, cycle []allocation.Cell) {
	delta := 0.0
	for i, c := range cycle {
		if i%2 == 0 {
			delta += p.Costs[c.Row][c.Col]
		} else {
			delta -= p.Costs[c.Row][c.Col]
		}
	}
	// minusAt marks subtracting positions: odd when adding on even
	// positions is the cheaper direction, even otherwise.
	minusParity := 1
	if delta > 0 {
		minusParity = 0
	}

	theta := math.Inf(1)
	for i, c := range cycle {
		if i%2 != minusParity {
			continue
		}
		if f := a.Flow(c.Row, c.Col); f < theta {
			theta = f
		}
	}

	for i, c := range cycle {
		f := a.Flow(c.Row, c.Col)
		if i%2 == minusParity {
			f -= theta
		} else {
			f += theta
		}
		if f < problem.Epsilon {
			f = 0
		}
		a.Set(c.Row, c.Col, f)
	}
}

// zeroFlowEdge picks the lowest-(row, col) zero-flow edge on the cycle.
func zeroFlowEdge(a *allocation.Allocation, cycle []allocation.Cell) (allocation.Cell, bool) {
	var best allocation.Cell
	found := false
	for _, c := range cycle {
		if a.Flow(c.Row, c.Col) > problem.Epsilon {
			continue
		}
		if !found || c.Row < best.Row || (c.Row == best.Row && c.Col < best.Col) {
			best = c
			found = true
		}
	}
	return best, found
}
