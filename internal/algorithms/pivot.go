package algorithms

import (
	"transport/internal/allocation"
	"transport/pkg/apperror"
)

// PivotResult reports what a single pivot moved.
type PivotResult struct {
	Entering   allocation.Cell
	Departing  allocation.Cell
	Theta      float64
	Degenerate bool
}

// Pivot shifts theta units of flow around the cycle and swaps the
// departing cell out of the basis.
//
// Theta is the smallest flow on the losing (odd) positions. Among losing
// cells tied at theta the lowest (row, col) departs, so degenerate pivots
// with theta = 0 are deterministic. The entering cell sits at position 0,
// a gaining position, and can never depart; the basis edge set therefore
// changes on every pivot even when no flow moves.
func Pivot(a *allocation.Allocation, cycle []allocation.Cell, epsilon float64) (*PivotResult, error) {
	if len(cycle) < 4 || len(cycle)%2 != 0 {
		return nil, apperror.NewCritical(apperror.CodeInvariantViolation, "pivot cycle must have even length of at least four").
			WithDetails("length", len(cycle))
	}

	theta := -1.0
	departing := allocation.Cell{}
	for k := 1; k < len(cycle); k += 2 {
		c := cycle[k]
		flow := a.Flow(c.Row, c.Col)
		switch {
		case theta < 0 || flow < theta-epsilon:
			theta = flow
			departing = c
		case flow <= theta+epsilon:
			if c.Row < departing.Row || (c.Row == departing.Row && c.Col < departing.Col) {
				departing = c
			}
		}
	}
	if theta < 0 {
		theta = 0
	}

	for k, c := range cycle {
		if k%2 == 0 {
			a.Set(c.Row, c.Col, a.Flow(c.Row, c.Col)+theta)
		} else {
			next := a.Flow(c.Row, c.Col) - theta
			if next < 0 && next > -epsilon {
				next = 0
			}
			a.Set(c.Row, c.Col, next)
		}
	}
	a.Remove(departing.Row, departing.Col)

	return &PivotResult{
		Entering:   cycle[0],
		Departing:  departing,
		Theta:      theta,
		Degenerate: theta <= epsilon,
	}, nil
}
