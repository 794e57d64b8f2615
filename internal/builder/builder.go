// Package builder produces initial basic feasible plans for the
// optimization loop.
//
// # Strategies
//
// Two construction strategies are available. Northwest corner fills the
// matrix greedily from the top-left and ignores costs entirely; it is
// cheap to run and gives a valid but usually expensive starting plan.
// Balas-Hammer (Vogel's approximation) repeatedly allocates in the row or
// column with the largest regret penalty and usually lands much closer to
// the optimum.
//
// # Guarantee
//
// Both strategies return a plan with exactly n+m-1 basic cells whose
// basis graph is a spanning tree, including the zero-flow cells needed on
// degenerate problems.
package builder

import (
	"transport/internal/allocation"
	"transport/internal/problem"
	"transport/pkg/apperror"
)

// Strategy names accepted by Build.
const (
	StrategyNorthwest   = "northwest"
	StrategyBalasHammer = "balas_hammer"
)

// Build constructs an initial basic feasible plan using the named
// strategy.
func Build(strategy string, p *problem.Problem) (*allocation.Allocation, error) {
	if p == nil {
		return nil, apperror.ErrNilProblem
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	switch strategy {
	case StrategyNorthwest:
		return Northwest(p), nil
	case StrategyBalasHammer:
		return BalasHammer(p), nil
	default:
		return nil, apperror.New(apperror.CodeSolverError, "unknown build strategy").
			WithField("strategy").
			WithDetails("strategy", strategy)
	}
}
