// Package problem defines the balanced transportation problem: a cost matrix,
// a supply vector and a demand vector, plus the validation rules the solver
// relies on.
//
// # Balance
//
// The engine only accepts balanced problems (total supply equals total
// demand). Callers with unbalanced data must add an explicit zero-cost dummy
// row or column before construction; New fails fast otherwise.
//
// # Immutability
//
// A Problem is read-only for the lifetime of a solve. Nothing in this module
// mutates it after construction.
package problem

import (
	"math"

	"transport/pkg/apperror"
)

// Epsilon is the tolerance for floating-point comparisons.
// Values smaller than Epsilon are considered zero.
const Epsilon = 1e-9

// Problem is an immutable balanced transportation problem.
type Problem struct {
	// Costs is the n×m unit cost matrix. Costs[i][j] is the cost of shipping
	// one unit from source i to destination j.
	Costs [][]float64

	// Supplies holds the available supply per source row (length n).
	Supplies []float64

	// Demands holds the required demand per destination column (length m).
	Demands []float64
}

// New constructs a Problem and validates it.
func New(costs [][]float64, supplies, demands []float64) (*Problem, error) {
	p := &Problem{
		Costs:    costs,
		Supplies: supplies,
		Demands:  demands,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Rows returns the number of supply rows.
func (p *Problem) Rows() int {
	return len(p.Supplies)
}

// Cols returns the number of demand columns.
func (p *Problem) Cols() int {
	return len(p.Demands)
}

// TotalSupply returns the sum of all supplies.
func (p *Problem) TotalSupply() float64 {
	var total float64
	for _, s := range p.Supplies {
		total += s
	}
	return total
}

// TotalDemand returns the sum of all demands.
func (p *Problem) TotalDemand() float64 {
	var total float64
	for _, d := range p.Demands {
		total += d
	}
	return total
}

// IsBalanced reports whether total supply equals total demand within Epsilon.
func (p *Problem) IsBalanced() bool {
	return math.Abs(p.TotalSupply()-p.TotalDemand()) < Epsilon
}

// Validate checks the structural and numeric invariants:
// non-empty dimensions, matching matrix shape, non-negative values
// and supply/demand balance.
func (p *Problem) Validate() error {
	n := len(p.Supplies)
	m := len(p.Demands)

	if n == 0 || m == 0 {
		return apperror.ErrEmptyProblem
	}

	if len(p.Costs) != n {
		return apperror.New(apperror.CodeDimensionMismatch, "cost matrix row count does not match supply count").
			WithDetails("expected", n).
			WithDetails("actual", len(p.Costs))
	}
	for i, row := range p.Costs {
		if len(row) != m {
			return apperror.New(apperror.CodeDimensionMismatch, "cost matrix column count does not match demand count").
				WithDetails("row", i).
				WithDetails("expected", m).
				WithDetails("actual", len(row))
		}
		for j, c := range row {
			if c < 0 {
				return apperror.New(apperror.CodeNegativeCost, "costs must be non-negative").
					WithDetails("row", i).
					WithDetails("col", j).
					WithDetails("value", c)
			}
		}
	}

	for i, s := range p.Supplies {
		if s < 0 {
			return apperror.New(apperror.CodeNegativeSupply, "supplies must be non-negative").
				WithDetails("row", i).
				WithDetails("value", s)
		}
	}
	for j, d := range p.Demands {
		if d < 0 {
			return apperror.New(apperror.CodeNegativeDemand, "demands must be non-negative").
				WithDetails("col", j).
				WithDetails("value", d)
		}
	}

	if !p.IsBalanced() {
		return apperror.New(apperror.CodeUnbalancedProblem, "total supply must equal total demand").
			WithDetails("total_supply", p.TotalSupply()).
			WithDetails("total_demand", p.TotalDemand())
	}

	return nil
}
