// Package algorithms implements the potential-based optimization of a
// basic feasible transportation plan.
//
// # Method
//
// The loop assigns a potential to every supplier and destination from the
// basic cells, scans the non-basic cells for a negative reduced cost,
// and pivots flow around the unique cycle the entering cell closes with
// the basis tree. It stops when no reduced cost is negative (the plan is
// optimal) or when an iteration or time budget runs out.
//
// # Budgets
//
// Budget exhaustion is a normal outcome, not an error: the plan held by
// the result is feasible and at least as cheap as the starting plan.
package algorithms

import (
	"time"

	"transport/internal/allocation"
	"transport/internal/problem"
)

// Selection controls how the entering cell is chosen among cells with a
// negative reduced cost.
type Selection int

const (
	// SelectionBest takes the most negative reduced cost in the scan.
	SelectionBest Selection = iota
	// SelectionFirst takes the first negative reduced cost found.
	SelectionFirst
)

func (s Selection) String() string {
	if s == SelectionFirst {
		return "first"
	}
	return "best"
}

// ParseSelection maps a configuration name to a Selection.
func ParseSelection(name string) Selection {
	if name == "first" {
		return SelectionFirst
	}
	return SelectionBest
}

// BoundKind names the scan bound applied to the entering-cell search.
type BoundKind int

const (
	BoundUnbounded BoundKind = iota
	BoundSampled
	BoundRestricted
)

// SearchBound limits how much of the cost matrix one entering-cell scan
// inspects. A bounded scan that finds no candidate is always verified by
// a full scan before the plan is declared optimal.
type SearchBound struct {
	Kind     BoundKind
	Fraction float64 // for BoundSampled: share of cells inspected, (0, 1]
	Size     int     // for BoundRestricted: cells inspected per scan
}

// Unbounded scans the full matrix on every search.
func Unbounded() SearchBound { return SearchBound{Kind: BoundUnbounded} }

// Sampled inspects roughly the given fraction of cells per search.
func Sampled(fraction float64) SearchBound {
	if fraction <= 0 || fraction >= 1 {
		return Unbounded()
	}
	return SearchBound{Kind: BoundSampled, Fraction: fraction}
}

// Restricted inspects at most size cells per search, resuming where the
// previous search stopped.
func Restricted(size int) SearchBound {
	if size <= 0 {
		return Unbounded()
	}
	return SearchBound{Kind: BoundRestricted, Size: size}
}

// SolverOptions tunes the optimization loop.
type SolverOptions struct {
	Epsilon           float64
	MaxIterations     int // 0 sizes the budget from the matrix dimensions
	Timeout           time.Duration
	Selection         Selection
	Bound             SearchBound
	MaxRepairAttempts int
	RepairSampleSize  int // candidate scan bound for basis repair, 0 = full

	// CycleSearchRadius bounds the tree search for the pivot cycle to
	// this many edges around the entering cell; zero searches the whole
	// tree. A bounded miss falls back to an unbounded search.
	CycleSearchRadius int
}

// DefaultSolverOptions returns the options used when a caller does not
// tune anything.
func DefaultSolverOptions() *SolverOptions {
	return &SolverOptions{
		Epsilon:           problem.Epsilon,
		Timeout:           10 * time.Minute,
		Selection:         SelectionBest,
		Bound:             Unbounded(),
		MaxRepairAttempts: 3,
	}
}

// WithEpsilon sets the comparison tolerance.
func (o *SolverOptions) WithEpsilon(eps float64) *SolverOptions {
	o.Epsilon = eps
	return o
}

// WithMaxIterations caps the number of pivots.
func (o *SolverOptions) WithMaxIterations(n int) *SolverOptions {
	o.MaxIterations = n
	return o
}

// WithTimeout caps the wall-clock time of the loop.
func (o *SolverOptions) WithTimeout(d time.Duration) *SolverOptions {
	o.Timeout = d
	return o
}

// WithSelection sets the entering-cell selection rule.
func (o *SolverOptions) WithSelection(s Selection) *SolverOptions {
	o.Selection = s
	return o
}

// WithBound sets the scan bound for the entering-cell search.
func (o *SolverOptions) WithBound(b SearchBound) *SolverOptions {
	o.Bound = b
	return o
}

// WithMaxRepairAttempts caps consecutive basis repairs.
func (o *SolverOptions) WithMaxRepairAttempts(n int) *SolverOptions {
	o.MaxRepairAttempts = n
	return o
}

// WithCycleSearchRadius bounds the pivot-cycle tree search.
func (o *SolverOptions) WithCycleSearchRadius(r int) *SolverOptions {
	o.CycleSearchRadius = r
	return o
}

// Resolve fills size-dependent defaults for an n by m problem and
// returns an effective copy. A zero iteration budget becomes a budget
// proportional to the matrix size, and large problems switch to
// first-improvement selection past the threshold.
func (o *SolverOptions) Resolve(n, m, firstImprovementThreshold int) SolverOptions {
	eff := *o
	if eff.Epsilon <= 0 {
		eff.Epsilon = problem.Epsilon
	}
	if eff.MaxIterations <= 0 {
		eff.MaxIterations = 20 * (n + m)
		if eff.MaxIterations < 1000 {
			eff.MaxIterations = 1000
		}
	}
	if eff.MaxRepairAttempts <= 0 {
		eff.MaxRepairAttempts = 3
	}
	if firstImprovementThreshold > 0 && n >= firstImprovementThreshold {
		eff.Selection = SelectionFirst
	}
	return eff
}

// Status classifies how the loop ended.
type Status string

const (
	StatusOptimal         Status = "optimal"
	StatusBudgetExhausted Status = "budget_exhausted"
	StatusFailed          Status = "failed"
)

// SolveResult carries the final plan and the loop's bookkeeping.
type SolveResult struct {
	Allocation       *allocation.Allocation
	TotalCost        float64
	Iterations       int
	DegeneratePivots int
	Repairs          int
	Status           Status
	Err              error
	Duration         time.Duration
}
