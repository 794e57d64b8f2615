package algorithms

import (
	"context"
	"errors"
	"time"

	"transport/internal/allocation"
	"transport/internal/basis"
	"transport/internal/problem"
	"transport/pkg/apperror"
	"transport/pkg/logger"
)

// budgetCheckInterval is how many pivots pass between context and
// deadline checks.
const budgetCheckInterval = 100

// Optimize runs the potential loop on the plan in place until it is
// optimal or a budget runs out. The plan must already be a basic
// feasible solution; invalid bases get one repair pass per incident, up
// to MaxRepairAttempts across the run.
//
// The returned result always carries the current plan: on budget
// exhaustion the plan is feasible and no more expensive than the input.
func Optimize(ctx context.Context, p *problem.Problem, a *allocation.Allocation, opts *SolverOptions) *SolveResult {
	started := time.Now()
	if opts == nil {
		opts = DefaultSolverOptions()
	}
	eff := opts.Resolve(p.Rows(), p.Cols(), 0)
	detector := NewDetector(eff)

	deadline := time.Time{}
	if eff.Timeout > 0 {
		deadline = started.Add(eff.Timeout)
	}

	result := &SolveResult{Allocation: a}
	repairsLeft := eff.MaxRepairAttempts

	fail := func(err error) *SolveResult {
		result.Status = StatusFailed
		result.Err = err
		result.TotalCost = a.TotalCost(p)
		result.Duration = time.Since(started)
		return result
	}
	finish := func(status Status) *SolveResult {
		result.Status = status
		result.TotalCost = a.TotalCost(p)
		result.Duration = time.Since(started)
		return result
	}

	repair := func(cause error) error {
		if repairsLeft <= 0 {
			return apperror.Wrap(cause, apperror.CodeInvariantViolation, "basis repair budget exhausted")
		}
		repairsLeft--
		report, err := basis.Repair(p, a, eff.RepairSampleSize)
		if err != nil {
			return err
		}
		result.Repairs++
		logger.Debug("basis repaired",
			"edges_added", report.EdgesAdded,
			"edges_removed", report.EdgesRemoved,
			"iteration", result.Iterations)
		return nil
	}

	wantBasic := p.Rows() + p.Cols() - 1
	for {
		if result.Iterations >= eff.MaxIterations {
			return finish(StatusBudgetExhausted)
		}
		if result.Iterations%budgetCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					return finish(StatusBudgetExhausted)
				}
				return fail(apperror.Wrap(err, apperror.CodeTimeout, "solve cancelled"))
			}
			if !deadline.IsZero() && time.Now().After(deadline) {
				return finish(StatusBudgetExhausted)
			}
		}

		// An over-full basis stays connected, so potential propagation
		// alone cannot see it. Drop it to spanning-tree shape before
		// trusting the potentials.
		if a.Len() != wantBasic {
			cause := apperror.New(apperror.CodeWrongBasisCount, "basis does not span with n+m-1 cells").
				WithDetails("expected", wantBasic).
				WithDetails("actual", a.Len())
			if rerr := repair(cause); rerr != nil {
				return fail(rerr)
			}
			continue
		}

		u, v, err := ComputePotentials(p, a)
		if err != nil {
			if rerr := repair(err); rerr != nil {
				return fail(rerr)
			}
			continue
		}

		entering, _, found := detector.Find(p, a, u, v)
		if !found {
			return finish(StatusOptimal)
		}

		g := basis.FromAllocation(a, p.Rows(), p.Cols())
		cycle, err := BuildCycle(g, entering, eff.CycleSearchRadius)
		if err != nil {
			if rerr := repair(err); rerr != nil {
				return fail(rerr)
			}
			continue
		}

		pivot, err := Pivot(a, cycle, eff.Epsilon)
		if err != nil {
			return fail(err)
		}
		result.Iterations++
		if pivot.Degenerate {
			result.DegeneratePivots++
			logger.Debug("degenerate pivot",
				"entering", pivot.Entering.String(),
				"departing", pivot.Departing.String(),
				"iteration", result.Iterations)
		}
	}
}
