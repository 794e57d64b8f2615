package algorithms

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transport/internal/allocation"
	"transport/internal/basis"
	"transport/internal/builder"
	"transport/internal/problem"
	"transport/pkg/apperror"
)

func mustProblem(t *testing.T, costs [][]float64, supplies, demands []float64) *problem.Problem {
	t.Helper()
	p, err := problem.New(costs, supplies, demands)
	require.NoError(t, err)
	return p
}

// scenario is a 3x3 problem with a known optimum of 235.
func scenario(t *testing.T) *problem.Problem {
	return mustProblem(t,
		[][]float64{
			{4, 6, 8},
			{3, 5, 2},
			{7, 3, 6},
		},
		[]float64{20, 30, 25},
		[]float64{10, 35, 30},
	)
}

// requireOptimalityCertificate checks that no cell has a negative
// reduced cost under the final potentials.
func requireOptimalityCertificate(t *testing.T, p *problem.Problem, a *allocation.Allocation) {
	t.Helper()
	u, v, err := ComputePotentials(p, a)
	require.NoError(t, err)
	for i := 0; i < p.Rows(); i++ {
		for j := 0; j < p.Cols(); j++ {
			rc := ReducedCost(p, u, v, i, j)
			assert.GreaterOrEqual(t, rc, -problem.Epsilon,
				"cell (%d,%d) has negative reduced cost %f", i, j, rc)
		}
	}
}

func TestComputePotentials(t *testing.T) {
	p := scenario(t)
	a := allocation.New()
	a.Set(0, 0, 10)
	a.Set(0, 1, 10)
	a.Set(1, 1, 0)
	a.Set(1, 2, 30)
	a.Set(2, 1, 25)

	u, v, err := ComputePotentials(p, a)
	require.NoError(t, err)

	// Anchored at u[0] = 0; every basic cell satisfies u+v = C.
	assert.Equal(t, 0.0, u[0])
	for _, c := range a.BasicCells() {
		assert.InDelta(t, p.Costs[c.Row][c.Col], u[c.Row]+v[c.Col], problem.Epsilon)
	}
}

func TestComputePotentials_Disconnected(t *testing.T) {
	p := scenario(t)
	a := allocation.New()
	a.Set(0, 0, 10)
	a.Set(0, 1, 10)
	a.Set(2, 1, 25)
	a.Set(1, 2, 30)
	// Row 1 and column 2 form an island.

	_, _, err := ComputePotentials(p, a)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeDisconnectedBasis))
}

func TestDetector_BestPicksMostNegative(t *testing.T) {
	p := scenario(t)
	a := builder.Northwest(p)
	u, v, err := ComputePotentials(p, a)
	require.NoError(t, err)

	d := NewDetector(DefaultSolverOptions().Resolve(p.Rows(), p.Cols(), 0))
	_, delta, found := d.Find(p, a, u, v)
	require.True(t, found)
	assert.Negative(t, delta)

	// No other non-basic cell is more negative.
	for i := 0; i < p.Rows(); i++ {
		for j := 0; j < p.Cols(); j++ {
			if a.IsBasic(i, j) {
				continue
			}
			assert.GreaterOrEqual(t, ReducedCost(p, u, v, i, j), delta-problem.Epsilon)
		}
	}
}

func TestDetector_FirstStopsEarly(t *testing.T) {
	p := scenario(t)
	a := builder.Northwest(p)
	u, v, err := ComputePotentials(p, a)
	require.NoError(t, err)

	opts := DefaultSolverOptions().WithSelection(SelectionFirst).Resolve(p.Rows(), p.Cols(), 0)
	d := NewDetector(opts)
	_, delta, found := d.Find(p, a, u, v)
	require.True(t, found)
	assert.Negative(t, delta)
}

func TestDetector_BoundedScanConfirmsOptimality(t *testing.T) {
	p := scenario(t)
	res := Optimize(context.Background(), p, builder.BalasHammer(p), DefaultSolverOptions())
	require.Equal(t, StatusOptimal, res.Status)

	u, v, err := ComputePotentials(p, res.Allocation)
	require.NoError(t, err)

	// A tiny restricted window on an optimal plan must still conclude
	// that nothing improves, via the full-scan fallback.
	opts := DefaultSolverOptions().WithBound(Restricted(2)).Resolve(p.Rows(), p.Cols(), 0)
	d := NewDetector(opts)
	_, _, found := d.Find(p, res.Allocation, u, v)
	assert.False(t, found)
}

func TestBuildCycle_BoundedFallsBack(t *testing.T) {
	p := scenario(t)
	a := builder.Northwest(p)
	g := basis.FromAllocation(a, p.Rows(), p.Cols())

	unbounded, err := BuildCycle(g, allocation.Cell{Row: 2, Col: 0}, 0)
	require.NoError(t, err)

	// A radius of one cannot close any cycle, so the bounded search must
	// fall back and produce the same result.
	bounded, err := BuildCycle(g, allocation.Cell{Row: 2, Col: 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, unbounded, bounded)
	assert.Equal(t, allocation.Cell{Row: 2, Col: 0}, bounded[0])
	assert.Zero(t, len(bounded)%2)
}

func TestOptimize_ReachesKnownOptimum(t *testing.T) {
	p := scenario(t)

	for _, strategy := range []string{builder.StrategyNorthwest, builder.StrategyBalasHammer} {
		t.Run(strategy, func(t *testing.T) {
			a, err := builder.Build(strategy, p)
			require.NoError(t, err)

			res := Optimize(context.Background(), p, a, DefaultSolverOptions())
			require.NoError(t, res.Err)
			assert.Equal(t, StatusOptimal, res.Status)
			assert.InDelta(t, 235, res.TotalCost, problem.Epsilon)
			require.NoError(t, res.Allocation.Validate(p))
			requireOptimalityCertificate(t, p, res.Allocation)
		})
	}
}

func TestOptimize_CostNeverIncreases(t *testing.T) {
	p := scenario(t)
	a := builder.Northwest(p)
	opts := DefaultSolverOptions().Resolve(p.Rows(), p.Cols(), 0)
	d := NewDetector(opts)

	prev := a.TotalCost(p)
	for step := 0; step < 50; step++ {
		u, v, err := ComputePotentials(p, a)
		require.NoError(t, err)
		entering, _, found := d.Find(p, a, u, v)
		if !found {
			return
		}
		g := basis.FromAllocation(a, p.Rows(), p.Cols())
		cycle, err := BuildCycle(g, entering, 0)
		require.NoError(t, err)
		_, err = Pivot(a, cycle, opts.Epsilon)
		require.NoError(t, err)

		cost := a.TotalCost(p)
		assert.LessOrEqual(t, cost, prev+problem.Epsilon, "pivot %d increased the cost", step)
		prev = cost
	}
	t.Fatal("loop did not terminate")
}

func TestOptimize_Idempotent(t *testing.T) {
	p := scenario(t)
	res := Optimize(context.Background(), p, builder.Northwest(p), DefaultSolverOptions())
	require.Equal(t, StatusOptimal, res.Status)

	again := Optimize(context.Background(), p, res.Allocation, DefaultSolverOptions())
	assert.Equal(t, StatusOptimal, again.Status)
	assert.Zero(t, again.Iterations)
	assert.InDelta(t, res.TotalCost, again.TotalCost, problem.Epsilon)
}

func TestOptimize_StartsAgree(t *testing.T) {
	p := mustProblem(t,
		[][]float64{
			{10, 2, 20, 11},
			{12, 7, 9, 20},
			{4, 14, 16, 18},
		},
		[]float64{15, 25, 10},
		[]float64{5, 15, 15, 15},
	)

	nw := Optimize(context.Background(), p, builder.Northwest(p), DefaultSolverOptions())
	bh := Optimize(context.Background(), p, builder.BalasHammer(p), DefaultSolverOptions())

	require.Equal(t, StatusOptimal, nw.Status)
	require.Equal(t, StatusOptimal, bh.Status)
	assert.InDelta(t, nw.TotalCost, bh.TotalCost, problem.Epsilon)
}

func TestOptimize_DegenerateProblem(t *testing.T) {
	// Every supply matches one demand exactly, forcing zero-flow basic
	// cells and degenerate pivots.
	p := mustProblem(t,
		[][]float64{
			{5, 1, 9},
			{1, 9, 5},
			{9, 5, 1},
		},
		[]float64{10, 10, 10},
		[]float64{10, 10, 10},
	)

	res := Optimize(context.Background(), p, builder.Northwest(p), DefaultSolverOptions())
	require.NoError(t, res.Err)
	require.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 30, res.TotalCost, problem.Epsilon)
	require.NoError(t, res.Allocation.Validate(p))
	requireOptimalityCertificate(t, p, res.Allocation)
}

func TestOptimize_TrivialShapes(t *testing.T) {
	t.Run("single row", func(t *testing.T) {
		p := mustProblem(t, [][]float64{{5, 1, 3}}, []float64{30}, []float64{10, 15, 5})
		res := Optimize(context.Background(), p, builder.Northwest(p), DefaultSolverOptions())
		assert.Equal(t, StatusOptimal, res.Status)
		assert.Zero(t, res.Iterations)
	})
	t.Run("single column", func(t *testing.T) {
		p := mustProblem(t, [][]float64{{5}, {1}}, []float64{10, 20}, []float64{30})
		res := Optimize(context.Background(), p, builder.Northwest(p), DefaultSolverOptions())
		assert.Equal(t, StatusOptimal, res.Status)
		assert.Zero(t, res.Iterations)
	})
	t.Run("one by one", func(t *testing.T) {
		p := mustProblem(t, [][]float64{{7}}, []float64{42}, []float64{42})
		res := Optimize(context.Background(), p, builder.Northwest(p), DefaultSolverOptions())
		assert.Equal(t, StatusOptimal, res.Status)
		assert.InDelta(t, 294, res.TotalCost, problem.Epsilon)
	})
}

func TestOptimize_IterationBudget(t *testing.T) {
	p := scenario(t)
	a := builder.Northwest(p)
	start := a.TotalCost(p)

	res := Optimize(context.Background(), p, a, DefaultSolverOptions().WithMaxIterations(1))
	assert.Equal(t, StatusBudgetExhausted, res.Status)
	assert.Equal(t, 1, res.Iterations)
	assert.LessOrEqual(t, res.TotalCost, start+problem.Epsilon)
	require.NoError(t, res.Allocation.Validate(p))
}

func TestOptimize_ContextDeadline(t *testing.T) {
	p := scenario(t)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	res := Optimize(ctx, p, builder.Northwest(p), DefaultSolverOptions())
	assert.Equal(t, StatusBudgetExhausted, res.Status)
	require.NoError(t, res.Allocation.Validate(p))
}

func TestOptimize_ContextCancelled(t *testing.T) {
	p := scenario(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := Optimize(ctx, p, builder.Northwest(p), DefaultSolverOptions())
	assert.Equal(t, StatusFailed, res.Status)
	require.Error(t, res.Err)
	assert.True(t, apperror.Is(res.Err, apperror.CodeTimeout))
}

func TestOptimize_RepairsBrokenBasis(t *testing.T) {
	p := scenario(t)

	// Feasible flows but one basic cell short: the basis is a forest,
	// not a tree, and the loop must repair it before optimizing.
	a := allocation.New()
	a.Set(0, 0, 10)
	a.Set(0, 1, 10)
	a.Set(2, 1, 25)
	a.Set(1, 2, 30)

	res := Optimize(context.Background(), p, a, DefaultSolverOptions())
	require.NoError(t, res.Err)
	assert.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 235, res.TotalCost, problem.Epsilon)
	require.NoError(t, res.Allocation.Validate(p))
}

func TestOptimize_RepairsOverfullBasis(t *testing.T) {
	p := mustProblem(t,
		[][]float64{{1, 10}, {10, 1}},
		[]float64{10, 10},
		[]float64{10, 10},
	)

	// Feasible flows on all four cells: the basis is connected but
	// cyclic, so every node still gets a potential. The loop must not
	// certify this plan as optimal without dropping it to tree shape.
	a := allocation.New()
	a.Set(0, 0, 5)
	a.Set(0, 1, 5)
	a.Set(1, 0, 5)
	a.Set(1, 1, 5)

	res := Optimize(context.Background(), p, a, DefaultSolverOptions())
	require.NoError(t, res.Err)
	assert.Equal(t, StatusOptimal, res.Status)
	assert.GreaterOrEqual(t, res.Repairs, 1)
	require.NoError(t, res.Allocation.Validate(p))
	assert.InDelta(t, 20, res.TotalCost, problem.Epsilon)
	requireOptimalityCertificate(t, p, res.Allocation)
}

func BenchmarkOptimize(b *testing.B) {
	costs := make([][]float64, 30)
	supplies := make([]float64, 30)
	demands := make([]float64, 30)
	for i := range costs {
		costs[i] = make([]float64, 30)
		for j := range costs[i] {
			costs[i][j] = float64((i*31+j*17)%97 + 1)
		}
		supplies[i] = 100
		demands[i] = 100
	}
	p, err := problem.New(costs, supplies, demands)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		a := builder.BalasHammer(p)
		res := Optimize(context.Background(), p, a, DefaultSolverOptions())
		if res.Status != StatusOptimal {
			b.Fatalf("unexpected status: %s", res.Status)
		}
	}
}

func TestResolve_Defaults(t *testing.T) {
	opts := &SolverOptions{}
	eff := opts.Resolve(3, 3, 0)
	assert.Equal(t, problem.Epsilon, eff.Epsilon)
	assert.Equal(t, 1000, eff.MaxIterations)
	assert.Equal(t, 3, eff.MaxRepairAttempts)
	assert.Equal(t, SelectionBest, eff.Selection)

	big := opts.Resolve(600, 600, 500)
	assert.Equal(t, SelectionFirst, big.Selection)
	assert.Equal(t, 24000, big.MaxIterations)
}
