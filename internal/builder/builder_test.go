package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transport/internal/allocation"
	"transport/internal/basis"
	"transport/internal/problem"
	"transport/pkg/apperror"
)

func mustProblem(t *testing.T, costs [][]float64, supplies, demands []float64) *problem.Problem {
	t.Helper()
	p, err := problem.New(costs, supplies, demands)
	require.NoError(t, err)
	return p
}

// requireValidPlan checks the guarantees every builder must honor:
// feasibility, n+m-1 basic cells and a spanning-tree basis.
func requireValidPlan(t *testing.T, p *problem.Problem, a *allocation.Allocation) {
	t.Helper()
	require.NoError(t, a.Validate(p))
	g := basis.FromAllocation(a, p.Rows(), p.Cols())
	require.True(t, g.IsSpanningTree(), "basis graph must be a spanning tree")
}

func TestNorthwest(t *testing.T) {
	p := mustProblem(t,
		[][]float64{
			{4, 6, 8},
			{3, 5, 2},
			{7, 3, 6},
		},
		[]float64{20, 30, 25},
		[]float64{10, 35, 30},
	)

	a := Northwest(p)
	requireValidPlan(t, p, a)

	// The sweep ignores costs: 10 and 10 from row 0, then 25+5 down
	// column 1, then 25 in the corner.
	assert.Equal(t, 10.0, a.Flow(0, 0))
	assert.Equal(t, 10.0, a.Flow(0, 1))
	assert.Equal(t, 25.0, a.Flow(1, 1))
	assert.Equal(t, 5.0, a.Flow(1, 2))
	assert.Equal(t, 25.0, a.Flow(2, 2))
}

func TestNorthwest_Degenerate(t *testing.T) {
	// Supply 10 exactly matches demand 10 on the first cell, so the
	// sweep must keep a zero-flow basic cell to reach n+m-1.
	p := mustProblem(t,
		[][]float64{
			{1, 2},
			{3, 4},
		},
		[]float64{10, 10},
		[]float64{10, 10},
	)

	a := Northwest(p)
	requireValidPlan(t, p, a)
	assert.Equal(t, 3, a.Len())
	assert.True(t, a.IsBasic(1, 0), "the tie must advance the row and keep (1,0) basic")
	assert.Equal(t, 0.0, a.Flow(1, 0))
}

func TestBalasHammer(t *testing.T) {
	p := mustProblem(t,
		[][]float64{
			{4, 6, 8},
			{3, 5, 2},
			{7, 3, 6},
		},
		[]float64{20, 30, 25},
		[]float64{10, 35, 30},
	)

	a := BalasHammer(p)
	requireValidPlan(t, p, a)

	// The regret heuristic lands at or below the northwest cost.
	nw := Northwest(p)
	assert.LessOrEqual(t, a.TotalCost(p), nw.TotalCost(p))
}

func TestBalasHammer_Degenerate(t *testing.T) {
	p := mustProblem(t,
		[][]float64{
			{1, 10},
			{10, 1},
		},
		[]float64{10, 10},
		[]float64{10, 10},
	)

	a := BalasHammer(p)
	requireValidPlan(t, p, a)
	assert.Equal(t, 3, a.Len())
	// Both cheap diagonal cells must carry the flow.
	assert.Equal(t, 10.0, a.Flow(0, 0))
	assert.Equal(t, 10.0, a.Flow(1, 1))
}

func TestBuilders_SingleRow(t *testing.T) {
	p := mustProblem(t,
		[][]float64{{5, 1, 3}},
		[]float64{30},
		[]float64{10, 15, 5},
	)

	for _, strategy := range []string{StrategyNorthwest, StrategyBalasHammer} {
		t.Run(strategy, func(t *testing.T) {
			a, err := Build(strategy, p)
			require.NoError(t, err)
			requireValidPlan(t, p, a)
			// A single supplier has no choice: every column takes its
			// full demand.
			assert.Equal(t, 10.0, a.Flow(0, 0))
			assert.Equal(t, 15.0, a.Flow(0, 1))
			assert.Equal(t, 5.0, a.Flow(0, 2))
		})
	}
}

func TestBuilders_SingleColumn(t *testing.T) {
	p := mustProblem(t,
		[][]float64{{5}, {1}, {3}},
		[]float64{10, 15, 5},
		[]float64{30},
	)

	for _, strategy := range []string{StrategyNorthwest, StrategyBalasHammer} {
		t.Run(strategy, func(t *testing.T) {
			a, err := Build(strategy, p)
			require.NoError(t, err)
			requireValidPlan(t, p, a)
			assert.Equal(t, 10.0, a.Flow(0, 0))
			assert.Equal(t, 15.0, a.Flow(1, 0))
			assert.Equal(t, 5.0, a.Flow(2, 0))
		})
	}
}

func TestBuilders_OneByOne(t *testing.T) {
	p := mustProblem(t, [][]float64{{7}}, []float64{42}, []float64{42})

	for _, strategy := range []string{StrategyNorthwest, StrategyBalasHammer} {
		a, err := Build(strategy, p)
		require.NoError(t, err)
		requireValidPlan(t, p, a)
		assert.Equal(t, 42.0, a.Flow(0, 0))
	}
}

func TestBuild_UnknownStrategy(t *testing.T) {
	p := mustProblem(t, [][]float64{{7}}, []float64{42}, []float64{42})

	_, err := Build("steepest_descent", p)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeSolverError))
}

func TestBuild_NilProblem(t *testing.T) {
	_, err := Build(StrategyNorthwest, nil)
	require.Error(t, err)
}
