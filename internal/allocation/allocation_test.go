package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transport/internal/problem"
	"transport/pkg/apperror"
)

func testProblem(t *testing.T) *problem.Problem {
	t.Helper()
	p, err := problem.New(
		[][]float64{
			{4, 6, 8},
			{3, 5, 2},
			{7, 3, 6},
		},
		[]float64{20, 30, 25},
		[]float64{10, 35, 30},
	)
	require.NoError(t, err)
	return p
}

func TestAllocation_SetFlowRemove(t *testing.T) {
	a := New()

	a.Set(0, 1, 12.5)
	assert.True(t, a.IsBasic(0, 1))
	assert.Equal(t, 12.5, a.Flow(0, 1))

	// Zero-flow cells stay basic until removed.
	a.Set(1, 2, 0)
	assert.True(t, a.IsBasic(1, 2))
	assert.Equal(t, 0.0, a.Flow(1, 2))

	assert.False(t, a.IsBasic(2, 2))
	assert.Equal(t, 0.0, a.Flow(2, 2))

	a.Remove(0, 1)
	assert.False(t, a.IsBasic(0, 1))
	assert.Equal(t, 1, a.Len())
}

func TestAllocation_BasicCellsSorted(t *testing.T) {
	a := New()
	a.Set(2, 0, 1)
	a.Set(0, 2, 1)
	a.Set(0, 1, 1)
	a.Set(1, 1, 1)

	cells := a.BasicCells()
	assert.Equal(t, []Cell{{0, 1}, {0, 2}, {1, 1}, {2, 0}}, cells)
}

func TestAllocation_TotalCost(t *testing.T) {
	p := testProblem(t)
	a := New()
	a.Set(0, 0, 10)
	a.Set(0, 1, 10)
	a.Set(1, 1, 0)
	a.Set(1, 2, 30)
	a.Set(2, 1, 25)

	// 10*4 + 10*6 + 0*5 + 30*2 + 25*3 = 235
	assert.InDelta(t, 235, a.TotalCost(p), problem.Epsilon)
}

func TestAllocation_Clone(t *testing.T) {
	a := New()
	a.Set(0, 0, 5)

	cp := a.Clone()
	cp.Set(0, 0, 7)
	cp.Set(1, 1, 3)

	assert.Equal(t, 5.0, a.Flow(0, 0))
	assert.False(t, a.IsBasic(1, 1))
	assert.Equal(t, 7.0, cp.Flow(0, 0))
}

func TestAllocation_Validate(t *testing.T) {
	p := testProblem(t)

	valid := New()
	valid.Set(0, 0, 10)
	valid.Set(0, 1, 10)
	valid.Set(1, 1, 0)
	valid.Set(1, 2, 30)
	valid.Set(2, 1, 25)
	require.NoError(t, valid.Validate(p))

	t.Run("row sum mismatch", func(t *testing.T) {
		a := valid.Clone()
		a.Set(0, 0, 5)
		err := a.Validate(p)
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.CodeInvariantViolation))
	})

	t.Run("negative flow", func(t *testing.T) {
		a := valid.Clone()
		a.Set(0, 0, 15)
		a.Set(0, 1, -5)
		// Rows balance but a flow is negative.
		a.Set(2, 1, 30)
		a.Set(1, 1, 10)
		a.Set(1, 2, 20)
		err := a.Validate(p)
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.CodeInvariantViolation))
	})

	t.Run("wrong basis count", func(t *testing.T) {
		a := valid.Clone()
		a.Set(2, 2, 0)
		err := a.Validate(p)
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.CodeWrongBasisCount))
	})

	t.Run("cell outside matrix", func(t *testing.T) {
		a := valid.Clone()
		a.Remove(1, 1)
		a.Set(5, 5, 0)
		err := a.Validate(p)
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.CodeInvariantViolation))
	})
}
