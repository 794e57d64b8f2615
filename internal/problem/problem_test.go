package problem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transport/pkg/apperror"
)

func TestNew_Valid(t *testing.T) {
	p, err := New(
		[][]float64{
			{4, 6, 8},
			{3, 5, 2},
			{7, 3, 6},
		},
		[]float64{20, 30, 25},
		[]float64{10, 35, 30},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, p.Rows())
	assert.Equal(t, 3, p.Cols())
	assert.InDelta(t, 75, p.TotalSupply(), Epsilon)
	assert.InDelta(t, 75, p.TotalDemand(), Epsilon)
	assert.True(t, p.IsBalanced())
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		costs    [][]float64
		supplies []float64
		demands  []float64
		code     apperror.ErrorCode
	}{
		{
			name:     "empty problem",
			costs:    nil,
			supplies: nil,
			demands:  nil,
			code:     apperror.CodeEmptyProblem,
		},
		{
			name:     "row count mismatch",
			costs:    [][]float64{{1, 2}},
			supplies: []float64{5, 5},
			demands:  []float64{5, 5},
			code:     apperror.CodeDimensionMismatch,
		},
		{
			name:     "column count mismatch",
			costs:    [][]float64{{1, 2}, {3}},
			supplies: []float64{5, 5},
			demands:  []float64{5, 5},
			code:     apperror.CodeDimensionMismatch,
		},
		{
			name:     "negative cost",
			costs:    [][]float64{{1, -2}, {3, 4}},
			supplies: []float64{5, 5},
			demands:  []float64{5, 5},
			code:     apperror.CodeNegativeCost,
		},
		{
			name:     "negative supply",
			costs:    [][]float64{{1, 2}, {3, 4}},
			supplies: []float64{-5, 15},
			demands:  []float64{5, 5},
			code:     apperror.CodeNegativeSupply,
		},
		{
			name:     "negative demand",
			costs:    [][]float64{{1, 2}, {3, 4}},
			supplies: []float64{5, 5},
			demands:  []float64{-5, 15},
			code:     apperror.CodeNegativeDemand,
		},
		{
			name:     "unbalanced",
			costs:    [][]float64{{1, 2}, {3, 4}},
			supplies: []float64{10, 10},
			demands:  []float64{5, 5},
			code:     apperror.CodeUnbalancedProblem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.costs, tt.supplies, tt.demands)
			require.Error(t, err)
			assert.True(t, apperror.Is(err, tt.code), "expected code %s, got %v", tt.code, err)
		})
	}
}

func TestRead_Valid(t *testing.T) {
	input := `3 3
4 6 8 20
3 5 2 30
7 3 6 25
10 35 30
`
	p, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, p.Rows())
	assert.Equal(t, 3, p.Cols())
	assert.Equal(t, []float64{20, 30, 25}, p.Supplies)
	assert.Equal(t, []float64{10, 35, 30}, p.Demands)
	assert.Equal(t, 2.0, p.Costs[1][2])
}

func TestRead_SkipsBlankLines(t *testing.T) {
	input := "2 2\n\n1 2 10\n3 4 10\n\n10 10\n"
	p, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, p.Rows())
}

func TestRead_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few lines", "2 2\n1 2 10"},
		{"bad header", "two columns\n1 2 10\n3 4 10\n10 10"},
		{"header with one number", "2\n1 2 10\n3 4 10\n10 10"},
		{"zero dimension", "0 2\n10 10"},
		{"wrong supplier value count", "2 2\n1 2\n3 4 10\n10 10"},
		{"non-numeric value", "2 2\n1 x 10\n3 4 10\n10 10"},
		{"wrong demand count", "2 2\n1 2 10\n3 4 10\n10"},
		{"extra lines", "2 2\n1 2 10\n3 4 10\n10 10\n5 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.CodeMalformedFile), "expected malformed file error, got %v", err)
		})
	}
}

func TestRead_UnbalancedInput(t *testing.T) {
	input := "2 2\n1 2 10\n3 4 10\n5 5\n"
	_, err := Read(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeUnbalancedProblem))
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "problem.txt")
	content := "2 3\n1 2 3 15\n4 5 6 15\n10 10 10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	p, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Rows())
	assert.Equal(t, 3, p.Cols())
}

func TestReadFile_NotFound(t *testing.T) {
	_, err := ReadFile("/nonexistent/problem.txt")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeMalformedFile))
}
