package cache

import (
	"context"
	"testing"
	"time"

	"transport/internal/problem"
)

func testProblem() *problem.Problem {
	return &problem.Problem{
		Costs: [][]float64{
			{4, 6, 8},
			{3, 5, 2},
			{7, 3, 6},
		},
		Supplies: []float64{20, 30, 25},
		Demands:  []float64{10, 35, 30},
	}
}

func TestSolverCache_SetGet(t *testing.T) {
	memCache := NewMemoryCache(nil)
	defer memCache.Close()

	solverCache := NewSolverCache(memCache, 5*time.Minute)

	ctx := context.Background()
	p := testProblem()

	result := &CachedSolveResult{
		TotalCost:         1235,
		Status:            "optimal",
		Iterations:        5,
		ComputationTimeMs: 1.5,
		Shipments: []*ShipmentCache{
			{Row: 0, Col: 0, Flow: 10, Cost: 4},
			{Row: 0, Col: 1, Flow: 10, Cost: 6},
		},
	}

	// Set
	err := solverCache.Set(ctx, p, "balas_hammer", result, 0)
	if err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	// Get
	got, found, err := solverCache.Get(ctx, p, "balas_hammer")
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if !found {
		t.Fatal("expected to find cached result")
	}

	if got.TotalCost != result.TotalCost {
		t.Errorf("expected total cost %f, got %f", result.TotalCost, got.TotalCost)
	}
	if got.Iterations != result.Iterations {
		t.Errorf("expected %d iterations, got %d", result.Iterations, got.Iterations)
	}
	if len(got.Shipments) != 2 {
		t.Errorf("expected 2 shipments, got %d", len(got.Shipments))
	}
}

func TestSolverCache_GetNotFound(t *testing.T) {
	memCache := NewMemoryCache(nil)
	defer memCache.Close()

	solverCache := NewSolverCache(memCache, 5*time.Minute)

	ctx := context.Background()

	result, found, err := solverCache.Get(ctx, testProblem(), "northwest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected not found")
	}
	if result != nil {
		t.Error("expected nil result")
	}
}

func TestSolverCache_DifferentStrategy(t *testing.T) {
	memCache := NewMemoryCache(nil)
	defer memCache.Close()

	solverCache := NewSolverCache(memCache, 5*time.Minute)

	ctx := context.Background()
	p := testProblem()

	result := &CachedSolveResult{TotalCost: 1235}

	// Set for one strategy
	solverCache.Set(ctx, p, "balas_hammer", result, 0)

	// Try to get for different strategy
	_, found, _ := solverCache.Get(ctx, p, "northwest")
	if found {
		t.Error("should not find result for different strategy")
	}
}

func TestSolverCache_Invalidate(t *testing.T) {
	memCache := NewMemoryCache(nil)
	defer memCache.Close()

	solverCache := NewSolverCache(memCache, 5*time.Minute)

	ctx := context.Background()
	p := testProblem()

	result := &CachedSolveResult{TotalCost: 1235}

	// Set
	solverCache.Set(ctx, p, "balas_hammer", result, 0)
	solverCache.Set(ctx, p, "northwest", result, 0)

	// Invalidate
	err := solverCache.Invalidate(ctx, p)
	if err != nil {
		t.Fatalf("failed to invalidate: %v", err)
	}

	// Both should be gone
	_, found1, _ := solverCache.Get(ctx, p, "balas_hammer")
	_, found2, _ := solverCache.Get(ctx, p, "northwest")

	if found1 || found2 {
		t.Error("expected cache to be invalidated")
	}
}

func TestSolverCache_InvalidateAll(t *testing.T) {
	memCache := NewMemoryCache(nil)
	defer memCache.Close()

	solverCache := NewSolverCache(memCache, 5*time.Minute)

	ctx := context.Background()

	p1 := testProblem()
	p2 := &problem.Problem{
		Costs:    [][]float64{{1, 2}, {3, 4}},
		Supplies: []float64{5, 5},
		Demands:  []float64{5, 5},
	}

	result := &CachedSolveResult{TotalCost: 10}

	solverCache.Set(ctx, p1, "balas_hammer", result, 0)
	solverCache.Set(ctx, p2, "northwest", result, 0)

	count, err := solverCache.InvalidateAll(ctx)
	if err != nil {
		t.Fatalf("failed to invalidate all: %v", err)
	}

	if count != 2 {
		t.Errorf("expected 2 invalidated, got %d", count)
	}
}

func TestSolverCache_CorruptedEntry(t *testing.T) {
	memCache := NewMemoryCache(nil)
	defer memCache.Close()

	solverCache := NewSolverCache(memCache, 5*time.Minute)

	ctx := context.Background()
	p := testProblem()

	key := BuildSolveKey(ProblemHash(p), "balas_hammer")
	memCache.Set(ctx, key, []byte("not json"), time.Minute)

	got, found, err := solverCache.Get(ctx, p, "balas_hammer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found || got != nil {
		t.Error("corrupted entry should be treated as a miss")
	}

	// Corrupted entry should have been evicted
	if _, err := memCache.Get(ctx, key); err != ErrKeyNotFound {
		t.Error("corrupted entry should be deleted from the underlying cache")
	}
}
