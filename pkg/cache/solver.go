package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"transport/internal/problem"
)

// SolverCache специализированный кэш для результатов решателя
type SolverCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedSolveResult кэшированный результат
type CachedSolveResult struct {
	TotalCost         float64          `json:"total_cost"`
	Status            string           `json:"status"`
	Iterations        int              `json:"iterations"`
	ComputationTimeMs float64          `json:"computation_time_ms"`
	Shipments         []*ShipmentCache `json:"shipments,omitempty"`
	ComputedAt        time.Time        `json:"computed_at"`
}

// ShipmentCache кэшированная базисная поставка
type ShipmentCache struct {
	Row  int     `json:"row"`
	Col  int     `json:"col"`
	Flow float64 `json:"flow"`
	Cost float64 `json:"cost"`
}

// NewSolverCache создаёт кэш для результатов решателя
func NewSolverCache(cache Cache, defaultTTL time.Duration) *SolverCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &SolverCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get получает кэшированный результат
func (sc *SolverCache) Get(ctx context.Context, p *problem.Problem, strategy string) (*CachedSolveResult, bool, error) {
	problemHash := ProblemHash(p)
	key := BuildSolveKey(problemHash, strategy)

	data, err := sc.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result CachedSolveResult
	if err := json.Unmarshal(data, &result); err != nil {
		// Повреждённый кэш — удаляем, ошибку удаления игнорируем намеренно
		_ = sc.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}

	return &result, true, nil
}

// Set сохраняет результат в кэш
func (sc *SolverCache) Set(ctx context.Context, p *problem.Problem, strategy string, result *CachedSolveResult, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = sc.defaultTTL
	}

	problemHash := ProblemHash(p)
	key := BuildSolveKey(problemHash, strategy)

	result.ComputedAt = time.Now()

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return sc.cache.Set(ctx, key, data, ttl)
}

// Invalidate удаляет кэш для задачи
func (sc *SolverCache) Invalidate(ctx context.Context, p *problem.Problem) error {
	problemHash := ProblemHash(p)
	pattern := fmt.Sprintf("solve:*:%s", problemHash)
	_, err := sc.cache.DeleteByPattern(ctx, pattern)
	return err
}

// InvalidateAll удаляет весь кэш результатов решателя
func (sc *SolverCache) InvalidateAll(ctx context.Context) (int64, error) {
	return sc.cache.DeleteByPattern(ctx, "solve:*")
}
