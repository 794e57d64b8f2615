package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"transport/internal/algorithms"
	"transport/internal/allocation"
	"transport/internal/builder"
	"transport/internal/problem"
	"transport/internal/repository"
	"transport/pkg/apperror"
	"transport/pkg/cache"
	"transport/pkg/config"
	"transport/pkg/logger"
	"transport/pkg/metrics"
	"transport/pkg/telemetry"
)

// SolverService связывает построение плана, оптимизацию, кэш и историю
type SolverService struct {
	cfg     config.SolverConfig
	metrics *metrics.Metrics
	cache   *cache.SolverCache
	history repository.SolveRepository
}

// NewSolverService создаёт сервис с настройками решателя
func NewSolverService(cfg config.SolverConfig) *SolverService {
	return &SolverService{
		cfg:     cfg,
		metrics: metrics.Get(),
	}
}

// WithCache подключает кэш результатов
func (s *SolverService) WithCache(c *cache.SolverCache) *SolverService {
	s.cache = c
	return s
}

// WithHistory подключает хранилище истории решений
func (s *SolverService) WithHistory(repo repository.SolveRepository) *SolverService {
	s.history = repo
	return s
}

// SolveRequest параметры одного решения
type SolveRequest struct {
	Problem   *problem.Problem
	Strategy  string                    // пустая строка — стратегия из конфигурации
	Options   *algorithms.SolverOptions // nil — опции из конфигурации
	SkipCache bool
}

// SolveResponse результат решения
type SolveResponse struct {
	SolveID   string
	Strategy  string
	Result    *algorithms.SolveResult
	FromCache bool
}

// Solve решает задачу: начальный план выбранной стратегией, затем
// оптимизация методом потенциалов
func (s *SolverService) Solve(ctx context.Context, req *SolveRequest) (*SolveResponse, error) {
	if req == nil || req.Problem == nil {
		return nil, apperror.ErrNilProblem
	}
	p := req.Problem

	strategy := req.Strategy
	if strategy == "" {
		strategy = s.cfg.DefaultStrategy
	}
	if strategy == "" {
		strategy = builder.StrategyBalasHammer
	}

	ctx, span := telemetry.StartSpan(ctx, "SolverService.Solve",
		trace.WithAttributes(telemetry.ProblemAttributes(p.Rows(), p.Cols(), p.TotalSupply())...),
		trace.WithAttributes(attribute.String(telemetry.AttrStrategy, strategy)),
	)
	defer span.End()

	solveID := uuid.NewString()
	log := logger.WithSolveID(solveID)

	if err := p.Validate(); err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	s.metrics.RecordProblemSize("solve", p.Rows(), p.Cols())
	s.metrics.SolvesInFlight.Inc()
	defer s.metrics.SolvesInFlight.Dec()

	// Проверяем кэш
	if s.cache != nil && !req.SkipCache {
		cached, found, err := s.cache.Get(ctx, p, strategy)
		if err != nil {
			log.Warn("cache lookup failed", "error", err)
			s.metrics.RecordCacheOperation("get", "error")
		} else if found {
			s.metrics.RecordCacheOperation("get", "hit")
			telemetry.AddEvent(ctx, "cache_hit",
				attribute.Float64(telemetry.AttrTotalCost, cached.TotalCost))
			span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
			return &SolveResponse{
				SolveID:   solveID,
				Strategy:  strategy,
				Result:    resultFromCache(cached),
				FromCache: true,
			}, nil
		} else {
			s.metrics.RecordCacheOperation("get", "miss")
		}
	}
	span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, false))

	// Начальный план
	buildStart := time.Now()
	plan, err := builder.Build(strategy, p)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}
	s.metrics.RecordBuildOperation(strategy, time.Since(buildStart))

	// Оптимизация
	opts := s.buildOptions(p, req.Options)
	result := algorithms.Optimize(ctx, p, plan, opts)

	span.SetAttributes(telemetry.SolverAttributes(strategy, result.Iterations, result.TotalCost, string(result.Status))...)

	for i := 0; i < result.DegeneratePivots; i++ {
		s.metrics.RecordDegeneratePivot()
	}
	for i := 0; i < result.Repairs; i++ {
		s.metrics.RecordBasisRepair(result.Err == nil)
	}
	s.metrics.RecordSolveOperation(strategy, result.Err == nil, result.Duration, result.TotalCost, result.Iterations)

	if result.Err != nil {
		telemetry.SetError(ctx, result.Err)
		log.Error("solve failed",
			"strategy", strategy,
			"iterations", result.Iterations,
			"error", result.Err)
		return &SolveResponse{SolveID: solveID, Strategy: strategy, Result: result}, result.Err
	}

	log.Info("problem solved",
		"strategy", strategy,
		"status", string(result.Status),
		"total_cost", result.TotalCost,
		"iterations", result.Iterations,
		"duration_ms", result.Duration.Milliseconds())

	// Сохраняем в кэш
	if s.cache != nil {
		if err := s.cache.Set(ctx, p, strategy, cacheFromResult(p, result), 0); err != nil {
			log.Warn("failed to cache solve result", "error", err)
			s.metrics.RecordCacheOperation("set", "error")
		} else {
			s.metrics.RecordCacheOperation("set", "ok")
		}
	}

	// Записываем историю
	if s.history != nil {
		if err := s.recordHistory(ctx, p, strategy, opts, result); err != nil {
			log.Warn("failed to record solve history", "error", err)
		}
	}

	return &SolveResponse{SolveID: solveID, Strategy: strategy, Result: result}, nil
}

// BuildInitial строит опорный план без оптимизации
func (s *SolverService) BuildInitial(ctx context.Context, p *problem.Problem, strategy string) (*allocation.Allocation, error) {
	if p == nil {
		return nil, apperror.ErrNilProblem
	}
	if strategy == "" {
		strategy = s.cfg.DefaultStrategy
	}

	ctx, span := telemetry.StartSpan(ctx, "SolverService.BuildInitial",
		trace.WithAttributes(attribute.String(telemetry.AttrStrategy, strategy)),
	)
	defer span.End()

	s.metrics.RecordProblemSize("build", p.Rows(), p.Cols())

	start := time.Now()
	plan, err := builder.Build(strategy, p)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}
	s.metrics.RecordBuildOperation(strategy, time.Since(start))
	span.SetAttributes(attribute.Int(telemetry.AttrBasicCells, plan.Len()))
	return plan, nil
}

// Optimize доводит готовый план до оптимума
func (s *SolverService) Optimize(ctx context.Context, p *problem.Problem, plan *allocation.Allocation, opts *algorithms.SolverOptions) (*algorithms.SolveResult, error) {
	if p == nil {
		return nil, apperror.ErrNilProblem
	}
	if plan == nil {
		return nil, apperror.ErrNilAllocation
	}

	ctx, span := telemetry.StartSpan(ctx, "SolverService.Optimize",
		trace.WithAttributes(telemetry.ProblemAttributes(p.Rows(), p.Cols(), p.TotalSupply())...),
	)
	defer span.End()

	if opts == nil {
		opts = s.buildOptions(p, nil)
	}
	result := algorithms.Optimize(ctx, p, plan, opts)
	span.SetAttributes(telemetry.SolverAttributes("", result.Iterations, result.TotalCost, string(result.Status))...)
	if result.Err != nil {
		telemetry.SetError(ctx, result.Err)
		return result, result.Err
	}
	return result, nil
}

// SolveFile читает задачу из файла и решает её
func (s *SolverService) SolveFile(ctx context.Context, path, strategy string) (*SolveResponse, error) {
	p, err := problem.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.Solve(ctx, &SolveRequest{Problem: p, Strategy: strategy})
}

// History возвращает список прошлых решений
func (s *SolverService) History(ctx context.Context, opts *repository.ListOptions) ([]*repository.SolveSummary, int64, error) {
	if s.history == nil {
		return nil, 0, apperror.New(apperror.CodeNotFound, "solve history is not enabled")
	}
	return s.history.List(ctx, opts)
}

// Statistics возвращает агрегированную статистику решений
func (s *SolverService) Statistics(ctx context.Context, startTime, endTime *time.Time) (*repository.Statistics, error) {
	if s.history == nil {
		return nil, apperror.New(apperror.CodeNotFound, "solve history is not enabled")
	}
	return s.history.GetStatistics(ctx, startTime, endTime)
}

func (s *SolverService) buildOptions(p *problem.Problem, override *algorithms.SolverOptions) *algorithms.SolverOptions {
	opts := override
	if opts == nil {
		opts = algorithms.DefaultSolverOptions().
			WithSelection(algorithms.ParseSelection(s.cfg.DefaultSelection)).
			WithMaxIterations(s.cfg.MaxIterations).
			WithTimeout(s.cfg.TimeLimit).
			WithMaxRepairAttempts(s.cfg.MaxRepairAttempts)
		if s.cfg.ScanSampleSize > 0 {
			opts.RepairSampleSize = s.cfg.ScanSampleSize
		}
	}
	if s.cfg.FirstImprovementThreshold > 0 && p.Rows() >= s.cfg.FirstImprovementThreshold {
		opts.WithSelection(algorithms.SelectionFirst)
	}
	return opts
}

func resultFromCache(cached *cache.CachedSolveResult) *algorithms.SolveResult {
	a := allocation.New()
	for _, sh := range cached.Shipments {
		a.Set(sh.Row, sh.Col, sh.Flow)
	}
	return &algorithms.SolveResult{
		Allocation: a,
		TotalCost:  cached.TotalCost,
		Iterations: cached.Iterations,
		Status:     algorithms.Status(cached.Status),
	}
}

func cacheFromResult(p *problem.Problem, result *algorithms.SolveResult) *cache.CachedSolveResult {
	shipments := make([]*cache.ShipmentCache, 0, result.Allocation.Len())
	for _, c := range result.Allocation.BasicCells() {
		shipments = append(shipments, &cache.ShipmentCache{
			Row:  c.Row,
			Col:  c.Col,
			Flow: result.Allocation.Flow(c.Row, c.Col),
			Cost: p.Costs[c.Row][c.Col],
		})
	}
	return &cache.CachedSolveResult{
		TotalCost:         result.TotalCost,
		Status:            string(result.Status),
		Iterations:        result.Iterations,
		ComputationTimeMs: float64(result.Duration.Microseconds()) / 1000.0,
		Shipments:         shipments,
	}
}

func (s *SolverService) recordHistory(
	ctx context.Context,
	p *problem.Problem,
	strategy string,
	opts *algorithms.SolverOptions,
	result *algorithms.SolveResult,
) error {
	problemData, err := json.Marshal(map[string]interface{}{
		"rows":     p.Rows(),
		"cols":     p.Cols(),
		"costs":    p.Costs,
		"supplies": p.Supplies,
		"demands":  p.Demands,
	})
	if err != nil {
		return err
	}

	solutionData, err := json.Marshal(cacheFromResult(p, result))
	if err != nil {
		return err
	}

	rec := &repository.SolveRecord{
		ProblemHash:       cache.ProblemHash(p),
		Strategy:          strategy,
		Selection:         opts.Selection.String(),
		Status:            string(result.Status),
		Rows:              p.Rows(),
		Cols:              p.Cols(),
		TotalCost:         result.TotalCost,
		Iterations:        result.Iterations,
		ComputationTimeMs: float64(result.Duration.Microseconds()) / 1000.0,
		ProblemData:       problemData,
		SolutionData:      solutionData,
	}
	return s.history.Create(ctx, rec)
}
