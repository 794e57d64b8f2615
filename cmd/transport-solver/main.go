package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"transport/internal/builder"
	"transport/internal/problem"
	"transport/internal/repository"
	"transport/internal/service"
	"transport/migrations"
	"transport/pkg/cache"
	"transport/pkg/config"
	"transport/pkg/database"
	"transport/pkg/logger"
	"transport/pkg/metrics"
	"transport/pkg/telemetry"
)

func main() {
	var (
		file      = flag.String("file", "", "путь к файлу задачи")
		strategy  = flag.String("strategy", "", "стратегия опорного плана: northwest, balas_hammer")
		skipCache = flag.Bool("no-cache", false, "не использовать кэш результатов")
		jsonOut   = flag.Bool("json", false, "вывести результат в формате JSON")
		history   = flag.Bool("history", false, "показать историю решений вместо запуска решателя")
		limit     = flag.Int("limit", 20, "количество записей истории")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Телеметрия
	if cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("Failed to init telemetry", "error", err)
		} else {
			defer func() {
				if err := tp.Shutdown(context.Background()); err != nil {
					logger.Log.Warn("Failed to shutdown telemetry", "error", err)
				}
			}()
		}
	}

	m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartMetricsServer(cfg.Metrics.Port); err != nil {
				logger.Log.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	svc := service.NewSolverService(cfg.Solver)

	// Кэш результатов
	if cfg.Cache.Enabled {
		c, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Log.Warn("Failed to init cache, continuing without it", "error", err)
		} else {
			defer c.Close()
			svc.WithCache(cache.NewSolverCache(c, cfg.Cache.DefaultTTL))
		}
	}

	// История решений в PostgreSQL
	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			logger.Fatal("failed to connect to database", "error", err)
		}
		defer db.Close()

		if err := database.RunMigrations(
			ctx,
			db.Pool(),
			&cfg.Database,
			migrations.PostgresMigrations,
			"postgres",
		); err != nil {
			logger.Fatal("failed to run migrations", "error", err)
		}

		svc.WithHistory(repository.NewPostgresSolveRepository(db))
	}

	if *history {
		if err := printHistory(ctx, svc, *limit); err != nil {
			logger.Fatal("failed to list history", "error", err)
		}
		return
	}

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	resp, err := svc.Solve(ctx, solveRequest(*file, *strategy, *skipCache))
	if err != nil {
		logger.Fatal("solve failed", "error", err)
	}

	if *jsonOut {
		printSolutionJSON(resp)
	} else {
		printSolution(resp)
	}
}

func solveRequest(path, strategy string, skipCache bool) *service.SolveRequest {
	p, err := problem.ReadFile(path)
	if err != nil {
		logger.Fatal("failed to read problem", "error", err, "file", path)
	}
	if strategy != "" && strategy != builder.StrategyNorthwest && strategy != builder.StrategyBalasHammer {
		logger.Fatal("unknown strategy", "strategy", strategy)
	}
	return &service.SolveRequest{Problem: p, Strategy: strategy, SkipCache: skipCache}
}

func printSolution(resp *service.SolveResponse) {
	r := resp.Result
	fmt.Printf("status:     %s\n", r.Status)
	fmt.Printf("strategy:   %s\n", resp.Strategy)
	fmt.Printf("total cost: %g\n", r.TotalCost)
	fmt.Printf("iterations: %d\n", r.Iterations)
	if resp.FromCache {
		fmt.Println("source:     cache")
	} else {
		fmt.Printf("duration:   %s\n", r.Duration)
	}
	fmt.Println("shipments:")
	for _, c := range r.Allocation.BasicCells() {
		flow := r.Allocation.Flow(c.Row, c.Col)
		if flow > 0 {
			fmt.Printf("  supplier %d -> destination %d: %g\n", c.Row, c.Col, flow)
		}
	}
}

func printSolutionJSON(resp *service.SolveResponse) {
	r := resp.Result
	type shipment struct {
		Row  int     `json:"row"`
		Col  int     `json:"col"`
		Flow float64 `json:"flow"`
	}
	out := struct {
		SolveID    string     `json:"solve_id"`
		Strategy   string     `json:"strategy"`
		Status     string     `json:"status"`
		TotalCost  float64    `json:"total_cost"`
		Iterations int        `json:"iterations"`
		DurationMs float64    `json:"duration_ms"`
		FromCache  bool       `json:"from_cache"`
		Shipments  []shipment `json:"shipments"`
	}{
		SolveID:    resp.SolveID,
		Strategy:   resp.Strategy,
		Status:     string(r.Status),
		TotalCost:  r.TotalCost,
		Iterations: r.Iterations,
		DurationMs: float64(r.Duration.Microseconds()) / 1000.0,
		FromCache:  resp.FromCache,
	}
	for _, c := range r.Allocation.BasicCells() {
		if flow := r.Allocation.Flow(c.Row, c.Col); flow > 0 {
			out.Shipments = append(out.Shipments, shipment{Row: c.Row, Col: c.Col, Flow: flow})
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatal("failed to encode result", "error", err)
	}
}

func printHistory(ctx context.Context, svc *service.SolverService, limit int) error {
	summaries, total, err := svc.History(ctx, &repository.ListOptions{
		Limit: limit,
		Sort:  repository.SortByCreatedDesc,
	})
	if err != nil {
		return err
	}

	fmt.Printf("total solves: %d\n", total)
	for _, s := range summaries {
		fmt.Printf("%s  %-12s %-16s %dx%d cost=%g iters=%d %.1fms\n",
			s.CreatedAt.Format("2006-01-02 15:04:05"),
			s.Strategy, s.Status, s.Rows, s.Cols, s.TotalCost, s.Iterations, s.ComputationTimeMs)
	}
	return nil
}
