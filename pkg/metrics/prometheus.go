package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics глобальный контейнер метрик
type Metrics struct {
	// Бизнес-метрики
	SolveOperationsTotal *prometheus.CounterVec
	SolveDuration        *prometheus.HistogramVec
	BuildDuration        *prometheus.HistogramVec
	ObjectiveCost        *prometheus.GaugeVec
	PivotIterations      *prometheus.HistogramVec
	DegeneratePivots     prometheus.Counter
	BasisRepairsTotal    *prometheus.CounterVec
	ProblemRowsTotal     *prometheus.HistogramVec
	ProblemColsTotal     *prometheus.HistogramVec
	SolvesInFlight       prometheus.Gauge

	// Кэш
	CacheOperationsTotal *prometheus.CounterVec

	// Системные метрики
	MemoryUsage *prometheus.GaugeVec
	Goroutines  prometheus.Gauge

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics инициализирует метрики
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		// Бизнес-метрики
		SolveOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_operations_total",
				Help:      "Total number of solve operations",
			},
			[]string{"strategy", "status"},
		),

		SolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Duration of solve operations",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"strategy"},
		),

		BuildDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "build_duration_seconds",
				Help:      "Duration of initial plan construction",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
			[]string{"strategy"},
		),

		ObjectiveCost: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "objective_cost",
				Help:      "Last calculated total transportation cost",
			},
			[]string{"strategy"},
		),

		PivotIterations: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pivot_iterations",
				Help:      "Number of pivot iterations per solve",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
			},
			[]string{"strategy"},
		),

		DegeneratePivots: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "degenerate_pivots_total",
				Help:      "Total number of zero-shift pivots",
			},
		),

		BasisRepairsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "basis_repairs_total",
				Help:      "Total number of basis connectivity repairs",
			},
			[]string{"outcome"},
		),

		ProblemRowsTotal: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "problem_rows_total",
				Help:      "Number of supply rows in processed problems",
				Buckets:   []float64{2, 5, 10, 50, 100, 500, 1000, 5000},
			},
			[]string{"operation"},
		),

		ProblemColsTotal: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "problem_cols_total",
				Help:      "Number of demand columns in processed problems",
				Buckets:   []float64{2, 5, 10, 50, 100, 500, 1000, 5000},
			},
			[]string{"operation"},
		),

		SolvesInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solves_in_flight",
				Help:      "Current number of solve operations being processed",
			},
		),

		// Кэш
		CacheOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_operations_total",
				Help:      "Total number of result cache operations",
			},
			[]string{"operation", "result"},
		),

		// Системные метрики
		MemoryUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage",
			},
			[]string{"type"},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("transport", "")
	}
	return defaultMetrics
}

// RecordSolveOperation записывает метрики операции решения
func (m *Metrics) RecordSolveOperation(strategy string, success bool, duration time.Duration, cost float64, iterations int) {
	status := "success"
	if !success {
		status = "error"
	}

	m.SolveOperationsTotal.WithLabelValues(strategy, status).Inc()
	m.SolveDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	m.ObjectiveCost.WithLabelValues(strategy).Set(cost)
	m.PivotIterations.WithLabelValues(strategy).Observe(float64(iterations))
}

// RecordBuildOperation записывает метрики построения опорного плана
func (m *Metrics) RecordBuildOperation(strategy string, duration time.Duration) {
	m.BuildDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordProblemSize записывает размерность задачи
func (m *Metrics) RecordProblemSize(operation string, rows, cols int) {
	m.ProblemRowsTotal.WithLabelValues(operation).Observe(float64(rows))
	m.ProblemColsTotal.WithLabelValues(operation).Observe(float64(cols))
}

// RecordBasisRepair записывает результат восстановления связности базиса
func (m *Metrics) RecordBasisRepair(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.BasisRepairsTotal.WithLabelValues(outcome).Inc()
}

// RecordDegeneratePivot записывает вырожденный пивот
func (m *Metrics) RecordDegeneratePivot() {
	m.DegeneratePivots.Inc()
}

// RecordCacheOperation записывает операцию кэша
func (m *Metrics) RecordCacheOperation(operation, result string) {
	m.CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer запускает HTTP сервер для метрик
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		// Игнорируем ошибку записи - response уже отправлен
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
