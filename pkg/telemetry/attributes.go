package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Задача
	AttrProblemRows   = "problem.rows"
	AttrProblemCols   = "problem.cols"
	AttrProblemSupply = "problem.total_supply"

	// Решатель
	AttrStrategy   = "solver.strategy"
	AttrSelection  = "solver.selection"
	AttrIterations = "solver.iterations"
	AttrTotalCost  = "solver.total_cost"
	AttrStatus     = "solver.status"

	// Базис
	AttrBasicCells    = "basis.basic_cells"
	AttrRepairedEdges = "basis.repaired_edges"

	// Кэш
	AttrCacheHit = "cache.hit"
)

// ProblemAttributes возвращает атрибуты задачи
func ProblemAttributes(rows, cols int, totalSupply float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrProblemRows, rows),
		attribute.Int(AttrProblemCols, cols),
		attribute.Float64(AttrProblemSupply, totalSupply),
	}
}

// SolverAttributes возвращает атрибуты решателя
func SolverAttributes(strategy string, iterations int, totalCost float64, status string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrStrategy, strategy),
		attribute.Int(AttrIterations, iterations),
		attribute.Float64(AttrTotalCost, totalCost),
		attribute.String(AttrStatus, status),
	}
}

// BasisAttributes возвращает атрибуты базиса
func BasisAttributes(basicCells, repairedEdges int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrBasicCells, basicCells),
		attribute.Int(AttrRepairedEdges, repairedEdges),
	}
}
