package repository

import (
	"context"
	"errors"
	"time"
)

// Стандартные ошибки
var (
	ErrSolveNotFound = errors.New("solve record not found")
)

// SolveRecord запись об одном решении задачи
type SolveRecord struct {
	ID                string
	ProblemHash       string
	Strategy          string
	Selection         string
	Status            string
	Rows              int
	Cols              int
	TotalCost         float64
	Iterations        int
	ComputationTimeMs float64
	ProblemData       []byte // JSON
	SolutionData      []byte // JSON
	CreatedAt         time.Time
}

// SolveSummary краткая информация о решении
type SolveSummary struct {
	ID                string
	ProblemHash       string
	Strategy          string
	Status            string
	Rows              int
	Cols              int
	TotalCost         float64
	Iterations        int
	ComputationTimeMs float64
	CreatedAt         time.Time
}

// ListFilter фильтры для списка решений
type ListFilter struct {
	Strategy  string
	Status    string
	StartTime *time.Time
	EndTime   *time.Time
}

// SortOrder порядок сортировки
type SortOrder string

const (
	SortByCreatedDesc SortOrder = "created_desc"
	SortByCreatedAsc  SortOrder = "created_asc"
	SortByCostDesc    SortOrder = "cost_desc"
	SortByCostAsc     SortOrder = "cost_asc"
)

// ListOptions опции для списка
type ListOptions struct {
	Limit  int
	Offset int
	Filter *ListFilter
	Sort   SortOrder
}

// Statistics агрегированная статистика по решениям
type Statistics struct {
	TotalSolves              int
	AverageTotalCost         float64
	AverageIterations        float64
	AverageComputationTimeMs float64
	SolvesByStrategy         map[string]int
}

// SolveRepository интерфейс хранилища истории решений
type SolveRepository interface {
	Create(ctx context.Context, rec *SolveRecord) error
	GetByID(ctx context.Context, id string) (*SolveRecord, error)
	GetLatestByHash(ctx context.Context, hash, strategy string) (*SolveRecord, error)
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, opts *ListOptions) ([]*SolveSummary, int64, error)

	GetStatistics(ctx context.Context, startTime, endTime *time.Time) (*Statistics, error)

	// DeleteOlderThan удаляет записи старше указанного времени
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
