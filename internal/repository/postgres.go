package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"transport/pkg/database"
	"transport/pkg/telemetry"
)

// PostgresSolveRepository PostgreSQL реализация
type PostgresSolveRepository struct {
	db database.DB
}

// NewPostgresSolveRepository создаёт новый репозиторий
func NewPostgresSolveRepository(db database.DB) *PostgresSolveRepository {
	return &PostgresSolveRepository{db: db}
}

func (r *PostgresSolveRepository) Create(ctx context.Context, rec *SolveRecord) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresSolveRepository.Create")
	defer span.End()

	query := `
		INSERT INTO solves (
			problem_hash, strategy, selection, status,
			row_count, col_count, total_cost, iterations,
			computation_time_ms, problem_data, solution_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		rec.ProblemHash,
		rec.Strategy,
		rec.Selection,
		rec.Status,
		rec.Rows,
		rec.Cols,
		rec.TotalCost,
		rec.Iterations,
		rec.ComputationTimeMs,
		rec.ProblemData,
		rec.SolutionData,
	).Scan(&rec.ID, &rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create solve record: %w", err)
	}

	return nil
}

func (r *PostgresSolveRepository) GetByID(ctx context.Context, id string) (*SolveRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresSolveRepository.GetByID")
	defer span.End()

	query := `
		SELECT
			id, problem_hash, strategy, selection, status,
			row_count, col_count, total_cost, iterations,
			computation_time_ms, problem_data, solution_data, created_at
		FROM solves
		WHERE id = $1
	`

	rec := &SolveRecord{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.ProblemHash,
		&rec.Strategy,
		&rec.Selection,
		&rec.Status,
		&rec.Rows,
		&rec.Cols,
		&rec.TotalCost,
		&rec.Iterations,
		&rec.ComputationTimeMs,
		&rec.ProblemData,
		&rec.SolutionData,
		&rec.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSolveNotFound
		}
		return nil, fmt.Errorf("failed to get solve record: %w", err)
	}

	return rec, nil
}

// GetLatestByHash возвращает последнее решение задачи с данным хешом
func (r *PostgresSolveRepository) GetLatestByHash(ctx context.Context, hash, strategy string) (*SolveRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresSolveRepository.GetLatestByHash")
	defer span.End()

	query := `
		SELECT
			id, problem_hash, strategy, selection, status,
			row_count, col_count, total_cost, iterations,
			computation_time_ms, problem_data, solution_data, created_at
		FROM solves
		WHERE problem_hash = $1 AND strategy = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	rec := &SolveRecord{}
	err := r.db.QueryRow(ctx, query, hash, strategy).Scan(
		&rec.ID,
		&rec.ProblemHash,
		&rec.Strategy,
		&rec.Selection,
		&rec.Status,
		&rec.Rows,
		&rec.Cols,
		&rec.TotalCost,
		&rec.Iterations,
		&rec.ComputationTimeMs,
		&rec.ProblemData,
		&rec.SolutionData,
		&rec.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSolveNotFound
		}
		return nil, fmt.Errorf("failed to get latest solve record: %w", err)
	}

	return rec, nil
}

func (r *PostgresSolveRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresSolveRepository.Delete")
	defer span.End()

	query := `DELETE FROM solves WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete solve record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSolveNotFound
	}

	return nil
}

func (r *PostgresSolveRepository) List(
	ctx context.Context,
	opts *ListOptions,
) ([]*SolveSummary, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresSolveRepository.List")
	defer span.End()

	if opts == nil {
		opts = &ListOptions{Limit: 20, Offset: 0, Sort: SortByCreatedDesc}
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}

	// Строим WHERE clause
	where, args := r.buildWhereClause(opts.Filter)

	// Получаем общее количество
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM solves WHERE %s`, where)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count solve records: %w", err)
	}

	orderBy := r.buildOrderBy(opts.Sort)

	selectQuery := fmt.Sprintf(`
		SELECT
			id, problem_hash, strategy, status,
			row_count, col_count, total_cost, iterations,
			computation_time_ms, created_at
		FROM solves
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, where, orderBy, len(args)+1, len(args)+2)

	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list solve records: %w", err)
	}
	defer rows.Close()

	var results []*SolveSummary
	for rows.Next() {
		summary := &SolveSummary{}
		err := rows.Scan(
			&summary.ID,
			&summary.ProblemHash,
			&summary.Strategy,
			&summary.Status,
			&summary.Rows,
			&summary.Cols,
			&summary.TotalCost,
			&summary.Iterations,
			&summary.ComputationTimeMs,
			&summary.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan solve record: %w", err)
		}
		results = append(results, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return results, total, nil
}

func (r *PostgresSolveRepository) buildWhereClause(filter *ListFilter) (string, []any) {
	conditions := []string{"TRUE"}
	args := []any{}
	argNum := 1

	if filter != nil {
		if filter.Strategy != "" {
			conditions = append(conditions, fmt.Sprintf("strategy = $%d", argNum))
			args = append(args, filter.Strategy)
			argNum++
		}

		if filter.Status != "" {
			conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
			args = append(args, filter.Status)
			argNum++
		}

		if filter.StartTime != nil {
			conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argNum))
			args = append(args, *filter.StartTime)
			argNum++
		}

		if filter.EndTime != nil {
			conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argNum))
			args = append(args, *filter.EndTime)
		}
	}

	return strings.Join(conditions, " AND "), args
}

func (r *PostgresSolveRepository) buildOrderBy(sort SortOrder) string {
	switch sort {
	case SortByCreatedAsc:
		return "created_at ASC"
	case SortByCostDesc:
		return "total_cost DESC"
	case SortByCostAsc:
		return "total_cost ASC"
	default:
		return "created_at DESC"
	}
}

func (r *PostgresSolveRepository) GetStatistics(
	ctx context.Context,
	startTime, endTime *time.Time,
) (*Statistics, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresSolveRepository.GetStatistics")
	defer span.End()

	stats := &Statistics{
		SolvesByStrategy: make(map[string]int),
	}

	where := "TRUE"
	args := []any{}
	argNum := 1

	if startTime != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", argNum)
		args = append(args, *startTime)
		argNum++
	}
	if endTime != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", argNum)
		args = append(args, *endTime)
	}

	statsQuery := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COALESCE(AVG(total_cost), 0),
			COALESCE(AVG(iterations), 0),
			COALESCE(AVG(computation_time_ms), 0)
		FROM solves
		WHERE %s
	`, where)

	err := r.db.QueryRow(ctx, statsQuery, args...).Scan(
		&stats.TotalSolves,
		&stats.AverageTotalCost,
		&stats.AverageIterations,
		&stats.AverageComputationTimeMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	strategyQuery := fmt.Sprintf(`
		SELECT strategy, COUNT(*)
		FROM solves
		WHERE %s
		GROUP BY strategy
	`, where)

	rows, err := r.db.Query(ctx, strategyQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var strategy string
		var count int
		if err := rows.Scan(&strategy, &count); err != nil {
			return nil, fmt.Errorf("failed to scan strategy stats: %w", err)
		}
		stats.SolvesByStrategy[strategy] = count
	}

	return stats, nil
}

func (r *PostgresSolveRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresSolveRepository.DeleteOlderThan")
	defer span.End()

	query := `DELETE FROM solves WHERE created_at < $1`

	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old solve records: %w", err)
	}

	return result.RowsAffected(), nil
}
