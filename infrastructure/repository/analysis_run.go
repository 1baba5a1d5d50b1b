package repository

//go:generate mockgen -source=analysis_run.go -destination=mocks/analysis_run.go -package=mocks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
)

const (
	analysisRunsTable = "analysis_runs ar"

	defaultRunsLimit = 50
	maxRunsLimit     = 500
)

var analysisRunColumns = []string{
	"ar.id", "ar.status", "ar.error", "ar.inventory_file", "ar.sales_file",
	"ar.inventory_rows", "ar.sales_rows", "ar.distinct_days",
	"ar.first_sales_date", "ar.last_sales_date", "ar.duration_ms", "ar.created_at",
}

type AnalysisRunRepository interface {
	Save(ctx context.Context, run *domain.AnalysisRun) error
	List(ctx context.Context, filters domain.AnalysisRunFilters) ([]*domain.AnalysisRun, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

type analysisRunRepository struct {
	conn postgres.Queryer
	now  func() time.Time
}

func NewAnalysisRunRepository(conn postgres.Queryer) AnalysisRunRepository {
	return &analysisRunRepository{
		conn: conn,
		now:  time.Now,
	}
}

func (r *analysisRunRepository) Save(ctx context.Context, run *domain.AnalysisRun) error {
	query, args, err := squirrel.
		Insert("analysis_runs").
		Columns(
			"id", "status", "error", "inventory_file", "sales_file",
			"inventory_rows", "sales_rows", "distinct_days",
			"first_sales_date", "last_sales_date", "duration_ms", "created_at",
		).
		Values(
			run.ID,
			run.Status,
			nullString(run.Error),
			run.InventoryFile,
			run.SalesFile,
			run.InventoryRows,
			run.SalesRows,
			run.DistinctDays,
			nullDate(run.FirstSalesDate),
			nullDate(run.LastSalesDate),
			run.DurationMs,
			run.CreatedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *analysisRunRepository) List(ctx context.Context, filters domain.AnalysisRunFilters) ([]*domain.AnalysisRun, error) {
	limit := filters.Limit
	if limit == 0 {
		limit = defaultRunsLimit
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}

	builder := squirrel.
		Select(analysisRunColumns...).
		From(analysisRunsTable).
		OrderBy("ar.created_at DESC").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar)

	if filters.StartDate != nil {
		builder = builder.Where(squirrel.GtOrEq{"ar.created_at": *filters.StartDate})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	runs := make([]*domain.AnalysisRun, 0)
	for rows.Next() {
		run, err := scanAnalysisRun(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear execução: %w", err)
		}
		runs = append(runs, run)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return runs, nil
}

func (r *analysisRunRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := r.now().AddDate(0, 0, -days)

	query, args, err := squirrel.
		Delete("analysis_runs").
		Where(squirrel.Lt{"created_at": cutoff}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}

func scanAnalysisRun(rows *sql.Rows) (*domain.AnalysisRun, error) {
	run := &domain.AnalysisRun{}
	var runErr sql.NullString
	var firstDate, lastDate sql.NullTime

	err := rows.Scan(
		&run.ID,
		&run.Status,
		&runErr,
		&run.InventoryFile,
		&run.SalesFile,
		&run.InventoryRows,
		&run.SalesRows,
		&run.DistinctDays,
		&firstDate,
		&lastDate,
		&run.DurationMs,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Error = runErr.String
	if firstDate.Valid {
		run.FirstSalesDate = &firstDate.Time
	}
	if lastDate.Valid {
		run.LastSalesDate = &lastDate.Time
	}

	return run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
