package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crestviewcap/positions/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNoSummaries = errors.New("no summaries found")

// SummaryRepository handles database operations for financial_summary.
// The Aggregation Engine is the only writer of this table.
type SummaryRepository struct {
	pool *pgxpool.Pool
}

// NewSummaryRepository creates a new SummaryRepository
func NewSummaryRepository(pool *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{pool: pool}
}

// DeleteByDate removes every summary row for a report date.
func (r *SummaryRepository) DeleteByDate(ctx context.Context, date time.Time) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM financial_summary WHERE report_date = $1`, date)
	if err != nil {
		return fmt.Errorf("failed to delete summaries for %s: %w", date.Format("2006-01-02"), err)
	}
	return nil
}

// InsertAll writes the full regenerated summary set for a date in one
// transaction; the aggregation run either replaces the date completely or
// leaves it untouched.
func (r *SummaryRepository) InsertAll(ctx context.Context, summaries []models.FinancialSummary) error {
	if len(summaries) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin summary transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO financial_summary (level, level_key, total_adjusted_value, report_date, upload_date)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, s := range summaries {
		if _, err := tx.Exec(ctx, query,
			string(s.Level), s.LevelKey, s.TotalAdjustedValue.String(), s.ReportDate, s.UploadDate,
		); err != nil {
			return fmt.Errorf("failed to insert summary (%s, %s): %w", s.Level, s.LevelKey, err)
		}
	}
	return tx.Commit(ctx)
}

// GetByDate retrieves summary rows for a report date, optionally filtered by
// level. Returns ErrNoSummaries when nothing has been aggregated for the date.
func (r *SummaryRepository) GetByDate(ctx context.Context, date time.Time, level models.SummaryLevel) ([]models.FinancialSummary, error) {
	query := `
		SELECT id, level, level_key, total_adjusted_value::text, report_date, upload_date
		FROM financial_summary
		WHERE report_date = $1 AND ($2 = '' OR level = $2)
		ORDER BY level, level_key
	`
	rows, err := r.pool.Query(ctx, query, date, string(level))
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.FinancialSummary
	for rows.Next() {
		var s models.FinancialSummary
		var total string
		if err := rows.Scan(&s.ID, &s.Level, &s.LevelKey, &total, &s.ReportDate, &s.UploadDate); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		s.TotalAdjustedValue, err = decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("bad total_adjusted_value %q: %w", total, err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, ErrNoSummaries
	}
	return summaries, nil
}
