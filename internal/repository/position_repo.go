package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crestviewcap/positions/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoPositions = errors.New("no positions found")

// maxBindParams is the Postgres protocol limit on bind parameters per
// statement; multi-row inserts must stay under it.
const maxBindParams = 65535

// positionColumns in insert order; values per row must match.
var positionColumns = []string{
	"position", "top_level_client", "holding_account", "holding_account_number",
	"portfolio", "cusip", "ticker_symbol", "asset_class", "second_level",
	"third_level", "adv_classification", "liquid_vs_illiquid", "adjusted_value",
	"date", "upload_date",
}

// PositionRepository handles database operations for financial_positions.
// The Batch Loader is the only writer of this table.
type PositionRepository struct {
	pool *pgxpool.Pool
}

// NewPositionRepository creates a new PositionRepository
func NewPositionRepository(pool *pgxpool.Pool) *PositionRepository {
	return &PositionRepository{pool: pool}
}

func positionArgs(p *models.FinancialPosition) []any {
	return []any{
		p.Position, p.TopLevelClient, p.HoldingAccount, p.HoldingAccountNumber,
		p.Portfolio, p.Cusip, p.TickerSymbol, p.AssetClass, p.SecondLevel,
		p.ThirdLevel, p.ADVClassification, p.LiquidVsIlliquid, p.AdjustedValue,
		p.Date, p.UploadDate,
	}
}

// DeleteByDate removes every position for a reporting date and reports how
// many rows went away. A single statement, so the wipe is atomic.
func (r *PositionRepository) DeleteByDate(ctx context.Context, date time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM financial_positions WHERE date = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete positions for %s: %w", date.Format("2006-01-02"), err)
	}
	return tag.RowsAffected(), nil
}

// InsertBatch writes a whole batch with multi-row INSERTs inside one
// transaction. Either every row of the batch lands or none does. Batches too
// large for a single statement's bind-parameter limit are split across
// several statements within the same transaction.
func (r *PositionRepository) InsertBatch(ctx context.Context, positions []*models.FinancialPosition) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	nCols := len(positionColumns)
	maxRows := maxBindParams / nCols
	for start := 0; start < len(positions); start += maxRows {
		end := start + maxRows
		if end > len(positions) {
			end = len(positions)
		}
		if err := insertChunk(ctx, tx, positions[start:end]); err != nil {
			return fmt.Errorf("batch insert of %d positions failed: %w", len(positions), err)
		}
	}
	return tx.Commit(ctx)
}

func insertChunk(ctx context.Context, tx pgx.Tx, positions []*models.FinancialPosition) error {
	nCols := len(positionColumns)
	placeholders := make([]string, 0, len(positions))
	args := make([]any, 0, len(positions)*nCols)
	for i, p := range positions {
		marks := make([]string, nCols)
		for j := 0; j < nCols; j++ {
			marks[j] = fmt.Sprintf("$%d", i*nCols+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(marks, ", ")+")")
		args = append(args, positionArgs(p)...)
	}

	query := fmt.Sprintf(
		"INSERT INTO financial_positions (%s) VALUES %s",
		strings.Join(positionColumns, ", "),
		strings.Join(placeholders, ", "),
	)
	_, err := tx.Exec(ctx, query, args...)
	return err
}

// InsertOne writes a single position in its own implicit transaction. Used on
// the fallback path after a batch insert fails.
func (r *PositionRepository) InsertOne(ctx context.Context, p *models.FinancialPosition) error {
	nCols := len(positionColumns)
	marks := make([]string, nCols)
	for j := 0; j < nCols; j++ {
		marks[j] = fmt.Sprintf("$%d", j+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO financial_positions (%s) VALUES (%s)",
		strings.Join(positionColumns, ", "),
		strings.Join(marks, ", "),
	)
	if _, err := r.pool.Exec(ctx, query, positionArgs(p)...); err != nil {
		return fmt.Errorf("failed to insert position %q: %w", p.Position, err)
	}
	return nil
}

// GetByDate retrieves all positions for a reporting date.
func (r *PositionRepository) GetByDate(ctx context.Context, date time.Time) ([]models.FinancialPosition, error) {
	query := `
		SELECT id, position, top_level_client, holding_account, holding_account_number,
		       portfolio, cusip, ticker_symbol, asset_class, second_level,
		       third_level, adv_classification, liquid_vs_illiquid, adjusted_value,
		       date, upload_date
		FROM financial_positions
		WHERE date = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []models.FinancialPosition
	for rows.Next() {
		var p models.FinancialPosition
		if err := rows.Scan(
			&p.ID, &p.Position, &p.TopLevelClient, &p.HoldingAccount, &p.HoldingAccountNumber,
			&p.Portfolio, &p.Cusip, &p.TickerSymbol, &p.AssetClass, &p.SecondLevel,
			&p.ThirdLevel, &p.ADVClassification, &p.LiquidVsIlliquid, &p.AdjustedValue,
			&p.Date, &p.UploadDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// LatestDate returns the most recent distinct reporting date present in the
// position table, or ErrNoPositions when the table is empty.
func (r *PositionRepository) LatestDate(ctx context.Context) (time.Time, error) {
	var date *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(date) FROM financial_positions`).Scan(&date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to resolve latest date: %w", err)
	}
	if date == nil {
		return time.Time{}, ErrNoPositions
	}
	return *date, nil
}

// ListDates returns the distinct reporting dates present, newest first.
func (r *PositionRepository) ListDates(ctx context.Context) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT date FROM financial_positions ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
