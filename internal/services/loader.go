package services

import (
	"context"
	"fmt"
	"time"

	"github.com/crestviewcap/positions/internal/models"
	"github.com/crestviewcap/positions/internal/normalize"
	"github.com/crestviewcap/positions/internal/valuecode"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DefaultBatchSize is the number of rows per multi-row insert.
const DefaultBatchSize = 500

// maxBatchSize caps configured batch sizes. Postgres allows 65535 bind
// parameters per statement and a position insert binds 15 columns per row,
// so anything above this floor(65535/15) would fail every batch and push the
// whole load onto the row-by-row fallback.
const maxBatchSize = 4369

// maxReportedErrors caps the error messages carried in a LoadResult; the full
// detail always goes to the log.
const maxReportedErrors = 10

// PositionStore is the slice of the position repository the loader writes
// through.
type PositionStore interface {
	DeleteByDate(ctx context.Context, date time.Time) (int64, error)
	InsertBatch(ctx context.Context, positions []*models.FinancialPosition) error
	InsertOne(ctx context.Context, p *models.FinancialPosition) error
}

// LoadResult summarizes one ingestion run. It is reported whether the run
// completed clean, completed with skipped rows, or never started.
type LoadResult struct {
	RunID         string    `json:"run_id"`
	ReportDate    time.Time `json:"report_date"`
	RowsProcessed int       `json:"rows_processed"`
	RowsInserted  int       `json:"rows_inserted"`
	ErrorCount    int       `json:"error_count"`
	Errors        []string  `json:"errors"` // first maxReportedErrors messages
	CleanupFailed bool      `json:"cleanup_failed"`
}

func (r *LoadResult) addError(msg string) {
	r.ErrorCount++
	if len(r.Errors) < maxReportedErrors {
		r.Errors = append(r.Errors, msg)
	}
	log.WithField("run_id", r.RunID).Error(msg)
}

// Loader transactionally replaces all positions for a reporting date. It owns
// every write to the position table.
type Loader struct {
	store     PositionStore
	batchSize int
}

// NewLoader creates a Loader writing through store in batches of batchSize
// rows (DefaultBatchSize when batchSize is not positive, clamped to
// maxBatchSize).
func NewLoader(store PositionStore, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize > maxBatchSize {
		log.Warnf("batch size %d exceeds the per-statement limit, clamping to %d", batchSize, maxBatchSize)
		batchSize = maxBatchSize
	}
	return &Loader{store: store, batchSize: batchSize}
}

// Load replaces the position set for reportDate with the given raw records.
// header is the extract's column header row; records are the data rows below
// it. runID tags the run in logs and results so callers that issued an id
// up front (the upload endpoint) can correlate; an empty runID gets a fresh
// one. Rows missing an identity field are skipped and counted, never retried.
// A failed batch insert falls back to row-by-row inserts so one bad record
// cannot sink its whole batch.
func (l *Loader) Load(ctx context.Context, runID string, reportDate time.Time, header []string, records [][]string) *LoadResult {
	defer TrackTime("Loader.Load", time.Now())

	if runID == "" {
		runID = uuid.New().String()
	}
	result := &LoadResult{
		RunID:      runID,
		ReportDate: reportDate,
		Errors:     []string{},
	}
	uploadDate := time.Now().UTC()

	logger := log.WithFields(log.Fields{
		"run_id":      result.RunID,
		"report_date": reportDate.Format("2006-01-02"),
	})
	logger.Infof("starting load of %d rows", len(records))

	// Pre-cleanup: wipe any prior load for this date. A failed wipe is logged
	// and the run continues against whatever state remains; stale rows mixed
	// with the new load are an accepted risk of this policy.
	deleted, err := l.store.DeleteByDate(ctx, reportDate)
	if err != nil {
		result.CleanupFailed = true
		logger.Errorf("pre-cleanup delete failed, continuing: %v", err)
	} else if deleted > 0 {
		logger.Infof("replaced %d existing positions", deleted)
	}

	// Header aliases resolve once per file, not per row.
	cm := normalize.ResolveHeaders(header)

	for start := 0; start < len(records); start += l.batchSize {
		end := start + l.batchSize
		if end > len(records) {
			end = len(records)
		}
		l.loadBatch(ctx, cm, records[start:end], start, reportDate, uploadDate, result)
	}
	result.RowsProcessed = len(records)

	logger.WithFields(log.Fields{
		"rows_processed": result.RowsProcessed,
		"rows_inserted":  result.RowsInserted,
		"error_count":    result.ErrorCount,
	}).Info("load finished")

	return result
}

func (l *Loader) loadBatch(ctx context.Context, cm normalize.ColumnMap, records [][]string, offset int, reportDate, uploadDate time.Time, result *LoadResult) {
	batch := make([]*models.FinancialPosition, 0, len(records))
	for i, record := range records {
		row, err := normalize.NormalizeRow(cm, record)
		if err != nil {
			// Data rows start below the 3 metadata rows and the header row.
			result.addError(fmt.Sprintf("row %d: %v", offset+i+5, err))
			continue
		}
		batch = append(batch, toPosition(row, reportDate, uploadDate))
	}
	if len(batch) == 0 {
		return
	}

	err := l.store.InsertBatch(ctx, batch)
	if err == nil {
		result.RowsInserted += len(batch)
		return
	}
	log.WithField("run_id", result.RunID).
		Warnf("batch of %d rolled back, retrying row by row: %v", len(batch), err)

	// Fallback: the batch had at least one row the statement choked on.
	// Insert each row in its own transaction so the clean rows still land.
	for _, p := range batch {
		if err := l.store.InsertOne(ctx, p); err != nil {
			result.addError(fmt.Sprintf("position %q (%s): %v", p.Position, p.HoldingAccount, err))
			continue
		}
		result.RowsInserted++
	}
}

func toPosition(row *normalize.Row, reportDate, uploadDate time.Time) *models.FinancialPosition {
	return &models.FinancialPosition{
		Position:             row.Position,
		TopLevelClient:       row.TopLevelClient,
		HoldingAccount:       row.HoldingAccount,
		HoldingAccountNumber: row.HoldingAccountNumber,
		Portfolio:            row.Portfolio,
		Cusip:                row.Cusip,
		TickerSymbol:         row.TickerSymbol,
		AssetClass:           row.AssetClass,
		SecondLevel:          row.SecondLevel,
		ThirdLevel:           row.ThirdLevel,
		ADVClassification:    row.ADVClassification,
		LiquidVsIlliquid:     row.LiquidVsIlliquid,
		AdjustedValue:        valuecode.Encode(row.AdjustedValue),
		Date:                 reportDate,
		UploadDate:           uploadDate,
	}
}
