package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/crestviewcap/positions/internal/models"
	"github.com/crestviewcap/positions/internal/normalize"
	"github.com/crestviewcap/positions/internal/valuecode"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PositionReader is the read-only slice of the position repository the
// aggregator consumes.
type PositionReader interface {
	GetByDate(ctx context.Context, date time.Time) ([]models.FinancialPosition, error)
	LatestDate(ctx context.Context) (time.Time, error)
}

// SummaryStore is the slice of the summary repository the aggregator writes
// through.
type SummaryStore interface {
	DeleteByDate(ctx context.Context, date time.Time) error
	InsertAll(ctx context.Context, summaries []models.FinancialSummary) error
}

// AggregateResult summarizes one aggregation run.
type AggregateResult struct {
	ReportDate  time.Time `json:"report_date"`
	RowsRead    int       `json:"rows_read"`
	RowsWritten int       `json:"rows_written"`
}

// Aggregator recomputes the derived summary rows for a reporting date. It
// owns every write to the summary table and only ever reads positions.
type Aggregator struct {
	positions PositionReader
	summaries SummaryStore
}

// NewAggregator creates a new Aggregator
func NewAggregator(positions PositionReader, summaries SummaryStore) *Aggregator {
	return &Aggregator{positions: positions, summaries: summaries}
}

// decodedPosition pairs a position with its decoded monetary value so each
// value is decoded once, not once per grouping level.
type decodedPosition struct {
	client    string
	portfolio string
	account   string
	value     decimal.Decimal
}

// Recompute regenerates the complete summary set for reportDate from the
// current position rows. A zero reportDate targets the most recent date in
// the position table. The run is idempotent: existing summary rows for the
// date are deleted before the regenerated set is written.
func (a *Aggregator) Recompute(ctx context.Context, reportDate time.Time) (*AggregateResult, error) {
	defer TrackTime("Aggregator.Recompute", time.Now())

	if reportDate.IsZero() {
		latest, err := a.positions.LatestDate(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve target date: %w", err)
		}
		reportDate = latest
	}

	positions, err := a.positions.GetByDate(ctx, reportDate)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	logger := log.WithField("report_date", reportDate.Format("2006-01-02"))
	logger.Infof("aggregating %d positions", len(positions))

	decoded := decodeAll(positions)
	uploadDate := time.Now().UTC()

	// The three grouping levels are independent reads over the same decoded
	// slice; compute them concurrently, write everything afterwards.
	var clientRows, portfolioRows, accountRows []models.FinancialSummary
	var g errgroup.Group
	g.Go(func() error {
		clientRows = rollup(decoded, models.SummaryLevelClient, reportDate, uploadDate,
			func(p decodedPosition) string { return p.client }, nil)
		return nil
	})
	g.Go(func() error {
		// A "-" portfolio is the missing-value placeholder, not a portfolio.
		portfolioRows = rollup(decoded, models.SummaryLevelPortfolio, reportDate, uploadDate,
			func(p decodedPosition) string { return p.portfolio },
			func(key string) bool { return key == "" || key == normalize.DefaultPlaceholder })
		return nil
	})
	g.Go(func() error {
		accountRows = rollup(decoded, models.SummaryLevelAccount, reportDate, uploadDate,
			func(p decodedPosition) string { return p.account }, nil)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Firm-wide rollup rides along at the client level under a sentinel key
	// so "all clients" needs no separate read path downstream.
	firmTotal := decimal.Zero
	for _, p := range decoded {
		firmTotal = firmTotal.Add(p.value)
	}
	firmRow := models.FinancialSummary{
		Level:              models.SummaryLevelClient,
		LevelKey:           models.FirmWideKey,
		TotalAdjustedValue: firmTotal,
		ReportDate:         reportDate,
		UploadDate:         uploadDate,
	}

	summaries := make([]models.FinancialSummary, 0, len(clientRows)+len(portfolioRows)+len(accountRows)+1)
	summaries = append(summaries, clientRows...)
	summaries = append(summaries, firmRow)
	summaries = append(summaries, portfolioRows...)
	summaries = append(summaries, accountRows...)

	if err := a.summaries.DeleteByDate(ctx, reportDate); err != nil {
		return nil, fmt.Errorf("failed to clear prior summaries: %w", err)
	}
	if err := a.summaries.InsertAll(ctx, summaries); err != nil {
		return nil, fmt.Errorf("failed to write summaries: %w", err)
	}

	logger.Infof("wrote %d summary rows", len(summaries))
	return &AggregateResult{
		ReportDate:  reportDate,
		RowsRead:    len(positions),
		RowsWritten: len(summaries),
	}, nil
}

func decodeAll(positions []models.FinancialPosition) []decodedPosition {
	decoded := make([]decodedPosition, 0, len(positions))
	for _, p := range positions {
		v, err := valuecode.Decode(p.AdjustedValue)
		if err != nil {
			log.Warnf("position %q has undecodable value %q, counting as zero: %v",
				p.Position, p.AdjustedValue, err)
			v = decimal.Zero
		}
		decoded = append(decoded, decodedPosition{
			client:    p.TopLevelClient,
			portfolio: p.Portfolio,
			account:   p.HoldingAccountNumber,
			value:     v,
		})
	}
	return decoded
}

// rollup groups decoded positions by key and sums their values in decimal
// arithmetic. Keys are emitted in sorted order so repeated runs over the same
// positions produce an identical row set.
func rollup(decoded []decodedPosition, level models.SummaryLevel, reportDate, uploadDate time.Time,
	keyOf func(decodedPosition) string, skip func(string) bool) []models.FinancialSummary {

	totals := make(map[string]decimal.Decimal)
	for _, p := range decoded {
		key := keyOf(p)
		if skip != nil && skip(key) {
			continue
		}
		totals[key] = totals[key].Add(p.value)
	}

	keys := make([]string, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([]models.FinancialSummary, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, models.FinancialSummary{
			Level:              level,
			LevelKey:           key,
			TotalAdjustedValue: totals[key],
			ReportDate:         reportDate,
			UploadDate:         uploadDate,
		})
	}
	return rows
}
