package services_test

import (
	"context"
	"errors"
	"time"

	"github.com/crestviewcap/positions/internal/models"
)

// fakePositionStore is an in-memory stand-in for the position repository.
// Failures are scripted per test: failBatches makes every InsertBatch error,
// rejectPosition makes InsertOne fail for one named position (mimicking a
// row-level constraint violation), failDelete breaks the pre-cleanup step.
type fakePositionStore struct {
	rows           []*models.FinancialPosition
	failBatches    bool
	rejectPosition string
	failDelete     bool
	failGet        bool

	batchCalls  int
	singleCalls int
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func (s *fakePositionStore) DeleteByDate(_ context.Context, date time.Time) (int64, error) {
	if s.failDelete {
		return 0, errors.New("delete refused")
	}
	kept := s.rows[:0]
	var deleted int64
	for _, r := range s.rows {
		if sameDay(r.Date, date) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return deleted, nil
}

func (s *fakePositionStore) InsertBatch(_ context.Context, positions []*models.FinancialPosition) error {
	s.batchCalls++
	if s.failBatches {
		return errors.New("multi-row insert failed")
	}
	for _, p := range positions {
		if p.Position == s.rejectPosition {
			return errors.New("constraint violation in batch")
		}
	}
	s.rows = append(s.rows, positions...)
	return nil
}

func (s *fakePositionStore) InsertOne(_ context.Context, p *models.FinancialPosition) error {
	s.singleCalls++
	if p.Position == s.rejectPosition {
		return errors.New("constraint violation")
	}
	s.rows = append(s.rows, p)
	return nil
}

func (s *fakePositionStore) GetByDate(_ context.Context, date time.Time) ([]models.FinancialPosition, error) {
	if s.failGet {
		return nil, errors.New("read refused")
	}
	var out []models.FinancialPosition
	for _, r := range s.rows {
		if sameDay(r.Date, date) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakePositionStore) LatestDate(_ context.Context) (time.Time, error) {
	var latest time.Time
	for _, r := range s.rows {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	if latest.IsZero() {
		return time.Time{}, errors.New("no positions found")
	}
	return latest, nil
}

// fakeSummaryStore is an in-memory stand-in for the summary repository.
type fakeSummaryStore struct {
	rows       []models.FinancialSummary
	failInsert bool
}

func (s *fakeSummaryStore) DeleteByDate(_ context.Context, date time.Time) error {
	kept := s.rows[:0]
	for _, r := range s.rows {
		if sameDay(r.ReportDate, date) {
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return nil
}

func (s *fakeSummaryStore) InsertAll(_ context.Context, summaries []models.FinancialSummary) error {
	if s.failInsert {
		return errors.New("insert refused")
	}
	s.rows = append(s.rows, summaries...)
	return nil
}
