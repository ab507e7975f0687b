package cache_test

import (
	"testing"
	"time"

	"github.com/crestviewcap/positions/internal/cache"
	"github.com/crestviewcap/positions/internal/models"
)

var cacheDate = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

func TestMemoryCache_SetGet(t *testing.T) {
	c := cache.NewMemoryCache(time.Minute)
	rows := []models.FinancialSummary{{Level: models.SummaryLevelClient, LevelKey: "Acme Trust"}}

	if _, ok := c.GetSummaries(cacheDate, models.SummaryLevelClient); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.SetSummaries(cacheDate, models.SummaryLevelClient, rows)

	got, ok := c.GetSummaries(cacheDate, models.SummaryLevelClient)
	if !ok || len(got) != 1 || got[0].LevelKey != "Acme Trust" {
		t.Errorf("unexpected cache hit contents: %v %v", ok, got)
	}
	if _, ok := c.GetSummaries(cacheDate, models.SummaryLevelPortfolio); ok {
		t.Error("different level must be a separate entry")
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := cache.NewMemoryCache(time.Millisecond)
	c.SetSummaries(cacheDate, models.SummaryLevelClient, nil)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.GetSummaries(cacheDate, models.SummaryLevelClient); ok {
		t.Error("expected entry to expire")
	}
}

func TestMemoryCache_InvalidateDate(t *testing.T) {
	c := cache.NewMemoryCache(time.Minute)
	other := cacheDate.AddDate(0, 0, 1)
	c.SetSummaries(cacheDate, models.SummaryLevelClient, nil)
	c.SetSummaries(cacheDate, models.SummaryLevelAccount, nil)
	c.SetSummaries(other, models.SummaryLevelClient, nil)

	c.InvalidateDate(cacheDate)

	if _, ok := c.GetSummaries(cacheDate, models.SummaryLevelClient); ok {
		t.Error("expected invalidated entry gone")
	}
	if _, ok := c.GetSummaries(cacheDate, models.SummaryLevelAccount); ok {
		t.Error("expected all levels for the date gone")
	}
	if _, ok := c.GetSummaries(other, models.SummaryLevelClient); !ok {
		t.Error("other dates must survive invalidation")
	}
}
