package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/crestviewcap/positions/internal/models"
)

// MemoryCache is an in-memory TTL cache fronting summary reads. Summaries
// only change when a pipeline or aggregation run rewrites a date, so readers
// tolerate a short staleness window and the writers invalidate the date they
// touched.
type MemoryCache struct {
	summaries map[string]summaryEntry
	mu        sync.RWMutex
	ttl       time.Duration
}

type summaryEntry struct {
	rows      []models.FinancialSummary
	fetchedAt time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		summaries: make(map[string]summaryEntry),
		ttl:       ttl,
	}
}

func summaryKey(date time.Time, level models.SummaryLevel) string {
	return date.Format("2006-01-02") + "|" + string(level)
}

// GetSummaries retrieves cached summary rows if still fresh.
func (c *MemoryCache) GetSummaries(date time.Time, level models.SummaryLevel) ([]models.FinancialSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.summaries[summaryKey(date, level)]
	if !exists {
		return nil, false
	}
	if time.Since(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	return entry.rows, true
}

// SetSummaries caches summary rows for a (date, level) query.
func (c *MemoryCache) SetSummaries(date time.Time, level models.SummaryLevel, rows []models.FinancialSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summaries[summaryKey(date, level)] = summaryEntry{
		rows:      rows,
		fetchedAt: time.Now(),
	}
}

// InvalidateDate drops every cached entry for a report date. Called after a
// run recomputes that date.
func (c *MemoryCache) InvalidateDate(date time.Time) {
	prefix := date.Format("2006-01-02") + "|"

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.summaries {
		if strings.HasPrefix(key, prefix) {
			delete(c.summaries, key)
		}
	}
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.summaries = make(map[string]summaryEntry)
	c.mu.Unlock()
}
