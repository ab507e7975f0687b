package handlers

import (
	"errors"
	"net/http"

	"github.com/crestviewcap/positions/internal/cache"
	"github.com/crestviewcap/positions/internal/models"
	"github.com/crestviewcap/positions/internal/repository"
	"github.com/crestviewcap/positions/internal/util"
	"github.com/gin-gonic/gin"
)

// SummaryHandler serves the derived rollup rows, with a short-TTL memory
// cache in front of the table.
type SummaryHandler struct {
	summaryRepo *repository.SummaryRepository
	memCache    *cache.MemoryCache
}

// NewSummaryHandler creates a new SummaryHandler
func NewSummaryHandler(summaryRepo *repository.SummaryRepository, memCache *cache.MemoryCache) *SummaryHandler {
	return &SummaryHandler{summaryRepo: summaryRepo, memCache: memCache}
}

// List handles GET /summary?date=YYYY-MM-DD&level=client|portfolio|account
func (h *SummaryHandler) List(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "date query parameter is required",
		})
		return
	}
	date, err := util.ParseDay(dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "date must be YYYY-MM-DD",
		})
		return
	}

	level := models.SummaryLevel(c.Query("level"))
	switch level {
	case "", models.SummaryLevelClient, models.SummaryLevelPortfolio, models.SummaryLevelAccount:
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "level must be client, portfolio or account",
		})
		return
	}

	if rows, ok := h.memCache.GetSummaries(date, level); ok {
		c.JSON(http.StatusOK, gin.H{"date": dateStr, "summaries": rows, "cached": true})
		return
	}

	rows, err := h.summaryRepo.GetByDate(c.Request.Context(), date, level)
	if err != nil {
		if errors.Is(err, repository.ErrNoSummaries) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "no summaries for that date",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	h.memCache.SetSummaries(date, level, rows)
	c.JSON(http.StatusOK, gin.H{"date": dateStr, "summaries": rows})
}
