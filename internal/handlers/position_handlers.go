package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/crestviewcap/positions/internal/models"
	"github.com/crestviewcap/positions/internal/repository"
	"github.com/crestviewcap/positions/internal/util"
	"github.com/crestviewcap/positions/internal/valuecode"
	"github.com/gin-gonic/gin"
)

// PositionHandler serves read-only views of the position table.
type PositionHandler struct {
	positionRepo *repository.PositionRepository
}

// NewPositionHandler creates a new PositionHandler
func NewPositionHandler(positionRepo *repository.PositionRepository) *PositionHandler {
	return &PositionHandler{positionRepo: positionRepo}
}

// List handles GET /positions?date=YYYY-MM-DD (date defaults to the latest).
func (h *PositionHandler) List(c *gin.Context) {
	date, err := h.resolveDate(c)
	if err != nil {
		return // response already written
	}

	positions, err := h.positionRepo.GetByDate(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	out := make([]models.PositionResponse, 0, len(positions))
	for _, p := range positions {
		resp := models.PositionResponse{FinancialPosition: p}
		if v, err := valuecode.Decode(p.AdjustedValue); err == nil {
			resp.DecodedValue = v.StringFixed(2)
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{"date": util.FormatDay(date), "positions": out})
}

// ListDates handles GET /positions/dates
func (h *PositionHandler) ListDates(c *gin.Context) {
	dates, err := h.positionRepo.ListDates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, util.FormatDay(d))
	}
	c.JSON(http.StatusOK, gin.H{"dates": out})
}

func (h *PositionHandler) resolveDate(c *gin.Context) (date time.Time, err error) {
	if s := c.Query("date"); s != "" {
		date, err = util.ParseDay(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "bad_request",
				Message: "date must be YYYY-MM-DD",
			})
			return
		}
		return date, nil
	}

	date, err = h.positionRepo.LatestDate(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNoPositions) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "no positions loaded yet",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	return date, nil
}
