package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crestviewcap/positions/internal/cache"
	"github.com/crestviewcap/positions/internal/models"
	"github.com/crestviewcap/positions/internal/services"
	"github.com/crestviewcap/positions/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// IngestHandler accepts extract uploads and hands them to the pipeline as
// detached background jobs, so a request timeout never aborts an in-flight
// load.
type IngestHandler struct {
	pipeline *services.Pipeline
	memCache *cache.MemoryCache
	inboxDir string
}

// NewIngestHandler creates a new IngestHandler
func NewIngestHandler(pipeline *services.Pipeline, memCache *cache.MemoryCache, inboxDir string) *IngestHandler {
	return &IngestHandler{pipeline: pipeline, memCache: memCache, inboxDir: inboxDir}
}

// Upload handles POST /ingest with a multipart "file" field.
func (h *IngestHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "multipart field 'file' is required",
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xlsx" && ext != ".csv" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "only .xlsx and .csv extracts are supported",
		})
		return
	}

	if err := os.MkdirAll(h.inboxDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	jobID := uuid.New().String()
	dest := filepath.Join(h.inboxDir, fmt.Sprintf("%s_%s", jobID[:8], filepath.Base(fileHeader.Filename)))
	if err := c.SaveUploadedFile(fileHeader, dest); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	// Deliberately detached from the request context: long loads outlive the
	// caller. The accepted jobID is the run id for the whole run, so the
	// caller can match this response to the completion marker and the logs.
	go func() {
		res := h.pipeline.RunFile(context.Background(), jobID, dest)
		if !res.Success {
			log.Errorf("background run %s failed: %s", jobID, res.Reason)
			return
		}
		h.memCache.InvalidateDate(res.ReportDate)
	}()

	c.JSON(http.StatusAccepted, models.IngestAccepted{
		RunID:      jobID,
		SourceFile: filepath.Base(dest),
		Status:     "processing",
	})
}

// Aggregate handles POST /aggregate?date=YYYY-MM-DD. With no date it targets
// the most recent reporting date loaded.
func (h *IngestHandler) Aggregate(c *gin.Context) {
	var date time.Time
	if s := c.Query("date"); s != "" {
		d, err := util.ParseDay(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "bad_request",
				Message: "date must be YYYY-MM-DD",
			})
			return
		}
		date = d
	}

	res, err := h.pipeline.Aggregate(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	h.memCache.InvalidateDate(res.ReportDate)

	c.JSON(http.StatusOK, res)
}
