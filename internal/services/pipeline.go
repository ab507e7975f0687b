package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/crestviewcap/positions/internal/extract"
	"github.com/crestviewcap/positions/internal/status"
	log "github.com/sirupsen/logrus"
)

// RunResult is the outcome of one end-to-end pipeline run. Success is false
// only when the run never started (unreadable file, unusable layout);
// completing with skipped rows is still a success.
type RunResult struct {
	Success    bool             `json:"success"`
	Reason     string           `json:"reason,omitempty"`
	ViewName   string           `json:"view_name,omitempty"`
	ReportDate time.Time        `json:"report_date"`
	Load       *LoadResult      `json:"load,omitempty"`
	Summary    *AggregateResult `json:"summary,omitempty"`
}

// Pipeline runs one uploaded extract end to end: metadata parse, normalize,
// load, completion marker, aggregation. One invocation per file, strictly
// sequential; callers must not run two pipelines for the same reporting date
// concurrently.
type Pipeline struct {
	loader     *Loader
	aggregator *Aggregator
	statusDir  string
}

// NewPipeline creates a new Pipeline
func NewPipeline(loader *Loader, aggregator *Aggregator, statusDir string) *Pipeline {
	return &Pipeline{loader: loader, aggregator: aggregator, statusDir: statusDir}
}

// RunFile runs the pipeline for an extract on disk. runID may be empty; see
// Run.
func (p *Pipeline) RunFile(ctx context.Context, runID, path string) *RunResult {
	f, err := os.Open(path)
	if err != nil {
		return failedRun(fmt.Sprintf("cannot open source file: %v", err))
	}
	defer f.Close()
	return p.Run(ctx, runID, path, f, filepath.Ext(path))
}

// Run runs the pipeline for an extract supplied as a stream. runID is the id
// the whole run reports under, in the result, the logs, and the completion
// marker; callers that already issued an id to a client pass it here, anyone
// else passes "" and the loader mints one. name is used for logging and the
// completion marker; ext selects the workbook reader.
func (p *Pipeline) Run(ctx context.Context, runID, name string, r io.Reader, ext string) *RunResult {
	rows, err := extract.ReadWorkbook(r, ext)
	if err != nil {
		return failedRun(fmt.Sprintf("cannot parse source file: %v", err))
	}
	if len(rows) <= extract.HeaderRowIndex {
		return failedRun(fmt.Sprintf("extract has %d rows, need metadata block plus header row", len(rows)))
	}

	meta := extract.ParseMetadata(rows[:extract.MetaRowCount])
	header := rows[extract.HeaderRowIndex]
	records := rows[extract.DataRowIndex:]

	log.WithFields(log.Fields{
		"file":        name,
		"view":        meta.ViewName,
		"report_date": meta.ReportDate.Format("2006-01-02"),
	}).Info("pipeline run starting")

	loadRes := p.loader.Load(ctx, runID, meta.ReportDate, header, records)

	result := &RunResult{
		Success:    true,
		ViewName:   meta.ViewName,
		ReportDate: meta.ReportDate,
		Load:       loadRes,
	}

	// The marker is the fact "ingestion for this file finished"; a marker
	// write failure must not fail an otherwise completed run.
	marker := status.Marker{
		RunID:         loadRes.RunID,
		SourceFile:    name,
		CompletedAt:   time.Now().UTC(),
		RowsProcessed: loadRes.RowsProcessed,
		RowsInserted:  loadRes.RowsInserted,
		ErrorCount:    loadRes.ErrorCount,
	}
	if err := status.Write(p.statusDir, marker); err != nil {
		log.WithField("run_id", loadRes.RunID).Errorf("failed to write completion marker: %v", err)
	}

	summary, err := p.aggregator.Recompute(ctx, meta.ReportDate)
	if err != nil {
		// The load itself completed; surface the aggregation failure without
		// reclassifying the run.
		result.Reason = fmt.Sprintf("aggregation failed: %v", err)
		log.WithField("run_id", loadRes.RunID).Errorf("aggregation failed: %v", err)
		return result
	}
	result.Summary = summary

	return result
}

// Aggregate runs only the aggregation step, standalone. A zero date targets
// the most recent reporting date present.
func (p *Pipeline) Aggregate(ctx context.Context, reportDate time.Time) (*AggregateResult, error) {
	return p.aggregator.Recompute(ctx, reportDate)
}

func failedRun(reason string) *RunResult {
	log.Error(reason)
	return &RunResult{Success: false, Reason: reason}
}
