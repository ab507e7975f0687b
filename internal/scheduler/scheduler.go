// Package scheduler runs the ingestion pipeline out-of-band for extracts
// dropped into an inbox directory.
package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/crestviewcap/positions/internal/services"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// processedDirName is the inbox subdirectory extracts are moved to after
// their run completes, successful or not.
const processedDirName = "processed"

// Runner is the slice of the pipeline the scheduler drives.
type Runner interface {
	RunFile(ctx context.Context, runID, path string) *services.RunResult
}

// Scheduler scans an inbox directory on a cron schedule and runs the pipeline
// for each extract it finds. Files are handled strictly one at a time, so two
// drops for the same reporting date never ingest concurrently; a tick that
// fires while a scan is still running is skipped.
type Scheduler struct {
	cron     *cron.Cron
	pipeline Runner
	inboxDir string
	scanning sync.Mutex
}

// New creates a Scheduler scanning inboxDir per the cron spec.
func New(spec, inboxDir string, pipeline Runner) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		pipeline: pipeline,
		inboxDir: inboxDir,
	}
	if _, err := s.cron.AddFunc(spec, s.Scan); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins the scan schedule.
func (s *Scheduler) Start() {
	log.Infof("inbox scheduler watching %s", s.inboxDir)
	s.cron.Start()
}

// Stop halts the schedule and waits for an in-flight scan to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Scan processes every extract currently in the inbox, oldest name first.
// cron runs every tick in its own goroutine, so a scan that outlives the tick
// interval would otherwise overlap the next one and ingest the same file
// twice; an in-flight scan makes later ticks no-ops.
func (s *Scheduler) Scan() {
	if !s.scanning.TryLock() {
		log.Debug("inbox scan already in flight, skipping tick")
		return
	}
	defer s.scanning.Unlock()

	entries, err := os.ReadDir(s.inboxDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Errorf("inbox scan failed: %v", err)
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".xlsx" && ext != ".csv" {
			continue
		}
		path := filepath.Join(s.inboxDir, entry.Name())

		res := s.pipeline.RunFile(context.Background(), "", path)
		if !res.Success {
			log.Errorf("inbox run for %s failed: %s", entry.Name(), res.Reason)
		}
		if err := s.archive(path); err != nil {
			log.Errorf("failed to archive %s: %v", entry.Name(), err)
		}
	}
}

func (s *Scheduler) archive(path string) error {
	dir := filepath.Join(s.inboxDir, processedDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.Rename(path, filepath.Join(dir, filepath.Base(path)))
}
