// Package status emits the completion marker an out-of-band checker polls
// for: one small JSON file per ingested extract, written only after the load
// has finished.
package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Marker is the single fact "ingestion for this file finished, with these
// counts".
type Marker struct {
	RunID         string    `json:"run_id"`
	SourceFile    string    `json:"source_file"`
	CompletedAt   time.Time `json:"completed_at"`
	RowsProcessed int       `json:"rows_processed"`
	RowsInserted  int       `json:"rows_inserted"`
	ErrorCount    int       `json:"error_count"`
}

// Write persists a marker to dir as <source>.done.json. The file appears
// atomically via a temp-file rename so a poller never observes a partial
// marker.
func Write(dir string, m Marker) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create status dir: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal marker: %w", err)
	}

	base := filepath.Base(m.SourceFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	final := filepath.Join(dir, base+".done.json")

	tmp, err := os.CreateTemp(dir, base+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp marker: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write marker: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close marker: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to publish marker: %w", err)
	}
	return nil
}

// Read loads a previously written marker. Used by the status checker and by
// tests.
func Read(path string) (*Marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read marker: %w", err)
	}
	var m Marker
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse marker: %w", err)
	}
	return &m, nil
}
