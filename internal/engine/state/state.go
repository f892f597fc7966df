// Package state persists the resume record that makes byte-accurate restart
// of an interrupted download possible across process lifetimes.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/niteshrghv/indm/internal/utils"
)

// ErrCorrupt marks a resume record that could not be parsed or violates its
// own invariants. Callers treat it as "no resume available".
var ErrCorrupt = errors.New("corrupt resume record")

// Record is the durable snapshot of a partially completed download.
type Record struct {
	URL                     string  `json:"url"`
	OutputDir               string  `json:"outputDir"`
	FileName                string  `json:"fileName"`
	TotalBytes              int64   `json:"totalBytes"`
	DownloadedBytesPerChunk []int64 `json:"downloadedBytesPerChunk"`
	NumConnections          int     `json:"numConnections"`
	UUID                    string  `json:"uuid"`
	StateDir                string  `json:"stateDir"`
}

// PathFor returns the state file path for a job id within stateDir.
func PathFor(stateDir, jobID string) string {
	return filepath.Join(stateDir, jobID+".json")
}

// Validate checks the record's internal invariants.
func (r *Record) Validate() error {
	if r.URL == "" || r.UUID == "" {
		return fmt.Errorf("%w: missing url or uuid", ErrCorrupt)
	}
	if r.NumConnections < 1 {
		return fmt.Errorf("%w: numConnections = %d", ErrCorrupt, r.NumConnections)
	}
	if r.TotalBytes < 0 {
		return fmt.Errorf("%w: totalBytes = %d", ErrCorrupt, r.TotalBytes)
	}
	if len(r.DownloadedBytesPerChunk) != r.NumConnections {
		return fmt.Errorf("%w: progress vector length %d != numConnections %d",
			ErrCorrupt, len(r.DownloadedBytesPerChunk), r.NumConnections)
	}
	for i, n := range r.DownloadedBytesPerChunk {
		if n < 0 {
			return fmt.Errorf("%w: negative progress for chunk %d", ErrCorrupt, i)
		}
	}
	return nil
}

// Save writes the record as JSON to its state path. Snapshots are best-effort;
// a lost write costs re-downloaded progress, never correctness.
func Save(rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal resume record: %w", err)
	}

	path := PathFor(rec.StateDir, rec.UUID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write resume record: %w", err)
	}
	utils.Debug("saved resume record %s (%d bytes downloaded)", path, sum(rec.DownloadedBytesPerChunk))
	return nil
}

// Load reads and validates a resume record. A missing file surfaces as
// os.ErrNotExist; an unparseable or invalid record surfaces as ErrCorrupt.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the state file. Absence of the file is the canonical
// "no resume pending" signal, so a missing file is not an error.
func Delete(stateDir, jobID string) error {
	err := os.Remove(PathFor(stateDir, jobID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete resume record: %w", err)
	}
	return nil
}

func sum(chunks []int64) int64 {
	var total int64
	for _, n := range chunks {
		total += n
	}
	return total
}
