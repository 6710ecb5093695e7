package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"catalog-sync/core/reconcile"
	"catalog-sync/core/workspace"
)

// DegradedBatch is a batch that did not complete. Its assets stay pending and are picked
// up again by the next run.
type DegradedBatch struct {
	BatchID    int      `json:"batch_id"`
	Token      string   `json:"token"`
	Keys       []string `json:"keys"`
	ScratchDir string   `json:"scratch_dir,omitempty"`
	Reason     string   `json:"reason"`
	Err        error    `json:"-"`
}

// Result is the outcome of one run.
type Result struct {
	RunID      string                `json:"run_id"`
	State      State                 `json:"state"`
	Summary    reconcile.PlanSummary `json:"summary"`
	Batches    int                   `json:"batches"`
	Degraded   []DegradedBatch       `json:"degraded"`
	Imported   int                   `json:"imported"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Error      string                `json:"error,omitempty"`
	Err        error                 `json:"-"`
}

// Aborted reports whether the run ended on a fatal error.
func (r *Result) Aborted() bool {
	return r.State == StateAborted
}

// Duration returns how long the run took.
func (r *Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// MarshalReport renders the result as indented JSON.
func (r *Result) MarshalReport() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteReport writes the result to dir/<run-id>.json and returns the path.
func WriteReport(dir string, r *Result) (string, error) {
	data, err := r.MarshalReport()
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, r.RunID+".json")
	if err := workspace.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
