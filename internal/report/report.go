// Package report defines the envelope every analyzer returns and its
// machine-readable encodings.
package report

import (
	"time"

	"github.com/google/uuid"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/version"
)

// Analyzer names as they appear in the envelope
const (
	AnalyzerComplexity   = "complexity"
	AnalyzerDependencies = "dependencies"
	AnalyzerCoupling     = "coupling"
	AnalyzerFileMetrics  = "file_metrics"
)

// Status tells whether every candidate file was processed
type Status string

const (
	StatusComplete Status = "complete"
	StatusPartial  Status = "partial"
)

// Meta carries run bookkeeping. It changes between runs on identical input
// and is left out of any comparison of results.
type Meta struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	Root       string    `json:"root" yaml:"root"`
	Target     string    `json:"target" yaml:"target"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	DurationMs int64     `json:"duration_ms" yaml:"duration_ms"`
	Version    string    `json:"version" yaml:"version"`
	Build      string    `json:"build" yaml:"build"`
}

// Report is the uniform analyzer output. Errors is always present, empty
// rather than absent when nothing failed.
type Report struct {
	Analyzer string              `json:"analyzer" yaml:"analyzer"`
	Status   Status              `json:"status" yaml:"status"`
	Summary  any                 `json:"summary" yaml:"summary"`
	Items    any                 `json:"items" yaml:"items"`
	Errors   []cgerrors.NonFatal `json:"errors" yaml:"errors"`
	Meta     Meta                `json:"meta" yaml:"meta"`
}

// New starts a report for analyzer with a fresh run id
func New(analyzer, root, target string, startedAt time.Time) *Report {
	return &Report{
		Analyzer: analyzer,
		Status:   StatusComplete,
		Items:    []any{},
		Errors:   []cgerrors.NonFatal{},
		Meta: Meta{
			RunID:     uuid.NewString(),
			Root:      root,
			Target:    target,
			StartedAt: startedAt.UTC(),
			Version:   version.Info(),
			Build:     version.BuildID(),
		},
	}
}

// Finish records the run duration
func (r *Report) Finish(now time.Time) {
	r.Meta.DurationMs = now.Sub(r.Meta.StartedAt).Milliseconds()
	if r.Errors == nil {
		r.Errors = []cgerrors.NonFatal{}
	}
}

// FilesFailed counts distinct paths in errs that stand for a file that was
// not analyzed. Excluded references belong to files that were analyzed.
func FilesFailed(errs []cgerrors.NonFatal) int {
	seen := make(map[string]struct{})
	for _, e := range errs {
		if e.Action == cgerrors.ActionExcluded {
			continue
		}
		seen[e.Path] = struct{}{}
	}
	return len(seen)
}
