package analysis

import (
	"context"
	"fmt"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/report"
)

// Kind names one analyzer
type Kind string

const (
	KindComplexity   Kind = "complexity"
	KindDependencies Kind = "deps"
	KindCoupling     Kind = "coupling"
	KindMetrics      Kind = "metrics"
)

// Kinds lists every analyzer in presentation order
func Kinds() []Kind {
	return []Kind{KindComplexity, KindDependencies, KindCoupling, KindMetrics}
}

// Analyze dispatches to the analyzer named by kind
func (e *Engine) Analyze(ctx context.Context, kind Kind, target string) (*report.Report, error) {
	switch kind {
	case KindComplexity:
		return e.Complexity(ctx, target)
	case KindDependencies:
		return e.Dependencies(ctx, target)
	case KindCoupling:
		return e.Coupling(ctx, target)
	case KindMetrics:
		return e.FileMetrics(ctx, target)
	}
	return nil, fmt.Errorf("unknown analyzer %q", kind)
}

// finish wraps analyzer output in the report envelope. Pass 1 errors come
// first, then errors raised by the analyzer itself.
func (e *Engine) finish(analyzer string, run *Run, summary, items any, extra []cgerrors.NonFatal) *report.Report {
	r := report.New(analyzer, run.Root, run.Target, run.StartedAt)
	r.Summary = summary
	r.Items = items
	r.Errors = make([]cgerrors.NonFatal, 0, len(run.Errors)+len(extra))
	r.Errors = append(r.Errors, run.Errors...)
	r.Errors = append(r.Errors, extra...)
	if run.Partial {
		r.Status = report.StatusPartial
	}
	r.Finish(e.now())
	return r
}
