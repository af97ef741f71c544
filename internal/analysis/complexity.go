package analysis

import (
	"context"
	"math"

	"github.com/standardbeagle/codegauge/internal/report"
	"github.com/standardbeagle/codegauge/internal/types"
)

// Recommendations attached to functions over the complexity threshold
const (
	RecommendSplitFunction = "split into smaller functions"
	RecommendDecompose     = "candidate for decomposition"
)

// FunctionComplexity is one function of a complexity item
type FunctionComplexity struct {
	Name           string `json:"name" yaml:"name"`
	Line           int    `json:"line" yaml:"line"`
	DecisionPoints int    `json:"decision_points" yaml:"decision_points"`
	Complexity     int    `json:"complexity" yaml:"complexity"`
	Recommendation string `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
}

// ComplexityItem reports one file
type ComplexityItem struct {
	Path              string               `json:"path" yaml:"path"`
	Language          types.Language       `json:"language" yaml:"language"`
	Fidelity          types.Fidelity       `json:"fidelity" yaml:"fidelity"`
	FunctionCount     int                  `json:"function_count" yaml:"function_count"`
	TotalComplexity   int                  `json:"total_complexity" yaml:"total_complexity"`
	AverageComplexity float64              `json:"average_complexity" yaml:"average_complexity"`
	MaxComplexity     int                  `json:"max_complexity" yaml:"max_complexity"`
	ExceedsThreshold  bool                 `json:"exceeds_threshold" yaml:"exceeds_threshold"`
	Functions         []FunctionComplexity `json:"functions" yaml:"functions"`
}

// ComplexitySummary aggregates successfully analyzed files only
type ComplexitySummary struct {
	FilesAnalyzed             int     `json:"files_analyzed" yaml:"files_analyzed"`
	FilesFailed               int     `json:"files_failed" yaml:"files_failed"`
	FunctionsAnalyzed         int     `json:"functions_analyzed" yaml:"functions_analyzed"`
	TotalComplexity           int     `json:"total_complexity" yaml:"total_complexity"`
	AverageComplexity         float64 `json:"average_complexity" yaml:"average_complexity"`
	MaxComplexity             int     `json:"max_complexity" yaml:"max_complexity"`
	Threshold                 int     `json:"threshold" yaml:"threshold"`
	FilesOverThreshold        int     `json:"files_over_threshold" yaml:"files_over_threshold"`
	FunctionsOverThreshold    int     `json:"functions_over_threshold" yaml:"functions_over_threshold"`
	FilesWithComplexFunctions int     `json:"files_with_complex_functions" yaml:"files_with_complex_functions"`
	ApproximateFiles          int     `json:"approximate_files" yaml:"approximate_files"`
}

// Complexity scores every function under target
func (e *Engine) Complexity(ctx context.Context, target string) (*report.Report, error) {
	run, err := e.Collect(ctx, target)
	if err != nil {
		return nil, err
	}
	summary, items := ComputeComplexity(run, e.cfg.Analysis.ComplexityThreshold)
	return e.finish(report.AnalyzerComplexity, run, summary, items, nil), nil
}

// ComputeComplexity builds items and summary from a collected run. Files
// without a parsed unit are left out; walk order is preserved.
func ComputeComplexity(run *Run, threshold int) (ComplexitySummary, []ComplexityItem) {
	items := []ComplexityItem{}
	summary := ComplexitySummary{Threshold: threshold}

	for _, f := range run.Files {
		if f.Unit == nil {
			continue
		}
		item := ComplexityItem{
			Path:      f.RelPath,
			Language:  f.Language,
			Fidelity:  f.Unit.Fidelity,
			Functions: make([]FunctionComplexity, 0, len(f.Unit.Functions)),
		}

		complexFunctions := 0
		for _, fn := range f.Unit.Functions {
			score := fn.Complexity()
			fc := FunctionComplexity{
				Name:           fn.Name,
				Line:           fn.Line,
				DecisionPoints: fn.DecisionPoints,
				Complexity:     score,
			}
			if score > threshold {
				fc.Recommendation = complexityRecommendation(score, threshold)
				complexFunctions++
			}
			item.Functions = append(item.Functions, fc)
			item.TotalComplexity += score
			if score > item.MaxComplexity {
				item.MaxComplexity = score
			}
		}
		item.FunctionCount = len(item.Functions)
		if item.FunctionCount > 0 {
			item.AverageComplexity = round2(float64(item.TotalComplexity) / float64(item.FunctionCount))
		}
		item.ExceedsThreshold = item.FunctionCount > 0 &&
			float64(item.TotalComplexity)/float64(item.FunctionCount) > float64(threshold)

		summary.FilesAnalyzed++
		summary.FunctionsAnalyzed += item.FunctionCount
		summary.TotalComplexity += item.TotalComplexity
		summary.FunctionsOverThreshold += complexFunctions
		if complexFunctions > 0 {
			summary.FilesWithComplexFunctions++
		}
		if item.ExceedsThreshold {
			summary.FilesOverThreshold++
		}
		if item.MaxComplexity > summary.MaxComplexity {
			summary.MaxComplexity = item.MaxComplexity
		}
		if item.Fidelity == types.FidelityApproximate {
			summary.ApproximateFiles++
		}
		items = append(items, item)
	}

	if summary.FunctionsAnalyzed > 0 {
		summary.AverageComplexity = round2(float64(summary.TotalComplexity) / float64(summary.FunctionsAnalyzed))
	}
	summary.FilesFailed = report.FilesFailed(run.Errors)
	return summary, items
}

func complexityRecommendation(score, threshold int) string {
	if score > 2*threshold {
		return RecommendSplitFunction
	}
	return RecommendDecompose
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
