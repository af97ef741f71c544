package analysis

import (
	"context"

	"github.com/standardbeagle/codegauge/internal/report"
	"github.com/standardbeagle/codegauge/internal/types"
)

// RecommendSplitFile is attached to files over the line budget
const RecommendSplitFile = "split into smaller files"

// FileMetricsItem reports one file. Function, class and import counts are
// zero for languages with no parser strategy.
type FileMetricsItem struct {
	Path           string         `json:"path" yaml:"path"`
	Language       types.Language `json:"language" yaml:"language"`
	Fidelity       types.Fidelity `json:"fidelity,omitempty" yaml:"fidelity,omitempty"`
	TotalLines     int            `json:"total_lines" yaml:"total_lines"`
	CodeLines      int            `json:"code_lines" yaml:"code_lines"`
	CommentLines   int            `json:"comment_lines" yaml:"comment_lines"`
	BlankLines     int            `json:"blank_lines" yaml:"blank_lines"`
	Functions      int            `json:"functions" yaml:"functions"`
	Classes        int            `json:"classes" yaml:"classes"`
	Imports        int            `json:"imports" yaml:"imports"`
	SizeBytes      int64          `json:"size_bytes" yaml:"size_bytes"`
	Fingerprint    string         `json:"fingerprint" yaml:"fingerprint"`
	OverBudget     bool           `json:"over_budget" yaml:"over_budget"`
	Recommendation string         `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
}

// LanguageMetrics aggregates the files of one language
type LanguageMetrics struct {
	Files      int `json:"files" yaml:"files"`
	TotalLines int `json:"total_lines" yaml:"total_lines"`
	CodeLines  int `json:"code_lines" yaml:"code_lines"`
}

// FileMetricsSummary aggregates line statistics over analyzed files
type FileMetricsSummary struct {
	FilesAnalyzed   int                                `json:"files_analyzed" yaml:"files_analyzed"`
	FilesFailed     int                                `json:"files_failed" yaml:"files_failed"`
	TotalLines      int                                `json:"total_lines" yaml:"total_lines"`
	CodeLines       int                                `json:"code_lines" yaml:"code_lines"`
	CommentLines    int                                `json:"comment_lines" yaml:"comment_lines"`
	BlankLines      int                                `json:"blank_lines" yaml:"blank_lines"`
	Functions       int                                `json:"functions" yaml:"functions"`
	Classes         int                                `json:"classes" yaml:"classes"`
	Imports         int                                `json:"imports" yaml:"imports"`
	SizeBytes       int64                              `json:"size_bytes" yaml:"size_bytes"`
	AverageLines    float64                            `json:"average_lines" yaml:"average_lines"`
	LineBudget      int                                `json:"line_budget" yaml:"line_budget"`
	FilesOverBudget int                                `json:"files_over_budget" yaml:"files_over_budget"`
	Languages       map[types.Language]LanguageMetrics `json:"languages" yaml:"languages"`
}

// FileMetrics collects line and size statistics for every file under target
func (e *Engine) FileMetrics(ctx context.Context, target string) (*report.Report, error) {
	run, err := e.Collect(ctx, target)
	if err != nil {
		return nil, err
	}
	summary, items := ComputeFileMetrics(run, e.cfg.Analysis.LineBudget)
	return e.finish(report.AnalyzerFileMetrics, run, summary, items, nil), nil
}

// ComputeFileMetrics builds items in walk order. Unlike the other analyzers
// every collected file is reported, parsed or not.
func ComputeFileMetrics(run *Run, budget int) (FileMetricsSummary, []FileMetricsItem) {
	items := make([]FileMetricsItem, 0, len(run.Files))
	summary := FileMetricsSummary{
		LineBudget: budget,
		Languages:  map[types.Language]LanguageMetrics{},
	}

	for _, f := range run.Files {
		item := FileMetricsItem{
			Path:         f.RelPath,
			Language:     f.Language,
			TotalLines:   f.Lines.Total,
			CodeLines:    f.Lines.Code,
			CommentLines: f.Lines.Comment,
			BlankLines:   f.Lines.Blank,
			SizeBytes:    f.Size,
			Fingerprint:  f.Fingerprint,
		}
		if u := f.Unit; u != nil {
			item.Fidelity = u.Fidelity
			item.Functions = len(u.Functions)
			item.Classes = u.Classes
			item.Imports = len(u.References)
		}
		if budget > 0 && item.TotalLines > budget {
			item.OverBudget = true
			item.Recommendation = RecommendSplitFile
			summary.FilesOverBudget++
		}

		summary.FilesAnalyzed++
		summary.TotalLines += item.TotalLines
		summary.CodeLines += item.CodeLines
		summary.CommentLines += item.CommentLines
		summary.BlankLines += item.BlankLines
		summary.Functions += item.Functions
		summary.Classes += item.Classes
		summary.Imports += item.Imports
		summary.SizeBytes += item.SizeBytes

		lm := summary.Languages[f.Language]
		lm.Files++
		lm.TotalLines += item.TotalLines
		lm.CodeLines += item.CodeLines
		summary.Languages[f.Language] = lm

		items = append(items, item)
	}

	if summary.FilesAnalyzed > 0 {
		summary.AverageLines = round2(float64(summary.TotalLines) / float64(summary.FilesAnalyzed))
	}
	summary.FilesFailed = report.FilesFailed(run.Errors)
	return summary, items
}
