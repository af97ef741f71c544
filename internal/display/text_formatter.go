// Package display renders analysis reports for people reading a terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/standardbeagle/codegauge/internal/analysis"
	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/graph"
	"github.com/standardbeagle/codegauge/internal/report"
)

// TextFormatter renders a report as plain text
type TextFormatter struct {
	options FormatterOptions
}

// FormatterOptions controls text rendering
type FormatterOptions struct {
	ShowAll  bool   // list every item, not only the flagged ones
	MaxItems int    // 0 means no limit
	Indent   string // Indentation string
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(options FormatterOptions) *TextFormatter {
	if options.Indent == "" {
		options.Indent = "  "
	}
	return &TextFormatter{options: options}
}

// NewFormatter returns the formatter for f, text included
func NewFormatter(f report.Format, options FormatterOptions) report.Formatter {
	if f == report.FormatText {
		return NewTextFormatter(options)
	}
	return report.NewFormatter(f)
}

// Format writes r to w
func (tf *TextFormatter) Format(r *report.Report, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s analysis of %s", r.Analyzer, r.Meta.Target))
	if r.Status == report.StatusPartial {
		sb.WriteString(" (partial: run deadline reached)")
	}
	sb.WriteString("\n\n")

	switch summary := r.Summary.(type) {
	case analysis.ComplexitySummary:
		items, _ := r.Items.([]analysis.ComplexityItem)
		tf.formatComplexity(&sb, summary, items)
	case analysis.DependencySummary:
		items, _ := r.Items.([]analysis.DependencyItem)
		tf.formatDependencies(&sb, summary, items)
	case analysis.CouplingSummary:
		items, _ := r.Items.([]analysis.CouplingItem)
		tf.formatCoupling(&sb, summary, items)
	case analysis.FileMetricsSummary:
		items, _ := r.Items.([]analysis.FileMetricsItem)
		tf.formatFileMetrics(&sb, summary, items)
	default:
		sb.WriteString("No summary available\n")
	}

	tf.formatErrors(&sb, r.Errors)

	_, err := io.WriteString(w, sb.String())
	return err
}

func (tf *TextFormatter) formatComplexity(sb *strings.Builder, s analysis.ComplexitySummary, items []analysis.ComplexityItem) {
	sb.WriteString(fmt.Sprintf("Files: %d analyzed, %d failed", s.FilesAnalyzed, s.FilesFailed))
	if s.ApproximateFiles > 0 {
		sb.WriteString(fmt.Sprintf(" (%d approximate)", s.ApproximateFiles))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Functions: %d, average complexity %.2f, max %d\n",
		s.FunctionsAnalyzed, s.AverageComplexity, s.MaxComplexity))
	sb.WriteString(fmt.Sprintf("Over threshold %d: %d functions in %d files\n",
		s.Threshold, s.FunctionsOverThreshold, s.FilesWithComplexFunctions))

	shown := 0
	for _, item := range items {
		var flagged []analysis.FunctionComplexity
		for _, fn := range item.Functions {
			if tf.options.ShowAll || fn.Recommendation != "" {
				flagged = append(flagged, fn)
			}
		}
		if len(flagged) == 0 || tf.limitReached(shown) {
			continue
		}
		shown++

		sb.WriteString(fmt.Sprintf("\n%s (avg %.2f, max %d)\n", item.Path, item.AverageComplexity, item.MaxComplexity))
		for i, fn := range flagged {
			sb.WriteString(tf.options.Indent)
			sb.WriteString(branch(i == len(flagged)-1))
			sb.WriteString(fmt.Sprintf("%s:%d complexity %d", fn.Name, fn.Line, fn.Complexity))
			if fn.Recommendation != "" {
				sb.WriteString(" - " + fn.Recommendation)
			}
			sb.WriteString("\n")
		}
	}
}

func (tf *TextFormatter) formatDependencies(sb *strings.Builder, s analysis.DependencySummary, items []analysis.DependencyItem) {
	sb.WriteString(fmt.Sprintf("Files: %d analyzed, %d failed\n", s.FilesAnalyzed, s.FilesFailed))
	sb.WriteString(fmt.Sprintf("Edges: %d; references %d resolved, %d unresolved\n",
		s.Edges, s.ReferencesResolved, s.ReferencesUnresolved))

	sb.WriteString(fmt.Sprintf("Cycles: %d", s.CycleCount))
	if s.CyclesTruncated {
		sb.WriteString(" (truncated)")
	}
	sb.WriteString("\n")
	for i, c := range s.Cycles {
		if tf.limitReached(i) {
			break
		}
		sb.WriteString(tf.options.Indent)
		sb.WriteString(fmt.Sprintf("[%s] %s\n", c.Severity, cyclePath(c)))
	}

	sb.WriteString(fmt.Sprintf("Orphans: %d\n", s.OrphanCount))
	for i, o := range s.Orphans {
		if tf.limitReached(i) {
			break
		}
		sb.WriteString(tf.options.Indent + o + "\n")
	}

	if !tf.options.ShowAll {
		return
	}
	for i, item := range items {
		if tf.limitReached(i) {
			break
		}
		sb.WriteString(fmt.Sprintf("\n%s (in %d, out %d)\n", item.Path, item.FanIn, item.FanOut))
		for j, dep := range item.Dependencies {
			sb.WriteString(tf.options.Indent)
			sb.WriteString(branch(j == len(item.Dependencies)-1))
			sb.WriteString(dep + "\n")
		}
	}
}

func (tf *TextFormatter) formatCoupling(sb *strings.Builder, s analysis.CouplingSummary, items []analysis.CouplingItem) {
	sb.WriteString(fmt.Sprintf("Files: %d analyzed, %d failed; %d edges\n", s.FilesAnalyzed, s.FilesFailed, s.Edges))
	sb.WriteString(fmt.Sprintf("Coupling: average %.2f, max %d; %d over threshold %d\n",
		s.AverageCoupling, s.MaxCoupling, s.FlaggedCount, s.Threshold))

	if len(s.MostCoupled) > 0 {
		sb.WriteString("\nMost coupled:\n")
		for i, m := range s.MostCoupled {
			sb.WriteString(fmt.Sprintf("%s%2d. %s score %.2f (in %d, out %d)\n",
				tf.options.Indent, i+1, m.Path, m.Score, m.FanIn, m.FanOut))
		}
	}

	shown := 0
	for _, item := range items {
		if !item.Flagged || tf.limitReached(shown) {
			continue
		}
		shown++
		sb.WriteString(fmt.Sprintf("\n%s total %d, instability %.2f - %s\n",
			item.Path, item.Total, item.Instability, item.Recommendation))
	}
}

func (tf *TextFormatter) formatFileMetrics(sb *strings.Builder, s analysis.FileMetricsSummary, items []analysis.FileMetricsItem) {
	sb.WriteString(fmt.Sprintf("Files: %d analyzed, %d failed, %d bytes\n", s.FilesAnalyzed, s.FilesFailed, s.SizeBytes))
	sb.WriteString(fmt.Sprintf("Lines: %d total, %d code, %d comment, %d blank (avg %.2f per file)\n",
		s.TotalLines, s.CodeLines, s.CommentLines, s.BlankLines, s.AverageLines))
	sb.WriteString(fmt.Sprintf("Over budget %d: %d files\n", s.LineBudget, s.FilesOverBudget))

	shown := 0
	for _, item := range items {
		if !(tf.options.ShowAll || item.OverBudget) || tf.limitReached(shown) {
			continue
		}
		shown++
		sb.WriteString(fmt.Sprintf("%s%s: %d lines (%d code), %d functions",
			tf.options.Indent, item.Path, item.TotalLines, item.CodeLines, item.Functions))
		if item.Recommendation != "" {
			sb.WriteString(" - " + item.Recommendation)
		}
		sb.WriteString("\n")
	}
}

func (tf *TextFormatter) formatErrors(sb *strings.Builder, errs []cgerrors.NonFatal) {
	if len(errs) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\nErrors (%d):\n", len(errs)))
	for _, e := range errs {
		sb.WriteString(fmt.Sprintf("%s%s %s: %s (%s)\n", tf.options.Indent, e.Severity, e.Path, e.Cause, e.Action))
	}
}

func (tf *TextFormatter) limitReached(shown int) bool {
	return tf.options.MaxItems > 0 && shown >= tf.options.MaxItems
}

func branch(isLast bool) string {
	if isLast {
		return "└─→ "
	}
	return "├─→ "
}

// cyclePath closes the loop back to its first node
func cyclePath(c graph.Cycle) string {
	if len(c.Nodes) == 0 {
		return ""
	}
	return strings.Join(c.Nodes, " → ") + " → " + c.Nodes[0]
}
