package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codegauge/internal/types"
	"github.com/standardbeagle/codegauge/testhelpers"
)

const commentedGo = `// Package app does things.
package app

import "fmt"

/*
Greeter says hello.
*/
type Greeter struct{}

// Greet prints a greeting
func (g Greeter) Greet(name string) {
	fmt.Println("hello", name) // inline comment counts as code
}
`

func TestFileMetrics_LinesReconcile(t *testing.T) {
	fx := testhelpers.NewTestDataBuilder(t).
		AddFile("app.go", commentedGo).
		AddFile("run.sh", "#!/bin/sh\n# comment\n\necho hi\n").
		AddFile("empty.py", "")
	e := newEngine(t, testhelpers.NewTestConfigBuilder(fx.Root()).Build(), nil)

	r, err := e.FileMetrics(context.Background(), ".")
	require.NoError(t, err)
	assert.Equal(t, "file_metrics", r.Analyzer)
	assert.Empty(t, r.Errors)

	items := r.Items.([]FileMetricsItem)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, item.TotalLines, item.CodeLines+item.CommentLines+item.BlankLines, item.Path)
	}

	app := items[0]
	assert.Equal(t, "app.go", app.Path)
	assert.Equal(t, 14, app.TotalLines)
	assert.Equal(t, 5, app.CommentLines)
	assert.Equal(t, 3, app.BlankLines)
	assert.Equal(t, 1, app.Functions)
	assert.Equal(t, 1, app.Classes)
	assert.Equal(t, 1, app.Imports)
	assert.Equal(t, int64(len(commentedGo)), app.SizeBytes)
	assert.NotEmpty(t, app.Fingerprint)
	assert.Equal(t, types.FidelityExact, app.Fidelity)

	empty := items[1]
	assert.Equal(t, "empty.py", empty.Path)
	assert.Zero(t, empty.TotalLines)

	summary := r.Summary.(FileMetricsSummary)
	assert.Equal(t, 3, summary.FilesAnalyzed)
	assert.Equal(t, summary.TotalLines, summary.CodeLines+summary.CommentLines+summary.BlankLines)
	assert.Equal(t, 1, summary.Languages[types.LangGo].Files)
	assert.Equal(t, 1, summary.Languages[types.LangShell].Files)
}

func TestComputeFileMetrics_Budget(t *testing.T) {
	big := FileResult{RelPath: "big.rb", Language: types.LangRuby}
	big.Lines.Total, big.Lines.Code = 700, 700
	small := parsed("small.go", types.LangGo, types.FidelityExact,
		types.FunctionRecord{Name: "f", Line: 1})
	small.Lines.Total, small.Lines.Code, small.Lines.Blank = 10, 9, 1

	summary, items := ComputeFileMetrics(unitRun(big, small), 600)

	require.Len(t, items, 2)
	assert.True(t, items[0].OverBudget)
	assert.Equal(t, RecommendSplitFile, items[0].Recommendation)
	assert.Empty(t, items[0].Fidelity, "no parser, no fidelity")
	assert.Zero(t, items[0].Functions)

	assert.False(t, items[1].OverBudget)
	assert.Equal(t, 1, items[1].Functions)

	assert.Equal(t, 1, summary.FilesOverBudget)
	assert.Equal(t, 710, summary.TotalLines)
	assert.Equal(t, 355.0, summary.AverageLines)
	assert.Equal(t, 600, summary.LineBudget)
}
