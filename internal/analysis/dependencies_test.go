package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/graph"
	"github.com/standardbeagle/codegauge/internal/types"
	"github.com/standardbeagle/codegauge/testhelpers"
)

func dependencyFixture(t *testing.T) *testhelpers.TestDataBuilder {
	return testhelpers.NewTestDataBuilder(t).
		AddFile("src/a.js", "import { b } from './b'\nexport const a = () => b()\n").
		AddFile("src/b.js", "import { a } from './a.js'\nexport function b() { return a }\n").
		AddFile("src/lonely.js", "export const nothing = 0\n").
		AddFile("src/main.js", "import { a } from './a'\nimport fs from 'fs'\nimport { gone } from './gone'\n")
}

func itemByPath(items []DependencyItem, path string) *DependencyItem {
	for i := range items {
		if items[i].Path == path {
			return &items[i]
		}
	}
	return nil
}

func TestDependencies_CycleOrphansAndWarnings(t *testing.T) {
	fx := dependencyFixture(t)
	cfg := testhelpers.NewTestConfigBuilder(fx.Root()).WithEntryPoints("src/main.js").Build()
	e := newEngine(t, cfg, nil)

	r, err := e.Dependencies(context.Background(), ".")
	require.NoError(t, err)
	assert.Equal(t, "dependencies", r.Analyzer)

	summary := r.Summary.(DependencySummary)
	items := r.Items.([]DependencyItem)

	require.Len(t, summary.Cycles, 1)
	assert.Equal(t, []string{"src/a.js", "src/b.js"}, summary.Cycles[0].Nodes)
	assert.Equal(t, graph.SeverityCritical, summary.Cycles[0].Severity)
	assert.Equal(t, 1, summary.CycleCount)
	assert.False(t, summary.CyclesTruncated)

	assert.Equal(t, []string{"src/lonely.js"}, summary.Orphans)
	lonely := itemByPath(items, "src/lonely.js")
	require.NotNil(t, lonely)
	assert.Zero(t, lonely.FanIn)
	assert.Zero(t, lonely.FanOut)
	assert.Equal(t, []string{}, lonely.Dependencies)
	assert.Equal(t, []string{}, lonely.Dependents)

	entry := itemByPath(items, "src/main.js")
	require.NotNil(t, entry)
	assert.True(t, entry.EntryPoint)
	assert.Equal(t, []string{"src/a.js"}, entry.Dependencies)
	require.Len(t, entry.References, 3)
	assert.True(t, entry.References[0].Resolved)
	assert.Equal(t, []string{"src/a.js"}, entry.References[0].ResolvedTo)
	assert.False(t, entry.References[1].Resolved, "bare imports are external")
	assert.False(t, entry.References[2].Resolved)

	a := itemByPath(items, "src/a.js")
	require.NotNil(t, a)
	assert.Equal(t, []string{"src/b.js", "src/main.js"}, a.Dependents)
	assert.Equal(t, 2, a.FanIn)

	assert.Equal(t, 3, summary.Edges)
	assert.Equal(t, 5, summary.ReferencesTotal)
	assert.Equal(t, 3, summary.ReferencesResolved)

	// only the missing relative import is a warning; external packages are not
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "src/main.js", r.Errors[0].Path)
	assert.Equal(t, cgerrors.ActionExcluded, r.Errors[0].Action)
	assert.Equal(t, cgerrors.SeverityWarning, r.Errors[0].Severity)
	assert.Contains(t, r.Errors[0].Cause, "./gone")
	assert.Zero(t, summary.FilesFailed, "unresolved references do not fail a file")
}

func TestDependencies_ItemsFollowWalkOrder(t *testing.T) {
	fx := dependencyFixture(t)
	e := newEngine(t, testhelpers.NewTestConfigBuilder(fx.Root()).Build(), nil)

	r, err := e.Dependencies(context.Background(), "src")
	require.NoError(t, err)

	var paths []string
	for _, item := range r.Items.([]DependencyItem) {
		paths = append(paths, item.Path)
	}
	assert.Equal(t, []string{"src/a.js", "src/b.js", "src/lonely.js", "src/main.js"}, paths)
	assert.Equal(t, "src", r.Meta.Target)
}

func TestComputeDependencies_SelfReference(t *testing.T) {
	self := parsed("pkg/self.py", types.LangPython, types.FidelityExact)
	self.Unit.References = []types.ReferenceRecord{{Target: ".self", Line: 1, Kind: types.RefImport}}
	run := unitRun(self)

	summary, items, warnings, err := ComputeDependencies(context.Background(), run, 0, nil)
	require.NoError(t, err)

	assert.Empty(t, warnings)
	assert.Equal(t, 1, summary.SelfReferences)
	assert.Zero(t, summary.Edges)
	assert.Empty(t, summary.Cycles)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].SelfReferences)
	assert.Zero(t, items[0].FanOut)
}

func TestComputeDependencies_EmptyRun(t *testing.T) {
	summary, items, warnings, err := ComputeDependencies(context.Background(), unitRun(), 10, nil)
	require.NoError(t, err)

	assert.NotNil(t, items)
	assert.Empty(t, warnings)
	assert.NotNil(t, summary.Cycles)
	assert.NotNil(t, summary.Orphans)
}
