package analysis

import (
	"context"
	"fmt"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/graph"
	"github.com/standardbeagle/codegauge/internal/logging"
	"github.com/standardbeagle/codegauge/internal/report"
	"github.com/standardbeagle/codegauge/internal/resolver"
	"github.com/standardbeagle/codegauge/internal/types"
	"github.com/standardbeagle/codegauge/internal/walker"
)

// Reference is one reference statement of a dependency item
type Reference struct {
	Target     string              `json:"target" yaml:"target"`
	Kind       types.ReferenceKind `json:"kind" yaml:"kind"`
	Line       int                 `json:"line" yaml:"line"`
	Resolved   bool                `json:"resolved" yaml:"resolved"`
	ResolvedTo []string            `json:"resolved_to,omitempty" yaml:"resolved_to,omitempty"`
}

// DependencyItem reports one graph node
type DependencyItem struct {
	Path           string         `json:"path" yaml:"path"`
	Language       types.Language `json:"language" yaml:"language"`
	Fidelity       types.Fidelity `json:"fidelity" yaml:"fidelity"`
	FanIn          int            `json:"fan_in" yaml:"fan_in"`
	FanOut         int            `json:"fan_out" yaml:"fan_out"`
	SelfReferences int            `json:"self_references" yaml:"self_references"`
	EntryPoint     bool           `json:"entry_point" yaml:"entry_point"`
	Dependencies   []string       `json:"dependencies" yaml:"dependencies"`
	Dependents     []string       `json:"dependents" yaml:"dependents"`
	References     []Reference    `json:"references" yaml:"references"`
}

// DependencySummary aggregates the graph
type DependencySummary struct {
	FilesAnalyzed        int           `json:"files_analyzed" yaml:"files_analyzed"`
	FilesFailed          int           `json:"files_failed" yaml:"files_failed"`
	Edges                int           `json:"edges" yaml:"edges"`
	ReferencesTotal      int           `json:"references_total" yaml:"references_total"`
	ReferencesResolved   int           `json:"references_resolved" yaml:"references_resolved"`
	ReferencesUnresolved int           `json:"references_unresolved" yaml:"references_unresolved"`
	SelfReferences       int           `json:"self_references" yaml:"self_references"`
	CycleCount           int           `json:"cycle_count" yaml:"cycle_count"`
	CyclesTruncated      bool          `json:"cycles_truncated" yaml:"cycles_truncated"`
	Cycles               []graph.Cycle `json:"cycles" yaml:"cycles"`
	OrphanCount          int           `json:"orphan_count" yaml:"orphan_count"`
	Orphans              []string      `json:"orphans" yaml:"orphans"`
}

// moduleGraph is the pass 2 result shared by the dependency and coupling analyzers
type moduleGraph struct {
	graph      *graph.Graph
	files      []FileResult // graph nodes, walk order
	references map[string][]Reference
	warnings   []cgerrors.NonFatal
	resolved   int
	unresolved int
}

// buildGraph resolves every reference of the parsed files and inserts the
// edges. Local references that cannot be resolved become warnings.
func buildGraph(run *Run) *moduleGraph {
	var files []FileResult
	for _, f := range run.Files {
		if f.Unit != nil {
			files = append(files, f)
		}
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.RelPath
	}

	mg := &moduleGraph{
		graph:      graph.New(paths),
		files:      files,
		references: make(map[string][]Reference, len(files)),
	}
	res := resolver.New(paths, run.Manifest)

	for _, f := range files {
		refs := make([]Reference, 0, len(f.Unit.References))
		for _, rec := range f.Unit.References {
			if rec.File == "" {
				rec.File = f.RelPath
			}
			out := res.Resolve(rec, f.Language)
			ref := Reference{Target: rec.Target, Kind: rec.Kind, Line: rec.Line}

			if out.Resolved() {
				ref.Resolved = true
				ref.ResolvedTo = out.Targets
				mg.resolved++
				for _, to := range out.Targets {
					mg.graph.AddEdge(f.RelPath, to)
				}
			} else {
				mg.unresolved++
				if out.Local {
					mg.warnings = append(mg.warnings, unresolvedWarning(res, f, rec))
				}
			}
			refs = append(refs, ref)
		}
		mg.references[f.RelPath] = refs
	}

	logging.LogRun("graph: %d nodes, %d edges, %d resolved, %d unresolved references",
		mg.graph.Len(), mg.graph.EdgeCount(), mg.resolved, mg.unresolved)
	return mg
}

func unresolvedWarning(res *resolver.Resolver, f FileResult, rec types.ReferenceRecord) cgerrors.NonFatal {
	err := fmt.Errorf("%w: %q at line %d", cgerrors.ErrUnresolved, rec.Target, rec.Line)
	if hint := res.Suggest(rec.Target, f.RelPath, f.Language); hint != "" {
		err = fmt.Errorf("%w (did you mean %s?)", err, hint)
	}
	return cgerrors.ToNonFatal(f.RelPath, err)
}

// Dependencies maps references under target into a graph and reports cycles
// and orphans
func (e *Engine) Dependencies(ctx context.Context, target string) (*report.Report, error) {
	run, err := e.Collect(ctx, target)
	if err != nil {
		return nil, err
	}
	summary, items, warnings, err := ComputeDependencies(ctx, run, e.cfg.Analysis.MaxCycles, e.cfg.Analysis.EntryPoints)
	if err != nil {
		return nil, err
	}
	return e.finish(report.AnalyzerDependencies, run, summary, items, warnings), nil
}

// ComputeDependencies runs pass 2 over a collected run. entryPoints are
// doublestar globs matched against root-relative paths.
func ComputeDependencies(ctx context.Context, run *Run, maxCycles int, entryPoints []string) (DependencySummary, []DependencyItem, []cgerrors.NonFatal, error) {
	mg := buildGraph(run)
	g := mg.graph

	cycles, truncated, err := g.Cycles(ctx, maxCycles)
	if err != nil {
		return DependencySummary{}, nil, nil, err
	}
	if cycles == nil {
		cycles = []graph.Cycle{}
	}

	isEntry := func(p string) bool { return walker.MatchAny(entryPoints, p) }
	orphans := g.Orphans(isEntry)
	if orphans == nil {
		orphans = []string{}
	}

	items := make([]DependencyItem, 0, len(mg.files))
	selfRefs := 0
	for _, f := range mg.files {
		item := DependencyItem{
			Path:           f.RelPath,
			Language:       f.Language,
			Fidelity:       f.Unit.Fidelity,
			FanIn:          g.FanIn(f.RelPath),
			FanOut:         g.FanOut(f.RelPath),
			SelfReferences: g.SelfReferences(f.RelPath),
			EntryPoint:     isEntry(f.RelPath),
			Dependencies:   g.Dependencies(f.RelPath),
			Dependents:     g.Dependents(f.RelPath),
			References:     mg.references[f.RelPath],
		}
		selfRefs += item.SelfReferences
		items = append(items, item)
	}

	summary := DependencySummary{
		FilesAnalyzed:        len(mg.files),
		FilesFailed:          report.FilesFailed(run.Errors),
		Edges:                g.EdgeCount(),
		ReferencesTotal:      mg.resolved + mg.unresolved,
		ReferencesResolved:   mg.resolved,
		ReferencesUnresolved: mg.unresolved,
		SelfReferences:       selfRefs,
		CycleCount:           len(cycles),
		CyclesTruncated:      truncated,
		Cycles:               cycles,
		OrphanCount:          len(orphans),
		Orphans:              orphans,
	}
	return summary, items, mg.warnings, nil
}
