package analysis

import (
	"context"
	"sort"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/report"
)

// Recommendations attached to modules over the coupling threshold
const (
	RecommendSplitModule = "consider splitting"
	RecommendIndirection = "consider introducing an indirection"
)

// CouplingItem reports one module. Dependents and dependencies are listed
// only for flagged modules.
type CouplingItem struct {
	Path           string   `json:"path" yaml:"path"`
	FanIn          int      `json:"fan_in" yaml:"fan_in"`
	FanOut         int      `json:"fan_out" yaml:"fan_out"`
	Total          int      `json:"total" yaml:"total"`
	Instability    float64  `json:"instability" yaml:"instability"`
	Flagged        bool     `json:"flagged" yaml:"flagged"`
	Recommendation string   `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	Dependents     []string `json:"dependents,omitempty" yaml:"dependents,omitempty"`
	Dependencies   []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// CoupledModule is one entry of the most coupled ranking
type CoupledModule struct {
	Path   string  `json:"path" yaml:"path"`
	FanIn  int     `json:"fan_in" yaml:"fan_in"`
	FanOut int     `json:"fan_out" yaml:"fan_out"`
	Total  int     `json:"total" yaml:"total"`
	Score  float64 `json:"score" yaml:"score"`
}

// CouplingSummary aggregates coupling over the graph
type CouplingSummary struct {
	FilesAnalyzed   int             `json:"files_analyzed" yaml:"files_analyzed"`
	FilesFailed     int             `json:"files_failed" yaml:"files_failed"`
	Edges           int             `json:"edges" yaml:"edges"`
	Threshold       int             `json:"threshold" yaml:"threshold"`
	FlaggedCount    int             `json:"flagged_count" yaml:"flagged_count"`
	AverageCoupling float64         `json:"average_coupling" yaml:"average_coupling"`
	MaxCoupling     int             `json:"max_coupling" yaml:"max_coupling"`
	FanInWeight     float64         `json:"fan_in_weight" yaml:"fan_in_weight"`
	FanOutWeight    float64         `json:"fan_out_weight" yaml:"fan_out_weight"`
	MostCoupled     []CoupledModule `json:"most_coupled" yaml:"most_coupled"`
}

// CouplingOptions tune the coupling analyzer
type CouplingOptions struct {
	Threshold    int
	Top          int
	FanInWeight  float64
	FanOutWeight float64
}

// Coupling computes fan-in and fan-out for every module under target
func (e *Engine) Coupling(ctx context.Context, target string) (*report.Report, error) {
	run, err := e.Collect(ctx, target)
	if err != nil {
		return nil, err
	}
	a := e.cfg.Analysis
	summary, items, warnings := ComputeCoupling(run, CouplingOptions{
		Threshold:    a.CouplingThreshold,
		Top:          a.TopCoupled,
		FanInWeight:  a.FanInWeight,
		FanOutWeight: a.FanOutWeight,
	})
	return e.finish(report.AnalyzerCoupling, run, summary, items, warnings), nil
}

// ComputeCoupling builds the module graph of run and scores each node
func ComputeCoupling(run *Run, opts CouplingOptions) (CouplingSummary, []CouplingItem, []cgerrors.NonFatal) {
	mg := buildGraph(run)
	g := mg.graph

	items := make([]CouplingItem, 0, len(mg.files))
	ranked := make([]CoupledModule, 0, len(mg.files))
	summary := CouplingSummary{
		FilesAnalyzed: len(mg.files),
		FilesFailed:   report.FilesFailed(run.Errors),
		Edges:         g.EdgeCount(),
		Threshold:     opts.Threshold,
		FanInWeight:   opts.FanInWeight,
		FanOutWeight:  opts.FanOutWeight,
	}

	totalCoupling := 0
	for _, f := range mg.files {
		in, out := g.FanIn(f.RelPath), g.FanOut(f.RelPath)
		item := CouplingItem{
			Path:   f.RelPath,
			FanIn:  in,
			FanOut: out,
			Total:  in + out,
		}
		if item.Total > 0 {
			item.Instability = round2(float64(out) / float64(item.Total))
		}
		if item.Total > opts.Threshold {
			item.Flagged = true
			item.Recommendation = couplingRecommendation(item.Total, opts.Threshold)
			item.Dependents = g.Dependents(f.RelPath)
			item.Dependencies = g.Dependencies(f.RelPath)
			summary.FlaggedCount++
		}
		if item.Total > summary.MaxCoupling {
			summary.MaxCoupling = item.Total
		}
		totalCoupling += item.Total
		items = append(items, item)

		ranked = append(ranked, CoupledModule{
			Path:   f.RelPath,
			FanIn:  in,
			FanOut: out,
			Total:  item.Total,
			Score:  round2(float64(in)*opts.FanInWeight + float64(out)*opts.FanOutWeight),
		})
	}
	if len(items) > 0 {
		summary.AverageCoupling = round2(float64(totalCoupling) / float64(len(items)))
	}
	summary.MostCoupled = mostCoupled(ranked, opts.Top)
	return summary, items, mg.warnings
}

// mostCoupled sorts by weighted score, descending, ties by path. Modules
// with nothing coupled to them are not ranked.
func mostCoupled(ranked []CoupledModule, top int) []CoupledModule {
	out := ranked[:0:0]
	for _, m := range ranked {
		if m.Total > 0 {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Path < out[j].Path
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

func couplingRecommendation(total, threshold int) string {
	if total > 2*threshold {
		return RecommendSplitModule
	}
	return RecommendIndirection
}
