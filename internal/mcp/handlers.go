package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codegauge/internal/analysis"
	"github.com/standardbeagle/codegauge/internal/config"
	"github.com/standardbeagle/codegauge/internal/logging"
)

// ComplexityParams are the arguments of analyze_complexity
type ComplexityParams struct {
	Target    string `json:"target,omitempty"`
	Threshold *int   `json:"threshold,omitempty"`
}

// DependencyParams are the arguments of map_dependencies
type DependencyParams struct {
	Target      string   `json:"target,omitempty"`
	EntryPoints []string `json:"entry_points,omitempty"`
	MaxCycles   *int     `json:"max_cycles,omitempty"`
}

// CouplingParams are the arguments of detect_coupling
type CouplingParams struct {
	Target    string `json:"target,omitempty"`
	Threshold *int   `json:"threshold,omitempty"`
	Top       *int   `json:"top,omitempty"`
}

// FileMetricsParams are the arguments of collect_file_metrics
type FileMetricsParams struct {
	Target string `json:"target,omitempty"`
	Budget *int   `json:"budget,omitempty"`
}

// engineWith builds an engine over a copy of the server config, so
// per-call overrides never leak into later calls
func (s *Server) engineWith(override func(a *config.Analysis)) (*analysis.Engine, error) {
	cfg := *s.cfg
	cfg.Analysis.EntryPoints = append([]string(nil), s.cfg.Analysis.EntryPoints...)
	if override != nil {
		override(&cfg.Analysis)
	}
	engine, err := analysis.NewEngine(&cfg, s.registry)
	if err != nil {
		return nil, err
	}
	engine.SetCache(s.cache)
	return engine, nil
}

func (s *Server) run(ctx context.Context, operation string, kind analysis.Kind, target string, warnings []string, override func(a *config.Analysis)) (*mcp.CallToolResult, error) {
	engine, err := s.engineWith(override)
	if err != nil {
		return createErrorResponse(operation, err)
	}

	logging.Log("mcp", "%s target=%q", operation, target)
	r, err := engine.Analyze(ctx, kind, target)
	if err != nil {
		return createErrorResponse(operation, err)
	}
	return createReportResponse(r, warnings)
}

func (s *Server) handleComplexity(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p ComplexityParams
	warnings, err := decodeParams(req.Params.Arguments, &p)
	if err == nil {
		err = validateNonNegative("threshold", p.Threshold)
	}
	if err != nil {
		return createErrorResponse(ToolComplexity, err)
	}

	return s.run(ctx, ToolComplexity, analysis.KindComplexity, p.Target, warnings, func(a *config.Analysis) {
		if p.Threshold != nil {
			a.ComplexityThreshold = *p.Threshold
		}
	})
}

func (s *Server) handleDependencies(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p DependencyParams
	warnings, err := decodeParams(req.Params.Arguments, &p)
	if err == nil {
		err = validateNonNegative("max_cycles", p.MaxCycles)
	}
	if err != nil {
		return createErrorResponse(ToolDependencies, err)
	}

	return s.run(ctx, ToolDependencies, analysis.KindDependencies, p.Target, warnings, func(a *config.Analysis) {
		a.EntryPoints = append(a.EntryPoints, p.EntryPoints...)
		if p.MaxCycles != nil {
			a.MaxCycles = *p.MaxCycles
		}
	})
}

func (s *Server) handleCoupling(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p CouplingParams
	warnings, err := decodeParams(req.Params.Arguments, &p)
	if err == nil {
		err = validateNonNegative("threshold", p.Threshold)
	}
	if err == nil {
		err = validateNonNegative("top", p.Top)
	}
	if err != nil {
		return createErrorResponse(ToolCoupling, err)
	}

	return s.run(ctx, ToolCoupling, analysis.KindCoupling, p.Target, warnings, func(a *config.Analysis) {
		if p.Threshold != nil {
			a.CouplingThreshold = *p.Threshold
		}
		if p.Top != nil {
			a.TopCoupled = *p.Top
		}
	})
}

func (s *Server) handleFileMetrics(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p FileMetricsParams
	warnings, err := decodeParams(req.Params.Arguments, &p)
	if err == nil {
		err = validateNonNegative("budget", p.Budget)
	}
	if err != nil {
		return createErrorResponse(ToolFileMetrics, err)
	}

	return s.run(ctx, ToolFileMetrics, analysis.KindMetrics, p.Target, warnings, func(a *config.Analysis) {
		if p.Budget != nil {
			a.LineBudget = *p.Budget
		}
	})
}
