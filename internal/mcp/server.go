// Package mcp exposes the four analyzers as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codegauge/internal/cache"
	"github.com/standardbeagle/codegauge/internal/config"
	"github.com/standardbeagle/codegauge/internal/logging"
	"github.com/standardbeagle/codegauge/internal/parser"
	"github.com/standardbeagle/codegauge/internal/version"
)

// Tool names
const (
	ToolComplexity   = "analyze_complexity"
	ToolDependencies = "map_dependencies"
	ToolCoupling     = "detect_coupling"
	ToolFileMetrics  = "collect_file_metrics"
)

type toolHandler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Server wraps the MCP server and the configuration every tool call starts from
type Server struct {
	cfg      *config.Config
	registry *parser.Registry
	cache    *cache.ParseCache // shared by every tool call
	server   *mcp.Server
	handlers map[string]toolHandler
}

// NewServer validates cfg and registers the analyzer tools
func NewServer(cfg *config.Config, registry *parser.Registry) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = parser.Default()
	}

	s := &Server{
		cfg:      cfg,
		registry: registry,
		cache:    cache.New(cache.DefaultConfig()),
		handlers: make(map[string]toolHandler),
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "codegauge",
		Version: version.Version,
	}, nil)
	s.registerTools()

	logging.Log("mcp", "server ready for root %s", cfg.Project.Root)
	return s, nil
}

func targetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: "File or directory relative to the project root (default: the whole root)",
	}
}

func (s *Server) addTool(tool *mcp.Tool, handler toolHandler) {
	wrapped := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.recoverFromPanic(tool.Name, func() (*mcp.CallToolResult, error) {
			return handler(ctx, req)
		})
	}
	s.handlers[tool.Name] = wrapped
	s.server.AddTool(tool, wrapped)
}

func (s *Server) registerTools() {
	s.addTool(&mcp.Tool{
		Name:        ToolComplexity,
		Description: "Cyclomatic complexity per function and file. Returns {analyzer, status, summary, items, errors, meta}.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"target": targetSchema(),
				"threshold": {
					Type:        "integer",
					Description: "Complexity above which a function is flagged (default 10)",
				},
			},
		},
	}, s.handleComplexity)

	s.addTool(&mcp.Tool{
		Name:        ToolDependencies,
		Description: "Module dependency graph with cycles (capped) and orphans. Unresolvable local imports are reported as warnings.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"target": targetSchema(),
				"entry_points": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Glob patterns of files never reported as orphans (e.g. [\"cmd/**/main.go\"])",
				},
				"max_cycles": {
					Type:        "integer",
					Description: "Stop enumerating cycles after this many (default 1000)",
				},
			},
		},
	}, s.handleDependencies)

	s.addTool(&mcp.Tool{
		Name:        ToolCoupling,
		Description: "Fan-in, fan-out and instability per module; flags modules above the coupling threshold.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"target": targetSchema(),
				"threshold": {
					Type:        "integer",
					Description: "Fan-in plus fan-out above which a module is flagged (default 10)",
				},
				"top": {
					Type:        "integer",
					Description: "Number of most coupled modules to rank (default 10)",
				},
			},
		},
	}, s.handleCoupling)

	s.addTool(&mcp.Tool{
		Name:        ToolFileMetrics,
		Description: "Total, code, comment and blank lines, function/class/import counts and size per file.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"target": targetSchema(),
				"budget": {
					Type:        "integer",
					Description: "Line count above which a file is flagged (default 600)",
				},
			},
		},
	}, s.handleFileMetrics)
}

// recoverFromPanic turns a panic inside a tool into an error result
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn("mcp", "panic recovered in %s: %v\n%s", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()
	return handler()
}

// Start serves tools over stdio until ctx ends or the client disconnects.
// stdout belongs to the protocol, so logging is silenced first.
func (s *Server) Start(ctx context.Context) error {
	logging.SetMCPMode(true)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves tools over an arbitrary transport, used by in-memory tests
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

// GetHandlerForTesting returns the registered handler for toolName
func (s *Server) GetHandlerForTesting(toolName string) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h, ok := s.handlers[toolName]; ok {
		return h
	}
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return createErrorResponse("GetHandlerForTesting", fmt.Errorf("unknown tool: %s", toolName))
	}
}
