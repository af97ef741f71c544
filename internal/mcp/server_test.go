package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codegauge/internal/analysis"
	"github.com/standardbeagle/codegauge/internal/report"
	"github.com/standardbeagle/codegauge/testhelpers"
)

func newTestServer(t *testing.T) (*Server, *testhelpers.TestDataBuilder) {
	t.Helper()
	fx := testhelpers.NewTestDataBuilder(t).
		AddFile("app/a.go", "package app\n\nimport \"example.com/m/lib\"\n\nfunc A(x int) int {\n\tif x > 0 {\n\t\treturn lib.B()\n\t}\n\treturn 0\n}\n").
		AddFile("lib/b.go", "package lib\n\nfunc B() int { return 1 }\n").
		AddFile("go.mod", "module example.com/m\n\ngo 1.22\n")
	server, err := NewServer(testhelpers.NewTestConfigBuilder(fx.Root()).Build(), nil)
	require.NoError(t, err)
	return server, fx
}

func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	result, err := s.GetHandlerForTesting(name)(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Name: name, Arguments: raw},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func decodeReport(t *testing.T, result *mcp.CallToolResult) map[string]json.RawMessage {
	t.Helper()
	require.False(t, result.IsError, "unexpected error result: %v", result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(text.Text), &envelope))
	return envelope
}

// TestNewServer tests the new server.
func TestNewServer(t *testing.T) {
	server, _ := newTestServer(t)
	assert.NotNil(t, server.server, "Server should create MCP server")
	assert.Len(t, server.handlers, 4)

	_, err := NewServer(nil, nil)
	assert.Error(t, err)
}

func TestTools_Envelope(t *testing.T) {
	server, _ := newTestServer(t)

	for _, name := range []string{ToolComplexity, ToolDependencies, ToolCoupling, ToolFileMetrics} {
		t.Run(name, func(t *testing.T) {
			envelope := decodeReport(t, callTool(t, server, name, nil))
			for _, key := range []string{"analyzer", "status", "summary", "items", "errors", "meta"} {
				assert.Contains(t, envelope, key)
			}
			assert.JSONEq(t, `[]`, string(envelope["errors"]))
		})
	}
}

func TestComplexityTool_ThresholdOverride(t *testing.T) {
	server, _ := newTestServer(t)

	envelope := decodeReport(t, callTool(t, server, ToolComplexity, map[string]interface{}{
		"target":    "app",
		"threshold": 1,
	}))
	var summary analysis.ComplexitySummary
	require.NoError(t, json.Unmarshal(envelope["summary"], &summary))
	assert.Equal(t, 1, summary.Threshold)
	assert.Equal(t, 1, summary.FunctionsOverThreshold)
	assert.Equal(t, 1, summary.FilesAnalyzed)

	// overrides do not stick
	envelope = decodeReport(t, callTool(t, server, ToolComplexity, nil))
	require.NoError(t, json.Unmarshal(envelope["summary"], &summary))
	assert.Equal(t, 10, summary.Threshold)
}

func TestTools_ShareParseCache(t *testing.T) {
	server, fx := newTestServer(t)

	decodeReport(t, callTool(t, server, ToolComplexity, nil))
	first := server.cache.GetStats()
	assert.Equal(t, int64(2), first.Entries)
	assert.Zero(t, first.Hits)

	decodeReport(t, callTool(t, server, ToolCoupling, nil))
	assert.Equal(t, int64(2), server.cache.GetStats().Hits)

	// an edited file is parsed again
	fx.AddFile("lib/b.go", "package lib\n\nfunc B() int { return 2 }\n")
	decodeReport(t, callTool(t, server, ToolFileMetrics, nil))
	stats := server.cache.GetStats()
	assert.Equal(t, int64(3), stats.Hits)
	assert.Equal(t, int64(3), stats.Entries)
}

func TestDependenciesTool_ResolvesModuleImports(t *testing.T) {
	server, _ := newTestServer(t)

	envelope := decodeReport(t, callTool(t, server, ToolDependencies, map[string]interface{}{
		"entry_points": []string{"app/*.go"},
	}))
	var summary analysis.DependencySummary
	require.NoError(t, json.Unmarshal(envelope["summary"], &summary))
	assert.Equal(t, 1, summary.Edges)
	assert.Empty(t, summary.Orphans)
}

func TestTools_RejectTraversal(t *testing.T) {
	server, _ := newTestServer(t)

	result := callTool(t, server, ToolFileMetrics, map[string]interface{}{"target": "../../etc"})
	require.True(t, result.IsError)

	var envelope report.FatalEnvelope
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].(*mcp.TextContent).Text), &envelope))
	assert.Equal(t, "boundary", envelope.Error.Type)
}

func TestTools_InvalidParameters(t *testing.T) {
	server, _ := newTestServer(t)

	result := callTool(t, server, ToolCoupling, map[string]interface{}{"top": -1})
	assert.True(t, result.IsError)

	result = callTool(t, server, ToolCoupling, map[string]interface{}{"threshold": "high"})
	assert.True(t, result.IsError)
}

func TestTools_UnknownParameterWarns(t *testing.T) {
	server, _ := newTestServer(t)

	result := callTool(t, server, ToolFileMetrics, map[string]interface{}{"budget": 5, "verbose": true})
	require.False(t, result.IsError)
	require.Len(t, result.Content, 2)
	assert.Contains(t, result.Content[1].(*mcp.TextContent).Text, "'verbose'")
}

func TestServer_InMemorySession(t *testing.T) {
	server, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "codegauge-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolComplexity, ToolDependencies, ToolCoupling, ToolFileMetrics}, names)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolFileMetrics,
		Arguments: map[string]interface{}{"target": "lib"},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	require.NoError(t, session.Close())
	_ = serverSession.Wait()
}
