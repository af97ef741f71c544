package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/report"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createReportResponse returns the report envelope, followed by a second
// text block when the request carried parameters the tool does not know
func createReportResponse(r *report.Report, warnings []string) (*mcp.CallToolResult, error) {
	response, err := createJSONResponse(r)
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		response.Content = append(response.Content, &mcp.TextContent{
			Text: "warnings: " + strings.Join(warnings, "; "),
		})
	}
	return response, nil
}

// createErrorResponse reports a failed call inside the result. Boundary and
// config failures use the same fatal envelope the CLI prints.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	var data interface{}
	if cgerrors.IsFatal(err) {
		data = report.NewFatalEnvelope(err)
	} else {
		data = map[string]interface{}{
			"success":   false,
			"error":     err.Error(),
			"operation": operation,
		}
	}

	response, marshalErr := createJSONResponse(data)
	if marshalErr != nil {
		return nil, marshalErr
	}

	// Tool errors belong in the result with IsError set, not at the protocol
	// level, so the calling agent can see them
	response.IsError = true

	return response, nil
}
