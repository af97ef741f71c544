package mcp

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/report"
)

// TestCreateJSONResponse tests the create j s o n response.
func TestCreateJSONResponse(t *testing.T) {
	tests := []struct {
		name    string
		data    interface{}
		wantErr bool
	}{
		{
			name: "simple map",
			data: map[string]interface{}{
				"status": "success",
				"count":  42,
			},
		},
		{
			name: "report",
			data: report.New(report.AnalyzerComplexity, "/repo", ".", time.Now()),
		},
		{
			name:    "unsupported value",
			data:    make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := createJSONResponse(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("createJSONResponse() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			if len(result.Content) != 1 {
				t.Errorf("createJSONResponse() returned %d content items, want 1", len(result.Content))
				return
			}
			textContent, ok := result.Content[0].(*mcp.TextContent)
			if !ok {
				t.Error("createJSONResponse() did not return TextContent")
				return
			}
			var parsed interface{}
			if err := json.Unmarshal([]byte(textContent.Text), &parsed); err != nil {
				t.Errorf("createJSONResponse() returned invalid JSON: %v", err)
			}
		})
	}
}

func TestCreateReportResponse_Warnings(t *testing.T) {
	r := report.New(report.AnalyzerCoupling, "/repo", ".", time.Now())

	result, err := createReportResponse(r, nil)
	if err != nil || len(result.Content) != 1 {
		t.Fatalf("createReportResponse() = %v, %v; want one content item", result, err)
	}

	result, err = createReportResponse(r, []string{"Unknown parameter 'x' was provided and will be ignored"})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Content) != 2 {
		t.Fatalf("got %d content items, want 2", len(result.Content))
	}
	if result.IsError {
		t.Error("warnings must not mark the result as an error")
	}
}

// TestCreateErrorResponse tests the create error response.
func TestCreateErrorResponse(t *testing.T) {
	t.Run("plain error", func(t *testing.T) {
		result, err := createErrorResponse(ToolComplexity, errors.New("invalid parameters"))
		if err != nil {
			t.Fatalf("createErrorResponse() error = %v, want nil", err)
		}
		if !result.IsError {
			t.Error("IsError should be set")
		}

		var errorData map[string]interface{}
		text := result.Content[0].(*mcp.TextContent).Text
		if err := json.Unmarshal([]byte(text), &errorData); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if success, ok := errorData["success"].(bool); !ok || success {
			t.Error("success field should be false")
		}
		if operation := errorData["operation"]; operation != ToolComplexity {
			t.Errorf("operation = %v, want %v", operation, ToolComplexity)
		}
	})

	t.Run("boundary error uses fatal envelope", func(t *testing.T) {
		fatal := cgerrors.NewFatalError(cgerrors.ErrorTypeBoundary, "../etc", cgerrors.ErrOutsideRoot)
		result, err := createErrorResponse(ToolDependencies, fatal)
		if err != nil {
			t.Fatal(err)
		}
		if !result.IsError {
			t.Error("IsError should be set")
		}

		var envelope report.FatalEnvelope
		text := result.Content[0].(*mcp.TextContent).Text
		if err := json.Unmarshal([]byte(text), &envelope); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if envelope.Error.Type != string(cgerrors.ErrorTypeBoundary) {
			t.Errorf("type = %q, want boundary", envelope.Error.Type)
		}
		if envelope.Error.Path != "../etc" {
			t.Errorf("path = %q, want ../etc", envelope.Error.Path)
		}
	})
}

func TestValidateAndWarnExtraParams(t *testing.T) {
	warnings := ValidateAndWarnExtraParams([]byte(`{"target":"src","threshold":3,"zeta":1,"alpha":true}`), &ComplexityParams{})
	want := []string{
		"Unknown parameter 'alpha' was provided and will be ignored",
		"Unknown parameter 'zeta' was provided and will be ignored",
	}
	if len(warnings) != len(want) {
		t.Fatalf("warnings = %v, want %v", warnings, want)
	}
	for i := range want {
		if warnings[i] != want[i] {
			t.Errorf("warnings[%d] = %q, want %q", i, warnings[i], want[i])
		}
	}

	if got := ValidateAndWarnExtraParams([]byte(`not json`), &ComplexityParams{}); len(got) != 0 {
		t.Errorf("unparseable input should produce no warnings, got %v", got)
	}
}
