package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("", "/project")
	require.NoError(t, err)

	assert.Equal(t, "/project", cfg.Project.Root)
	assert.Equal(t, DefaultMaxFileSize, cfg.Limits.MaxFileSize)
	assert.Equal(t, DefaultMaxTotalSize, cfg.Limits.MaxTotalSize)
	assert.Equal(t, 5*time.Second, cfg.Limits.FileTimeout)
	assert.Equal(t, 60*time.Second, cfg.Limits.RunTimeout)
	assert.Equal(t, 10, cfg.Analysis.ComplexityThreshold)
	assert.Equal(t, 10, cfg.Analysis.CouplingThreshold)
	assert.Equal(t, 600, cfg.Analysis.LineBudget)
	assert.Equal(t, 1.0, cfg.Analysis.FanInWeight)
	assert.Equal(t, 1.0, cfg.Analysis.FanOutWeight)
	assert.Contains(t, cfg.Exclude, "**/node_modules/**")
}

func TestParseKDL_FullConfig(t *testing.T) {
	content := `
project {
    name "widgets"
}
limits {
    max_file_size "256KB"
    max_total_size 1048576
    file_timeout "2s"
    run_timeout 30
}
analysis {
    complexity_threshold 15
    coupling_threshold 8
    line_budget 400
    max_cycles 50
    top_coupled 5
    fan_in_weight 2.0
    fan_out_weight 1
    entry_points "cmd/**/main.go" "scripts/*.py"
}
performance {
    workers 4
}
output {
    format "yaml"
}
include "**/*.go"
exclude {
    "**/generated/**"
}
respect_gitignore false
`
	cfg, err := parseKDL(content, "/project")
	require.NoError(t, err)

	assert.Equal(t, "widgets", cfg.Project.Name)
	assert.Equal(t, int64(256*1024), cfg.Limits.MaxFileSize)
	assert.Equal(t, int64(1048576), cfg.Limits.MaxTotalSize)
	assert.Equal(t, 2*time.Second, cfg.Limits.FileTimeout)
	assert.Equal(t, 30*time.Second, cfg.Limits.RunTimeout)
	assert.Equal(t, 15, cfg.Analysis.ComplexityThreshold)
	assert.Equal(t, 8, cfg.Analysis.CouplingThreshold)
	assert.Equal(t, 400, cfg.Analysis.LineBudget)
	assert.Equal(t, 50, cfg.Analysis.MaxCycles)
	assert.Equal(t, 5, cfg.Analysis.TopCoupled)
	assert.Equal(t, 2.0, cfg.Analysis.FanInWeight)
	assert.Equal(t, 1.0, cfg.Analysis.FanOutWeight)
	assert.Equal(t, []string{"cmd/**/main.go", "scripts/*.py"}, cfg.Analysis.EntryPoints)
	assert.Equal(t, 4, cfg.Performance.Workers)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, []string{"**/*.go"}, cfg.Include)
	assert.Equal(t, []string{"**/generated/**"}, cfg.Exclude, "explicit exclude block replaces defaults")
	assert.False(t, cfg.RespectGitignore)
}

func TestParseKDL_InvalidLimit(t *testing.T) {
	_, err := parseKDL(`limits { max_file_size "lots" }`, "/project")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_file_size")
}

func TestParseKDL_Malformed(t *testing.T) {
	_, err := parseKDL(`analysis { complexity_threshold `, "/project")
	require.Error(t, err)
}

func TestParseKDL_MalformedIsFatal(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"unclosed block at EOF", "analysis { complexity_threshold 3", "kdl"},
		{"unclosed block with newline", "analysis {\n    complexity_threshold 3\n", "kdl"},
		{"string threshold", `analysis { complexity_threshold "ten" }`, "analysis.complexity_threshold"},
		{"string weight", `analysis { fan_in_weight "heavy" }`, "analysis.fan_in_weight"},
		{"missing value", "analysis {\n    top_coupled\n}\n", "analysis.top_coupled"},
		{"string workers", `performance { workers "four" }`, "performance.workers"},
		{"bool debounce", `performance { watch_debounce_ms true }`, "performance.watch_debounce_ms"},
		{"bad size", `limits { max_total_size "huge" }`, "limits.max_total_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseKDL(tt.content, "/project")
			require.Error(t, err)
			assert.True(t, cgerrors.IsFatal(err), "config errors must stop the run: %v", err)

			var cfgErr *cgerrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1MB", 1024 * 1024},
		{"50mb", 50 * 1024 * 1024},
		{"512KB", 512 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"100B", 100},
		{"2048", 2048},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseSize("big")
	assert.Error(t, err)
}

func TestLoad_WithConfigFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName),
		[]byte("analysis {\n    complexity_threshold 7\n}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"),
		[]byte("# comment\ngenerated/\n/local.go\n!keep.go\n"), 0o644))

	cfg, err := Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Analysis.ComplexityThreshold)
	assert.Contains(t, cfg.Exclude, "**/generated/**")
	assert.Contains(t, cfg.Exclude, "local.go")
	assert.NotContains(t, cfg.Exclude, "**/keep.go")
}

func TestLoad_NoConfigFile(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(root, "")
	require.NoError(t, err)

	abs, _ := filepath.Abs(root)
	assert.Equal(t, abs, cfg.Project.Root)
	assert.Equal(t, 1, cfg.Performance.Workers)
}

func TestLoad_MissingExplicitConfig(t *testing.T) {
	_, err := Load(t.TempDir(), "/nonexistent/codegauge.kdl")
	assert.Error(t, err)
}
