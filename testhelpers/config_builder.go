// Package testhelpers provides shared utilities for testing codegauge
package testhelpers

import (
	"time"

	"github.com/standardbeagle/codegauge/internal/config"
)

// TestConfigBuilder provides a fluent API for building test configs with safe defaults
// Usage:
//
//	cfg := testhelpers.NewTestConfigBuilder(root).
//		WithExclusions("vendor/**").
//		WithFileTimeout(50 * time.Millisecond).
//		Build()
type TestConfigBuilder struct {
	cfg *config.Config
}

// NewTestConfigBuilder starts from the defaults for root, without .gitignore
// handling so fixtures behave the same everywhere
func NewTestConfigBuilder(projectRoot string) *TestConfigBuilder {
	cfg := config.Default(projectRoot)
	cfg.Project.Name = "test-project"
	cfg.RespectGitignore = false
	cfg.Performance.WatchDebounceMs = 10
	return &TestConfigBuilder{cfg: cfg}
}

// WithExclusions adds additional exclusion patterns
func (b *TestConfigBuilder) WithExclusions(patterns ...string) *TestConfigBuilder {
	b.cfg.Exclude = append(b.cfg.Exclude, patterns...)
	return b
}

// WithIncludePatterns sets the include patterns (replaces defaults)
func (b *TestConfigBuilder) WithIncludePatterns(patterns ...string) *TestConfigBuilder {
	b.cfg.Include = patterns
	return b
}

// WithMaxFileSize sets the per-file byte limit
func (b *TestConfigBuilder) WithMaxFileSize(n int64) *TestConfigBuilder {
	b.cfg.Limits.MaxFileSize = n
	return b
}

// WithMaxTotalSize sets the aggregate byte limit
func (b *TestConfigBuilder) WithMaxTotalSize(n int64) *TestConfigBuilder {
	b.cfg.Limits.MaxTotalSize = n
	return b
}

func (b *TestConfigBuilder) WithFileTimeout(d time.Duration) *TestConfigBuilder {
	b.cfg.Limits.FileTimeout = d
	return b
}

func (b *TestConfigBuilder) WithRunTimeout(d time.Duration) *TestConfigBuilder {
	b.cfg.Limits.RunTimeout = d
	return b
}

func (b *TestConfigBuilder) WithWorkers(n int) *TestConfigBuilder {
	b.cfg.Performance.Workers = n
	return b
}

func (b *TestConfigBuilder) WithComplexityThreshold(n int) *TestConfigBuilder {
	b.cfg.Analysis.ComplexityThreshold = n
	return b
}

func (b *TestConfigBuilder) WithCouplingThreshold(n int) *TestConfigBuilder {
	b.cfg.Analysis.CouplingThreshold = n
	return b
}

func (b *TestConfigBuilder) WithLineBudget(n int) *TestConfigBuilder {
	b.cfg.Analysis.LineBudget = n
	return b
}

// WithEntryPoints marks globs whose files are never reported as orphans
func (b *TestConfigBuilder) WithEntryPoints(patterns ...string) *TestConfigBuilder {
	b.cfg.Analysis.EntryPoints = append(b.cfg.Analysis.EntryPoints, patterns...)
	return b
}

// Build returns the config. Each call returns the same instance.
func (b *TestConfigBuilder) Build() *config.Config {
	return b.cfg
}
