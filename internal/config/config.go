package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ConfigFileName is looked up in the analysis root when no explicit path is given
const ConfigFileName = ".codegauge.kdl"

// Defaults shared by the CLI, the MCP server and the analyzers
const (
	DefaultMaxFileSize         int64 = 1 * 1024 * 1024
	DefaultMaxTotalSize        int64 = 50 * 1024 * 1024
	DefaultFileTimeout               = 5 * time.Second
	DefaultRunTimeout                = 60 * time.Second
	DefaultComplexityThreshold       = 10
	DefaultCouplingThreshold         = 10
	DefaultLineBudget                = 600
	DefaultMaxCycles                 = 1000
	DefaultTopCoupled                = 10
	DefaultWatchDebounceMs           = 300
)

type Config struct {
	Version     int
	Project     Project
	Limits      Limits
	Analysis    Analysis
	Performance Performance
	Output      Output
	Include     []string
	Exclude     []string

	RespectGitignore bool
}

type Project struct {
	Root string
	Name string
}

// Limits bound the resources a single run may consume
type Limits struct {
	MaxFileSize  int64
	MaxTotalSize int64
	FileTimeout  time.Duration
	RunTimeout   time.Duration
}

// Analysis holds analyzer thresholds and graph options
type Analysis struct {
	ComplexityThreshold int
	CouplingThreshold   int
	LineBudget          int
	MaxCycles           int
	TopCoupled          int
	FanInWeight         float64
	FanOutWeight        float64
	EntryPoints         []string // doublestar globs relative to the root
}

type Performance struct {
	Workers         int // parse workers for pass 1; 1 keeps processing strictly sequential
	WatchDebounceMs int
}

type Output struct {
	Format string // "text", "json", "yaml"; empty picks based on the terminal
}

// Default returns a configuration rooted at root with every limit at its default
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: root, Name: filepath.Base(root)},
		Limits: Limits{
			MaxFileSize:  DefaultMaxFileSize,
			MaxTotalSize: DefaultMaxTotalSize,
			FileTimeout:  DefaultFileTimeout,
			RunTimeout:   DefaultRunTimeout,
		},
		Analysis: Analysis{
			ComplexityThreshold: DefaultComplexityThreshold,
			CouplingThreshold:   DefaultCouplingThreshold,
			LineBudget:          DefaultLineBudget,
			MaxCycles:           DefaultMaxCycles,
			TopCoupled:          DefaultTopCoupled,
			FanInWeight:         1.0,
			FanOutWeight:        1.0,
		},
		Performance: Performance{
			Workers:         1,
			WatchDebounceMs: DefaultWatchDebounceMs,
		},
		Include:          []string{},
		Exclude:          getDefaultExclusions(),
		RespectGitignore: true,
	}
}

// Load builds the effective configuration for root: defaults, then the KDL file
// (configPath, or .codegauge.kdl in root), then build-artifact and .gitignore exclusions.
func Load(root, configPath string) (*Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	if configPath == "" {
		configPath = filepath.Join(absRoot, ConfigFileName)
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			cfg := Default(absRoot)
			cfg.EnrichExclusions()
			return cfg, ValidateConfig(cfg)
		}
	}

	cfg, err := LoadKDLFile(configPath, absRoot)
	if err != nil {
		return nil, err
	}
	cfg.EnrichExclusions()
	return cfg, ValidateConfig(cfg)
}

// EnrichExclusions appends patterns derived from build manifests and .gitignore
func (c *Config) EnrichExclusions() {
	detector := NewBuildArtifactDetector(c.Project.Root)
	c.Exclude = append(c.Exclude, detector.DetectOutputDirectories()...)

	if c.RespectGitignore {
		c.Exclude = append(c.Exclude, LoadGitignoreExclusions(c.Project.Root)...)
	}
	c.Exclude = DeduplicatePatterns(c.Exclude)
}

func getDefaultExclusions() []string {
	return []string{
		// Hidden directories
		"**/.*/**",

		// Package managers & dependencies
		"**/node_modules/**",
		"**/vendor/**",
		"**/bower_components/**",
		"**/venv/**",
		"**/.venv/**",
		"**/site-packages/**",
		"**/Pods/**",

		// Build artifacts & output
		"**/dist/**",
		"**/build/**",
		"**/out/**",
		"**/target/**",
		"**/bin/**",
		"**/obj/**",
		"**/*.min.js",
		"**/*.bundle.js",
		"**/*.chunk.js",
		"**/CMakeFiles/**",

		// Python compiled files
		"**/__pycache__/**",
		"**/*.egg-info/**",

		// Coverage & generated docs
		"**/coverage/**",
		"**/htmlcov/**",
		"**/_build/**",
	}
}
