package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/standardbeagle/codegauge/internal/analysis"
	"github.com/standardbeagle/codegauge/internal/cache"
	"github.com/standardbeagle/codegauge/internal/config"
	"github.com/standardbeagle/codegauge/internal/display"
	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/logging"
	"github.com/standardbeagle/codegauge/internal/mcp"
	"github.com/standardbeagle/codegauge/internal/report"
	"github.com/standardbeagle/codegauge/internal/watch"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides.
// Precedence is defaults, then the config file, then flags.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		root = wd
	}

	cfg, err := config.Load(root, c.String("config"))
	if err != nil {
		return nil, err
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = config.DeduplicatePatterns(append(cfg.Exclude, excludeFlags...))
	}
	if s := c.String("max-file-size"); s != "" {
		size, err := config.ParseSize(s)
		if err != nil {
			return nil, cgerrors.NewConfigError("max-file-size", s, err)
		}
		cfg.Limits.MaxFileSize = size
	}
	if s := c.String("max-total-size"); s != "" {
		size, err := config.ParseSize(s)
		if err != nil {
			return nil, cgerrors.NewConfigError("max-total-size", s, err)
		}
		cfg.Limits.MaxTotalSize = size
	}
	if c.IsSet("file-timeout") {
		cfg.Limits.FileTimeout = c.Duration("file-timeout")
	}
	if c.IsSet("run-timeout") {
		cfg.Limits.RunTimeout = c.Duration("run-timeout")
	}
	if c.IsSet("workers") {
		cfg.Performance.Workers = c.Int("workers")
	}
	if s := c.String("format"); s != "" {
		if _, err := report.ParseFormat(s); err != nil {
			return nil, cgerrors.NewConfigError("format", s, err)
		}
		cfg.Output.Format = s
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyAnalyzerFlags copies the command-level flags onto the analysis section
func applyAnalyzerFlags(c *cli.Context, kind analysis.Kind, a *config.Analysis) {
	switch kind {
	case analysis.KindComplexity:
		if c.IsSet("threshold") {
			a.ComplexityThreshold = c.Int("threshold")
		}
	case analysis.KindDependencies:
		a.EntryPoints = append(a.EntryPoints, c.StringSlice("entry")...)
		if c.IsSet("max-cycles") {
			a.MaxCycles = c.Int("max-cycles")
		}
	case analysis.KindCoupling:
		if c.IsSet("threshold") {
			a.CouplingThreshold = c.Int("threshold")
		}
		if c.IsSet("top") {
			a.TopCoupled = c.Int("top")
		}
	case analysis.KindMetrics:
		if c.IsSet("budget") {
			a.LineBudget = c.Int("budget")
		}
	}
}

// outputFormatter picks the formatter from the config, falling back to the
// writer kind when no format was requested
func outputFormatter(cfg *config.Config, w io.Writer, showAll bool) report.Formatter {
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil || format == "" {
		format = report.DefaultFormat(w)
	}
	return display.NewFormatter(format, display.FormatterOptions{ShowAll: showAll})
}

func analyzeCommand(kind analysis.Kind) cli.ActionFunc {
	return func(c *cli.Context) error {
		logging.SetOutput(c.App.ErrWriter)
		logging.SetVerbose(c.Bool("verbose"))

		cfg, err := loadConfigWithOverrides(c)
		if err != nil {
			return err
		}
		applyAnalyzerFlags(c, kind, &cfg.Analysis)

		engine, err := analysis.NewEngine(cfg, nil)
		if err != nil {
			return err
		}
		if c.Bool("watch") {
			engine.SetCache(cache.New(cache.DefaultConfig()))
		}

		target := c.Args().First()
		formatter := outputFormatter(cfg, c.App.Writer, c.Bool("all"))

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := analyzeOnce(ctx, engine, kind, target, formatter, c.App.Writer); err != nil {
			return err
		}
		if !c.Bool("watch") {
			return nil
		}
		return watchAndAnalyze(ctx, engine, kind, target, formatter, c.App.Writer)
	}
}

func analyzeOnce(ctx context.Context, engine *analysis.Engine, kind analysis.Kind, target string, formatter report.Formatter, w io.Writer) error {
	start := time.Now()
	r, err := engine.Analyze(ctx, kind, target)
	if err != nil {
		return err
	}
	logging.Log("cli", "%s finished in %v (%d errors)", kind, time.Since(start), len(r.Errors))
	return formatter.Format(r, w)
}

// watchAndAnalyze re-runs the analyzer after each debounced batch of changes
// until ctx is cancelled. Fatal errors end the loop; anything else is logged.
func watchAndAnalyze(ctx context.Context, engine *analysis.Engine, kind analysis.Kind, target string, formatter report.Formatter, w io.Writer) error {
	cfg := engine.Config()
	watcher, err := watch.New(cfg.Project.Root, cfg.Exclude, time.Duration(cfg.Performance.WatchDebounceMs)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to start watch mode: %w", err)
	}

	logging.Log("cli", "watching %s for changes", cfg.Project.Root)
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var fatal error
	err = watcher.Run(watchCtx, func(ctx context.Context, changed []string) {
		logging.Log("cli", "re-running %s after %d changes", kind, len(changed))
		if err := analyzeOnce(ctx, engine, kind, target, formatter, w); err != nil {
			if cgerrors.IsFatal(err) {
				fatal = err
				cancel()
				return
			}
			logging.Warn("cli", "analysis failed: %v", err)
		}
	})
	if fatal != nil {
		return fatal
	}
	return err
}

func mcpCommand(c *cli.Context) error {
	// stdout carries the protocol; nothing else may write to it
	logging.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(cfg, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// configView is the serialized form of the effective configuration
type configView struct {
	Root             string   `yaml:"root" json:"root"`
	ConfigFile       string   `yaml:"config_file,omitempty" json:"config_file,omitempty"`
	MaxFileSize      int64    `yaml:"max_file_size" json:"max_file_size"`
	MaxTotalSize     int64    `yaml:"max_total_size" json:"max_total_size"`
	FileTimeout      string   `yaml:"file_timeout" json:"file_timeout"`
	RunTimeout       string   `yaml:"run_timeout" json:"run_timeout"`
	Complexity       int      `yaml:"complexity_threshold" json:"complexity_threshold"`
	Coupling         int      `yaml:"coupling_threshold" json:"coupling_threshold"`
	LineBudget       int      `yaml:"line_budget" json:"line_budget"`
	MaxCycles        int      `yaml:"max_cycles" json:"max_cycles"`
	TopCoupled       int      `yaml:"top_coupled" json:"top_coupled"`
	FanInWeight      float64  `yaml:"fan_in_weight" json:"fan_in_weight"`
	FanOutWeight     float64  `yaml:"fan_out_weight" json:"fan_out_weight"`
	EntryPoints      []string `yaml:"entry_points" json:"entry_points"`
	Workers          int      `yaml:"workers" json:"workers"`
	WatchDebounceMs  int      `yaml:"watch_debounce_ms" json:"watch_debounce_ms"`
	Format           string   `yaml:"format,omitempty" json:"format,omitempty"`
	RespectGitignore bool     `yaml:"respect_gitignore" json:"respect_gitignore"`
	Include          []string `yaml:"include" json:"include"`
	Exclude          []string `yaml:"exclude" json:"exclude"`
}

func newConfigView(cfg *config.Config, configFile string) configView {
	return configView{
		Root:             cfg.Project.Root,
		ConfigFile:       configFile,
		MaxFileSize:      cfg.Limits.MaxFileSize,
		MaxTotalSize:     cfg.Limits.MaxTotalSize,
		FileTimeout:      cfg.Limits.FileTimeout.String(),
		RunTimeout:       cfg.Limits.RunTimeout.String(),
		Complexity:       cfg.Analysis.ComplexityThreshold,
		Coupling:         cfg.Analysis.CouplingThreshold,
		LineBudget:       cfg.Analysis.LineBudget,
		MaxCycles:        cfg.Analysis.MaxCycles,
		TopCoupled:       cfg.Analysis.TopCoupled,
		FanInWeight:      cfg.Analysis.FanInWeight,
		FanOutWeight:     cfg.Analysis.FanOutWeight,
		EntryPoints:      append([]string{}, cfg.Analysis.EntryPoints...),
		Workers:          cfg.Performance.Workers,
		WatchDebounceMs:  cfg.Performance.WatchDebounceMs,
		Format:           cfg.Output.Format,
		RespectGitignore: cfg.RespectGitignore,
		Include:          append([]string{}, cfg.Include...),
		Exclude:          append([]string{}, cfg.Exclude...),
	}
}

func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	configFile := c.String("config")
	if configFile == "" {
		candidate := filepath.Join(cfg.Project.Root, config.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
		}
	}
	view := newConfigView(cfg, configFile)

	if format, _ := report.ParseFormat(cfg.Output.Format); format == report.FormatJSON {
		return writeJSON(c.App.Writer, view)
	}
	encoder := yaml.NewEncoder(c.App.Writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(view); err != nil {
		return err
	}
	return encoder.Close()
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
