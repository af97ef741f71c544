package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
)

// Validator validates configuration and sets defaults for unset values
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and fills zero values
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.Project.Root == "" {
		return cgerrors.NewConfigError("project.root", "", errors.New("project root cannot be empty"))
	}

	if err := v.validateLimits(&cfg.Limits); err != nil {
		return err
	}

	if err := v.validateAnalysis(&cfg.Analysis); err != nil {
		return err
	}

	if cfg.Performance.Workers < 0 {
		return cgerrors.NewConfigError("performance.workers", fmt.Sprint(cfg.Performance.Workers),
			errors.New("workers cannot be negative"))
	}

	switch strings.ToLower(cfg.Output.Format) {
	case "", "text", "json", "yaml":
		cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	default:
		return cgerrors.NewConfigError("output.format", cfg.Output.Format,
			errors.New("format must be one of text, json, yaml"))
	}

	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return cgerrors.NewConfigError("include/exclude", pattern, errors.New("invalid glob pattern"))
		}
	}

	v.setDefaults(cfg)
	return nil
}

func (v *Validator) validateLimits(limits *Limits) error {
	if limits.MaxFileSize < 0 {
		return cgerrors.NewConfigError("limits.max_file_size", fmt.Sprint(limits.MaxFileSize),
			errors.New("must be positive"))
	}
	if limits.MaxTotalSize < 0 {
		return cgerrors.NewConfigError("limits.max_total_size", fmt.Sprint(limits.MaxTotalSize),
			errors.New("must be positive"))
	}
	if limits.MaxFileSize > 0 && limits.MaxTotalSize > 0 && limits.MaxFileSize > limits.MaxTotalSize {
		return cgerrors.NewConfigError("limits.max_file_size", fmt.Sprint(limits.MaxFileSize),
			fmt.Errorf("must not exceed max_total_size (%d)", limits.MaxTotalSize))
	}
	if limits.FileTimeout < 0 || limits.RunTimeout < 0 {
		return cgerrors.NewConfigError("limits.timeout", "", errors.New("timeouts cannot be negative"))
	}
	return nil
}

func (v *Validator) validateAnalysis(a *Analysis) error {
	if a.ComplexityThreshold < 0 {
		return cgerrors.NewConfigError("analysis.complexity_threshold", fmt.Sprint(a.ComplexityThreshold),
			errors.New("cannot be negative"))
	}
	if a.CouplingThreshold < 0 {
		return cgerrors.NewConfigError("analysis.coupling_threshold", fmt.Sprint(a.CouplingThreshold),
			errors.New("cannot be negative"))
	}
	if a.LineBudget < 0 {
		return cgerrors.NewConfigError("analysis.line_budget", fmt.Sprint(a.LineBudget),
			errors.New("cannot be negative"))
	}
	if a.FanInWeight < 0 || a.FanOutWeight < 0 {
		return cgerrors.NewConfigError("analysis.weights", "", errors.New("coupling weights cannot be negative"))
	}
	for _, pattern := range a.EntryPoints {
		if !doublestar.ValidatePattern(pattern) {
			return cgerrors.NewConfigError("analysis.entry_points", pattern, errors.New("invalid glob pattern"))
		}
	}
	return nil
}

func (v *Validator) setDefaults(cfg *Config) {
	if cfg.Limits.MaxFileSize == 0 {
		cfg.Limits.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Limits.MaxTotalSize == 0 {
		cfg.Limits.MaxTotalSize = DefaultMaxTotalSize
	}
	if cfg.Limits.FileTimeout == 0 {
		cfg.Limits.FileTimeout = DefaultFileTimeout
	}
	if cfg.Limits.RunTimeout == 0 {
		cfg.Limits.RunTimeout = DefaultRunTimeout
	}
	if cfg.Analysis.ComplexityThreshold == 0 {
		cfg.Analysis.ComplexityThreshold = DefaultComplexityThreshold
	}
	if cfg.Analysis.CouplingThreshold == 0 {
		cfg.Analysis.CouplingThreshold = DefaultCouplingThreshold
	}
	if cfg.Analysis.LineBudget == 0 {
		cfg.Analysis.LineBudget = DefaultLineBudget
	}
	if cfg.Analysis.MaxCycles == 0 {
		cfg.Analysis.MaxCycles = DefaultMaxCycles
	}
	if cfg.Analysis.TopCoupled == 0 {
		cfg.Analysis.TopCoupled = DefaultTopCoupled
	}
	if cfg.Analysis.FanInWeight == 0 && cfg.Analysis.FanOutWeight == 0 {
		cfg.Analysis.FanInWeight = 1.0
		cfg.Analysis.FanOutWeight = 1.0
	}
	if cfg.Performance.Workers == 0 {
		cfg.Performance.Workers = 1
	}
	if cfg.Performance.WatchDebounceMs == 0 {
		cfg.Performance.WatchDebounceMs = DefaultWatchDebounceMs
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
