package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/logging"
)

// LoadKDLFile reads a KDL configuration file. Relative project roots inside the
// file are resolved against defaultRoot.
func LoadKDLFile(path, defaultRoot string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := parseKDL(string(content), defaultRoot)
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(defaultRoot, cfg.Project.Root)
	}
	cfg.Project.Root = filepath.Clean(cfg.Project.Root)
	return cfg, nil
}

func parseKDL(content, defaultRoot string) (*Config, error) {
	cfg := Default(defaultRoot)

	// kdl-go accepts an unterminated block when the input ends mid-node
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, cgerrors.NewConfigError("kdl", "", fmt.Errorf("failed to parse KDL config: %w", err))
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "limits":
			if err := parseLimits(cfg, n); err != nil {
				return nil, err
			}
		case "analysis":
			if err := parseAnalysis(cfg, n); err != nil {
				return nil, err
			}
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "workers":
					if err := setInt(cn, "performance", &cfg.Performance.Workers); err != nil {
						return nil, err
					}
				case "watch_debounce_ms":
					if err := setInt(cn, "performance", &cfg.Performance.WatchDebounceMs); err != nil {
						return nil, err
					}
				}
			}
		case "output":
			for _, cn := range n.Children {
				assignSimpleString(cn, "format", func(v string) { cfg.Output.Format = v })
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			// An explicit exclude block replaces the defaults
			cfg.Exclude = collectStringArgs(n)
		case "respect_gitignore":
			if b, ok := firstBoolArg(n); ok {
				cfg.RespectGitignore = b
			}
		default:
			logging.Warn("CONFIG", "ignoring unknown config node %q", nodeName(n))
		}
	}

	return cfg, nil
}

func parseLimits(cfg *Config, n *document.Node) error {
	for _, cn := range n.Children {
		name := nodeName(cn)
		switch name {
		case "max_file_size", "max_total_size":
			size, ok := sizeArg(cn)
			if !ok {
				return cgerrors.NewConfigError("limits."+name, argText(cn),
					errors.New("expected a byte count or size string like \"1MB\""))
			}
			if name == "max_file_size" {
				cfg.Limits.MaxFileSize = size
			} else {
				cfg.Limits.MaxTotalSize = size
			}
		case "file_timeout", "run_timeout":
			d, ok := durationArg(cn)
			if !ok {
				return cgerrors.NewConfigError("limits."+name, argText(cn),
					errors.New("expected seconds or a duration string like \"5s\""))
			}
			if name == "file_timeout" {
				cfg.Limits.FileTimeout = d
			} else {
				cfg.Limits.RunTimeout = d
			}
		}
	}
	return nil
}

func parseAnalysis(cfg *Config, n *document.Node) error {
	a := &cfg.Analysis
	for _, cn := range n.Children {
		var err error
		switch nodeName(cn) {
		case "complexity_threshold":
			err = setInt(cn, "analysis", &a.ComplexityThreshold)
		case "coupling_threshold":
			err = setInt(cn, "analysis", &a.CouplingThreshold)
		case "line_budget":
			err = setInt(cn, "analysis", &a.LineBudget)
		case "max_cycles":
			err = setInt(cn, "analysis", &a.MaxCycles)
		case "top_coupled":
			err = setInt(cn, "analysis", &a.TopCoupled)
		case "fan_in_weight":
			err = setFloat(cn, "analysis", &a.FanInWeight)
		case "fan_out_weight":
			err = setFloat(cn, "analysis", &a.FanOutWeight)
		case "entry_points":
			a.EntryPoints = append(a.EntryPoints, collectStringArgs(cn)...)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// setInt stores the node's integer argument in dst; any other value is a
// config error naming section.node
func setInt(n *document.Node, section string, dst *int) error {
	v, ok := firstIntArg(n)
	if !ok {
		return cgerrors.NewConfigError(section+"."+nodeName(n), argText(n), errors.New("expected an integer"))
	}
	*dst = v
	return nil
}

func setFloat(n *document.Node, section string, dst *float64) error {
	v, ok := firstFloatArg(n)
	if !ok {
		return cgerrors.NewConfigError(section+"."+nodeName(n), argText(n), errors.New("expected a number"))
	}
	*dst = v
	return nil
}

// argText renders the first argument for error messages
func argText(n *document.Node) string {
	if len(n.Arguments) == 0 {
		return ""
	}
	return fmt.Sprint(n.Arguments[0].Value)
}

// Helper functions over the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block form: exclude { "pattern" } where each child node name is the value
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

func sizeArg(n *document.Node) (int64, bool) {
	if v, ok := firstIntArg(n); ok {
		return int64(v), true
	}
	if s, ok := firstStringArg(n); ok {
		if size, err := ParseSize(s); err == nil {
			return size, true
		}
	}
	return 0, false
}

func durationArg(n *document.Node) (time.Duration, bool) {
	if v, ok := firstIntArg(n); ok {
		return time.Duration(v) * time.Second, true
	}
	if s, ok := firstStringArg(n); ok {
		if d, err := time.ParseDuration(s); err == nil {
			return d, true
		}
	}
	return 0, false
}

// ParseSize handles size strings like "10MB", "500KB", "1GB"
func ParseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}
