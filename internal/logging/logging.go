// Package logging wraps logrus with the component-tagged helpers used across codegauge.
// Output always goes to stderr (or a configured writer) so stdout stays reserved for reports.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/codegauge/internal/logging.EnableDebug=true"
var EnableDebug = "false"

// MCPMode suppresses all log output while serving MCP over stdio
var MCPMode = false

var (
	mu     sync.Mutex
	logger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	return l
}

// SetMCPMode enables MCP mode which discards all log output
func SetMCPMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	MCPMode = enabled
	if enabled {
		logger.SetOutput(io.Discard)
	}
}

// SetOutput redirects log output. Pass nil to discard.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil || MCPMode {
		w = io.Discard
	}
	logger.SetOutput(w)
}

// SetVerbose toggles debug level logging
func SetVerbose(verbose bool) {
	mu.Lock()
	defer mu.Unlock()
	if verbose || IsDebugEnabled() {
		logger.SetLevel(logrus.DebugLevel)
		return
	}
	logger.SetLevel(logrus.WarnLevel)
}

// Logger exposes the shared logger for callers that want structured fields
func Logger() *logrus.Logger {
	return logger
}

// IsDebugEnabled returns true if debug mode is enabled and we're not in MCP mode
func IsDebugEnabled() bool {
	if MCPMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("CODEGAUGE_DEBUG")
	return v == "1" || v == "true"
}

// Log emits a debug line tagged with a component name
func Log(component, format string, args ...interface{}) {
	if MCPMode {
		return
	}
	logger.WithField("component", component).Debug(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// Warn emits a warning tagged with a component name
func Warn(component, format string, args ...interface{}) {
	if MCPMode {
		return
	}
	logger.WithField("component", component).Warn(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// LogGuard logs path and resource guard decisions
func LogGuard(format string, args ...interface{}) {
	Log("GUARD", format, args...)
}

// LogParse logs parser strategy activity
func LogParse(format string, args ...interface{}) {
	Log("PARSE", format, args...)
}

// LogRun logs analysis run progress
func LogRun(format string, args ...interface{}) {
	Log("RUN", format, args...)
}

// WithFields returns an entry for structured logging
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}
