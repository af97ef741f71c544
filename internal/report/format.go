package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
)

// Format selects an output encoding
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name; empty means "pick for the writer"
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return "", nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// DefaultFormat is text for an interactive terminal and json otherwise
func DefaultFormat(w io.Writer) Format {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return FormatText
	}
	return FormatJSON
}

// Formatter writes a report in one encoding
type Formatter interface {
	Format(r *Report, w io.Writer) error
}

// JSONFormatter writes indented JSON with fields in declaration order
type JSONFormatter struct{}

func (JSONFormatter) Format(r *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(r)
}

// YAMLFormatter writes YAML
type YAMLFormatter struct{}

func (YAMLFormatter) Format(r *Report, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return err
	}
	return encoder.Close()
}

// NewFormatter returns the machine-readable formatter for f. Text output
// lives in the display package; asking for it here falls back to JSON.
func NewFormatter(f Format) Formatter {
	if f == FormatYAML {
		return YAMLFormatter{}
	}
	return JSONFormatter{}
}

// Marshal encodes r as indented JSON
func Marshal(r *Report) ([]byte, error) {
	var sb strings.Builder
	if err := (JSONFormatter{}).Format(r, &sb); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// FatalEnvelope is the single object written when a run aborts
type FatalEnvelope struct {
	Error FatalBody `json:"error" yaml:"error"`
}

type FatalBody struct {
	Type    string `json:"type" yaml:"type"`
	Message string `json:"message" yaml:"message"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// NewFatalEnvelope describes err for callers expecting one JSON object
func NewFatalEnvelope(err error) FatalEnvelope {
	body := FatalBody{Type: string(cgerrors.ErrorTypeInternal), Message: err.Error()}

	var fatal *cgerrors.FatalError
	var cfg *cgerrors.ConfigError
	switch {
	case errors.As(err, &fatal):
		body.Type = string(fatal.Type)
		body.Path = fatal.Path
		if fatal.Underlying != nil {
			body.Message = fatal.Underlying.Error()
		}
	case errors.As(err, &cfg):
		body.Type = string(cgerrors.ErrorTypeConfig)
		body.Message = cfg.Error()
	}
	return FatalEnvelope{Error: body}
}

// WriteFatal writes the envelope for err as a single JSON line
func WriteFatal(w io.Writer, err error) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(NewFatalEnvelope(err))
}
