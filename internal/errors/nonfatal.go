package errors

import (
	"errors"
	"strconv"
)

// Severity of a non-fatal error
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Recovery actions recorded with each non-fatal error
const (
	ActionSkipped     = "skipped"
	ActionTimedOut    = "timed out, skipped"
	ActionExcluded    = "reference excluded from graph"
	ActionNotAnalyzed = "not analyzed: run deadline reached"
)

// NonFatal is a per-item failure that was recorded and skipped.
type NonFatal struct {
	Path     string   `json:"path" yaml:"path"`
	Cause    string   `json:"cause" yaml:"cause"`
	Severity Severity `json:"severity" yaml:"severity"`
	Action   string   `json:"action" yaml:"action"`
}

// ToNonFatal converts a per-file failure into its report entry.
// path is the root-relative path shown to the caller.
func ToNonFatal(path string, err error) NonFatal {
	nf := NonFatal{
		Path:     path,
		Cause:    causeOf(err),
		Severity: SeverityError,
		Action:   ActionSkipped,
	}

	switch classify(err) {
	case ErrorTypeTimeout:
		nf.Action = ActionTimedOut
	case ErrorTypeDeadline:
		nf.Action = ActionNotAnalyzed
		nf.Severity = SeverityWarning
	case ErrorTypeUnresolved:
		nf.Action = ActionExcluded
		nf.Severity = SeverityWarning
	case ErrorTypeSymlink, ErrorTypeSizeBudget, ErrorTypeFileTooLarge, ErrorTypeBinary:
		nf.Severity = SeverityWarning
	}
	return nf
}

// causeOf strips path prefixes added by the typed wrappers so that the
// cause reads the same regardless of where the file lives.
func causeOf(err error) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		cause := "syntax error"
		// line 0 means the failure was not tied to a position (parser panic, no parser)
		if parseErr.Line > 0 {
			cause += " at line " + strconv.Itoa(parseErr.Line)
		}
		if parseErr.Underlying != nil {
			cause += ": " + parseErr.Underlying.Error()
		}
		return cause
	}
	var fileErr *FileError
	if errors.As(err, &fileErr) && fileErr.Underlying != nil {
		return fileErr.Underlying.Error()
	}
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
