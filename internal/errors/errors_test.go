package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestFatalError(t *testing.T) {
	err := NewFatalError(ErrorTypeBoundary, "../etc/passwd", ErrOutsideRoot)

	if err.Type != ErrorTypeBoundary {
		t.Errorf("Expected Type to be ErrorTypeBoundary, got %v", err.Type)
	}

	if !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("Expected error to unwrap to ErrOutsideRoot")
	}

	if !IsFatal(fmt.Errorf("validate: %w", err)) {
		t.Errorf("Expected wrapped fatal error to be detected")
	}

	expectedMsg := "boundary violation for ../etc/passwd: path escapes allowed root"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestParseError(t *testing.T) {
	underlying := errors.New("unexpected token")
	err := NewParseError("/src/broken.go", 10, 5, "}", underlying)

	if err.Line != 10 || err.Column != 5 {
		t.Errorf("Expected Line/Column to be 10:5, got %d:%d", err.Line, err.Column)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := `parse error at /src/broken.go:10:5 (near token "}"): unexpected token`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	if IsFatal(err) {
		t.Errorf("Parse errors must never be fatal")
	}
}

func TestFileErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"permission", fs.ErrPermission, ErrorTypePermission},
		{"missing", fmt.Errorf("open: %w", fs.ErrNotExist), ErrorTypeFileNotFound},
		{"too large", ErrFileTooLarge, ErrorTypeFileTooLarge},
		{"aggregate", ErrAggregateLimit, ErrorTypeSizeBudget},
		{"symlink", ErrSymlink, ErrorTypeSymlink},
		{"timeout", ErrTimeout, ErrorTypeTimeout},
		{"other", errors.New("boom"), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewFileError("read", "a.go", tt.err)
			if err.Type != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, err.Type)
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("must be positive")
	err := NewConfigError("limits.max_file_size", "-1", underlying)

	expectedMsg := "config error for field limits.max_file_size (value -1): must be positive"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
	if !IsFatal(err) {
		t.Errorf("Config errors abort the run")
	}
}

func TestMultiError(t *testing.T) {
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")

	multi := NewMultiError([]error{err1, nil, err2})
	if len(multi.Errors) != 2 {
		t.Errorf("Expected 2 errors after filtering nil, got %d", len(multi.Errors))
	}
	if !errors.Is(multi, err2) {
		t.Errorf("Expected multi error to match err2")
	}

	empty := NewMultiError(nil)
	if empty.ErrorOrNil() != nil {
		t.Errorf("Expected empty multi error to collapse to nil")
	}
}

func TestToNonFatal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		action   string
		severity Severity
		cause    string
	}{
		{
			name:     "oversized",
			err:      NewFileError("read", "/abs/big.go", ErrFileTooLarge),
			action:   ActionSkipped,
			severity: SeverityWarning,
			cause:    "file exceeds maximum size",
		},
		{
			name:     "timeout",
			err:      NewFileError("parse", "/abs/slow.go", ErrTimeout),
			action:   ActionTimedOut,
			severity: SeverityError,
			cause:    "processing timed out",
		},
		{
			name:     "syntax",
			err:      NewParseError("/abs/bad.py", 3, 1, "", errors.New("invalid syntax")),
			action:   ActionSkipped,
			severity: SeverityError,
			cause:    "syntax error at line 3: invalid syntax",
		},
		{
			name:     "syntax without position",
			err:      NewParseError("/abs/crash.rs", 0, 0, "", errors.New("parser panic: index out of range")),
			action:   ActionSkipped,
			severity: SeverityError,
			cause:    "syntax error: parser panic: index out of range",
		},
		{
			name:     "syntax without detail",
			err:      NewParseError("/abs/bad.go", 7, 2, "", nil),
			action:   ActionSkipped,
			severity: SeverityError,
			cause:    "syntax error at line 7",
		},
		{
			name:     "unresolved",
			err:      fmt.Errorf("./missing: %w", ErrUnresolved),
			action:   ActionExcluded,
			severity: SeverityWarning,
			cause:    "./missing: import target not found in analyzed set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nf := ToNonFatal("rel/path", tt.err)
			if nf.Path != "rel/path" {
				t.Errorf("Expected path rel/path, got %s", nf.Path)
			}
			if nf.Action != tt.action {
				t.Errorf("Expected action %q, got %q", tt.action, nf.Action)
			}
			if nf.Severity != tt.severity {
				t.Errorf("Expected severity %q, got %q", tt.severity, nf.Severity)
			}
			if nf.Cause != tt.cause {
				t.Errorf("Expected cause %q, got %q", tt.cause, nf.Cause)
			}
		})
	}
}
