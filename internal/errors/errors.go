package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the analysis engine
type ErrorType string

const (
	// Boundary errors abort a run before any file is read
	ErrorTypeBoundary    ErrorType = "boundary"
	ErrorTypeInvalidRoot ErrorType = "invalid_root"

	// Per-file errors
	ErrorTypeParse        ErrorType = "parse"
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypeSizeBudget   ErrorType = "size_budget"
	ErrorTypeSymlink      ErrorType = "symlink"
	ErrorTypeBinary       ErrorType = "binary"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeDeadline     ErrorType = "deadline"
	ErrorTypeUnresolved   ErrorType = "unresolved"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// Sentinel causes, matched with errors.Is
var (
	ErrOutsideRoot    = errors.New("path escapes allowed root")
	ErrSymlink        = errors.New("symbolic links are not followed")
	ErrFileTooLarge   = errors.New("file exceeds maximum size")
	ErrAggregateLimit = errors.New("aggregate size limit reached")
	ErrBinary         = errors.New("binary content")
	ErrTimeout        = errors.New("processing timed out")
	ErrRunDeadline    = errors.New("run deadline reached")
	ErrUnresolved     = errors.New("import target not found in analyzed set")
)

// FatalError is a boundary violation. No analysis runs after one is raised.
type FatalError struct {
	Type       ErrorType
	Path       string
	Underlying error
	Timestamp  time.Time
}

// NewFatalError creates a fatal error for the given path
func NewFatalError(errType ErrorType, path string, err error) *FatalError {
	return &FatalError{
		Type:       errType,
		Path:       path,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FatalError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s violation for %s: %v", e.Type, e.Path, e.Underlying)
	}
	return fmt.Sprintf("%s violation: %v", e.Type, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *FatalError) Unwrap() error {
	return e.Underlying
}

// IsFatal reports whether err (or anything it wraps) is a FatalError or ConfigError.
func IsFatal(err error) bool {
	var fatal *FatalError
	var cfg *ConfigError
	return errors.As(err, &fatal) || errors.As(err, &cfg)
}

// ParseError represents a syntax failure in one file
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Line       int
	Column     int
	Token      string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(path string, line, column int, token string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Token:      token,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error at %s:%d:%d: %v", e.FilePath, e.Line, e.Column, e.Underlying)
	}
	return fmt.Sprintf("parse error at %s:%d:%d (near token %q): %v",
		e.FilePath, e.Line, e.Column, e.Token, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error, classifying the underlying cause
func NewFileError(op, path string, err error) *FileError {
	return &FileError{
		Type:       classify(err),
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func classify(err error) ErrorType {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return ErrorTypePermission
	case errors.Is(err, fs.ErrNotExist):
		return ErrorTypeFileNotFound
	case errors.Is(err, ErrFileTooLarge):
		return ErrorTypeFileTooLarge
	case errors.Is(err, ErrAggregateLimit):
		return ErrorTypeSizeBudget
	case errors.Is(err, ErrSymlink):
		return ErrorTypeSymlink
	case errors.Is(err, ErrBinary):
		return ErrorTypeBinary
	case errors.Is(err, ErrTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrRunDeadline):
		return ErrorTypeDeadline
	case errors.Is(err, ErrUnresolved):
		return ErrorTypeUnresolved
	default:
		return ErrorTypeInternal
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
