package testhelpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDataBuilder lays out a project tree in an isolated temp directory
type TestDataBuilder struct {
	t     testing.TB
	root  string
	files []string
}

// NewTestDataBuilder creates a builder rooted at a fresh t.TempDir()
func NewTestDataBuilder(t testing.TB) *TestDataBuilder {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return &TestDataBuilder{t: t, root: root}
}

// Root returns the absolute project root
func (tdb *TestDataBuilder) Root() string {
	return tdb.root
}

// Path returns the absolute path of a slash-separated relative name
func (tdb *TestDataBuilder) Path(name string) string {
	return filepath.Join(tdb.root, filepath.FromSlash(name))
}

// Files lists the names added so far, in insertion order
func (tdb *TestDataBuilder) Files() []string {
	return append([]string(nil), tdb.files...)
}

// AddFile writes content to name, creating parent directories
func (tdb *TestDataBuilder) AddFile(name, content string) *TestDataBuilder {
	tdb.t.Helper()
	return tdb.AddBytes(name, []byte(content))
}

// AddBytes writes raw content to name
func (tdb *TestDataBuilder) AddBytes(name string, content []byte) *TestDataBuilder {
	tdb.t.Helper()
	full := tdb.Path(name)
	require.NoError(tdb.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(tdb.t, os.WriteFile(full, content, 0o644))
	tdb.files = append(tdb.files, name)
	return tdb
}

// AddGoFile creates a Go file from elements joined by newlines
func (tdb *TestDataBuilder) AddGoFile(name string, elements ...GoFileElement) *TestDataBuilder {
	tdb.t.Helper()
	var builder strings.Builder
	for _, element := range elements {
		builder.WriteString(element.Generate())
		builder.WriteString("\n")
	}
	return tdb.AddFile(name, builder.String())
}

// AddLines writes n numbered comment-free code lines in the given language
// style, useful for line budget fixtures
func (tdb *TestDataBuilder) AddLines(name string, n int) *TestDataBuilder {
	tdb.t.Helper()
	var builder strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&builder, "x%d = %d\n", i, i)
	}
	return tdb.AddFile(name, builder.String())
}

// AddSymlink creates a symlink at name pointing to target
func (tdb *TestDataBuilder) AddSymlink(name, target string) *TestDataBuilder {
	tdb.t.Helper()
	full := tdb.Path(name)
	require.NoError(tdb.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(tdb.t, os.Symlink(target, full))
	return tdb
}

// GoFileElement represents an element in a Go file
type GoFileElement interface {
	Generate() string
}

// StringElement represents a raw string element
type StringElement string

func (s StringElement) Generate() string {
	return string(s)
}

// PackageDecl creates a package declaration
type PackageDecl struct {
	Name string
}

func (p PackageDecl) Generate() string {
	return fmt.Sprintf("package %s", p.Name)
}

// ImportDecl creates an import declaration
type ImportDecl struct {
	Imports []string
}

func (i ImportDecl) Generate() string {
	if len(i.Imports) == 0 {
		return ""
	}
	builder := strings.Builder{}
	builder.WriteString("import (\n")
	for _, imp := range i.Imports {
		fmt.Fprintf(&builder, "\t%q\n", imp)
	}
	builder.WriteString(")")
	return builder.String()
}

// FuncDecl creates a function whose body is the given statements
type FuncDecl struct {
	Name string
	Body []string
}

func (f FuncDecl) Generate() string {
	builder := strings.Builder{}
	fmt.Fprintf(&builder, "func %s() {\n", f.Name)
	for _, stmt := range f.Body {
		builder.WriteString("\t")
		builder.WriteString(stmt)
		builder.WriteString("\n")
	}
	builder.WriteString("}")
	return builder.String()
}
