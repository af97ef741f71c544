// Package types holds the records shared by the parser, the analyzers and the report layer.
package types

import (
	"path/filepath"
	"strings"
)

// Language identifies a source language by its canonical short name.
type Language string

const (
	LangUnknown    Language = ""
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangCSharp     Language = "csharp"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangPHP        Language = "php"
	LangZig        Language = "zig"
	LangRuby       Language = "ruby"
	LangKotlin     Language = "kotlin"
	LangSwift      Language = "swift"
	LangScala      Language = "scala"
	LangLua        Language = "lua"
	LangShell      Language = "shell"
)

var extensionLanguages = map[string]Language{
	".go":    LangGo,
	".js":    LangJavaScript,
	".jsx":   LangJavaScript,
	".mjs":   LangJavaScript,
	".cjs":   LangJavaScript,
	".ts":    LangTypeScript,
	".mts":   LangTypeScript,
	".cts":   LangTypeScript,
	".tsx":   LangTSX,
	".py":    LangPython,
	".pyi":   LangPython,
	".rs":    LangRust,
	".java":  LangJava,
	".cs":    LangCSharp,
	".c":     LangC,
	".h":     LangC,
	".cc":    LangCPP,
	".cpp":   LangCPP,
	".cxx":   LangCPP,
	".hpp":   LangCPP,
	".hh":    LangCPP,
	".hxx":   LangCPP,
	".php":   LangPHP,
	".zig":   LangZig,
	".rb":    LangRuby,
	".kt":    LangKotlin,
	".kts":   LangKotlin,
	".swift": LangSwift,
	".scala": LangScala,
	".sc":    LangScala,
	".lua":   LangLua,
	".sh":    LangShell,
	".bash":  LangShell,
}

// LanguageForPath determines the language from the file extension.
func LanguageForPath(path string) Language {
	return extensionLanguages[strings.ToLower(filepath.Ext(path))]
}

// KnownExtensions returns every extension with a language mapping.
func KnownExtensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}
	return exts
}

// Fidelity tags how trustworthy a parsed result is.
type Fidelity string

const (
	// FidelityExact marks results taken from a full syntax tree.
	FidelityExact Fidelity = "exact"
	// FidelityApproximate marks results produced by surface pattern matching.
	FidelityApproximate Fidelity = "approximate"
)

// SourceFile is a validated file ready for parsing. It lives for one run only.
type SourceFile struct {
	Path     string // absolute, symlink-free
	RelPath  string // slash separated, relative to the allowed root
	Language Language
	Content  []byte
	Size     int64
}

// FunctionRecord describes one declared function or method.
type FunctionRecord struct {
	Name           string
	File           string
	Line           int
	DecisionPoints int
}

// Complexity is the base path plus one per decision point.
func (f FunctionRecord) Complexity() int {
	if f.DecisionPoints < 0 {
		return 1
	}
	return 1 + f.DecisionPoints
}

// ReferenceKind is the syntactic form of a reference statement.
type ReferenceKind string

const (
	RefImport  ReferenceKind = "import"
	RefInclude ReferenceKind = "include"
	RefUse     ReferenceKind = "use"
	RefRequire ReferenceKind = "require"
	RefMod     ReferenceKind = "mod"
)

// ReferenceRecord is an import-like statement with its target exactly as written.
type ReferenceRecord struct {
	File   string
	Target string
	Line   int
	Kind   ReferenceKind
}

// ParsedUnit is the parser output for a single SourceFile.
type ParsedUnit struct {
	File       string
	Language   Language
	Fidelity   Fidelity
	Strategy   string
	Functions  []FunctionRecord
	References []ReferenceRecord
	Classes    int
}
