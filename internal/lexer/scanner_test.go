package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codegauge/internal/types"
)

func kinds(lines []Line) []LineKind {
	out := make([]LineKind, len(lines))
	for i, l := range lines {
		out[i] = l.Kind
	}
	return out
}

func mustSyntax(t *testing.T, lang types.Language) Syntax {
	t.Helper()
	s, ok := For(lang)
	require.True(t, ok, "no syntax for %s", lang)
	return s
}

func TestScan_Go(t *testing.T) {
	src := `// Package a does things
package a

/* block
   comment */
func f() string { // trailing
	return "// not a comment"
}
`
	lines := Scan(mustSyntax(t, types.LangGo), []byte(src))
	require.Len(t, lines, 8)
	assert.Equal(t, []LineKind{Comment, Code, Blank, Comment, Comment, Code, Code, Code}, kinds(lines))
	assert.Equal(t, `	return ""`, lines[6].Code)
	assert.Equal(t, 7, lines[6].Number)
}

func TestScan_RawStringSpansLines(t *testing.T) {
	src := "var s = `first\n// inside raw string\n\nend`\n// real comment\n"
	lines := Scan(mustSyntax(t, types.LangGo), []byte(src))
	require.Len(t, lines, 5)
	assert.Equal(t, []LineKind{Code, Code, Blank, Code, Comment}, kinds(lines))
}

func TestScan_PythonDocstring(t *testing.T) {
	src := "def f():\n    \"\"\"Doc\n    # still doc\n    \"\"\"\n    return 1  # done\n"
	lines := Scan(mustSyntax(t, types.LangPython), []byte(src))
	assert.Equal(t, []LineKind{Code, Code, Code, Code, Code}, kinds(lines))
}

func TestScan_HashNeedsSpace(t *testing.T) {
	src := "#!/bin/sh\necho ${#list}\ncount=$# # args\n  # indented\n"
	lines := Scan(mustSyntax(t, types.LangShell), []byte(src))
	assert.Equal(t, []LineKind{Comment, Code, Code, Comment}, kinds(lines))
}

func TestScan_RubyBlockComment(t *testing.T) {
	src := "=begin\nanything\n=end\nputs 1\n"
	lines := Scan(mustSyntax(t, types.LangRuby), []byte(src))
	assert.Equal(t, []LineKind{Comment, Comment, Comment, Code}, kinds(lines))
}

func TestScan_LuaLongComment(t *testing.T) {
	src := "--[[ long\ncomment ]]\nlocal s = [[ raw\n-- text ]]\n-- short\n"
	lines := Scan(mustSyntax(t, types.LangLua), []byte(src))
	assert.Equal(t, []LineKind{Comment, Comment, Code, Code, Comment}, kinds(lines))
}

func TestScan_Escapes(t *testing.T) {
	src := "x = \"a \\\" // b\" // c\n"
	lines := Scan(mustSyntax(t, types.LangJavaScript), []byte(src))
	require.Len(t, lines, 1)
	assert.Equal(t, `x = "" `, lines[0].Code)
}

func TestScan_LineEndings(t *testing.T) {
	assert.Empty(t, Scan(mustSyntax(t, types.LangGo), nil))

	lines := Scan(mustSyntax(t, types.LangGo), []byte("a\r\n\r\nb"))
	require.Len(t, lines, 3)
	assert.Equal(t, "a", lines[0].Raw)
	assert.Equal(t, Blank, lines[1].Kind)

	// A lone newline is one blank line
	assert.Len(t, Scan(mustSyntax(t, types.LangGo), []byte("\n")), 1)
}

func TestCountLines_Reconciles(t *testing.T) {
	samples := map[types.Language]string{
		types.LangGo:         "package a\n\n// c\nfunc f() {}\n/* x\n\n*/\n",
		types.LangPython:     "# c\n\n'''doc\n\n'''\nx = 1\n",
		types.LangC:          "#include <stdio.h>\n/* a */ int x; /* b\n*/\n\n",
		types.LangPHP:        "<?php\n# hash\n// slash\n$x = 'multi\n\nline';\n",
		types.LangKotlin:     "fun f() = \"\"\"\n\n\"\"\"\n// end\n",
		types.LangTypeScript: "const t = `a\n${b}\n`;\n\n",
	}
	for lang, src := range samples {
		t.Run(string(lang), func(t *testing.T) {
			c := CountLines(mustSyntax(t, lang), []byte(src))
			assert.Equal(t, c.Total, c.Code+c.Comment+c.Blank)
			assert.Positive(t, c.Total)
		})
	}
}

func TestFor_Unknown(t *testing.T) {
	_, ok := For(types.Language("cobol"))
	assert.False(t, ok)
}

func TestFor_LongestMarkerFirst(t *testing.T) {
	s := mustSyntax(t, types.LangPython)
	assert.Equal(t, `"""`, s.Quotes[0].Delim)
}
