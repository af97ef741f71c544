// Package lexer classifies source lines as code, comment or blank using each
// language's comment and string conventions.
package lexer

import (
	"sort"

	"github.com/standardbeagle/codegauge/internal/types"
)

// Quote is a string delimiter
type Quote struct {
	Delim     string
	Close     string // closing delimiter when it differs from Delim
	MultiLine bool   // may span lines (template literals, triple quotes)
	Raw       bool   // backslash does not escape
}

// BlockComment is an opening/closing comment marker pair
type BlockComment struct {
	Open      string
	Close     string
	LineStart bool // only recognized in column 0 (Ruby =begin/=end)
}

// Syntax describes the comment and string rules of one language
type Syntax struct {
	LineComments  []string
	BlockComments []BlockComment
	Quotes        []Quote

	// HashNeedsSpace makes "#" a comment only at line start or after
	// whitespace, so shell expansions like $# and ${#x} stay code
	HashNeedsSpace bool
}

var (
	dq       = Quote{Delim: `"`}
	sq       = Quote{Delim: `'`}
	tripleDQ = Quote{Delim: `"""`, MultiLine: true}
	tripleSQ = Quote{Delim: `'''`, MultiLine: true}
	cBlock   = BlockComment{Open: "/*", Close: "*/"}
)

var syntaxes = map[types.Language]Syntax{
	types.LangGo: {
		LineComments: []string{"//"}, BlockComments: []BlockComment{cBlock},
		Quotes: []Quote{dq, sq, {Delim: "`", MultiLine: true, Raw: true}},
	},
	types.LangJavaScript: jsSyntax(),
	types.LangTypeScript: jsSyntax(),
	types.LangTSX:        jsSyntax(),
	types.LangPython: {
		LineComments: []string{"#"},
		Quotes:       []Quote{tripleDQ, tripleSQ, dq, sq},
	},
	types.LangRust: {
		// Single quotes are lifetimes as often as char literals
		LineComments: []string{"//"}, BlockComments: []BlockComment{cBlock},
		Quotes: []Quote{dq},
	},
	types.LangJava:   cSyntax(tripleDQ),
	types.LangCSharp: cSyntax(),
	types.LangC:      cSyntax(),
	types.LangCPP:    cSyntax(),
	types.LangPHP: {
		LineComments: []string{"//", "#"}, BlockComments: []BlockComment{cBlock},
		Quotes: []Quote{{Delim: `"`, MultiLine: true}, {Delim: `'`, MultiLine: true}},
	},
	types.LangZig: {
		LineComments: []string{"//"},
		Quotes:       []Quote{dq, sq},
	},
	types.LangKotlin: cSyntax(tripleDQ),
	types.LangSwift:  cSyntax(tripleDQ),
	types.LangScala:  cSyntax(tripleDQ),
	types.LangRuby: {
		LineComments:  []string{"#"},
		BlockComments: []BlockComment{{Open: "=begin", Close: "=end", LineStart: true}},
		Quotes:        []Quote{dq, sq},
	},
	types.LangLua: {
		LineComments:  []string{"--"},
		BlockComments: []BlockComment{{Open: "--[[", Close: "]]"}},
		Quotes:        []Quote{dq, sq, {Delim: "[[", Close: "]]", MultiLine: true, Raw: true}},
	},
	types.LangShell: {
		LineComments:   []string{"#"},
		Quotes:         []Quote{dq, {Delim: `'`, Raw: true}},
		HashNeedsSpace: true,
	},
}

func jsSyntax() Syntax {
	return Syntax{
		LineComments:  []string{"//"},
		BlockComments: []BlockComment{cBlock},
		Quotes:        []Quote{dq, sq, {Delim: "`", MultiLine: true}},
	}
}

func cSyntax(extra ...Quote) Syntax {
	return Syntax{
		LineComments:  []string{"//"},
		BlockComments: []BlockComment{cBlock},
		Quotes:        append(extra, dq, sq),
	}
}

// For returns the syntax for lang and whether one is known
func For(lang types.Language) (Syntax, bool) {
	s, ok := syntaxes[lang]
	if !ok {
		return Syntax{}, false
	}
	return s.normalized(), true
}

// normalized orders markers longest first so "--[[" wins over "--" and
// `"""` over `"`
func (s Syntax) normalized() Syntax {
	out := s
	out.LineComments = append([]string(nil), s.LineComments...)
	out.BlockComments = append([]BlockComment(nil), s.BlockComments...)
	out.Quotes = append([]Quote(nil), s.Quotes...)
	sort.SliceStable(out.Quotes, func(i, j int) bool { return len(out.Quotes[i].Delim) > len(out.Quotes[j].Delim) })
	sort.SliceStable(out.BlockComments, func(i, j int) bool {
		return len(out.BlockComments[i].Open) > len(out.BlockComments[j].Open)
	})
	return out
}

func (q Quote) closing() string {
	if q.Close != "" {
		return q.Close
	}
	return q.Delim
}
