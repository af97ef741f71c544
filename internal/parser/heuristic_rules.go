package parser

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/codegauge/internal/types"
)

var (
	andOr        = regexp.MustCompile(`&&|\|\|`)
	ternary      = regexp.MustCompile(`\s\?\s[^:]*\s:\s`)
	nullCoalesce = regexp.MustCompile(`\?\?`)
)

func heuristicRules() []*rules {
	return []*rules{
		rubyRules(),
		kotlinRules(),
		swiftRules(),
		scalaRules(),
		luaRules(),
		shellRules(),
	}
}

// relative turns a bare require_relative path into an explicit ./ path
func relative(target string) string {
	if strings.HasPrefix(target, ".") || strings.HasPrefix(target, "/") {
		return target
	}
	return "./" + target
}

func rubyRules() *rules {
	return &rules{
		lang:  types.LangRuby,
		style: keywordBlocks,
		functions: []*regexp.Regexp{
			regexp.MustCompile(`^\s*(?:private\s+|protected\s+|public\s+)?def\s+(?:self\.)?([A-Za-z_]\w*[?!=]?|[^\s(]+)`),
		},
		classes:  regexp.MustCompile(`^\s*class\s+([A-Z][\w:]*)`),
		scopes:   regexp.MustCompile(`^\s*module\s+([A-Z][\w:]*)`),
		exprBody: regexp.MustCompile(`^\s*(?:private\s+|protected\s+|public\s+)?def\s+(?:self\.)?[^\s(=]+(?:\([^)]*\)\s*|\s+)=(?:[^=~>]|$)`),
		decisions: []*regexp.Regexp{
			regexp.MustCompile(`(?:^|[^.:\w])(?:if|elsif|unless|while|until|for|when|rescue)\b`),
			regexp.MustCompile(`(?:^|[^.:\w])(?:and|or)\b`),
			andOr,
			ternary,
		},
		imports: []importRule{
			{pattern: regexp.MustCompile(`^\s*require_relative\s*\(?\s*['"]([^'"]+)['"]`), kind: types.RefRequire, rewrite: relative},
			{pattern: regexp.MustCompile(`^\s*(?:require|load)\s*\(?\s*['"]([^'"]+)['"]`), kind: types.RefRequire},
		},
		openers:     regexp.MustCompile(`\b(def|class|module|if|unless|while|until|case|begin|for|do|end)\b`),
		closers:     map[string]bool{"end": true},
		modifiers:   map[string]bool{"if": true, "unless": true, "while": true, "until": true},
		loopHeaders: map[string]bool{"while": true, "until": true, "for": true},
	}
}

func kotlinRules() *rules {
	return &rules{
		lang:  types.LangKotlin,
		style: braceBlocks,
		functions: []*regexp.Regexp{
			regexp.MustCompile(`\bfun\s+(?:<[^>]*>\s*)?(?:[\w.<>?]+\.)?(\w+)\s*\(`),
		},
		classes:  regexp.MustCompile(`\b(?:class|interface|object)\s+(\w+)`),
		exprBody: regexp.MustCompile(`\)\s*(?::[^={]*)?=`),
		decisions: []*regexp.Regexp{
			regexp.MustCompile(`\b(?:if|for|while|catch)\b`),
			regexp.MustCompile(`^[^{]*->`), // when branch
			andOr,
			regexp.MustCompile(`\?:`),
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`^\s*else\s*->`),
		},
		imports: []importRule{
			{pattern: regexp.MustCompile(`^\s*import\s+(\w+(?:\.\w+)*(?:\.\*)?)`), kind: types.RefImport},
		},
	}
}

func swiftRules() *rules {
	return &rules{
		lang:  types.LangSwift,
		style: braceBlocks,
		functions: []*regexp.Regexp{
			regexp.MustCompile(`\bfunc\s+(\w+|[^\s(<]+)\s*(?:<[^>]*>)?\s*\(`),
			regexp.MustCompile(`^\s*(?:(?:public|private|internal|fileprivate|open|convenience|required|override|@\w+)\s+)*(init|deinit)\b[?!]?`),
		},
		classes: regexp.MustCompile(`\b(?:class|struct|enum|protocol|actor)\s+([A-Z_]\w*)`),
		scopes:  regexp.MustCompile(`\bextension\s+([A-Za-z_][\w.]*)`),
		decisions: []*regexp.Regexp{
			regexp.MustCompile(`\b(?:if|for|while|catch)\b`),
			regexp.MustCompile(`^\s*case\b`),
			andOr,
			nullCoalesce,
			ternary,
		},
		imports: []importRule{
			{pattern: regexp.MustCompile(`^\s*(?:@\w+\s+)*import\s+(?:(?:class|struct|enum|protocol|func|var|let|typealias)\s+)?([\w.]+)`), kind: types.RefImport},
		},
	}
}

func scalaRules() *rules {
	return &rules{
		lang:  types.LangScala,
		style: braceBlocks,
		functions: []*regexp.Regexp{
			regexp.MustCompile(`\bdef\s+(\w+|[^\s(:\[]+)`),
		},
		classes:  regexp.MustCompile(`\b(?:class|object|trait|enum)\s+(\w+)`),
		exprBody: regexp.MustCompile(`(?:\)|\bdef\s+[^\s(:\[]+)\s*(?::[^={]*)?=`),
		decisions: []*regexp.Regexp{
			regexp.MustCompile(`\b(?:if|for|while|catch)\b`),
			regexp.MustCompile(`\bcase\b`),
			andOr,
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`\bcase\s+(?:class|object)\b`),
			regexp.MustCompile(`\bcase\s+_\s*=>`),
			regexp.MustCompile(`\bcatch\s*\{`), // the case arms inside are counted instead
		},
		imports: []importRule{
			{pattern: regexp.MustCompile(`^\s*import\s+([\w.]+)`), kind: types.RefImport,
				rewrite: func(t string) string { return strings.TrimSuffix(strings.TrimSuffix(t, "._"), ".") }},
		},
	}
}

func luaRules() *rules {
	return &rules{
		lang:  types.LangLua,
		style: keywordBlocks,
		functions: []*regexp.Regexp{
			regexp.MustCompile(`^\s*(?:local\s+)?function\s+([\w.:]+)\s*\(`),
			regexp.MustCompile(`^\s*(?:local\s+)?([\w.]+)\s*=\s*function\s*\(`),
		},
		anonymous: regexp.MustCompile(`\bfunction\s*\(`),
		decisions: []*regexp.Regexp{
			regexp.MustCompile(`\b(?:if|elseif|while|for|repeat)\b`),
			regexp.MustCompile(`\b(?:and|or)\b`),
		},
		imports: []importRule{
			{pattern: regexp.MustCompile(`\brequire\s*\(?\s*['"]([^'"]+)['"]`), kind: types.RefRequire},
		},
		openers: regexp.MustCompile(`\b(function|if|do|repeat|end|until)\b`),
		closers: map[string]bool{"end": true, "until": true},
	}
}

func shellRules() *rules {
	return &rules{
		lang:  types.LangShell,
		style: braceBlocks,
		functions: []*regexp.Regexp{
			regexp.MustCompile(`^\s*function\s+([\w.:-]+)`),
			regexp.MustCompile(`^\s*([\w.:-]+)\s*\(\)`),
		},
		decisions: []*regexp.Regexp{
			regexp.MustCompile(`(?:^|[\s;&|(])(?:if|elif|while|until|for)\s`),
			regexp.MustCompile(`^\s*\(?[\w"'.*|-]+(?:\s*\|\s*[\w"'.*-]+)*\)`), // case arm
			andOr,
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`^\s*\(?\*\)`),
		},
		imports: []importRule{
			{pattern: regexp.MustCompile(`^\s*(?:source|\.)\s+['"]?([^'"\s;]+)`), kind: types.RefInclude},
		},
		bodyOnNextLine: true,
		stripCode: []*regexp.Regexp{
			regexp.MustCompile(`\$\{[^}]*\}`),
			regexp.MustCompile(`\{[^{}\s]*,[^{}\s]*\}`),
		},
		heredocs: true,
	}
}
