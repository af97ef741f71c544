package parser

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/lexer"
	"github.com/standardbeagle/codegauge/internal/types"
)

type blockStyle int

const (
	braceBlocks blockStyle = iota
	keywordBlocks
)

type importRule struct {
	pattern *regexp.Regexp // first group is the target
	kind    types.ReferenceKind
	rewrite func(target string) string
}

// rules is the pattern table for one heuristic language
type rules struct {
	lang  types.Language
	style blockStyle

	functions []*regexp.Regexp // first group is the name
	anonymous *regexp.Regexp   // opens an unnamed function
	classes   *regexp.Regexp   // first group is the name
	scopes    *regexp.Regexp   // qualifies methods without counting as a class
	exprBody  *regexp.Regexp   // declaration whose body is an expression, not a block

	decisions  []*regexp.Regexp
	exclusions []*regexp.Regexp // subtracted from the decision count

	imports []importRule

	// keyword style
	openers     *regexp.Regexp // group 1 is the keyword
	closers     map[string]bool
	modifiers   map[string]bool // only open a block at statement start
	loopHeaders map[string]bool // a "do" on the same line belongs to these

	bodyOnNextLine bool // a declaration without a body stays pending
	stripCode      []*regexp.Regexp
	heredocs       bool
}

type heuristicStrategy struct {
	rules  *rules
	syntax lexer.Syntax
}

func newHeuristicStrategy(r *rules) *heuristicStrategy {
	syntax, _ := lexer.For(r.lang)
	return &heuristicStrategy{rules: r, syntax: syntax}
}

func (s *heuristicStrategy) Name() string             { return "heuristic/" + string(s.rules.lang) }
func (s *heuristicStrategy) Language() types.Language { return s.rules.lang }
func (s *heuristicStrategy) Fidelity() types.Fidelity { return types.FidelityApproximate }

// frame is an open function or type declaration
type frame struct {
	fn     int // index into unit.Functions, -1 for a type
	name   string
	depth  int // block depth outside the declaration
	opened bool
	line   int
}

type heuristicParse struct {
	rules *rules
	unit  *types.ParsedUnit

	frames    []frame
	depth     int
	openLines []int // line of each unclosed block, outermost first
}

func (s *heuristicStrategy) Parse(ctx context.Context, file *types.SourceFile) (*types.ParsedUnit, error) {
	p := &heuristicParse{
		rules: s.rules,
		unit: &types.ParsedUnit{
			File:       file.RelPath,
			Language:   file.Language,
			Fidelity:   types.FidelityApproximate,
			Strategy:   s.Name(),
			Functions:  []types.FunctionRecord{},
			References: []types.ReferenceRecord{},
		},
	}

	heredocEnd := ""
	for i, line := range lexer.Scan(s.syntax, file.Content) {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if heredocEnd != "" {
			if strings.TrimSpace(line.Raw) == heredocEnd {
				heredocEnd = ""
			}
			continue
		}
		if line.Kind != lexer.Code {
			continue
		}

		code := line.Code
		for _, re := range s.rules.stripCode {
			code = re.ReplaceAllString(code, "")
		}
		if err := p.line(line.Number, code, line.Raw); err != nil {
			return nil, cgerrors.NewParseError(file.RelPath, line.Number, 1, tokenOf(err), err)
		}
		if s.rules.heredocs {
			if m := heredocPattern.FindStringSubmatch(line.Raw); m != nil {
				heredocEnd = m[1]
			}
		}
	}

	if len(p.openLines) > 0 {
		open := "{"
		if s.rules.style == keywordBlocks {
			open = "block"
		}
		return nil, cgerrors.NewParseError(file.RelPath, p.openLines[0], 1, open,
			fmt.Errorf("unclosed %s opened here", open))
	}
	return p.unit, nil
}

var heredocPattern = regexp.MustCompile(`(?:^|[^<])<<-?\s*['"]?([A-Za-z_]\w*)['"]?`)

type unbalancedError struct{ token string }

func (e *unbalancedError) Error() string { return fmt.Sprintf("unexpected %q", e.token) }

func tokenOf(err error) string {
	var u *unbalancedError
	if errors.As(err, &u) {
		return u.token
	}
	return ""
}

func (p *heuristicParse) line(number int, code, raw string) error {
	p.references(number, code, raw)

	declared := p.declare(number, code)
	p.countDecisions(code)

	var err error
	if p.rules.style == keywordBlocks {
		err = p.keywordBlocks(number, code)
	} else {
		err = p.braceBlocks(number, code)
	}
	if err != nil {
		return err
	}

	if declared && len(p.frames) > 0 {
		top := p.frames[len(p.frames)-1]
		if top.line == number && !top.opened && p.endsAtLineEnd(code) {
			p.frames = p.frames[:len(p.frames)-1]
		}
	}
	return nil
}

// endsAtLineEnd reports whether an unopened declaration on this line is
// complete: an endless def, or a brace-language declaration with no body,
// no expression body and no open parameter list
func (p *heuristicParse) endsAtLineEnd(code string) bool {
	if p.rules.style == keywordBlocks {
		return true
	}
	if p.rules.bodyOnNextLine || p.expressionBody(code) {
		return false
	}
	return strings.Count(code, "(") <= strings.Count(code, ")")
}

func (p *heuristicParse) expressionBody(code string) bool {
	return p.rules.exprBody != nil && p.rules.exprBody.MatchString(code)
}

// declare opens frames for function and type declarations on this line
func (p *heuristicParse) declare(number int, code string) bool {
	declared := false

	for _, re := range []*regexp.Regexp{p.rules.classes, p.rules.scopes} {
		if re == nil {
			continue
		}
		m := re.FindStringSubmatch(code)
		if m == nil || m[1] == "" {
			continue
		}
		p.dropPending()
		p.frames = append(p.frames, frame{fn: -1, name: strings.ReplaceAll(m[1], "::", "."), depth: p.depth, line: number,
			opened: p.rules.style == keywordBlocks})
		if re == p.rules.classes {
			p.unit.Classes++
		}
		declared = true
		break
	}

	name, ok := p.functionName(code)
	if !ok {
		return declared
	}
	if name == "" && p.inFunction() {
		return declared
	}
	if name == "" {
		name = anonymousName
	} else if scope := p.scope(); scope != "" && !strings.Contains(name, ".") {
		name = scope + "." + name
	}

	p.dropPending()
	p.unit.Functions = append(p.unit.Functions, types.FunctionRecord{
		Name: name,
		File: p.unit.File,
		Line: number,
	})
	opened := p.rules.style == keywordBlocks && !p.expressionBody(code)
	p.frames = append(p.frames, frame{fn: len(p.unit.Functions) - 1, depth: p.depth, line: number, opened: opened})
	return true
}

func (p *heuristicParse) functionName(code string) (string, bool) {
	for _, re := range p.rules.functions {
		if m := re.FindStringSubmatch(code); m != nil {
			return strings.ReplaceAll(m[1], ":", "."), true
		}
	}
	if p.rules.anonymous != nil && p.rules.anonymous.MatchString(code) {
		return "", true
	}
	return "", false
}

// dropPending closes declarations at this depth that never opened a body
func (p *heuristicParse) dropPending() {
	for len(p.frames) > 0 {
		top := p.frames[len(p.frames)-1]
		if top.opened || top.depth < p.depth {
			return
		}
		p.frames = p.frames[:len(p.frames)-1]
	}
}

func (p *heuristicParse) inFunction() bool {
	for i := len(p.frames) - 1; i >= 0; i-- {
		if p.frames[i].fn >= 0 {
			return true
		}
	}
	return false
}

func (p *heuristicParse) scope() string {
	for i := len(p.frames) - 1; i >= 0; i-- {
		if p.frames[i].fn < 0 {
			return p.frames[i].name
		}
	}
	return ""
}

func (p *heuristicParse) countDecisions(code string) {
	fn := -1
	for i := len(p.frames) - 1; i >= 0; i-- {
		if p.frames[i].fn >= 0 {
			fn = p.frames[i].fn
			break
		}
	}
	if fn < 0 {
		return
	}

	count := 0
	for _, re := range p.rules.decisions {
		count += len(re.FindAllStringIndex(code, -1))
	}
	for _, re := range p.rules.exclusions {
		count -= len(re.FindAllStringIndex(code, -1))
	}
	if count > 0 {
		p.unit.Functions[fn].DecisionPoints += count
	}
}

func (p *heuristicParse) braceBlocks(number int, code string) error {
	for _, c := range code {
		switch c {
		case '{':
			if len(p.frames) > 0 {
				top := &p.frames[len(p.frames)-1]
				if !top.opened && top.depth == p.depth {
					top.opened = true
				}
			}
			p.depth++
			p.openLines = append(p.openLines, number)
		case '}':
			if p.depth == 0 {
				return &unbalancedError{token: "}"}
			}
			p.depth--
			p.openLines = p.openLines[:len(p.openLines)-1]
			p.closeFrames()
		}
	}
	return nil
}

func (p *heuristicParse) keywordBlocks(number int, code string) error {
	loopOpened := false
	for _, m := range p.rules.openers.FindAllStringSubmatchIndex(code, -1) {
		start, end := m[2], m[3]
		word := code[start:end]

		// method calls, symbols and hash keys that happen to be keywords
		if start > 0 && strings.ContainsRune(".:@$", rune(code[start-1])) {
			continue
		}
		if end < len(code) && strings.ContainsRune(":?!", rune(code[end])) &&
			!strings.HasPrefix(code[end:], "::") {
			continue
		}

		switch {
		case p.rules.closers[word]:
			if p.depth == 0 {
				return &unbalancedError{token: word}
			}
			p.depth--
			p.openLines = p.openLines[:len(p.openLines)-1]
			p.closeFrames()
		case p.rules.modifiers[word] && !statementStart(code[:start]):
			continue
		case word == "do" && loopOpened:
			loopOpened = false
		default:
			if word == "def" && p.expressionBody(code) {
				continue
			}
			if p.rules.loopHeaders[word] {
				loopOpened = true
			}
			p.depth++
			p.openLines = append(p.openLines, number)
		}
	}
	return nil
}

// statementStart reports whether a keyword preceded by prefix begins a statement
func statementStart(prefix string) bool {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return true
	}
	return strings.ContainsRune("=(,[{;|&", rune(prefix[len(prefix)-1]))
}

// closeFrames pops frames whose body just closed, and pending declarations
// that belonged to the block
func (p *heuristicParse) closeFrames() {
	for len(p.frames) > 0 {
		top := p.frames[len(p.frames)-1]
		if top.depth > p.depth || (top.depth == p.depth && top.opened) {
			p.frames = p.frames[:len(p.frames)-1]
			continue
		}
		return
	}
}

func (p *heuristicParse) references(number int, code, raw string) {
	for _, rule := range p.rules.imports {
		m := rule.pattern.FindStringSubmatch(raw)
		if m == nil || strings.TrimSpace(code) == "" {
			continue
		}
		target := m[1]
		if rule.rewrite != nil {
			target = rule.rewrite(target)
		}
		if target == "" {
			continue
		}
		p.unit.References = append(p.unit.References, types.ReferenceRecord{
			File:   p.unit.File,
			Target: target,
			Line:   number,
			Kind:   rule.kind,
		})
		return
	}
}
