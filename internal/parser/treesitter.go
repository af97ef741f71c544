package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/types"
)

const anonymousName = "<anonymous>"

// ctxCheckInterval is how many nodes are visited between context checks
const ctxCheckInterval = 1024

type (
	nameFunc     func(n *tree_sitter.Node, src []byte) string
	decisionFunc func(n *tree_sitter.Node, src []byte) int
	classFunc    func(n *tree_sitter.Node, src []byte) bool
	refFunc      func(n *tree_sitter.Node, src []byte) []types.ReferenceRecord
)

// funcKind describes a node kind that declares a function. Anonymous kinds
// only open a record at the top level; nested ones are folded into the
// enclosing function.
type funcKind struct {
	anonymous bool
	name      nameFunc
}

// langSpec is the node-kind table that drives the tree walk for one language
type langSpec struct {
	lang       types.Language
	grammar    func() unsafe.Pointer
	functions  map[string]funcKind
	scopes     map[string]nameFunc // kinds whose name qualifies the methods they contain
	classes    map[string]classFunc
	decisions  map[string]decisionFunc
	references map[string]refFunc
}

// treeSitterStrategy parses one language with its tree-sitter grammar
type treeSitterStrategy struct {
	spec *langSpec

	langOnce sync.Once
	language *tree_sitter.Language
}

func newTreeSitterStrategy(spec *langSpec) *treeSitterStrategy {
	return &treeSitterStrategy{spec: spec}
}

func (s *treeSitterStrategy) Name() string             { return "tree-sitter/" + string(s.spec.lang) }
func (s *treeSitterStrategy) Language() types.Language { return s.spec.lang }
func (s *treeSitterStrategy) Fidelity() types.Fidelity { return types.FidelityExact }

func (s *treeSitterStrategy) grammar() *tree_sitter.Language {
	s.langOnce.Do(func() {
		s.language = tree_sitter.NewLanguage(s.spec.grammar())
	})
	return s.language
}

// Parse builds the syntax tree and walks it once. A parser is created per
// call so strategies are safe to share between goroutines.
func (s *treeSitterStrategy) Parse(ctx context.Context, file *types.SourceFile) (*types.ParsedUnit, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(s.grammar()); err != nil {
		return nil, fmt.Errorf("set %s grammar: %w", s.spec.lang, err)
	}

	// The tree keeps pointers into the buffer it was given
	src := make([]byte, len(file.Content))
	copy(src, file.Content)

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, cgerrors.NewParseError(file.RelPath, 0, 0, "", errors.New("parser returned no tree"))
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(file.RelPath, root, src)
	}

	w := &treeWalker{
		ctx:  ctx,
		spec: s.spec,
		src:  src,
		unit: &types.ParsedUnit{
			File:       file.RelPath,
			Language:   file.Language,
			Fidelity:   types.FidelityExact,
			Strategy:   s.Name(),
			Functions:  []types.FunctionRecord{},
			References: []types.ReferenceRecord{},
		},
	}
	w.visit(root)
	if w.err != nil {
		return nil, w.err
	}
	return w.unit, nil
}

type treeWalker struct {
	ctx     context.Context
	spec    *langSpec
	src     []byte
	unit    *types.ParsedUnit
	funcs   []int    // indexes into unit.Functions, innermost last
	scopes  []string // enclosing type names, innermost last
	visited int
	err     error
}

func (w *treeWalker) visit(n *tree_sitter.Node) {
	if n == nil || w.err != nil {
		return
	}
	w.visited++
	if w.visited%ctxCheckInterval == 0 {
		if err := w.ctx.Err(); err != nil {
			w.err = err
			return
		}
	}

	if !n.IsNamed() {
		// keyword tokens share kinds with the nodes they introduce ("class")
		w.visitChildren(n)
		return
	}

	kind := n.Kind()
	openedFunc := w.enterFunction(n, kind)

	openedScope := false
	if scopeName, ok := w.spec.scopes[kind]; ok {
		if name := scopeName(n, w.src); name != "" {
			w.scopes = append(w.scopes, name)
			openedScope = true
		}
	}

	if decide, ok := w.spec.decisions[kind]; ok && len(w.funcs) > 0 {
		top := w.funcs[len(w.funcs)-1]
		w.unit.Functions[top].DecisionPoints += decide(n, w.src)
	}

	if isClass, ok := w.spec.classes[kind]; ok && (isClass == nil || isClass(n, w.src)) {
		w.unit.Classes++
	}

	if refs, ok := w.spec.references[kind]; ok {
		for _, ref := range refs(n, w.src) {
			if ref.Target == "" {
				continue
			}
			ref.File = w.unit.File
			if ref.Line == 0 {
				ref.Line = int(n.StartPosition().Row) + 1
			}
			w.unit.References = append(w.unit.References, ref)
		}
	}

	w.visitChildren(n)

	if openedScope {
		w.scopes = w.scopes[:len(w.scopes)-1]
	}
	if openedFunc {
		w.funcs = w.funcs[:len(w.funcs)-1]
	}
}

func (w *treeWalker) visitChildren(n *tree_sitter.Node) {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		w.visit(n.Child(i))
	}
}

// enterFunction opens a FunctionRecord when n declares one
func (w *treeWalker) enterFunction(n *tree_sitter.Node, kind string) bool {
	fk, ok := w.spec.functions[kind]
	if !ok {
		return false
	}
	if fk.anonymous && len(w.funcs) > 0 {
		return false
	}

	name := ""
	if fk.name != nil {
		name = strings.TrimSpace(fk.name(n, w.src))
	}
	switch {
	case name == "":
		name = anonymousName
	case len(w.scopes) > 0 && !strings.Contains(name, "."):
		name = w.scopes[len(w.scopes)-1] + "." + name
	}

	w.unit.Functions = append(w.unit.Functions, types.FunctionRecord{
		Name: name,
		File: w.unit.File,
		Line: int(n.StartPosition().Row) + 1,
	})
	w.funcs = append(w.funcs, len(w.unit.Functions)-1)
	return true
}

// syntaxError reports the first ERROR or MISSING node in document order
func syntaxError(path string, root *tree_sitter.Node, src []byte) error {
	bad := firstErrorNode(root)
	if bad == nil {
		return cgerrors.NewParseError(path, 1, 1, "", errors.New("syntax error"))
	}

	pos := bad.StartPosition()
	line, col := int(pos.Row)+1, int(pos.Column)+1
	if bad.IsMissing() {
		return cgerrors.NewParseError(path, line, col, bad.Kind(), fmt.Errorf("missing %q", bad.Kind()))
	}

	token := snippet(nodeText(bad, src))
	if token == "" {
		return cgerrors.NewParseError(path, line, col, "", errors.New("unexpected input"))
	}
	return cgerrors.NewParseError(path, line, col, token, fmt.Errorf("unexpected %q", token))
}

func firstErrorNode(n *tree_sitter.Node) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		if bad := firstErrorNode(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

// snippet trims text to its first line, at most 24 bytes
func snippet(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	if len(text) > 24 {
		text = text[:24]
	}
	return text
}
