package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/codegauge/internal/types"
)

func nodeText(n *tree_sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if end > uint(len(src)) || start > end {
		return ""
	}
	return string(src[start:end])
}

func fieldText(field string) nameFunc {
	return func(n *tree_sitter.Node, src []byte) string {
		return nodeText(n.ChildByFieldName(field), src)
	}
}

// fieldOrChild reads the named field, falling back to the first named child of kind
func fieldOrChild(field, kind string) nameFunc {
	return func(n *tree_sitter.Node, src []byte) string {
		if f := n.ChildByFieldName(field); f != nil {
			return nodeText(f, src)
		}
		return nodeText(childOfKind(n, kind), src)
	}
}

// baseType strips generic arguments: "Foo<T>" and "Foo[T]" become "Foo"
func baseType(name string) string {
	if i := strings.IndexAny(name, "<["); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

func childOfKind(n *tree_sitter.Node, kinds ...string) *tree_sitter.Node {
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		c := n.NamedChild(i)
		if c != nil && hasKind(c, kinds...) {
			return c
		}
	}
	return nil
}

func lastChildOfKind(n *tree_sitter.Node, kinds ...string) *tree_sitter.Node {
	var found *tree_sitter.Node
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		c := n.NamedChild(i)
		if c != nil && hasKind(c, kinds...) {
			found = c
		}
	}
	return found
}

func hasKind(n *tree_sitter.Node, kinds ...string) bool {
	k := n.Kind()
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// countChildren counts direct children, named or not, of the given kinds
func countChildren(n *tree_sitter.Node, kinds ...string) int {
	total := 0
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		if c := n.Child(i); c != nil && hasKind(c, kinds...) {
			total++
		}
	}
	return total
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, "\"'`")
}

// assignedName names an anonymous function from the binding it is assigned to
func assignedName(n *tree_sitter.Node, src []byte) string {
	p := n.Parent()
	for p != nil && hasKind(p, "parenthesized_expression", "expression_list") {
		p = p.Parent()
	}
	if p == nil {
		return ""
	}
	switch p.Kind() {
	case "variable_declarator", "var_spec", "const_spec":
		return nodeText(p.ChildByFieldName("name"), src)
	case "assignment_expression", "assignment":
		return nodeText(p.ChildByFieldName("left"), src)
	case "pair":
		return unquote(nodeText(p.ChildByFieldName("key"), src))
	case "field_definition", "public_field_definition":
		if prop := p.ChildByFieldName("property"); prop != nil {
			return nodeText(prop, src)
		}
		return nodeText(p.ChildByFieldName("name"), src)
	case "let_declaration":
		return nodeText(p.ChildByFieldName("pattern"), src)
	}
	return ""
}

func one(*tree_sitter.Node, []byte) int { return 1 }

// logical counts a binary expression whose operator is one of ops
func logical(ops ...string) decisionFunc {
	match := func(kind string) bool {
		for _, op := range ops {
			if kind == op {
				return true
			}
		}
		return false
	}
	return func(n *tree_sitter.Node, src []byte) int {
		if op := n.ChildByFieldName("operator"); op != nil {
			if match(op.Kind()) || match(strings.TrimSpace(nodeText(op, src))) {
				return 1
			}
			return 0
		}
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			c := n.Child(i)
			if c != nil && !c.IsNamed() && match(c.Kind()) {
				return 1
			}
		}
		return 0
	}
}

// unlessWildcard counts a match arm unless its pattern is the catch-all "_"
func unlessWildcard(field string) decisionFunc {
	return func(n *tree_sitter.Node, src []byte) int {
		pattern := n.ChildByFieldName(field)
		if pattern == nil {
			pattern = n.NamedChild(0)
		}
		if strings.TrimSpace(nodeText(pattern, src)) == "_" {
			return 0
		}
		return 1
	}
}

// unlessFirstChild counts a node unless its first token is one of the given keywords
func unlessFirstChild(keywords ...string) decisionFunc {
	return func(n *tree_sitter.Node, src []byte) int {
		first := n.Child(0)
		if first != nil && hasKind(first, keywords...) {
			return 0
		}
		return 1
	}
}

func ref(kind types.ReferenceKind, target string, n *tree_sitter.Node) types.ReferenceRecord {
	return types.ReferenceRecord{
		Target: target,
		Kind:   kind,
		Line:   int(n.StartPosition().Row) + 1,
	}
}
