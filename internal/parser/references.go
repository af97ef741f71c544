package parser

import (
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/codegauge/internal/types"
)

func goImport(n *tree_sitter.Node, src []byte) []types.ReferenceRecord {
	path := unquote(nodeText(n.ChildByFieldName("path"), src))
	return []types.ReferenceRecord{ref(types.RefImport, path, n)}
}

func jsSourceRef(kind types.ReferenceKind) refFunc {
	return func(n *tree_sitter.Node, src []byte) []types.ReferenceRecord {
		source := n.ChildByFieldName("source")
		if source == nil {
			return nil
		}
		return []types.ReferenceRecord{ref(kind, unquote(nodeText(source, src)), n)}
	}
}

// jsCallRef picks up require("x") and dynamic import("x") with a literal argument
func jsCallRef(n *tree_sitter.Node, src []byte) []types.ReferenceRecord {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	kind := types.RefRequire
	switch {
	case fn.Kind() == "import":
		kind = types.RefImport
	case fn.Kind() == "identifier" && nodeText(fn, src) == "require":
	default:
		return nil
	}
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	lit := childOfKind(args, "string", "template_string")
	if lit == nil || strings.Contains(nodeText(lit, src), "${") {
		return nil
	}
	return []types.ReferenceRecord{ref(kind, unquote(nodeText(lit, src)), n)}
}

func pythonImport(n *tree_sitter.Node, src []byte) []types.ReferenceRecord {
	var refs []types.ReferenceRecord
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "dotted_name":
			refs = append(refs, ref(types.RefImport, nodeText(c, src), n))
		case "aliased_import":
			refs = append(refs, ref(types.RefImport, nodeText(c.ChildByFieldName("name"), src), n))
		}
	}
	return refs
}

// pythonFromImport handles "from m import x". When the module is only dots
// ("from . import a, b") each imported name is itself a module.
func pythonFromImport(n *tree_sitter.Node, src []byte) []types.ReferenceRecord {
	module := n.ChildByFieldName("module_name")
	if module == nil {
		return nil
	}
	target := strings.TrimSpace(nodeText(module, src))
	if strings.Trim(target, ".") != "" {
		return []types.ReferenceRecord{ref(types.RefImport, target, n)}
	}

	var refs []types.ReferenceRecord
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		c := n.NamedChild(i)
		if c == nil || c.StartByte() == module.StartByte() {
			continue
		}
		name := ""
		switch c.Kind() {
		case "dotted_name":
			name = nodeText(c, src)
		case "aliased_import":
			name = nodeText(c.ChildByFieldName("name"), src)
		}
		if name != "" {
			refs = append(refs, ref(types.RefImport, target+name, n))
		}
	}
	if len(refs) == 0 {
		refs = append(refs, ref(types.RefImport, target, n))
	}
	return refs
}

func rustUse(n *tree_sitter.Node, src []byte) []types.ReferenceRecord {
	var refs []types.ReferenceRecord
	for _, path := range rustUsePaths(n.ChildByFieldName("argument"), "", src) {
		refs = append(refs, ref(types.RefUse, path, n))
	}
	return refs
}

// rustUsePaths expands a use tree into the module paths it names:
// crate::a::{b, c::D} gives crate::a::b and crate::a::c::D
func rustUsePaths(n *tree_sitter.Node, prefix string, src []byte) []string {
	if n == nil {
		return nil
	}
	join := func(p string) string {
		switch {
		case prefix == "":
			return p
		case p == "self":
			return prefix
		default:
			return prefix + "::" + p
		}
	}

	switch n.Kind() {
	case "scoped_use_list":
		path := nodeText(n.ChildByFieldName("path"), src)
		next := prefix
		if path != "" {
			next = join(path)
		}
		return rustUsePaths(n.ChildByFieldName("list"), next, src)
	case "use_list":
		var out []string
		count := n.NamedChildCount()
		for i := uint(0); i < count; i++ {
			out = append(out, rustUsePaths(n.NamedChild(i), prefix, src)...)
		}
		return out
	case "use_as_clause":
		return []string{join(nodeText(n.ChildByFieldName("path"), src))}
	case "use_wildcard":
		text := strings.TrimSuffix(strings.TrimSpace(nodeText(n, src)), "*")
		text = strings.TrimSuffix(text, "::")
		if text == "" {
			return []string{prefix}
		}
		return []string{join(text)}
	default:
		return []string{join(nodeText(n, src))}
	}
}

// rustMod records "mod x;" declarations, which pull x.rs or x/mod.rs into the crate
func rustMod(n *tree_sitter.Node, src []byte) []types.ReferenceRecord {
	if n.ChildByFieldName("body") != nil {
		return nil
	}
	return []types.ReferenceRecord{ref(types.RefMod, nodeText(n.ChildByFieldName("name"), src), n)}
}

func javaImport(n *tree_sitter.Node, src []byte) []types.ReferenceRecord {
	name := childOfKind(n, "scoped_identifier", "identifier")
	if name == nil {
		return nil
	}
	target := nodeText(name, src)
	if childOfKind(n, "asterisk") != nil || countChildren(n, "*") > 0 {
		target += ".*"
	}
	return []types.ReferenceRecord{ref(types.RefImport, target, n)}
}

func csharpUsing(n *tree_sitter.Node, src []byte) []types.ReferenceRecord {
	name := lastChildOfKind(n, "qualified_name", "identifier")
	if name == nil {
		return nil
	}
	return []types.ReferenceRecord{ref(types.RefUse, nodeText(name, src), n)}
}

// cInclude keeps <...> on system headers so the resolver can tell them apart
func cInclude(n *tree_sitter.Node, src []byte) []types.ReferenceRecord {
	path := n.ChildByFieldName("path")
	if path == nil {
		return nil
	}
	target := strings.TrimSpace(nodeText(path, src))
	if path.Kind() != "system_lib_string" {
		target = unquote(target)
	}
	return []types.ReferenceRecord{ref(types.RefInclude, target, n)}
}

func phpUse(n *tree_sitter.Node, src []byte) []types.ReferenceRecord {
	name := childOfKind(n, "qualified_name", "name")
	if name == nil {
		return nil
	}
	return []types.ReferenceRecord{ref(types.RefUse, strings.TrimPrefix(nodeText(name, src), `\`), n)}
}

// phpInclude handles include 'x.php' and include __DIR__ . '/x.php'
func phpInclude(kind types.ReferenceKind) refFunc {
	return func(n *tree_sitter.Node, src []byte) []types.ReferenceRecord {
		arg := n.NamedChild(0)
		for arg != nil && arg.Kind() == "parenthesized_expression" {
			arg = arg.NamedChild(0)
		}
		if arg == nil {
			return nil
		}
		switch arg.Kind() {
		case "string", "encapsed_string":
			return []types.ReferenceRecord{ref(kind, unquote(nodeText(arg, src)), n)}
		case "binary_expression":
			left := nodeText(arg.ChildByFieldName("left"), src)
			right := arg.ChildByFieldName("right")
			if right == nil || !hasKind(right, "string", "encapsed_string") {
				return nil
			}
			if !strings.Contains(left, "__DIR__") && !strings.Contains(left, "__FILE__") {
				return nil
			}
			rel := strings.TrimPrefix(unquote(nodeText(right, src)), "/")
			return []types.ReferenceRecord{ref(kind, "./"+rel, n)}
		}
		return nil
	}
}

var zigImportPattern = regexp.MustCompile(`^@import\s*\(\s*"([^"]+)"\s*\)`)

func zigImport(n *tree_sitter.Node, src []byte) []types.ReferenceRecord {
	m := zigImportPattern.FindStringSubmatch(strings.TrimSpace(nodeText(n, src)))
	if m == nil {
		return nil
	}
	return []types.ReferenceRecord{ref(types.RefImport, m[1], n)}
}
