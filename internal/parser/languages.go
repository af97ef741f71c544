package parser

import (
	"strings"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/codegauge/internal/types"
)

// treeSitterSpecs returns one spec per grammar-backed language. C and C++
// share the C++ grammar, which accepts nearly all C.
func treeSitterSpecs() []*langSpec {
	ts := typeScriptSpec(types.LangTypeScript)
	tsx := typeScriptSpec(types.LangTSX)
	tsx.grammar = tree_sitter_typescript.LanguageTSX

	c := cppSpec()
	c.lang = types.LangC

	return []*langSpec{
		goSpec(),
		javaScriptSpec(),
		ts,
		tsx,
		pythonSpec(),
		rustSpec(),
		javaSpec(),
		csharpSpec(),
		c,
		cppSpec(),
		phpSpec(),
		zigSpec(),
	}
}

func goSpec() *langSpec {
	return &langSpec{
		lang:    types.LangGo,
		grammar: tree_sitter_go.Language,
		functions: map[string]funcKind{
			"function_declaration": {name: fieldText("name")},
			"method_declaration":   {name: goMethodName},
			"func_literal":         {anonymous: true, name: assignedName},
		},
		classes: map[string]classFunc{
			"type_spec": func(n *tree_sitter.Node, _ []byte) bool {
				t := n.ChildByFieldName("type")
				return t != nil && hasKind(t, "struct_type", "interface_type")
			},
		},
		decisions: map[string]decisionFunc{
			"if_statement":       one,
			"for_statement":      one,
			"expression_case":    one,
			"type_case":          one,
			"communication_case": one,
			"binary_expression":  logical("&&", "||"),
		},
		references: map[string]refFunc{
			"import_spec": goImport,
		},
	}
}

// goMethodName qualifies a method with its receiver type: (s *Server[T]) Run is Server.Run
func goMethodName(n *tree_sitter.Node, src []byte) string {
	name := nodeText(n.ChildByFieldName("name"), src)
	recv := strings.Trim(strings.TrimSpace(nodeText(n.ChildByFieldName("receiver"), src)), "()")
	fields := strings.Fields(recv)
	if len(fields) == 0 {
		return name
	}
	typ := baseType(strings.TrimLeft(fields[len(fields)-1], "*"))
	if typ == "" {
		return name
	}
	return typ + "." + name
}

func jsFunctions() map[string]funcKind {
	return map[string]funcKind{
		"function_declaration":           {name: fieldText("name")},
		"generator_function_declaration": {name: fieldText("name")},
		"method_definition":              {name: fieldText("name")},
		"function_expression":            {anonymous: true, name: assignedName},
		"function":                       {anonymous: true, name: assignedName},
		"generator_function":             {anonymous: true, name: assignedName},
		"arrow_function":                 {anonymous: true, name: assignedName},
	}
}

func jsDecisions() map[string]decisionFunc {
	return map[string]decisionFunc{
		"if_statement":       one,
		"for_statement":      one,
		"for_in_statement":   one,
		"while_statement":    one,
		"do_statement":       one,
		"switch_case":        one,
		"catch_clause":       one,
		"ternary_expression": one,
		"binary_expression":  logical("&&", "||", "??"),
	}
}

func jsReferences() map[string]refFunc {
	return map[string]refFunc{
		"import_statement":      jsSourceRef(types.RefImport),
		"export_statement":      jsSourceRef(types.RefImport),
		"import_require_clause": jsSourceRef(types.RefRequire),
		"call_expression":       jsCallRef,
	}
}

func javaScriptSpec() *langSpec {
	return &langSpec{
		lang:      types.LangJavaScript,
		grammar:   tree_sitter_javascript.Language,
		functions: jsFunctions(),
		scopes: map[string]nameFunc{
			"class_declaration": fieldText("name"),
			"class":             fieldText("name"),
		},
		classes: map[string]classFunc{
			"class_declaration": nil,
			"class":             nil,
		},
		decisions:  jsDecisions(),
		references: jsReferences(),
	}
}

func typeScriptSpec(lang types.Language) *langSpec {
	return &langSpec{
		lang:      lang,
		grammar:   tree_sitter_typescript.LanguageTypescript,
		functions: jsFunctions(),
		scopes: map[string]nameFunc{
			"class_declaration":          fieldText("name"),
			"abstract_class_declaration": fieldText("name"),
			"class":                      fieldText("name"),
		},
		classes: map[string]classFunc{
			"class_declaration":          nil,
			"abstract_class_declaration": nil,
			"class":                      nil,
			"interface_declaration":      nil,
			"enum_declaration":           nil,
		},
		decisions:  jsDecisions(),
		references: jsReferences(),
	}
}

func pythonSpec() *langSpec {
	return &langSpec{
		lang:    types.LangPython,
		grammar: tree_sitter_python.Language,
		functions: map[string]funcKind{
			"function_definition": {name: fieldText("name")},
			"lambda":              {anonymous: true, name: assignedName},
		},
		scopes: map[string]nameFunc{
			"class_definition": fieldText("name"),
		},
		classes: map[string]classFunc{
			"class_definition": nil,
		},
		decisions: map[string]decisionFunc{
			"if_statement":           one,
			"elif_clause":            one,
			"for_statement":          one,
			"while_statement":        one,
			"except_clause":          one,
			"except_group_clause":    one,
			"conditional_expression": one,
			"if_clause":              one, // comprehension filter
			"case_clause":            unlessWildcard("pattern"),
			"boolean_operator":       logical("and", "or"),
		},
		references: map[string]refFunc{
			"import_statement":      pythonImport,
			"import_from_statement": pythonFromImport,
		},
	}
}

func rustSpec() *langSpec {
	return &langSpec{
		lang:    types.LangRust,
		grammar: tree_sitter_rust.Language,
		functions: map[string]funcKind{
			"function_item":      {name: fieldText("name")},
			"closure_expression": {anonymous: true, name: assignedName},
		},
		scopes: map[string]nameFunc{
			"impl_item": func(n *tree_sitter.Node, src []byte) string {
				return baseType(nodeText(n.ChildByFieldName("type"), src))
			},
			"trait_item": fieldText("name"),
		},
		classes: map[string]classFunc{
			"struct_item": nil,
			"enum_item":   nil,
			"union_item":  nil,
			"trait_item":  nil,
		},
		decisions: map[string]decisionFunc{
			"if_expression":     one,
			"while_expression":  one,
			"loop_expression":   one,
			"for_expression":    one,
			"match_arm":         unlessWildcard("pattern"),
			"binary_expression": logical("&&", "||"),
		},
		references: map[string]refFunc{
			"use_declaration": rustUse,
			"mod_item":        rustMod,
		},
	}
}

func javaSpec() *langSpec {
	typeName := fieldText("name")
	return &langSpec{
		lang:    types.LangJava,
		grammar: tree_sitter_java.Language,
		functions: map[string]funcKind{
			"method_declaration":              {name: fieldText("name")},
			"constructor_declaration":         {name: fieldText("name")},
			"compact_constructor_declaration": {name: fieldText("name")},
			"lambda_expression":               {anonymous: true, name: assignedName},
		},
		scopes: map[string]nameFunc{
			"class_declaration":     typeName,
			"interface_declaration": typeName,
			"enum_declaration":      typeName,
			"record_declaration":    typeName,
		},
		classes: map[string]classFunc{
			"class_declaration":           nil,
			"interface_declaration":       nil,
			"enum_declaration":            nil,
			"record_declaration":          nil,
			"annotation_type_declaration": nil,
		},
		decisions: map[string]decisionFunc{
			"if_statement":           one,
			"for_statement":          one,
			"enhanced_for_statement": one,
			"while_statement":        one,
			"do_statement":           one,
			"catch_clause":           one,
			"ternary_expression":     one,
			"switch_label":           unlessFirstChild("default"),
			"binary_expression":      logical("&&", "||"),
		},
		references: map[string]refFunc{
			"import_declaration": javaImport,
		},
	}
}

func csharpSpec() *langSpec {
	typeName := fieldText("name")
	return &langSpec{
		lang:    types.LangCSharp,
		grammar: tree_sitter_csharp.Language,
		functions: map[string]funcKind{
			"method_declaration":          {name: fieldText("name")},
			"constructor_declaration":     {name: fieldText("name")},
			"destructor_declaration":      {name: func(n *tree_sitter.Node, src []byte) string { return "~" + nodeText(n.ChildByFieldName("name"), src) }},
			"local_function_statement":    {name: fieldText("name")},
			"accessor_declaration":        {name: csharpAccessorName},
			"lambda_expression":           {anonymous: true, name: assignedName},
			"anonymous_method_expression": {anonymous: true, name: assignedName},
		},
		scopes: map[string]nameFunc{
			"class_declaration":     typeName,
			"struct_declaration":    typeName,
			"interface_declaration": typeName,
			"record_declaration":    typeName,
		},
		classes: map[string]classFunc{
			"class_declaration":     nil,
			"struct_declaration":    nil,
			"interface_declaration": nil,
			"record_declaration":    nil,
			"enum_declaration":      nil,
		},
		decisions: map[string]decisionFunc{
			"if_statement":           one,
			"for_statement":          one,
			"foreach_statement":      one,
			"while_statement":        one,
			"do_statement":           one,
			"catch_clause":           one,
			"conditional_expression": one,
			"switch_section": func(n *tree_sitter.Node, _ []byte) int {
				return countChildren(n, "case", "case_switch_label", "case_pattern_switch_label")
			},
			"switch_expression_arm": func(n *tree_sitter.Node, src []byte) int {
				if first := n.NamedChild(0); first != nil && (first.Kind() == "discard" || nodeText(first, src) == "_") {
					return 0
				}
				return 1
			},
			"binary_expression": logical("&&", "||", "??"),
		},
		references: map[string]refFunc{
			"using_directive": csharpUsing,
		},
	}
}

// csharpAccessorName turns the get accessor of property Name into get_Name
func csharpAccessorName(n *tree_sitter.Node, src []byte) string {
	keyword := ""
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		if c := n.Child(i); c != nil && hasKind(c, "get", "set", "init", "add", "remove") {
			keyword = c.Kind()
			break
		}
	}
	if keyword == "" {
		return ""
	}
	owner := n.Parent()
	for owner != nil && owner.Kind() == "accessor_list" {
		owner = owner.Parent()
	}
	if owner == nil {
		return keyword
	}
	name := nodeText(owner.ChildByFieldName("name"), src)
	if name == "" {
		return keyword
	}
	return keyword + "_" + name
}

func cppSpec() *langSpec {
	withBody := func(n *tree_sitter.Node, _ []byte) bool {
		return n.ChildByFieldName("body") != nil
	}
	typeName := func(n *tree_sitter.Node, src []byte) string {
		if n.ChildByFieldName("body") == nil {
			return ""
		}
		return baseType(nodeText(n.ChildByFieldName("name"), src))
	}
	return &langSpec{
		lang:    types.LangCPP,
		grammar: tree_sitter_cpp.Language,
		functions: map[string]funcKind{
			"function_definition": {name: cFunctionName},
			"lambda_expression":   {anonymous: true, name: assignedName},
		},
		scopes: map[string]nameFunc{
			"class_specifier":  typeName,
			"struct_specifier": typeName,
		},
		classes: map[string]classFunc{
			"class_specifier":  withBody,
			"struct_specifier": withBody,
		},
		decisions: map[string]decisionFunc{
			"if_statement":           one,
			"for_statement":          one,
			"for_range_loop":         one,
			"while_statement":        one,
			"do_statement":           one,
			"catch_clause":           one,
			"conditional_expression": one,
			"case_statement":         unlessFirstChild("default"),
			"binary_expression":      logical("&&", "||", "and", "or"),
		},
		references: map[string]refFunc{
			"preproc_include": cInclude,
		},
	}
}

// cFunctionName follows the declarator chain down to the declared name.
// Out-of-line members such as Foo::bar come back as Foo.bar.
func cFunctionName(n *tree_sitter.Node, src []byte) string {
	d := n.ChildByFieldName("declarator")
	for depth := 0; d != nil && depth < 16; depth++ {
		switch d.Kind() {
		case "identifier", "field_identifier", "destructor_name", "operator_name":
			return nodeText(d, src)
		case "qualified_identifier":
			return strings.ReplaceAll(nodeText(d, src), "::", ".")
		}
		next := d.ChildByFieldName("declarator")
		if next == nil {
			next = lastChildOfKind(d, "function_declarator", "pointer_declarator", "reference_declarator",
				"parenthesized_declarator", "identifier", "field_identifier", "qualified_identifier",
				"destructor_name", "operator_name")
		}
		d = next
	}
	return ""
}

func phpSpec() *langSpec {
	typeName := fieldText("name")
	return &langSpec{
		lang:    types.LangPHP,
		grammar: tree_sitter_php.LanguagePHP,
		functions: map[string]funcKind{
			"function_definition":                    {name: fieldText("name")},
			"method_declaration":                     {name: fieldText("name")},
			"anonymous_function":                     {anonymous: true, name: assignedName},
			"anonymous_function_creation_expression": {anonymous: true, name: assignedName},
			"arrow_function":                         {anonymous: true, name: assignedName},
		},
		scopes: map[string]nameFunc{
			"class_declaration":     typeName,
			"interface_declaration": typeName,
			"trait_declaration":     typeName,
			"enum_declaration":      typeName,
		},
		classes: map[string]classFunc{
			"class_declaration":     nil,
			"interface_declaration": nil,
			"trait_declaration":     nil,
			"enum_declaration":      nil,
		},
		decisions: map[string]decisionFunc{
			"if_statement":                 one,
			"else_if_clause":               one,
			"for_statement":                one,
			"foreach_statement":            one,
			"while_statement":              one,
			"do_statement":                 one,
			"catch_clause":                 one,
			"conditional_expression":       one,
			"case_statement":               one,
			"match_conditional_expression": one,
			"binary_expression":            logical("&&", "||", "and", "or", "??"),
		},
		references: map[string]refFunc{
			"namespace_use_clause":    phpUse,
			"include_expression":      phpInclude(types.RefInclude),
			"include_once_expression": phpInclude(types.RefInclude),
			"require_expression":      phpInclude(types.RefRequire),
			"require_once_expression": phpInclude(types.RefRequire),
		},
	}
}

func zigSpec() *langSpec {
	container := func(n *tree_sitter.Node, _ []byte) bool {
		return childOfKind(n, "struct_declaration", "union_declaration", "enum_declaration") != nil
	}
	return &langSpec{
		lang:    types.LangZig,
		grammar: tree_sitter_zig.Language,
		functions: map[string]funcKind{
			"function_declaration": {name: fieldOrChild("name", "identifier")},
		},
		scopes: map[string]nameFunc{
			"variable_declaration": func(n *tree_sitter.Node, src []byte) string {
				if !container(n, src) {
					return ""
				}
				return nodeText(childOfKind(n, "identifier"), src)
			},
		},
		classes: map[string]classFunc{
			"variable_declaration": container,
		},
		decisions: map[string]decisionFunc{
			"if_statement":      one,
			"if_expression":     one,
			"while_statement":   one,
			"while_expression":  one,
			"for_statement":     one,
			"for_expression":    one,
			"switch_case":       zigSwitchCase,
			"binary_expression": logical("and", "or", "orelse", "catch"),
		},
		references: map[string]refFunc{
			"builtin_function": zigImport,
		},
	}
}

func zigSwitchCase(n *tree_sitter.Node, src []byte) int {
	if strings.HasPrefix(strings.TrimSpace(nodeText(n, src)), "else") {
		return 0
	}
	return 1
}
