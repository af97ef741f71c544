// Package resolver maps reference targets, exactly as written in source, to
// files of the analyzed set.
//
// Resolution is deterministic. When several files could satisfy a target the
// candidate matching the most path segments wins, then the one nearest to the
// importing file (fewest directory segments not shared with it), then the
// lexicographically smallest path.
package resolver

import (
	"path"
	"sort"
	"strings"

	"github.com/standardbeagle/codegauge/internal/config"
	"github.com/standardbeagle/codegauge/internal/types"
)

// Resolution is the outcome for one reference
type Resolution struct {
	// Targets are root-relative paths of the files the reference points at,
	// empty when unresolved. Package-level imports (Go, C# namespaces) may
	// name several files.
	Targets []string
	// Local is set when the reference names something inside the project,
	// so failing to resolve it is worth a warning
	Local bool
}

// Resolved reports whether at least one target was found
func (r Resolution) Resolved() bool {
	return len(r.Targets) > 0
}

// Resolver holds an index of the analyzed file set
type Resolver struct {
	files    []string
	known    map[string]bool
	byDir    map[string][]string // directory -> files in walk order
	byStem   map[string][]string // base name without extension -> files
	dirs     []string
	manifest config.Manifest
}

// New indexes files, which are root-relative slash paths in walk order
func New(files []string, manifest config.Manifest) *Resolver {
	r := &Resolver{
		files:    append([]string(nil), files...),
		known:    make(map[string]bool, len(files)),
		byDir:    make(map[string][]string),
		byStem:   make(map[string][]string),
		manifest: manifest,
	}
	for _, f := range files {
		r.known[f] = true
		dir := path.Dir(f)
		if _, ok := r.byDir[dir]; !ok {
			r.dirs = append(r.dirs, dir)
		}
		r.byDir[dir] = append(r.byDir[dir], f)
		stem := stemOf(f)
		r.byStem[stem] = append(r.byStem[stem], f)
	}
	sort.Strings(r.dirs)
	return r
}

// Resolve maps ref, declared in a file of language lang, to analyzed files
func (r *Resolver) Resolve(ref types.ReferenceRecord, lang types.Language) Resolution {
	target := strings.TrimSpace(ref.Target)
	if target == "" {
		return Resolution{}
	}

	switch lang {
	case types.LangGo:
		return r.resolveGo(ref.File, target)
	case types.LangJavaScript, types.LangTypeScript, types.LangTSX:
		return r.resolveJS(ref.File, target, lang)
	case types.LangPython:
		return r.resolvePython(ref.File, target)
	case types.LangRust:
		return r.resolveRust(ref, target)
	case types.LangC, types.LangCPP:
		return r.resolveInclude(ref.File, target)
	case types.LangCSharp, types.LangSwift:
		return r.resolveNamespaceDir(ref.File, target, lang)
	case types.LangJava, types.LangKotlin, types.LangScala:
		return r.resolveQualified(ref.File, target, ".", lang, false)
	case types.LangPHP:
		if ref.Kind == types.RefUse {
			return r.resolveQualified(ref.File, target, `\`, lang, true)
		}
		return r.resolvePath(ref.File, target, lang)
	case types.LangRuby:
		if isRelative(target) {
			return r.resolvePath(ref.File, target, lang)
		}
		return r.resolveQualified(ref.File, target, "/", lang, false)
	case types.LangLua:
		return r.resolveQualified(ref.File, target, ".", lang, false)
	case types.LangShell:
		// source paths are relative to the working directory, usually the root
		res := r.resolvePath(ref.File, target, lang)
		if !res.Resolved() {
			if f := r.probe(target, lang); f != "" {
				res.Targets = []string{f}
			}
		}
		return res
	case types.LangZig:
		if path.Ext(target) == "" {
			return Resolution{}
		}
		return r.resolvePath(ref.File, target, lang)
	}
	return Resolution{}
}

func (r *Resolver) resolveGo(importer, target string) Resolution {
	module := r.manifest.GoModule
	if module != "" {
		if target != module && !strings.HasPrefix(target, module+"/") {
			return Resolution{}
		}
		dir := strings.TrimPrefix(strings.TrimPrefix(target, module), "/")
		if dir == "" {
			dir = "."
		}
		return Resolution{Targets: r.goPackage(dir), Local: true}
	}

	// Without go.mod, match directories by path suffix. A single-segment
	// directory only counts when the import clearly is not a standard library path.
	first, _, _ := strings.Cut(target, "/")
	qualified := strings.Contains(first, ".")
	best := ""
	for _, dir := range r.dirs {
		if dir == "." || !(target == dir || strings.HasSuffix(target, "/"+dir)) {
			continue
		}
		if !qualified && !strings.Contains(dir, "/") {
			continue
		}
		if len(r.goPackage(dir)) == 0 {
			continue
		}
		if best == "" || segments(dir) > segments(best) ||
			(segments(dir) == segments(best) && proximity(importer, dir) < proximity(importer, best)) {
			best = dir
		}
	}
	if best == "" {
		return Resolution{}
	}
	return Resolution{Targets: r.goPackage(best), Local: true}
}

// goPackage lists the non-test Go files of dir
func (r *Resolver) goPackage(dir string) []string {
	var out []string
	for _, f := range r.byDir[dir] {
		if path.Ext(f) == ".go" && !strings.HasSuffix(f, "_test.go") {
			out = append(out, f)
		}
	}
	return out
}

func (r *Resolver) resolveJS(importer, target string, lang types.Language) Resolution {
	if isRelative(target) {
		return r.resolvePath(importer, target, lang)
	}
	// A self-referencing package name maps onto the root
	if pkg := r.manifest.NodePackage; pkg != "" && (target == pkg || strings.HasPrefix(target, pkg+"/")) {
		rest := strings.TrimPrefix(strings.TrimPrefix(target, pkg), "/")
		if rest == "" {
			rest = "index"
		}
		if f := r.probe(rest, lang); f != "" {
			return Resolution{Targets: []string{f}, Local: true}
		}
		return Resolution{Local: true}
	}
	return Resolution{}
}

func (r *Resolver) resolvePython(importer, target string) Resolution {
	if !strings.HasPrefix(target, ".") {
		res := r.resolveQualified(importer, target, ".", types.LangPython, false)
		if !res.Resolved() && r.manifest.PythonPackage != "" {
			first, _, _ := strings.Cut(target, ".")
			res.Local = first == r.manifest.PythonPackage
		}
		return res
	}

	dots := len(target) - len(strings.TrimLeft(target, "."))
	rest := strings.ReplaceAll(target[dots:], ".", "/")
	base := path.Dir(importer)
	for i := 1; i < dots; i++ {
		if base == "." {
			return Resolution{Local: true}
		}
		base = path.Dir(base)
	}
	joined := path.Join(base, rest)
	if f := r.probe(joined, types.LangPython); f != "" {
		return Resolution{Targets: []string{f}, Local: true}
	}
	// "from . import name" may import a name defined in the package itself
	if rest != "" {
		if f := r.probe(path.Dir(joined), types.LangPython); f != "" && f != importer {
			return Resolution{Targets: []string{f}, Local: true}
		}
	}
	return Resolution{Local: true}
}

func (r *Resolver) resolveRust(ref types.ReferenceRecord, target string) Resolution {
	importer := ref.File
	if ref.Kind == types.RefMod {
		dir := rustModuleDir(importer)
		if f := r.probe(path.Join(dir, target), types.LangRust); f != "" {
			return Resolution{Targets: []string{f}, Local: true}
		}
		return Resolution{Local: true}
	}

	parts := strings.Split(target, "::")
	var base string
	switch {
	case parts[0] == "crate" || (r.manifest.CrateName != "" && parts[0] == r.manifest.CrateName):
		base = r.crateRoot(importer)
		parts = parts[1:]
	case parts[0] == "self":
		base = rustModuleDir(importer)
		parts = parts[1:]
	case parts[0] == "super":
		base = rustModuleDir(importer)
		for len(parts) > 0 && parts[0] == "super" {
			base = path.Dir(base)
			parts = parts[1:]
		}
	default:
		return Resolution{}
	}

	// Trailing segments may name items rather than modules
	for n := len(parts); n > 0; n-- {
		if f := r.probe(path.Join(base, path.Join(parts[:n]...)), types.LangRust); f != "" {
			return Resolution{Targets: []string{f}, Local: true}
		}
	}
	if base != "." {
		if f := r.probe(base, types.LangRust); f != "" && f != importer {
			return Resolution{Targets: []string{f}, Local: true}
		}
	}
	if !escapes(base) {
		for _, root := range []string{"lib.rs", "main.rs", "mod.rs"} {
			if f := path.Join(base, root); r.known[f] && f != importer {
				return Resolution{Targets: []string{f}, Local: true}
			}
		}
	}
	return Resolution{Local: true}
}

// crateRoot is the nearest directory above importer holding lib.rs or main.rs
func (r *Resolver) crateRoot(importer string) string {
	dir := path.Dir(importer)
	for {
		if r.known[path.Join(dir, "lib.rs")] || r.known[path.Join(dir, "main.rs")] {
			return dir
		}
		if dir == "." {
			break
		}
		dir = path.Dir(dir)
	}
	if len(r.byDir["src"]) > 0 {
		return "src"
	}
	return path.Dir(importer)
}

// rustModuleDir is where child modules of the file's module live
func rustModuleDir(file string) string {
	dir := path.Dir(file)
	switch path.Base(file) {
	case "mod.rs", "lib.rs", "main.rs":
		return dir
	}
	return path.Join(dir, stemOf(file))
}

func (r *Resolver) resolveInclude(importer, target string) Resolution {
	if strings.HasPrefix(target, "<") {
		return Resolution{}
	}
	if res := r.resolvePath(importer, target, types.LangC); res.Resolved() || escapes(path.Join(path.Dir(importer), target)) {
		return res
	}
	// Include directories are not known, so fall back to a suffix match
	if res := r.bestSuffix(importer, strings.Split(path.Clean(target), "/"), types.LangUnknown); res.Resolved() {
		return res
	}
	return Resolution{Local: true}
}

// resolveNamespaceDir maps a namespace or module name onto the directory
// that holds its files
func (r *Resolver) resolveNamespaceDir(importer, target string, lang types.Language) Resolution {
	fragment := strings.ReplaceAll(strings.TrimPrefix(target, "static "), ".", "/")
	best := ""
	for _, dir := range r.dirs {
		if dir == "." || len(r.filesOf(dir, lang)) == 0 {
			continue
		}
		if !(dir == fragment || strings.HasSuffix(dir, "/"+fragment) || strings.HasSuffix(fragment, "/"+dir)) {
			continue
		}
		if best == "" || segments(dir) > segments(best) ||
			(segments(dir) == segments(best) && proximity(importer, dir) < proximity(importer, best)) {
			best = dir
		}
	}
	if best == "" {
		return Resolution{}
	}
	return Resolution{Targets: r.filesOf(best, lang), Local: true}
}

// resolveQualified handles dotted or slashed module names matched against
// file paths by suffix. loose enables a common-suffix fallback for layouts
// where the namespace prefix maps to a differently named directory.
func (r *Resolver) resolveQualified(importer, target, sep string, lang types.Language, loose bool) Resolution {
	target = strings.ReplaceAll(target, "::", sep)
	parts := strings.Split(strings.Trim(target, sep), sep)
	if len(parts) == 0 || parts[0] == "" {
		return Resolution{}
	}

	if parts[len(parts)-1] == "*" {
		return r.resolveNamespaceDir(importer, strings.Join(parts[:len(parts)-1], "."), lang)
	}

	// Progressively drop trailing segments: a.b.C.method names the file a/b/C
	for n := len(parts); n >= 1; n-- {
		if n < len(parts) && n < 2 {
			break
		}
		if res := r.bestSuffix(importer, parts[:n], lang); res.Resolved() {
			return res
		}
	}

	if lang == types.LangScala || lang == types.LangKotlin {
		if res := r.resolveNamespaceDir(importer, strings.Join(parts, "."), lang); res.Resolved() {
			return res
		}
	}

	if loose {
		want := len(parts)
		if want > 2 {
			want = 2
		}
		best, bestLen := "", 0
		for _, f := range r.filesOfLang(lang) {
			n := commonSuffix(parts, moduleSegments(f, lang))
			if n < want {
				continue
			}
			if best == "" || n > bestLen || (n == bestLen && closer(importer, f, best)) {
				best, bestLen = f, n
			}
		}
		if best != "" {
			return Resolution{Targets: []string{best}, Local: true}
		}
	}
	return Resolution{}
}

// resolvePath resolves a path-like target against the importing file's
// directory and then against the root
func (r *Resolver) resolvePath(importer, target string, lang types.Language) Resolution {
	joined := path.Join(path.Dir(importer), target)
	if escapes(joined) {
		return Resolution{Local: true}
	}
	if f := r.probe(joined, lang); f != "" {
		return Resolution{Targets: []string{f}, Local: true}
	}
	if !isRelative(target) {
		if f := r.probe(path.Clean(target), lang); f != "" {
			return Resolution{Targets: []string{f}, Local: true}
		}
	}
	return Resolution{Local: true}
}

// bestSuffix finds the file whose module segments end with want, applying
// the tie-breaks documented on the package. LangUnknown compares raw paths.
func (r *Resolver) bestSuffix(importer string, want []string, lang types.Language) Resolution {
	if len(want) == 0 {
		return Resolution{}
	}
	last := want[len(want)-1]

	var candidates []string
	split := func(f string) []string { return moduleSegments(f, lang) }
	if lang == types.LangUnknown {
		split = func(f string) []string { return strings.Split(f, "/") }
		for _, f := range r.byStem[stemOf(last)] {
			if path.Base(f) == last {
				candidates = append(candidates, f)
			}
		}
	} else {
		candidates = append(candidates, r.byStem[last]...)
		for _, index := range indexFiles(lang) {
			candidates = append(candidates, r.byStem[stemOf(index)]...)
		}
	}

	best := ""
	for _, f := range candidates {
		if lang != types.LangUnknown && !contains(extensionFamily(lang), path.Ext(f)) {
			continue
		}
		if !hasSuffix(split(f), want) {
			continue
		}
		if best == "" || closer(importer, f, best) {
			best = f
		}
	}
	if best == "" {
		return Resolution{}
	}
	return Resolution{Targets: []string{best}, Local: true}
}

// probe tries base as a file, with each extension of lang, with a swapped
// extension, and as a package directory
func (r *Resolver) probe(base string, lang types.Language) string {
	base = path.Clean(base)
	if escapes(base) {
		return ""
	}
	if r.known[base] {
		return base
	}
	exts := extensionFamily(lang)
	for _, ext := range exts {
		if r.known[base+ext] {
			return base + ext
		}
	}
	if ext := path.Ext(base); ext != "" && types.LanguageForPath(base) != types.LangUnknown {
		stripped := strings.TrimSuffix(base, ext)
		for _, e := range exts {
			if e != ext && r.known[stripped+e] {
				return stripped + e
			}
		}
	}
	for _, index := range indexFiles(lang) {
		if f := path.Join(base, index); r.known[f] {
			return f
		}
	}
	return ""
}

func (r *Resolver) filesOf(dir string, lang types.Language) []string {
	family := extensionFamily(lang)
	var out []string
	for _, f := range r.byDir[dir] {
		if contains(family, path.Ext(f)) {
			out = append(out, f)
		}
	}
	return out
}

func (r *Resolver) filesOfLang(lang types.Language) []string {
	family := extensionFamily(lang)
	var out []string
	for _, f := range r.files {
		if contains(family, path.Ext(f)) {
			out = append(out, f)
		}
	}
	return out
}

// extensionFamily lists extensions that satisfy an extension-less reference
// from lang, most specific first
func extensionFamily(lang types.Language) []string {
	switch lang {
	case types.LangTypeScript:
		return []string{".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts"}
	case types.LangTSX:
		return []string{".tsx", ".ts", ".jsx", ".js", ".mjs", ".cjs"}
	case types.LangJavaScript:
		return []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx"}
	case types.LangPython:
		return []string{".py", ".pyi"}
	case types.LangRust:
		return []string{".rs"}
	case types.LangJava, types.LangKotlin, types.LangScala:
		return []string{".java", ".kt", ".kts", ".scala"}
	case types.LangCSharp:
		return []string{".cs"}
	case types.LangC, types.LangCPP:
		return []string{".h", ".hpp", ".hh", ".hxx", ".c", ".cc", ".cpp", ".cxx"}
	case types.LangPHP:
		return []string{".php"}
	case types.LangRuby:
		return []string{".rb"}
	case types.LangSwift:
		return []string{".swift"}
	case types.LangLua:
		return []string{".lua"}
	case types.LangShell:
		return []string{".sh", ".bash"}
	case types.LangZig:
		return []string{".zig"}
	}
	return nil
}

func indexFiles(lang types.Language) []string {
	switch lang {
	case types.LangJavaScript, types.LangTypeScript, types.LangTSX:
		var out []string
		for _, ext := range extensionFamily(lang) {
			out = append(out, "index"+ext)
		}
		return out
	case types.LangPython:
		return []string{"__init__.py"}
	case types.LangRust:
		return []string{"mod.rs"}
	case types.LangLua:
		return []string{"init.lua"}
	}
	return nil
}

// moduleSegments is a file's path split into segments with the extension
// removed; package index files stand for their directory
func moduleSegments(file string, lang types.Language) []string {
	segs := strings.Split(strings.TrimSuffix(file, path.Ext(file)), "/")
	if n := len(segs); n > 1 {
		for _, index := range indexFiles(lang) {
			if segs[n-1]+path.Ext(file) == index {
				return segs[:n-1]
			}
		}
	}
	return segs
}

func isRelative(target string) bool {
	return target == "." || target == ".." || strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../")
}

func escapes(p string) bool {
	return p == ".." || strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/")
}

func stemOf(file string) string {
	base := path.Base(file)
	if strings.HasSuffix(base, ".d.ts") {
		return strings.TrimSuffix(base, ".d.ts")
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

func segments(p string) int {
	if p == "." || p == "" {
		return 0
	}
	return strings.Count(p, "/") + 1
}

// proximity counts directory segments of dir not shared with importer's directory
func proximity(importer, dir string) int {
	a := strings.Split(path.Dir(importer), "/")
	b := strings.Split(dir, "/")
	shared := 0
	for shared < len(a) && shared < len(b) && a[shared] == b[shared] {
		shared++
	}
	return len(a) - shared + len(b) - shared
}

// closer reports whether candidate beats current for importer
func closer(importer, candidate, current string) bool {
	pc, pb := proximity(importer, path.Dir(candidate)), proximity(importer, path.Dir(current))
	if pc != pb {
		return pc < pb
	}
	return candidate < current
}

func hasSuffix(segs, want []string) bool {
	if len(want) > len(segs) {
		return false
	}
	off := len(segs) - len(want)
	for i, w := range want {
		if segs[off+i] != w {
			return false
		}
	}
	return true
}

func commonSuffix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
