// Package pathutil converts between absolute paths and paths relative to an
// analysis root.
//
// Analyzers work on absolute, symlink-resolved paths internally. Everything
// user facing (report items, errors, watch batches) uses slash separated
// paths relative to the root so reports are portable between machines.
package pathutil

import (
	"path/filepath"
	"strings"
)

// Within returns path relative to root when path lies inside root (root
// itself yields "."). Both are compared lexically; no symlinks are resolved.
func Within(root, path string) (string, bool) {
	if root == "" || path == "" {
		return "", false
	}
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		// e.g. different volumes on Windows
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", false
	}
	return rel, true
}

// ToRelative converts an absolute path to a slash separated path relative to
// rootDir. Paths outside the root, and paths that are already relative, are
// returned unchanged apart from separator normalization.
//
// Examples:
//   - ToRelative("/home/user/project/src/main.go", "/home/user/project") → "src/main.go"
//   - ToRelative("/other/location/file.go", "/home/user/project") → "/other/location/file.go"
//   - ToRelative("src/main.go", "/home/user/project") → "src/main.go"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" || !filepath.IsAbs(absPath) {
		return filepath.ToSlash(absPath)
	}
	rel, ok := Within(rootDir, absPath)
	if !ok {
		return filepath.ToSlash(filepath.Clean(absPath))
	}
	return filepath.ToSlash(rel)
}
