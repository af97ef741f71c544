package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDetectManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", "module example.com/widgets\n\ngo 1.22\n")
	writeFile(t, root, "Cargo.toml", "[package]\nname = \"widget-core\"\nversion = \"0.1.0\"\n")
	writeFile(t, root, "pyproject.toml", "[project]\nname = \"widget-tools\"\n")
	writeFile(t, root, "package.json", `{"name": "@acme/widgets"}`)

	m := DetectManifest(root)
	assert.Equal(t, "example.com/widgets", m.GoModule)
	assert.Equal(t, "widget_core", m.CrateName)
	assert.Equal(t, "widget_tools", m.PythonPackage)
	assert.Equal(t, "@acme/widgets", m.NodePackage)
}

func TestDetectManifest_Empty(t *testing.T) {
	assert.Equal(t, Manifest{}, DetectManifest(t.TempDir()))
}

func TestBuildArtifactDetector(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "tsconfig.json", `{"compilerOptions": {"outDir": "./lib"}}`)
	writeFile(t, root, "Cargo.toml", "[build]\ntarget-dir = \"artifacts\"\n")

	patterns := NewBuildArtifactDetector(root).DetectOutputDirectories()
	assert.Equal(t, []string{"**/lib/**", "**/artifacts/**"}, patterns)
}

func TestGitignoreToGlob(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"# comment":   "",
		"!keep.txt":   "",
		"*.log":       "**/*.log",
		"tmp/":        "**/tmp/**",
		"/root.txt":   "root.txt",
		"/out/":       "out/**",
		"docs/gen.md": "docs/gen.md",
	}
	for in, want := range tests {
		assert.Equal(t, want, gitignoreToGlob(in), in)
	}
}
