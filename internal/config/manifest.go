package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"
)

// Manifest carries project names declared in build manifests at the root. The
// import resolver uses them to strip self-referencing prefixes from import targets.
type Manifest struct {
	GoModule      string
	CrateName     string
	PythonPackage string
	NodePackage   string
}

// DetectManifest reads go.mod, Cargo.toml, pyproject.toml and package.json from root.
// Missing or malformed manifests leave the corresponding field empty.
func DetectManifest(root string) Manifest {
	var m Manifest

	if data, err := os.ReadFile(filepath.Join(root, "go.mod")); err == nil {
		m.GoModule = modfile.ModulePath(data)
	}

	if data, err := os.ReadFile(filepath.Join(root, "Cargo.toml")); err == nil {
		var cargo struct {
			Package struct {
				Name string `toml:"name"`
			} `toml:"package"`
			Lib struct {
				Name string `toml:"name"`
			} `toml:"lib"`
		}
		if toml.Unmarshal(data, &cargo) == nil {
			name := cargo.Lib.Name
			if name == "" {
				name = cargo.Package.Name
			}
			m.CrateName = strings.ReplaceAll(name, "-", "_")
		}
	}

	if data, err := os.ReadFile(filepath.Join(root, "pyproject.toml")); err == nil {
		var pyproject struct {
			Project struct {
				Name string `toml:"name"`
			} `toml:"project"`
			Tool struct {
				Poetry struct {
					Name string `toml:"name"`
				} `toml:"poetry"`
			} `toml:"tool"`
		}
		if toml.Unmarshal(data, &pyproject) == nil {
			name := pyproject.Project.Name
			if name == "" {
				name = pyproject.Tool.Poetry.Name
			}
			m.PythonPackage = strings.ReplaceAll(name, "-", "_")
		}
	}

	if data, err := os.ReadFile(filepath.Join(root, "package.json")); err == nil {
		var pkg struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(data, &pkg) == nil {
			m.NodePackage = pkg.Name
		}
	}

	return m
}
