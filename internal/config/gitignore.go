package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// LoadGitignoreExclusions converts the root .gitignore into doublestar exclusion
// patterns. Negated patterns are skipped.
func LoadGitignoreExclusions(rootPath string) []string {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()

	var exclusions []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if pattern := gitignoreToGlob(scanner.Text()); pattern != "" {
			exclusions = append(exclusions, pattern)
		}
	}
	return exclusions
}

func gitignoreToGlob(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
		return ""
	}

	directory := strings.HasSuffix(line, "/")
	line = strings.TrimSuffix(line, "/")

	absolute := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return ""
	}

	// A slash in the middle anchors the pattern to the root, as git does
	if strings.Contains(line, "/") && !strings.HasPrefix(line, "**/") {
		absolute = true
	}

	switch {
	case directory && absolute:
		return line + "/**"
	case directory:
		return "**/" + line + "/**"
	case absolute:
		return line
	default:
		return "**/" + line
	}
}
