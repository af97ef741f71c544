// Package walker enumerates candidate source files in deterministic walk order.
package walker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/logging"
	"github.com/standardbeagle/codegauge/internal/security"
	"github.com/standardbeagle/codegauge/internal/types"
)

// Candidate is a file that passed every up-front guard check
type Candidate struct {
	Path     string
	RelPath  string
	Language types.Language
	Size     int64
}

// Rejection is a file refused by the guard during the walk
type Rejection struct {
	RelPath string
	Err     error
}

// Result holds candidates and rejections, both in walk order
type Result struct {
	Files    []Candidate
	Rejected []Rejection
}

// Scanner walks a validated target and applies include/exclude globs
type Scanner struct {
	guard   *security.Guard
	include []string
	exclude []string
}

func NewScanner(guard *security.Guard, include, exclude []string) *Scanner {
	return &Scanner{
		guard:   guard,
		include: append([]string(nil), include...),
		exclude: append([]string(nil), exclude...),
	}
}

// Scan walks target, which must already be resolved by the guard. A file
// target is returned as the single candidate regardless of include/exclude.
func (s *Scanner) Scan(ctx context.Context, target string) (*Result, error) {
	result := &Result{}

	info, err := os.Lstat(target)
	if err != nil {
		return nil, cgerrors.NewFatalError(cgerrors.ErrorTypeFileNotFound, target, err)
	}
	if !info.IsDir() {
		s.consider(result, target, info)
		return result, nil
	}

	root := s.guard.Root()
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := s.guard.RelPath(path)
		if walkErr != nil {
			logging.LogGuard("walk error at %s: %v", rel, walkErr)
			result.Rejected = append(result.Rejected, Rejection{RelPath: rel, Err: cgerrors.NewFileError("walk", path, walkErr)})
			if d != nil && d.IsDir() && path != target {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == target || path == root {
				return nil
			}
			if s.shouldExclude(rel) || s.shouldExclude(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if s.shouldExclude(rel) {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			// Symlinks are reported, never followed
			result.Rejected = append(result.Rejected, Rejection{RelPath: rel, Err: cgerrors.NewFileError("validate", path, cgerrors.ErrSymlink)})
			return nil
		}

		if types.LanguageForPath(path) == types.LangUnknown || !s.shouldInclude(rel) {
			return nil
		}

		entryInfo, err := d.Info()
		if err != nil {
			result.Rejected = append(result.Rejected, Rejection{RelPath: rel, Err: cgerrors.NewFileError("stat", path, err)})
			return nil
		}
		s.consider(result, path, entryInfo)
		return nil
	})
	if err != nil {
		return result, err
	}

	logging.LogGuard("scan of %s: %d candidates, %d rejected", s.guard.RelPath(target), len(result.Files), len(result.Rejected))
	return result, nil
}

func (s *Scanner) consider(result *Result, path string, info fs.FileInfo) {
	rel := s.guard.RelPath(path)
	if err := s.guard.CheckEntry(path, info); err != nil {
		result.Rejected = append(result.Rejected, Rejection{RelPath: rel, Err: err})
		return
	}
	if err := s.guard.Admit(path, info.Size()); err != nil {
		result.Rejected = append(result.Rejected, Rejection{RelPath: rel, Err: err})
		return
	}
	result.Files = append(result.Files, Candidate{
		Path:     path,
		RelPath:  rel,
		Language: types.LanguageForPath(path),
		Size:     info.Size(),
	})
}

func (s *Scanner) shouldExclude(rel string) bool {
	return MatchAny(s.exclude, rel)
}

func (s *Scanner) shouldInclude(rel string) bool {
	return len(s.include) == 0 || MatchAny(s.include, rel)
}

// MatchAny reports whether rel matches any of the doublestar patterns
func MatchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}
