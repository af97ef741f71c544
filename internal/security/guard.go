// Package security confines every file access of a run to one allowed root.
package security

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/logging"
	"github.com/standardbeagle/codegauge/pkg/pathutil"
)

// Guard validates paths against an allowed root and enforces size limits.
// Violations on the requested root or target are fatal; violations found
// while walking are returned as plain errors for the caller to record.
type Guard struct {
	root         string // resolved, symlink-free
	givenRoot    string // absolute form of the root as passed in
	maxFileSize  int64
	maxTotalSize int64
	validator    *FileValidator

	mu       sync.Mutex
	admitted int64
	full     bool
}

// NewGuard resolves root and returns a guard bound to it
func NewGuard(root string, maxFileSize, maxTotalSize int64) (*Guard, error) {
	if strings.TrimSpace(root) == "" {
		return nil, cgerrors.NewFatalError(cgerrors.ErrorTypeInvalidRoot, root, errors.New("allowed root is empty"))
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, cgerrors.NewFatalError(cgerrors.ErrorTypeInvalidRoot, root, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, cgerrors.NewFatalError(cgerrors.ErrorTypeInvalidRoot, root, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, cgerrors.NewFatalError(cgerrors.ErrorTypeInvalidRoot, root, err)
	}
	if !info.IsDir() {
		return nil, cgerrors.NewFatalError(cgerrors.ErrorTypeInvalidRoot, root, errors.New("allowed root is not a directory"))
	}

	logging.LogGuard("allowed root %s (resolved %s)", abs, resolved)
	return &Guard{
		root:         resolved,
		givenRoot:    abs,
		maxFileSize:  maxFileSize,
		maxTotalSize: maxTotalSize,
		validator:    NewFileValidator(),
	}, nil
}

// Root returns the resolved allowed root
func (g *Guard) Root() string {
	return g.root
}

// ResolveTarget validates the requested file or directory. An empty target means
// the root itself. Traversal outside the root is rejected lexically, before any
// filesystem access; symlinked components are rejected afterwards.
func (g *Guard) ResolveTarget(target string) (string, error) {
	var candidate string
	switch {
	case target == "" || target == ".":
		return g.root, nil
	case filepath.IsAbs(target):
		candidate = filepath.Clean(target)
		if rel, ok := pathutil.Within(g.givenRoot, candidate); ok && g.givenRoot != g.root {
			candidate = filepath.Join(g.root, rel)
		}
	default:
		candidate = filepath.Join(g.root, target)
	}

	rel, ok := pathutil.Within(g.root, candidate)
	if !ok {
		return "", cgerrors.NewFatalError(cgerrors.ErrorTypeBoundary, target, cgerrors.ErrOutsideRoot)
	}

	// Walk each component from the root so an intermediate symlink cannot
	// redirect the target elsewhere
	current := g.root
	if rel != "." {
		for _, part := range strings.Split(rel, string(filepath.Separator)) {
			current = filepath.Join(current, part)
			info, err := os.Lstat(current)
			if err != nil {
				return "", cgerrors.NewFatalError(cgerrors.ErrorTypeFileNotFound, target, err)
			}
			if info.Mode()&fs.ModeSymlink != 0 {
				return "", cgerrors.NewFatalError(cgerrors.ErrorTypeBoundary, target, cgerrors.ErrSymlink)
			}
		}
	}

	return candidate, nil
}

// Contains reports whether path lies inside the allowed root
func (g *Guard) Contains(path string) bool {
	_, ok := pathutil.Within(g.root, filepath.Clean(path))
	return ok
}

// RelPath returns the slash separated path relative to the root
func (g *Guard) RelPath(path string) string {
	rel, ok := pathutil.Within(g.root, filepath.Clean(path))
	if !ok {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// CheckEntry validates a walked entry without following it
func (g *Guard) CheckEntry(path string, info fs.FileInfo) error {
	if !g.Contains(path) {
		return cgerrors.NewFileError("validate", path, cgerrors.ErrOutsideRoot)
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return cgerrors.NewFileError("validate", path, cgerrors.ErrSymlink)
	}
	if g.maxFileSize > 0 && info.Size() > g.maxFileSize {
		return cgerrors.NewFileError("validate", path,
			fmt.Errorf("%w (%d bytes > %d)", cgerrors.ErrFileTooLarge, info.Size(), g.maxFileSize))
	}
	return nil
}

// Admit reserves size bytes against the aggregate cap. Once a file does not
// fit, every later file is refused too, so the admitted set is a walk-order prefix.
func (g *Guard) Admit(path string, size int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.maxTotalSize <= 0 {
		g.admitted += size
		return nil
	}
	if g.full || g.admitted+size > g.maxTotalSize {
		if !g.full {
			logging.LogGuard("aggregate cap %d reached at %s", g.maxTotalSize, path)
		}
		g.full = true
		return cgerrors.NewFileError("validate", path,
			fmt.Errorf("%w (%d bytes)", cgerrors.ErrAggregateLimit, g.maxTotalSize))
	}
	g.admitted += size
	return nil
}

// Admitted returns the number of bytes admitted so far
func (g *Guard) Admitted() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.admitted
}

// ReadFile reads a previously checked file. The file is re-checked with Lstat
// and the read is bounded, so a file swapped or grown after the walk cannot
// bypass the limits.
func (g *Guard) ReadFile(path string) ([]byte, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, cgerrors.NewFileError("read", path, err)
	}
	if err := g.CheckEntry(path, info); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, cgerrors.NewFileError("read", path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	if g.maxFileSize > 0 {
		reader = io.LimitReader(f, g.maxFileSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, cgerrors.NewFileError("read", path, err)
	}
	if g.maxFileSize > 0 && int64(len(data)) > g.maxFileSize {
		return nil, cgerrors.NewFileError("read", path, cgerrors.ErrFileTooLarge)
	}

	if err := g.validator.ValidateContent(data); err != nil {
		return nil, cgerrors.NewFileError("read", path, err)
	}
	return data, nil
}
