// Package watch re-runs an analysis when source files under the root change.
// Events are debounced so an editor save or a checkout produces one batch.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/codegauge/internal/logging"
	"github.com/standardbeagle/codegauge/internal/types"
	"github.com/standardbeagle/codegauge/internal/walker"
	"github.com/standardbeagle/codegauge/pkg/pathutil"
)

// BatchFunc receives the root-relative paths changed since the last batch, sorted
type BatchFunc func(ctx context.Context, changed []string)

// Watcher monitors a directory tree for source changes
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	exclude  []string
	debounce time.Duration
}

// New watches every non-excluded directory under root
func New(root string, exclude []string, debounce time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	w := &Watcher{
		watcher:  watcher,
		root:     root,
		exclude:  exclude,
		debounce: debounce,
	}
	if err := w.addWatches(root); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to add watches starting from %s: %w", root, err)
	}
	return w, nil
}

// addWatches adds a watch to dir and every directory below it. Symlinked
// directories are never followed.
func (w *Watcher) addWatches(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.excluded(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			logging.Warn("watch", "failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) rel(path string) (string, bool) {
	rel, ok := pathutil.Within(w.root, path)
	if !ok {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) excluded(path string) bool {
	rel, ok := w.rel(path)
	if !ok {
		return true
	}
	return walker.MatchAny(w.exclude, rel) || walker.MatchAny(w.exclude, rel+"/")
}

// Run blocks until ctx ends, calling fn once per debounced batch of changes.
// fn runs on the watcher goroutine, so events arriving meanwhile are queued
// for the next batch. The watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, fn BatchFunc) error {
	defer w.watcher.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if rel, ok := w.handleEvent(event); ok {
				pending[rel] = struct{}{}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watch", "file watcher error: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			pending = make(map[string]struct{})

			logging.Log("watch", "processing %d changed files", len(batch))
			fn(ctx, batch)
		}
	}
}

// handleEvent returns the root-relative path when the event concerns a
// source file the analyzers would read
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}
	if w.excluded(event.Name) {
		return "", false
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			if err := w.addWatches(event.Name); err != nil {
				logging.Warn("watch", "failed to watch new directory %s: %v", event.Name, err)
			}
			return "", false
		}
	}

	if types.LanguageForPath(event.Name) == types.LangUnknown {
		return "", false
	}
	return w.rel(event.Name)
}
