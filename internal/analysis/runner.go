// Package analysis runs the two-pass engine and the four analyzers built on
// it: complexity, dependencies, coupling and file metrics.
//
// Pass 1 reads, line-scans and parses each candidate file independently,
// each inside its own deadline. Pass 2 (dependencies and coupling only)
// resolves references and builds one graph, owned by a single goroutine.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codegauge/internal/cache"
	"github.com/standardbeagle/codegauge/internal/config"
	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/lexer"
	"github.com/standardbeagle/codegauge/internal/logging"
	"github.com/standardbeagle/codegauge/internal/parser"
	"github.com/standardbeagle/codegauge/internal/security"
	"github.com/standardbeagle/codegauge/internal/types"
	"github.com/standardbeagle/codegauge/internal/walker"
)

// FileResult is the pass 1 output for one successfully processed file
type FileResult struct {
	RelPath     string
	Language    types.Language
	Size        int64
	Fingerprint string
	Lines       lexer.Counts
	// Unit is nil when the language has a comment convention but no parser
	Unit *types.ParsedUnit
}

// Run is everything pass 1 produced for one target
type Run struct {
	Root      string
	Target    string
	Manifest  config.Manifest
	Files     []FileResult // walk order
	Errors    []cgerrors.NonFatal
	Partial   bool
	StartedAt time.Time
}

// Paths returns the analyzed files in walk order
func (r *Run) Paths() []string {
	out := make([]string, len(r.Files))
	for i, f := range r.Files {
		out[i] = f.RelPath
	}
	return out
}

// Engine owns the configuration and parser registry shared by every analyzer
type Engine struct {
	cfg      *config.Config
	registry *parser.Registry
	cache    *cache.ParseCache
	now      func() time.Time
}

// NewEngine validates cfg and returns an engine. A nil registry means the
// built-in strategies.
func NewEngine(cfg *config.Config, registry *parser.Registry) (*Engine, error) {
	if cfg == nil {
		return nil, cgerrors.NewConfigError("config", "", errors.New("configuration is required"))
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = parser.Default()
	}
	return &Engine{cfg: cfg, registry: registry, now: time.Now}, nil
}

// SetCache shares parse results with other runs. Cached units are keyed by
// content fingerprint, so an edited file is always parsed again.
func (e *Engine) SetCache(c *cache.ParseCache) {
	e.cache = c
}

// Config returns the engine configuration
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// slot holds the outcome for one candidate; slots are indexed by walk
// position so results never depend on scheduling
type slot struct {
	result *FileResult
	err    error
}

// Collect runs pass 1 over target, a file or directory relative to the root.
// Boundary violations are returned as fatal errors before any file is read.
func (e *Engine) Collect(ctx context.Context, target string) (*Run, error) {
	started := e.now()

	guard, err := security.NewGuard(e.cfg.Project.Root, e.cfg.Limits.MaxFileSize, e.cfg.Limits.MaxTotalSize)
	if err != nil {
		return nil, err
	}
	resolved, err := guard.ResolveTarget(target)
	if err != nil {
		return nil, err
	}

	run := &Run{
		Root:      guard.Root(),
		Target:    guard.RelPath(resolved),
		Manifest:  config.DetectManifest(guard.Root()),
		Files:     []FileResult{},
		Errors:    []cgerrors.NonFatal{},
		StartedAt: started,
	}

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Limits.RunTimeout)
	defer cancel()

	scan, err := walker.NewScanner(guard, e.cfg.Include, e.cfg.Exclude).Scan(runCtx, resolved)
	if err != nil && !isDeadline(err) {
		return nil, err
	}
	if scan == nil {
		scan = &walker.Result{}
	}
	for _, rej := range scan.Rejected {
		run.Errors = append(run.Errors, cgerrors.ToNonFatal(rej.RelPath, rej.Err))
	}
	if err != nil {
		// The walk itself ran out of time; whatever it found is still processed
		// as far as the deadline allows
		run.Partial = true
		logging.LogRun("walk stopped early: %v", err)
	}

	slots := e.process(runCtx, guard, scan.Files)

	for i, c := range scan.Files {
		s := slots[i]
		switch {
		case s.result != nil:
			run.Files = append(run.Files, *s.result)
		case s.err != nil:
			if errors.Is(s.err, cgerrors.ErrRunDeadline) {
				run.Partial = true
			}
			run.Errors = append(run.Errors, cgerrors.ToNonFatal(c.RelPath, s.err))
		}
	}

	logging.LogRun("collected %d files, %d errors, partial=%v", len(run.Files), len(run.Errors), run.Partial)
	return run, ctx.Err()
}

// process fills one slot per candidate. With one worker files are handled
// strictly in walk order; with more, an errgroup bounds concurrency.
func (e *Engine) process(runCtx context.Context, guard *security.Guard, files []walker.Candidate) []slot {
	slots := make([]slot, len(files))
	workers := e.cfg.Performance.Workers

	if workers <= 1 {
		for i := range files {
			slots[i] = e.processOne(runCtx, guard, files[i])
		}
		return slots
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range files {
		i := i
		g.Go(func() error {
			slots[i] = e.processOne(runCtx, guard, files[i])
			return nil
		})
	}
	_ = g.Wait()
	return slots
}

// processOne runs read, line scan and parse as one cancellable task. The run
// deadline is checked before the file starts.
func (e *Engine) processOne(runCtx context.Context, guard *security.Guard, c walker.Candidate) slot {
	if runCtx.Err() != nil {
		return slot{err: cgerrors.ErrRunDeadline}
	}

	fileCtx, cancel := context.WithTimeout(runCtx, e.cfg.Limits.FileTimeout)
	defer cancel()

	done := make(chan slot, 1)
	go func() {
		result, err := e.analyzeFile(fileCtx, guard, c)
		done <- slot{result: result, err: err}
	}()

	select {
	case s := <-done:
		if s.err != nil && fileCtx.Err() != nil {
			return slot{err: e.expired(runCtx, c)}
		}
		return s
	case <-fileCtx.Done():
		return slot{err: e.expired(runCtx, c)}
	}
}

// expired tells a per-file timeout apart from the run deadline
func (e *Engine) expired(runCtx context.Context, c walker.Candidate) error {
	if runCtx.Err() != nil {
		return cgerrors.ErrRunDeadline
	}
	logging.Warn("runner", "%s exceeded the %s file timeout", c.RelPath, e.cfg.Limits.FileTimeout)
	return fmt.Errorf("%w after %s", cgerrors.ErrTimeout, e.cfg.Limits.FileTimeout)
}

func (e *Engine) analyzeFile(ctx context.Context, guard *security.Guard, c walker.Candidate) (*FileResult, error) {
	content, err := guard.ReadFile(c.Path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &FileResult{
		RelPath:     c.RelPath,
		Language:    c.Language,
		Size:        int64(len(content)),
		Fingerprint: strconv.FormatUint(xxhash.Sum64(content), 16),
	}
	if syntax, ok := lexer.For(c.Language); ok {
		result.Lines = lexer.CountLines(syntax, content)
	}

	if _, ok := e.registry.For(c.Language); !ok {
		return result, nil
	}
	if unit, ok := e.cache.Get(c.RelPath, c.Language, result.Fingerprint); ok {
		result.Unit = unit
		return result, nil
	}
	unit, err := e.registry.Parse(ctx, &types.SourceFile{
		Path:     c.Path,
		RelPath:  c.RelPath,
		Language: c.Language,
		Content:  content,
		Size:     result.Size,
	})
	if err != nil {
		return nil, err
	}
	result.Unit = unit
	e.cache.Put(c.RelPath, c.Language, result.Fingerprint, unit)
	return result, nil
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
