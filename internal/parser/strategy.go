// Package parser turns source files into ParsedUnits. Languages with a
// tree-sitter grammar get an exact strategy; the rest fall back to a
// line-based heuristic strategy whose results are tagged approximate.
package parser

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"

	cgerrors "github.com/standardbeagle/codegauge/internal/errors"
	"github.com/standardbeagle/codegauge/internal/logging"
	"github.com/standardbeagle/codegauge/internal/types"
)

// Strategy parses files of one language
type Strategy interface {
	Name() string
	Language() types.Language
	Fidelity() types.Fidelity
	Parse(ctx context.Context, file *types.SourceFile) (*types.ParsedUnit, error)
}

// Registry maps languages to their strategy
type Registry struct {
	mu         sync.RWMutex
	strategies map[types.Language]Strategy
}

// NewRegistry returns a registry holding every built-in strategy
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[types.Language]Strategy)}
	for _, spec := range treeSitterSpecs() {
		r.Register(newTreeSitterStrategy(spec))
	}
	for _, rules := range heuristicRules() {
		r.Register(newHeuristicStrategy(rules))
	}
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the shared registry
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds or replaces the strategy for its language
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Language()] = s
}

// For returns the strategy for lang
func (r *Registry) For(lang types.Language) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[lang]
	return s, ok
}

// Languages lists the languages with a strategy, sorted by name
func (r *Registry) Languages() []types.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	langs := make([]types.Language, 0, len(r.strategies))
	for lang := range r.strategies {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Parse runs the strategy for the file's language. A panic inside a
// strategy is returned as a ParseError so one bad file cannot stop a run.
func (r *Registry) Parse(ctx context.Context, file *types.SourceFile) (unit *types.ParsedUnit, err error) {
	s, ok := r.For(file.Language)
	if !ok {
		return nil, cgerrors.NewParseError(file.RelPath, 0, 0, "",
			fmt.Errorf("no parser for language %q", file.Language))
	}

	defer func() {
		if rec := recover(); rec != nil {
			logging.LogParse("panic parsing %s: %v\n%s", file.RelPath, rec, debug.Stack())
			unit = nil
			err = cgerrors.NewParseError(file.RelPath, 0, 0, "", fmt.Errorf("parser panic: %v", rec))
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unit, err = s.Parse(ctx, file)
	if err != nil {
		return nil, err
	}
	logging.LogParse("%s: %d functions, %d references (%s)",
		file.RelPath, len(unit.Functions), len(unit.References), s.Name())
	return unit, nil
}
