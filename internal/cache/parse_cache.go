// Package cache keeps parse results across runs of a long-lived process
// (watch mode, the MCP server) so unchanged files are not parsed again.
package cache

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/codegauge/internal/types"
)

// Cache configuration constants
const (
	DefaultMaxEntries = 4096
	DefaultTTL        = 2 * time.Hour
)

// cachedUnit is one stored parse result
type cachedUnit struct {
	unit       *types.ParsedUnit
	cachedAt   int64 // unix nanos
	lastAccess int64 // unix nanos, updated atomically
}

// ParseCache maps (path, language, content fingerprint) to a parsed unit.
// Units are shared between callers and must be treated as read-only.
type ParseCache struct {
	entries sync.Map // map[string]*cachedUnit

	// Configuration (read-only after creation)
	maxEntries int
	ttlNanos   int64
	now        func() time.Time

	// Atomic counters
	count     int64
	hits      int64
	misses    int64
	evictions int64
}

// Config defines configuration options
type Config struct {
	MaxEntries int
	TTL        time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{MaxEntries: DefaultMaxEntries, TTL: DefaultTTL}
}

// New creates a cache. Zero fields in config take their defaults.
func New(config Config) *ParseCache {
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultMaxEntries
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	return &ParseCache{
		maxEntries: config.MaxEntries,
		ttlNanos:   config.TTL.Nanoseconds(),
		now:        time.Now,
	}
}

// key includes the path because parse results carry it
func key(relPath string, lang types.Language, fingerprint string) string {
	var b strings.Builder
	b.Grow(len(lang) + len(fingerprint) + len(relPath) + 2)
	b.WriteString(string(lang))
	b.WriteByte(':')
	b.WriteString(fingerprint)
	b.WriteByte(':')
	b.WriteString(relPath)
	return b.String()
}

// Get returns the unit stored for this exact content, if still fresh
func (pc *ParseCache) Get(relPath string, lang types.Language, fingerprint string) (*types.ParsedUnit, bool) {
	if pc == nil {
		return nil, false
	}
	now := pc.now().UnixNano()
	k := key(relPath, lang, fingerprint)

	if val, ok := pc.entries.Load(k); ok {
		cached := val.(*cachedUnit)
		if now-cached.cachedAt <= pc.ttlNanos {
			atomic.StoreInt64(&cached.lastAccess, now)
			atomic.AddInt64(&pc.hits, 1)
			return cached.unit, true
		}
		// Expired - delete lazily
		if pc.entries.CompareAndDelete(k, val) {
			atomic.AddInt64(&pc.count, -1)
		}
	}

	atomic.AddInt64(&pc.misses, 1)
	return nil, false
}

// Put stores unit, evicting the least recently used entry when full
func (pc *ParseCache) Put(relPath string, lang types.Language, fingerprint string, unit *types.ParsedUnit) {
	if pc == nil || unit == nil {
		return
	}
	now := pc.now().UnixNano()
	cached := &cachedUnit{unit: unit, cachedAt: now, lastAccess: now}

	if _, loaded := pc.entries.LoadOrStore(key(relPath, lang, fingerprint), cached); loaded {
		return
	}
	if atomic.AddInt64(&pc.count, 1) > int64(pc.maxEntries) {
		pc.evictLeastRecent()
	}
}

// evictLeastRecent removes the entry with the oldest access time
func (pc *ParseCache) evictLeastRecent() {
	var oldestKey any
	var oldestVal any
	oldest := int64(1<<63 - 1)

	pc.entries.Range(func(k, v any) bool {
		if at := atomic.LoadInt64(&v.(*cachedUnit).lastAccess); at < oldest {
			oldest = at
			oldestKey = k
			oldestVal = v
		}
		return true
	})

	if oldestKey != nil && pc.entries.CompareAndDelete(oldestKey, oldestVal) {
		atomic.AddInt64(&pc.count, -1)
		atomic.AddInt64(&pc.evictions, 1)
	}
}

// Clear drops every entry; counters are kept
func (pc *ParseCache) Clear() {
	pc.entries.Range(func(k, _ any) bool {
		if _, ok := pc.entries.LoadAndDelete(k); ok {
			atomic.AddInt64(&pc.count, -1)
		}
		return true
	})
}

// Stats is a snapshot of cache counters
type Stats struct {
	Entries   int64   `json:"entries"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// GetStats returns the current counters
func (pc *ParseCache) GetStats() Stats {
	hits := atomic.LoadInt64(&pc.hits)
	misses := atomic.LoadInt64(&pc.misses)
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Entries:   atomic.LoadInt64(&pc.count),
		Hits:      hits,
		Misses:    misses,
		Evictions: atomic.LoadInt64(&pc.evictions),
		HitRate:   rate,
	}
}
