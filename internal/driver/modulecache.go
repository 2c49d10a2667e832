package driver

import (
	"sync"

	"github.com/dotnet/roslyn-sub221/internal/fixture"
	"github.com/dotnet/roslyn-sub221/internal/project"
)

// minimal per-process cache by fixture path + content hash
type cached struct {
	content project.Digest
	file    *fixture.File
}

// FixtureCache keeps parsed fixtures between runs of a long-lived process.
// Parsed files are shared, so callers must not modify them.
type FixtureCache struct {
	mu     sync.RWMutex
	byPath map[string]cached
	hits   int
}

// NewFixtureCache creates a FixtureCache with the given capacity hint.
func NewFixtureCache(capHint int) *FixtureCache {
	return &FixtureCache{byPath: make(map[string]cached, capHint)}
}

// Get retrieves a parsed fixture by its path and content hash.
func (c *FixtureCache) Get(path string, content project.Digest) (*fixture.File, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.byPath[path]
	if !ok || rec.content != content {
		return nil, false
	}
	c.hits++
	return rec.file, true
}

// Put inserts a parsed fixture.
func (c *FixtureCache) Put(path string, content project.Digest, f *fixture.File) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.byPath[path] = cached{content: content, file: f}
	c.mu.Unlock()
}

// Hits is the number of Get calls answered from the cache.
func (c *FixtureCache) Hits() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits
}
