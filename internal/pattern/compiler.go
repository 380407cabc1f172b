package pattern

import (
	"sync"
)

type cacheKey struct {
	path string
	opts Options
}

// Compiler memoizes compiled patterns per (path, Options). It is safe for
// concurrent use. Failed compilations are not cached.
type Compiler struct {
	mu      sync.RWMutex
	cache   map[cacheKey]*CompiledPattern
	metrics *compilerMetrics
}

// NewCompiler creates an empty compiler cache.
func NewCompiler() *Compiler {
	return &Compiler{
		cache:   make(map[cacheKey]*CompiledPattern),
		metrics: getCompilerMetrics(),
	}
}

// Compile returns the compiled pattern for path and opts, compiling it on
// first use. Repeated calls return the same pointer.
func (c *Compiler) Compile(path string, opts Options) (*CompiledPattern, error) {
	key := cacheKey{path: path, opts: opts}

	c.mu.RLock()
	compiled, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		c.metrics.cacheHits.Inc()
		return compiled, nil
	}

	c.metrics.cacheMisses.Inc()

	compiled, err := Compile(path, opts)
	if err != nil {
		c.metrics.compileErrors.Inc()
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have won the race.
	if existing, ok := c.cache[key]; ok {
		return existing, nil
	}
	c.cache[key] = compiled
	c.metrics.cacheSize.Inc()

	return compiled, nil
}

// MustCompile is like Compile but panics on error.
func (c *Compiler) MustCompile(path string, opts Options) *CompiledPattern {
	compiled, err := c.Compile(path, opts)
	if err != nil {
		panic(err)
	}
	return compiled
}

// Len returns the number of cached patterns.
func (c *Compiler) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Reset drops every cached pattern.
func (c *Compiler) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.cacheSize.Sub(float64(len(c.cache)))
	c.cache = make(map[cacheKey]*CompiledPattern)
}
