package router

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/vyrodovalexey/navrouter/internal/cache"
	"github.com/vyrodovalexey/navrouter/internal/observability"
)

// lookupKeyPrefix namespaces lookup entries inside a shared cache.Cache.
const lookupKeyPrefix = "lookup"

// LookupCache memoizes resolved lookups. Entries are namespaced by the
// fingerprint of the route set that produced them. A nil result is a valid
// cached value meaning "no route matches".
type LookupCache interface {
	// Get returns the cached result and whether an entry was present.
	Get(ctx context.Context, fingerprint, pathname string) (*MatchResult, bool)

	// Set stores a result.
	Set(ctx context.Context, fingerprint, pathname string, result *MatchResult)

	// Invalidate drops every entry stored under fingerprint.
	Invalidate(ctx context.Context, fingerprint string)
}

// MapLookupCache is an unbounded in-process LookupCache.
type MapLookupCache struct {
	mu      sync.RWMutex
	entries map[string]map[string]*MatchResult
}

// NewMapLookupCache creates an empty map-backed lookup cache.
func NewMapLookupCache() *MapLookupCache {
	return &MapLookupCache{entries: make(map[string]map[string]*MatchResult)}
}

// Get implements LookupCache.
func (c *MapLookupCache) Get(_ context.Context, fingerprint, pathname string) (*MatchResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[fingerprint][pathname]
	return result, ok
}

// Set implements LookupCache.
func (c *MapLookupCache) Set(_ context.Context, fingerprint, pathname string, result *MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ns, ok := c.entries[fingerprint]
	if !ok {
		ns = make(map[string]*MatchResult)
		c.entries[fingerprint] = ns
	}
	ns[pathname] = result
}

// Invalidate implements LookupCache.
func (c *MapLookupCache) Invalidate(_ context.Context, fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, fingerprint)
}

// Len returns the number of cached lookups across all fingerprints.
func (c *MapLookupCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, ns := range c.entries {
		n += len(ns)
	}
	return n
}

// lookupEntry is the stored form of a lookup. Result is null for a cached
// miss.
type lookupEntry struct {
	Result *MatchResult `json:"result"`
}

// StoreLookupCache adapts a cache.Cache into a LookupCache. Backend errors
// are logged and treated as misses.
type StoreLookupCache struct {
	store  cache.Cache
	ttl    time.Duration
	logger observability.Logger
}

// NewStoreLookupCache wraps store. A zero ttl uses the backend default.
func NewStoreLookupCache(store cache.Cache, ttl time.Duration, logger observability.Logger) *StoreLookupCache {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &StoreLookupCache{store: store, ttl: ttl, logger: logger}
}

func lookupKey(fingerprint, pathname string) string {
	return cache.JoinKey(lookupKeyPrefix, fingerprint, pathname)
}

// Get implements LookupCache.
func (c *StoreLookupCache) Get(ctx context.Context, fingerprint, pathname string) (*MatchResult, bool) {
	data, err := c.store.Get(ctx, lookupKey(fingerprint, pathname))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && !errors.Is(err, cache.ErrCacheDisabled) {
			getLookupMetrics().lookupErrors.Inc()
			c.logger.WithContext(ctx).Warn("lookup cache get failed",
				observability.String("pathname", pathname),
				observability.Error(err))
		}
		return nil, false
	}

	var entry lookupEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		getLookupMetrics().lookupErrors.Inc()
		c.logger.WithContext(ctx).Warn("discarding corrupt lookup cache entry",
			observability.String("pathname", pathname),
			observability.Error(err))
		return nil, false
	}
	return entry.Result, true
}

// Set implements LookupCache.
func (c *StoreLookupCache) Set(ctx context.Context, fingerprint, pathname string, result *MatchResult) {
	data, err := json.Marshal(lookupEntry{Result: result})
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, lookupKey(fingerprint, pathname), data, c.ttl); err != nil {
		getLookupMetrics().lookupErrors.Inc()
		c.logger.WithContext(ctx).Warn("lookup cache set failed",
			observability.String("pathname", pathname),
			observability.Error(err))
	}
}

// Invalidate implements LookupCache.
func (c *StoreLookupCache) Invalidate(ctx context.Context, fingerprint string) {
	removed, err := c.store.DeletePrefix(ctx, lookupKey(fingerprint, ""))
	if err != nil {
		getLookupMetrics().lookupErrors.Inc()
		c.logger.WithContext(ctx).Warn("lookup cache invalidation failed",
			observability.String("fingerprint", fingerprint),
			observability.Error(err))
		return
	}
	c.logger.WithContext(ctx).Debug("lookup cache invalidated",
		observability.String("fingerprint", fingerprint),
		observability.Int("removed", removed))
}
