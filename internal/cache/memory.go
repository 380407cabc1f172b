package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/navrouter/internal/observability"
)

const (
	backendMemory = "memory"
	backendRedis  = "redis"

	// cacheTracerName is the OpenTelemetry tracer name for cache operations.
	cacheTracerName = "navrouter/cache"
)

// MemoryCache is an in-process LRU cache. A zero maxEntries means unbounded.
type MemoryCache struct {
	logger     observability.Logger
	maxEntries int
	defaultTTL time.Duration

	mu       sync.Mutex
	items    map[string]*list.Element
	eviction *list.List

	hits   int64
	misses int64

	stopCh    chan struct{}
	closeOnce sync.Once
}

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemory creates an in-memory LRU cache. When defaultTTL is positive a
// background loop purges expired entries every minute until Close.
func NewMemory(maxEntries int, defaultTTL time.Duration, logger observability.Logger) *MemoryCache {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if maxEntries < 0 {
		maxEntries = 0
	}

	c := &MemoryCache{
		logger:     logger,
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		items:      make(map[string]*list.Element),
		eviction:   list.New(),
		stopCh:     make(chan struct{}),
	}

	if defaultTTL > 0 {
		go c.cleanupLoop()
	}

	logger.Info("memory cache initialized",
		observability.Int("maxEntries", maxEntries),
		observability.Duration("defaultTTL", defaultTTL))

	return c
}

func startSpan(ctx context.Context, op, backend, key string, kind trace.SpanKind) (context.Context, trace.Span) {
	return otel.Tracer(cacheTracerName).Start(ctx, "cache."+op,
		trace.WithSpanKind(kind),
		trace.WithAttributes(
			attribute.String("cache.backend", backend),
			attribute.String("cache.key", key),
		),
	)
}

func observeDuration(backend, op string, start time.Time) {
	GetMetrics().operationDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	_, span := startSpan(ctx, "Get", backendMemory, key, trace.SpanKindInternal)
	defer span.End()
	defer observeDuration(backendMemory, "get", time.Now())

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if exists {
		entry := elem.Value.(*memoryEntry)
		if !entry.expired(time.Now()) {
			c.eviction.MoveToFront(elem)
			atomic.AddInt64(&c.hits, 1)
			GetMetrics().hitsTotal.WithLabelValues(backendMemory).Inc()
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return entry.value, nil
		}
		c.removeElement(elem)
	}

	atomic.AddInt64(&c.misses, 1)
	GetMetrics().missesTotal.WithLabelValues(backendMemory).Inc()
	span.SetAttributes(attribute.Bool("cache.hit", false))
	return nil, ErrCacheMiss
}

// Set stores a value in the cache.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, span := startSpan(ctx, "Set", backendMemory, key, trace.SpanKindInternal)
	defer span.End()
	defer observeDuration(backendMemory, "set", time.Now())

	if ttl == 0 {
		ttl = c.defaultTTL
	}

	entry := &memoryEntry{key: key, value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.eviction.MoveToFront(elem)
		elem.Value = entry
		return nil
	}

	c.items[key] = c.eviction.PushFront(entry)

	for c.maxEntries > 0 && c.eviction.Len() > c.maxEntries {
		c.evictOldest()
	}

	GetMetrics().sizeGauge.WithLabelValues(backendMemory).Set(float64(c.eviction.Len()))
	return nil
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	_, span := startSpan(ctx, "Delete", backendMemory, key, trace.SpanKindInternal)
	defer span.End()
	defer observeDuration(backendMemory, "delete", time.Now())

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix.
func (c *MemoryCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	_, span := startSpan(ctx, "DeletePrefix", backendMemory, prefix, trace.SpanKindInternal)
	defer span.End()
	defer observeDuration(backendMemory, "delete_prefix", time.Now())

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, elem := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.removeElement(elem)
			removed++
		}
	}

	span.SetAttributes(attribute.Int("cache.removed", removed))
	GetMetrics().sizeGauge.WithLabelValues(backendMemory).Set(float64(c.eviction.Len()))
	return removed, nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() Stats {
	return Stats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
		Size:   int64(c.Len()),
	}
}

// Close stops the cleanup loop and drops every entry.
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopCh)

		c.mu.Lock()
		c.items = make(map[string]*list.Element)
		c.eviction.Init()
		c.mu.Unlock()

		c.logger.Info("memory cache closed")
	})
	return nil
}

// evictOldest must be called with the lock held.
func (c *MemoryCache) evictOldest() {
	if elem := c.eviction.Back(); elem != nil {
		c.removeElement(elem)
		GetMetrics().evictionsTotal.WithLabelValues(backendMemory).Inc()
	}
}

// removeElement must be called with the lock held.
func (c *MemoryCache) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	delete(c.items, elem.Value.(*memoryEntry).key)
}

func (c *MemoryCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCh:
			return
		}
	}
}

func (c *MemoryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for elem := c.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*memoryEntry).expired(now) {
			c.removeElement(elem)
			removed++
		}
		elem = prev
	}

	if removed > 0 {
		c.logger.Debug("cache cleanup completed",
			observability.Int("removed", removed))
	}
}
