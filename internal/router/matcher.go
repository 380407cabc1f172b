package router

import (
	"context"
	"sync"

	"github.com/vyrodovalexey/navrouter/internal/cache"
	"github.com/vyrodovalexey/navrouter/internal/observability"
	"github.com/vyrodovalexey/navrouter/internal/pattern"
)

// fingerprintLength is the number of hex characters kept from the route
// set hash.
const fingerprintLength = 16

func hashFingerprint(s string) string {
	return cache.HashKey(s)[:fingerprintLength]
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithCompiler sets the pattern compiler. Matchers sharing a compiler share
// compiled patterns.
func WithCompiler(compiler *pattern.Compiler) Option {
	return func(m *Matcher) {
		m.compiler = compiler
	}
}

// WithLookupCache sets the lookup cache.
func WithLookupCache(lookups LookupCache) Option {
	return func(m *Matcher) {
		m.lookups = lookups
	}
}

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(m *Matcher) {
		m.logger = logger
	}
}

// Matcher resolves pathnames against a route set and memoizes the results.
// It is safe for concurrent use.
type Matcher struct {
	compiler *pattern.Compiler
	lookups  LookupCache
	logger   observability.Logger
	metrics  *lookupMetrics

	mu          sync.RWMutex
	routes      []Route
	fingerprint string
}

// New creates a matcher for routes. The routes are validated up front so
// that Match never fails.
func New(routes []Route, opts ...Option) (*Matcher, error) {
	m := &Matcher{
		metrics: getLookupMetrics(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.compiler == nil {
		m.compiler = pattern.NewCompiler()
	}
	if m.lookups == nil {
		m.lookups = NewMapLookupCache()
	}
	if m.logger == nil {
		m.logger = observability.NopLogger()
	}

	if err := m.install(routes); err != nil {
		return nil, err
	}
	return m, nil
}

// install validates routes, compiling them into the shared compiler, and
// swaps them in.
func (m *Matcher) install(routes []Route) error {
	if err := ValidateRoutes(routes, m.compiler); err != nil {
		return err
	}

	installed := make([]Route, len(routes))
	copy(installed, routes)

	m.mu.Lock()
	m.routes = installed
	m.fingerprint = Fingerprint(installed)
	m.mu.Unlock()

	return nil
}

// Match resolves pathname and returns the first matching route, or nil when
// none matches. The ctx only reaches the lookup cache backend.
func (m *Matcher) Match(ctx context.Context, pathname string) *MatchResult {
	m.mu.RLock()
	routes := m.routes
	fingerprint := m.fingerprint
	m.mu.RUnlock()

	if cached, ok := m.lookups.Get(ctx, fingerprint, pathname); ok {
		m.metrics.lookupHits.Inc()
		return cached.Clone()
	}
	m.metrics.lookupMisses.Inc()

	result, err := matchRoutes(m.compiler.Compile, pathname, routes)
	if err != nil {
		m.logger.WithContext(ctx).Error("route compilation failed during match",
			observability.String("pathname", pathname),
			observability.Error(err))
		return nil
	}

	if result == nil {
		m.metrics.matches.WithLabelValues("unmatched").Inc()
	} else {
		m.metrics.matches.WithLabelValues("matched").Inc()
	}

	m.lookups.Set(ctx, fingerprint, pathname, result.Clone())
	return result
}

// SetRoutes replaces the route set and invalidates lookups of the previous
// one. On error the current routes are kept.
func (m *Matcher) SetRoutes(ctx context.Context, routes []Route) error {
	m.mu.RLock()
	previous := m.fingerprint
	m.mu.RUnlock()

	if err := m.install(routes); err != nil {
		return err
	}

	m.lookups.Invalidate(ctx, previous)
	m.metrics.invalidations.Inc()

	m.logger.Info("routes installed",
		observability.Int("routes", len(routes)),
		observability.String("fingerprint", m.Fingerprint()))
	return nil
}

// Invalidate drops every cached lookup of the current route set.
func (m *Matcher) Invalidate(ctx context.Context) {
	m.lookups.Invalidate(ctx, m.Fingerprint())
	m.metrics.invalidations.Inc()
}

// Routes returns a copy of the installed route set.
func (m *Matcher) Routes() []Route {
	m.mu.RLock()
	defer m.mu.RUnlock()
	routes := make([]Route, len(m.routes))
	copy(routes, m.routes)
	return routes
}

// Lookup returns the installed route with the given path.
func (m *Matcher) Lookup(path string) (Route, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, route := range m.routes {
		if route.Path == path {
			return route, true
		}
	}
	return Route{}, false
}

// Fingerprint returns the fingerprint of the installed route set.
func (m *Matcher) Fingerprint() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fingerprint
}

// Compiler returns the pattern compiler used by the matcher.
func (m *Matcher) Compiler() *pattern.Compiler {
	return m.compiler
}
