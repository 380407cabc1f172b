package navigation

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/navrouter/internal/observability"
	"github.com/vyrodovalexey/navrouter/internal/pattern"
	"github.com/vyrodovalexey/navrouter/internal/router"
)

// NotFoundPath is the route path reported when no route matches.
const NotFoundPath = router.NotFoundPath

// tracerName is the OpenTelemetry tracer name for navigation signals.
const tracerName = "navrouter/navigation"

// Signal names used for metrics and spans.
const (
	SignalStart    = "start"
	SignalPopState = "popstate"
	SignalNavigate = "navigate"
)

// ErrNotStarted is returned by signals received before Start.
var ErrNotStarted = errors.New("navigation not started")

// CoordinatorState is the state of a Coordinator.
type CoordinatorState int

const (
	// StateNoRoute means Start has not completed.
	StateNoRoute CoordinatorState = iota
	// StateResolved means routes are installed and the current route is
	// resolved.
	StateResolved
)

// String returns the state name.
func (s CoordinatorState) String() string {
	switch s {
	case StateNoRoute:
		return "no-route"
	case StateResolved:
		return "resolved"
	default:
		return fmt.Sprintf("CoordinatorState(%d)", int(s))
	}
}

// CurrentRoute is the route the application is showing.
type CurrentRoute struct {
	// Path is the matching route pattern, or NotFoundPath.
	Path string `json:"path"`

	// Params holds the route parameters.
	Params map[string]string `json:"params"`

	// Pathname is the internal pathname the route was resolved from.
	Pathname string `json:"pathname"`
}

func (r CurrentRoute) equal(other CurrentRoute) bool {
	return r.Path == other.Path && r.Pathname == other.Pathname && maps.Equal(r.Params, other.Params)
}

func (r CurrentRoute) clone() CurrentRoute {
	r.Params = maps.Clone(r.Params)
	if r.Params == nil {
		r.Params = map[string]string{}
	}
	return r
}

func notFoundRoute(pathname string) CurrentRoute {
	return CurrentRoute{Path: NotFoundPath, Params: map[string]string{}, Pathname: pathname}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithCompiler sets the pattern compiler handed to the route matcher.
func WithCompiler(compiler *pattern.Compiler) Option {
	return func(c *Coordinator) {
		c.compiler = compiler
	}
}

// WithLookupCache sets the lookup cache handed to the route matcher.
func WithLookupCache(lookups router.LookupCache) Option {
	return func(c *Coordinator) {
		c.lookups = lookups
	}
}

// WithMetrics records navigation signals.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = metrics
	}
}

type subscriber struct {
	id string
	fn func(CurrentRoute)
}

// Coordinator tracks the current route of one history. It is safe for
// concurrent use. Subscribers are called outside the state lock, one route
// at a time, in the order the changes were made. A signal raised while
// another goroutine is delivering returns once its route is queued, and
// that goroutine delivers it.
type Coordinator struct {
	history  History
	logger   observability.Logger
	compiler *pattern.Compiler
	lookups  router.LookupCache
	metrics  *observability.Metrics

	mu          sync.RWMutex
	state       CoordinatorState
	matcher     *router.Matcher
	baseContext string
	current     CurrentRoute

	subMu       sync.RWMutex
	subscribers []subscriber

	// queueMu is taken while holding mu so that pending follows the order
	// of state changes.
	queueMu     sync.Mutex
	pending     []CurrentRoute
	dispatching bool
}

// NewCoordinator creates a coordinator bound to history.
func NewCoordinator(history History, opts ...Option) *Coordinator {
	c := &Coordinator{
		history: history,
		state:   StateNoRoute,
		current: notFoundRoute("/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = observability.NopLogger()
	}
	if c.compiler == nil {
		c.compiler = pattern.NewCompiler()
	}
	return c
}

func (c *Coordinator) startSpan(ctx context.Context, signal, pathname string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "navigation."+signal,
		trace.WithAttributes(
			attribute.String("navigation.signal", signal),
			attribute.String("navigation.pathname", pathname),
		),
	)
}

// Start installs routes under baseContext and resolves the pathname the
// history is at. Calling Start again re-registers the routes and drops
// lookups cached for the previous set.
func (c *Coordinator) Start(ctx context.Context, routes []router.Route, baseContext string) error {
	external := c.history.Pathname()
	ctx, span := c.startSpan(ctx, SignalStart, external)
	defer span.End()

	base := NormalizeContext(baseContext)

	c.mu.Lock()
	if err := c.installLocked(ctx, routes); err != nil {
		c.mu.Unlock()
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return err
	}
	c.baseContext = base
	c.state = StateResolved
	next := c.resolveLocked(ctx, StripContext(external, base))
	c.current = next
	c.enqueueLocked(next)
	c.mu.Unlock()

	c.logger.WithContext(ctx).Info("navigation started",
		observability.Int("routes", len(routes)),
		observability.String("context", base),
		observability.String("route", next.Path))

	c.record(SignalStart, next)
	span.SetAttributes(attribute.String("navigation.route", next.Path))
	c.dispatch()
	return nil
}

func (c *Coordinator) installLocked(ctx context.Context, routes []router.Route) error {
	if c.matcher != nil {
		return c.matcher.SetRoutes(ctx, routes)
	}

	opts := []router.Option{
		router.WithCompiler(c.compiler),
		router.WithLogger(c.logger),
	}
	if c.lookups != nil {
		opts = append(opts, router.WithLookupCache(c.lookups))
	}

	matcher, err := router.New(routes, opts...)
	if err != nil {
		return err
	}
	c.matcher = matcher
	return nil
}

func (c *Coordinator) resolveLocked(ctx context.Context, pathname string) CurrentRoute {
	result := c.matcher.Match(ctx, pathname)
	if result == nil {
		return notFoundRoute(pathname)
	}
	return CurrentRoute{Path: result.Path, Params: result.Params, Pathname: pathname}
}

// PopState handles a back/forward move to the external pathname.
func (c *Coordinator) PopState(ctx context.Context, pathname string) error {
	ctx, span := c.startSpan(ctx, SignalPopState, pathname)
	defer span.End()

	c.mu.Lock()
	if c.state != StateResolved {
		c.mu.Unlock()
		return ErrNotStarted
	}
	previous := c.current
	next := c.resolveLocked(ctx, StripContext(pathname, c.baseContext))
	c.current = next
	changed := !next.equal(previous)
	if changed {
		c.enqueueLocked(next)
	}
	c.mu.Unlock()

	c.logger.WithContext(ctx).Debug("popstate",
		observability.String("pathname", pathname),
		observability.String("route", next.Path))

	c.record(SignalPopState, next)
	span.SetAttributes(attribute.String("navigation.route", next.Path))
	if changed {
		c.dispatch()
	}
	return nil
}

// Navigate moves to the internal pathname. The external pathname is pushed
// onto the history unless the history is already there.
func (c *Coordinator) Navigate(ctx context.Context, pathname string) error {
	ctx, span := c.startSpan(ctx, SignalNavigate, pathname)
	defer span.End()

	c.mu.Lock()
	if c.state != StateResolved {
		c.mu.Unlock()
		return ErrNotStarted
	}

	previous := c.current
	next := c.resolveLocked(ctx, pathname)
	external := JoinContext(c.baseContext, pathname)

	if external != c.history.Pathname() {
		state := State{Params: next.clone().Params, Path: next.Path}
		if err := c.history.PushState(external, state); err != nil {
			c.mu.Unlock()
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
			return fmt.Errorf("push state %q: %w", external, err)
		}
	}
	c.current = next
	changed := !next.equal(previous)
	if changed {
		c.enqueueLocked(next)
	}
	c.mu.Unlock()

	c.logger.WithContext(ctx).Debug("navigate",
		observability.String("pathname", external),
		observability.String("route", next.Path))

	c.record(SignalNavigate, next)
	span.SetAttributes(attribute.String("navigation.route", next.Path))
	if changed {
		c.dispatch()
	}
	return nil
}

func (c *Coordinator) record(signal string, route CurrentRoute) {
	if c.metrics == nil {
		return
	}
	path := route.Path
	if path == NotFoundPath {
		path = ""
	}
	c.metrics.RecordNavigation(signal, path)
}

// SetRoutes re-registers routes without moving the history and resolves
// the current pathname against them.
func (c *Coordinator) SetRoutes(ctx context.Context, routes []router.Route) error {
	c.mu.Lock()
	if c.state != StateResolved {
		c.mu.Unlock()
		return ErrNotStarted
	}
	if err := c.installLocked(ctx, routes); err != nil {
		c.mu.Unlock()
		return err
	}
	previous := c.current
	next := c.resolveLocked(ctx, previous.Pathname)
	c.current = next
	changed := !next.equal(previous)
	if changed {
		c.enqueueLocked(next)
	}
	c.mu.Unlock()

	if changed {
		c.dispatch()
	}
	return nil
}

// Current returns the current route. Before Start it is the not-found
// route.
func (c *Coordinator) Current() CurrentRoute {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.clone()
}

// State returns the coordinator state.
func (c *Coordinator) State() CoordinatorState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// BaseContext returns the normalized base context.
func (c *Coordinator) BaseContext() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseContext
}

// Routes returns the installed routes, or nil before Start.
func (c *Coordinator) Routes() []router.Route {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.matcher == nil {
		return nil
	}
	return c.matcher.Routes()
}

// Subscribe registers fn to be called with the new current route after
// every change. The returned function removes the subscription.
func (c *Coordinator) Subscribe(fn func(CurrentRoute)) (unsubscribe func()) {
	id := uuid.NewString()

	c.subMu.Lock()
	c.subscribers = append(c.subscribers, subscriber{id: id, fn: fn})
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			for i, s := range c.subscribers {
				if s.id == id {
					c.subscribers = append(c.subscribers[:i:i], c.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// enqueueLocked queues route for delivery. The caller holds mu.
func (c *Coordinator) enqueueLocked(route CurrentRoute) {
	c.queueMu.Lock()
	c.pending = append(c.pending, route.clone())
	c.queueMu.Unlock()
}

// dispatch delivers queued routes unless another goroutine already is.
func (c *Coordinator) dispatch() {
	c.queueMu.Lock()
	if c.dispatching {
		c.queueMu.Unlock()
		return
	}
	c.dispatching = true

	for len(c.pending) > 0 {
		route := c.pending[0]
		c.pending = c.pending[1:]
		c.queueMu.Unlock()

		c.notify(route)

		c.queueMu.Lock()
	}

	c.dispatching = false
	c.queueMu.Unlock()
}

func (c *Coordinator) notify(route CurrentRoute) {
	c.subMu.RLock()
	subs := make([]subscriber, len(c.subscribers))
	copy(subs, c.subscribers)
	c.subMu.RUnlock()

	for _, s := range subs {
		s.fn(route.clone())
	}
}

var _ Navigator = (*Coordinator)(nil)
