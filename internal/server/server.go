package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/navrouter/internal/bridge"
	"github.com/vyrodovalexey/navrouter/internal/cache"
	"github.com/vyrodovalexey/navrouter/internal/config"
	"github.com/vyrodovalexey/navrouter/internal/health"
	"github.com/vyrodovalexey/navrouter/internal/middleware"
	"github.com/vyrodovalexey/navrouter/internal/observability"
	"github.com/vyrodovalexey/navrouter/internal/pattern"
	"github.com/vyrodovalexey/navrouter/internal/router"
)

// tracerName is the OpenTelemetry tracer name for HTTP spans.
const tracerName = "navrouter/server"

// State represents the server state.
type State int32

const (
	// StateStopped indicates the server is stopped.
	StateStopped State = iota
	// StateStarting indicates the server is starting.
	StateStarting
	// StateRunning indicates the server is running.
	StateRunning
	// StateStopping indicates the server is stopping.
	StateStopping
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Option is a functional option for configuring the server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithCache sets the lookup cache backend. Without it lookups are memoized
// in process.
func WithCache(store cache.Cache) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// Server serves the route table.
type Server struct {
	logger  observability.Logger
	metrics *observability.Metrics
	store   cache.Cache
	version string

	compiler *pattern.Compiler
	lookups  router.LookupCache
	matcher  *router.Matcher
	bridge   *bridge.Handler
	checker  *health.Checker
	engine   *gin.Engine

	mu    sync.RWMutex
	cfg   *config.Config
	table *bridge.Table

	state      atomic.Int32
	httpServer *http.Server
	addr       string
	startTime  time.Time
	serveDone  chan struct{}
}

// New creates a server for a validated configuration.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	cfg.ApplyDefaults()

	s := &Server{
		compiler: pattern.NewCompiler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = observability.NopLogger()
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetrics("")
	}

	if s.store != nil {
		s.lookups = router.NewStoreLookupCache(s.store, cfg.Cache.TTL.Duration(), s.logger)
	} else {
		s.lookups = router.NewMapLookupCache()
	}

	routes := router.FromConfig(cfg.Routes)

	var err error
	s.matcher, err = router.New(routes,
		router.WithCompiler(s.compiler),
		router.WithLookupCache(s.lookups),
		router.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}

	s.cfg = cfg
	s.table = bridge.NewTable(routes, cfg.Context, viewOrNil(cfg.NotFoundView))

	s.bridge = bridge.NewHandler(s, bridge.ConfigFromSession(cfg.Server.Session),
		bridge.WithLogger(s.logger),
		bridge.WithMetrics(s.metrics),
		bridge.WithCompiler(s.compiler),
		bridge.WithLookupCache(s.lookups),
	)

	s.checker = health.NewChecker(version(s.version))
	s.registerChecks()

	s.state.Store(int32(StateStopped))
	s.setupEngine()

	return s, nil
}

func viewOrNil(name string) any {
	if name == "" {
		return nil
	}
	return name
}

func version(v string) string {
	if v == "" {
		return "dev"
	}
	return v
}

func (s *Server) registerChecks() {
	s.checker.RegisterCheck("routes", func(context.Context) health.Check {
		if len(s.matcher.Routes()) == 0 {
			return health.Check{Status: health.StatusDegraded, Message: "no routes registered"}
		}
		return health.Check{Status: health.StatusHealthy}
	})

	if pinger, ok := s.store.(cache.Pinger); ok {
		// Lookups degrade to uncached matching, so the cache is not critical.
		s.checker.RegisterCheck("cache", health.ErrorCheck(pinger.Ping, false))
	}
}

func (s *Server) setupEngine() {
	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()

	s.engine.Use(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Tracing(tracerName),
		middleware.Logging(s.logger),
		middleware.Metrics(s.metrics),
	)

	api := s.engine.Group("/api")
	api.GET("/match", s.handleMatch)
	api.GET("/routes", s.handleRoutes)
	api.GET("/href", s.handleHref)

	s.engine.GET("/healthz", s.checker.HealthHandler)
	s.engine.GET("/readyz", s.checker.ReadinessHandler)
	s.engine.GET(s.Config().Server.MetricsPath, gin.WrapH(s.metrics.Handler()))
	s.engine.GET("/ws", gin.WrapH(s.bridge))
}

// Engine returns the gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Matcher returns the route matcher.
func (s *Server) Matcher() *router.Matcher {
	return s.matcher
}

// Bridge returns the websocket handler.
func (s *Server) Bridge() *bridge.Handler {
	return s.bridge
}

// Config returns the current configuration.
func (s *Server) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Table implements bridge.TableSource.
func (s *Server) Table() *bridge.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Reload validates cfg and installs its routes, base context and views.
// Live sessions are re-registered. Listener settings are not reloaded.
func (s *Server) Reload(cfg *config.Config) error {
	ctx := context.Background()

	cfg.ApplyDefaults()
	if err := config.Validate(cfg); err != nil {
		s.metrics.RecordReload(false)
		return fmt.Errorf("invalid configuration: %w", err)
	}

	routes := router.FromConfig(cfg.Routes)
	if err := s.matcher.SetRoutes(ctx, routes); err != nil {
		s.metrics.RecordReload(false)
		return err
	}

	s.mu.Lock()
	s.cfg = cfg
	s.table = bridge.NewTable(routes, cfg.Context, viewOrNil(cfg.NotFoundView))
	s.mu.Unlock()

	failed := s.bridge.Reload(ctx)
	s.metrics.RecordReload(true)

	s.logger.Info("routes reloaded",
		observability.Int("routes", len(routes)),
		observability.Int("sessions", s.bridge.Sessions()),
		observability.Int("failed_sessions", failed))

	return nil
}

// ValidateConfig checks cfg and its route table with the server's pattern
// compiler, so a following Reload reuses the compiled patterns.
func (s *Server) ValidateConfig(cfg *config.Config) error {
	return router.ValidateConfig(cfg, s.compiler)
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return fmt.Errorf("server is not in stopped state")
	}

	serverCfg := s.Config().Server

	s.httpServer = &http.Server{
		Handler:           s.engine,
		ReadTimeout:       serverCfg.ReadTimeout.Duration(),
		ReadHeaderTimeout: serverCfg.ReadTimeout.Duration(),
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", serverCfg.Address)
	if err != nil {
		s.state.Store(int32(StateStopped))
		return fmt.Errorf("failed to listen on %s: %w", serverCfg.Address, err)
	}

	s.addr = ln.Addr().String()
	s.startTime = time.Now()
	s.serveDone = make(chan struct{})
	s.state.Store(int32(StateRunning))

	s.logger.Info("server started",
		observability.String("address", s.addr),
		observability.Int("routes", len(s.matcher.Routes())))

	go s.serve(ln)

	return nil
}

func (s *Server) serve(ln net.Listener) {
	defer close(s.serveDone)

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("server error", observability.Error(err))
	}
}

// Stop closes every session and shuts the listener down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return fmt.Errorf("server is not running")
	}
	defer s.state.Store(int32(StateStopped))

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Config().Server.ShutdownTimeout.Duration())
		defer cancel()
	}

	s.logger.Info("stopping server")

	s.bridge.Close()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if closeErr := s.httpServer.Close(); closeErr != nil {
			return fmt.Errorf("failed to close server: %w", closeErr)
		}
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}
	<-s.serveDone

	s.logger.Info("server stopped")
	return nil
}

// State returns the current server state.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Addr returns the listen address once started.
func (s *Server) Addr() string {
	return s.addr
}

// Uptime returns the server uptime.
func (s *Server) Uptime() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}
