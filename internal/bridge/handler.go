package bridge

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vyrodovalexey/navrouter/internal/config"
	"github.com/vyrodovalexey/navrouter/internal/observability"
	"github.com/vyrodovalexey/navrouter/internal/pattern"
	"github.com/vyrodovalexey/navrouter/internal/router"
)

// DefaultMaxMessageSize bounds a single client frame.
const DefaultMaxMessageSize = 8 * 1024

// Config configures sessions.
type Config struct {
	// RateLimit is the sustained number of client frames per second.
	RateLimit float64

	// Burst is the number of frames allowed above RateLimit.
	Burst int

	WriteTimeout   time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64

	// CheckOrigin overrides the upgrader origin check. Nil accepts
	// same-origin requests only.
	CheckOrigin func(r *http.Request) bool
}

// ConfigFromSession converts the session section of the server config.
func ConfigFromSession(cfg config.SessionConfig) Config {
	return Config{
		RateLimit:    cfg.RateLimit,
		Burst:        cfg.Burst,
		WriteTimeout: cfg.WriteTimeout.Duration(),
		PingInterval: cfg.PingInterval.Duration(),
	}
}

func (c *Config) applyDefaults() {
	if c.RateLimit <= 0 {
		c.RateLimit = config.DefaultSessionRate
	}
	if c.Burst <= 0 {
		c.Burst = config.DefaultSessionBurst
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = config.DefaultWriteTimeout.Duration()
	}
	if c.PingInterval <= 0 {
		c.PingInterval = config.DefaultPingInterval.Duration()
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMetrics records session and navigation metrics.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(h *Handler) {
		h.metrics = metrics
	}
}

// WithCompiler sets the pattern compiler shared by all sessions.
func WithCompiler(compiler *pattern.Compiler) Option {
	return func(h *Handler) {
		h.compiler = compiler
	}
}

// WithLookupCache shares a lookup cache between sessions. Without it every
// session memoizes lookups on its own.
func WithLookupCache(lookups router.LookupCache) Option {
	return func(h *Handler) {
		h.lookups = lookups
	}
}

// Handler upgrades HTTP requests to navigation sessions.
type Handler struct {
	source   TableSource
	cfg      Config
	upgrader websocket.Upgrader
	logger   observability.Logger
	metrics  *observability.Metrics
	compiler *pattern.Compiler
	lookups  router.LookupCache

	mu       sync.RWMutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// NewHandler creates a handler serving the tables of source.
func NewHandler(source TableSource, cfg Config, opts ...Option) *Handler {
	cfg.applyDefaults()

	h := &Handler{
		source:   source,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = observability.NopLogger()
	}
	if h.compiler == nil {
		h.compiler = pattern.NewCompiler()
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     cfg.CheckOrigin,
	}

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			observability.String("remote_addr", r.RemoteAddr),
			observability.Error(err))
		return
	}

	s := newSession(h, conn)

	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SessionOpened()
	}
	h.logger.Debug("session opened",
		observability.String("session_id", s.id),
		observability.String("remote_addr", r.RemoteAddr))

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		s.readLoop()
	}()
	go func() {
		defer h.wg.Done()
		s.pingLoop()
	}()
}

func (h *Handler) remove(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s.id]
	delete(h.sessions, s.id)
	h.mu.Unlock()

	if ok && h.metrics != nil {
		h.metrics.SessionClosed()
	}
}

// Sessions returns the number of live sessions.
func (h *Handler) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Handler) snapshot() []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Reload installs the current table of the source on every live session.
// It returns the number of sessions that failed to reload.
func (h *Handler) Reload(ctx context.Context) int {
	table := h.source.Table()
	failed := 0
	for _, s := range h.snapshot() {
		if err := s.reload(table); err != nil {
			failed++
			h.logger.WithContext(ctx).Warn("session reload failed",
				observability.String("session_id", s.id),
				observability.Error(err))
		}
	}
	return failed
}

// Close closes every session and waits for their goroutines.
func (h *Handler) Close() {
	for _, s := range h.snapshot() {
		s.Close()
	}
	h.wg.Wait()
}
