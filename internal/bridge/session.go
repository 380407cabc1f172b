package bridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/vyrodovalexey/navrouter/internal/navigation"
	"github.com/vyrodovalexey/navrouter/internal/observability"
	"github.com/vyrodovalexey/navrouter/internal/util"
)

// sessionHistory is the History of one browser tab. Pushes are forwarded to
// the browser as pushState frames.
type sessionHistory struct {
	mu       sync.RWMutex
	pathname string
	send     func(v any) error
}

func (h *sessionHistory) Pathname() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.pathname
}

func (h *sessionHistory) PushState(pathname string, state navigation.State) error {
	if err := h.send(PushStateFrame{Type: FramePushState, Pathname: pathname, State: state}); err != nil {
		return err
	}
	h.setPathname(pathname)
	return nil
}

func (h *sessionHistory) setPathname(pathname string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pathname = pathname
}

// Session is a single websocket connection.
type Session struct {
	id      string
	conn    *websocket.Conn
	handler *Handler
	logger  observability.Logger

	ctx    context.Context
	cancel context.CancelFunc

	limiter     *rate.Limiter
	history     *sessionHistory
	coordinator *navigation.Coordinator
	unsubscribe func()

	tableMu sync.RWMutex
	table   *Table

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func newSession(h *Handler, conn *websocket.Conn) *Session {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(observability.ContextWithSessionID(context.Background(), id))

	s := &Session{
		id:      id,
		conn:    conn,
		handler: h,
		logger:  h.logger.WithContext(ctx),
		ctx:     ctx,
		cancel:  cancel,
		limiter: rate.NewLimiter(rate.Limit(h.cfg.RateLimit), h.cfg.Burst),
		done:    make(chan struct{}),
	}
	s.history = &sessionHistory{pathname: "/", send: s.writeJSON}

	opts := []navigation.Option{
		navigation.WithLogger(h.logger),
		navigation.WithCompiler(h.compiler),
	}
	if h.lookups != nil {
		opts = append(opts, navigation.WithLookupCache(h.lookups))
	}
	if h.metrics != nil {
		opts = append(opts, navigation.WithMetrics(h.metrics))
	}
	s.coordinator = navigation.NewCoordinator(s.history, opts...)
	s.unsubscribe = s.coordinator.Subscribe(s.sendRoute)

	return s
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Coordinator returns the session coordinator.
func (s *Session) Coordinator() *navigation.Coordinator {
	return s.coordinator
}

func (s *Session) currentTable() *Table {
	s.tableMu.RLock()
	defer s.tableMu.RUnlock()
	return s.table
}

func (s *Session) sendRoute(route navigation.CurrentRoute) {
	var view any
	if table := s.currentTable(); table != nil {
		view = table.Views.Select(route.Path)
	}
	if err := s.writeJSON(newRouteFrame(route, view)); err != nil {
		s.logger.Debug("failed to send route frame", observability.Error(err))
	}
}

func (s *Session) sendError(err error) {
	if werr := s.writeJSON(ErrorFrame{Type: FrameError, Message: err.Error()}); werr != nil {
		s.logger.Debug("failed to send error frame", observability.Error(werr))
	}
}

func (s *Session) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	select {
	case <-s.done:
		return websocket.ErrCloseSent
	default:
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(s.handler.cfg.WriteTimeout))
	return s.conn.WriteJSON(v)
}

// readLoop reads client frames until the connection fails.
func (s *Session) readLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.handler.cfg.MaxMessageSize)
	s.extendReadDeadline()
	s.conn.SetPongHandler(func(string) error {
		s.extendReadDeadline()
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", observability.Error(err))
			}
			return
		}
		s.extendReadDeadline()

		if !s.limiter.Allow() {
			if s.handler.metrics != nil {
				s.handler.metrics.RecordRateLimitHit()
			}
			s.sendError(util.ErrRateLimited)
			continue
		}

		frame, err := DecodeClientFrame(data)
		if err != nil {
			s.logger.Debug("rejected client frame", observability.Error(err))
			s.sendError(err)
			continue
		}

		if err := s.handleFrame(frame); err != nil {
			s.logger.Debug("frame handling failed",
				observability.String("type", frame.Type),
				observability.Error(err))
			s.sendError(err)
		}
	}
}

func (s *Session) extendReadDeadline() {
	_ = s.conn.SetReadDeadline(time.Now().Add(2 * s.handler.cfg.PingInterval))
}

func (s *Session) handleFrame(frame ClientFrame) error {
	switch frame.Type {
	case FrameInit:
		table := s.handler.source.Table()
		s.tableMu.Lock()
		s.table = table
		s.tableMu.Unlock()

		s.history.setPathname(frame.Pathname)
		return s.coordinator.Start(s.ctx, table.Routes, table.BaseContext)

	case FramePopState:
		s.history.setPathname(frame.Pathname)
		return s.coordinator.PopState(s.ctx, frame.Pathname)

	case FrameNavigate:
		pathname, err := util.PathnameFromHref(frame.Href)
		if err != nil {
			return err
		}
		return navigation.NavLink{To: pathname}.Activate(s.ctx, s.coordinator)
	}
	return nil
}

// pingLoop keeps the connection alive until the session closes.
func (s *Session) pingLoop() {
	ticker := time.NewTicker(s.handler.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.handler.cfg.WriteTimeout))
			s.writeMu.Unlock()
			if err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// reload installs table on a started session. Sessions that have not sent
// init pick the table up on init.
func (s *Session) reload(table *Table) error {
	s.tableMu.Lock()
	s.table = table
	s.tableMu.Unlock()

	err := s.coordinator.SetRoutes(s.ctx, table.Routes)
	if errors.Is(err, navigation.ErrNotStarted) {
		return nil
	}
	return err
}

// Close closes the connection. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		close(s.done)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()

		s.cancel()
		s.unsubscribe()
		_ = s.conn.Close()
		s.handler.remove(s)

		s.logger.Debug("session closed")
	})
}
