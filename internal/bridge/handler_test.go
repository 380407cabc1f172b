package bridge

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/navrouter/internal/observability"
	"github.com/vyrodovalexey/navrouter/internal/router"
)

type mutableTable struct {
	mu    sync.Mutex
	table *Table
}

func (m *mutableTable) Table() *Table {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table
}

func (m *mutableTable) set(t *Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table = t
}

func bridgeRoutes() []router.Route {
	return []router.Route{
		{Path: "/", Exact: true, View: "home"},
		{Path: "/profile", View: "profile"},
		{Path: "/users/:id", View: "user"},
	}
}

type testBridge struct {
	handler *Handler
	server  *httptest.Server
	source  *mutableTable
	metrics *observability.Metrics
}

func startBridge(t *testing.T, cfg Config, baseContext string) *testBridge {
	t.Helper()

	source := &mutableTable{table: NewTable(bridgeRoutes(), baseContext, "not-found")}
	metrics := observability.NewMetrics("bridgetest")
	h := NewHandler(source, cfg, WithMetrics(metrics), WithLogger(observability.NopLogger()))
	srv := httptest.NewServer(h)

	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})

	return &testBridge{handler: h, server: srv, source: source, metrics: metrics}
}

func (b *testBridge) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(b.server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, frame any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(frame))
}

func receive(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]any
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestHandler_InitSendsRoute(t *testing.T) {
	t.Parallel()

	b := startBridge(t, Config{}, "settings")
	conn := b.dial(t)

	send(t, conn, ClientFrame{Type: FrameInit, Pathname: "/settings/users/9"})

	frame := receive(t, conn)
	assert.Equal(t, FrameRoute, frame["type"])
	assert.Equal(t, "/users/:id", frame["path"])
	assert.Equal(t, "/users/9", frame["pathname"])
	assert.Equal(t, "user", frame["view"])
	assert.Equal(t, map[string]any{"id": "9"}, frame["params"])

	assert.Eventually(t, func() bool { return b.handler.Sessions() == 1 }, time.Second, 10*time.Millisecond)
}

func TestHandler_NavigatePushesUnderContext(t *testing.T) {
	t.Parallel()

	b := startBridge(t, Config{}, "settings")
	conn := b.dial(t)

	send(t, conn, ClientFrame{Type: FrameInit, Pathname: "/settings"})
	assert.Equal(t, "/", receive(t, conn)["path"])

	send(t, conn, ClientFrame{Type: FrameNavigate, Href: "/profile"})

	push := receive(t, conn)
	assert.Equal(t, FramePushState, push["type"])
	assert.Equal(t, "/settings/profile", push["pathname"])
	assert.Equal(t, map[string]any{"params": map[string]any{}, "path": "/profile"}, push["state"])

	route := receive(t, conn)
	assert.Equal(t, FrameRoute, route["type"])
	assert.Equal(t, "/profile", route["path"])
	assert.Equal(t, "profile", route["view"])
}

func TestHandler_NavigateAbsoluteHref(t *testing.T) {
	t.Parallel()

	b := startBridge(t, Config{}, "settings")
	conn := b.dial(t)

	send(t, conn, ClientFrame{Type: FrameInit, Pathname: "/settings"})
	receive(t, conn)

	send(t, conn, ClientFrame{Type: FrameNavigate, Href: "https://example.com/settings/users/3?tab=1"})

	push := receive(t, conn)
	assert.Equal(t, "/settings/users/3", push["pathname"])
	assert.Equal(t, "/users/:id", receive(t, conn)["path"])
}

func TestHandler_PopState(t *testing.T) {
	t.Parallel()

	b := startBridge(t, Config{}, "")
	conn := b.dial(t)

	send(t, conn, ClientFrame{Type: FrameInit, Pathname: "/profile"})
	assert.Equal(t, "/profile", receive(t, conn)["path"])

	send(t, conn, ClientFrame{Type: FramePopState, Pathname: "/nowhere"})
	frame := receive(t, conn)
	assert.Equal(t, "__", frame["path"])
	assert.Equal(t, "not-found", frame["view"])
}

func TestHandler_RejectsFrames(t *testing.T) {
	t.Parallel()

	b := startBridge(t, Config{}, "")
	conn := b.dial(t)

	send(t, conn, ClientFrame{Type: FrameNavigate, Href: "/profile"})
	frame := receive(t, conn)
	assert.Equal(t, FrameError, frame["type"])
	assert.Contains(t, frame["message"], "not started")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	frame = receive(t, conn)
	assert.Equal(t, FrameError, frame["type"])
	assert.Contains(t, frame["message"], "malformed frame")
}

func TestHandler_RateLimit(t *testing.T) {
	t.Parallel()

	b := startBridge(t, Config{RateLimit: 0.001, Burst: 1}, "")
	conn := b.dial(t)

	send(t, conn, ClientFrame{Type: FrameInit, Pathname: "/"})
	assert.Equal(t, FrameRoute, receive(t, conn)["type"])

	send(t, conn, ClientFrame{Type: FramePopState, Pathname: "/profile"})
	frame := receive(t, conn)
	assert.Equal(t, FrameError, frame["type"])
	assert.Equal(t, "rate limit exceeded", frame["message"])
}

func TestHandler_Reload(t *testing.T) {
	t.Parallel()

	b := startBridge(t, Config{}, "")
	conn := b.dial(t)

	send(t, conn, ClientFrame{Type: FrameInit, Pathname: "/users/1"})
	assert.Equal(t, "/users/:id", receive(t, conn)["path"])

	b.source.set(NewTable([]router.Route{{Path: "/users", View: "users"}}, "", nil))
	assert.Zero(t, b.handler.Reload(context.Background()))

	frame := receive(t, conn)
	assert.Equal(t, "/users", frame["path"])
	assert.Equal(t, "users", frame["view"])
}

func TestHandler_ReloadBeforeInit(t *testing.T) {
	t.Parallel()

	b := startBridge(t, Config{}, "")
	b.dial(t)

	require.Eventually(t, func() bool { return b.handler.Sessions() == 1 }, time.Second, 10*time.Millisecond)
	assert.Zero(t, b.handler.Reload(context.Background()))
}

func TestHandler_SessionClosed(t *testing.T) {
	t.Parallel()

	b := startBridge(t, Config{}, "")
	conn := b.dial(t)

	require.Eventually(t, func() bool { return b.handler.Sessions() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()

	assert.Eventually(t, func() bool { return b.handler.Sessions() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestConfigFromSession_Defaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	cfg.applyDefaults()

	assert.InDelta(t, 20.0, cfg.RateLimit, 0.0001)
	assert.Equal(t, 40, cfg.Burst)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.PingInterval)
	assert.Equal(t, int64(DefaultMaxMessageSize), cfg.MaxMessageSize)
}
