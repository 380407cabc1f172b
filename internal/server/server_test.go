package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/navrouter/internal/bridge"
	"github.com/vyrodovalexey/navrouter/internal/cache"
	"github.com/vyrodovalexey/navrouter/internal/config"
	"github.com/vyrodovalexey/navrouter/internal/health"
	"github.com/vyrodovalexey/navrouter/internal/observability"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Context = "/settings"
	cfg.NotFoundView = "not-found"
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Routes = []config.RouteConfig{
		{Path: "/", Exact: true, View: "home"},
		{Path: "/profile", View: "profile"},
		{Path: "/users/:id", Exact: true, View: "user"},
	}
	return cfg
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()

	opts = append([]Option{
		WithLogger(observability.NopLogger()),
		WithMetrics(observability.NewMetrics("servertest")),
		WithVersion("test"),
	}, opts...)

	s, err := New(testConfig(), opts...)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func TestNew_RejectsInvalidRoutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		routes []config.RouteConfig
	}{
		{name: "duplicate", routes: []config.RouteConfig{{Path: "/a"}, {Path: "/a"}}},
		{name: "reserved", routes: []config.RouteConfig{{Path: "__"}}},
		{name: "malformed", routes: []config.RouteConfig{{Path: "/users/:id("}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			cfg.Routes = tt.routes
			_, err := New(cfg, WithMetrics(observability.NewMetrics("servertest")))
			assert.Error(t, err)
		})
	}

	_, err := New(nil)
	assert.Error(t, err)
}

func TestHandleMatch(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	tests := []struct {
		name       string
		pathname   string
		wantStatus int
		wantPath   string
		wantView   string
		wantParams map[string]string
	}{
		{
			name:       "base context root",
			pathname:   "/settings",
			wantStatus: http.StatusOK,
			wantPath:   "/",
			wantView:   "home",
			wantParams: map[string]string{},
		},
		{
			name:       "prefix route",
			pathname:   "/settings/profile/edit",
			wantStatus: http.StatusOK,
			wantPath:   "/profile",
			wantView:   "profile",
			wantParams: map[string]string{},
		},
		{
			name:       "params",
			pathname:   "/settings/users/42",
			wantStatus: http.StatusOK,
			wantPath:   "/users/:id",
			wantView:   "user",
			wantParams: map[string]string{"id": "42"},
		},
		{
			name:       "exact route rejects longer pathname",
			pathname:   "/settings/users/42/posts",
			wantStatus: http.StatusNotFound,
			wantPath:   "__",
			wantView:   "not-found",
			wantParams: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := get(t, s, "/api/match?pathname="+url.QueryEscape(tt.pathname))
			require.Equal(t, tt.wantStatus, w.Code)

			var resp MatchResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantPath, resp.Path)
			assert.Equal(t, tt.wantView, resp.View)
			assert.Equal(t, tt.wantParams, resp.Params)
			assert.Equal(t, tt.pathname, resp.Pathname)
		})
	}
}

func TestHandleMatch_InvalidPathname(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	for _, target := range []string{
		"/api/match",
		"/api/match?pathname=relative",
		"/api/match?pathname=" + url.QueryEscape("/a?b=c"),
	} {
		w := get(t, s, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Error)
	}
}

func TestHandleRoutes(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	w := get(t, s, "/api/routes")
	require.Equal(t, http.StatusOK, w.Code)

	var resp RoutesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/settings", resp.Context)
	assert.Equal(t, s.Matcher().Fingerprint(), resp.Fingerprint)
	require.Len(t, resp.Routes, 3)

	assert.Equal(t, "/", resp.Routes[0].Path)
	assert.True(t, resp.Routes[0].Exact)
	assert.Empty(t, resp.Routes[0].Keys)

	user := resp.Routes[2]
	assert.Equal(t, "user", user.View)
	require.Len(t, user.Keys, 1)
	assert.Equal(t, "id", user.Keys[0].Name)
	assert.NotEmpty(t, user.Regexp)
}

func TestHandleHref(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	tests := []struct {
		href string
		want string
	}{
		{href: "/", want: "/settings"},
		{href: "/profile/", want: "/settings/profile"},
		{href: "/users/7?tab=posts", want: "/settings/users/7"},
	}

	for _, tt := range tests {
		w := get(t, s, "/api/href?href="+url.QueryEscape(tt.href))
		require.Equal(t, http.StatusOK, w.Code, tt.href)

		var resp HrefResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, tt.want, resp.Href, tt.href)
	}

	w := get(t, s, "/api/href")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	w := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var hr health.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hr))
	assert.Equal(t, "test", hr.Version)

	w = get(t, s, "/readyz")
	require.Equal(t, http.StatusOK, w.Code)

	var rr health.ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rr))
	assert.Contains(t, rr.Checks, "routes")
}

func TestReadiness_RedisCache(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := cache.NewRedis(client, "", time.Minute, nil, observability.NopLogger())
	t.Cleanup(func() { _ = store.Close() })

	s := newTestServer(t, WithCache(store))

	w := get(t, s, "/api/match?pathname=/settings/users/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, mr.Keys())

	w = get(t, s, "/readyz")
	require.Equal(t, http.StatusOK, w.Code)

	var rr health.ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rr))
	assert.Contains(t, rr.Checks, "cache")
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	get(t, s, "/api/match?pathname=/settings")
	w := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "servertest_http_requests_total")
}

func TestReload(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	before := s.Matcher().Fingerprint()

	cfg := testConfig()
	cfg.Context = "/account"
	cfg.Routes = append(cfg.Routes, config.RouteConfig{Path: "/billing", View: "billing"})
	require.NoError(t, s.Reload(cfg))

	assert.NotEqual(t, before, s.Matcher().Fingerprint())
	assert.Equal(t, "/account", s.Table().BaseContext)

	w := get(t, s, "/api/match?pathname=/account/billing")
	require.Equal(t, http.StatusOK, w.Code)

	var resp MatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "billing", resp.View)

	bad := testConfig()
	bad.Routes = []config.RouteConfig{{Path: "/a"}, {Path: "/a"}}
	assert.Error(t, s.Reload(bad))
	assert.Equal(t, "/account", s.Table().BaseContext)
}

func TestValidateConfig_SharesCompiledPatterns(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	installed := s.compiler.Len()

	cfg := testConfig()
	cfg.Routes = append(cfg.Routes, config.RouteConfig{Path: "/billing/:plan?", View: "billing"})
	require.NoError(t, s.ValidateConfig(cfg))
	assert.Equal(t, installed+1, s.compiler.Len())

	require.NoError(t, s.Reload(cfg))
	assert.Equal(t, installed+1, s.compiler.Len())

	bad := testConfig()
	bad.Routes = append(bad.Routes, config.RouteConfig{Path: "__"})
	assert.Error(t, s.ValidateConfig(bad))
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	assert.Equal(t, StateStopped, s.State())

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	assert.Equal(t, StateRunning, s.State())
	assert.Error(t, s.Start(ctx))

	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	conn, wsResp, err := websocket.DefaultDialer.Dial("ws://"+s.Addr()+"/ws", nil)
	require.NoError(t, err)
	if wsResp != nil && wsResp.Body != nil {
		_ = wsResp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(bridge.ClientFrame{Type: bridge.FrameInit, Pathname: "/settings/users/5"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var frame bridge.RouteFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, bridge.FrameRoute, frame.Type)
	assert.Equal(t, "/users/:id", frame.Path)
	assert.Equal(t, "user", frame.View)
	assert.Equal(t, map[string]string{"id": "5"}, frame.Params)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
	assert.Equal(t, StateStopped, s.State())
	assert.Equal(t, 0, s.Bridge().Sessions())
	assert.Error(t, s.Stop(stopCtx))
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.True(t, strings.HasPrefix(StateStarting.String(), "start"))
}

func init() {
	gin.SetMode(gin.TestMode)
}
