package router

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/navrouter/internal/observability"
	"github.com/vyrodovalexey/navrouter/internal/pattern"
	"github.com/vyrodovalexey/navrouter/internal/util"
)

func testRoutes() []Route {
	return []Route{
		{Path: "/", Exact: true, View: "home"},
		{Path: "/users/:id", View: "user"},
		{Path: "/users", View: "users"},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	m, err := New(testRoutes())
	require.NoError(t, err)
	assert.NotNil(t, m.Compiler())
	assert.Len(t, m.Routes(), 3)
	assert.Equal(t, Fingerprint(testRoutes()), m.Fingerprint())

	// Routes are compiled up front.
	assert.Equal(t, 3, m.Compiler().Len())
}

func TestNew_InvalidRoutes(t *testing.T) {
	t.Parallel()

	_, err := New([]Route{{Path: "/a"}, {Path: "/a"}})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = New([]Route{{Path: "/a/:("}})
	assert.ErrorIs(t, err, pattern.ErrPatternSyntax)
}

func TestMatcher_Match(t *testing.T) {
	t.Parallel()

	m, err := New(testRoutes(), WithLogger(observability.NopLogger()))
	require.NoError(t, err)

	ctx := context.Background()

	tests := []struct {
		pathname string
		wantPath string
		params   map[string]string
	}{
		{pathname: "/", wantPath: "/", params: map[string]string{}},
		{pathname: "/users/42", wantPath: "/users/:id", params: map[string]string{"id": "42"}},
		{pathname: "/users", wantPath: "/users", params: map[string]string{}},
		{pathname: "/missing", wantPath: ""},
	}

	for _, tt := range tests {
		t.Run(tt.pathname, func(t *testing.T) {
			t.Parallel()

			got := m.Match(ctx, tt.pathname)
			if tt.wantPath == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
			assert.Equal(t, tt.params, got.Params)
		})
	}
}

func TestMatcher_MatchMemoized(t *testing.T) {
	t.Parallel()

	lookups := NewMapLookupCache()
	m, err := New(testRoutes(), WithLookupCache(lookups))
	require.NoError(t, err)

	ctx := context.Background()
	first := m.Match(ctx, "/users/42")
	require.NotNil(t, first)
	assert.Equal(t, 1, lookups.Len())

	second := m.Match(ctx, "/users/42")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, lookups.Len())

	// Callers cannot corrupt the cache by mutating a result.
	second.Params["id"] = "tampered"
	third := m.Match(ctx, "/users/42")
	assert.Equal(t, "42", third.Params["id"])

	// Misses are memoized too.
	assert.Nil(t, m.Match(ctx, "/nowhere"))
	cached, ok := lookups.Get(ctx, m.Fingerprint(), "/nowhere")
	assert.True(t, ok)
	assert.Nil(t, cached)
}

func TestMatcher_SharedCompiler(t *testing.T) {
	t.Parallel()

	compiler := pattern.NewCompiler()
	a, err := New(testRoutes(), WithCompiler(compiler))
	require.NoError(t, err)
	b, err := New(testRoutes(), WithCompiler(compiler))
	require.NoError(t, err)

	assert.Same(t, a.Compiler(), b.Compiler())
	assert.Equal(t, 3, compiler.Len())

	p1 := compiler.MustCompile("/users/:id", pattern.Options{})
	p2 := compiler.MustCompile("/users/:id", pattern.Options{})
	assert.Same(t, p1, p2)
}

func TestMatcher_SeparateInstancesDoNotShareLookups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, err := New([]Route{{Path: "/:id"}})
	require.NoError(t, err)
	b, err := New([]Route{{Path: "/users"}})
	require.NoError(t, err)

	require.NotNil(t, a.Match(ctx, "/users"))
	assert.Equal(t, "/users", b.Match(ctx, "/users").Path)
}

func TestMatcher_SharedLookupCacheIsNamespaced(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	lookups := NewMapLookupCache()

	a, err := New([]Route{{Path: "/:id"}}, WithLookupCache(lookups))
	require.NoError(t, err)
	b, err := New([]Route{{Path: "/users"}}, WithLookupCache(lookups))
	require.NoError(t, err)

	assert.Equal(t, "/:id", a.Match(ctx, "/users").Path)
	assert.Equal(t, "/users", b.Match(ctx, "/users").Path)
	assert.Equal(t, 2, lookups.Len())
}

func TestMatcher_SetRoutes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	lookups := NewMapLookupCache()
	m, err := New([]Route{{Path: "/:id"}, {Path: "/users"}}, WithLookupCache(lookups))
	require.NoError(t, err)

	assert.Equal(t, "/:id", m.Match(ctx, "/users").Path)
	oldFingerprint := m.Fingerprint()

	require.NoError(t, m.SetRoutes(ctx, []Route{{Path: "/users"}, {Path: "/:id"}}))
	assert.NotEqual(t, oldFingerprint, m.Fingerprint())
	assert.Equal(t, "/users", m.Match(ctx, "/users").Path)

	_, ok := lookups.Get(ctx, oldFingerprint, "/users")
	assert.False(t, ok, "lookups of the replaced route set must be dropped")
}

func TestMatcher_SetRoutesInvalidKeepsCurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, err := New(testRoutes())
	require.NoError(t, err)

	err = m.SetRoutes(ctx, []Route{{Path: NotFoundPath}})
	require.Error(t, err)
	assert.Len(t, m.Routes(), 3)
	assert.NotNil(t, m.Match(ctx, "/users/1"))
}

func TestMatcher_Invalidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	lookups := NewMapLookupCache()
	m, err := New(testRoutes(), WithLookupCache(lookups))
	require.NoError(t, err)

	m.Match(ctx, "/users/1")
	m.Match(ctx, "/users/2")
	assert.Equal(t, 2, lookups.Len())

	m.Invalidate(ctx)
	assert.Zero(t, lookups.Len())
}

func TestMatcher_Lookup(t *testing.T) {
	t.Parallel()

	m, err := New(testRoutes())
	require.NoError(t, err)

	route, ok := m.Lookup("/users/:id")
	require.True(t, ok)
	assert.Equal(t, "user", route.View)

	_, ok = m.Lookup(NotFoundPath)
	assert.False(t, ok)
}

func TestMatcher_RoutesReturnsCopy(t *testing.T) {
	t.Parallel()

	m, err := New(testRoutes())
	require.NoError(t, err)

	routes := m.Routes()
	routes[0].Path = "/changed"
	assert.Equal(t, "/", m.Routes()[0].Path)
}

func TestMatcher_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, err := New(testRoutes())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				pathname := fmt.Sprintf("/users/%d", j%10)
				result := m.Match(ctx, pathname)
				if assert.NotNil(t, result) {
					assert.Equal(t, fmt.Sprintf("%d", j%10), result.Params["id"])
				}
				if worker == 0 && j%10 == 0 {
					assert.NoError(t, m.SetRoutes(ctx, testRoutes()))
				}
			}
		}(i)
	}
	wg.Wait()
}
