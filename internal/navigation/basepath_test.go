package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "settings", want: "/settings"},
		{in: "/settings", want: "/settings"},
		{in: "app/v2", want: "/app/v2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeContext(tt.in))
		})
	}
}

func TestStripContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pathname string
		base     string
		want     string
	}{
		{name: "no context", pathname: "/users", base: "", want: "/users"},
		{name: "prefixed", pathname: "/settings/profile", base: "/settings", want: "/profile"},
		{name: "context only", pathname: "/settings", base: "/settings", want: "/"},
		{name: "not a prefix", pathname: "/other/settings", base: "/settings", want: "/other/settings"},
		{name: "empty pathname", pathname: "", base: "", want: "/"},
		{name: "shared prefix without boundary", pathname: "/application/x", base: "/app", want: "/application/x"},
		{name: "context followed by suffix", pathname: "/apps", base: "/app", want: "/apps"},
		{name: "context with trailing slash", pathname: "/app/x", base: "/app/", want: "/x"},
		{name: "root context", pathname: "/users", base: "/", want: "/users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StripContext(tt.pathname, tt.base))
		})
	}
}

func TestHasContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pathname string
		base     string
		want     bool
	}{
		{name: "empty context", pathname: "/app", base: "", want: false},
		{name: "equal", pathname: "/app", base: "/app", want: true},
		{name: "child segment", pathname: "/app/x", base: "/app", want: true},
		{name: "longer segment", pathname: "/application/x", base: "/app", want: false},
		{name: "trailing slash context", pathname: "/app/x", base: "/app/", want: true},
		{name: "unrelated", pathname: "/other", base: "/app", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, HasContext(tt.pathname, tt.base))
		})
	}
}

func TestJoinContext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/settings/profile", JoinContext("/settings", "/profile"))
	assert.Equal(t, "/profile", JoinContext("", "/profile"))
}
