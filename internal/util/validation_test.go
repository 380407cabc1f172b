package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathname(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pathname  string
		expectErr bool
	}{
		{name: "root", pathname: "/"},
		{name: "nested", pathname: "/users/42"},
		{name: "trailing slash", pathname: "/users/"},
		{name: "empty", pathname: "", expectErr: true},
		{name: "relative", pathname: "users", expectErr: true},
		{name: "query", pathname: "/users?id=1", expectErr: true},
		{name: "fragment", pathname: "/users#top", expectErr: true},
		{name: "too long", pathname: "/" + strings.Repeat("a", maxPathnameLength), expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidatePathname(tt.pathname)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPathnameFromHref(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		href     string
		expected string
	}{
		{name: "plain path", href: "/profile", expected: "/profile"},
		{name: "with query", href: "/profile?tab=1", expected: "/profile"},
		{name: "with fragment", href: "/profile#top", expected: "/profile"},
		{name: "absolute url", href: "https://example.com/settings/profile", expected: "/settings/profile"},
		{name: "host only", href: "https://example.com", expected: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := PathnameFromHref(tt.href)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := PathnameFromHref("")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
