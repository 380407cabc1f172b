package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	base    string
	targets []string
}

func (n *recordingNavigator) Navigate(_ context.Context, pathname string) error {
	n.targets = append(n.targets, pathname)
	return nil
}

func (n *recordingNavigator) BaseContext() string {
	return n.base
}

func TestNavLink_Href(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		to   string
		base string
		want string
	}{
		{name: "root without context", to: "/", base: "", want: "/"},
		{name: "root under context", to: "/", base: "/settings", want: "/settings"},
		{name: "nested under context", to: "/profile", base: "/settings", want: "/settings/profile"},
		{name: "trailing slash trimmed", to: "/users/", base: "", want: "/users"},
		{name: "empty target", to: "", base: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NavLink{To: tt.to}.Href(tt.base))
		})
	}
}

func TestNavLink_Activate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		to   string
		base string
		want string
	}{
		{name: "internal target", to: "/profile", base: "/settings", want: "/profile"},
		{name: "target carrying context", to: "/settings/profile", base: "/settings", want: "/profile"},
		{name: "context itself", to: "/settings", base: "/settings", want: "/"},
		{name: "shared prefix is not context", to: "/settingsx", base: "/settings", want: "/settingsx"},
		{name: "empty target", to: "", base: "", want: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nav := &recordingNavigator{base: tt.base}
			require.NoError(t, NavLink{To: tt.to}.Activate(context.Background(), nav))
			assert.Equal(t, []string{tt.want}, nav.targets)
		})
	}
}

func TestActionLink_Activate(t *testing.T) {
	t.Parallel()

	called := 0
	nav := &recordingNavigator{}

	require.NoError(t, ActionLink{Action: func() { called++ }}.Activate(context.Background(), nav))
	assert.Equal(t, 1, called)
	assert.Empty(t, nav.targets)

	assert.NoError(t, ActionLink{}.Activate(context.Background(), nav))
}
