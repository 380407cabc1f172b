package navigation

import (
	"context"
	"strings"
)

// Navigator performs in-app navigation.
type Navigator interface {
	Navigate(ctx context.Context, pathname string) error
	BaseContext() string
}

// Link is an activatable navigation element.
type Link interface {
	Activate(ctx context.Context, nav Navigator) error
}

// ActionLink runs a callback when activated.
type ActionLink struct {
	Action func()
}

// Activate implements Link.
func (l ActionLink) Activate(context.Context, Navigator) error {
	if l.Action != nil {
		l.Action()
	}
	return nil
}

// NavLink navigates to an internal pathname when activated.
type NavLink struct {
	// To is the target pathname without the base context.
	To string
}

// Href renders the external href under baseContext. A trailing slash is
// trimmed unless the href is the root.
func (l NavLink) Href(baseContext string) string {
	href := JoinContext(baseContext, l.To)
	if len(href) > 1 {
		href = strings.TrimSuffix(href, "/")
	}
	return href
}

// Activate implements Link. A target that already carries the base
// context is stripped of it first.
func (l NavLink) Activate(ctx context.Context, nav Navigator) error {
	return nav.Navigate(ctx, StripContext(l.To, nav.BaseContext()))
}

var (
	_ Link = ActionLink{}
	_ Link = NavLink{}
)
