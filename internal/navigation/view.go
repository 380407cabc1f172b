package navigation

import (
	"github.com/vyrodovalexey/navrouter/internal/router"
)

// NopView is the not-found view used when none is configured.
type NopView struct{}

// ViewTable maps route paths to views.
type ViewTable struct {
	views    map[string]any
	notFound any
}

// NewViewTable builds a table from routes. A nil notFound selects NopView.
func NewViewTable(routes []router.Route, notFound any) *ViewTable {
	if notFound == nil {
		notFound = NopView{}
	}
	t := &ViewTable{
		views:    make(map[string]any, len(routes)),
		notFound: notFound,
	}
	for _, route := range routes {
		t.views[route.Path] = route.View
	}
	return t
}

// Select returns the view of the route with the given path. The not-found
// sentinel and unknown paths select the not-found view.
func (t *ViewTable) Select(path string) any {
	if path == router.NotFoundPath {
		return t.notFound
	}
	if view, ok := t.views[path]; ok {
		return view
	}
	return t.notFound
}

// NotFound returns the not-found view.
func (t *ViewTable) NotFound() any {
	return t.notFound
}
