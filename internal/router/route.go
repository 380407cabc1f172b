package router

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/navrouter/internal/config"
	"github.com/vyrodovalexey/navrouter/internal/pattern"
	"github.com/vyrodovalexey/navrouter/internal/util"
)

// NotFoundPath is the sentinel route path reported when no route matches.
// It cannot be registered as a route.
const NotFoundPath = "__"

// Route is a single route definition.
type Route struct {
	// Path is the route pattern, e.g. "/users/:id".
	Path string

	// Exact requires the pattern to consume the whole pathname.
	Exact bool

	// View is the value selected when the route matches.
	View any
}

// NewRoute validates and returns a route.
func NewRoute(path string, exact bool, view any) (Route, error) {
	if err := validatePath(pattern.Compile, path, exact); err != nil {
		return Route{}, err
	}
	return Route{Path: path, Exact: exact, View: view}, nil
}

// MustRoute is like NewRoute but panics on error.
func MustRoute(path string, exact bool, view any) Route {
	route, err := NewRoute(path, exact, view)
	if err != nil {
		panic(err)
	}
	return route
}

func validatePath(compile compileFunc, path string, exact bool) error {
	if path == "" {
		return fmt.Errorf("%w: route path cannot be empty", util.ErrInvalidInput)
	}
	if path == NotFoundPath {
		return fmt.Errorf("%w: route path %q is reserved for the not-found route", util.ErrInvalidInput, NotFoundPath)
	}
	if _, err := compile(path, pattern.Options{End: exact}); err != nil {
		return err
	}
	return nil
}

// ValidateRoutes checks every route and rejects duplicate paths. Patterns
// are compiled through compiler, so a later install with the same compiler
// reuses them; a nil compiler compiles without memoizing. The returned
// error is a *util.ValidationError.
func ValidateRoutes(routes []Route, compiler *pattern.Compiler) error {
	compile := pattern.Compile
	if compiler != nil {
		compile = compiler.Compile
	}

	verr := util.NewValidationError("invalid routes")
	seen := make(map[string]int, len(routes))

	for i, route := range routes {
		field := fmt.Sprintf("routes[%d].path", i)
		if first, dup := seen[route.Path]; dup && route.Path != "" {
			verr.AddField(field, fmt.Sprintf("duplicate path %q (first defined at routes[%d])", route.Path, first))
			continue
		}
		if err := validatePath(compile, route.Path, route.Exact); err != nil {
			verr.AddCause(field, util.NewRouteError(i, route.Path, err))
			continue
		}
		seen[route.Path] = i
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// FromConfig converts route definitions loaded from configuration. The
// result is validated when it is installed in a Matcher.
func FromConfig(defs []config.RouteConfig) []Route {
	routes := make([]Route, 0, len(defs))
	for _, def := range defs {
		routes = append(routes, Route{Path: def.Path, Exact: def.Exact, View: def.View})
	}
	return routes
}

// ValidateConfig validates cfg and its route table, compiling patterns
// through compiler.
func ValidateConfig(cfg *config.Config, compiler *pattern.Compiler) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	return ValidateRoutes(FromConfig(cfg.Routes), compiler)
}

// Fingerprint identifies the matching behavior of a route set. Two route
// sets with the same paths and exact flags in the same order share a
// fingerprint regardless of their views.
func Fingerprint(routes []Route) string {
	var b strings.Builder
	for _, route := range routes {
		b.WriteString(route.Path)
		if route.Exact {
			b.WriteString("\x00e")
		}
		b.WriteByte('\n')
	}
	return hashFingerprint(b.String())
}
