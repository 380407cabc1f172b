package router

import (
	"github.com/vyrodovalexey/navrouter/internal/pattern"
)

// MatchResult describes the route that matched a pathname.
type MatchResult struct {
	// Path is the pattern of the matching route.
	Path string `json:"path"`

	// URL is the portion of the pathname consumed by the pattern.
	URL string `json:"url"`

	// IsExact reports whether the pattern consumed the whole pathname.
	IsExact bool `json:"isExact"`

	// Params holds the named parameter values.
	Params map[string]string `json:"params"`
}

// Clone returns a deep copy of r.
func (r *MatchResult) Clone() *MatchResult {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Params = make(map[string]string, len(r.Params))
	for k, v := range r.Params {
		clone.Params[k] = v
	}
	return &clone
}

type compileFunc func(path string, opts pattern.Options) (*pattern.CompiledPattern, error)

// MatchRoute resolves pathname against routes without any caching. It
// returns nil when no route matches and an error when a route pattern is
// malformed.
func MatchRoute(pathname string, routes []Route) (*MatchResult, error) {
	return matchRoutes(pattern.Compile, pathname, routes)
}

func matchRoutes(compile compileFunc, pathname string, routes []Route) (*MatchResult, error) {
	for _, route := range routes {
		compiled, err := compile(route.Path, pattern.Options{End: route.Exact})
		if err != nil {
			return nil, err
		}
		if result := matchOne(compiled, route, pathname); result != nil {
			return result, nil
		}
	}
	return nil, nil
}

func matchOne(compiled *pattern.CompiledPattern, route Route, pathname string) *MatchResult {
	m, ok := compiled.Exec(pathname)
	if !ok {
		return nil
	}

	isExact := pathname == m.URL
	if route.Exact && !isExact {
		return nil
	}

	url := m.URL
	if route.Path == "/" && url == "" {
		url = "/"
	}

	params := make(map[string]string, len(compiled.Keys))
	for i, key := range compiled.Keys {
		if m.Matched[i] {
			params[key.Name] = m.Values[i]
		}
	}

	return &MatchResult{
		Path:    route.Path,
		URL:     url,
		IsExact: isExact,
		Params:  params,
	}
}
