// Package router resolves location pathnames against an ordered set of
// route patterns.
//
// Routes are tried in registration order and the first match wins. A route
// is either a prefix route, which matches a pathname prefix ending at a
// segment boundary, or an exact route, which must consume the whole
// pathname. Parameters captured by the winning pattern are returned by name.
//
// # Usage
//
//	routes := []router.Route{
//	    router.MustRoute("/", true, "home"),
//	    router.MustRoute("/users/:id", false, "user"),
//	}
//	m, err := router.New(routes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if result := m.Match(ctx, "/users/42"); result != nil {
//	    // result.Path == "/users/:id", result.Params["id"] == "42"
//	}
//
// A Matcher memoizes its results per pathname in a LookupCache. The default
// is an in-process map; StoreLookupCache shares lookups through a cache.Cache
// backend such as Redis.
package router
