package navigation

import (
	"strings"
)

// NormalizeContext returns the base context with a leading "/". An empty
// context stays empty.
func NormalizeContext(baseContext string) string {
	if baseContext == "" || strings.HasPrefix(baseContext, "/") {
		return baseContext
	}
	return "/" + baseContext
}

// HasContext reports whether pathname lies under baseContext. The context
// must end on a segment boundary, so "/app" contains "/app/x" but not
// "/application".
func HasContext(pathname, baseContext string) bool {
	if baseContext == "" {
		return false
	}
	if pathname == baseContext {
		return true
	}
	if strings.HasSuffix(baseContext, "/") {
		return strings.HasPrefix(pathname, baseContext)
	}
	return strings.HasPrefix(pathname, baseContext+"/")
}

// StripContext converts an external pathname into an internal one. The
// context is removed only when HasContext holds, and an empty result
// becomes "/".
func StripContext(pathname, baseContext string) string {
	internal := pathname
	if HasContext(pathname, baseContext) {
		internal = strings.TrimPrefix(pathname, strings.TrimSuffix(baseContext, "/"))
	}
	if internal == "" {
		return "/"
	}
	return internal
}

// JoinContext converts an internal pathname into an external one.
func JoinContext(baseContext, pathname string) string {
	return baseContext + pathname
}
