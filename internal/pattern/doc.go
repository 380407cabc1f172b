// Package pattern compiles route path patterns into regular expressions.
//
// The grammar follows the familiar path-to-regexp conventions:
//
//	/users/:id           named parameter, one segment
//	/files/:path+        one or more segments
//	/files/:path*        zero or more segments
//	/users/:id?          optional parameter (the leading "/" is optional too)
//	/users/:id(\d+)      custom parameter pattern
//	/icon-(\d+).png      unnamed parameter, keyed "0"
//	/foo{-:bar}?         group with a literal prefix and a modifier
//	/a\:b                escaped character
//
// Patterns are tokenized by github.com/soongo/path-to-regexp; the matching
// expression is built for the standard regexp package so matching stays
// linear in the length of the pathname. Compilation is pure; a Compiler memoizes results per (path, Options) and
// hands back the same *CompiledPattern for repeated calls.
package pattern
