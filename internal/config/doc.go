// Package config loads, validates and watches the navrouter configuration.
//
// The configuration is a single YAML document holding the base context, the
// ordered route table, the lookup cache backend, the HTTP server settings
// and the observability settings. ${VAR} and ${VAR:-default} references are
// substituted from the environment before parsing; "$$" yields a literal
// dollar sign.
package config
