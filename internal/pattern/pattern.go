package pattern

import (
	"regexp"
	"strings"
)

// Options controls how a pattern is turned into a regular expression.
type Options struct {
	// End anchors the pattern at the end of the input. When false the
	// pattern matches a prefix that stops at a delimiter or end of input.
	End bool `json:"end"`
	// Strict disables the optional trailing delimiter.
	Strict bool `json:"strict"`
	// Sensitive makes matching case sensitive.
	Sensitive bool `json:"sensitive"`
}

// CompiledPattern is an immutable, compiled route pattern.
type CompiledPattern struct {
	Path    string
	Options Options
	Regexp  *regexp.Regexp
	Keys    []Key

	parts []part
	// urlGroup is the submatch index holding the matched URL; captures
	// for Keys follow it.
	urlGroup int
}

// Match is the result of executing a pattern against a pathname.
type Match struct {
	// URL is the matched portion of the input.
	URL string
	// Values holds one capture per key, in key order. Unmatched optional
	// captures are empty and flagged false in Matched.
	Values  []string
	Matched []bool
}

// Compile compiles path with the given options. It does no caching.
func Compile(path string, opts Options) (*CompiledPattern, error) {
	parts, err := parse(path)
	if err != nil {
		return nil, err
	}

	source, urlGroup := buildRegexp(parts, opts)
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, &PatternSyntaxError{
			Path:    path,
			Index:   -1,
			Message: "invalid regular expression",
			Cause:   err,
		}
	}

	keys := make([]Key, 0, len(parts))
	for _, p := range parts {
		if p.kind == partParam {
			keys = append(keys, p.key)
		}
	}

	// Named groups inside a custom pattern would shift capture indices.
	if re.NumSubexp() != urlGroup+len(keys) {
		return nil, syntaxError(path, -1, "capturing groups are not allowed")
	}

	return &CompiledPattern{
		Path:     path,
		Options:  opts,
		Regexp:   re,
		Keys:     keys,
		parts:    parts,
		urlGroup: urlGroup,
	}, nil
}

// buildRegexp renders the parsed pattern as RE2 source. It returns the
// source and the submatch index of the matched URL.
//
// Non-end patterns must stop at a segment boundary without consuming it.
// RE2 has no lookahead, so the body is wrapped in a group and the boundary
// (a delimiter or end of input) is consumed outside of it.
func buildRegexp(parts []part, opts Options) (string, int) {
	var body strings.Builder

	for _, p := range parts {
		switch p.kind {
		case partLiteral:
			body.WriteString(regexp.QuoteMeta(p.text))
		case partGroup:
			body.WriteString("(?:")
			body.WriteString(regexp.QuoteMeta(p.key.Prefix))
			body.WriteString(regexp.QuoteMeta(p.key.Suffix))
			body.WriteString(")")
			body.WriteString(p.key.Modifier)
		case partParam:
			writeParam(&body, p.key)
		}
	}

	const delimiterClass = "[" + Delimiters + "]"

	var b strings.Builder
	if !opts.Sensitive {
		b.WriteString("(?i)")
	}
	b.WriteString("^")

	if opts.End {
		b.WriteString(body.String())
		if !opts.Strict {
			b.WriteString(delimiterClass + "?")
		}
		b.WriteString("$")
		return b.String(), 0
	}

	b.WriteString("(")
	b.WriteString(body.String())
	if !opts.Strict {
		b.WriteString("(?:" + delimiterClass + "$)?")
	}
	b.WriteString(")")
	if !endDelimited(parts) {
		b.WriteString("(?:" + delimiterClass + "|$)")
	}
	return b.String(), 1
}

func writeParam(b *strings.Builder, key Key) {
	prefix := regexp.QuoteMeta(key.Prefix)
	suffix := regexp.QuoteMeta(key.Suffix)

	if prefix != "" || suffix != "" {
		if key.Repeated() {
			mod := ""
			if key.Modifier == "*" {
				mod = "?"
			}
			b.WriteString("(?:" + prefix + "((?:" + key.Pattern + ")(?:" + suffix + prefix +
				"(?:" + key.Pattern + "))*)" + suffix + ")" + mod)
			return
		}
		b.WriteString("(?:" + prefix + "(" + key.Pattern + ")" + suffix + ")" + key.Modifier)
		return
	}

	if key.Repeated() {
		b.WriteString("((?:" + key.Pattern + ")" + key.Modifier + ")")
		return
	}
	b.WriteString("(" + key.Pattern + ")" + key.Modifier)
}

// endDelimited reports whether the pattern already ends at a segment
// boundary: it is empty or its last part is literal text ending in a
// delimiter.
func endDelimited(parts []part) bool {
	if len(parts) == 0 {
		return true
	}
	last := parts[len(parts)-1]
	if last.kind != partLiteral {
		return false
	}
	return strings.ContainsRune(Delimiters, rune(last.text[len(last.text)-1]))
}

// Exec matches pathname against the pattern.
func (c *CompiledPattern) Exec(pathname string) (Match, bool) {
	idx := c.Regexp.FindStringSubmatchIndex(pathname)
	if idx == nil {
		return Match{}, false
	}

	m := Match{
		URL:     pathname[idx[2*c.urlGroup]:idx[2*c.urlGroup+1]],
		Values:  make([]string, len(c.Keys)),
		Matched: make([]bool, len(c.Keys)),
	}
	for i := range c.Keys {
		g := c.urlGroup + 1 + i
		start, end := idx[2*g], idx[2*g+1]
		if start < 0 {
			continue
		}
		m.Values[i] = pathname[start:end]
		m.Matched[i] = true
	}
	return m, true
}

// MatchString reports whether pathname matches the pattern.
func (c *CompiledPattern) MatchString(pathname string) bool {
	return c.Regexp.MatchString(pathname)
}

// Params returns the named captures of pathname, or false when it does not
// match. Unmatched optional keys are omitted; repeated names keep the last
// matched value.
func (c *CompiledPattern) Params(pathname string) (map[string]string, bool) {
	m, ok := c.Exec(pathname)
	if !ok {
		return nil, false
	}
	params := make(map[string]string, len(c.Keys))
	for i, key := range c.Keys {
		if m.Matched[i] {
			params[key.Name] = m.Values[i]
		}
	}
	return params, true
}

// String returns the regular expression source.
func (c *CompiledPattern) String() string {
	return c.Regexp.String()
}
