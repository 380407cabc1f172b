package pattern

import (
	"regexp"
	"strconv"
	"sync"

	pathtoregexp "github.com/soongo/path-to-regexp"
)

// DefaultParamPattern is the pattern used for parameters without a custom one.
const DefaultParamPattern = `[^/#?]+?`

// Delimiters are the characters that terminate a segment in non-end mode.
const Delimiters = "/#?"

// prefixes lists the characters that become a parameter's prefix when they
// directly precede it.
const prefixes = "./"

// Key describes one capture of a compiled pattern.
type Key struct {
	// Name is the parameter name; unnamed groups are keyed by their
	// decimal index ("0", "1", ...).
	Name     string `json:"name"`
	Prefix   string `json:"prefix,omitempty"`
	Suffix   string `json:"suffix,omitempty"`
	Pattern  string `json:"pattern"`
	Modifier string `json:"modifier,omitempty"`
}

// Optional reports whether the key may be absent.
func (k Key) Optional() bool {
	return k.Modifier == "?" || k.Modifier == "*"
}

// Repeated reports whether the key may match more than one segment.
func (k Key) Repeated() bool {
	return k.Modifier == "+" || k.Modifier == "*"
}

type partKind int

const (
	partLiteral partKind = iota
	partParam
	partGroup
)

// part is one element of a parsed pattern: literal text, a parameter, or a
// literal-only group carrying just a prefix, suffix and modifier.
type part struct {
	kind partKind
	text string
	key  Key
}

// parseOptions configures the tokenizer with navrouter's delimiters and
// parameter prefixes.
func parseOptions() *pathtoregexp.Options {
	p := prefixes
	return &pathtoregexp.Options{Delimiter: Delimiters, Prefixes: &p}
}

var (
	tokenizerDefault     string
	tokenizerDefaultOnce sync.Once
)

// tokenizerDefaultPattern returns the pattern the tokenizer assigns to
// parameters without a custom one. It spells the delimiter class with
// escapes, so it is mapped back to DefaultParamPattern.
func tokenizerDefaultPattern() string {
	tokenizerDefaultOnce.Do(func() {
		tokens, err := pathtoregexp.Parse(":x", parseOptions())
		if err != nil || len(tokens) != 1 {
			return
		}
		if tok, ok := tokens[0].(pathtoregexp.Token); ok {
			tokenizerDefault = tok.Pattern
		}
	})
	return tokenizerDefault
}

// positionedError matches tokenizer errors of the form "<message> at <index>"
// with an optional trailing clause.
var positionedError = regexp.MustCompile(`^(.*?) at (\d+)(.*)$`)

// unexpectedToken matches the tokenizer's numeric "unexpected" errors.
var unexpectedToken = regexp.MustCompile(`^unexpected (\d+) at (\d+), expected (\d+)$`)

// tokenNames follows the tokenizer's lexeme numbering.
var tokenNames = []string{"OPEN", "CLOSE", "PATTERN", "NAME", "CHAR", "ESCAPED_CHAR", "MODIFIER", "END"}

func tokenName(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n >= len(tokenNames) {
		return s
	}
	return tokenNames[n]
}

// parse turns a path pattern into its parts.
func parse(path string) (parts []part, err error) {
	if trailingEscape(path) {
		return nil, syntaxError(path, len(path)-1, "missing escaped character")
	}

	// The tokenizer indexes past the end of some truncated inputs, such as
	// a pattern ending in "(".
	defer func() {
		if r := recover(); r != nil {
			parts = nil
			err = syntaxError(path, -1, "truncated pattern")
		}
	}()

	tokens, perr := pathtoregexp.Parse(path, parseOptions())
	if perr != nil {
		return nil, tokenizerError(path, perr)
	}

	parts = make([]part, 0, len(tokens))
	for _, t := range tokens {
		switch tok := t.(type) {
		case string:
			parts = append(parts, part{kind: partLiteral, text: tok})
		case pathtoregexp.Token:
			parts = append(parts, convertToken(tok))
		default:
			return nil, syntaxError(path, -1, "unexpected token %T", t)
		}
	}
	return parts, nil
}

func convertToken(tok pathtoregexp.Token) part {
	key := Key{
		Prefix:   tok.Prefix,
		Suffix:   tok.Suffix,
		Pattern:  tok.Pattern,
		Modifier: tok.Modifier,
	}

	switch name := tok.Name.(type) {
	case string:
		key.Name = name
	case int:
		key.Name = strconv.Itoa(name)
	}

	if key.Name == "" && key.Pattern == "" {
		return part{kind: partGroup, key: key}
	}
	if key.Pattern == tokenizerDefaultPattern() {
		key.Pattern = DefaultParamPattern
	}
	return part{kind: partParam, key: key}
}

// trailingEscape reports whether path ends in an unescaped backslash.
func trailingEscape(path string) bool {
	n := 0
	for i := len(path) - 1; i >= 0 && path[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

func tokenizerError(path string, err error) *PatternSyntaxError {
	if m := unexpectedToken.FindStringSubmatch(err.Error()); m != nil {
		index, _ := strconv.Atoi(m[2])
		return syntaxError(path, index, "unexpected %s, expected %s", tokenName(m[1]), tokenName(m[3]))
	}

	m := positionedError.FindStringSubmatch(err.Error())
	if m == nil {
		return &PatternSyntaxError{Path: path, Index: -1, Message: "malformed pattern", Cause: err}
	}
	index, convErr := strconv.Atoi(m[2])
	if convErr != nil {
		index = -1
	}
	return &PatternSyntaxError{Path: path, Index: index, Message: m[1] + m[3]}
}
