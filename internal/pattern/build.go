package pattern

import (
	"regexp"
	"strconv"
	"strings"
)

// Build renders a concrete pathname from params. Repeated keys accept
// "/"-joined values, one element per segment.
func (c *CompiledPattern) Build(params map[string]string) (string, error) {
	var b strings.Builder

	for _, p := range c.parts {
		switch p.kind {
		case partLiteral:
			b.WriteString(p.text)
		case partGroup:
			if p.key.Modifier == "" || p.key.Modifier == "+" {
				b.WriteString(p.key.Prefix)
				b.WriteString(p.key.Suffix)
			}
		case partParam:
			if err := c.buildParam(&b, p.key, params); err != nil {
				return "", err
			}
		}
	}

	return b.String(), nil
}

func (c *CompiledPattern) buildParam(b *strings.Builder, key Key, params map[string]string) error {
	value, ok := params[key.Name]
	if !ok || value == "" {
		if key.Optional() {
			return nil
		}
		msg := "expected a string"
		if key.Repeated() {
			msg = "expected one or more segments"
		}
		return &ParamError{Name: key.Name, Message: msg, kind: ErrMissingParam}
	}

	validate, err := c.validator(key)
	if err != nil {
		return err
	}

	segments := []string{value}
	if key.Repeated() {
		segments = strings.Split(value, "/")
	}

	for _, segment := range segments {
		if !validate.MatchString(segment) {
			return &ParamError{
				Name:    key.Name,
				Message: "expected to match " + strconv.Quote(key.Pattern) + ", but got " + strconv.Quote(segment),
				kind:    ErrInvalidParam,
			}
		}
		b.WriteString(key.Prefix)
		b.WriteString(segment)
		b.WriteString(key.Suffix)
	}

	return nil
}

func (c *CompiledPattern) validator(key Key) (*regexp.Regexp, error) {
	source := "^(?:" + key.Pattern + ")$"
	if !c.Options.Sensitive {
		source = "(?i)" + source
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, &PatternSyntaxError{Path: c.Path, Index: -1, Message: "invalid parameter pattern", Cause: err}
	}
	return re, nil
}
