package pattern

import (
	"errors"
	"fmt"
)

// Sentinel errors for pattern compilation and path building.
var (
	// ErrPatternSyntax is matched by every *PatternSyntaxError.
	ErrPatternSyntax = errors.New("invalid route pattern")

	// ErrMissingParam indicates that Build was not given a required parameter.
	ErrMissingParam = errors.New("missing route parameter")

	// ErrInvalidParam indicates that a Build parameter does not satisfy its pattern.
	ErrInvalidParam = errors.New("invalid route parameter")
)

// PatternSyntaxError describes a malformed route pattern.
type PatternSyntaxError struct {
	Path    string
	Index   int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *PatternSyntaxError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("invalid pattern %q: %s: %v", e.Path, e.Message, e.Cause)
	case e.Index >= 0:
		return fmt.Sprintf("invalid pattern %q: %s at %d", e.Path, e.Message, e.Index)
	default:
		return fmt.Sprintf("invalid pattern %q: %s", e.Path, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *PatternSyntaxError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrPatternSyntax.
func (e *PatternSyntaxError) Is(target error) bool {
	return target == ErrPatternSyntax
}

func syntaxError(path string, index int, format string, args ...any) *PatternSyntaxError {
	return &PatternSyntaxError{
		Path:    path,
		Index:   index,
		Message: fmt.Sprintf(format, args...),
	}
}

// ParamError describes a Build failure for a single parameter.
type ParamError struct {
	Name    string
	Message string
	kind    error
}

// Error implements the error interface.
func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Name, e.Message)
}

// Unwrap returns ErrMissingParam or ErrInvalidParam.
func (e *ParamError) Unwrap() error {
	return e.kind
}
