// Package util provides shared error types and input validation for the
// navigation router.
//
// # Error Conventions
//
// This project follows a standardized error pattern across all packages:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrNotFound.
//   - Structured error types for context-rich errors that carry
//     additional fields (ConfigError, ValidationError, RouteError). Each
//     type implements Error(), Unwrap() (if wrapping), and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
//
// # Validation
//
// Pathname helpers used by the HTTP and websocket surfaces:
//
//	if err := util.ValidatePathname(p); err != nil {
//	    return err
//	}
package util
