package util

import (
	"fmt"
	"net/url"
	"strings"
)

// maxPathnameLength bounds pathnames accepted from clients.
const maxPathnameLength = 2048

// ValidatePathname validates a location pathname received from a client.
// A pathname must start with "/" and must not carry a scheme, host, query
// or fragment.
func ValidatePathname(pathname string) error {
	if pathname == "" {
		return fmt.Errorf("%w: pathname cannot be empty", ErrInvalidInput)
	}

	if len(pathname) > maxPathnameLength {
		return fmt.Errorf("%w: pathname exceeds %d bytes", ErrInvalidInput, maxPathnameLength)
	}

	if !strings.HasPrefix(pathname, "/") {
		return fmt.Errorf("%w: pathname must start with /, got: %s", ErrInvalidInput, pathname)
	}

	if strings.ContainsAny(pathname, "?#\x00") {
		return fmt.Errorf("%w: pathname must not contain a query or fragment: %s", ErrInvalidInput, pathname)
	}

	return nil
}

// PathnameFromHref extracts the pathname of an href. Absolute URLs are
// reduced to their path; query and fragment are dropped.
func PathnameFromHref(href string) (string, error) {
	if href == "" {
		return "", fmt.Errorf("%w: href cannot be empty", ErrInvalidInput)
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: invalid href: %w", ErrInvalidInput, err)
	}

	pathname := parsed.EscapedPath()
	if pathname == "" {
		pathname = "/"
	}

	return pathname, nil
}
