package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// maxNameLen bounds package names taken from the feed or the HTTP API.
const maxNameLen = 256

// ValidatePackageName rejects names that cannot safely become a record file
// name: empty or oversized names, control characters and anything that
// would escape the store directory.
func ValidatePackageName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	case len(name) > maxNameLen:
		return New(ErrCodeInvalidPackage, "package name longer than %d bytes", maxNameLen)
	case strings.Contains(name, ".."):
		return New(ErrCodeInvalidPackage, "package name contains %q", "..")
	}
	if i := strings.IndexFunc(name, unsafeRune); i >= 0 {
		return New(ErrCodeInvalidPackage, "package name contains invalid character %q", name[i:i+1])
	}
	return nil
}

func unsafeRune(r rune) bool {
	return r == '/' || r == '\\' || unicode.IsControl(r)
}

// ValidateURL checks that rawURL is an absolute http(s) URL with a host.
// Used for the configured feed and index endpoints.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "parse URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL %q must use http or https", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL %q has no host", rawURL)
	}
	return nil
}
