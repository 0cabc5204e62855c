package urlutil

import (
	"net/url"
	"strings"
)

// ExtractHost extracts and lowercases the host from a URL string.
// Returns empty string if URL is invalid or has no host.
func ExtractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}

// Origin returns the scheme://host part of an absolute URL, or empty
// string when the input is not absolute. Used as the base for relative
// link resolution and Referer headers.
func Origin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
