package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

// validity is the memoized validation state of a URLString.
type validity int8

const (
	validityUnknown validity = iota
	validityValid
	validityInvalid
)

// gatekeepPattern is the strict syntactic URL check. It is independent of
// the parser-based validation and the two may disagree on edge cases such
// as IP-literal hosts or unusual TLD lengths; both checks are kept as-is.
var gatekeepPattern = regexp.MustCompile(`^https?://(?:www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b(?:[-a-zA-Z0-9()@:%_+.~#?&/=]*)$`)

// URLString wraps a raw URL string with lazily computed, memoized validity
// and a normalized absolute form. The raw value is lowercased at
// construction, before any validation; case information is lost from that
// point on. Each instance owns its own validity cache.
type URLString struct {
	value string
	state validity
}

// New creates a URLString and validates/normalizes it immediately.
func New(value string) *URLString {
	u := NewDeferred(value)
	u.Validate()
	return u
}

// NewDeferred creates a URLString without validating; validity is computed
// and cached on first use.
func NewDeferred(value string) *URLString {
	return &URLString{value: strings.ToLower(value)}
}

// Value returns the underlying string, normalized if Validate succeeded.
func (u *URLString) Value() string {
	return u.value
}

// IsValid reports whether the value can be interpreted as an absolute
// HTTP(S) URL. The result is computed once and cached.
func (u *URLString) IsValid() bool {
	return u.Validate()
}

// Validate checks the value and, on success, rewrites it to canonical form:
// scheme forced to https, explicit port cleared. Idempotent; the computed
// state is never recomputed.
func (u *URLString) Validate() bool {
	if u.state != validityUnknown {
		return u.state == validityValid
	}
	parsed, ok := u.parse()
	if !ok {
		u.state = validityInvalid
		return false
	}
	u.value = canonicalize(parsed)
	u.state = validityValid
	return true
}

// URL returns the parsed absolute URL, applying the scheme-repair fallback.
// Returns (nil, false) for invalid values.
func (u *URLString) URL() (*url.URL, bool) {
	if u.state == validityInvalid {
		return nil, false
	}
	parsed, ok := u.parse()
	if !ok {
		u.state = validityInvalid
		return nil, false
	}
	u.state = validityValid
	return parsed, true
}

// IsStrictlyValid checks the value against the strict gatekeep pattern.
// This is a purely syntactic check, independent of Validate.
func (u *URLString) IsStrictlyValid() bool {
	return gatekeepPattern.MatchString(u.value)
}

// Equal compares by string value.
func (u *URLString) Equal(other *URLString) bool {
	if other == nil {
		return false
	}
	return u.value == other.value
}

// EqualString compares the wrapped value against a plain string.
func (u *URLString) EqualString(s string) bool {
	return u.value == s
}

func (u *URLString) String() string {
	return u.value
}

// parse attempts to interpret the value as an absolute http(s) URL.
// If direct parsing fails, it retries with an https:// prefix, accepting
// the repair only when the resulting host contains a literal dot. This
// recovers bare-domain inputs like "example.com/page" and protocol-relative
// inputs like "//cdn.example.com/img.png".
func (u *URLString) parse() (*url.URL, bool) {
	if strings.TrimSpace(u.value) == "" {
		return nil, false
	}

	if parsed, err := url.Parse(u.value); err == nil && parsed.IsAbs() {
		if parsed.Scheme == "http" || parsed.Scheme == "https" {
			if parsed.Host != "" {
				return parsed, true
			}
		}
	}

	repaired := "https://" + strings.TrimPrefix(u.value, "//")
	parsed, err := url.Parse(repaired)
	if err != nil || !parsed.IsAbs() {
		return nil, false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, false
	}
	if !strings.Contains(parsed.Host, ".") {
		return nil, false
	}
	return parsed, true
}

// canonicalize rebuilds the URL forcing the https scheme and clearing any
// explicit port.
func canonicalize(parsed *url.URL) string {
	host := parsed.Hostname()
	if strings.Contains(host, ":") {
		// Hostname strips the brackets off IPv6 literals.
		host = "[" + host + "]"
	}
	rebuilt := *parsed
	rebuilt.Scheme = "https"
	rebuilt.Host = host
	return rebuilt.String()
}

// Normalize validates and canonicalizes an arbitrary string into an
// absolute https URL. Returns ("", false) when the input cannot be
// interpreted as an HTTP(S) URL; callers treat that as "skip this
// candidate", never as a fatal condition.
func Normalize(text string) (string, bool) {
	u := New(text)
	if !u.IsValid() {
		return "", false
	}
	return u.Value(), true
}
