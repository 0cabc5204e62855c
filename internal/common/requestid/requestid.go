// Package requestid generates unique request identifiers, optionally
// derived from a caller-supplied ID.
package requestid

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxRequestIDLength caps the total ID length at UUID size.
	MaxRequestIDLength = 36
	// PrefixLength is the length of the random uniqueness prefix.
	PrefixLength = 5
	// MaxCustomIDLength is what remains for the sanitized custom part
	// after the prefix and the joining hyphen.
	MaxCustomIDLength = MaxRequestIDLength - PrefixLength - 1
)

var (
	invalidChars = regexp.MustCompile(`[^a-zA-Z0-9-]+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// GenerateRequestID returns "{prefix}-{sanitized}" when customID survives
// sanitization, otherwise a fresh UUID. The prefix keeps repeated custom
// IDs distinguishable in logs while the custom part stays greppable.
func GenerateRequestID(customID string) string {
	sanitized := strings.ReplaceAll(customID, " ", "-")
	sanitized = invalidChars.ReplaceAllString(sanitized, "")
	sanitized = hyphenRuns.ReplaceAllString(sanitized, "-")
	sanitized = strings.Trim(sanitized, "-")

	if sanitized == "" {
		return uuid.New().String()
	}

	if len(sanitized) > MaxCustomIDLength {
		sanitized = sanitized[:MaxCustomIDLength]
	}
	return randomPrefix() + "-" + sanitized
}

func randomPrefix() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return uuid.New().String()[:PrefixLength]
	}
	return hex.EncodeToString(buf)[:PrefixLength]
}
