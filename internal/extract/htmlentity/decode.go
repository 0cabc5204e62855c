// Package htmlentity decodes HTML character references in document text.
// It layers a named-entity table on top of the standard unescaper so text
// that was entity-encoded more than once still comes out clean.
package htmlentity

import (
	"html"
	"strings"
	"sync"
)

var (
	replacerOnce sync.Once
	replacer     *strings.Replacer
)

func namedReplacer() *strings.Replacer {
	replacerOnce.Do(func() {
		pairs := make([]string, 0, len(namedEntities)*2)
		for entity, text := range namedEntities {
			pairs = append(pairs, entity, text)
		}
		replacer = strings.NewReplacer(pairs...)
	})
	return replacer
}

// Decode replaces named and numeric character references in s with their
// replacement text. Blank input returns an empty string. Decoding is
// idempotent: text without references passes through unchanged.
func Decode(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	decoded := html.UnescapeString(s)
	if !strings.Contains(decoded, "&") {
		return decoded
	}
	return namedReplacer().Replace(decoded)
}
