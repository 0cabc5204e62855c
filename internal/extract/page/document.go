// Package page parses web pages and extracts their metadata, image
// candidates and preview image. Parsing is tolerant: malformed or empty
// markup yields an unloaded document whose queries return empty results
// instead of errors.
package page

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/pagelens/engine/internal/extract/htmlentity"
)

// Document is one parsed web page. It is built once per extraction call
// and not mutated afterwards.
type Document struct {
	root      *html.Node
	loaded    bool
	sourceURL string
}

// FromHTML builds a document from raw markup. sourceURL is the address the
// markup came from, used as the last-resort base for relative link
// resolution; it may be empty. Blank markup or a parser failure produces
// an unloaded document rather than an error.
func FromHTML(rawHTML, sourceURL string) *Document {
	doc := &Document{
		sourceURL: sourceURL,
	}

	if strings.TrimSpace(rawHTML) == "" {
		return doc
	}

	// Numeric and standard entities first, then the named-entity table
	// for references the standard pass leaves behind.
	decoded := htmlentity.Decode(rawHTML)

	root, err := html.Parse(strings.NewReader(decoded))
	if err != nil {
		return doc
	}

	doc.root = root
	doc.loaded = true
	return doc
}

// Loaded reports whether the markup parsed into a usable tree. Callers
// distinguishing "no data found" from "nothing retrieved" check this flag.
func (d *Document) Loaded() bool {
	return d != nil && d.loaded
}

// SourceURL returns the address the document was built from, or empty.
func (d *Document) SourceURL() string {
	if d == nil {
		return ""
	}
	return d.sourceURL
}

// Title returns the trimmed inner text of the <title> element.
func (d *Document) Title() string {
	if !d.Loaded() {
		return ""
	}
	return strings.TrimSpace(textContent(findFirst(d.root, "title")))
}
