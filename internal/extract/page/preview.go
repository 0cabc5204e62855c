package page

import (
	"context"
	"strings"

	"github.com/pagelens/engine/pkg/types"
)

// previewMetaKeys is the priority order for picking a preview image from
// meta tags. lp:image is a non-standard key some landing-page generators
// emit; it ranks last among the meta sources.
var previewMetaKeys = []string{
	"og:image",
	"og:image:url",
	"og:image:secure_url",
	"twitter:image",
	"twitter:image:src",
	"lp:image",
}

// SelectPreview picks the single best preview image URL for the page, or
// empty string when the page offers none. Meta tags are tried in priority
// order; a <link rel="preload" as="image"> is the fallback. The winner is
// resolved against the document base so protocol-relative and path-relative
// values come back absolute.
func SelectPreview(doc *Document, set *types.MetaTagSet) string {
	if !doc.Loaded() {
		return ""
	}

	metas := findAll(doc.root, "meta")
	for _, key := range previewMetaKeys {
		if value := metaContent(metas, key); value != "" {
			return resolveRelative(value, doc.baseURI(set))
		}
	}

	for _, link := range findAll(doc.root, "link") {
		if strings.EqualFold(strings.TrimSpace(attr(link, "rel")), "preload") &&
			strings.EqualFold(strings.TrimSpace(attr(link, "as")), "image") {
			if href := strings.TrimSpace(attr(link, "href")); href != "" {
				return resolveRelative(href, doc.baseURI(set))
			}
		}
	}

	return ""
}

// SelectPreviewWithFallback works like SelectPreview but, when the page
// carries no preview hints, crawls the collected image candidates
// widest-first and probes each until one serves real image bytes. Vector
// and icon sources are skipped; data: URIs never survive candidate
// validation.
func SelectPreviewWithFallback(ctx context.Context, doc *Document, set *types.MetaTagSet, validator ImageValidator) string {
	if preview := SelectPreview(doc, set); preview != "" {
		return preview
	}
	if validator == nil {
		return ""
	}

	candidates := CollectImages(ctx, doc, CollectOptions{
		ExcludeExtensions: []string{".svg", ".ico"},
	})
	for _, candidate := range candidates {
		if validator.Probe(ctx, candidate.Src, doc.SourceURL()) {
			return candidate.Src
		}
	}
	return ""
}
