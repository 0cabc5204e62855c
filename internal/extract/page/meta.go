package page

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/pagelens/engine/internal/common/urlutil"
	"github.com/pagelens/engine/pkg/types"
)

// ExtractMeta walks the document head and fills the fixed meta tag schema.
// Every field is best-effort; an unloaded document yields an empty set.
func ExtractMeta(doc *Document) *types.MetaTagSet {
	set := &types.MetaTagSet{}
	if !doc.Loaded() {
		return set
	}

	metas := findAll(doc.root, "meta")
	links := findAll(doc.root, "link")

	// Open Graph outranks the plain meta title and the twitter variant;
	// the title element is the last resort.
	set.Title = firstNonEmpty(
		metaContent(metas, "og:title"),
		metaContent(metas, "title"),
		metaContent(metas, "twitter:title"),
	)
	if set.Title == "" {
		set.Title = doc.Title()
	}
	set.Description = metaContent(metas, "description")
	set.Keywords = metaContent(metas, "keywords")
	set.Author = metaContent(metas, "author")
	set.Generator = metaContent(metas, "generator")
	set.Charset = extractCharset(metas)
	set.Viewport = metaContent(metas, "viewport")
	set.Robots = metaContent(metas, "robots")
	set.CanonicalURL = linkHref(links, "canonical")
	set.Language = extractLanguage(doc.root)
	set.ThemeColor = metaContent(metas, "theme-color")
	set.ColorScheme = metaContent(metas, "color-scheme")
	set.ApplicationName = metaContent(metas, "application-name")

	set.OgTitle = metaContent(metas, "og:title")
	set.OgDescription = metaContent(metas, "og:description")
	set.OgType = metaContent(metas, "og:type")
	set.OgURL = metaContent(metas, "og:url")
	set.OgImage = metaContent(metas, "og:image")
	set.OgImageAlt = metaContent(metas, "og:image:alt")
	set.OgImageWidth = metaContent(metas, "og:image:width")
	set.OgImageHeight = metaContent(metas, "og:image:height")
	set.OgSiteName = metaContent(metas, "og:site_name")
	set.OgLocale = metaContent(metas, "og:locale")
	set.OgVideo = metaContent(metas, "og:video")
	set.OgVideoURL = metaContent(metas, "og:video:url")
	set.OgVideoType = metaContent(metas, "og:video:type")

	set.TwitterCard = metaContent(metas, "twitter:card")
	set.TwitterSite = metaContent(metas, "twitter:site")
	set.TwitterCreator = metaContent(metas, "twitter:creator")
	set.TwitterTitle = metaContent(metas, "twitter:title")
	set.TwitterDescription = metaContent(metas, "twitter:description")
	set.TwitterImage = metaContent(metas, "twitter:image")
	set.TwitterImageAlt = metaContent(metas, "twitter:image:alt")

	set.ArticleAuthor = metaContent(metas, "article:author")
	set.ArticlePublishedTime = metaContent(metas, "article:published_time")
	set.ArticleModifiedTime = metaContent(metas, "article:modified_time")
	set.ArticleSection = metaContent(metas, "article:section")
	set.ArticleTags = strings.Join(metaContentAll(metas, "article:tag"), ",")

	set.AppleMobileWebAppCapable = metaContent(metas, "apple-mobile-web-app-capable")
	set.AppleMobileWebAppTitle = metaContent(metas, "apple-mobile-web-app-title")
	set.AppleMobileWebAppStatusBarStyle = metaContent(metas, "apple-mobile-web-app-status-bar-style")
	set.AppleTouchIcon = linkHref(links, "apple-touch-icon", "apple-touch-icon-precomposed")

	set.MsApplicationTileColor = metaContent(metas, "msapplication-tilecolor")
	set.MsApplicationTileImage = metaContent(metas, "msapplication-tileimage")

	set.Favicon = linkHref(links, "icon", "shortcut icon")
	set.Copyright = metaContent(metas, "copyright")
	set.Rating = metaContent(metas, "rating")
	set.Referrer = metaContent(metas, "referrer")
	set.FormatDetection = metaContent(metas, "format-detection")

	// Asset links are the only fields resolved against the base URI.
	// Text fields and already-absolute URLs stay as found.
	base := doc.baseURI(set)
	set.Favicon = resolveRelative(set.Favicon, base)
	set.AppleTouchIcon = resolveRelative(set.AppleTouchIcon, base)
	set.MsApplicationTileImage = resolveRelative(set.MsApplicationTileImage, base)

	return set
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// extractCharset reads <meta charset="..."> specifically, not the legacy
// http-equiv content variant.
func extractCharset(metas []*html.Node) string {
	for _, meta := range metas {
		if charset := strings.TrimSpace(attr(meta, "charset")); charset != "" {
			return charset
		}
	}
	return ""
}

func extractLanguage(root *html.Node) string {
	return strings.TrimSpace(attr(findFirst(root, "html"), "lang"))
}

// baseURI derives the base for relative asset resolution. First match
// wins: absolute <base href>, then the canonical link's origin, then
// og:url's origin, then the source URL's origin. Empty when none apply.
func (d *Document) baseURI(set *types.MetaTagSet) string {
	if base := findFirst(d.root, "base"); base != nil {
		href := strings.TrimSpace(attr(base, "href"))
		if isAbsoluteURL(href) {
			return href
		}
	}
	if set != nil {
		if origin := urlutil.Origin(set.CanonicalURL); origin != "" {
			return origin
		}
		if origin := urlutil.Origin(set.OgURL); origin != "" {
			return origin
		}
	}
	return urlutil.Origin(d.sourceURL)
}

func isAbsoluteURL(raw string) bool {
	if raw == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	return err == nil && parsed.IsAbs() && parsed.Host != ""
}

// resolveRelative resolves value against base. Absolute values pass
// through, protocol-relative values take the base's scheme, and anything
// that fails to resolve is returned unchanged.
func resolveRelative(value, base string) string {
	if value == "" || isAbsoluteURL(value) {
		return value
	}

	if strings.HasPrefix(value, "//") {
		scheme := "https"
		if parsed, err := url.Parse(base); err == nil && parsed.Scheme != "" {
			scheme = parsed.Scheme
		}
		return scheme + ":" + value
	}

	if base == "" {
		return value
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return value
	}
	ref, err := url.Parse(value)
	if err != nil {
		return value
	}
	return baseURL.ResolveReference(ref).String()
}
