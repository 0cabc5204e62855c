package types

import "time"

// MetaTagSet is the fixed schema of meta/link values extracted from a page.
// Every field is optional; an empty string means the tag was not found.
type MetaTagSet struct {
	// Basic meta tags
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	Keywords        string `json:"keywords,omitempty"`
	Author          string `json:"author,omitempty"`
	Generator       string `json:"generator,omitempty"`
	Charset         string `json:"charset,omitempty"`
	Viewport        string `json:"viewport,omitempty"`
	Robots          string `json:"robots,omitempty"`
	CanonicalURL    string `json:"canonical_url,omitempty"`
	Language        string `json:"language,omitempty"`
	ThemeColor      string `json:"theme_color,omitempty"`
	ColorScheme     string `json:"color_scheme,omitempty"`
	ApplicationName string `json:"application_name,omitempty"`

	// Open Graph
	OgTitle       string `json:"og_title,omitempty"`
	OgDescription string `json:"og_description,omitempty"`
	OgType        string `json:"og_type,omitempty"`
	OgURL         string `json:"og_url,omitempty"`
	OgImage       string `json:"og_image,omitempty"`
	OgImageAlt    string `json:"og_image_alt,omitempty"`
	OgImageWidth  string `json:"og_image_width,omitempty"`
	OgImageHeight string `json:"og_image_height,omitempty"`
	OgSiteName    string `json:"og_site_name,omitempty"`
	OgLocale      string `json:"og_locale,omitempty"`
	OgVideo       string `json:"og_video,omitempty"`
	OgVideoURL    string `json:"og_video_url,omitempty"`
	OgVideoType   string `json:"og_video_type,omitempty"`

	// Twitter Card
	TwitterCard        string `json:"twitter_card,omitempty"`
	TwitterSite        string `json:"twitter_site,omitempty"`
	TwitterCreator     string `json:"twitter_creator,omitempty"`
	TwitterTitle       string `json:"twitter_title,omitempty"`
	TwitterDescription string `json:"twitter_description,omitempty"`
	TwitterImage       string `json:"twitter_image,omitempty"`
	TwitterImageAlt    string `json:"twitter_image_alt,omitempty"`

	// Article (Open Graph)
	ArticleAuthor        string `json:"article_author,omitempty"`
	ArticlePublishedTime string `json:"article_published_time,omitempty"`
	ArticleModifiedTime  string `json:"article_modified_time,omitempty"`
	ArticleSection       string `json:"article_section,omitempty"`
	ArticleTags          string `json:"article_tags,omitempty"`

	// Apple specific
	AppleMobileWebAppCapable        string `json:"apple_mobile_web_app_capable,omitempty"`
	AppleMobileWebAppTitle          string `json:"apple_mobile_web_app_title,omitempty"`
	AppleMobileWebAppStatusBarStyle string `json:"apple_mobile_web_app_status_bar_style,omitempty"`
	AppleTouchIcon                  string `json:"apple_touch_icon,omitempty"`

	// Microsoft specific
	MsApplicationTileColor string `json:"msapplication_tile_color,omitempty"`
	MsApplicationTileImage string `json:"msapplication_tile_image,omitempty"`

	// Other common tags
	Favicon         string `json:"favicon,omitempty"`
	Copyright       string `json:"copyright,omitempty"`
	Rating          string `json:"rating,omitempty"`
	Referrer        string `json:"referrer,omitempty"`
	FormatDetection string `json:"format_detection,omitempty"`
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// EffectiveTitle returns the page title with Open Graph > basic > Twitter
// priority. Open Graph wins because it is what social previews show.
func (m *MetaTagSet) EffectiveTitle() string {
	return firstNonEmpty(m.OgTitle, m.Title, m.TwitterTitle)
}

// EffectiveDescription returns the description with Open Graph > basic > Twitter priority.
func (m *MetaTagSet) EffectiveDescription() string {
	return firstNonEmpty(m.OgDescription, m.Description, m.TwitterDescription)
}

// EffectiveImage returns the representative image with Open Graph > Twitter priority.
func (m *MetaTagSet) EffectiveImage() string {
	return firstNonEmpty(m.OgImage, m.TwitterImage)
}

// EffectiveImageAlt returns the image alt text with Open Graph > Twitter priority.
func (m *MetaTagSet) EffectiveImageAlt() string {
	return firstNonEmpty(m.OgImageAlt, m.TwitterImageAlt)
}

// EffectiveAuthor returns the author with basic > article priority.
func (m *MetaTagSet) EffectiveAuthor() string {
	return firstNonEmpty(m.Author, m.ArticleAuthor)
}

// EffectiveCanonicalURL returns the canonical URL with link > og:url priority.
func (m *MetaTagSet) EffectiveCanonicalURL() string {
	return firstNonEmpty(m.CanonicalURL, m.OgURL)
}

// IsEmpty reports whether no field of the set was populated.
func (m *MetaTagSet) IsEmpty() bool {
	return *m == MetaTagSet{}
}

// HTMLImage is one image candidate discovered in a document.
// Background-sourced candidates (CSS background-image) carry only Src,
// Width and Height; the <img>-specific fields stay nil.
type HTMLImage struct {
	Src        string  `json:"src"`
	Alt        *string `json:"alt,omitempty"`
	Title      *string `json:"title,omitempty"`
	Width      *int    `json:"width,omitempty"`
	Height     *int    `json:"height,omitempty"`
	SrcSet     *string `json:"srcset,omitempty"`
	Sizes      *string `json:"sizes,omitempty"`
	Loading    *string `json:"loading,omitempty"`
	Background bool    `json:"background,omitempty"`
}

// SortWidth returns the width used for ordering, treating unknown as zero.
func (i *HTMLImage) SortWidth() int {
	if i.Width == nil {
		return 0
	}
	return *i.Width
}

// ExtractRequest is the body of POST /extract.
// Exactly one of URL and HTML must be set. SourceURL only applies to
// caller-supplied HTML and enables relative link resolution.
type ExtractRequest struct {
	RequestID         string   `json:"request_id,omitempty"`
	URL               string   `json:"url,omitempty"`
	HTML              string   `json:"html,omitempty"`
	SourceURL         string   `json:"source_url,omitempty"`
	CollectImages     bool     `json:"collect_images,omitempty"`
	ExcludeExtensions []string `json:"exclude_extensions,omitempty"`
	ValidateImages    bool     `json:"validate_images,omitempty"`
}

// ExtractResponse is the result of one extraction call.
// Loaded distinguishes "fetched and parsed" from "nothing retrieved";
// callers that need to tell "no data found" from "fetch failed" check it
// instead of relying on the HTTP status.
type ExtractResponse struct {
	RequestID    string      `json:"request_id"`
	Success      bool        `json:"success"`
	Error        string      `json:"error,omitempty"`
	Loaded       bool        `json:"loaded"`
	SourceURL    string      `json:"source_url,omitempty"`
	Meta         *MetaTagSet `json:"meta,omitempty"`
	Images       []HTMLImage `json:"images,omitempty"`
	PreviewImage string      `json:"preview_image,omitempty"`
	Cached       bool        `json:"cached,omitempty"`
	Duration     float64     `json:"duration_seconds,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}

// Cache payload compression algorithms.
const (
	CompressionNone   = "none"
	CompressionSnappy = "snappy"
	CompressionLZ4    = "lz4"
)

// CompressionMinSize is the payload size below which compression is skipped.
const CompressionMinSize = 512
