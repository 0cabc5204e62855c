package page

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/pagelens/engine/internal/common/urlutil"
	"github.com/pagelens/engine/pkg/types"
)

var (
	backgroundImagePattern = regexp.MustCompile(`(?i)background-image\s*:\s*url\(\s*['"]?([^'")\s]+)['"]?\s*\)`)

	// CDN conventions that encode the rendered size in the URL itself.
	// s(w:1280,h:720) token syntax and /1280x720. or _1280x720 path
	// segments. Coincidental digit runs can misfire; candidates carry a
	// best-effort size, not a guarantee.
	cdnTokenSizePattern = regexp.MustCompile(`s\(w:(\d+),h:(\d+)\)`)
	cdnPathSizePattern  = regexp.MustCompile(`[/_](\d{3,4})x(\d{3,4})[._]`)
)

// ImageValidator verifies that a URL serves real image bytes.
type ImageValidator interface {
	Probe(ctx context.Context, imageURL, refererURL string) bool
}

// CollectOptions controls one image collection pass.
type CollectOptions struct {
	// ExcludeExtensions drops candidates whose URL ends with one of these
	// extensions, compared case-insensitively. Entries may be given with
	// or without the leading dot.
	ExcludeExtensions []string

	// Validator, when set together with Validate, probes each surviving
	// candidate and drops the ones that do not serve image bytes.
	Validator ImageValidator
	Validate  bool

	// ProbeWorkers bounds concurrent probes. Zero or one means serial.
	ProbeWorkers int
}

// CollectImages enumerates image candidates from <img> elements and inline
// CSS background-image declarations, then filters, dedupes and orders them
// by descending width. An unloaded document yields nil.
func CollectImages(ctx context.Context, doc *Document, opts CollectOptions) []types.HTMLImage {
	if !doc.Loaded() {
		return nil
	}

	exclude := normalizeExtensions(opts.ExcludeExtensions)

	var candidates []types.HTMLImage
	for _, img := range findAll(doc.root, "img") {
		src := strings.TrimSpace(attr(img, "src"))
		normalized, ok := acceptCandidate(src, exclude)
		if !ok {
			continue
		}
		candidates = append(candidates, buildImgCandidate(img, normalized))
	}

	for _, node := range elementsWithStyle(doc) {
		match := backgroundImagePattern.FindStringSubmatch(attr(node, "style"))
		if match == nil {
			continue
		}
		normalized, ok := acceptCandidate(strings.TrimSpace(match[1]), exclude)
		if !ok {
			continue
		}
		width := positiveIntAttr(node, "width")
		height := positiveIntAttr(node, "height")
		if width == nil && height == nil {
			width, height = sizeFromURL(normalized)
		}
		candidates = append(candidates, types.HTMLImage{
			Src:        normalized,
			Width:      width,
			Height:     height,
			Background: true,
		})
	}

	if opts.Validate && opts.Validator != nil {
		candidates = probeCandidates(ctx, candidates, opts, doc.SourceURL())
	}

	candidates = dedupeBySrc(candidates)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].SortWidth() > candidates[j].SortWidth()
	})
	return candidates
}

// acceptCandidate filters and normalizes one raw URL. Protocol-relative
// URLs are repaired with https before validation; anything the URL
// classifier rejects is dropped.
func acceptCandidate(raw string, exclude []string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	if isExcluded(raw, exclude) {
		return "", false
	}
	normalized, valid := urlutil.Normalize(raw)
	if !valid {
		return "", false
	}
	return normalized, true
}

// elementsWithStyle returns every element carrying an inline style
// attribute, the only place CSS background images are looked for.
func elementsWithStyle(doc *Document) []*html.Node {
	var results []*html.Node
	walk(doc.root, func(n *html.Node) bool {
		if hasAttr(n, "style") {
			results = append(results, n)
		}
		return true
	})
	return results
}

func optionalAttr(node *html.Node, name string) *string {
	if !hasAttr(node, name) {
		return nil
	}
	value := attr(node, name)
	return &value
}

func positiveIntAttr(node *html.Node, name string) *int {
	value, err := strconv.Atoi(strings.TrimSpace(attr(node, name)))
	if err != nil || value <= 0 {
		return nil
	}
	return &value
}

func buildImgCandidate(img *html.Node, src string) types.HTMLImage {
	candidate := types.HTMLImage{
		Src:     src,
		Alt:     optionalAttr(img, "alt"),
		Title:   optionalAttr(img, "title"),
		SrcSet:  optionalAttr(img, "srcset"),
		Sizes:   optionalAttr(img, "sizes"),
		Loading: optionalAttr(img, "loading"),
	}

	candidate.Width = positiveIntAttr(img, "width")
	candidate.Height = positiveIntAttr(img, "height")
	if candidate.Width == nil && candidate.Height == nil {
		candidate.Width, candidate.Height = sizeFromURL(src)
	}
	return candidate
}

// probeCandidates keeps only candidates whose URL serves image bytes.
// Probes run on a bounded worker pool; result order does not depend on
// probe completion order since the keep flags are indexed.
func probeCandidates(ctx context.Context, candidates []types.HTMLImage, opts CollectOptions, refererURL string) []types.HTMLImage {
	workers := opts.ProbeWorkers
	if workers < 1 {
		workers = 1
	}

	keep := make([]bool, len(candidates))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			keep[idx] = opts.Validator.Probe(ctx, candidates[idx].Src, refererURL)
		}(i)
	}
	wg.Wait()

	result := candidates[:0]
	for i, candidate := range candidates {
		if keep[i] {
			result = append(result, candidate)
		}
	}
	return result
}

func dedupeBySrc(candidates []types.HTMLImage) []types.HTMLImage {
	seen := make(map[string]struct{}, len(candidates))
	result := candidates[:0]
	for _, candidate := range candidates {
		if _, dup := seen[candidate.Src]; dup {
			continue
		}
		seen[candidate.Src] = struct{}{}
		result = append(result, candidate)
	}
	return result
}

// sizeFromURL tries the known CDN size conventions against the URL.
func sizeFromURL(src string) (*int, *int) {
	match := cdnTokenSizePattern.FindStringSubmatch(src)
	if match == nil {
		match = cdnPathSizePattern.FindStringSubmatch(src)
	}
	if match == nil {
		return nil, nil
	}
	width, err1 := strconv.Atoi(match[1])
	height, err2 := strconv.Atoi(match[2])
	if err1 != nil || err2 != nil {
		return nil, nil
	}
	return &width, &height
}

func normalizeExtensions(extensions []string) []string {
	var result []string
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		result = append(result, ext)
	}
	return result
}

func isExcluded(rawURL string, exclude []string) bool {
	lower := strings.ToLower(rawURL)
	for _, ext := range exclude {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
