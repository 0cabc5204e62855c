// Package probe verifies that a URL points at a real image by downloading
// the first bytes of the resource and sniffing well-known magic numbers.
package probe

import (
	"bytes"
	"context"
	"mime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pagelens/engine/internal/common/urlutil"
	"github.com/pagelens/engine/internal/extract/fetch"
)

// Format identifies a detected image container format.
type Format string

const (
	FormatPNG     Format = "png"
	FormatJPEG    Format = "jpeg"
	FormatGIF     Format = "gif"
	FormatBMP     Format = "bmp"
	FormatWebP    Format = "webp"
	FormatICO     Format = "ico"
	FormatTIFF    Format = "tiff"
	FormatSVG     Format = "svg"
	FormatUnknown Format = ""
)

// sniffBytes is how much of the resource is downloaded per probe. The
// longest signature checked (RIFF....WEBP) needs 12 bytes; the rest is
// slack for servers that front the body with a BOM or whitespace.
const sniffBytes = 512

// Prober checks candidate image URLs against real responses.
type Prober struct {
	fetcher *fetch.Fetcher
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a prober that downloads via the given fetcher.
func New(fetcher *fetch.Fetcher, timeout time.Duration, logger *zap.Logger) *Prober {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Prober{
		fetcher: fetcher,
		timeout: timeout,
		logger:  logger,
	}
}

// Probe reports whether imageURL serves bytes recognizable as an image.
// Any network or HTTP failure counts as not-an-image; the probe never
// returns an error since callers only need a keep/drop signal.
func (p *Prober) Probe(ctx context.Context, imageURL, refererURL string) bool {
	format, ok := p.Detect(ctx, imageURL, refererURL)
	if ok {
		p.logger.Debug("Image probe succeeded",
			zap.String("url", imageURL),
			zap.String("format", string(format)))
	}
	return ok
}

// Detect downloads the head of the resource and returns the sniffed format.
func (p *Prober) Detect(ctx context.Context, imageURL, refererURL string) (Format, bool) {
	if _, valid := urlutil.Normalize(imageURL); !valid {
		return FormatUnknown, false
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	data, contentType, err := p.fetcher.DownloadBytes(probeCtx, imageURL, refererURL, sniffBytes)
	if err != nil {
		p.logger.Debug("Image probe download failed",
			zap.String("url", imageURL),
			zap.Error(err))
		return FormatUnknown, false
	}

	return Sniff(data, contentType)
}

// Sniff inspects leading bytes and the response Content-Type and returns
// the image format they indicate. The declared type must be in the image/
// family before bytes are consulted; within that family the bytes decide,
// since servers often declare the wrong subtype. SVG has no magic number,
// so it is only accepted when the body starts with '<' and the server
// declares image/svg+xml exactly.
func Sniff(data []byte, contentType string) (Format, bool) {
	if len(data) < 2 {
		return FormatUnknown, false
	}
	if !strings.HasPrefix(mediaType(contentType), "image/") {
		return FormatUnknown, false
	}

	switch {
	case len(data) >= 8 && bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return FormatPNG, true
	case len(data) >= 3 && bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return FormatJPEG, true
	case len(data) >= 3 && bytes.HasPrefix(data, []byte("GIF")):
		return FormatGIF, true
	case bytes.HasPrefix(data, []byte("BM")):
		return FormatBMP, true
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return FormatWebP, true
	case len(data) >= 4 && bytes.HasPrefix(data, []byte{0x00, 0x00, 0x01, 0x00}):
		return FormatICO, true
	case len(data) >= 4 && (bytes.HasPrefix(data, []byte{0x49, 0x49, 0x2A, 0x00}) ||
		bytes.HasPrefix(data, []byte{0x4D, 0x4D, 0x00, 0x2A})):
		return FormatTIFF, true
	case data[0] == '<' && isSVGContentType(contentType):
		return FormatSVG, true
	}

	return FormatUnknown, false
}

func isSVGContentType(contentType string) bool {
	return mediaType(contentType) == "image/svg+xml"
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.TrimSpace(strings.ToLower(contentType))
	}
	return mt
}
