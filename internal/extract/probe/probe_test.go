package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/pagelens/engine/internal/extract/fetch"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		contentType string
		format      Format
		ok          bool
	}{
		{
			name:        "png",
			data:        []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00},
			contentType: "image/png",
			format:      FormatPNG,
			ok:          true,
		},
		{
			name:        "jpeg",
			data:        []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00},
			contentType: "image/jpeg",
			format:      FormatJPEG,
			ok:          true,
		},
		{
			name:        "gif",
			data:        []byte("GIF89a......"),
			contentType: "image/gif",
			format:      FormatGIF,
			ok:          true,
		},
		{
			name:        "bmp",
			data:        []byte("BM\x00\x00"),
			contentType: "image/bmp",
			format:      FormatBMP,
			ok:          true,
		},
		{
			name:        "webp",
			data:        []byte("RIFF\x10\x00\x00\x00WEBPVP8 "),
			contentType: "image/webp",
			format:      FormatWebP,
			ok:          true,
		},
		{
			name:        "ico",
			data:        []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00},
			contentType: "image/x-icon",
			format:      FormatICO,
			ok:          true,
		},
		{
			name:        "tiff little endian",
			data:        []byte{0x49, 0x49, 0x2A, 0x00, 0x08},
			contentType: "image/tiff",
			format:      FormatTIFF,
			ok:          true,
		},
		{
			name:        "tiff big endian",
			data:        []byte{0x4D, 0x4D, 0x00, 0x2A, 0x08},
			contentType: "image/tiff",
			format:      FormatTIFF,
			ok:          true,
		},
		{
			name:        "mislabeled subtype still sniffed by bytes",
			data:        []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
			contentType: "image/jpeg",
			format:      FormatPNG,
			ok:          true,
		},
		{
			name:        "content type with charset parameter",
			data:        []byte{0xFF, 0xD8, 0xFF, 0xE0},
			contentType: "image/jpeg; charset=binary",
			format:      FormatJPEG,
			ok:          true,
		},
		{
			name:        "svg with declared type",
			data:        []byte("<svg xmlns=\"http://www.w3.org/2000/svg\"/>"),
			contentType: "image/svg+xml; charset=utf-8",
			format:      FormatSVG,
			ok:          true,
		},
		{
			name:        "svg-looking body with html type rejected",
			data:        []byte("<svg/>"),
			contentType: "text/html",
			format:      FormatUnknown,
			ok:          false,
		},
		{
			name:        "non-image content type rejected despite image bytes",
			data:        []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
			contentType: "application/octet-stream",
			format:      FormatUnknown,
			ok:          false,
		},
		{
			name:        "html error page rejected",
			data:        []byte("<html><body>404</body></html>"),
			contentType: "text/html",
			format:      FormatUnknown,
			ok:          false,
		},
		{
			name:        "riff without webp tag rejected",
			data:        []byte("RIFF\x10\x00\x00\x00WAVEfmt "),
			contentType: "image/webp",
			format:      FormatUnknown,
			ok:          false,
		},
		{
			name:        "too short",
			data:        []byte{0x89},
			contentType: "image/png",
			format:      FormatUnknown,
			ok:          false,
		},
		{
			name:   "empty",
			data:   nil,
			format: FormatUnknown,
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, ok := Sniff(tt.data, tt.contentType)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestProbe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/real.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
		w.Write(make([]byte, 64))
	})
	mux.HandleFunc("/fake.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not found</html>"))
	})
	mux.HandleFunc("/missing.png", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := fetch.New(fetch.Config{}, zap.NewNop())
	p := New(f, 5*time.Second, zap.NewNop())

	assert.True(t, p.Probe(context.Background(), server.URL+"/real.png", ""))
	assert.False(t, p.Probe(context.Background(), server.URL+"/fake.png", ""))
	assert.False(t, p.Probe(context.Background(), server.URL+"/missing.png", ""))
	assert.False(t, p.Probe(context.Background(), "not a url", ""))
	assert.False(t, p.Probe(context.Background(), "ftp://example.com/a.png", ""))
}
