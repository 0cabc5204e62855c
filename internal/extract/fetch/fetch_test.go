package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDownloadPage(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("<html><head><title>ok</title></head></html>"))
	}))
	defer server.Close()

	f := New(Config{}, zap.NewNop())
	body, err := f.DownloadPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "<title>ok</title>")
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Contains(t, gotAccept, "text/html")
}

func TestDownloadPageNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := New(Config{}, zap.NewNop())
	_, err := f.DownloadPage(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestDownloadBytesLimitAndReferer(t *testing.T) {
	var gotReferer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		w.Write(make([]byte, 1024))
	}))
	defer server.Close()

	f := New(Config{}, zap.NewNop())
	body, contentType, err := f.DownloadBytes(context.Background(), server.URL, "https://example.com/some/page", 16)
	require.NoError(t, err)
	assert.Len(t, body, 16)
	assert.NotEmpty(t, contentType)
	assert.Equal(t, "https://example.com/", gotReferer)
}

func TestDownloadEmptyURL(t *testing.T) {
	f := New(Config{}, zap.NewNop())
	_, err := f.DownloadPage(context.Background(), "   ")
	assert.Error(t, err)
}

func TestDownloadBlockedPrivateIP(t *testing.T) {
	f := New(Config{BlockPrivateIPs: true}, zap.NewNop())
	_, err := f.DownloadPage(context.Background(), "http://127.0.0.1:9/x")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "blocked URL")
}
