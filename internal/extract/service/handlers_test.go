package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/pagelens/engine/internal/extract/fetch"
	"github.com/pagelens/engine/internal/extract/probe"
	"github.com/pagelens/engine/pkg/types"
)

func postExtract(t *testing.T, body string) *fasthttp.RequestCtx {
	t.Helper()

	f := fetch.New(fetch.Config{}, zap.NewNop())
	p := probe.New(f, time.Second, zap.NewNop())
	extractor := NewExtractor(f, p, nil, nil, 1, zap.NewNop())
	handler := CreateHTTPHandler(extractor, "test-1", false, nil, zap.NewNop())

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/extract")
	ctx.Request.Header.SetMethod("POST")
	ctx.Request.SetBodyString(body)

	handler(ctx)
	return ctx
}

func TestHandleExtractFromHTML(t *testing.T) {
	ctx := postExtract(t, `{
		"html": "<html><head><meta property=\"og:title\" content=\"Hello\"></head></html>",
		"request_id": "abc 123"
	}`)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp types.ExtractResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Loaded)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, "Hello", resp.Meta.OgTitle)
	// The custom ID is sanitized and prefixed for uniqueness.
	assert.Contains(t, resp.RequestID, "abc-123")
}

func TestHandleExtractValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "invalid json",
			body:    "{not json",
			wantErr: "Invalid JSON body",
		},
		{
			name:    "neither url nor html",
			body:    `{}`,
			wantErr: "either url or html is required",
		},
		{
			name:    "both url and html",
			body:    `{"url":"https://example.com","html":"<html></html>"}`,
			wantErr: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := postExtract(t, tt.body)
			assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

			var resp types.ExtractResponse
			require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.wantErr)
		})
	}
}

func TestHandleHealth(t *testing.T) {
	f := fetch.New(fetch.Config{}, zap.NewNop())
	p := probe.New(f, time.Second, zap.NewNop())
	extractor := NewExtractor(f, p, nil, nil, 1, zap.NewNop())
	handler := CreateHTTPHandler(extractor, "test-1", true, nil, zap.NewNop())

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/health")
	ctx.Request.Header.SetMethod("GET")
	handler(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test-1", resp.ServerID)
	assert.True(t, resp.CacheEnabled)
}

func TestHandleNotFound(t *testing.T) {
	f := fetch.New(fetch.Config{}, zap.NewNop())
	p := probe.New(f, time.Second, zap.NewNop())
	extractor := NewExtractor(f, p, nil, nil, 1, zap.NewNop())
	handler := CreateHTTPHandler(extractor, "test-1", false, nil, zap.NewNop())

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/nope")
	ctx.Request.Header.SetMethod("GET")
	handler(ctx)

	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}
