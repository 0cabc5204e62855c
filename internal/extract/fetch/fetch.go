// Package fetch downloads page HTML and image bytes over HTTP with a
// pooled client and browser-like request headers.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pagelens/engine/internal/common/urlutil"
)

const (
	// Request headers mimic a desktop Chromium browser so servers that
	// vary markup by client return their normal page.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/144.0.0.0 Safari/537.36 Edg/144.0.0.0"
	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	acceptLanguage = "en-US,en;q=0.9"

	// Caps on response body size. Pages and probes have different ceilings
	// since a probe only needs the first bytes of the file.
	maxPageBytes = 10 << 20
)

// Config controls fetcher behavior.
type Config struct {
	Timeout         time.Duration
	UserAgent       string
	BlockPrivateIPs bool
	MaxIdleConns    int
	MaxConnsPerHost int
	IdleConnTimeout time.Duration
}

// Fetcher downloads remote resources with a shared connection pool.
type Fetcher struct {
	httpClient      *http.Client
	userAgent       string
	blockPrivateIPs bool
	logger          *zap.Logger
}

// New creates a fetcher. Zero config fields fall back to sane defaults.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxConnsPerHost <= 0 {
		cfg.MaxConnsPerHost = 10
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        cfg.MaxIdleConns,
				MaxIdleConnsPerHost: cfg.MaxConnsPerHost,
				IdleConnTimeout:     cfg.IdleConnTimeout,
			},
		},
		userAgent:       cfg.UserAgent,
		blockPrivateIPs: cfg.BlockPrivateIPs,
		logger:          logger,
	}
}

// DownloadPage fetches the HTML document at pageURL and returns its body as
// a string. Non-200 responses and oversized bodies are errors.
func (f *Fetcher) DownloadPage(ctx context.Context, pageURL string) (string, error) {
	body, _, err := f.download(ctx, pageURL, "", maxPageBytes)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DownloadBytes fetches up to limit bytes of the resource at rawURL and
// returns the bytes read together with the response Content-Type. A Referer
// header derived from refererURL's origin is sent when available, since
// some image hosts reject refererless requests.
func (f *Fetcher) DownloadBytes(ctx context.Context, rawURL, refererURL string, limit int64) ([]byte, string, error) {
	return f.download(ctx, rawURL, refererURL, limit)
}

func (f *Fetcher) download(ctx context.Context, rawURL, refererURL string, limit int64) ([]byte, string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, "", fmt.Errorf("URL is empty")
	}

	if f.blockPrivateIPs {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return nil, "", fmt.Errorf("invalid URL: %w", err)
		}
		if err := urlutil.ValidateHostNotPrivateIP(parsed.Hostname()); err != nil {
			return nil, "", fmt.Errorf("blocked URL: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHTML)
	req.Header.Set("Accept-Language", acceptLanguage)
	if refererURL != "" {
		if origin := urlutil.Origin(refererURL); origin != "" {
			req.Header.Set("Referer", origin+"/")
		}
	}

	startTime := time.Now().UTC()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Debug("HTTP request failed",
			zap.String("url", rawURL),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err))
		return nil, "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused.
		io.CopyN(io.Discard, resp.Body, 512) //nolint:errcheck
		return nil, "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	f.logger.Debug("Download completed",
		zap.String("url", rawURL),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(startTime)))

	return body, resp.Header.Get("Content-Type"), nil
}
