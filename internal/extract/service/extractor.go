// Package service wires the extraction pipeline behind the HTTP API.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pagelens/engine/internal/common/urlutil"
	"github.com/pagelens/engine/internal/extract/cache"
	"github.com/pagelens/engine/internal/extract/fetch"
	"github.com/pagelens/engine/internal/extract/metrics"
	"github.com/pagelens/engine/internal/extract/page"
	"github.com/pagelens/engine/internal/extract/probe"
	"github.com/pagelens/engine/pkg/types"
)

// Extractor runs the full extraction pipeline for one request: fetch or
// accept markup, parse, pull metadata and image candidates, pick a
// preview. Every stage is best-effort; the response always comes back,
// possibly empty.
type Extractor struct {
	fetcher      *fetch.Fetcher
	prober       *probe.Prober
	cache        *cache.ResultCache
	metrics      *metrics.MetricsCollector
	probeWorkers int
	logger       *zap.Logger
}

// NewExtractor creates an extractor. cache and metricsCollector may be
// nil, disabling result caching and telemetry respectively.
func NewExtractor(
	fetcher *fetch.Fetcher,
	prober *probe.Prober,
	resultCache *cache.ResultCache,
	metricsCollector *metrics.MetricsCollector,
	probeWorkers int,
	logger *zap.Logger,
) *Extractor {
	if probeWorkers < 1 {
		probeWorkers = 1
	}
	return &Extractor{
		fetcher:      fetcher,
		prober:       prober,
		cache:        resultCache,
		metrics:      metricsCollector,
		probeWorkers: probeWorkers,
		logger:       logger,
	}
}

// meteredProber counts probe outcomes while delegating to the real prober.
type meteredProber struct {
	prober  *probe.Prober
	metrics *metrics.MetricsCollector
}

func (mp meteredProber) Probe(ctx context.Context, imageURL, refererURL string) bool {
	ok := mp.prober.Probe(ctx, imageURL, refererURL)
	mp.metrics.RecordProbeResult(ok)
	return ok
}

// Extract processes one request end to end.
func (e *Extractor) Extract(ctx context.Context, req *types.ExtractRequest) *types.ExtractResponse {
	startTime := time.Now().UTC()

	resp := &types.ExtractResponse{
		RequestID: req.RequestID,
		Timestamp: startTime,
	}
	defer func() {
		resp.Duration = time.Since(startTime).Seconds()
		e.metrics.RecordExtractionDuration(resp.Duration)
	}()

	rawHTML := req.HTML
	sourceURL := req.SourceURL

	if req.URL != "" {
		// Validation only; the fetch uses the URL as given so hosts that
		// are http-only or carry explicit ports stay reachable.
		if _, valid := urlutil.Normalize(req.URL); !valid {
			resp.Error = fmt.Sprintf("invalid URL: %s", req.URL)
			e.metrics.RecordExtractionError()
			return resp
		}
		sourceURL = req.URL

		// Only URL-driven requests hit the result cache; caller-supplied
		// markup has no stable identity to key on.
		if e.cache != nil {
			if cached := e.cache.Get(ctx, req); cached != nil {
				e.metrics.RecordCacheHit()
				cached.RequestID = req.RequestID
				cached.Cached = true
				e.logger.Debug("Result cache hit",
					zap.String("request_id", req.RequestID),
					zap.String("url", sourceURL))
				*resp = *cached
				return resp
			}
			e.metrics.RecordCacheMiss()
		}

		body, err := e.fetcher.DownloadPage(ctx, req.URL)
		if err != nil {
			resp.Error = fmt.Sprintf("failed to fetch page: %v", err)
			e.metrics.RecordExtractionFetchError()
			e.metrics.RecordFetchError()
			e.logger.Warn("Page fetch failed",
				zap.String("request_id", req.RequestID),
				zap.String("url", req.URL),
				zap.Error(err))
			return resp
		}
		rawHTML = body
	}

	resp.Success = true
	resp.SourceURL = sourceURL

	doc := page.FromHTML(rawHTML, sourceURL)
	resp.Loaded = doc.Loaded()

	meta := page.ExtractMeta(doc)
	if !meta.IsEmpty() {
		resp.Meta = meta
	}

	validator := meteredProber{prober: e.prober, metrics: e.metrics}

	if req.CollectImages {
		resp.Images = page.CollectImages(ctx, doc, page.CollectOptions{
			ExcludeExtensions: req.ExcludeExtensions,
			Validate:          req.ValidateImages,
			Validator:         validator,
			ProbeWorkers:      e.probeWorkers,
		})
	}

	// The crawl fallback probes the network, so it only runs for
	// requests that opted into image validation.
	if req.ValidateImages {
		resp.PreviewImage = page.SelectPreviewWithFallback(ctx, doc, meta, validator)
	} else {
		resp.PreviewImage = page.SelectPreview(doc, meta)
	}

	if resp.Meta == nil && len(resp.Images) == 0 && resp.PreviewImage == "" {
		e.metrics.RecordExtractionEmpty()
	} else {
		e.metrics.RecordExtractionSuccess()
	}

	e.logger.Debug("Extraction completed",
		zap.String("request_id", req.RequestID),
		zap.String("source_url", sourceURL),
		zap.Bool("loaded", resp.Loaded),
		zap.Int("images", len(resp.Images)),
		zap.Bool("has_meta", resp.Meta != nil),
		zap.String("preview_image", resp.PreviewImage))

	if req.URL != "" && e.cache != nil && resp.Loaded {
		e.cache.Set(ctx, req, resp)
	}

	return resp
}
