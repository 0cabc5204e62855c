package service

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/pagelens/engine/internal/common/httputil"
	"github.com/pagelens/engine/internal/extract/metrics"
)

// CreateHTTPHandler creates the main HTTP request handler with routing.
func CreateHTTPHandler(extractor *Extractor, serverID string, cacheEnabled bool, metricsCollector *metrics.MetricsCollector, logger *zap.Logger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		path := string(ctx.Path())
		method := string(ctx.Method())

		switch {
		case method == "POST" && path == "/extract":
			HandleExtract(ctx, extractor, metricsCollector, logger)
		case method == "GET" && path == "/health":
			HandleHealth(ctx, serverID, cacheEnabled, metricsCollector, logger)
		default:
			httputil.JSONError(ctx, "not found", fasthttp.StatusNotFound)
			metricsCollector.RecordHTTPRequest(path, "404")
		}
	}
}
