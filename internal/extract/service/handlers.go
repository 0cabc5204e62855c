package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/pagelens/engine/internal/common/requestid"
	"github.com/pagelens/engine/internal/extract/metrics"
	"github.com/pagelens/engine/pkg/types"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status       string `json:"status"`
	ServerID     string `json:"server_id"`
	CacheEnabled bool   `json:"cache_enabled"`
}

// writeJSONResponse writes a JSON response with proper error handling.
func writeJSONResponse(ctx *fasthttp.RequestCtx, statusCode int, response interface{}, path string, metricsCollector *metrics.MetricsCollector, logger *zap.Logger) {
	body, err := json.Marshal(response)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"success":false,"error":"Failed to marshal response"}`)
		ctx.SetContentType("application/json")
		metricsCollector.RecordHTTPRequest(path, "500")
		metricsCollector.RecordInternalError()
		logger.Error("Failed to marshal JSON response",
			zap.String("path", path),
			zap.Error(err))
		return
	}

	ctx.SetStatusCode(statusCode)
	ctx.SetBody(body)
	ctx.SetContentType("application/json")
	metricsCollector.RecordHTTPRequest(path, fmt.Sprintf("%d", statusCode))
}

// writeValidationError rejects a request before the pipeline runs.
func writeValidationError(ctx *fasthttp.RequestCtx, errorMsg, requestID string, metricsCollector *metrics.MetricsCollector, logger *zap.Logger) {
	resp := types.ExtractResponse{
		RequestID: requestID,
		Success:   false,
		Error:     errorMsg,
		Timestamp: time.Now().UTC(),
	}

	writeJSONResponse(ctx, fasthttp.StatusBadRequest, resp, "/extract", metricsCollector, logger)
	metricsCollector.RecordValidationError()
}

// HandleExtract processes POST /extract requests.
func HandleExtract(ctx *fasthttp.RequestCtx, extractor *Extractor, metricsCollector *metrics.MetricsCollector, logger *zap.Logger) {
	var req types.ExtractRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeValidationError(ctx, "Invalid JSON body", "", metricsCollector, logger)
		logger.Warn("Invalid request body", zap.Error(err))
		return
	}

	if req.URL == "" && req.HTML == "" {
		writeValidationError(ctx, "either url or html is required", req.RequestID, metricsCollector, logger)
		return
	}
	if req.URL != "" && req.HTML != "" {
		writeValidationError(ctx, "url and html are mutually exclusive", req.RequestID, metricsCollector, logger)
		return
	}

	req.RequestID = requestid.GenerateRequestID(req.RequestID)

	logger.Info("Starting extraction",
		zap.String("request_id", req.RequestID),
		zap.String("url", req.URL),
		zap.Int("html_bytes", len(req.HTML)),
		zap.Bool("collect_images", req.CollectImages),
		zap.Bool("validate_images", req.ValidateImages))

	resp := extractor.Extract(ctx, &req)

	writeJSONResponse(ctx, fasthttp.StatusOK, resp, "/extract", metricsCollector, logger)
}

// HandleHealth returns the current health status.
func HandleHealth(ctx *fasthttp.RequestCtx, serverID string, cacheEnabled bool, metricsCollector *metrics.MetricsCollector, logger *zap.Logger) {
	resp := HealthResponse{
		Status:       "ok",
		ServerID:     serverID,
		CacheEnabled: cacheEnabled,
	}

	writeJSONResponse(ctx, fasthttp.StatusOK, resp, "/health", metricsCollector, logger)
}
