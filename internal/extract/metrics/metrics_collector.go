// Package metrics records extraction telemetry and exposes it to
// Prometheus scrapes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// MetricsCollector centralizes all metrics recording for the extract
// service. It is a nil-safe facade: a nil collector drops every record,
// so callers don't branch on whether metrics are enabled.
type MetricsCollector struct {
	prometheus *PrometheusMetrics
	logger     *zap.Logger
}

// NewMetricsCollector creates a new MetricsCollector instance.
func NewMetricsCollector(namespace string, logger *zap.Logger) *MetricsCollector {
	return &MetricsCollector{
		prometheus: NewPrometheusMetrics(namespace, logger),
		logger:     logger,
	}
}

// NewMetricsCollectorWithRegistry creates a MetricsCollector bound to an
// explicit registry. Tests use it to avoid the process-wide default.
func NewMetricsCollectorWithRegistry(namespace string, registry *prometheus.Registry, logger *zap.Logger) *MetricsCollector {
	return &MetricsCollector{
		prometheus: NewPrometheusMetricsWithRegistry(namespace, registry, logger),
		logger:     logger,
	}
}

// RecordExtractionSuccess records an extraction that produced data.
func (mc *MetricsCollector) RecordExtractionSuccess() {
	if mc != nil {
		mc.prometheus.RecordExtraction("success")
	}
}

// RecordExtractionEmpty records an extraction that found nothing.
func (mc *MetricsCollector) RecordExtractionEmpty() {
	if mc != nil {
		mc.prometheus.RecordExtraction("empty")
	}
}

// RecordExtractionFetchError records a failed document fetch.
func (mc *MetricsCollector) RecordExtractionFetchError() {
	if mc != nil {
		mc.prometheus.RecordExtraction("fetch_error")
	}
}

// RecordExtractionError records an internal extraction failure.
func (mc *MetricsCollector) RecordExtractionError() {
	if mc != nil {
		mc.prometheus.RecordExtraction("error")
	}
}

// RecordExtractionDuration records extraction duration in seconds.
func (mc *MetricsCollector) RecordExtractionDuration(seconds float64) {
	if mc != nil {
		mc.prometheus.RecordExtractionDuration(seconds)
	}
}

// RecordProbeResult records one image probe outcome.
func (mc *MetricsCollector) RecordProbeResult(isImage bool) {
	if mc == nil {
		return
	}
	if isImage {
		mc.prometheus.RecordProbe("image")
	} else {
		mc.prometheus.RecordProbe("not_image")
	}
}

// RecordCacheHit records a result cache hit.
func (mc *MetricsCollector) RecordCacheHit() {
	if mc != nil {
		mc.prometheus.RecordCacheHit()
	}
}

// RecordCacheMiss records a result cache miss.
func (mc *MetricsCollector) RecordCacheMiss() {
	if mc != nil {
		mc.prometheus.RecordCacheMiss()
	}
}

// RecordHTTPRequest records an HTTP request.
func (mc *MetricsCollector) RecordHTTPRequest(endpoint, status string) {
	if mc != nil {
		mc.prometheus.RecordHTTPRequest(endpoint, status)
	}
}

// RecordValidationError records a request validation error.
func (mc *MetricsCollector) RecordValidationError() {
	if mc != nil {
		mc.prometheus.RecordError("validation")
	}
}

// RecordFetchError records a document fetch error.
func (mc *MetricsCollector) RecordFetchError() {
	if mc != nil {
		mc.prometheus.RecordError("fetch")
	}
}

// RecordInternalError records an internal error.
func (mc *MetricsCollector) RecordInternalError() {
	if mc != nil {
		mc.prometheus.RecordError("internal")
	}
}

// ServeHTTP serves Prometheus metrics via HTTP.
func (mc *MetricsCollector) ServeHTTP(ctx *fasthttp.RequestCtx) {
	mc.prometheus.ServeHTTP(ctx)
}
