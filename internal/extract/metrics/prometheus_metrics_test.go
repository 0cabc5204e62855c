package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

func TestPrometheusMetrics_Recording(t *testing.T) {
	registry := prometheus.NewRegistry()
	pm := NewPrometheusMetricsWithRegistry("pagelens", registry, zap.NewNop())

	pm.RecordExtraction("success")
	pm.RecordExtraction("fetch_error")
	pm.RecordExtractionDuration(0.25)
	pm.RecordProbe("image")
	pm.RecordProbe("not_image")
	pm.RecordCacheHit()
	pm.RecordCacheMiss()
	pm.RecordHTTPRequest("/extract", "200")
	pm.RecordError("validation")

	// Recording must not panic and metrics must be gatherable.
	families, err := registry.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestPrometheusMetrics_HTTPEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	pm := NewPrometheusMetricsWithRegistry("pagelens", registry, zap.NewNop())

	pm.RecordExtraction("success")

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/metrics")
	ctx.Request.Header.SetMethod("GET")

	pm.ServeHTTP(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "pagelens_es_extractions_total")
}

func TestMetricsCollectorErrorRecording(t *testing.T) {
	mc := NewMetricsCollectorWithRegistry("pagelens", prometheus.NewRegistry(), zap.NewNop())

	mc.RecordValidationError()
	mc.RecordFetchError()
	mc.RecordFetchError()
	mc.RecordInternalError()

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/metrics")
	ctx.Request.Header.SetMethod("GET")
	mc.ServeHTTP(ctx)

	body := string(ctx.Response.Body())
	assert.Contains(t, body, `pagelens_es_errors_total{type="validation"} 1`)
	assert.Contains(t, body, `pagelens_es_errors_total{type="fetch"} 2`)
	assert.Contains(t, body, `pagelens_es_errors_total{type="internal"} 1`)
}

func TestMetricsCollectorNilSafe(t *testing.T) {
	var mc *MetricsCollector

	mc.RecordExtractionSuccess()
	mc.RecordExtractionDuration(1.0)
	mc.RecordProbeResult(true)
	mc.RecordCacheHit()
	mc.RecordCacheMiss()
	mc.RecordHTTPRequest("/extract", "200")
	mc.RecordValidationError()
	mc.RecordFetchError()
	mc.RecordInternalError()
}
