package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

// PrometheusMetrics provides metrics collection for the extract service.
type PrometheusMetrics struct {
	// Extraction metrics
	extractionsTotal   *prometheus.CounterVec
	extractionDuration prometheus.Histogram

	// Image probe metrics
	probesTotal *prometheus.CounterVec

	// Result cache metrics
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// HTTP metrics
	httpRequests *prometheus.CounterVec

	// Error metrics
	errorsTotal *prometheus.CounterVec

	logger      *zap.Logger
	httpHandler func(*fasthttp.RequestCtx)
}

// NewPrometheusMetrics creates a Prometheus-based metrics collector.
func NewPrometheusMetrics(namespace string, logger *zap.Logger) *PrometheusMetrics {
	return NewPrometheusMetricsWithRegistry(namespace, prometheus.DefaultRegisterer, logger)
}

// NewPrometheusMetricsWithRegistry creates a metrics collector registered
// against a custom registry, useful for tests.
func NewPrometheusMetricsWithRegistry(namespace string, registerer prometheus.Registerer, logger *zap.Logger) *PrometheusMetrics {
	pm := &PrometheusMetrics{
		logger: logger,
	}

	pm.extractionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "es",
		Name:      "extractions_total",
		Help:      "Total number of extraction requests",
	}, []string{"status"}) // status: success, empty, fetch_error, error

	pm.extractionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "es",
		Name:      "extraction_duration_seconds",
		Help:      "Time spent extracting page metadata",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
	})

	pm.probesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "es",
		Name:      "image_probes_total",
		Help:      "Total image probes by result",
	}, []string{"result"}) // result: image, not_image

	pm.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "es",
		Name:      "result_cache_hits_total",
		Help:      "Total result cache hits",
	})

	pm.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "es",
		Name:      "result_cache_misses_total",
		Help:      "Total result cache misses",
	})

	pm.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "es",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint and status",
	}, []string{"endpoint", "status"})

	pm.errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "es",
		Name:      "errors_total",
		Help:      "Total errors by type",
	}, []string{"type"}) // type: validation, fetch, internal

	registerer.MustRegister(
		pm.extractionsTotal,
		pm.extractionDuration,
		pm.probesTotal,
		pm.cacheHits,
		pm.cacheMisses,
		pm.httpRequests,
		pm.errorsTotal,
	)

	gatherer, ok := registerer.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}
	pm.httpHandler = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	logger.Info("Extract service Prometheus metrics initialized")
	return pm
}

// RecordExtraction records an extraction outcome.
func (pm *PrometheusMetrics) RecordExtraction(status string) {
	pm.extractionsTotal.WithLabelValues(status).Inc()
}

// RecordExtractionDuration records extraction duration.
func (pm *PrometheusMetrics) RecordExtractionDuration(seconds float64) {
	pm.extractionDuration.Observe(seconds)
}

// RecordProbe records an image probe result.
func (pm *PrometheusMetrics) RecordProbe(result string) {
	pm.probesTotal.WithLabelValues(result).Inc()
}

// RecordCacheHit records a result cache hit.
func (pm *PrometheusMetrics) RecordCacheHit() {
	pm.cacheHits.Inc()
}

// RecordCacheMiss records a result cache miss.
func (pm *PrometheusMetrics) RecordCacheMiss() {
	pm.cacheMisses.Inc()
}

// RecordHTTPRequest records an HTTP request.
func (pm *PrometheusMetrics) RecordHTTPRequest(endpoint, status string) {
	pm.httpRequests.WithLabelValues(endpoint, status).Inc()
}

// RecordError records an error by type.
func (pm *PrometheusMetrics) RecordError(errorType string) {
	pm.errorsTotal.WithLabelValues(errorType).Inc()
}

// ServeHTTP serves Prometheus metrics via HTTP.
func (pm *PrometheusMetrics) ServeHTTP(ctx *fasthttp.RequestCtx) {
	pm.httpHandler(ctx)
}
