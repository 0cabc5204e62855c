package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/pagelens/engine/internal/common/config"
	logutil "github.com/pagelens/engine/internal/common/logger"
	"github.com/pagelens/engine/internal/common/metricsserver"
	"github.com/pagelens/engine/internal/common/redis"
	"github.com/pagelens/engine/internal/extract/cache"
	"github.com/pagelens/engine/internal/extract/fetch"
	"github.com/pagelens/engine/internal/extract/metrics"
	"github.com/pagelens/engine/internal/extract/probe"
	"github.com/pagelens/engine/internal/extract/service"
)

func main() {
	configPath := flag.String("c", "configs/extract-service.yaml",
		"Path to extract service configuration file")
	flag.Parse()

	// Initialize logger (will be reconfigured from config)
	initialLogger, err := logutil.NewDefaultLogger()
	if err != nil {
		panic(err)
	}

	initialLogger.Info("Loading configuration", zap.String("path", *configPath))

	absPath, err := config.GetConfigPath(*configPath)
	if err != nil {
		initialLogger.Fatal("Invalid config path", zap.Error(err))
	}

	configMgr, err := config.NewManager(absPath, initialLogger.Logger)
	if err != nil {
		initialLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	cfg := configMgr.GetConfig()

	// Reconfigure logger based on config settings (uses INFO level during startup if configured level is higher)
	dynamicLogger, err := logutil.NewLoggerWithStartupOverride(cfg.Log)
	if err != nil {
		initialLogger.Fatal("Failed to create configured logger", zap.Error(err))
	}

	logger := dynamicLogger.Logger

	logger.Info("Extract Service starting",
		zap.String("server", cfg.Server.ID),
		zap.String("listen", cfg.Server.Listen),
		zap.Bool("cache", cfg.Cache.Enabled))

	// Result cache is optional; the service runs without Redis when disabled.
	var resultCache *cache.ResultCache
	if cfg.Cache.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()

		resultCache = cache.New(redisClient, time.Duration(cfg.Cache.TTL), cfg.Cache.Compression, logger)
	}

	metricsNamespace := cfg.Metrics.Namespace
	if metricsNamespace == "" {
		metricsNamespace = "pagelens"
	}
	metricsCollector := metrics.NewMetricsCollector(metricsNamespace, logger)

	metricsServer, err := metricsserver.StartMetricsServer(
		cfg.Metrics.Enabled,
		cfg.Metrics.Listen,
		cfg.Metrics.Path,
		metricsCollector,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to start metrics server", zap.Error(err))
	}

	fetcher := fetch.New(fetch.Config{
		Timeout:         time.Duration(cfg.Fetch.Timeout),
		UserAgent:       cfg.Fetch.UserAgent,
		BlockPrivateIPs: cfg.Fetch.SSRFProtectionEnabled(),
		MaxIdleConns:    cfg.Fetch.MaxIdleConns,
		MaxConnsPerHost: cfg.Fetch.MaxConnsPerHost,
	}, logger)

	prober := probe.New(fetcher, time.Duration(cfg.Probe.Timeout), logger)

	extractor := service.NewExtractor(fetcher, prober, resultCache, metricsCollector, cfg.Probe.Workers, logger)

	httpHandler := service.CreateHTTPHandler(extractor, cfg.Server.ID, cfg.Cache.Enabled, metricsCollector, logger)

	serverTimeout := time.Duration(cfg.Server.Timeout)

	server := &fasthttp.Server{
		Handler:      httpHandler,
		ReadTimeout:  serverTimeout,
		WriteTimeout: serverTimeout,
		IdleTimeout:  serverTimeout,
		Name:         "ExtractService/" + cfg.Server.ID,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server",
			zap.String("listen", cfg.Server.Listen))
		if err := server.ListenAndServe(cfg.Server.Listen); err != nil {
			serverErrCh <- err
		}
	}()

	// Wait briefly for HTTP server to start listening
	time.Sleep(100 * time.Millisecond)

	select {
	case err := <-serverErrCh:
		logger.Fatal("HTTP server failed to start", zap.Error(err))
	default:
	}

	logger.Info("Extract Service ready",
		zap.String("server", cfg.Server.ID),
		zap.String("listen", cfg.Server.Listen))

	// Switch to configured log level after startup is complete
	dynamicLogger.SwitchToConfiguredLevel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serverErrCh:
		logger.Error("Server error", zap.Error(err))
	}

	dynamicLogger.EnsureInfoLevelForShutdown()
	logger.Info("Shutting down gracefully...")

	if metricsServer != nil {
		metricsShutdownCtx, metricsShutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.ShutdownWithContext(metricsShutdownCtx); err != nil {
			logger.Error("Metrics server shutdown error", zap.Error(err))
		}
		metricsShutdownCancel()
	}

	// Complete in-flight requests before exiting.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Extract Service stopped")
}
