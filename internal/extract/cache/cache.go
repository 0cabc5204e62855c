// Package cache stores finished extraction results in Redis so repeated
// requests for the same page skip the fetch and parse entirely.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/pagelens/engine/internal/common/redis"
	"github.com/pagelens/engine/pkg/types"
)

const keyPrefix = "extract:result:"

// ResultCache is a Redis-backed cache of extraction responses.
type ResultCache struct {
	client    *redis.Client
	ttl       time.Duration
	algorithm string
	logger    *zap.Logger
}

// New creates a result cache writing entries with the given TTL and
// compression algorithm.
func New(client *redis.Client, ttl time.Duration, algorithm string, logger *zap.Logger) *ResultCache {
	return &ResultCache{
		client:    client,
		ttl:       ttl,
		algorithm: algorithm,
		logger:    logger,
	}
}

// Key derives the cache key for a request. Only fields that change the
// result participate: the URL and the collection options. Raw-HTML
// requests are never cached, so HTML does not contribute.
func Key(req *types.ExtractRequest) string {
	sig := strings.ToLower(strings.TrimSpace(req.URL)) +
		"|" + strings.ToLower(strings.Join(req.ExcludeExtensions, ",")) +
		fmt.Sprintf("|%t|%t", req.CollectImages, req.ValidateImages)
	return fmt.Sprintf("%s%016x", keyPrefix, xxhash.Sum64String(sig))
}

// Get returns the cached response for req, or nil when absent. Cache
// failures are logged and reported as misses; the caller extracts fresh.
func (rc *ResultCache) Get(ctx context.Context, req *types.ExtractRequest) *types.ExtractResponse {
	key := Key(req)

	stored, err := rc.client.Get(ctx, key)
	if err != nil || stored == "" {
		return nil
	}

	payload, err := decodePayload([]byte(stored))
	if err != nil {
		rc.logger.Warn("Dropping unreadable cache entry",
			zap.String("key", key),
			zap.Error(err))
		rc.client.Del(ctx, key) //nolint:errcheck
		return nil
	}

	var resp types.ExtractResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		rc.logger.Warn("Dropping undecodable cache entry",
			zap.String("key", key),
			zap.Error(err))
		rc.client.Del(ctx, key) //nolint:errcheck
		return nil
	}

	return &resp
}

// Set stores a successful response for req. Failures are logged, never
// propagated; the response was already produced.
func (rc *ResultCache) Set(ctx context.Context, req *types.ExtractRequest, resp *types.ExtractResponse) {
	key := Key(req)

	payload, err := json.Marshal(resp)
	if err != nil {
		rc.logger.Error("Failed to marshal response for cache",
			zap.String("key", key),
			zap.Error(err))
		return
	}

	encoded, err := encodePayload(payload, rc.algorithm)
	if err != nil {
		rc.logger.Error("Failed to compress cache payload",
			zap.String("key", key),
			zap.Error(err))
		return
	}

	if err := rc.client.Set(ctx, key, encoded, rc.ttl); err != nil {
		return
	}

	rc.logger.Debug("Cached extraction result",
		zap.String("key", key),
		zap.Int("raw_bytes", len(payload)),
		zap.Int("stored_bytes", len(encoded)))
}
