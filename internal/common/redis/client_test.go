package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pagelens/engine/internal/common/config"
)

func setupTestClient(t *testing.T) *Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(&config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client
}

func TestNewClientValidation(t *testing.T) {
	client, err := NewClient(nil, zap.NewNop())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis config is required")
	assert.Nil(t, client)

	client, err = NewClient(&config.RedisConfig{Addr: "localhost:6379"}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "logger is required")
	assert.Nil(t, client)
}

func TestNewClientUnreachable(t *testing.T) {
	client, err := NewClient(&config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
	assert.Nil(t, client)
}

func TestClientBasicOperations(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	t.Run("ping and health check", func(t *testing.T) {
		assert.NoError(t, client.Ping(ctx))
		assert.NoError(t, client.HealthCheck(ctx))
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "test:key", "test_value", time.Minute))

		value, err := client.Get(ctx, "test:key")
		require.NoError(t, err)
		assert.Equal(t, "test_value", value)

		assert.NoError(t, client.Del(ctx, "test:key"))
	})

	t.Run("get non-existent key", func(t *testing.T) {
		value, err := client.Get(ctx, "non:existent:key")
		assert.NoError(t, err)
		assert.Empty(t, value)
	})

	t.Run("exists", func(t *testing.T) {
		exists, err := client.Exists(ctx, "test:exists")
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, client.Set(ctx, "test:exists", "v", time.Minute))

		exists, err = client.Exists(ctx, "test:exists")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("ttl", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "test:ttl", "v", time.Minute))

		ttl, err := client.TTL(ctx, "test:ttl")
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("binary safe values", func(t *testing.T) {
		payload := []byte{0x00, 0x01, 0xFF, 0xFE, 'x'}
		require.NoError(t, client.Set(ctx, "test:binary", payload, time.Minute))

		value, err := client.Get(ctx, "test:binary")
		require.NoError(t, err)
		assert.Equal(t, string(payload), value)
	})
}
