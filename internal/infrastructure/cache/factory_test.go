package cache

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/config"
	"go.uber.org/zap"
)

func TestNewIdempotencyStore(t *testing.T) {
	logger := zap.NewNop()

	t.Run("memory by default", func(t *testing.T) {
		store, err := NewIdempotencyStore(config.LoansConfig{IdempotencyTTL: time.Hour}, nil, logger)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("redis requires a client", func(t *testing.T) {
		_, err := NewIdempotencyStore(config.LoansConfig{IdempotencyStore: "redis"}, nil, logger)
		require.Error(t, err)
	})

	t.Run("redis with client", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
		defer client.Close()

		store, err := NewIdempotencyStore(config.LoansConfig{IdempotencyStore: "redis"}, client, logger)
		require.NoError(t, err)
		assert.IsType(t, &RedisIdempotencyStore{}, store)
	})

	t.Run("unknown store", func(t *testing.T) {
		_, err := NewIdempotencyStore(config.LoansConfig{IdempotencyStore: "memcached"}, nil, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "memcached")
	})
}
