package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore builds the store selected by loans.idempotency_store.
// The redis store requires a connected client.
func NewIdempotencyStore(cfg config.LoansConfig, client redis.UniversalClient, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.IdempotencyStore {
	case "", "memory":
		logger.Info("Using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis idempotency store requires a redis client")
		}
		logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(client, ""), nil
	default:
		return nil, fmt.Errorf("unknown idempotency store %q", cfg.IdempotencyStore)
	}
}
