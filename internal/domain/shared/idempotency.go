package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which deliveries a handler has already seen.
// Keys take the form "<handler>:<event id>", so the same event may be
// recorded once per subscribing handler.
type IdempotencyStore interface {
	// MarkProcessed records key for ttl. It reports false when key was
	// already recorded and has not expired.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// IsProcessed reports whether key is currently recorded.
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}

// IdempotencyConfig controls duplicate suppression for wrapped handlers.
// A redelivery after TTL has elapsed is handled again.
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig keeps keys for one day, long enough to cover
// any retry of a loan notification.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}
