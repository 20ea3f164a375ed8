package notification

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/application/notification"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewSink builds the sink selected by loans.notification_sink
func NewSink(cfg config.LoansConfig, client redis.UniversalClient, logger *zap.Logger) (notification.Sink, error) {
	switch cfg.NotificationSink {
	case "", "log":
		return NewLogSink(logger), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis notification sink requires a redis client")
		}
		return NewRedisSink(client, cfg.NotificationLimit), nil
	default:
		return nil, fmt.Errorf("unknown notification sink %q", cfg.NotificationSink)
	}
}
