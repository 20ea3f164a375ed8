package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/application/notification"
)

const (
	// DefaultNotificationKeyPrefix prefixes the per-user notification lists
	DefaultNotificationKeyPrefix = "lending:notifications:"
	// AdminInboxKey receives every new loan request for reviewers
	AdminInboxKey = "admin"

	defaultNotificationLimit int64 = 100
)

// RedisSink keeps the latest notices of each user in a Redis list, newest
// first. New requests are also copied to the admin inbox.
type RedisSink struct {
	client    redis.UniversalClient
	keyPrefix string
	limit     int64
}

// NewRedisSink creates a sink that keeps at most limit notices per list
func NewRedisSink(client redis.UniversalClient, limit int64) *RedisSink {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	return &RedisSink{
		client:    client,
		keyPrefix: DefaultNotificationKeyPrefix,
		limit:     limit,
	}
}

// InboxKey returns the list key holding the notices of a recipient
func (s *RedisSink) InboxKey(recipient string) string {
	return s.keyPrefix + recipient
}

func (s *RedisSink) NotifyLoanRequested(ctx context.Context, notice notification.LoanNotice) error {
	return s.push(ctx, notice, notice.UserID.String(), AdminInboxKey)
}

func (s *RedisSink) NotifyLoanApproved(ctx context.Context, notice notification.LoanNotice) error {
	return s.push(ctx, notice, notice.UserID.String())
}

func (s *RedisSink) NotifyLoanRejected(ctx context.Context, notice notification.LoanNotice) error {
	return s.push(ctx, notice, notice.UserID.String())
}

func (s *RedisSink) NotifyLoanReturned(ctx context.Context, notice notification.LoanNotice) error {
	return s.push(ctx, notice, notice.UserID.String())
}

func (s *RedisSink) push(ctx context.Context, notice notification.LoanNotice, recipients ...string) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to encode notice: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, recipient := range recipients {
			key := s.InboxKey(recipient)
			pipe.LPush(ctx, key, payload)
			pipe.LTrim(ctx, key, 0, s.limit-1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push notice %s: %w", notice.EventID, err)
	}
	return nil
}

var _ notification.Sink = (*RedisSink)(nil)
