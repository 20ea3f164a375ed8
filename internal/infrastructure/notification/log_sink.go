package notification

import (
	"context"

	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/application/notification"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogSink writes every notice as a structured log entry. It is the default
// sink when no delivery channel is configured.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a new LogSink
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("notification")}
}

func (s *LogSink) NotifyLoanRequested(ctx context.Context, notice notification.LoanNotice) error {
	s.log(ctx, "loan requested", notice)
	return nil
}

func (s *LogSink) NotifyLoanApproved(ctx context.Context, notice notification.LoanNotice) error {
	s.log(ctx, "loan approved", notice)
	return nil
}

func (s *LogSink) NotifyLoanRejected(ctx context.Context, notice notification.LoanNotice) error {
	s.log(ctx, "loan rejected", notice)
	return nil
}

func (s *LogSink) NotifyLoanReturned(ctx context.Context, notice notification.LoanNotice) error {
	s.log(ctx, "loan returned", notice)
	return nil
}

func (s *LogSink) log(ctx context.Context, msg string, notice notification.LoanNotice) {
	s.logger.Info(msg, append(logger.Fields(ctx),
		zap.String("event_id", notice.EventID.String()),
		zap.String("loan_id", notice.LoanID.String()),
		zap.String("user_id", notice.UserID.String()),
		zap.String("asset_code", notice.AssetCode),
		zap.Int("quantity", notice.Quantity),
		zap.String("status", string(notice.Status)),
		zap.String("borrow_date", notice.BorrowDate),
	)...)
}

var _ notification.Sink = (*LogSink)(nil)
