package notification

import (
	"context"
	"fmt"

	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"go.uber.org/zap"
)

// Dispatcher forwards loan lifecycle events to a Sink. Delivery is fire and
// forget: sink errors and panics are logged and Handle still returns nil.
type Dispatcher struct {
	sink   Sink
	logger *zap.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(sink Sink, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sink:   sink,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (d *Dispatcher) EventTypes() []string {
	return lending.LoanEventTypes
}

// Handle maps a loan event to the matching sink method
func (d *Dispatcher) Handle(ctx context.Context, event shared.DomainEvent) (err error) {
	loanEvent, ok := event.(lending.LoanEvent)
	if !ok {
		d.logger.Error("unexpected event type",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	notice := NewLoanNotice(loanEvent)
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notification sink panicked",
				zap.String("event_type", notice.EventType),
				zap.String("loan_id", notice.LoanID.String()),
				zap.Any("panic", r))
			err = nil
		}
	}()

	var notify func(context.Context, LoanNotice) error
	switch event.EventType() {
	case lending.EventTypeLoanRequested:
		notify = d.sink.NotifyLoanRequested
	case lending.EventTypeLoanApproved:
		notify = d.sink.NotifyLoanApproved
	case lending.EventTypeLoanRejected:
		notify = d.sink.NotifyLoanRejected
	case lending.EventTypeLoanReturned:
		notify = d.sink.NotifyLoanReturned
	default:
		d.logger.Debug("ignoring loan event", zap.String("event_type", event.EventType()))
		return nil
	}

	if err := notify(ctx, notice); err != nil {
		d.logger.Warn("notification delivery failed",
			zap.String("event_type", notice.EventType),
			zap.String("loan_id", notice.LoanID.String()),
			zap.String("user_id", notice.UserID.String()),
			zap.Error(err))
		return nil
	}

	d.logger.Debug("notification delivered",
		zap.String("event_type", notice.EventType),
		zap.String("loan_id", notice.LoanID.String()))
	return nil
}

var _ shared.EventHandler = (*Dispatcher)(nil)
