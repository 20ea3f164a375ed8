package event

import (
	"context"
	"sync/atomic"

	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Delivery outcomes reported by IdempotentHandler
const (
	OutcomeHandled   = "handled"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// DeliveryRecorder observes the outcome of each delivery
type DeliveryRecorder interface {
	RecordDelivery(handler, outcome string)
}

// DeliveryCounts counts outcomes in process
type DeliveryCounts struct {
	handled   atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

func (c *DeliveryCounts) RecordDelivery(_ string, outcome string) {
	switch outcome {
	case OutcomeHandled:
		c.handled.Add(1)
	case OutcomeDuplicate:
		c.duplicate.Add(1)
	case OutcomeFailed:
		c.failed.Add(1)
	}
}

// Handled returns the number of deliveries passed to the wrapped handler
// that succeeded.
func (c *DeliveryCounts) Handled() int64 { return c.handled.Load() }

func (c *DeliveryCounts) Duplicates() int64 { return c.duplicate.Load() }

func (c *DeliveryCounts) Failed() int64 { return c.failed.Load() }

// IdempotentHandler wraps an EventHandler so that an event redelivered with
// the same ID is handled once. Keys are namespaced by handler name, so two
// wrapped handlers still both see each event.
type IdempotentHandler struct {
	name     string
	handler  shared.EventHandler
	store    shared.IdempotencyStore
	config   shared.IdempotencyConfig
	logger   *zap.Logger
	counts   *DeliveryCounts
	recorder DeliveryRecorder
}

// IdempotentHandlerOption configures an IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig overrides the default TTL and enablement
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.config = config
	}
}

// WithDeliveryRecorder reports every outcome to r as well as to Counts
func WithDeliveryRecorder(r DeliveryRecorder) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.recorder = r
	}
}

// WithDeliveryCounts shares one DeliveryCounts between handlers
func WithDeliveryCounts(c *DeliveryCounts) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.counts = c
	}
}

// NewIdempotentHandler wraps handler. name namespaces its idempotency keys
// and labels its recorded outcomes.
func NewIdempotentHandler(
	name string,
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	h := &IdempotentHandler{
		name:    name,
		handler: handler,
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		logger:  logger,
		counts:  &DeliveryCounts{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle passes the event on unless its ID is already marked for this handler.
// A failing store lets the event through; a failing handler keeps the mark
// until its TTL expires.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, event)
	}

	eventID := event.EventID().String()
	fields := append(logger.Fields(ctx),
		zap.String("handler", h.name),
		zap.String("event_id", eventID),
		zap.String("event_type", event.EventType()),
	)

	isNew, err := h.store.MarkProcessed(ctx, h.name+":"+eventID, h.config.TTL)
	switch {
	case err != nil:
		h.logger.Warn("Idempotency store unavailable, delivering anyway", append(fields, zap.Error(err))...)
	case !isNew:
		h.record(OutcomeDuplicate)
		h.logger.Debug("Skipping redelivered event", fields...)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.record(OutcomeFailed)
		h.logger.Error("Event handler failed", append(fields, zap.Error(err))...)
		return err
	}
	h.record(OutcomeHandled)
	return nil
}

func (h *IdempotentHandler) record(outcome string) {
	h.counts.RecordDelivery(h.name, outcome)
	if h.recorder != nil {
		h.recorder.RecordDelivery(h.name, outcome)
	}
}

// Counts returns the outcome counters of this handler
func (h *IdempotentHandler) Counts() *DeliveryCounts {
	return h.counts
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
