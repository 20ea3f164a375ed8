package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/logger"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// InMemoryEventBus implements EventBus with in-memory pub/sub.
//
// By default handlers run synchronously inside Publish. With WithAsyncDispatch
// each handler runs on its own goroutine once the bus is started, and Stop
// waits for in-flight handlers. Handler failures never reach the publisher.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	async    bool
	running  atomic.Bool
	wg       sync.WaitGroup
}

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithAsyncDispatch runs handlers off the publishing goroutine
func WithAsyncDispatch() BusOption {
	return func(b *InMemoryEventBus) {
		b.async = true
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers events to all registered handlers
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	dispatchAsync := b.async && b.running.Load()
	if dispatchAsync {
		// handlers outlive the request that published the event
		ctx = context.WithoutCancel(ctx)
	}

	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if dispatchAsync {
				b.wg.Add(1)
				go func(h shared.EventHandler, e shared.DomainEvent) {
					defer b.wg.Done()
					b.dispatch(ctx, h, e)
				}(handler, event)
				continue
			}
			b.dispatch(ctx, handler, event)
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	// If handler specifies its own event types, use those
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started", zap.Bool("async", b.async))
	return nil
}

// Stop stops accepting asynchronous work and waits for in-flight handlers
// until ctx is done.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stop timed out with handlers still running")
		return ctx.Err()
	}
}

// dispatch runs one handler in its own span, logging its error or panic
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) {
	ctx, span := telemetry.StartSpan(ctx, "event.dispatch",
		attribute.String(telemetry.SpanAttrEventType, event.EventType()),
		attribute.String(telemetry.SpanAttrEventID, event.EventID().String()),
		attribute.String(telemetry.SpanAttrHandler, fmt.Sprintf("%T", handler)),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			telemetry.RecordPanic(span, r)
			b.logger.Error("handler panicked",
				append(logger.Fields(ctx),
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Any("panic", r),
				)...,
			)
		}
	}()

	if err := handler.Handle(ctx, event); err != nil {
		telemetry.RecordError(span, err)
		b.logger.Error("handler failed to process event",
			append(logger.Fields(ctx),
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)...,
		)
	}
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
