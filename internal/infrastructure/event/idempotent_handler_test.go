package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// MockEventHandler is a mock implementation of shared.EventHandler
type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newLoanEvent() *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LoanApproved", "Loan", uuid.New(), time.Now()),
	}
}

func TestIdempotentHandler_Handle_NewEvent(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	mockHandler := new(MockEventHandler)
	event := newLoanEvent()
	mockHandler.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler("notifier", mockHandler, store, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), event))

	mockHandler.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.Counts().Handled())
	assert.Equal(t, int64(0), handler.Counts().Duplicates())

	processed, err := store.IsProcessed(context.Background(), "notifier:"+event.EventID().String())
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestIdempotentHandler_Handle_DuplicateEvent(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	mockHandler := new(MockEventHandler)
	event := newLoanEvent()
	mockHandler.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler("notifier", mockHandler, store, zap.NewNop())

	for i := 0; i < 3; i++ {
		require.NoError(t, handler.Handle(context.Background(), event))
	}

	mockHandler.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.Counts().Handled())
	assert.Equal(t, int64(2), handler.Counts().Duplicates())
}

func TestIdempotentHandler_Handle_NamespacedPerHandler(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	event := newLoanEvent()
	notifier := new(MockEventHandler)
	counter := new(MockEventHandler)
	notifier.On("Handle", mock.Anything, event).Return(nil).Once()
	counter.On("Handle", mock.Anything, event).Return(nil).Once()

	h1 := NewIdempotentHandler("notifier", notifier, store, zap.NewNop())
	h2 := NewIdempotentHandler("loan-metrics", counter, store, zap.NewNop())

	require.NoError(t, h1.Handle(context.Background(), event))
	require.NoError(t, h2.Handle(context.Background(), event))

	notifier.AssertExpectations(t)
	counter.AssertExpectations(t)
}

func TestIdempotentHandler_Handle_HandlerError(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	mockHandler := new(MockEventHandler)
	event := newLoanEvent()
	expectedErr := errors.New("sink unavailable")
	mockHandler.On("Handle", mock.Anything, event).Return(expectedErr).Once()

	handler := NewIdempotentHandler("notifier", mockHandler, store, zap.NewNop())

	err := handler.Handle(context.Background(), event)
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, int64(0), handler.Counts().Handled())
	assert.Equal(t, int64(1), handler.Counts().Failed())

	// the key stays marked, so a redelivery is skipped
	require.NoError(t, handler.Handle(context.Background(), event))
	mockHandler.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.Counts().Duplicates())
}

func TestIdempotentHandler_Handle_StoreError(t *testing.T) {
	mockStore := new(MockIdempotencyStore)
	mockHandler := new(MockEventHandler)
	event := newLoanEvent()

	mockStore.On("MarkProcessed", mock.Anything, "notifier:"+event.EventID().String(), 24*time.Hour).
		Return(false, errors.New("redis down"))
	mockHandler.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler("notifier", mockHandler, mockStore, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), event))

	mockStore.AssertExpectations(t)
	mockHandler.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.Counts().Handled())
}

func TestIdempotentHandler_Handle_Disabled(t *testing.T) {
	mockStore := new(MockIdempotencyStore)
	mockHandler := new(MockEventHandler)
	event := newLoanEvent()
	mockHandler.On("Handle", mock.Anything, event).Return(nil).Times(3)

	config := shared.DefaultIdempotencyConfig()
	config.Enabled = false

	handler := NewIdempotentHandler("notifier", mockHandler, mockStore, zap.NewNop(),
		WithIdempotencyConfig(config),
	)

	for i := 0; i < 3; i++ {
		require.NoError(t, handler.Handle(context.Background(), event))
	}

	mockHandler.AssertExpectations(t)
	mockStore.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, int64(0), handler.Counts().Handled())
}

func TestIdempotentHandler_CustomTTL(t *testing.T) {
	mockStore := new(MockIdempotencyStore)
	mockHandler := new(MockEventHandler)
	event := newLoanEvent()

	mockStore.On("MarkProcessed", mock.Anything, mock.Anything, time.Hour).Return(true, nil)
	mockHandler.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler("notifier", mockHandler, mockStore, zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{TTL: time.Hour, Enabled: true}),
	)

	require.NoError(t, handler.Handle(context.Background(), event))
	mockStore.AssertExpectations(t)
}

func TestIdempotentHandler_EventTypes(t *testing.T) {
	mockHandler := new(MockEventHandler)
	expectedTypes := []string{"LoanApproved", "LoanRejected"}
	mockHandler.On("EventTypes").Return(expectedTypes)

	handler := NewIdempotentHandler("notifier", mockHandler, new(MockIdempotencyStore), zap.NewNop())

	assert.Equal(t, expectedTypes, handler.EventTypes())
	mockHandler.AssertExpectations(t)
}

type outcomeLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *outcomeLog) RecordDelivery(handler, outcome string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, handler+"/"+outcome)
}

func TestIdempotentHandler_SharedCountsAndRecorder(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	counts := &DeliveryCounts{}
	recorder := &outcomeLog{}

	event1 := newLoanEvent()
	event2 := newLoanEvent()
	mockHandler1 := new(MockEventHandler)
	mockHandler2 := new(MockEventHandler)
	mockHandler1.On("Handle", mock.Anything, event1).Return(nil)
	mockHandler2.On("Handle", mock.Anything, event2).Return(errors.New("boom"))

	opts := []IdempotentHandlerOption{WithDeliveryCounts(counts), WithDeliveryRecorder(recorder)}
	handler1 := NewIdempotentHandler("a", mockHandler1, store, zap.NewNop(), opts...)
	handler2 := NewIdempotentHandler("b", mockHandler2, store, zap.NewNop(), opts...)

	require.NoError(t, handler1.Handle(context.Background(), event1))
	require.NoError(t, handler1.Handle(context.Background(), event1))
	require.Error(t, handler2.Handle(context.Background(), event2))

	assert.Same(t, counts, handler1.Counts())
	assert.Equal(t, int64(1), counts.Handled())
	assert.Equal(t, int64(1), counts.Duplicates())
	assert.Equal(t, int64(1), counts.Failed())
	assert.Equal(t, []string{"a/handled", "a/duplicate", "b/failed"}, recorder.entries)
}

func TestIdempotentHandler_ConcurrentDuplicates(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	mockHandler := new(MockEventHandler)
	event := newLoanEvent()
	mockHandler.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler("notifier", mockHandler, store, zap.NewNop())

	const numGoroutines = 50
	errChan := make(chan error, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			errChan <- handler.Handle(context.Background(), event)
		}()
	}
	for i := 0; i < numGoroutines; i++ {
		assert.NoError(t, <-errChan)
	}

	mockHandler.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.Counts().Handled())
	assert.Equal(t, int64(numGoroutines-1), handler.Counts().Duplicates())
}
