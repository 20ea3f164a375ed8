package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingHandler_Handle(t *testing.T) {
	handler := NewRecordingHandler("LoanRequested", "LoanApproved")
	assert.Equal(t, []string{"LoanRequested", "LoanApproved"}, handler.EventTypes())

	first := NewTestEvent("LoanRequested")
	second := NewTestEvent("LoanApproved")
	require.NoError(t, handler.Handle(context.Background(), first))
	require.NoError(t, handler.Handle(context.Background(), second))

	assert.Equal(t, 2, handler.HandledCount())
	assert.Same(t, first, handler.Handled()[0])
	assert.Equal(t, []string{"LoanRequested", "LoanApproved"}, handler.Types())
}

func TestRecordingHandler_SetErrorAndReset(t *testing.T) {
	handler := NewRecordingHandler()
	handler.SetError(assert.AnError)

	err := handler.Handle(context.Background(), NewTestEvent("LoanReturned"))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, handler.HandledCount())

	handler.Reset()
	assert.Equal(t, 0, handler.HandledCount())
	assert.NoError(t, handler.Handle(context.Background(), NewTestEvent("LoanReturned")))
}

func TestNewTestEvent(t *testing.T) {
	event := NewTestEvent("AssetStockChanged")

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.NotEqual(t, uuid.Nil, event.AggregateID())
	assert.Equal(t, "AssetStockChanged", event.EventType())
	assert.Equal(t, "TestAggregate", event.AggregateType())
	assert.False(t, event.OccurredAt().IsZero())
	assert.Equal(t, "test-data", event.Data)

	id := uuid.New()
	assert.Equal(t, id, NewTestEventWithID(id, "LoanApproved").EventID())
}

func TestWaitForEventCount(t *testing.T) {
	handler := NewRecordingHandler()

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = handler.Handle(context.Background(), NewTestEvent("LoanRequested"))
		_ = handler.Handle(context.Background(), NewTestEvent("LoanApproved"))
	}()

	assert.True(t, WaitForEventCount(t, handler, 2, time.Second))
	assert.False(t, WaitForEventCount(t, handler, 3, 30*time.Millisecond))
}
