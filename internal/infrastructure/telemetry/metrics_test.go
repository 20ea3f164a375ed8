package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/config"
)

type stubEvent struct {
	shared.BaseDomainEvent
}

func newStubEvent(eventType string) *stubEvent {
	return &stubEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Loan", uuid.New(), time.Now())}
}

func TestMetrics_RequestStarted(t *testing.T) {
	m := NewMetrics(config.MetricsConfig{Namespace: "lending"})

	done := m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsActive))
	done(http.MethodPost, "/api/v1/loans", http.StatusCreated)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.requestsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "/api/v1/loans", "201")))
}

func TestMetrics_Handle(t *testing.T) {
	m := NewMetrics(config.MetricsConfig{Namespace: "lending"})
	ctx := context.Background()

	assert.ElementsMatch(t, []string{
		lending.EventTypeLoanRequested,
		lending.EventTypeLoanApproved,
		lending.EventTypeLoanRejected,
		lending.EventTypeLoanReturned,
		lending.EventTypeAssetStockChanged,
	}, m.EventTypes())

	require.NoError(t, m.Handle(ctx, newStubEvent(lending.EventTypeLoanApproved)))
	require.NoError(t, m.Handle(ctx, newStubEvent(lending.EventTypeLoanApproved)))
	require.NoError(t, m.Handle(ctx, newStubEvent(lending.EventTypeAssetStockChanged)))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.loanEvents.WithLabelValues(lending.EventTypeLoanApproved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stockChanges))
	assert.Len(t, lending.LoanEventTypes, 4, "EventTypes must not mutate the shared slice")
}

func TestMetrics_RecordDelivery(t *testing.T) {
	m := NewMetrics(config.MetricsConfig{Namespace: "lending"})

	m.RecordDelivery("notifier", "handled")
	m.RecordDelivery("notifier", "handled")
	m.RecordDelivery("notifier", "duplicate")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.deliveries.WithLabelValues("notifier", "handled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deliveries.WithLabelValues("notifier", "duplicate")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics(config.MetricsConfig{Namespace: "lending"})
	require.NoError(t, m.Handle(context.Background(), newStubEvent(lending.EventTypeLoanReturned)))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `lending_loan_events_total{event_type="LoanReturned"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_RegisterDBStats(t *testing.T) {
	m := NewMetrics(config.MetricsConfig{})
	db := openSQLite(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	require.NoError(t, m.RegisterDBStats(sqlDB, "lending"))
	assert.Error(t, m.RegisterDBStats(sqlDB, "lending"), "duplicate registration is rejected")
}
