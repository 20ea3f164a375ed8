package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedRouter(t *testing.T, handler gin.HandlerFunc) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "asset-lending-test", TracerProvider: tp}))
	router.Use(SpanEnricher())
	router.GET("/assets/:id", handler)
	return router, sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not found", "no span named %q", name)
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracing_SpanPerRoute(t *testing.T) {
	router, sr := newTracedRouter(t, func(c *gin.Context) {
		c.Set(logger.GinUserIDKey, "user-42")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/assets/123", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	router.ServeHTTP(httptest.NewRecorder(), req)

	span := findSpan(t, sr, "GET /assets/:id")
	requestID, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-abc", requestID.AsString())
	userID, ok := spanAttr(span, "user_id")
	require.True(t, ok)
	assert.Equal(t, "user-42", userID.AsString())
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestTracing_ClientErrorMarksSpan(t *testing.T) {
	router, sr := newTracedRouter(t, func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/assets/missing", nil))

	span := findSpan(t, sr, "GET /assets/:id")
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "Not Found", span.Status().Description)
}
