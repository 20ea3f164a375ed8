package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps the request ID copied onto spans.
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
	// TracerProvider overrides the global provider. Mostly for tests.
	TracerProvider trace.TracerProvider
}

// TracingWithConfig returns otelgin middleware; spans are named after the
// route pattern.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanEnricher copies request and user identifiers onto the server span and
// marks it failed for error responses. Register it right after
// TracingWithConfig; the user ID is read once the handler chain has run.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		c.Next()

		if !span.IsRecording() {
			return
		}
		if requestID := c.GetString(logger.GinRequestIDKey); requestID != "" {
			if len(requestID) > MaxRequestIDLength {
				requestID = requestID[:MaxRequestIDLength]
			}
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		if userID := c.GetString(logger.GinUserIDKey); userID != "" {
			span.SetAttributes(attribute.String("user_id", userID))
		}
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
