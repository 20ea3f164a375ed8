package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/telemetry"
)

// unmatchedRoute labels requests that hit no registered route, keeping the
// route label bounded.
const unmatchedRoute = "unmatched"

// HTTPMetrics records request count, latency and in-flight requests.
// A nil Metrics yields a pass-through middleware.
func HTTPMetrics(m *telemetry.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		done := m.RequestStarted()
		c.Next()
		done(c.Request.Method, routePattern(c), c.Writer.Status())
	}
}

func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}
