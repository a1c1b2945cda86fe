package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	awspkg "catalog-service/pkg/aws"
)

// HTTPMetrics is the part of the CloudWatch client the middleware needs.
type HTTPMetrics interface {
	IsEnabled() bool
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordLatency(ctx context.Context, metricName string, d time.Duration, dimensions map[string]string) error
}

// Metrics records request count, latency and error counts per route.
// Data points are sent off the request path.
func Metrics(m HTTPMetrics, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || !m.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		dimensions := map[string]string{
			"Service": serviceName,
			"Method":  c.Request.Method,
			"Path":    route,
			"Status":  statusCodeToRange(status),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = m.RecordCount(ctx, awspkg.MetricHTTPRequests, dimensions)
			_ = m.RecordLatency(ctx, awspkg.MetricHTTPLatency, duration, dimensions)
			switch {
			case status >= 500:
				_ = m.RecordCount(ctx, awspkg.MetricHTTP5xx, dimensions)
			case status >= 400:
				_ = m.RecordCount(ctx, awspkg.MetricHTTP4xx, dimensions)
			}
		}()
	}
}

func statusCodeToRange(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
