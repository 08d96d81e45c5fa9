package middlewares

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"oip/ratesync/pkg/logger"
)

// RequestIDHeader 请求 ID 头
const RequestIDHeader = "X-Request-ID"

// RequestLogger 请求日志中间件，注入 trace_id 到请求 Context
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		traceID := c.GetHeader(RequestIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Header(RequestIDHeader, traceID)

		ctx := context.WithValue(c.Request.Context(), "trace_id", traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		log.Infof(ctx, "[HTTP] %s %s status=%d duration=%v",
			c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
