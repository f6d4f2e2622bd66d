package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"CityCard/modules/kit/logx"
	"CityCard/modules/kit/tracex"
)

// AccessLog 给每个请求挂 trace_id，结束后按状态码写一条访问日志。
func AccessLog(log logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		ctx := c.Request.Context()
		if traceID := tracex.NewTraceID(); traceID != "" {
			ctx = tracex.WithTraceID(ctx, traceID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("action", c.Request.Method+" "+route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		l := log.WithContext(ctx)
		if status >= 500 {
			l.Error("access", fields...)
			return
		}
		l.Info("access", fields...)
	}
}
