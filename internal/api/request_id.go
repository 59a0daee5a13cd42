package api

import (
	"context"

	"github.com/Franklyn101/sagbama-land-authentication/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDMiddleware 请求 ID 中间件
// 沿用上游传入的 X-Request-ID, 没有则生成一个并回写响应头
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		// 注入请求上下文, 供审计日志读取
		ctx := context.WithValue(c.Request.Context(), service.ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
