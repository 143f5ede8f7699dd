package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"backend/internal/logger"
)

// HeaderRequestID 请求 ID HTTP 头
const HeaderRequestID = "X-Request-ID"

// GinContextKeyRequestID Gin 上下文中的请求 ID 键
const GinContextKeyRequestID = "request_id"

// RequestIDMiddleware 请求 ID 中间件
// 为每个请求生成唯一的请求 ID，支持上游传递
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(GinContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Writer.Header().Set(HeaderRequestID, requestID)

		c.Next()
	}
}
