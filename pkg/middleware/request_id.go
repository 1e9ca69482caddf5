package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ctxPkg "github.com/yeisme/wikiviews/pkg/context"
)

// RequestIDHeader 请求 ID 头.
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware 为每个请求分配请求 ID（沿用调用方传入的值），
// 并把请求 ID 与调用方 User-Agent 写入 request context.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := ctxPkg.WithRequestID(c.Request.Context(), id)
		ctx = ctxPkg.WithUserAgent(ctx, c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)

		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
