// Package middleware 提供 gin 中间件：请求 ID、访问日志、CORS、追踪与监控.
package middleware

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/wikiviews/pkg/configs"
)

// CORSMiddleware CORS中间件，服务只读，仅放行 GET/HEAD/OPTIONS.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	config.AllowHeaders = append(config.AllowHeaders, "Accept", RequestIDHeader)
	config.ExposeHeaders = []string{RequestIDHeader}

	if cfg.Debug {
		config.AllowAllOrigins = true
		config.AllowOrigins = nil
	}

	return cors.New(config)
}
