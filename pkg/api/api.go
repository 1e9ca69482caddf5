// Package api 把 pageviews 路由组与健康检查注册到 gin 引擎.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/wikiviews/pkg/internal/handle"
	"github.com/yeisme/wikiviews/pkg/internal/router"
)

// RegisterGroup 注册 pageviews 相关的路由组到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine, handlers router.PageviewHandlers, upstream handle.BreakerStater) *gin.Engine {
	router.Register(&e.RouterGroup, handlers)
	router.RegisterHealthCheckRoute(&e.RouterGroup, upstream)
	router.RegisterNoRoute(e)

	return e
}
