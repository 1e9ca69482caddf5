// Package router 管理路由配置，将路径和处理器绑定到 gin 引擎.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/wikiviews/pkg/internal/handle"
)

// PageviewHandlers 定义由应用层注入的具体请求处理器. router 包只负责将路径和处理器绑定到 gin 引擎，
// 处理器的实现由 pkg/internal/handle 提供并注入进来.
type PageviewHandlers interface {
	MostViewedArticles() gin.HandlerFunc
	ArticleViewCount() gin.HandlerFunc
	MostViewsDay() gin.HandlerFunc
}

// Register 将路由绑定到传入的 gin 路由组，并返回实际使用的 handlers 实例。
// 如果传入的 handlers 为 nil，会使用返回 501 的占位实现以便服务能启动且能清晰地提示未实现。
//
//	GET /                                 -> Index
//	GET /most_viewed_articles             -> MostViewedArticles
//	GET /article_view_count/:article_title -> ArticleViewCount
//	GET /most_views_day/:article_title     -> MostViewsDay
func Register(group *gin.RouterGroup, handlers PageviewHandlers) PageviewHandlers {
	// 提供默认占位实现
	if handlers == nil {
		handlers = handle.DefaultHandlers{}
	}

	group.GET("/", handle.Index)
	group.GET("/most_viewed_articles", handlers.MostViewedArticles())
	group.GET("/article_view_count/:article_title", handlers.ArticleViewCount())
	group.GET("/most_views_day/:article_title", handlers.MostViewsDay())

	return handlers
}

// RegisterNoRoute 未匹配的路由渲染 404.html.
func RegisterNoRoute(e *gin.Engine) {
	e.NoRoute(handle.NotFound)
}
