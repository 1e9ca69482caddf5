// Package handle 提供 HTTP 请求处理器的实现.
package handle

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/wikiviews/pkg/internal/types"
)

const (
	defaultYear  = 2023
	defaultMonth = 1

	welcomeMessage = "Welcome to the Wikipedia pageviews API!"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates 把内嵌的 error.html、404.html、500.html 设置到 engine.
func LoadTemplates(engine *gin.Engine) {
	engine.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))
}

// Index 首页.
//
//	@Summary	首页
//	@Produce	plain
//	@Success	200	{string}	string
//	@Router		/ [get]
func Index(c *gin.Context) {
	c.String(http.StatusOK, welcomeMessage)
}

// DefaultHandler 未实现的路由.
func DefaultHandler(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"message": "Not Implemented"})
}

// DefaultHandlers 占位实现，所有路由返回 501.
type DefaultHandlers struct{}

func (DefaultHandlers) MostViewedArticles() gin.HandlerFunc { return DefaultHandler }
func (DefaultHandlers) ArticleViewCount() gin.HandlerFunc   { return DefaultHandler }
func (DefaultHandlers) MostViewsDay() gin.HandlerFunc       { return DefaultHandler }

// queryInt 读取整数参数；缺失或为空时返回 def.
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, types.NewInvalidArgument("query parameter %q must be an integer, got %q", key, raw)
	}

	return v, nil
}

// queryOptionalInt 读取可选的日期参数；缺失、为空或为 0 时返回 nil.
func queryOptionalInt(c *gin.Context, key string) (*int, error) {
	v, err := queryInt(c, key, 0)
	if err != nil {
		return nil, err
	}

	if v == 0 {
		return nil, nil
	}

	return &v, nil
}

// yearMonth 读取 year、month，默认 2023 年 1 月.
func yearMonth(c *gin.Context) (int, int, error) {
	year, err := queryInt(c, "year", defaultYear)
	if err != nil {
		return 0, 0, err
	}

	month, err := queryInt(c, "month", defaultMonth)
	if err != nil {
		return 0, 0, err
	}

	return year, month, nil
}
