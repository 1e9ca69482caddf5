package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	ctxPkg "github.com/yeisme/wikiviews/pkg/context"
	"github.com/yeisme/wikiviews/pkg/internal/types"
)

// statusFor 领域错误对应的 HTTP 状态码：参数类 400，上游类 502.
func statusFor(kind types.ErrorKind) int {
	switch kind {
	case types.KindInvalidRange, types.KindInvalidDate, types.KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// renderError 按 Accept 协商输出错误页（默认 HTML）或 JSON.
func renderError(c *gin.Context, err error) {
	resp := types.ErrorResponse{Error: err.Error(), Kind: types.KindUpstream}

	if se, ok := types.AsStatsError(err); ok {
		resp.Error = se.Message
		resp.Kind = se.Kind
		resp.Status = se.Status
	}

	status := statusFor(resp.Kind)

	l := ctxPkg.Logger(c.Request.Context())
	ev := l.Warn()

	if status >= http.StatusInternalServerError {
		ev = l.Error()
	}

	ev.Err(err).
		Str("path", c.Request.URL.Path).
		Str("kind", string(resp.Kind)).
		Int("upstream_status", resp.Status).
		Msg("pageviews request failed")

	c.Negotiate(status, gin.Negotiate{
		Offered:  []string{binding.MIMEHTML, binding.MIMEJSON},
		HTMLName: "error.html",
		HTMLData: gin.H{"error_message": resp.Error},
		JSONData: resp,
	})
}

// NotFound 未匹配的路由.
func NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", nil)
}

// Recovery panic 恢复后渲染 500.html.
func Recovery(c *gin.Context, recovered any) {
	l := ctxPkg.Logger(c.Request.Context())
	l.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("recovered from panic")

	c.HTML(http.StatusInternalServerError, "500.html", nil)
	c.Abort()
}
