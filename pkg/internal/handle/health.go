package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BreakerStater 暴露上游熔断器状态.
type BreakerStater interface {
	State() string
}

// Health 健康检查；上游熔断器打开时返回 503.
//
//	@Summary	健康检查
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/health [get]
func Health(upstream BreakerStater) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := "disabled"
		if upstream != nil {
			state = upstream.State()
		}

		if state == "open" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "upstream_breaker": state})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "upstream_breaker": state})
	}
}
