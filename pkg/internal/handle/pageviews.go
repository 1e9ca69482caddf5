package handle

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/wikiviews/pkg/internal/types"
)

// PageviewsService handlers 依赖的聚合服务.
type PageviewsService interface {
	MostViewedArticles(ctx context.Context, q types.TopQuery) ([]types.ArticleStat, error)
	ArticleViewCount(ctx context.Context, q types.ViewCountQuery) (int64, error)
	DayWithMostViews(ctx context.Context, q types.PeakDayQuery) (*string, error)
}

// PageviewHandlers pageviews 相关的请求处理器.
type PageviewHandlers struct {
	svc PageviewsService
}

// NewPageviewHandlers 创建 PageviewHandlers.
func NewPageviewHandlers(svc PageviewsService) *PageviewHandlers {
	return &PageviewHandlers{svc: svc}
}

// MostViewedArticles 浏览量最高的文章.
//
//	@Summary		浏览量最高的文章
//	@Description	day 优先；否则 start_day 与 end_day 同时给出时按区间合并；都没有时查询整月
//	@Tags			pageviews
//	@Produce		json
//	@Param			year		query		int	false	"年份，默认 2023"
//	@Param			month		query		int	false	"月份，默认 1"
//	@Param			day			query		int	false	"日期"
//	@Param			start_day	query		int	false	"区间起始日"
//	@Param			end_day		query		int	false	"区间结束日"
//	@Success		200			{array}		types.ArticleStat
//	@Failure		400			{object}	types.ErrorResponse
//	@Failure		502			{object}	types.ErrorResponse
//	@Router			/most_viewed_articles [get]
func (h *PageviewHandlers) MostViewedArticles() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := parseTopQuery(c)
		if err != nil {
			renderError(c, err)
			return
		}

		articles, err := h.svc.MostViewedArticles(c.Request.Context(), q)
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusOK, articles)
	}
}

// ArticleViewCount 单篇文章的浏览总量.
//
//	@Summary	文章浏览总量
//	@Tags		pageviews
//	@Produce	json
//	@Param		article_title	path		string	true	"文章标题"
//	@Param		year			query		int		false	"年份，默认 2023"
//	@Param		month			query		int		false	"月份，默认 1"
//	@Param		start_day		query		int		false	"区间起始日"
//	@Param		end_day			query		int		false	"区间结束日"
//	@Success	200				{object}	types.ViewCountResponse
//	@Failure	400				{object}	types.ErrorResponse
//	@Failure	502				{object}	types.ErrorResponse
//	@Router		/article_view_count/{article_title} [get]
func (h *PageviewHandlers) ArticleViewCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		title := c.Param("article_title")

		year, month, err := yearMonth(c)
		if err != nil {
			renderError(c, err)
			return
		}

		start, err := queryOptionalInt(c, "start_day")
		if err != nil {
			renderError(c, err)
			return
		}

		end, err := queryOptionalInt(c, "end_day")
		if err != nil {
			renderError(c, err)
			return
		}

		count, err := h.svc.ArticleViewCount(c.Request.Context(), types.ViewCountQuery{
			Article:  title,
			Year:     year,
			Month:    month,
			StartDay: start,
			EndDay:   end,
		})
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.ViewCountResponse{Article: title, ViewCount: count})
	}
}

// MostViewsDay 文章当月浏览量最高的一天.
//
//	@Summary	文章浏览峰值日
//	@Tags		pageviews
//	@Produce	json
//	@Param		article_title	path		string	true	"文章标题"
//	@Param		year			query		int		false	"年份，默认 2023"
//	@Param		month			query		int		false	"月份，默认 1"
//	@Success	200				{object}	types.PeakDayResponse
//	@Failure	400				{object}	types.ErrorResponse
//	@Failure	502				{object}	types.ErrorResponse
//	@Router		/most_views_day/{article_title} [get]
func (h *PageviewHandlers) MostViewsDay() gin.HandlerFunc {
	return func(c *gin.Context) {
		title := c.Param("article_title")

		year, month, err := yearMonth(c)
		if err != nil {
			renderError(c, err)
			return
		}

		day, err := h.svc.DayWithMostViews(c.Request.Context(), types.PeakDayQuery{
			Article: title,
			Year:    year,
			Month:   month,
		})
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.PeakDayResponse{Article: title, MostViewsDay: day})
	}
}

func parseTopQuery(c *gin.Context) (types.TopQuery, error) {
	year, month, err := yearMonth(c)
	if err != nil {
		return types.TopQuery{}, err
	}

	q := types.TopQuery{Year: year, Month: month}

	if q.Day, err = queryOptionalInt(c, "day"); err != nil {
		return types.TopQuery{}, err
	}

	if q.StartDay, err = queryOptionalInt(c, "start_day"); err != nil {
		return types.TopQuery{}, err
	}

	if q.EndDay, err = queryOptionalInt(c, "end_day"); err != nil {
		return types.TopQuery{}, err
	}

	return q, nil
}
