package service

import (
	"context"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/wikiviews/pkg/configs"
	ctxPkg "github.com/yeisme/wikiviews/pkg/context"
	"github.com/yeisme/wikiviews/pkg/internal/types"
	"github.com/yeisme/wikiviews/pkg/rule"
	"github.com/yeisme/wikiviews/pkg/tracing"
)

// UpstreamClient 上游 pageviews 接口，suffix 为 base url 之后的路径.
type UpstreamClient interface {
	Fetch(ctx context.Context, suffix string) ([]types.PageviewItem, error)
}

// PageviewsService 聚合 Wikimedia pageviews 数据.
type PageviewsService struct {
	client      UpstreamClient
	maxArticles int
	concurrency int
}

// NewPageviewsService 创建 PageviewsService.
func NewPageviewsService(client UpstreamClient, cfg configs.UpstreamConfig) *PageviewsService {
	s := &PageviewsService{
		client:      client,
		maxArticles: cfg.MaxArticles,
		concurrency: cfg.Concurrency,
	}

	if s.maxArticles <= 0 {
		s.maxArticles = configs.DefaultUpstreamMaxArticles
	}

	if s.concurrency <= 0 {
		s.concurrency = configs.DefaultUpstreamConcurrency
	}

	return s
}

// MostViewedArticles 返回某天、某月或月内日期区间的浏览量最高的文章.
//
// Day 优先于区间；区间查询按天请求后按时间顺序合并，同名文章累加 views.
func (s *PageviewsService) MostViewedArticles(ctx context.Context, q types.TopQuery) ([]types.ArticleStat, error) {
	ctx, span := tracing.StartSpan(ctx, "pageviews.most_viewed_articles",
		trace.WithAttributes(attribute.Int("year", q.Year), attribute.Int("month", q.Month)))
	defer span.End()

	if err := validateMonth(q.Month); err != nil {
		return nil, err
	}

	switch {
	case q.Day != nil:
		return s.topOf(ctx, topDayPath(q.Year, q.Month, *q.Day))
	case q.StartDay != nil && q.EndDay != nil:
		return s.topOfRange(ctx, q.Year, q.Month, *q.StartDay, *q.EndDay)
	default:
		return s.topOf(ctx, topMonthPath(q.Year, q.Month))
	}
}

// topOf 单次请求，取第一个 item 的 articles.
func (s *PageviewsService) topOf(ctx context.Context, suffix string) ([]types.ArticleStat, error) {
	items, err := s.client.Fetch(ctx, suffix)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return []types.ArticleStat{}, nil
	}

	return s.truncate(append([]types.ArticleStat{}, items[0].Articles...)), nil
}

func (s *PageviewsService) topOfRange(ctx context.Context, year, month, startDay, endDay int) ([]types.ArticleStat, error) {
	if startDay > endDay {
		return nil, types.NewInvalidRange(startDay, endDay)
	}

	last := daysIn(year, month)
	if startDay < 1 || endDay > last {
		return nil, types.NewInvalidDate("day range %d-%d is outside %d-%02d (1-%d)", startDay, endDay, year, month, last)
	}

	days := make([][]types.ArticleStat, endDay-startDay+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range days {
		day := startDay + i

		g.Go(func() error {
			items, err := s.client.Fetch(gctx, topDayPath(year, month, day))
			if err != nil {
				return fmt.Errorf("fetch top articles for %d-%02d-%02d: %w", year, month, day, err)
			}

			var articles []types.ArticleStat
			for _, item := range items {
				articles = append(articles, item.Articles...)
			}

			days[i] = articles

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 按日期顺序合并，保持首次出现的顺序
	merged := orderedmap.New[string, types.ArticleStat]()

	for _, articles := range days {
		for _, a := range articles {
			if cur, ok := merged.Get(a.Article); ok {
				cur.Views += a.Views
				merged.Set(a.Article, cur)

				continue
			}

			merged.Set(a.Article, a)
		}
	}

	out := make([]types.ArticleStat, 0, min(merged.Len(), s.maxArticles))
	for pair := merged.Oldest(); pair != nil && len(out) < s.maxArticles; pair = pair.Next() {
		out = append(out, pair.Value)
	}

	ctxPkg.Logger(ctx).Debug().
		Int("days", len(days)).
		Int("articles", merged.Len()).
		Msg("merged top articles for day range")

	return out, nil
}

func (s *PageviewsService) truncate(articles []types.ArticleStat) []types.ArticleStat {
	if len(articles) > s.maxArticles {
		return articles[:s.maxArticles]
	}

	return articles
}

// ArticleViewCount 返回文章在整月或指定日期区间内的浏览总量.
// 显式给出区间时起止日期原样透传.
func (s *PageviewsService) ArticleViewCount(ctx context.Context, q types.ViewCountQuery) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "pageviews.article_view_count",
		trace.WithAttributes(attribute.String("article", q.Article)))
	defer span.End()

	if err := validateTitle(q.Article); err != nil {
		return 0, err
	}

	var start, end string

	if q.StartDay != nil && q.EndDay != nil {
		start = compactDate(q.Year, q.Month, *q.StartDay)
		end = compactDate(q.Year, q.Month, *q.EndDay)
	} else {
		var err error
		if start, end, err = monthWindow(q.Year, q.Month); err != nil {
			return 0, err
		}
	}

	items, err := s.client.Fetch(ctx, perArticlePath(q.Article, start, end))
	if err != nil {
		return 0, err
	}

	var total int64

	for _, item := range items {
		if item.Article == q.Article {
			total += item.Views
		}
	}

	return total, nil
}

// DayWithMostViews 返回文章当月浏览量最高的一天（MM/DD/YYYY），没有数据时返回 nil.
func (s *PageviewsService) DayWithMostViews(ctx context.Context, q types.PeakDayQuery) (*string, error) {
	ctx, span := tracing.StartSpan(ctx, "pageviews.most_views_day",
		trace.WithAttributes(attribute.String("article", q.Article)))
	defer span.End()

	if err := validateTitle(q.Article); err != nil {
		return nil, err
	}

	start, end, err := monthWindow(q.Year, q.Month)
	if err != nil {
		return nil, err
	}

	items, err := s.client.Fetch(ctx, perArticlePath(q.Article, start, end))
	if err != nil {
		return nil, err
	}

	var (
		maxViews int64
		peak     string
		found    bool
	)

	// 严格大于：并列时保留先出现的一天，0 浏览量不计入
	for _, item := range items {
		if item.Article == q.Article && item.Views > maxViews {
			maxViews = item.Views
			peak = item.Timestamp
			found = true
		}
	}

	if !found {
		return nil, nil
	}

	day, err := formatPeakDay(peak)
	if err != nil {
		return nil, err
	}

	return &day, nil
}

func validateTitle(title string) error {
	if err := rule.ValidateVar(title, "article_title"); err != nil {
		return types.NewInvalidArgument("invalid article title %q", title)
	}

	return nil
}
