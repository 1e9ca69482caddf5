package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/wikiviews/pkg/configs"
	"github.com/yeisme/wikiviews/pkg/internal/types"
)

// fakeClient 按 suffix 返回预置数据并记录调用.
type fakeClient struct {
	mu        sync.Mutex
	responses map[string][]types.PageviewItem
	errs      map[string]error
	calls     []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		responses: map[string][]types.PageviewItem{},
		errs:      map[string]error{},
	}
}

func (f *fakeClient) Fetch(_ context.Context, suffix string) ([]types.PageviewItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, suffix)

	if err, ok := f.errs[suffix]; ok {
		return nil, err
	}

	return f.responses[suffix], nil
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func topItem(articles ...types.ArticleStat) []types.PageviewItem {
	return []types.PageviewItem{{Project: "en.wikipedia", Access: "all-access", Articles: articles}}
}

func perArticle(title string, views int64, ts string) types.PageviewItem {
	return types.PageviewItem{Project: "en.wikipedia", Article: title, Granularity: "daily", Views: views, Timestamp: ts}
}

func newService(client UpstreamClient, concurrency int) *PageviewsService {
	return NewPageviewsService(client, configs.UpstreamConfig{
		Concurrency: concurrency,
		MaxArticles: configs.DefaultUpstreamMaxArticles,
	})
}

func TestMostViewedArticles_Month(t *testing.T) {
	fc := newFakeClient()
	fc.responses["top/en.wikipedia/all-access/2023/01/all-days"] = topItem(
		types.ArticleStat{Article: "Main_Page", Views: 100, Rank: 1},
		types.ArticleStat{Article: "Cat", Views: 50, Rank: 2},
	)

	got, err := newService(fc, 1).MostViewedArticles(context.Background(), types.TopQuery{Year: 2023, Month: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"top/en.wikipedia/all-access/2023/01/all-days"}, fc.Calls())
	assert.Len(t, got, 2)
	assert.Equal(t, "Main_Page", got[0].Article)
}

func TestMostViewedArticles_Day(t *testing.T) {
	fc := newFakeClient()
	fc.responses["top/en.wikipedia/all-access/2023/02/07"] = topItem(types.ArticleStat{Article: "Dog", Views: 9, Rank: 1})

	got, err := newService(fc, 1).MostViewedArticles(context.Background(),
		types.TopQuery{Year: 2023, Month: 2, Day: types.IntPtr(7)})
	require.NoError(t, err)
	assert.Equal(t, []types.ArticleStat{{Article: "Dog", Views: 9, Rank: 1}}, got)
}

func TestMostViewedArticles_DayWinsOverRange(t *testing.T) {
	fc := newFakeClient()

	_, err := newService(fc, 1).MostViewedArticles(context.Background(), types.TopQuery{
		Year: 2023, Month: 2, Day: types.IntPtr(3), StartDay: types.IntPtr(12), EndDay: types.IntPtr(7),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"top/en.wikipedia/all-access/2023/02/03"}, fc.Calls())
}

func TestMostViewedArticles_NoItems(t *testing.T) {
	got, err := newService(newFakeClient(), 1).MostViewedArticles(context.Background(),
		types.TopQuery{Year: 2023, Month: 1})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMostViewedArticles_TruncatesToMaxArticles(t *testing.T) {
	articles := make([]types.ArticleStat, 1200)
	for i := range articles {
		articles[i] = types.ArticleStat{Article: fmt.Sprintf("A%d", i), Views: int64(1200 - i), Rank: i + 1}
	}

	fc := newFakeClient()
	fc.responses["top/en.wikipedia/all-access/2023/01/all-days"] = topItem(articles...)

	got, err := newService(fc, 1).MostViewedArticles(context.Background(), types.TopQuery{Year: 2023, Month: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1000)
	assert.Equal(t, "A999", got[999].Article)
}

func rangeClient() *fakeClient {
	fc := newFakeClient()
	fc.responses["top/en.wikipedia/all-access/2023/03/04"] = topItem(
		types.ArticleStat{Article: "test1", Views: 100, Rank: 1},
		types.ArticleStat{Article: "test2", Views: 200, Rank: 2},
	)
	fc.responses["top/en.wikipedia/all-access/2023/03/05"] = topItem(
		types.ArticleStat{Article: "test2", Views: 400, Rank: 1},
		types.ArticleStat{Article: "test1", Views: 200, Rank: 2},
		types.ArticleStat{Article: "test3", Views: 100, Rank: 3},
	)

	return fc
}

func TestMostViewedArticles_RangeMergesViews(t *testing.T) {
	fc := rangeClient()

	got, err := newService(fc, 1).MostViewedArticles(context.Background(), types.TopQuery{
		Year: 2023, Month: 3, StartDay: types.IntPtr(4), EndDay: types.IntPtr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"top/en.wikipedia/all-access/2023/03/04",
		"top/en.wikipedia/all-access/2023/03/05",
	}, fc.Calls())

	// 首次出现的顺序，rank 保留首次记录的值
	assert.Equal(t, []types.ArticleStat{
		{Article: "test1", Views: 300, Rank: 1},
		{Article: "test2", Views: 600, Rank: 2},
		{Article: "test3", Views: 100, Rank: 3},
	}, got)
}

func TestMostViewedArticles_RangeTruncatesToMaxArticles(t *testing.T) {
	fc := newFakeClient()
	fc.responses["top/en.wikipedia/all-access/2023/03/04"] = topItem(
		types.ArticleStat{Article: "a", Views: 10, Rank: 1},
		types.ArticleStat{Article: "b", Views: 5, Rank: 2},
	)
	fc.responses["top/en.wikipedia/all-access/2023/03/05"] = topItem(
		types.ArticleStat{Article: "c", Views: 50, Rank: 1},
		types.ArticleStat{Article: "a", Views: 40, Rank: 2},
		types.ArticleStat{Article: "d", Views: 30, Rank: 3},
		types.ArticleStat{Article: "e", Views: 20, Rank: 4},
	)

	svc := NewPageviewsService(fc, configs.UpstreamConfig{Concurrency: 2, MaxArticles: 3})

	got, err := svc.MostViewedArticles(context.Background(), types.TopQuery{
		Year: 2023, Month: 3, StartDay: types.IntPtr(4), EndDay: types.IntPtr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, []types.ArticleStat{
		{Article: "a", Views: 50, Rank: 1},
		{Article: "b", Views: 5, Rank: 2},
		{Article: "c", Views: 50, Rank: 1},
	}, got)
}

func TestMostViewedArticles_RangeConcurrentKeepsOrder(t *testing.T) {
	sequential, err := newService(rangeClient(), 1).MostViewedArticles(context.Background(), types.TopQuery{
		Year: 2023, Month: 3, StartDay: types.IntPtr(4), EndDay: types.IntPtr(5),
	})
	require.NoError(t, err)

	for range 20 {
		got, err := newService(rangeClient(), 4).MostViewedArticles(context.Background(), types.TopQuery{
			Year: 2023, Month: 3, StartDay: types.IntPtr(4), EndDay: types.IntPtr(5),
		})
		require.NoError(t, err)
		assert.Equal(t, sequential, got)
	}
}

func TestMostViewedArticles_InvalidRange(t *testing.T) {
	fc := newFakeClient()

	_, err := newService(fc, 1).MostViewedArticles(context.Background(), types.TopQuery{
		Year: 2023, Month: 3, StartDay: types.IntPtr(12), EndDay: types.IntPtr(7),
	})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindInvalidRange))
	assert.Empty(t, fc.Calls())
}

func TestMostViewedArticles_NonexistentDay(t *testing.T) {
	fc := newFakeClient()

	_, err := newService(fc, 1).MostViewedArticles(context.Background(), types.TopQuery{
		Year: 2023, Month: 2, StartDay: types.IntPtr(27), EndDay: types.IntPtr(30),
	})
	assert.True(t, types.IsKind(err, types.KindInvalidDate))
	assert.Empty(t, fc.Calls())
}

func TestMostViewedArticles_InvalidMonth(t *testing.T) {
	fc := newFakeClient()

	_, err := newService(fc, 1).MostViewedArticles(context.Background(), types.TopQuery{Year: 2023, Month: 13})
	assert.True(t, types.IsKind(err, types.KindInvalidDate))
	assert.Empty(t, fc.Calls())
}

func TestMostViewedArticles_RangeUpstreamFailure(t *testing.T) {
	fc := rangeClient()
	fc.errs["top/en.wikipedia/all-access/2023/03/05"] = types.NewUpstreamError(404, "Not found.", nil)

	_, err := newService(fc, 1).MostViewedArticles(context.Background(), types.TopQuery{
		Year: 2023, Month: 3, StartDay: types.IntPtr(4), EndDay: types.IntPtr(5),
	})
	require.Error(t, err)

	se, ok := types.AsStatsError(err)
	require.True(t, ok)
	assert.Equal(t, types.KindUpstream, se.Kind)
	assert.Equal(t, 404, se.Status)
}

func TestArticleViewCount_Month(t *testing.T) {
	fc := newFakeClient()
	fc.responses["per-article/en.wikipedia/all-access/all-agents/Cat/daily/20200201/20200229"] = []types.PageviewItem{
		perArticle("Cat", 10, "2020020100"),
		perArticle("Cat", 15, "2020020200"),
		perArticle("cat", 99, "2020020200"),
	}

	got, err := newService(fc, 1).ArticleViewCount(context.Background(),
		types.ViewCountQuery{Article: "Cat", Year: 2020, Month: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(25), got)
}

func TestArticleViewCount_ExplicitRangePassesThrough(t *testing.T) {
	fc := newFakeClient()

	got, err := newService(fc, 1).ArticleViewCount(context.Background(), types.ViewCountQuery{
		Article: "Cat", Year: 2023, Month: 1, StartDay: types.IntPtr(9), EndDay: types.IntPtr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
	assert.Equal(t, []string{"per-article/en.wikipedia/all-access/all-agents/Cat/daily/20230109/20230103"}, fc.Calls())
}

func TestArticleViewCount_NoMatch(t *testing.T) {
	fc := newFakeClient()
	fc.responses["per-article/en.wikipedia/all-access/all-agents/Cat/daily/20230101/20230131"] = []types.PageviewItem{
		perArticle("Dog", 10, "2023010100"),
	}

	got, err := newService(fc, 1).ArticleViewCount(context.Background(),
		types.ViewCountQuery{Article: "Cat", Year: 2023, Month: 1})
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestArticleViewCount_InvalidMonth(t *testing.T) {
	fc := newFakeClient()

	_, err := newService(fc, 1).ArticleViewCount(context.Background(),
		types.ViewCountQuery{Article: "Cat", Year: 2023, Month: 0})
	assert.True(t, types.IsKind(err, types.KindInvalidDate))
	assert.Empty(t, fc.Calls())
}

func TestArticleViewCount_EscapesTitle(t *testing.T) {
	fc := newFakeClient()

	_, err := newService(fc, 1).ArticleViewCount(context.Background(),
		types.ViewCountQuery{Article: "AC/DC", Year: 2023, Month: 4})
	require.NoError(t, err)

	require.Len(t, fc.Calls(), 1)
	assert.True(t, strings.Contains(fc.Calls()[0], "/AC%2FDC/daily/20230401/20230430"))
}

func TestArticleViewCount_EmptyTitle(t *testing.T) {
	fc := newFakeClient()

	_, err := newService(fc, 1).ArticleViewCount(context.Background(),
		types.ViewCountQuery{Article: "  ", Year: 2023, Month: 1})
	assert.True(t, types.IsKind(err, types.KindInvalidArgument))
	assert.Empty(t, fc.Calls())
}

func TestArticleViewCount_UpstreamFailure(t *testing.T) {
	fc := newFakeClient()
	fc.errs["per-article/en.wikipedia/all-access/all-agents/Cat/daily/20230101/20230131"] =
		types.NewUpstreamError(0, "", fmt.Errorf("connection refused"))

	_, err := newService(fc, 1).ArticleViewCount(context.Background(),
		types.ViewCountQuery{Article: "Cat", Year: 2023, Month: 1})
	assert.True(t, types.IsKind(err, types.KindUpstream))
}

func TestDayWithMostViews(t *testing.T) {
	fc := newFakeClient()
	fc.responses["per-article/en.wikipedia/all-access/all-agents/Cat/daily/20200301/20200331"] = []types.PageviewItem{
		perArticle("Cat", 300, "2020030500"),
		perArticle("Cat", 200, "2020032000"),
		perArticle("Cat", 700, "2020031900"),
	}

	got, err := newService(fc, 1).DayWithMostViews(context.Background(),
		types.PeakDayQuery{Article: "Cat", Year: 2020, Month: 3})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "03/19/2020", *got)
}

func TestDayWithMostViews_TieKeepsFirst(t *testing.T) {
	fc := newFakeClient()
	fc.responses["per-article/en.wikipedia/all-access/all-agents/Cat/daily/20200301/20200331"] = []types.PageviewItem{
		perArticle("Cat", 500, "2020030200"),
		perArticle("Cat", 500, "2020030900"),
	}

	got, err := newService(fc, 1).DayWithMostViews(context.Background(),
		types.PeakDayQuery{Article: "Cat", Year: 2020, Month: 3})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "03/02/2020", *got)
}

func TestDayWithMostViews_NoData(t *testing.T) {
	fc := newFakeClient()
	fc.responses["per-article/en.wikipedia/all-access/all-agents/Cat/daily/20200301/20200331"] = []types.PageviewItem{
		perArticle("Cat", 0, "2020030100"),
	}

	svc := newService(fc, 1)

	got, err := svc.DayWithMostViews(context.Background(), types.PeakDayQuery{Article: "Cat", Year: 2020, Month: 3})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.DayWithMostViews(context.Background(), types.PeakDayQuery{Article: "Dog", Year: 2020, Month: 3})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDayWithMostViews_MalformedTimestamp(t *testing.T) {
	fc := newFakeClient()
	fc.responses["per-article/en.wikipedia/all-access/all-agents/Cat/daily/20200301/20200331"] = []types.PageviewItem{
		perArticle("Cat", 10, "March 5"),
	}

	_, err := newService(fc, 1).DayWithMostViews(context.Background(),
		types.PeakDayQuery{Article: "Cat", Year: 2020, Month: 3})
	assert.True(t, types.IsKind(err, types.KindUpstream))
}

func TestDayWithMostViews_InvalidMonth(t *testing.T) {
	fc := newFakeClient()

	_, err := newService(fc, 1).DayWithMostViews(context.Background(),
		types.PeakDayQuery{Article: "Cat", Year: 2020, Month: 0})
	assert.True(t, types.IsKind(err, types.KindInvalidDate))
	assert.Empty(t, fc.Calls())
}

func TestOperationsAreIdempotent(t *testing.T) {
	fc := rangeClient()
	fc.responses["per-article/en.wikipedia/all-access/all-agents/test1/daily/20230301/20230331"] = []types.PageviewItem{
		perArticle("test1", 100, "2023030400"),
		perArticle("test1", 200, "2023030500"),
	}

	svc := newService(fc, 2)
	ctx := context.Background()
	top := types.TopQuery{Year: 2023, Month: 3, StartDay: types.IntPtr(4), EndDay: types.IntPtr(5)}
	vc := types.ViewCountQuery{Article: "test1", Year: 2023, Month: 3}
	pd := types.PeakDayQuery{Article: "test1", Year: 2023, Month: 3}

	top1, err := svc.MostViewedArticles(ctx, top)
	require.NoError(t, err)
	top2, err := svc.MostViewedArticles(ctx, top)
	require.NoError(t, err)
	assert.Equal(t, top1, top2)

	// 修改返回值不影响下一次结果
	top1[0].Views = -1
	top3, err := svc.MostViewedArticles(ctx, top)
	require.NoError(t, err)
	assert.Equal(t, top2, top3)

	n1, err := svc.ArticleViewCount(ctx, vc)
	require.NoError(t, err)
	n2, err := svc.ArticleViewCount(ctx, vc)
	require.NoError(t, err)
	assert.Equal(t, n1, n2)

	d1, err := svc.DayWithMostViews(ctx, pd)
	require.NoError(t, err)
	d2, err := svc.DayWithMostViews(ctx, pd)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.Equal(t, "03/05/2023", *d1)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "top/en.wikipedia/all-access/2020/03/09", topDayPath(2020, 3, 9))
	assert.Equal(t, "top/en.wikipedia/all-access/2020/11/all-days", topMonthPath(2020, 11))
	assert.Equal(t, "per-article/en.wikipedia/all-access/all-agents/Albert_Einstein/daily/20200101/20200131",
		perArticlePath("Albert_Einstein", compactDate(2020, 1, 1), compactDate(2020, 1, 31)))
	assert.Equal(t, 29, daysIn(2020, 2))
	assert.Equal(t, 28, daysIn(2023, 2))
}
