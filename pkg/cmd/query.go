package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/wikiviews/pkg/configs"
	"github.com/yeisme/wikiviews/pkg/internal/service"
	"github.com/yeisme/wikiviews/pkg/internal/types"
	"github.com/yeisme/wikiviews/pkg/internal/wikimedia"
	"github.com/yeisme/wikiviews/pkg/rule"
)

// queryFlags 查询命令共用的日期参数；day、start-day、end-day 为 0 表示未提供.
// Month 交给 service 校验，错误类型为 InvalidDate.
type queryFlags struct {
	Year     int `rule:"min=1"`
	Month    int
	Day      int `rule:"omitempty,calendar_day"`
	StartDay int `rule:"omitempty,calendar_day"`
	EndDay   int `rule:"omitempty,calendar_day"`
}

var (
	qf queryFlags

	topCmd = &cobra.Command{
		Use:   "top",
		Short: "print the most viewed articles for a day, a month or a day range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newPageviewsService()
			if err != nil {
				return err
			}

			articles, err := svc.MostViewedArticles(cmd.Context(), types.TopQuery{
				Year:     qf.Year,
				Month:    qf.Month,
				Day:      optional(qf.Day),
				StartDay: optional(qf.StartDay),
				EndDay:   optional(qf.EndDay),
			})
			if err != nil {
				return err
			}

			return printJSON(cmd, articles)
		},
	}

	viewsCmd = &cobra.Command{
		Use:   "views <article_title>",
		Short: "print the total view count of an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newPageviewsService()
			if err != nil {
				return err
			}

			count, err := svc.ArticleViewCount(cmd.Context(), types.ViewCountQuery{
				Article:  args[0],
				Year:     qf.Year,
				Month:    qf.Month,
				StartDay: optional(qf.StartDay),
				EndDay:   optional(qf.EndDay),
			})
			if err != nil {
				return err
			}

			return printJSON(cmd, types.ViewCountResponse{Article: args[0], ViewCount: count})
		},
	}

	peakCmd = &cobra.Command{
		Use:   "peak <article_title>",
		Short: "print the day of the month on which an article got the most views",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newPageviewsService()
			if err != nil {
				return err
			}

			day, err := svc.DayWithMostViews(cmd.Context(), types.PeakDayQuery{
				Article: args[0],
				Year:    qf.Year,
				Month:   qf.Month,
			})
			if err != nil {
				return err
			}

			return printJSON(cmd, types.PeakDayResponse{Article: args[0], MostViewsDay: day})
		},
	}
)

// newPageviewsService 校验参数并按当前配置构造服务.
func newPageviewsService() (*service.PageviewsService, error) {
	if err := rule.ValidateStruct(qf); err != nil {
		return nil, fmt.Errorf("invalid flags: %v", rule.Errors(err))
	}

	cfg := configs.GetConfig().Upstream

	return service.NewPageviewsService(wikimedia.New(cfg), cfg), nil
}

func optional(v int) *int {
	if v == 0 {
		return nil
	}

	return &v
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(b))

	return nil
}

// registerQueryCommands 注册 top、views、peak 查询命令.
func registerQueryCommands() {
	for _, c := range []*cobra.Command{topCmd, viewsCmd, peakCmd} {
		c.Flags().IntVar(&qf.Year, "year", 2023, "year")
		c.Flags().IntVar(&qf.Month, "month", 1, "month, 1-12")

		rootCmd.AddCommand(c)
	}

	for _, c := range []*cobra.Command{topCmd, viewsCmd} {
		c.Flags().IntVar(&qf.StartDay, "start-day", 0, "first day of the range")
		c.Flags().IntVar(&qf.EndDay, "end-day", 0, "last day of the range")
	}

	topCmd.Flags().IntVar(&qf.Day, "day", 0, "a single day; takes precedence over the range")
}
