package service

import (
	"fmt"
	"net/url"
	"time"

	"github.com/yeisme/wikiviews/pkg/internal/types"
)

const (
	project      = "en.wikipedia"
	access       = "all-access"
	agent        = "all-agents"
	allDays      = "all-days"
	granularity  = "daily"
	timestampFmt = "2006010215" // YYYYMMDDHH
	peakDayFmt   = "01/02/2006" // MM/DD/YYYY
)

// topDayPath top/en.wikipedia/all-access/{year}/{month}/{day}.
func topDayPath(year, month, day int) string {
	return fmt.Sprintf("top/%s/%s/%d/%02d/%02d", project, access, year, month, day)
}

// topMonthPath top/en.wikipedia/all-access/{year}/{month}/all-days.
func topMonthPath(year, month int) string {
	return fmt.Sprintf("top/%s/%s/%d/%02d/%s", project, access, year, month, allDays)
}

// perArticlePath per-article/en.wikipedia/all-access/all-agents/{title}/daily/{start}/{end}.
func perArticlePath(title, start, end string) string {
	return fmt.Sprintf("per-article/%s/%s/%s/%s/%s/%s/%s",
		project, access, agent, url.PathEscape(title), granularity, start, end)
}

// compactDate 格式化为 YYYYMMDD，不校验日期是否存在.
func compactDate(year, month, day int) string {
	return fmt.Sprintf("%d%02d%02d", year, month, day)
}

// validateMonth 月份必须在 1-12.
func validateMonth(month int) error {
	if month < 1 || month > 12 {
		return types.NewInvalidDate("month %d is out of range 1-12", month)
	}

	return nil
}

// daysIn 返回指定月份的天数.
func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// monthWindow 返回整月的起止日期（YYYYMMDD）.
func monthWindow(year, month int) (string, string, error) {
	if err := validateMonth(month); err != nil {
		return "", "", err
	}

	return compactDate(year, month, 1), compactDate(year, month, daysIn(year, month)), nil
}

// formatPeakDay 将 YYYYMMDDHH 转换为 MM/DD/YYYY.
func formatPeakDay(ts string) (string, error) {
	t, err := time.Parse(timestampFmt, ts)
	if err != nil {
		return "", types.NewUpstreamError(0, fmt.Sprintf("malformed timestamp %q", ts), err)
	}

	return t.Format(peakDayFmt), nil
}
