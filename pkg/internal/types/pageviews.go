// Package types 定义 pageviews 领域的数据结构、查询参数与响应结构.
package types

// ArticleStat 单篇文章的浏览量记录.
type ArticleStat struct {
	Article   string `json:"article"`
	Views     int64  `json:"views"`
	Rank      int    `json:"rank,omitempty"`      // top 接口的排名
	Timestamp string `json:"timestamp,omitempty"` // YYYYMMDDHH
}

// PageviewItem 上游 items 数组中的单个元素.
// top 接口返回 Articles 列表；per-article 接口返回扁平的 Article/Views/Timestamp.
type PageviewItem struct {
	Project     string        `json:"project,omitempty"`
	Access      string        `json:"access,omitempty"`
	Agent       string        `json:"agent,omitempty"`
	Granularity string        `json:"granularity,omitempty"`
	Year        string        `json:"year,omitempty"`
	Month       string        `json:"month,omitempty"`
	Day         string        `json:"day,omitempty"`
	Article     string        `json:"article,omitempty"`
	Views       int64         `json:"views,omitempty"`
	Timestamp   string        `json:"timestamp,omitempty"`
	Articles    []ArticleStat `json:"articles,omitempty"`
}

// PageviewResponse 上游响应体.
type PageviewResponse struct {
	Items []PageviewItem `json:"items"`
}

// TopQuery most viewed articles 查询参数；nil 表示未提供.
type TopQuery struct {
	Year     int
	Month    int
	Day      *int
	StartDay *int
	EndDay   *int
}

// ViewCountQuery 单篇文章浏览总量查询参数.
type ViewCountQuery struct {
	Article  string
	Year     int
	Month    int
	StartDay *int
	EndDay   *int
}

// PeakDayQuery 单篇文章当月浏览峰值日查询参数.
type PeakDayQuery struct {
	Article string
	Year    int
	Month   int
}

// ViewCountResponse /article_view_count 响应.
type ViewCountResponse struct {
	Article   string `json:"article"`
	ViewCount int64  `json:"view_count"`
}

// PeakDayResponse /most_views_day 响应，MostViewsDay 为 null 表示没有数据.
type PeakDayResponse struct {
	Article      string  `json:"article"`
	MostViewsDay *string `json:"most_views_day"`
}

// ErrorResponse 错误响应（JSON 协商时使用）.
type ErrorResponse struct {
	Error  string    `json:"error"`
	Kind   ErrorKind `json:"kind"`
	Status int       `json:"upstream_status,omitempty"`
}

// IntPtr 返回 v 的指针，便于构造可选参数.
func IntPtr(v int) *int { return &v }
