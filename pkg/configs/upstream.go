package configs

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultUpstreamBaseURL Wikimedia pageviews 接口根路径.
	DefaultUpstreamBaseURL = "https://wikimedia.org/api/rest_v1/metrics/pageviews"
	// DefaultUpstreamUserAgent Wikimedia 要求请求携带可识别的 User-Agent.
	DefaultUpstreamUserAgent   = "wikiviews/" + AppVersion + " (https://github.com/yeisme/wikiviews)"
	DefaultUpstreamForwardUA   = false
	DefaultUpstreamTimeout     = 10   // 单次请求超时，单位秒
	DefaultUpstreamConcurrency = 1    // 日期区间查询的并发请求数，1 表示顺序执行
	DefaultUpstreamMaxArticles = 1000 // 上游 top 接口的条目上限
)

// UpstreamConfig Wikimedia 上游接口配置.
type UpstreamConfig struct {
	BaseURL          string               `mapstructure:"base_url"           rule:"required,url"`
	UserAgent        string               `mapstructure:"user_agent"         rule:"required"`
	ForwardUserAgent bool                 `mapstructure:"forward_user_agent"` // 转发调用方的 User-Agent
	Timeout          int                  `mapstructure:"timeout"            rule:"min=1,max=120"`
	Concurrency      int                  `mapstructure:"concurrency"        rule:"min=1,max=31"`
	MaxArticles      int                  `mapstructure:"max_articles"       rule:"min=1,max=1000"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// GetBaseURL 返回去掉末尾斜杠的 base url.
func (c *UpstreamConfig) GetBaseURL() string {
	return strings.TrimRight(c.BaseURL, "/")
}

// GetTimeoutDuration 返回单次请求超时.
func (c *UpstreamConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// setDefaults 设置上游配置的默认值.
func (c *UpstreamConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upstream.base_url", DefaultUpstreamBaseURL)
	v.SetDefault("upstream.user_agent", DefaultUpstreamUserAgent)
	v.SetDefault("upstream.forward_user_agent", DefaultUpstreamForwardUA)
	v.SetDefault("upstream.timeout", DefaultUpstreamTimeout)
	v.SetDefault("upstream.concurrency", DefaultUpstreamConcurrency)
	v.SetDefault("upstream.max_articles", DefaultUpstreamMaxArticles)

	c.CircuitBreaker.setDefaults(v)
}
