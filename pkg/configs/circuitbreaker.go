package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// 默认熔断器配置.
	DefaultCBEnabled           = false
	DefaultCBFailureRate       = 0.5
	DefaultCBMinRequests       = 20
	DefaultCBIntervalSeconds   = 60
	DefaultCBTimeoutSeconds    = 30
	DefaultCBMaxRequestsInHalf = 5
)

// CircuitBreakerConfig 上游请求熔断器配置.
type CircuitBreakerConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	FailureRate       float64 `mapstructure:"failure_rate"         rule:"gte=0,lte=1"` // 连续窗口失败比例阈值 [0,1]
	MinRequests       uint32  `mapstructure:"min_requests"`                            // 进入统计的最小请求数
	IntervalSeconds   int     `mapstructure:"interval_seconds"     rule:"min=0"`       // 滑动窗口统计周期
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"      rule:"min=0"`       // 打开状态持续时间（自动半开）
	MaxRequestsInHalf uint32  `mapstructure:"max_requests_in_half"`                    // 半开状态允许的并发请求数
}

// GetInterval 返回统计周期.
func (c *CircuitBreakerConfig) GetInterval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// GetTimeout 返回打开状态持续时间.
func (c *CircuitBreakerConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upstream.circuit_breaker.enabled", DefaultCBEnabled)
	v.SetDefault("upstream.circuit_breaker.failure_rate", DefaultCBFailureRate)
	v.SetDefault("upstream.circuit_breaker.min_requests", DefaultCBMinRequests)
	v.SetDefault("upstream.circuit_breaker.interval_seconds", DefaultCBIntervalSeconds)
	v.SetDefault("upstream.circuit_breaker.timeout_seconds", DefaultCBTimeoutSeconds)
	v.SetDefault("upstream.circuit_breaker.max_requests_in_half", DefaultCBMaxRequestsInHalf)
}
