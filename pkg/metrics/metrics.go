// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集HTTP请求与上游 Wikimedia 调用的指标.
//
// Example:
//
//	import "github.com/yeisme/wikiviews/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.RequestCounter.WithLabelValues("GET", "/most_viewed_articles", "200").Inc()
//	metrics.UpstreamDuration.WithLabelValues("top").Observe(0.1)
package metrics

import (
	"fmt"
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/wikiviews/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// UpstreamRequests 上游 Wikimedia 请求计数，status 为 0 表示传输层失败.
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikimedia_requests_total",
			Help: "Total number of requests sent to the Wikimedia pageviews API",
		},
		[]string{"kind", "status"},
	)

	// UpstreamDuration 上游请求耗时.
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wikimedia_request_duration_seconds",
			Help:    "Wikimedia pageviews API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// BreakerState 上游熔断器状态：0 closed，1 half-open，2 open.
	BreakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wikimedia_circuit_breaker_state",
			Help: "Circuit breaker state for the Wikimedia API (0 closed, 1 half-open, 2 open)",
		},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()

	registerOnce sync.Once
)

// InitMetrics 初始化Metrics，重复调用只注册一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	var err error

	registerOnce.Do(func() {
		cs := []prometheus.Collector{RequestCounter, RequestDuration, UpstreamRequests, UpstreamDuration, BreakerState}

		// 注册标准收集器
		if config.RuntimeMetrics {
			cs = append(cs,
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		for _, c := range cs {
			if e := registry.Register(c); e != nil {
				err = e
				return
			}
		}
	})

	return err
}

// StartMetricsServer 在给定 engine 上注册指标端点.
func StartMetricsServer(config configs.MetricsConfig, engine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	path := config.Path
	if path == "" {
		path = "/metrics"
	}

	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("metrics path %q must begin with '/'", path)
	}

	engine.GET(path, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
