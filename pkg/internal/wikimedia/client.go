// Package wikimedia 实现对 Wikimedia pageviews REST 接口的 HTTP 访问.
//
// Client 只负责拼接 base url、发送 GET、解析 items 并把失败统一转换为
// types.StatsError（KindUpstream）；路径的构造与结果聚合由 service 层完成.
package wikimedia

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/wikiviews/pkg/configs"
	ctxPkg "github.com/yeisme/wikiviews/pkg/context"
	"github.com/yeisme/wikiviews/pkg/internal/types"
	"github.com/yeisme/wikiviews/pkg/metrics"
	"github.com/yeisme/wikiviews/pkg/tracing"
)

const (
	maxBodyBytes    = 8 << 20 // 8MB，1000 条 top 记录远小于该值
	maxDetailLength = 200
	breakerDisabled = "disabled"
)

// Client Wikimedia pageviews 接口客户端.
type Client struct {
	baseURL    string
	userAgent  string
	forwardUA  bool
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker // 未启用熔断时为 nil
}

// Option 自定义 Client.
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client（测试或自定义 Transport 时使用）.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New 根据上游配置创建 Client.
func New(cfg configs.UpstreamConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:    cfg.GetBaseURL(),
		userAgent:  cfg.UserAgent,
		forwardUA:  cfg.ForwardUserAgent,
		httpClient: &http.Client{Timeout: cfg.GetTimeoutDuration()},
	}

	if c.baseURL == "" {
		c.baseURL = strings.TrimRight(configs.DefaultUpstreamBaseURL, "/")
	}

	if c.userAgent == "" {
		c.userAgent = configs.DefaultUpstreamUserAgent
	}

	if cfg.CircuitBreaker.Enabled {
		c.breaker = newBreaker(cfg.CircuitBreaker)
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// newBreaker 基于 gobreaker 的上游熔断；只有传输失败与 5xx 计入失败.
func newBreaker(cfg configs.CircuitBreakerConfig) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        "wikimedia-pageviews",
		MaxRequests: cfg.MaxRequestsInHalf,
		Interval:    cfg.GetInterval(),
		Timeout:     cfg.GetTimeout(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.Requests
			if total < cfg.MinRequests || total == 0 {
				return false
			}
			// 失败比例
			failureRate := float64(counts.TotalFailures) / float64(total)

			return failureRate >= cfg.FailureRate
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}

			var aborted *callerAbortError
			if errors.As(err, &aborted) {
				return true
			}

			se, ok := types.AsStatsError(err)

			return ok && se.Status > 0 && se.Status < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.Set(float64(to))
		},
	}

	return gobreaker.NewCircuitBreaker(settings)
}

// callerAbortError 调用方 ctx 取消或超时导致的失败，不计入熔断.
type callerAbortError struct {
	err error
}

func (e *callerAbortError) Error() string { return e.err.Error() }
func (e *callerAbortError) Unwrap() error { return e.err }

// State 返回熔断器状态：disabled、closed、half-open、open.
func (c *Client) State() string {
	if c.breaker == nil {
		return breakerDisabled
	}

	return c.breaker.State().String()
}

// Fetch 请求 {base_url}/{suffix} 并返回响应中的 items；items 缺失时返回空切片.
func (c *Client) Fetch(ctx context.Context, suffix string) ([]types.PageviewItem, error) {
	kind := requestKind(suffix)

	ctx, span := tracing.StartSpan(ctx, "wikimedia.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("wikimedia.kind", kind),
			attribute.String("wikimedia.path", suffix),
		),
	)
	defer span.End()

	items, err := c.execute(ctx, kind, suffix)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(attribute.Int("wikimedia.items", len(items)))
	span.SetStatus(codes.Ok, "")

	return items, nil
}

func (c *Client) execute(ctx context.Context, kind, suffix string) ([]types.PageviewItem, error) {
	if c.breaker == nil {
		return c.do(ctx, kind, suffix)
	}

	res, err := c.breaker.Execute(func() (any, error) {
		return c.do(ctx, kind, suffix)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, types.NewUpstreamError(http.StatusServiceUnavailable, "circuit breaker open", err)
	}

	if err != nil {
		return nil, err
	}

	items, _ := res.([]types.PageviewItem)

	return items, nil
}

func (c *Client) do(ctx context.Context, kind, suffix string) ([]types.PageviewItem, error) {
	l := ctxPkg.Logger(ctx)
	url := c.baseURL + "/" + strings.TrimLeft(suffix, "/")
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, types.NewUpstreamError(0, "invalid request", err)
	}

	req.Header.Set("User-Agent", c.userAgentFor(ctx))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(kind, "0").Inc()
		metrics.UpstreamDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		if ctx.Err() != nil {
			l.Debug().Err(err).Str("url", url).Msg("wikimedia request canceled by caller")

			return nil, types.NewUpstreamError(0, "", &callerAbortError{err: err})
		}

		l.Warn().Err(err).Str("url", url).Msg("wikimedia request failed")

		return nil, types.NewUpstreamError(0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	metrics.UpstreamRequests.WithLabelValues(kind, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.UpstreamDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	l.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("wikimedia request")

	if err != nil {
		return nil, types.NewUpstreamError(resp.StatusCode, "failed to read response body", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, types.NewUpstreamError(resp.StatusCode, problemDetail(body), nil)
	}

	var payload types.PageviewResponse
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, types.NewUpstreamError(resp.StatusCode, "malformed response body", err)
	}

	if payload.Items == nil {
		return []types.PageviewItem{}, nil
	}

	return payload.Items, nil
}

// userAgentFor 按配置决定是否转发调用方的 User-Agent.
func (c *Client) userAgentFor(ctx context.Context) string {
	if c.forwardUA {
		if ua := ctxPkg.GetUserAgent(ctx); ua != "" {
			return ua
		}
	}

	return c.userAgent
}

// problem Wikimedia 错误响应（application/problem+json）.
type problem struct {
	Title  string `json:"title"`
	Detail any    `json:"detail"`
}

// problemDetail 提取错误响应中可读的说明.
func problemDetail(body []byte) string {
	var p problem
	if err := sonic.Unmarshal(body, &p); err == nil {
		switch d := p.Detail.(type) {
		case string:
			if d != "" {
				return d
			}
		case []any:
			parts := make([]string, 0, len(d))
			for _, v := range d {
				if s, ok := v.(string); ok {
					parts = append(parts, s)
				}
			}

			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}

		if p.Title != "" {
			return p.Title
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxDetailLength {
		text = text[:maxDetailLength] + "..."
	}

	return text
}

// requestKind 返回路径的接口类型，用作指标标签.
func requestKind(suffix string) string {
	kind, _, _ := strings.Cut(strings.TrimLeft(suffix, "/"), "/")
	if kind == "" {
		return "unknown"
	}

	return kind
}
