// Package context 拓展上下文功能，将请求 ID、调用方 User-Agent、日志等集成到上下文中，方便在应用程序各处传递和使用.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/wikiviews/pkg/log"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "requestID"
	UserAgentKey ContextKey = "userAgent"
)

// WithRequestID 将请求 ID 存储到 context 中.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID 从 context 中获取请求 ID.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}

	return ""
}

// WithUserAgent 保存调用方的 User-Agent，供上游客户端按配置转发.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	if ua == "" {
		return ctx
	}

	return context.WithValue(ctx, UserAgentKey, ua)
}

// GetUserAgent 从 context 中获取调用方 User-Agent.
func GetUserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(UserAgentKey).(string); ok {
		return ua
	}

	return ""
}

// WithTraceContext 创建带有追踪上下文的logger.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		return logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return logger
}

// Logger 返回附带 request_id 与 trace 信息的 logger.
func Logger(ctx context.Context) zerolog.Logger {
	l := *log.Logger()
	if id := GetRequestID(ctx); id != "" {
		l = l.With().Str("request_id", id).Logger()
	}

	return WithTraceContext(ctx, l)
}
