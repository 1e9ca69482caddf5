package types

import (
	"errors"
	"fmt"
)

// ErrorKind 错误分类.
type ErrorKind string

const (
	KindInvalidRange    ErrorKind = "InvalidRange"    // start_day > end_day
	KindInvalidDate     ErrorKind = "InvalidDate"     // 月份越界或日期不存在
	KindInvalidArgument ErrorKind = "InvalidArgument" // 参数缺失或格式错误
	KindUpstream        ErrorKind = "UpstreamError"   // 上游非 2xx、传输失败或响应无法解析
)

// StatsError 统计查询的领域错误.
type StatsError struct {
	Kind    ErrorKind
	Message string
	Status  int // 上游 HTTP 状态码，仅 KindUpstream 有意义；0 表示未拿到响应
	Err     error
}

func (e *StatsError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *StatsError) Unwrap() error { return e.Err }

// NewInvalidRange 构造 InvalidRange 错误.
func NewInvalidRange(startDay, endDay int) *StatsError {
	return &StatsError{
		Kind:    KindInvalidRange,
		Message: fmt.Sprintf("start day %d is after end day %d", startDay, endDay),
	}
}

// NewInvalidDate 构造 InvalidDate 错误.
func NewInvalidDate(format string, args ...any) *StatsError {
	return &StatsError{Kind: KindInvalidDate, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidArgument 构造 InvalidArgument 错误.
func NewInvalidArgument(format string, args ...any) *StatsError {
	return &StatsError{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NewUpstreamError 构造 UpstreamError；status 为 0 表示传输层失败.
func NewUpstreamError(status int, detail string, err error) *StatsError {
	msg := "failed to retrieve data from the Wikimedia API"
	if status > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, status)
	}

	if detail != "" {
		msg += ": " + detail
	}

	return &StatsError{Kind: KindUpstream, Message: msg, Status: status, Err: err}
}

// AsStatsError 从错误链中取出 *StatsError.
func AsStatsError(err error) (*StatsError, bool) {
	var se *StatsError
	if errors.As(err, &se) {
		return se, true
	}

	return nil, false
}

// KindOf 返回错误分类；非 StatsError 返回空字符串.
func KindOf(err error) ErrorKind {
	if se, ok := AsStatsError(err); ok {
		return se.Kind
	}

	return ""
}

// IsKind 判断错误链中是否包含指定分类的 StatsError.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
