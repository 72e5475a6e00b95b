package errorutil

import (
	"errors"
	"fmt"
)

// Error 错误结构（包含可重试标记）
// Retryable=true 表示暂时性故障，任务应留在 processing 队列等待恢复
// Retryable=false 表示确定性失败，重试不会改变结果
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`
}

// Error 实现 error 接口
func (e *Error) Error() string {
	return e.Message
}

// Retriable 创建可重试错误（网络错误、存储不可达等）
func Retriable(message string) *Error {
	return &Error{
		Code:      500,
		Message:   message,
		Retryable: true,
	}
}

// RetriableWithDetails 创建可重试错误（带详细信息）
func RetriableWithDetails(message string, details string) *Error {
	return &Error{
		Code:       500,
		Message:    message,
		Retryable:  true,
		DevDetails: details,
	}
}

// NonRetriable 创建不可重试错误（参数错误、业务规则错误等）
func NonRetriable(message string) *Error {
	return &Error{
		Code:      400,
		Message:   message,
		Retryable: false,
	}
}

// NotFound 创建实体缺失错误（不可重试）
func NotFound(message string) *Error {
	return &Error{
		Code:      404,
		Message:   message,
		Retryable: false,
	}
}

// Wrap 包装错误
// 未分类的错误默认可重试：消费侧宁可让任务滞留等待恢复，也不能当作终态丢弃
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	// 链路上已有 Error 类型则直接返回（含 fmt.Errorf %w 包装的情形）
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{
		Code:       500,
		Message:    err.Error(),
		Retryable:  true,
		DevDetails: fmt.Sprintf("%+v", err),
	}
}
