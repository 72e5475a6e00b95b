package framework

import (
	"context"
)

// JobSource 消息源接口（可靠队列适配）
type JobSource interface {
	// DequeueAndStage 阻塞取出一条消息并原子转入暂存区
	// 返回 (nil, nil) 表示本轮无消息（带超时的消息源）
	DequeueAndStage(ctx context.Context) ([]byte, error)

	// Acknowledge 从暂存区删除消息（按值匹配首条）
	Acknowledge(ctx context.Context, raw []byte) error

	// Reroute 把消息转入死信列表，不做删除
	Reroute(ctx context.Context, raw []byte) error
}

// JobHandler 消息处理函数，返回处理结论
type JobHandler func(ctx context.Context, msg *Message) *Result

// Logger 日志接口
type Logger interface {
	Debugf(ctx context.Context, format string, args ...interface{})
	Infof(ctx context.Context, format string, args ...interface{})
	Warnf(ctx context.Context, format string, args ...interface{})
	Errorf(ctx context.Context, format string, args ...interface{})
}
