package framework

import (
	"context"
	"time"
)

// MessageSource 任务队列（生产环境为 lmstfy）
type MessageSource interface {
	// Consume 阻塞至拉到任务或 timeout 到期，超时返回 (nil, nil)
	Consume(queue string, timeout time.Duration, ttr time.Duration) (*Message, error)
	Ack(queue string, jobID string) error
}

// Logger 框架只依赖带 Context 的格式化日志
type Logger interface {
	Debugf(ctx context.Context, format string, args ...interface{})
	Infof(ctx context.Context, format string, args ...interface{})
	Warnf(ctx context.Context, format string, args ...interface{})
	Errorf(ctx context.Context, format string, args ...interface{})
}

// ProcessorFunc 询价处理链中的一步
type ProcessorFunc func(ctx context.Context) error
