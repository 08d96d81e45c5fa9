package framework

import (
	"time"

	"oip/ratesync/pkg/config"
)

// 未配置时的兜底值
const (
	defaultConcurrency  = 1
	defaultPollTimeout  = 3 * time.Second
	defaultTTR          = 30 * time.Second
	defaultErrorBackoff = time.Second
)

// SubscriberConfig 拉取侧参数
type SubscriberConfig struct {
	QueueName    string
	Concurrency  int
	Timeout      time.Duration // 单次 Consume 阻塞时长
	TTR          time.Duration // 未 ACK 时 lmstfy 重新投递的间隔
	Rate         time.Duration // 两次拉取之间的间隔，0 不限速
	ErrorBackoff time.Duration
}

// ProcessorConfig 处理侧参数
type ProcessorConfig struct {
	Concurrency int
	BufferSize  int
	Timeout     time.Duration // 0 表示只随父 Context 取消
}

// NewSubscriberConfig 由 worker 配置生成拉取参数，零值字段使用默认值
func NewSubscriberConfig(wc config.WorkerConfig) *SubscriberConfig {
	cfg := &SubscriberConfig{
		QueueName:    wc.QueueName,
		Concurrency:  wc.Subscriber.Threads,
		Timeout:      wc.Subscriber.Timeout,
		TTR:          wc.Subscriber.TTR,
		Rate:         wc.Subscriber.Rate,
		ErrorBackoff: wc.Subscriber.ErrorBackoff,
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPollTimeout
	}
	if cfg.TTR <= 0 {
		cfg.TTR = defaultTTR
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = defaultErrorBackoff
	}
	return cfg
}

// NewProcessorConfig 由 worker 配置生成处理参数
// 缓冲区默认与并发数一致，Subscriber 最多领先一轮
func NewProcessorConfig(wc config.WorkerConfig) *ProcessorConfig {
	cfg := &ProcessorConfig{
		Concurrency: wc.Processor.Threads,
		BufferSize:  wc.Processor.BufferSize,
		Timeout:     wc.Processor.Timeout,
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.BufferSize < 0 {
		cfg.BufferSize = 0
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = cfg.Concurrency
	}
	return cfg
}
