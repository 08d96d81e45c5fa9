package common

import (
	"context"
	"encoding/json"
	"time"

	"oip/ratesync/internal/business/rating"
	"oip/ratesync/internal/domains/common/job"
	"oip/ratesync/internal/domains/common/response"
	"oip/ratesync/pkg/infra/redis"
	"oip/ratesync/pkg/logger"
)

// HandlerServProc Handler 构造函数类型
type HandlerServProc func(ctx context.Context, deps *Deps, meta *job.Meta, payload json.RawMessage) (HandlerServ, error)

// HandlerServ Handler 接口
type HandlerServ interface {
	GetProcess() *response.Response
}

// CallbackPublisher 回调队列发布者（lmstfy）
type CallbackPublisher interface {
	PublishJSON(queue string, v interface{}) error
}

// Notifier 完成通知（redis pub/sub）
type Notifier interface {
	PublishRateComplete(ctx context.Context, channel string, notification *redis.RateNotification) error
}

// Deps Handler 依赖（由 Manager 注入）
type Deps struct {
	Service        *rating.Service
	Catalog        rating.CarrierCatalog
	Callback       CallbackPublisher
	CallbackQueue  string
	Notifier       Notifier // 可选
	NotifyChannel  string
	DefaultTimeout time.Duration // payload 未指定 timeout_ms 时使用
	Logger         logger.Logger
}
