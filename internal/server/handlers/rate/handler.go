package rate

import (
	"context"
	"time"

	"oip/ratesync/internal/business/rating"
	"oip/ratesync/pkg/infra/redis"
	"oip/ratesync/pkg/logger"
)

// JobPublisher 询价任务投递（lmstfy）
type JobPublisher interface {
	PublishJSON(queue string, v interface{}) error
}

// CompletionWatcher 询价完成通知订阅（redis）
type CompletionWatcher interface {
	WatchRateComplete(ctx context.Context, channel, requestID string) (*redis.RateWatch, error)
}

// Options RateHandler 配置
type Options struct {
	DefaultTimeout time.Duration
	JobQueue       string // 异步任务队列，为空时不开放 /jobs
	CallbackQueue  string // 异步任务回调队列（为空使用 worker 默认值）
	NotifyChannel  string
}

// RateHandler 询价 HTTP 处理器
type RateHandler struct {
	service *rating.Service
	catalog rating.CarrierCatalog
	jobs    JobPublisher
	watcher CompletionWatcher
	opts    Options
	logger  logger.Logger
}

// NewRateHandler 创建询价处理器实例
// jobs / watcher 可为 nil
func NewRateHandler(
	service *rating.Service,
	catalog rating.CarrierCatalog,
	jobs JobPublisher,
	watcher CompletionWatcher,
	opts Options,
	log logger.Logger,
) *RateHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RateHandler{
		service: service,
		catalog: catalog,
		jobs:    jobs,
		watcher: watcher,
		opts:    opts,
		logger:  log,
	}
}

// timeout 请求指定优先，否则使用默认值
func (h *RateHandler) timeout(timeoutMS int64) time.Duration {
	if timeoutMS > 0 {
		return time.Duration(timeoutMS) * time.Millisecond
	}
	return h.opts.DefaultTimeout
}

// resolveCarriers 请求未指定承运商时查询目录
func (h *RateHandler) resolveCarriers(ctx context.Context, carrierIDs []string, form map[string]interface{}) ([]string, error) {
	if len(carrierIDs) > 0 || h.catalog == nil {
		return carrierIDs, nil
	}
	req := rating.NormalizeShipment(form)
	return h.catalog.EligibleCarriers(ctx, req.ShipmentType)
}
