package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"oip/ratesync/internal/business/rating"
	"oip/ratesync/internal/domains/common"
	"oip/ratesync/internal/domains/common/job"
	"oip/ratesync/internal/domains/common/response"
	"oip/ratesync/internal/framework"
	"oip/ratesync/pkg/infra/redis"
	"oip/ratesync/pkg/logger"
)

// RateQuoteHandler 多承运商询价 Handler
type RateQuoteHandler struct {
	ctx     context.Context
	deps    *common.Deps
	meta    *job.Meta
	jobData *job.RateQuoteData
	logger  logger.Logger

	carrierIDs []string
	quote      *rating.QuoteResult
}

// NewRateQuoteHandler 创建询价 Handler
// 解析标准化 Job 消息
func NewRateQuoteHandler(ctx context.Context, deps *common.Deps, meta *job.Meta, payload json.RawMessage) (common.HandlerServ, error) {
	if deps == nil || deps.Service == nil {
		return nil, fmt.Errorf("rating service is not configured")
	}

	var bizData job.RateQuoteData
	if err := json.Unmarshal(payload, &bizData); err != nil {
		return nil, fmt.Errorf("unmarshal business data failed: %w", err)
	}

	// 校验必填字段
	if len(bizData.Shipment) == 0 {
		return nil, fmt.Errorf("shipment is required")
	}
	if bizData.TimeoutMS < 0 {
		return nil, fmt.Errorf("timeout_ms must not be negative")
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &RateQuoteHandler{
		ctx:     ctx,
		deps:    deps,
		meta:    meta,
		jobData: &bizData,
		logger:  log,
	}, nil
}

// GetProcess 处理询价请求
func (h *RateQuoteHandler) GetProcess() *response.Response {
	// 1. 创建结果
	result := response.NewRateQuoteResult()

	// 2. 处理业务逻辑（前置函数链 + 询价）
	err := framework.NewPreProcessor([]framework.ProcessorFunc{
		h.resolveCarriers,
		h.runQuote,
	}).Run(h.ctx)
	result.Data = h.quote

	// 3. 包装响应
	resp := &response.Response{}
	resp.WrapResponse(result, h.meta, err)

	// 4. 发送回调（失败时需要重投）
	if cbErr := h.sendCallback(result); cbErr != nil {
		h.logger.Errorf(h.ctx, "[RateQuoteHandler] callback failed: %v", cbErr)
		resp.MarkUndelivered(cbErr)
		return resp
	}

	// 5. 完成通知（尽力而为）
	h.notify(result)

	return resp
}

// resolveCarriers 确定询价承运商：payload 指定优先，否则查目录
func (h *RateQuoteHandler) resolveCarriers(ctx context.Context) error {
	if len(h.jobData.CarrierIDs) > 0 {
		h.carrierIDs = h.jobData.CarrierIDs
		return nil
	}
	if h.deps.Catalog == nil {
		return fmt.Errorf("carrier_ids is required when no carrier catalog is configured")
	}

	req := rating.NormalizeShipment(h.jobData.Shipment)
	ids, err := h.deps.Catalog.EligibleCarriers(ctx, req.ShipmentType)
	if err != nil {
		return fmt.Errorf("load eligible carriers: %w", err)
	}
	h.logger.Infof(ctx, "[RateQuoteHandler] %d eligible carriers for %s shipment", len(ids), req.ShipmentType)
	h.carrierIDs = ids
	return nil
}

// runQuote 执行询价
func (h *RateQuoteHandler) runQuote(ctx context.Context) error {
	timeout := h.deps.DefaultTimeout
	if h.jobData.TimeoutMS > 0 {
		timeout = time.Duration(h.jobData.TimeoutMS) * time.Millisecond
	}

	res, err := h.deps.Service.Quote(ctx, h.jobData.Shipment, h.carrierIDs, rating.RateOptions{Timeout: timeout})
	h.quote = res
	return err
}

func (h *RateQuoteHandler) sendCallback(result *response.RateQuoteResult) error {
	queue := h.deps.CallbackQueue
	if h.jobData.CallbackQueue != "" {
		queue = h.jobData.CallbackQueue
	}
	if queue == "" || h.deps.Callback == nil {
		return nil
	}

	callback := job.RateQuoteCallback{
		RequestID:   h.meta.RequestID,
		ID:          h.meta.ID,
		Status:      result.Status,
		ProcessedAt: time.Now().Unix(),
	}
	if result.Data != nil {
		callback.Result = result.Data
	}
	if result.Error != nil {
		callback.Error = result.Error
	}

	return h.deps.Callback.PublishJSON(queue, callback)
}

func (h *RateQuoteHandler) notify(result *response.RateQuoteResult) {
	if h.deps.Notifier == nil || h.deps.NotifyChannel == "" {
		return
	}

	notification := &redis.RateNotification{
		RequestID: h.meta.RequestID,
		ID:        h.meta.ID,
		Status:    redis.RateStatusQuoted,
		Timestamp: time.Now().Unix(),
	}
	if result.Error != nil {
		notification.Status = redis.RateStatusFailed
	}
	if q := result.Data; q != nil {
		if q.Aggregation != nil {
			notification.SuccessCount = q.Aggregation.SuccessCount
			notification.FailedCount = len(q.Aggregation.FailedCarriers)
		}
		if sel := q.Selection; sel != nil && sel.Recommended != nil {
			notification.RecommendedID = sel.Recommended.CarrierID
			notification.CheapestTotal = sel.Cheapest.TotalCharge
		}
	}

	if err := h.deps.Notifier.PublishRateComplete(h.ctx, h.deps.NotifyChannel, notification); err != nil {
		h.logger.Warnf(h.ctx, "[RateQuoteHandler] notification failed: %v", err)
	}
}
