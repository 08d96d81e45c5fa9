package rate

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"oip/ratesync/internal/domains/common/job"
	"oip/ratesync/internal/server/ginx"
	"oip/ratesync/pkg/infra/redis"
)

// maxWaitSeconds Smart Wait 上限
const maxWaitSeconds = 30

// SubmitJob 投递异步询价任务
// POST /api/v1/rates/jobs?wait=10
// 1. 生成 request_id
// 2. wait>0 时先订阅完成通知
// 3. 投递 rate_quote 任务
// 4. Smart Wait（超时返回 3001，结果走回调队列）
func (h *RateHandler) SubmitJob(c *gin.Context) {
	if h.jobs == nil || h.opts.JobQueue == "" {
		ginx.Error(c, http.StatusServiceUnavailable, "async rate jobs are not enabled")
		return
	}

	waitSeconds := 0
	if waitStr := c.Query("wait"); waitStr != "" {
		if w, err := strconv.Atoi(waitStr); err == nil && w > 0 {
			waitSeconds = min(w, maxWaitSeconds)
		}
	}

	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	ctx := c.Request.Context()
	meta := job.Meta{
		RequestID:  uuid.New().String(),
		ActionType: job.ActionRateQuote,
		ID:         uuid.New().String(),
	}

	var watch *redis.RateWatch
	if waitSeconds > 0 && h.watcher != nil {
		w, err := h.watcher.WatchRateComplete(ctx, h.opts.NotifyChannel, meta.RequestID)
		if err != nil {
			// 订阅失败只记录日志，退化为纯异步
			h.logger.Warnf(ctx, "[RateHandler] watch completion failed: request_id=%s, error=%v", meta.RequestID, err)
		} else {
			watch = w
			defer watch.Close()
		}
	}

	standardJob, err := job.NewJob(meta, job.RateQuoteData{
		CarrierIDs:    req.CarrierIDs,
		Shipment:      req.Shipment,
		TimeoutMS:     req.TimeoutMS,
		CallbackQueue: h.opts.CallbackQueue,
	})
	if err != nil {
		ginx.InternalError(c, err.Error())
		return
	}
	if err := h.jobs.PublishJSON(h.opts.JobQueue, standardJob); err != nil {
		h.logger.Errorf(ctx, "[RateHandler] publish job failed: request_id=%s, error=%v", meta.RequestID, err)
		ginx.Error(c, http.StatusBadGateway, "publish rate job failed")
		return
	}

	h.logger.Infof(ctx, "[RateHandler] rate job published: request_id=%s, queue=%s", meta.RequestID, h.opts.JobQueue)

	accepted := JobAccepted{RequestID: meta.RequestID, ID: meta.ID}
	if watch == nil {
		ginx.Processing(c, meta.RequestID, h.opts.CallbackQueue)
		return
	}

	notification, err := watch.Wait(ctx, time.Duration(waitSeconds)*time.Second)
	if err != nil {
		h.logger.Infof(ctx, "[RateHandler] smart wait ended without result: request_id=%s, error=%v", meta.RequestID, err)
		ginx.Processing(c, meta.RequestID, h.opts.CallbackQueue)
		return
	}

	accepted.Notification = notification
	ginx.Success(c, accepted)
}
