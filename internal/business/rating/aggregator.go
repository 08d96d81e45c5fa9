package rating

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"oip/ratesync/pkg/logger"
)

// 未完成承运商的失败信息
const (
	MessageTimeout   = "timed out waiting for rate"
	MessageCancelled = "rating cancelled"
)

// AggregateOptions 聚合选项
type AggregateOptions struct {
	Timeout time.Duration // 0 表示只受调用方 ctx 控制
}

// Aggregator 多承运商并发询价聚合器
type Aggregator struct {
	dispatcher *Dispatcher
	logger     logger.Logger
}

// settled 单个承运商的最终结果
type settled struct {
	quote *NormalizedQuote
	err   error
}

// NewAggregator 创建聚合器
func NewAggregator(dispatcher *Dispatcher, log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Aggregator{
		dispatcher: dispatcher,
		logger:     log,
	}
}

// AggregateMany 并发询价并汇总
// 1. 所有承运商同时发起，互不共享可变状态
// 2. 等待全部完成（或 ctx 取消/超时）后再汇总，单个承运商失败不影响其他承运商
// 3. 成功报价按 TotalCharge 升序稳定排序，与完成顺序无关
// 全部失败（或输入为空）时返回 *AggregationEmptyError，同时返回已填充的结果
func (a *Aggregator) AggregateMany(ctx context.Context, carrierIDs []string, req ShipmentRequest, opts AggregateOptions) (*AggregationResult, error) {
	ids := uniqueCarrierIDs(carrierIDs)
	if len(ids) == 0 {
		return &AggregationResult{
			SuccessfulQuotes: []NormalizedQuote{},
			FailedCarriers:   []FailedCarrier{},
		}, &AggregationEmptyError{Reason: "no carriers requested"}
	}

	startTime := time.Now()
	defer func() {
		aggregationDuration.Observe(time.Since(startTime).Seconds())
	}()

	var cancel context.CancelFunc
	runCtx := ctx
	if opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	// 返回后取消未完成的远程调用，其结果写入缓冲槽后被丢弃
	defer cancel()

	a.logger.Infof(runCtx, "[Aggregator] Dispatching %d carriers", len(ids))

	// 每个承运商一个容量为 1 的结果槽，任务写入后即退出，不会阻塞
	slots := make([]chan settled, len(ids))
	p := pool.New().WithMaxGoroutines(len(ids))
	for i, id := range ids {
		slot := make(chan settled, 1)
		slots[i] = slot
		carrierID := id
		p.Go(func() {
			slot <- a.rateOne(runCtx, carrierID, req)
		})
	}

	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-runCtx.Done():
		a.logger.Warnf(runCtx, "[Aggregator] Stopped waiting: %v", runCtx.Err())
	}

	result := &AggregationResult{
		SuccessfulQuotes: make([]NormalizedQuote, 0, len(ids)),
		FailedCarriers:   make([]FailedCarrier, 0),
		TotalRequested:   len(ids),
	}

	for i, slot := range slots {
		select {
		case s := <-slot:
			if s.err != nil {
				result.FailedCarriers = append(result.FailedCarriers, FailedCarrier{
					CarrierID: ids[i],
					Message:   failureMessage(s.err),
				})
				continue
			}
			result.SuccessfulQuotes = append(result.SuccessfulQuotes, *s.quote)
		default:
			// 尚未完成
			result.FailedCarriers = append(result.FailedCarriers, FailedCarrier{
				CarrierID: ids[i],
				Message:   unsettledMessage(runCtx.Err()),
			})
		}
	}

	sort.SliceStable(result.SuccessfulQuotes, func(i, j int) bool {
		return result.SuccessfulQuotes[i].TotalCharge < result.SuccessfulQuotes[j].TotalCharge
	})
	result.SuccessCount = len(result.SuccessfulQuotes)
	failedCarriersTotal.Add(float64(len(result.FailedCarriers)))

	a.logger.Infof(ctx, "[Aggregator] Aggregation complete: requested=%d, success=%d, failed=%d, duration=%v",
		result.TotalRequested, result.SuccessCount, len(result.FailedCarriers), time.Since(startTime))

	if result.SuccessCount == 0 {
		return result, &AggregationEmptyError{
			Reason:         "all carriers failed",
			FailedCarriers: result.FailedCarriers,
		}
	}
	return result, nil
}

// rateOne 单承运商任务：分发 + 标准化
func (a *Aggregator) rateOne(ctx context.Context, carrierID string, req ShipmentRequest) (s settled) {
	defer func() {
		if r := recover(); r != nil {
			s = settled{err: fmt.Errorf("rating panic: %v", r)}
		}
	}()

	ctx = context.WithValue(ctx, "carrier_id", carrierID)

	res, err := a.dispatcher.RequestRate(ctx, carrierID, req)
	if err != nil {
		return settled{err: err}
	}

	quote := NormalizeQuote(carrierID, res.Quote, res.Source)
	return settled{quote: &quote}
}

// uniqueCarrierIDs 去除空白与重复 id（保留首次出现顺序）
func uniqueCarrierIDs(carrierIDs []string) []string {
	ids := make([]string, 0, len(carrierIDs))
	seen := make(map[string]struct{}, len(carrierIDs))
	for _, id := range carrierIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func failureMessage(err error) string {
	var unavailable *CarrierUnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.Message
	}
	return err.Error()
}

func unsettledMessage(err error) string {
	if errors.Is(err, context.Canceled) {
		return MessageCancelled
	}
	return MessageTimeout
}
