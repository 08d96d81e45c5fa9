package rating

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"oip/ratesync/pkg/logger"
)

// PrimaryOutcome 主引擎调用结果
type PrimaryOutcome string

const (
	PrimarySucceeded  PrimaryOutcome = "success"
	PrimaryIneligible PrimaryOutcome = "ineligible"
	PrimaryFailed     PrimaryOutcome = "error"
)

// DispatchResult 单承运商两段式询价结果
// Primary 成功：Source=primary；Primary 不适用/失败后 Legacy 成功：Source=legacy
type DispatchResult struct {
	CarrierID     string
	Quote         RawCarrierQuote
	Source        SourceEngine
	Primary       PrimaryOutcome
	PrimaryReason string // 回退原因（主引擎成功时为空）
}

// Dispatcher 单承运商询价分发器：先 Primary，再 Legacy
// 每个引擎每次分发最多调用一次（回退，不是重试）
type Dispatcher struct {
	primary Engine
	legacy  Engine
	logger  logger.Logger
}

// NewDispatcher 创建分发器
func NewDispatcher(primary, legacy Engine, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Dispatcher{
		primary: primary,
		legacy:  legacy,
		logger:  log,
	}
}

// RequestRate 询价
// 引擎的网络错误、panic 全部转换为 error 返回，不会越过此边界
func (d *Dispatcher) RequestRate(ctx context.Context, carrierID string, req ShipmentRequest) (*DispatchResult, error) {
	// 1. Primary
	primaryResp, primaryErr := d.call(ctx, d.primary, carrierID, req)
	if primaryErr == nil && primaryResp.Success {
		dispatchTotal.WithLabelValues(string(SourcePrimary)).Inc()
		return &DispatchResult{
			CarrierID: carrierID,
			Quote:     toRawQuote(carrierID, primaryResp),
			Source:    SourcePrimary,
			Primary:   PrimarySucceeded,
		}, nil
	}

	outcome := PrimaryIneligible
	reason := reportedError(primaryResp)
	if primaryErr != nil {
		outcome = PrimaryFailed
		reason = primaryErr.Error()
	}
	d.logger.Infof(ctx, "[Dispatcher] primary %s for carrier %s, falling back to legacy: %s", outcome, carrierID, reason)

	// 2. Legacy
	legacyResp, legacyErr := d.call(ctx, d.legacy, carrierID, req)
	if legacyErr == nil && legacyResp.Success {
		dispatchTotal.WithLabelValues(string(SourceLegacy)).Inc()
		return &DispatchResult{
			CarrierID:     carrierID,
			Quote:         toRawQuote(carrierID, legacyResp),
			Source:        SourceLegacy,
			Primary:       outcome,
			PrimaryReason: reason,
		}, nil
	}

	// 3. 两个引擎都失败
	dispatchTotal.WithLabelValues("failed").Inc()
	msg := unavailableMessage(primaryResp, primaryErr, legacyResp, legacyErr)
	d.logger.Warnf(ctx, "[Dispatcher] carrier %s unavailable: %s", carrierID, msg)

	return nil, &CarrierUnavailableError{
		CarrierID: carrierID,
		Message:   msg,
		Primary:   outcome,
		Cause:     errors.Join(primaryErr, legacyErr),
	}
}

// call 调用单个引擎，捕获 panic
func (d *Dispatcher) call(ctx context.Context, engine Engine, carrierID string, req ShipmentRequest) (resp *EngineResponse, err error) {
	if engine == nil {
		return nil, errors.New("engine not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("%s engine panic: %v", engine.Name(), r)
		}
	}()

	resp, err = engine.Rate(ctx, carrierID, req)
	if err != nil {
		return nil, fmt.Errorf("%s engine: %w", engine.Name(), err)
	}
	if resp == nil {
		return &EngineResponse{Success: false, Error: engine.Name() + " engine returned an empty response"}, nil
	}
	return resp, nil
}

// unavailableMessage 选取最具体的错误信息
// legacy 上报错误 > legacy 调用错误 > primary 上报错误 > primary 调用错误 > 通用信息
func unavailableMessage(primaryResp *EngineResponse, primaryErr error, legacyResp *EngineResponse, legacyErr error) string {
	switch {
	case reportedError(legacyResp) != "":
		return reportedError(legacyResp)
	case legacyErr != nil:
		return legacyErr.Error()
	case reportedError(primaryResp) != "":
		return reportedError(primaryResp)
	case primaryErr != nil:
		return primaryErr.Error()
	default:
		return "no rate available from primary or legacy engine"
	}
}

func reportedError(resp *EngineResponse) string {
	if resp == nil {
		return ""
	}
	return strings.TrimSpace(resp.Error)
}
