package rating

import (
	"context"
	"errors"
	"time"

	"oip/ratesync/pkg/logger"
)

// RateOptions 多承运商询价选项
type RateOptions struct {
	Timeout time.Duration
}

// QuoteResult 完整询价流程结果
type QuoteResult struct {
	Request     ShipmentRequest    `json:"request"`
	Aggregation *AggregationResult `json:"aggregation"`
	Selection   *SelectionResult   `json:"selection,omitempty"`
}

// Service 询价服务（对外入口）
// 无状态：每次调用都是 Validate -> Dispatch(fan-out) -> Normalize -> Aggregate -> Select 的单次流水线
type Service struct {
	validator  *Validator
	dispatcher *Dispatcher
	aggregator *Aggregator
	logger     logger.Logger
}

// NewService 创建询价服务
func NewService(primary, legacy Engine, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNopLogger()
	}
	dispatcher := NewDispatcher(primary, legacy, log)
	return &Service{
		validator:  NewValidator(),
		dispatcher: dispatcher,
		aggregator: NewAggregator(dispatcher, log),
		logger:     log,
	}
}

// ValidateShipment 校验请求
func (s *Service) ValidateShipment(req *ShipmentRequest) ValidationResult {
	return s.validator.Validate(req)
}

// RateOneCarrier 单承运商询价（含两段式回退与标准化）
func (s *Service) RateOneCarrier(ctx context.Context, carrierID string, req ShipmentRequest) (*NormalizedQuote, error) {
	if err := s.validator.Validate(&req).Err(); err != nil {
		return nil, err
	}

	res, err := s.dispatcher.RequestRate(ctx, carrierID, req)
	if err != nil {
		return nil, err
	}

	quote := NormalizeQuote(carrierID, res.Quote, res.Source)
	return &quote, nil
}

// RateManyCarriers 多承运商并发询价
// 空列表立即返回 *AggregationEmptyError，不发起任何远程调用
func (s *Service) RateManyCarriers(ctx context.Context, carrierIDs []string, req ShipmentRequest, opts RateOptions) (*AggregationResult, error) {
	if len(uniqueCarrierIDs(carrierIDs)) == 0 {
		return s.aggregator.AggregateMany(ctx, nil, req, AggregateOptions{})
	}
	if err := s.validator.Validate(&req).Err(); err != nil {
		return nil, err
	}
	return s.aggregator.AggregateMany(ctx, carrierIDs, req, AggregateOptions{Timeout: opts.Timeout})
}

// SelectBest 选择最优报价
func (s *Service) SelectBest(quotes []NormalizedQuote) (*SelectionResult, error) {
	return Select(quotes)
}

// Quote 完整流程：表单标准化 -> 校验（失败即返回）-> 并发询价 -> 选择
// 部分承运商失败时仍返回选择结果，失败列表作为软告警保留在 Aggregation 中
func (s *Service) Quote(ctx context.Context, form map[string]any, carrierIDs []string, opts RateOptions) (*QuoteResult, error) {
	req := NormalizeShipment(form)
	return s.QuoteRequest(ctx, req, carrierIDs, opts)
}

// QuoteRequest 与 Quote 相同，输入为已标准化的请求
func (s *Service) QuoteRequest(ctx context.Context, req ShipmentRequest, carrierIDs []string, opts RateOptions) (*QuoteResult, error) {
	// 1. 校验
	if err := s.validator.Validate(&req).Err(); err != nil {
		s.logger.Warnf(ctx, "[Service] Shipment validation failed: %v", err)
		return nil, err
	}

	result := &QuoteResult{Request: req}

	// 2. 并发询价
	aggregation, err := s.aggregator.AggregateMany(ctx, carrierIDs, req, AggregateOptions{Timeout: opts.Timeout})
	result.Aggregation = aggregation
	if err != nil {
		return result, err
	}

	// 3. 选择
	selection, err := Select(aggregation.SuccessfulQuotes)
	if err != nil {
		var inputErr *SelectionInputError
		if errors.As(err, &inputErr) {
			return result, &AggregationEmptyError{Reason: "all carriers failed", FailedCarriers: aggregation.FailedCarriers}
		}
		return result, err
	}
	result.Selection = selection

	return result, nil
}
