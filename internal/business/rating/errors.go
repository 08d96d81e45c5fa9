package rating

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNilRequest 请求为空
var ErrNilRequest = errors.New("shipment request is required")

// FieldError 单个字段校验问题
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 校验错误（一次返回全部问题）
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid shipment: " + strings.Join(parts, "; ")
}

// CarrierUnavailableError 主引擎与旧引擎均无法报价
type CarrierUnavailableError struct {
	CarrierID string
	Message   string
	Primary   PrimaryOutcome
	Cause     error
}

func (e *CarrierUnavailableError) Error() string {
	return fmt.Sprintf("carrier %s unavailable: %s", e.CarrierID, e.Message)
}

func (e *CarrierUnavailableError) Unwrap() error {
	return e.Cause
}

// AggregationEmptyError 没有任何承运商报价成功
type AggregationEmptyError struct {
	Reason         string
	FailedCarriers []FailedCarrier
}

func (e *AggregationEmptyError) Error() string {
	if len(e.FailedCarriers) == 0 {
		return "no rates available: " + e.Reason
	}
	return fmt.Sprintf("no rates available: %s (%d carriers failed)", e.Reason, len(e.FailedCarriers))
}

// SelectionInputError 选择器输入为空
type SelectionInputError struct{}

func (e *SelectionInputError) Error() string {
	return "cannot select from an empty quote set"
}
