package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error 回调与 HTTP 响应共用的错误结构
// Retryable 决定 worker 回调中调用方是否应重新提交询价
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Retriable 临时故障（回调投递失败、下游不可用）
func Retriable(message string) *Error {
	return RetriableWithDetails(message, "")
}

// RetriableWithDetails 同 Retriable，附带排查信息
func RetriableWithDetails(message string, details string) *Error {
	return &Error{
		Code:       http.StatusServiceUnavailable,
		Message:    message,
		Retryable:  true,
		DevDetails: details,
	}
}

// NonRetriable 请求本身有问题，原样重试不会成功
func NonRetriable(message string) *Error {
	return NonRetriableWithDetails(message, "")
}

// NonRetriableWithDetails 同 NonRetriable，附带排查信息
func NonRetriableWithDetails(message string, details string) *Error {
	return &Error{
		Code:       http.StatusBadRequest,
		Message:    message,
		DevDetails: details,
	}
}

// Wrap 转为 *Error：已是 *Error 时原样返回，取消视为可重试，其余为 500
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	if errors.Is(err, context.Canceled) {
		return RetriableWithDetails(err.Error(), "request canceled before completion")
	}

	return &Error{
		Code:       http.StatusInternalServerError,
		Message:    err.Error(),
		DevDetails: fmt.Sprintf("%+v", err),
	}
}

// IsRetryable err 是否值得重新提交
func IsRetryable(err error) bool {
	e := FromRating(err)
	return e != nil && e.Retryable
}
