package errorutil

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"oip/ratesync/internal/business/rating"
)

// FromRating 询价错误 -> Error（决定回调中的错误码与是否可重试）
//   - 校验失败 / 选择输入为空：不可重试
//   - 承运商不可用 / 全部失败 / 超时：可重试（远程引擎可能恢复）
func FromRating(err error) *Error {
	if err == nil {
		return nil
	}

	var (
		validationErr  *rating.ValidationError
		unavailableErr *rating.CarrierUnavailableError
		emptyErr       *rating.AggregationEmptyError
		selectionErr   *rating.SelectionInputError
	)

	switch {
	case errors.As(err, &validationErr):
		fields := make([]string, 0, len(validationErr.Errors))
		for _, fe := range validationErr.Errors {
			fields = append(fields, fe.Field+": "+fe.Message)
		}
		return NonRetriableWithDetails(err.Error(), strings.Join(fields, "; "))

	case errors.As(err, &selectionErr):
		return &Error{Code: http.StatusUnprocessableEntity, Message: err.Error()}

	case errors.As(err, &emptyErr):
		if len(emptyErr.FailedCarriers) == 0 {
			// 没有请求任何承运商，重试也不会成功
			return &Error{Code: http.StatusUnprocessableEntity, Message: err.Error()}
		}
		failed := make([]string, 0, len(emptyErr.FailedCarriers))
		for _, fc := range emptyErr.FailedCarriers {
			failed = append(failed, fc.CarrierID+": "+fc.Message)
		}
		return &Error{
			Code:       http.StatusBadGateway,
			Message:    err.Error(),
			Retryable:  true,
			DevDetails: strings.Join(failed, "; "),
		}

	case errors.As(err, &unavailableErr):
		return &Error{Code: http.StatusBadGateway, Message: err.Error(), Retryable: true}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Code: http.StatusGatewayTimeout, Message: err.Error(), Retryable: true}
	}

	return Wrap(err)
}
