package ginx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"oip/ratesync/internal/business/rating"
	"oip/ratesync/pkg/errorutil"
)

// CodeProcessing Smart Wait 超时（任务仍在处理）
const CodeProcessing = 3001

// Response 统一响应结构
type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

// Meta 元数据
type Meta struct {
	Code    int           `json:"code" example:"200"`
	Message string        `json:"message" example:"OK"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Path string `json:"path" example:"destination.postal_code"`
	Info string `json:"info" example:"is required"`
}

// ProcessingData Smart Wait 超时返回的数据
type ProcessingData struct {
	RequestID     string `json:"request_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	CallbackQueue string `json:"callback_queue,omitempty" example:"rate_quote_callback"`
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Meta: Meta{
			Code:    200,
			Message: "OK",
		},
		Data: data,
	})
}

// Error 错误响应（400/500）
func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, Response{
		Meta: Meta{
			Code:    httpCode,
			Message: message,
		},
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpCode int, message string, details []ErrorDetail) {
	c.JSON(httpCode, Response{
		Meta: Meta{
			Code:    httpCode,
			Message: message,
			Details: details,
		},
	})
}

// Processing 处理中响应（3001），用于 Smart Wait 超时场景
// 结果通过回调队列送达
func Processing(c *gin.Context, requestID string, callbackQueue string) {
	c.JSON(http.StatusOK, Response{
		Meta: Meta{
			Code:    CodeProcessing,
			Message: "Rate quote is being processed, result will be delivered to the callback queue",
		},
		Data: ProcessingData{
			RequestID:     requestID,
			CallbackQueue: callbackQueue,
		},
	})
}

// RatingError 询价错误响应（状态码由 errorutil.FromRating 决定）
// 校验失败列出字段，全部失败列出承运商原因
func RatingError(c *gin.Context, err error) {
	e := errorutil.FromRating(err)
	if e == nil {
		return
	}

	var details []ErrorDetail
	var validationErr *rating.ValidationError
	var emptyErr *rating.AggregationEmptyError
	switch {
	case errors.As(err, &validationErr):
		for _, fe := range validationErr.Errors {
			details = append(details, ErrorDetail{Path: fe.Field, Info: fe.Message})
		}
	case errors.As(err, &emptyErr):
		for _, fc := range emptyErr.FailedCarriers {
			details = append(details, ErrorDetail{Path: fc.CarrierID, Info: fc.Message})
		}
	}

	// 承运商暂时不可用或超时，提示调用方稍后重试
	if errorutil.IsRetryable(err) {
		c.Header("Retry-After", "1")
	}
	ErrorWithDetails(c, e.Code, e.Message, details)
}

// BadRequest 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// BadRequestWithValidation 400 错误（带验证详情）
func BadRequestWithValidation(c *gin.Context, err error) {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		details := make([]ErrorDetail, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details = append(details, ErrorDetail{
				Path: fieldErr.Field(),
				Info: getValidationErrorMessage(fieldErr),
			})
		}
		ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", details)
		return
	}

	BadRequest(c, err.Error())
}

// NotFound 404 错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 500 错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// getValidationErrorMessage 根据验证错误类型返回友好的错误消息
func getValidationErrorMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fieldErr.Field() + " is required"
	case "gt":
		return fieldErr.Field() + " must be greater than " + fieldErr.Param()
	case "min":
		return fieldErr.Field() + " must be at least " + fieldErr.Param()
	case "max":
		return fieldErr.Field() + " must be at most " + fieldErr.Param()
	default:
		return fieldErr.Field() + " is invalid"
	}
}
