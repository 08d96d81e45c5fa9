package response

import (
	"oip/ratesync/internal/business/rating"
	"oip/ratesync/internal/domains/common/job"
	"oip/ratesync/pkg/errorutil"
)

// RateQuoteResult 询价结果（实现 ResultI 接口）
type RateQuoteResult struct {
	ID     string              `json:"id"`
	Status string              `json:"status"`
	Data   *rating.QuoteResult `json:"data,omitempty"`
	Error  *errorutil.Error    `json:"error,omitempty"`
}

// NewRateQuoteResult 创建询价结果
func NewRateQuoteResult() *RateQuoteResult {
	return &RateQuoteResult{}
}

// Set 实现 ResultI 接口
func (r *RateQuoteResult) Set(meta *job.Meta, err error) {
	r.ID = meta.ID
	if err != nil {
		r.Status = job.CallbackStatusFailed
		r.Error = errorutil.FromRating(err)
	} else {
		r.Status = job.CallbackStatusSuccess
	}
}

// GetStatus 实现 ResultI 接口
func (r *RateQuoteResult) GetStatus() string {
	return r.Status
}
