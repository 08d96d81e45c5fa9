package response

import (
	"oip/ratesync/internal/domains/common/job"
	"oip/ratesync/pkg/errorutil"
)

// ResultI 业务结果接口
type ResultI interface {
	// Set 设置元数据和错误
	Set(meta *job.Meta, err error)

	// GetStatus 获取状态
	GetStatus() string
}

// Response 统一响应结构
// Error 为业务错误（已通过回调上报）；Processed=false 表示回调未送达，需要重投
type Response struct {
	Error     *errorutil.Error `json:"error"`
	Result    ResultI          `json:"result"`
	Processed bool             `json:"processed"`
	Meta      interface{}      `json:"meta"`
}

// WrapResponse 包装响应
func (r *Response) WrapResponse(result ResultI, meta *job.Meta, err error) {
	result.Set(meta, err)

	r.Processed = true
	r.Meta = meta
	r.Error = errorutil.FromRating(err)
	r.Result = result
}

// MarkUndelivered 回调发送失败
func (r *Response) MarkUndelivered(err error) {
	r.Processed = false
	if r.Error == nil {
		r.Error = errorutil.RetriableWithDetails("callback not delivered", err.Error())
	}
}

// WrapResults 包装成数组（用于序列化）
func (r *Response) WrapResults() []interface{} {
	if r.Error != nil {
		return []interface{}{r.Error, r.Result, r.Processed, r.Meta}
	}
	return []interface{}{r.Error, r.Result, r.Processed}
}
