package job

// RateQuoteData rate_quote 任务业务数据
type RateQuoteData struct {
	CarrierIDs    []string               `json:"carrier_ids,omitempty"` // 为空时使用承运商目录
	Shipment      map[string]interface{} `json:"shipment"`              // 表单原始数据
	TimeoutMS     int64                  `json:"timeout_ms,omitempty"`
	CallbackQueue string                 `json:"callback_queue,omitempty"` // 覆盖 worker 默认回调队列
}

// 回调状态
const (
	CallbackStatusSuccess = "SUCCESS"
	CallbackStatusFailed  = "FAILED"
)

// RateQuoteCallback 询价回调消息（worker -> 回调队列）
type RateQuoteCallback struct {
	RequestID   string      `json:"request_id"`
	ID          string      `json:"id,omitempty"`
	Status      string      `json:"status"`
	Result      interface{} `json:"result,omitempty"`
	Error       interface{} `json:"error,omitempty"`
	ProcessedAt int64       `json:"processed_at"`
}
