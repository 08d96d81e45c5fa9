package rate

import "oip/ratesync/internal/business/rating"

// ShipmentBody 仅包含货件表单的请求体
type ShipmentBody struct {
	Shipment map[string]interface{} `json:"shipment" binding:"required"`
}

// QuoteRequest 多承运商询价请求
type QuoteRequest struct {
	CarrierIDs []string               `json:"carrier_ids"` // 为空时使用承运商目录
	Shipment   map[string]interface{} `json:"shipment" binding:"required"`
	TimeoutMS  int64                  `json:"timeout_ms" binding:"gte=0"`
}

// ValidateResponse 校验结果
type ValidateResponse struct {
	rating.ValidationResult
	Request rating.ShipmentRequest `json:"request"`
}

// JobAccepted 异步任务结果（Smart Wait 命中时附带通知）
type JobAccepted struct {
	RequestID    string      `json:"request_id"`
	ID           string      `json:"id"`
	Notification interface{} `json:"notification,omitempty"`
}
