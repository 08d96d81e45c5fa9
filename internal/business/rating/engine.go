package rating

import "context"

// EngineResponse 远程费率引擎返回结构（Primary 与 Legacy 相同）
// Success=false 表示该承运商不适用此引擎，属于正常分支
type EngineResponse struct {
	Success         bool           `json:"success"`
	Carrier         string         `json:"carrier"`
	RateBreakdown   []RawLineItem  `json:"rate_breakdown"`
	FinalTotal      float64        `json:"final_total"`
	Currency        string         `json:"currency"`
	TransitTime     string         `json:"transit_time"`
	ServiceLevel    string         `json:"service_level"`
	ShipmentMetrics map[string]any `json:"shipment_metrics,omitempty"`
	Error           string         `json:"error,omitempty"`
}

// Engine 费率引擎（远程服务，算法对本模块不透明）
type Engine interface {
	Name() string
	Rate(ctx context.Context, carrierID string, req ShipmentRequest) (*EngineResponse, error)
}

// CarrierCatalog 承运商目录（由调用方提供可询价承运商列表）
type CarrierCatalog interface {
	EligibleCarriers(ctx context.Context, shipmentType ShipmentType) ([]string, error)
}

// toRawQuote 引擎返回结构 -> 原始报价
func toRawQuote(carrierID string, resp *EngineResponse) RawCarrierQuote {
	return RawCarrierQuote{
		CarrierID:    carrierID,
		CarrierName:  resp.Carrier,
		LineItems:    resp.RateBreakdown,
		TotalCharge:  resp.FinalTotal,
		Currency:     resp.Currency,
		TransitTime:  resp.TransitTime,
		ServiceLevel: resp.ServiceLevel,
		Success:      resp.Success,
		Error:        resp.Error,
	}
}
