package rating

// ShipmentType 运输类型
type ShipmentType string

const (
	ShipmentTypeCourier ShipmentType = "courier"
	ShipmentTypeFreight ShipmentType = "freight"
)

// ServiceLevel 服务等级
type ServiceLevel string

const (
	ServiceLevelStandard ServiceLevel = "Standard"
	ServiceLevelExpress  ServiceLevel = "Express"
	ServiceLevelEconomy  ServiceLevel = "Economy"
)

// UnitSystem 计量单位制
type UnitSystem string

const (
	UnitSystemImperial UnitSystem = "imperial"
	UnitSystemMetric   UnitSystem = "metric"
)

// SourceEngine 报价来源引擎
type SourceEngine string

const (
	SourcePrimary SourceEngine = "primary"
	SourceLegacy  SourceEngine = "legacy"
)

// 默认值
const (
	DefaultCountry       = "CA"
	DefaultCurrency      = "CAD"
	DefaultLineCarrier   = "Auto"
	DefaultChargeCode    = "FRT"
	DefaultChargeName    = "Freight"
	DefaultPackagingType = "Box"
	DefaultTransitDays   = 5 // 无法解析时效时按"未知，按慢件估算"处理
)

// ShipmentRequest 标准化货件请求（一次询价会话内不可变）
type ShipmentRequest struct {
	Packages           []Package    `json:"packages" validate:"min=1,dive"`
	Origin             Address      `json:"origin"`
	Destination        Address      `json:"destination"`
	ShipmentType       ShipmentType `json:"shipment_type"`
	ServiceLevel       ServiceLevel `json:"service_level"`
	UnitSystem         UnitSystem   `json:"unit_system"`
	AdditionalServices []string     `json:"additional_services,omitempty"`
	ShipmentDate       string       `json:"shipment_date,omitempty"` // YYYY-MM-DD
	ReferenceNumbers   []string     `json:"reference_numbers,omitempty"`
}

// Package 包裹
type Package struct {
	Quantity      int     `json:"quantity"`
	Weight        float64 `json:"weight" validate:"gt=0"`
	Length        float64 `json:"length" validate:"gt=0"`
	Width         float64 `json:"width" validate:"gt=0"`
	Height        float64 `json:"height" validate:"gt=0"`
	PackagingType string  `json:"packaging_type,omitempty"`
	Description   string  `json:"description,omitempty"`
}

// Address 地址
type Address struct {
	Street     string   `json:"street,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	PostalCode string   `json:"postal_code" validate:"notblank"`
	Country    string   `json:"country,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

// RawLineItem 引擎返回的原始费用明细（字段可能缺省）
type RawLineItem struct {
	ChargeName     string  `json:"charge_name,omitempty"`
	Code           string  `json:"code,omitempty"`
	Carrier        string  `json:"carrier,omitempty"`
	Cost           float64 `json:"cost"`
	CostCurrency   string  `json:"cost_currency,omitempty"`
	Charge         float64 `json:"charge"`
	ChargeCurrency string  `json:"charge_currency,omitempty"`
}

// RawCarrierQuote 单个引擎的原始报价（未标准化）
type RawCarrierQuote struct {
	CarrierID    string        `json:"carrier_id"`
	CarrierName  string        `json:"carrier_name,omitempty"`
	LineItems    []RawLineItem `json:"line_items"`
	TotalCharge  float64       `json:"total_charge"`
	Currency     string        `json:"currency,omitempty"`
	TransitTime  string        `json:"transit_time,omitempty"`
	ServiceLevel string        `json:"service_level,omitempty"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
}

// LineItem 标准化费用明细
type LineItem struct {
	ID             string       `json:"id"`
	Carrier        string       `json:"carrier"`
	Code           string       `json:"code"`
	ChargeName     string       `json:"charge_name"`
	Cost           float64      `json:"cost"`
	CostCurrency   string       `json:"cost_currency"`
	Charge         float64      `json:"charge"`
	ChargeCurrency string       `json:"charge_currency"`
	Source         SourceEngine `json:"source"`
}

// NormalizedQuote 标准化报价
type NormalizedQuote struct {
	CarrierID    string       `json:"carrier_id"`
	CarrierName  string       `json:"carrier_name,omitempty"`
	LineItems    []LineItem   `json:"line_items"`
	TotalCost    float64      `json:"total_cost"`
	TotalCharge  float64      `json:"total_charge"`
	Currency     string       `json:"currency"`
	TransitDays  int          `json:"transit_days"`
	ServiceLevel ServiceLevel `json:"service_level"`
	SourceEngine SourceEngine `json:"source_engine"`
}

// FailedCarrier 询价失败的承运商
type FailedCarrier struct {
	CarrierID string `json:"carrier_id"`
	Message   string `json:"message"`
}

// AggregationResult 多承运商聚合结果
type AggregationResult struct {
	SuccessfulQuotes []NormalizedQuote `json:"successful_quotes"`
	FailedCarriers   []FailedCarrier   `json:"failed_carriers"`
	TotalRequested   int               `json:"total_requested"`
	SuccessCount     int               `json:"success_count"`
}

// PriceRange 价格统计
type PriceRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// QuoteScore 推荐评分明细
type QuoteScore struct {
	CarrierID  string  `json:"carrier_id"`
	PriceScore float64 `json:"price_score"`
	SpeedScore float64 `json:"speed_score"`
	Score      float64 `json:"score"`
}

// SelectionResult 选择结果
type SelectionResult struct {
	Cheapest    *NormalizedQuote `json:"cheapest"`
	Fastest     *NormalizedQuote `json:"fastest"`
	Recommended *NormalizedQuote `json:"recommended"`
	PriceRange  PriceRange       `json:"price_range"`
	Scores      []QuoteScore     `json:"scores"`
}
