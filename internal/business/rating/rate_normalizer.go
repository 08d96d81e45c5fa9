package rating

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeQuote 将单个引擎的原始报价转换为标准化报价
// 全量函数：任何缺省字段都有明确默认值
//   - carrier: Auto, code: FRT, charge_name: Freight, currency: CAD
//   - 明细币种缺省时沿用报价币种
//   - 无明细但有总价时，生成一条 Freight 明细承载总价
//   - transit_days 由 ParseTransitDays 解析
func NormalizeQuote(carrierID string, raw RawCarrierQuote, source SourceEngine) NormalizedQuote {
	if carrierID == "" {
		carrierID = raw.CarrierID
	}

	currency := upperOr(raw.Currency, DefaultCurrency)

	items := raw.LineItems
	if len(items) == 0 && finite(raw.TotalCharge) > 0 {
		items = []RawLineItem{{Cost: raw.TotalCharge, Charge: raw.TotalCharge}}
	}

	totalCost := decimal.Zero
	totalCharge := decimal.Zero
	lines := make([]LineItem, 0, len(items))
	for i, item := range items {
		cost := finite(item.Cost)
		charge := finite(item.Charge)

		lines = append(lines, LineItem{
			ID:             fmt.Sprintf("%s-%d", carrierID, i+1),
			Carrier:        trimOr(item.Carrier, DefaultLineCarrier),
			Code:           trimOr(item.Code, DefaultChargeCode),
			ChargeName:     trimOr(item.ChargeName, DefaultChargeName),
			Cost:           cost,
			CostCurrency:   upperOr(item.CostCurrency, currency),
			Charge:         charge,
			ChargeCurrency: upperOr(item.ChargeCurrency, currency),
			Source:         source,
		})

		totalCost = totalCost.Add(decimal.NewFromFloat(cost))
		totalCharge = totalCharge.Add(decimal.NewFromFloat(charge))
	}

	level, ok := ParseServiceLevel(raw.ServiceLevel)
	if !ok {
		level = ServiceLevelStandard
	}

	return NormalizedQuote{
		CarrierID:    carrierID,
		CarrierName:  trimOr(raw.CarrierName, carrierID),
		LineItems:    lines,
		TotalCost:    round2(totalCost),
		TotalCharge:  round2(totalCharge),
		Currency:     currency,
		TransitDays:  ParseTransitDays(raw.TransitTime),
		ServiceLevel: level,
		SourceEngine: source,
	}
}

// RoundMoney 金额四舍五入到两位小数
func RoundMoney(f float64) float64 {
	return round2(decimal.NewFromFloat(finite(f)))
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// finite NaN/Inf 按 0 处理
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func trimOr(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

func upperOr(s, def string) string {
	return strings.ToUpper(trimOr(s, def))
}
