package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"oip/ratesync/internal/business/rating"
)

// MockCarrier Mock 承运商费率表
type MockCarrier struct {
	ID           string
	Name         string
	ShipmentType rating.ShipmentType
	ServiceLevel rating.ServiceLevel
	BaseRate     float64
	PerWeight    float64 // 每单位重量费率
	TransitDays  int
}

// DefaultMockCarriers 内置 Mock 承运商
var DefaultMockCarriers = []MockCarrier{
	{"fedex", "FedEx Ground", rating.ShipmentTypeCourier, rating.ServiceLevelStandard, 12.50, 0.85, 3},
	{"ups", "UPS Standard", rating.ShipmentTypeCourier, rating.ServiceLevelStandard, 15.20, 0.80, 3},
	{"purolator", "Purolator Express", rating.ShipmentTypeCourier, rating.ServiceLevelExpress, 18.40, 1.10, 1},
	{"canpar", "Canpar Ground", rating.ShipmentTypeCourier, rating.ServiceLevelEconomy, 9.80, 0.70, 5},
	{"dayross", "Day & Ross LTL", rating.ShipmentTypeFreight, rating.ServiceLevelStandard, 145.00, 0.25, 6},
	{"manitoulin", "Manitoulin Freight", rating.ShipmentTypeFreight, rating.ServiceLevelEconomy, 130.00, 0.22, 7},
}

// 燃油附加费比例
const fuelSurchargeRate = 0.12

// MockConfig Mock 引擎配置
type MockConfig struct {
	Name     string
	Carriers []string // 该引擎可报价的承运商，空表示全部
}

// MockEngine 本地 Mock 费率引擎（确定性伪随机费率）
// 同一承运商和货件得到相同报价，便于联调和测试
type MockEngine struct {
	name     string
	carriers map[string]MockCarrier
	eligible map[string]bool
}

var _ rating.Engine = (*MockEngine)(nil)

// NewMockEngine 创建 Mock 引擎
func NewMockEngine(cfg MockConfig) *MockEngine {
	name := cfg.Name
	if name == "" {
		name = "mock"
	}

	carriers := make(map[string]MockCarrier, len(DefaultMockCarriers))
	for _, c := range DefaultMockCarriers {
		carriers[c.ID] = c
	}

	var eligible map[string]bool
	if len(cfg.Carriers) > 0 {
		eligible = make(map[string]bool, len(cfg.Carriers))
		for _, id := range cfg.Carriers {
			eligible[strings.ToLower(strings.TrimSpace(id))] = true
		}
	}

	return &MockEngine{name: name, carriers: carriers, eligible: eligible}
}

// Name 引擎名称
func (e *MockEngine) Name() string {
	return e.name
}

// Rate 计算 Mock 费率
func (e *MockEngine) Rate(ctx context.Context, carrierID string, req rating.ShipmentRequest) (*rating.EngineResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 1. 适用性检查
	id := strings.ToLower(carrierID)
	carrier, ok := e.carriers[id]
	if !ok || (e.eligible != nil && !e.eligible[id]) {
		return &rating.EngineResponse{
			Success: false,
			Error:   fmt.Sprintf("carrier %s is not rated by %s engine", carrierID, e.name),
		}, nil
	}
	if req.ShipmentType != "" && carrier.ShipmentType != req.ShipmentType {
		return &rating.EngineResponse{
			Success: false,
			Error:   fmt.Sprintf("carrier %s does not handle %s shipments", carrierID, req.ShipmentType),
		}, nil
	}

	// 2. 基于承运商和目的地生成确定性种子
	rng := rand.New(rand.NewSource(hashSeed(e.name + "|" + id + "|" + req.Destination.PostalCode)))

	// 3. 计算运费（随机波动 ±10%，同一输入结果一致）
	weight := totalWeight(req.Packages)
	base := carrier.BaseRate + carrier.PerWeight*weight
	base += base * (rng.Float64() - 0.5) * 0.2
	base = rating.RoundMoney(base)
	fuel := rating.RoundMoney(base * fuelSurchargeRate)

	return &rating.EngineResponse{
		Success: true,
		Carrier: carrier.Name,
		RateBreakdown: []rating.RawLineItem{
			{ChargeName: "Base Freight", Code: "FRT", Carrier: carrier.Name, Cost: base, Charge: base},
			{ChargeName: "Fuel Surcharge", Code: "FSC", Carrier: carrier.Name, Cost: fuel, Charge: fuel},
		},
		FinalTotal:   rating.RoundMoney(base + fuel),
		Currency:     rating.DefaultCurrency,
		TransitTime:  fmt.Sprintf("%d business days", carrier.TransitDays),
		ServiceLevel: string(carrier.ServiceLevel),
		ShipmentMetrics: map[string]any{
			"total_weight": weight,
			"packages":     len(req.Packages),
		},
	}, nil
}

// CarrierIDs Mock 表中全部承运商 id（按表顺序）
func CarrierIDs(shipmentType rating.ShipmentType) []string {
	ids := make([]string, 0, len(DefaultMockCarriers))
	for _, c := range DefaultMockCarriers {
		if shipmentType == "" || c.ShipmentType == shipmentType {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// hashSeed 基于字符串生成确定性种子
func hashSeed(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

func totalWeight(packages []rating.Package) float64 {
	total := 0.0
	for _, p := range packages {
		qty := p.Quantity
		if qty <= 0 {
			qty = 1
		}
		total += p.Weight * float64(qty)
	}
	return total
}
