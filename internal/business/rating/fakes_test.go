package rating

import (
	"context"
	"sync"
)

// fakeEngine 测试用引擎，按承运商记录调用次数
type fakeEngine struct {
	name string
	fn   func(ctx context.Context, carrierID string, req ShipmentRequest) (*EngineResponse, error)

	mu    sync.Mutex
	calls map[string]int
}

func newFakeEngine(name string, fn func(ctx context.Context, carrierID string, req ShipmentRequest) (*EngineResponse, error)) *fakeEngine {
	return &fakeEngine{name: name, fn: fn, calls: map[string]int{}}
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Rate(ctx context.Context, carrierID string, req ShipmentRequest) (*EngineResponse, error) {
	f.mu.Lock()
	f.calls[carrierID]++
	f.mu.Unlock()
	return f.fn(ctx, carrierID, req)
}

func (f *fakeEngine) callsFor(carrierID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[carrierID]
}

func (f *fakeEngine) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// tableEngine 按承运商返回预设结果，未配置的承运商视为不适用
func tableEngine(name string, table map[string]*EngineResponse) *fakeEngine {
	return newFakeEngine(name, func(_ context.Context, carrierID string, _ ShipmentRequest) (*EngineResponse, error) {
		if resp, ok := table[carrierID]; ok {
			return resp, nil
		}
		return &EngineResponse{Success: false, Error: carrierID + " not supported by " + name}, nil
	})
}

func okResponse(carrier string, total float64, transit string) *EngineResponse {
	return &EngineResponse{
		Success: true,
		Carrier: carrier,
		RateBreakdown: []RawLineItem{
			{ChargeName: "Freight", Code: "FRT", Cost: total, Charge: total},
		},
		FinalTotal:  total,
		Currency:    "CAD",
		TransitTime: transit,
	}
}

func validShipment() ShipmentRequest {
	return ShipmentRequest{
		Packages: []Package{
			{Quantity: 1, Weight: 10, Length: 12, Width: 10, Height: 8, PackagingType: DefaultPackagingType},
		},
		Origin:       Address{City: "Toronto", State: "ON", PostalCode: "M5V 2T6", Country: "CA"},
		Destination:  Address{City: "Vancouver", State: "BC", PostalCode: "V6B 1A1", Country: "CA"},
		ShipmentType: ShipmentTypeCourier,
		ServiceLevel: ServiceLevelStandard,
		UnitSystem:   UnitSystemImperial,
	}
}
