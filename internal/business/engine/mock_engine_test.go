package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"oip/ratesync/internal/business/rating"
	"oip/ratesync/pkg/config"
)

func TestMockEngineIsDeterministic(t *testing.T) {
	e := NewMockEngine(MockConfig{Name: "primary"})

	first, err := e.Rate(context.Background(), "fedex", testShipment())
	require.NoError(t, err)
	second, err := e.Rate(context.Background(), "fedex", testShipment())
	require.NoError(t, err)

	require.True(t, first.Success)
	require.Equal(t, first, second)
	require.Equal(t, "FedEx Ground", first.Carrier)
	require.Equal(t, "3 business days", first.TransitTime)
	require.Len(t, first.RateBreakdown, 2)
	require.InDelta(t, first.RateBreakdown[0].Charge+first.RateBreakdown[1].Charge, first.FinalTotal, 0.001)
}

func TestMockEngineNormalizesIntoQuote(t *testing.T) {
	e := NewMockEngine(MockConfig{Name: "legacy"})

	resp, err := e.Rate(context.Background(), "purolator", testShipment())
	require.NoError(t, err)

	q := rating.NormalizeQuote("purolator", rating.RawCarrierQuote{
		CarrierName:  resp.Carrier,
		LineItems:    resp.RateBreakdown,
		Currency:     resp.Currency,
		TransitTime:  resp.TransitTime,
		ServiceLevel: resp.ServiceLevel,
	}, rating.SourceLegacy)

	require.Equal(t, 1, q.TransitDays)
	require.Equal(t, rating.ServiceLevelExpress, q.ServiceLevel)
	require.Equal(t, resp.FinalTotal, q.TotalCharge)
}

func TestMockEngineEligibility(t *testing.T) {
	e := NewMockEngine(MockConfig{Name: "primary", Carriers: []string{"FedEx", "dayross"}})

	resp, err := e.Rate(context.Background(), "ups", testShipment())
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, "carrier ups is not rated by primary engine", resp.Error)

	resp, err = e.Rate(context.Background(), "unknown", testShipment())
	require.NoError(t, err)
	require.False(t, resp.Success)

	// 零担承运商不处理快递货件
	resp, err = e.Rate(context.Background(), "dayross", testShipment())
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Contains(t, resp.Error, "does not handle courier shipments")
}

func TestMockEngineHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockEngine(MockConfig{}).Rate(ctx, "fedex", testShipment())
	require.ErrorIs(t, err, context.Canceled)
}

func TestStaticCatalog(t *testing.T) {
	ids, err := NewStaticCatalog(nil).EligibleCarriers(context.Background(), rating.ShipmentTypeFreight)
	require.NoError(t, err)
	require.Equal(t, []string{"dayross", "manitoulin"}, ids)

	ids, err = NewStaticCatalog([]string{"a", "b"}).EligibleCarriers(context.Background(), rating.ShipmentTypeCourier)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ids)
}

func TestNewFromConfig(t *testing.T) {
	primary, legacy, err := NewPair(config.EnginesConfig{
		Primary: config.EngineConfig{Mode: config.EngineModeHTTP, BaseURL: "http://rates.internal"},
		Legacy:  config.EngineConfig{Mode: config.EngineModeMock},
	})
	require.NoError(t, err)
	require.IsType(t, &HTTPEngine{}, primary)
	require.IsType(t, &MockEngine{}, legacy)
	require.Equal(t, "legacy", legacy.Name())

	_, err = New("primary", config.EngineConfig{Mode: "grpc"})
	require.Error(t, err)

	_, err = New("primary", config.EngineConfig{Mode: config.EngineModeHTTP})
	require.Error(t, err)
}
