package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeQuoteAppliesDefaults(t *testing.T) {
	t.Parallel()

	q := NormalizeQuote("fedex", RawCarrierQuote{
		LineItems: []RawLineItem{{Cost: 8.123, Charge: 10.456}},
	}, SourceLegacy)

	require.Equal(t, "fedex", q.CarrierID)
	require.Equal(t, "fedex", q.CarrierName)
	require.Equal(t, DefaultCurrency, q.Currency)
	require.Equal(t, ServiceLevelStandard, q.ServiceLevel)
	require.Equal(t, DefaultTransitDays, q.TransitDays)
	require.Equal(t, SourceLegacy, q.SourceEngine)

	require.Equal(t, []LineItem{{
		ID:             "fedex-1",
		Carrier:        DefaultLineCarrier,
		Code:           DefaultChargeCode,
		ChargeName:     DefaultChargeName,
		Cost:           8.123,
		CostCurrency:   DefaultCurrency,
		Charge:         10.456,
		ChargeCurrency: DefaultCurrency,
		Source:         SourceLegacy,
	}}, q.LineItems)
	require.Equal(t, 8.12, q.TotalCost)
	require.Equal(t, 10.46, q.TotalCharge)
}

func TestNormalizeQuoteLineItemsInheritQuoteCurrency(t *testing.T) {
	t.Parallel()

	q := NormalizeQuote("ups", RawCarrierQuote{
		Currency: "usd",
		LineItems: []RawLineItem{
			{ChargeName: "Base", Code: "BAS", Carrier: "UPS", Cost: 1, Charge: 2},
			{ChargeName: "Fuel", Code: "FSC", Charge: 0.5, ChargeCurrency: "cad"},
		},
		TransitTime:  "2 days",
		ServiceLevel: "express",
	}, SourcePrimary)

	require.Equal(t, "USD", q.Currency)
	require.Equal(t, "USD", q.LineItems[0].ChargeCurrency)
	require.Equal(t, "USD", q.LineItems[1].CostCurrency)
	require.Equal(t, "CAD", q.LineItems[1].ChargeCurrency)
	require.Equal(t, "ups-2", q.LineItems[1].ID)
	require.Equal(t, 2, q.TransitDays)
	require.Equal(t, ServiceLevelExpress, q.ServiceLevel)
	require.Equal(t, 2.5, q.TotalCharge)
	require.Equal(t, 1.0, q.TotalCost)
}

func TestNormalizeQuoteSumsWithoutFloatDrift(t *testing.T) {
	t.Parallel()

	q := NormalizeQuote("a", RawCarrierQuote{
		LineItems: []RawLineItem{{Charge: 0.1}, {Charge: 0.2}},
	}, SourcePrimary)

	require.Equal(t, 0.3, q.TotalCharge)
}

func TestNormalizeQuoteSynthesizesFreightLine(t *testing.T) {
	t.Parallel()

	q := NormalizeQuote("dhl", RawCarrierQuote{TotalCharge: 42.5, CarrierName: "DHL"}, SourcePrimary)

	require.Len(t, q.LineItems, 1)
	require.Equal(t, DefaultChargeName, q.LineItems[0].ChargeName)
	require.Equal(t, 42.5, q.LineItems[0].Charge)
	require.Equal(t, 42.5, q.TotalCharge)
	require.Equal(t, "DHL", q.CarrierName)
}

func TestNormalizeQuoteNonFiniteAmountsCountAsZero(t *testing.T) {
	t.Parallel()

	q := NormalizeQuote("a", RawCarrierQuote{
		LineItems: []RawLineItem{{Charge: math.NaN(), Cost: math.Inf(1)}, {Charge: 5}},
	}, SourcePrimary)

	require.Equal(t, 0.0, q.LineItems[0].Charge)
	require.Equal(t, 0.0, q.LineItems[0].Cost)
	require.Equal(t, 5.0, q.TotalCharge)
	require.Equal(t, 0.0, q.TotalCost)
}

func TestNormalizeQuoteEmptyQuote(t *testing.T) {
	t.Parallel()

	q := NormalizeQuote("a", RawCarrierQuote{}, SourcePrimary)
	require.Empty(t, q.LineItems)
	require.Equal(t, 0.0, q.TotalCharge)
}

func TestRoundMoney(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1.01, RoundMoney(1.005))
	require.Equal(t, 2.68, RoundMoney(2.675))
	require.Equal(t, 0.0, RoundMoney(math.NaN()))
}
