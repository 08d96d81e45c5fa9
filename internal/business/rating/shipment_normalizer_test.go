package rating

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeShipmentAliases(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"from": map[string]any{"zip": "m5v 2t6", "town": "Toronto", "province": "ON"},
		"ship_to": map[string]any{
			"postalCode":  "10001",
			"city":        "New York",
			"countryCode": "us",
		},
		"parcels": []any{
			map[string]any{
				"qty":        "2",
				"weight":     map[string]any{"value": "12.5", "unit": "lb"},
				"dimensions": map[string]any{"depth": 10, "width": "8", "height": 6.5},
			},
		},
		"carrier":      "Purolator Express",
		"accessorials": "liftgate, residential,liftgate",
		"ship_date":    "2026/03/01",
	}

	req := NormalizeShipment(raw)

	require.Equal(t, "M5V 2T6", req.Origin.PostalCode)
	require.Equal(t, "Toronto", req.Origin.City)
	require.Equal(t, "ON", req.Origin.State)
	require.Equal(t, DefaultCountry, req.Origin.Country)
	require.Equal(t, "10001", req.Destination.PostalCode)
	require.Equal(t, "US", req.Destination.Country)

	require.Len(t, req.Packages, 1)
	require.Equal(t, Package{
		Quantity:      2,
		Weight:        12.5,
		Length:        10,
		Width:         8,
		Height:        6.5,
		PackagingType: DefaultPackagingType,
	}, req.Packages[0])

	require.Equal(t, ShipmentTypeCourier, req.ShipmentType)
	require.Equal(t, ServiceLevelExpress, req.ServiceLevel)
	require.Equal(t, UnitSystemImperial, req.UnitSystem)
	require.Equal(t, []string{"liftgate", "residential"}, req.AdditionalServices)
	require.Equal(t, "2026-03-01", req.ShipmentDate)
}

func TestNormalizeShipmentFlatAddressFields(t *testing.T) {
	t.Parallel()

	req := NormalizeShipment(map[string]any{
		"origin_postal_code":      "h2x 1y4",
		"origin_city":             "Montreal",
		"destination_postal_code": "T2P 1J9",
		"destination_country":     "ca",
		"packages":                []map[string]any{{"weight": 3, "length": 4, "width": 5, "height": 6}},
	})

	require.Equal(t, "H2X 1Y4", req.Origin.PostalCode)
	require.Equal(t, "Montreal", req.Origin.City)
	require.Equal(t, "T2P 1J9", req.Destination.PostalCode)
	require.Equal(t, "CA", req.Destination.Country)
	require.Equal(t, 1, req.Packages[0].Quantity)
}

func TestNormalizeShipmentDerivations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		raw       map[string]any
		wantType  ShipmentType
		wantLevel ServiceLevel
	}{
		{
			name:      "defaults",
			raw:       map[string]any{},
			wantType:  ShipmentTypeFreight,
			wantLevel: ServiceLevelStandard,
		},
		{
			name:      "explicit values win over carrier keywords",
			raw:       map[string]any{"shipment_type": "Freight", "service_level": "economy", "carrier_name": "FedEx Express"},
			wantType:  ShipmentTypeFreight,
			wantLevel: ServiceLevelEconomy,
		},
		{
			name:      "ltl keyword",
			raw:       map[string]any{"carrier_name": "Day & Ross LTL"},
			wantType:  ShipmentTypeFreight,
			wantLevel: ServiceLevelStandard,
		},
		{
			name:      "economy keyword",
			raw:       map[string]any{"carrier_name": "Canpar Courier Economy"},
			wantType:  ShipmentTypeCourier,
			wantLevel: ServiceLevelEconomy,
		},
		{
			name:      "next day delivery window",
			raw:       map[string]any{"shipment_date": "2026-03-01", "delivery_date": "2026-03-02"},
			wantType:  ShipmentTypeFreight,
			wantLevel: ServiceLevelExpress,
		},
		{
			name:      "multi day delivery window",
			raw:       map[string]any{"shipment_date": "2026-03-01", "delivery_date": "2026-03-04"},
			wantType:  ShipmentTypeFreight,
			wantLevel: ServiceLevelStandard,
		},
	}

	for _, tc := range cases {
		req := NormalizeShipment(tc.raw)
		require.Equal(t, tc.wantType, req.ShipmentType, tc.name)
		require.Equal(t, tc.wantLevel, req.ServiceLevel, tc.name)
	}
}

func TestNormalizeShipmentIsIdempotent(t *testing.T) {
	t.Parallel()

	lat := 43.65
	first := NormalizeShipment(map[string]any{
		"from": map[string]any{"zip": "m5v2t6", "city": "Toronto", "lat": lat, "lng": -79.38},
		"to":   map[string]any{"zip": "V6B1A1", "city": "Vancouver"},
		"items": []any{
			map[string]any{"weight": 2.25, "len": 10, "width": 4, "height": 3, "desc": "books"},
			map[string]any{"quantity": 3, "weight": 1, "length": 1, "width": 1, "height": 1, "packaging": "Envelope"},
		},
		"units":              "metric",
		"service":            "express",
		"reference":          []string{"PO-1", "PO-2"},
		"shipment_date":      "2026-05-10",
		"additionalServices": []any{"signature"},
	})

	second := NormalizeShipment(first.FormData())
	require.Equal(t, first, second)
	require.Equal(t, UnitSystemMetric, second.UnitSystem)
	require.Equal(t, "books", second.Packages[0].Description)
	require.Equal(t, "Envelope", second.Packages[1].PackagingType)
}

func TestNormalizeShipmentMissingPackagesFailsValidation(t *testing.T) {
	t.Parallel()

	req := NormalizeShipment(map[string]any{
		"origin":      map[string]any{"postal_code": "M5V 2T6"},
		"destination": map[string]any{"postal_code": "V6B 1A1"},
	})
	require.Nil(t, req.Packages)

	res := NewValidator().Validate(&req)
	require.False(t, res.IsValid)
	require.Equal(t, "packages", res.Errors[0].Field)
}
