package rating

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func quoteForm() map[string]any {
	return map[string]any{
		"origin":      map[string]any{"postal_code": "M5V 2T6", "city": "Toronto"},
		"destination": map[string]any{"postal_code": "V6B 1A1", "city": "Vancouver"},
		"packages":    []any{map[string]any{"weight": 10, "length": 12, "width": 10, "height": 8}},
	}
}

func newTestService() (*Service, *fakeEngine, *fakeEngine) {
	primary := tableEngine("primary", map[string]*EngineResponse{"A": okResponse("Carrier A", 120, "3 days")})
	legacy := tableEngine("legacy", map[string]*EngineResponse{"B": okResponse("Carrier B", 95.5, "5 days")})
	return NewService(primary, legacy, nil), primary, legacy
}

func TestServiceQuoteRunsPipeline(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	res, err := svc.Quote(context.Background(), quoteForm(), []string{"A", "B", "C"}, RateOptions{Timeout: time.Second})
	require.NoError(t, err)

	require.Equal(t, "M5V 2T6", res.Request.Origin.PostalCode)
	require.Equal(t, 3, res.Aggregation.TotalRequested)
	require.Equal(t, 2, res.Aggregation.SuccessCount)
	require.Equal(t, []FailedCarrier{{CarrierID: "C", Message: "C not supported by legacy"}}, res.Aggregation.FailedCarriers)

	require.NotNil(t, res.Selection)
	require.Equal(t, "B", res.Selection.Cheapest.CarrierID)
	require.Equal(t, "A", res.Selection.Fastest.CarrierID)
	require.Equal(t, "A", res.Selection.Recommended.CarrierID)
}

func TestServiceQuoteStopsOnValidationError(t *testing.T) {
	t.Parallel()

	svc, primary, legacy := newTestService()
	form := quoteForm()
	delete(form, "destination")

	res, err := svc.Quote(context.Background(), form, []string{"A"}, RateOptions{})
	require.Nil(t, res)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Equal(t, "destination.postal_code", vErr.Errors[0].Field)
	require.Equal(t, 0, primary.totalCalls())
	require.Equal(t, 0, legacy.totalCalls())
}

func TestServiceQuoteAllCarriersFail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	res, err := svc.Quote(context.Background(), quoteForm(), []string{"X", "Y"}, RateOptions{})

	var empty *AggregationEmptyError
	require.True(t, errors.As(err, &empty))
	require.Len(t, empty.FailedCarriers, 2)
	require.NotNil(t, res)
	require.Nil(t, res.Selection)
}

func TestServiceRateManyCarriersEmptyListSkipsValidation(t *testing.T) {
	t.Parallel()

	svc, primary, _ := newTestService()
	_, err := svc.RateManyCarriers(context.Background(), nil, ShipmentRequest{}, RateOptions{})

	var empty *AggregationEmptyError
	require.True(t, errors.As(err, &empty))
	require.Equal(t, 0, primary.totalCalls())
}

func TestServiceRateManyCarriersValidates(t *testing.T) {
	t.Parallel()

	svc, primary, _ := newTestService()
	_, err := svc.RateManyCarriers(context.Background(), []string{"A"}, ShipmentRequest{}, RateOptions{})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Equal(t, 0, primary.totalCalls())
}

func TestServiceRateOneCarrier(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()

	q, err := svc.RateOneCarrier(context.Background(), "B", validShipment())
	require.NoError(t, err)
	require.Equal(t, SourceLegacy, q.SourceEngine)
	require.Equal(t, 95.5, q.TotalCharge)
	require.Equal(t, 5, q.TransitDays)
	require.Equal(t, "Carrier B", q.CarrierName)

	_, err = svc.RateOneCarrier(context.Background(), "Z", validShipment())
	var unavailable *CarrierUnavailableError
	require.True(t, errors.As(err, &unavailable))
}

func TestServiceSelectBest(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	_, err := svc.SelectBest(nil)

	var inputErr *SelectionInputError
	require.True(t, errors.As(err, &inputErr))
}
