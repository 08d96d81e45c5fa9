package rating

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregateManyIsolatesFailures(t *testing.T) {
	t.Parallel()

	primary := newFakeEngine("primary", func(_ context.Context, carrierID string, _ ShipmentRequest) (*EngineResponse, error) {
		switch carrierID {
		case "a":
			return okResponse("A", 120, "3 days"), nil
		case "d":
			panic("primary exploded")
		}
		return &EngineResponse{Success: false, Error: "not eligible"}, nil
	})
	legacy := newFakeEngine("legacy", func(_ context.Context, carrierID string, _ ShipmentRequest) (*EngineResponse, error) {
		switch carrierID {
		case "b":
			return okResponse("B", 95.5, "5 days"), nil
		case "c":
			return nil, errors.New("legacy timeout")
		}
		return &EngineResponse{Success: false, Error: "carrier " + carrierID + " unknown"}, nil
	})

	agg := NewAggregator(NewDispatcher(primary, legacy, nil), nil)
	res, err := agg.AggregateMany(context.Background(), []string{"a", "b", "c", "d"}, validShipment(), AggregateOptions{})
	require.NoError(t, err)

	require.Equal(t, 4, res.TotalRequested)
	require.Equal(t, 2, res.SuccessCount)
	require.Len(t, res.SuccessfulQuotes, 2)
	require.Equal(t, "b", res.SuccessfulQuotes[0].CarrierID)
	require.Equal(t, SourceLegacy, res.SuccessfulQuotes[0].SourceEngine)
	require.Equal(t, "a", res.SuccessfulQuotes[1].CarrierID)
	require.Equal(t, SourcePrimary, res.SuccessfulQuotes[1].SourceEngine)

	require.Equal(t, []FailedCarrier{
		{CarrierID: "c", Message: "legacy engine: legacy timeout"},
		{CarrierID: "d", Message: "carrier d unknown"},
	}, res.FailedCarriers)
}

func TestAggregateManyOrderIndependentOfCompletion(t *testing.T) {
	t.Parallel()

	prices := map[string]float64{"slow-cheap": 10, "mid": 20, "fast-pricey": 30, "tie-first": 20}
	delays := map[string]time.Duration{"slow-cheap": 60 * time.Millisecond, "mid": 30 * time.Millisecond, "tie-first": 45 * time.Millisecond}

	primary := newFakeEngine("primary", func(_ context.Context, carrierID string, _ ShipmentRequest) (*EngineResponse, error) {
		time.Sleep(delays[carrierID])
		return okResponse(carrierID, prices[carrierID], "2 days"), nil
	})

	agg := NewAggregator(NewDispatcher(primary, tableEngine("legacy", nil), nil), nil)
	ids := []string{"fast-pricey", "tie-first", "mid", "slow-cheap"}

	for i := 0; i < 3; i++ {
		res, err := agg.AggregateMany(context.Background(), ids, validShipment(), AggregateOptions{})
		require.NoError(t, err)

		got := make([]string, 0, len(res.SuccessfulQuotes))
		for _, q := range res.SuccessfulQuotes {
			got = append(got, q.CarrierID)
		}
		// 价格相同时保持输入顺序
		require.Equal(t, []string{"slow-cheap", "tie-first", "mid", "fast-pricey"}, got)
	}
}

func TestAggregateManyDispatchesConcurrently(t *testing.T) {
	t.Parallel()

	const n = 5
	var started sync.WaitGroup
	started.Add(n)
	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()

	primary := newFakeEngine("primary", func(ctx context.Context, carrierID string, _ ShipmentRequest) (*EngineResponse, error) {
		started.Done()
		// 任何一个承运商都要等到全部承运商已启动才返回
		select {
		case <-allStarted:
			return okResponse(carrierID, 1, "1 day"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	agg := NewAggregator(NewDispatcher(primary, tableEngine("legacy", nil), nil), nil)
	res, err := agg.AggregateMany(context.Background(), []string{"c1", "c2", "c3", "c4", "c5"}, validShipment(),
		AggregateOptions{Timeout: 2 * time.Second})
	require.NoError(t, err)
	require.Equal(t, n, res.SuccessCount)
}

func TestAggregateManyEmptyInputMakesNoCalls(t *testing.T) {
	t.Parallel()

	primary := tableEngine("primary", nil)
	legacy := tableEngine("legacy", nil)
	agg := NewAggregator(NewDispatcher(primary, legacy, nil), nil)

	for _, ids := range [][]string{nil, {}, {"", "  "}} {
		res, err := agg.AggregateMany(context.Background(), ids, validShipment(), AggregateOptions{})

		var empty *AggregationEmptyError
		require.True(t, errors.As(err, &empty))
		require.Equal(t, "no carriers requested", empty.Reason)
		require.Equal(t, 0, res.TotalRequested)
		require.Empty(t, res.SuccessfulQuotes)
		require.Empty(t, res.FailedCarriers)
	}
	require.Equal(t, 0, primary.totalCalls())
	require.Equal(t, 0, legacy.totalCalls())
}

func TestAggregateManyDeduplicatesCarriers(t *testing.T) {
	t.Parallel()

	primary := tableEngine("primary", map[string]*EngineResponse{"a": okResponse("A", 5, "1 day")})
	agg := NewAggregator(NewDispatcher(primary, tableEngine("legacy", nil), nil), nil)

	res, err := agg.AggregateMany(context.Background(), []string{"a", " a ", "a"}, validShipment(), AggregateOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalRequested)
	require.Equal(t, 1, primary.callsFor("a"))
}

func TestAggregateManyTimeoutReportsUnsettledCarriers(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	primary := newFakeEngine("primary", func(_ context.Context, carrierID string, _ ShipmentRequest) (*EngineResponse, error) {
		if carrierID == "stuck" {
			<-release
		}
		return okResponse(carrierID, 10, "2 days"), nil
	})

	agg := NewAggregator(NewDispatcher(primary, tableEngine("legacy", nil), nil), nil)

	start := time.Now()
	res, err := agg.AggregateMany(context.Background(), []string{"quick", "stuck"}, validShipment(),
		AggregateOptions{Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	require.Less(t, time.Since(start), time.Second)

	require.Equal(t, 1, res.SuccessCount)
	require.Equal(t, "quick", res.SuccessfulQuotes[0].CarrierID)
	require.Equal(t, []FailedCarrier{{CarrierID: "stuck", Message: MessageTimeout}}, res.FailedCarriers)
}

func TestAggregateManyCancellationReportsUnsettledCarriers(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	primary := newFakeEngine("primary", func(context.Context, string, ShipmentRequest) (*EngineResponse, error) {
		<-release
		return nil, errors.New("unreachable")
	})
	agg := NewAggregator(NewDispatcher(primary, tableEngine("legacy", nil), nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	res, err := agg.AggregateMany(ctx, []string{"x", "y"}, validShipment(), AggregateOptions{})

	var empty *AggregationEmptyError
	require.True(t, errors.As(err, &empty))
	require.Equal(t, "all carriers failed", empty.Reason)
	require.Equal(t, []FailedCarrier{
		{CarrierID: "x", Message: MessageCancelled},
		{CarrierID: "y", Message: MessageCancelled},
	}, res.FailedCarriers)
}

func TestAggregateManyAllFail(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(NewDispatcher(tableEngine("primary", nil), tableEngine("legacy", nil), nil), nil)

	res, err := agg.AggregateMany(context.Background(), []string{"a", "b"}, validShipment(), AggregateOptions{})

	var empty *AggregationEmptyError
	require.True(t, errors.As(err, &empty))
	require.Len(t, empty.FailedCarriers, 2)
	require.Equal(t, 2, res.TotalRequested)
	require.Equal(t, 0, res.SuccessCount)
	require.Equal(t, "a not supported by legacy", res.FailedCarriers[0].Message)
}
