package rating

import "github.com/prometheus/client_golang/prometheus"

var (
	dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ratesync",
			Name:      "dispatch_total",
			Help:      "Per-carrier dispatch outcomes by answering engine (primary, legacy, failed).",
		},
		[]string{"outcome"},
	)

	failedCarriersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ratesync",
			Name:      "failed_carriers_total",
			Help:      "Carriers reported as failed by aggregation, including timeouts.",
		},
	)

	aggregationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ratesync",
			Name:      "aggregation_duration_seconds",
			Help:      "Wall time of one multi-carrier aggregation.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

func init() {
	prometheus.MustRegister(dispatchTotal, failedCarriersTotal, aggregationDuration)
}
