package framework

import "github.com/prometheus/client_golang/prometheus"

var (
	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ratesync",
			Subsystem: "worker",
			Name:      "jobs_total",
			Help:      "Rate quote jobs handled by the worker, by queue and final action.",
		},
		[]string{"queue", "action"},
	)

	consumeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ratesync",
			Subsystem: "worker",
			Name:      "consume_errors_total",
			Help:      "Failed Consume calls against the job queue.",
		},
		[]string{"queue"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ratesync",
			Subsystem: "worker",
			Name:      "job_duration_seconds",
			Help:      "Handler time of one rate quote job.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"queue"},
	)

	queueWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ratesync",
			Subsystem: "worker",
			Name:      "queue_wait_seconds",
			Help:      "Time a consumed job waited in the buffer before a processor picked it up.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"queue"},
	)
)

func init() {
	prometheus.MustRegister(jobsTotal, consumeErrorsTotal, jobDuration, queueWait)
}
