package sweep

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yield_sweep_duration_seconds",
		Help:    "Wall-clock duration of a full yield sweep.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	recordsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yield_sweep_records_updated_total",
		Help: "Subnet yield records upserted by sweeps.",
	})

	chainErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yield_sweep_chain_errors_total",
		Help: "Chain queries that failed during sweeps.",
	})
)
