package reconcile

import "github.com/prometheus/client_golang/prometheus"

var (
	passesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leasesync_passes_total",
			Help: "Reconciliation passes run, by mode.",
		},
		[]string{"mode"},
	)

	leasesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leasesync_leases_processed_total",
			Help: "Leases processed by reconciliation passes, by outcome.",
		},
		[]string{"outcome"},
	)

	routerErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "leasesync_router_errors_total",
			Help: "Routers that contributed no leases because every transport failed.",
		},
	)

	passDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leasesync_pass_duration_seconds",
			Help:    "Wall-clock duration of reconciliation passes.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(passesTotal, leasesProcessed, routerErrors, passDuration)
}
