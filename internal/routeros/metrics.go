package routeros

import "github.com/prometheus/client_golang/prometheus"

var (
	transportFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leasesync_transport_fetch_total",
			Help: "Lease fetch attempts by transport and outcome.",
		},
		[]string{"transport", "outcome"},
	)
	transportFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "leasesync_transport_fallback_total",
			Help: "Times the console fallback transport was attempted.",
		},
	)
)

func init() {
	prometheus.MustRegister(transportFetches)
	prometheus.MustRegister(transportFallbacks)
}
