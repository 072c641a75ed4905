package bootstrap

import "github.com/prometheus/client_golang/prometheus"

var (
	fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskd",
			Subsystem: "bootstrap",
			Name:      "fetches_total",
			Help:      "Remote artifact fetches by artifact and result",
		},
		[]string{"artifact", "result"},
	)

	cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskd",
			Subsystem: "bootstrap",
			Name:      "cache_hits_total",
			Help:      "Artifacts served from the local cache without a fetch",
		},
		[]string{"artifact"},
	)

	retriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskd",
			Subsystem: "bootstrap",
			Name:      "fetch_retries_total",
			Help:      "Retries after transient fetch failures",
		},
		[]string{"artifact"},
	)
)

func init() {
	prometheus.MustRegister(fetchesTotal, cacheHitsTotal, retriesTotal)
}
