// Package metrics provides Prometheus metrics for the tracker.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	KeysTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "keytally",
		Subsystem: "track",
		Name:      "keys_total",
		Help:      "Total counted key events by script category.",
	}, []string{"category"}) // "script-a", "script-b", or "other"

	FlushesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "keytally",
		Subsystem: "store",
		Name:      "flushes_total",
		Help:      "Total flush attempts pushed to the store.",
	})
	FlushFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "keytally",
		Subsystem: "store",
		Name:      "flush_failures_total",
		Help:      "Total flushes that failed to persist.",
	})

	SessionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "keytally",
		Subsystem: "track",
		Name:      "sessions_total",
		Help:      "Total listening sessions started.",
	})
)

func init() {
	prometheus.MustRegister(
		KeysTotal,
		FlushesTotal,
		FlushFailures,
		SessionsTotal,
	)
}
