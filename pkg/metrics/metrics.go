// Package metrics holds the Prometheus collectors of the acquisition loop.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ItemsQueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "acquire",
			Name:      "items_queued_total",
			Help:      "Transfers queued, by fetcher kind.",
		},
		[]string{"kind"},
	)

	FetchResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "acquire",
			Name:      "fetch_results_total",
			Help:      "Method reports delivered to items, by access scheme and result.",
		},
		[]string{"access", "result"},
	)

	FetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "acquire",
			Name:      "fetch_latency_seconds",
			Help:      "Duration of method transfers.",
		},
		[]string{"access"},
	)

	BytesFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "acquire",
			Name:      "bytes_fetched_total",
			Help:      "Bytes transferred from the network, excluding resumed parts.",
		},
	)

	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "acquire",
			Name:      "transfers_in_flight",
			Help:      "Transfers currently running in method workers.",
		},
	)

	AuthFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "acquire",
			Name:      "auth_failures_total",
			Help:      "Items that ended with a verification failure.",
		},
	)
)

// Register registers the acquire metrics into the default registry.
func Register() {
	prometheus.MustRegister(ItemsQueued, FetchResults, FetchLatency, BytesFetched, InFlight, AuthFailures)
}
