package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RPC surface
	RPCCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_rpc_calls_total",
			Help: "Total gateway RPC calls",
		},
		[]string{"method", "outcome"}, // outcome: ok|error
	)

	// Lifecycle transitions
	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transaction_transitions_total",
			Help: "Total committed transaction state transitions",
		},
		[]string{"status"},
	)
	CASConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cas_conflicts_total",
			Help: "Total compare-and-swap conflicts observed",
		},
	)

	// Notification queue
	NotifyQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notify_queue_depth",
			Help: "Current notification dispatch queue depth",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RPCCallsTotal)
	prometheus.MustRegister(TransitionsTotal)
	prometheus.MustRegister(CASConflictsTotal)
	prometheus.MustRegister(NotifyQueueDepth)
}
