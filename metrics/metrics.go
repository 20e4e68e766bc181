// Package metrics exposes the runtime's Prometheus instrumentation:
// dispatcher queue depth, messages forwarded, and block lifecycle state.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the counters and gauges the graph runtime publishes.
type Metrics struct {
	DispatcherQueueDepth *prometheus.GaugeVec
	MessagesForwarded    *prometheus.CounterVec
	BlockState           *prometheus.GaugeVec
}

// New creates a Metrics instance registered against reg. reg may be a
// dedicated *prometheus.Registry (tests) or prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DispatcherQueueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "synapse",
				Subsystem: "dispatcher",
				Name:      "queue_depth",
				Help:      "Number of requests currently queued on a dispatcher.",
			},
			[]string{"dispatcher"},
		),
		MessagesForwarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "synapse",
				Subsystem: "dispatcher",
				Name:      "messages_forwarded_total",
				Help:      "Total number of messages a dispatcher has delivered to a route.",
			},
			[]string{"dispatcher", "route"},
		),
		BlockState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "synapse",
				Subsystem: "block",
				Name:      "state",
				Help:      "Current lifecycle state of a block (0=created,1=initialized,2=running,3=stopped,4=failed).",
			},
			[]string{"block"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.DispatcherQueueDepth, m.MessagesForwarded, m.BlockState)
	}
	return m
}
