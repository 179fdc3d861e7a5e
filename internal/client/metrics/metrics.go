// Package metrics exposes Prometheus instrumentation for the node client.
// The local-fallback counter exists so operators can tell "ran remotely as
// intended" apart from "degraded to local execution".
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ClientMetrics struct {
	RPCFailures    *prometheus.CounterVec
	JobsSubmitted  prometheus.Counter
	LocalFallbacks prometheus.Counter
}

// New registers the client metrics with the given registerer.
func New(reg prometheus.Registerer) *ClientMetrics {
	factory := promauto.With(reg)
	return &ClientMetrics{
		RPCFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gridjob_client_rpc_failures_total",
			Help: "RPC wrapper calls that failed and returned their sentinel value, by method.",
		}, []string{"method"}),
		JobsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "gridjob_client_jobs_submitted_total",
			Help: "Compute jobs submitted through the job client.",
		}),
		LocalFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "gridjob_client_local_fallbacks_total",
			Help: "Compute jobs that degraded to in-process local execution.",
		}),
	}
}

// RecordRPCFailure increments the failure counter for a method. Safe on a
// nil receiver so tests can wire components without metrics.
func (m *ClientMetrics) RecordRPCFailure(method string) {
	if m == nil {
		return
	}
	m.RPCFailures.WithLabelValues(method).Inc()
}

func (m *ClientMetrics) RecordSubmission() {
	if m == nil {
		return
	}
	m.JobsSubmitted.Inc()
}

func (m *ClientMetrics) RecordLocalFallback() {
	if m == nil {
		return
	}
	m.LocalFallbacks.Inc()
}
