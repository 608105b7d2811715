// Package metrics defines the Prometheus collectors the uplink pipeline
// registers for PDU admission/dispatch/discard accounting, executor
// rejections, per-numerology FSM state, and estimator latency, mirroring
// caddy's metrics.go package-level collector-struct convention.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "gnbup"
)

// Collectors is the set of metrics one upper-PHY instance registers into a
// *prometheus.Registry. Call NewCollectors to build and register it.
type Collectors struct {
	PDUsAdmitted   *prometheus.CounterVec
	PDUsDiscarded  *prometheus.CounterVec
	PDUsDispatched *prometheus.CounterVec

	ExecutorRejections *prometheus.CounterVec

	FSMInExecution *prometheus.GaugeVec
	FSMInQueue     *prometheus.GaugeVec

	SRSEstimateLatency  prometheus.Histogram
	TPMISelectLatency   prometheus.Histogram
}

// NewCollectors builds and registers every collector into reg.
func NewCollectors(reg *prometheus.Registry) *Collectors {
	factory := promauto.With(reg)

	return &Collectors{
		PDUsAdmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repository",
			Name:      "pdus_admitted_total",
			Help:      "Count of uplink PDUs admitted into a slot repository, by kind.",
		}, []string{"kind"}),

		PDUsDiscarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "slotproc",
			Name:      "pdus_discarded_total",
			Help:      "Count of uplink PDUs discarded without being processed, by kind.",
		}, []string{"kind"}),

		PDUsDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "slotproc",
			Name:      "pdus_dispatched_total",
			Help:      "Count of uplink PDUs handed to an executor for processing, by kind.",
		}, []string{"kind"}),

		ExecutorRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "rejections_total",
			Help:      "Count of task submissions rejected by a full or stopped executor, by executor name.",
		}, []string{"executor"}),

		FSMInExecution: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fsm",
			Name:      "in_execution_pdus",
			Help:      "Current in-execution PDU count of a slot processor's FSM, by numerology.",
		}, []string{"numerology"}),

		FSMInQueue: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fsm",
			Name:      "in_queue_pdus",
			Help:      "Current in-queue PDU count of a slot processor's FSM, by numerology.",
		}, []string{"numerology"}),

		SRSEstimateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "srs",
			Name:      "estimate_duration_seconds",
			Help:      "Wall-clock duration of one SRS channel estimation.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 2, 16),
		}),

		TPMISelectLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pusch",
			Name:      "tpmi_select_duration_seconds",
			Help:      "Wall-clock duration of one PUSCH TPMI selection across all ranks.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 2, 16),
		}),
	}
}
