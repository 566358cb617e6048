// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DispatchesInitiated tracks batches dispatched to the node set.
	DispatchesInitiated = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "batches_initiated_total",
			Help:      "Total number of request batches dispatched to nodes",
		},
	)

	// DispatchRetries tracks whole-batch retries due to quorum shortfall.
	DispatchRetries = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "retries_total",
			Help:      "Total number of whole-batch retries after quorum shortfall",
		},
	)

	// DispatchOutcomes tracks batch results by status.
	DispatchOutcomes = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "outcomes_total",
			Help:      "Total number of dispatched batches by outcome",
		},
		[]string{"status"}, // quorum_reached, quorum_failed
	)

	// NodeCallErrors tracks per-node call failures.
	NodeCallErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "node_call_errors_total",
			Help:      "Total number of failed per-node calls",
		},
		[]string{"url"},
	)

	// DispatchDuration tracks batch dispatch latency.
	DispatchDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "duration_seconds",
			Help:      "Batch dispatch duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to 4s
		},
	)
)
