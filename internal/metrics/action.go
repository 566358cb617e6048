// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActionsExecuted tracks ExecuteJs calls.
	ActionsExecuted = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "action",
			Name:      "executions_total",
			Help:      "Total number of Lit Action executions",
		},
		[]string{"status"}, // success, failure
	)

	// ActionCombineTies tracks response/log ties broken by strategy.
	ActionCombineTies = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "action",
			Name:      "combine_ties_total",
			Help:      "Total number of response aggregations that required tie-breaking",
		},
		[]string{"field"}, // response, logs
	)

	// ActionExecutionDuration tracks ExecuteJs latency.
	ActionExecutionDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "action",
			Name:      "duration_seconds",
			Help:      "ExecuteJs call duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to 4s
		},
	)
)
