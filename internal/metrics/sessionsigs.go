// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionKeysCreated tracks session keypair generation.
	SessionKeysCreated = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessionsigs",
			Name:      "session_keys_created_total",
			Help:      "Total number of session keypairs generated",
		},
	)

	// SessionSigsIssued tracks GetSessionSigs outcomes.
	SessionSigsIssued = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessionsigs",
			Name:      "issued_total",
			Help:      "Total number of session signature sets issued",
		},
		[]string{"status"}, // success, failure
	)

	// SessionSigsDuration tracks GetSessionSigs latency.
	SessionSigsDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sessionsigs",
			Name:      "duration_seconds",
			Help:      "GetSessionSigs call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
