// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClientState reports the lifecycle state (spec.md §4 "State machines")
// as a gauge: 0=Unconnected, 1=Connecting, 2=Ready.
var ClientState = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "client_state",
	Help:      "Client lifecycle state: 0=Unconnected, 1=Connecting, 2=Ready.",
})

// ConnectAttempts counts Connect() calls by outcome.
var ConnectAttempts = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "connect_attempts_total",
	Help:      "Connect() attempts by outcome.",
}, []string{"outcome"})
