// SPDX-License-Identifier: LGPL-3.0-or-later

// Package metrics exposes the coordinator's Prometheus metrics: node
// dispatch outcomes, share-combination results, and action/pkpSign/
// claim/encryption call counts and latencies.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "lit_coordinator"

// Registry is the coordinator's Prometheus registry. A dedicated
// registry (rather than prometheus.DefaultRegisterer) keeps a client
// embedding this module from colliding with its host application's own
// metrics.
var Registry = prometheus.NewRegistry()
