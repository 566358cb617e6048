// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistration(t *testing.T) {
	if DispatchesInitiated == nil {
		t.Error("DispatchesInitiated metric is nil")
	}
	if DispatchOutcomes == nil {
		t.Error("DispatchOutcomes metric is nil")
	}
	if NodeCallErrors == nil {
		t.Error("NodeCallErrors metric is nil")
	}
	if DispatchDuration == nil {
		t.Error("DispatchDuration metric is nil")
	}

	if SessionSigsIssued == nil {
		t.Error("SessionSigsIssued metric is nil")
	}
	if SessionKeysCreated == nil {
		t.Error("SessionKeysCreated metric is nil")
	}

	if ActionsExecuted == nil {
		t.Error("ActionsExecuted metric is nil")
	}

	if CryptoOperations == nil {
		t.Error("CryptoOperations metric is nil")
	}
}

func TestMetricsIncrement(t *testing.T) {
	DispatchesInitiated.Inc()
	DispatchOutcomes.WithLabelValues("quorum_reached").Inc()
	NodeCallErrors.WithLabelValues("http://node-a").Inc()
	DispatchDuration.Observe(0.05)

	SessionSigsIssued.WithLabelValues("success").Inc()
	SessionKeysCreated.Inc()

	ActionsExecuted.WithLabelValues("success").Inc()

	CryptoOperations.WithLabelValues("combineBls", "bls12381").Inc()
	CryptoOperations.WithLabelValues("pkpSign", "secp256k1").Inc()

	if count := testutil.CollectAndCount(DispatchOutcomes); count == 0 {
		t.Error("DispatchOutcomes has no metrics collected")
	}
	if count := testutil.CollectAndCount(SessionSigsIssued); count == 0 {
		t.Error("SessionSigsIssued has no metrics collected")
	}
	if count := testutil.CollectAndCount(CryptoOperations); count == 0 {
		t.Error("CryptoOperations has no metrics collected")
	}
}
