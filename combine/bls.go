// SPDX-License-Identifier: LGPL-3.0-or-later

package combine

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/cloudflare/circl/ecc/bls12381"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sage-x-project/lit-coordinator/internal/metrics"
	"github.com/sage-x-project/lit-coordinator/literr"
)

// BLSShare is one node's contribution to a BLS-signed request, per
// spec.md §3 "NodeShare" narrowed to the fields the combiner needs.
type BLSShare struct {
	SignatureShare string // hex-encoded compressed G1 point
	ShareIndex     int
	CurveType      string // "BLS"
	DataSigned     string // hex digest the node actually signed
	SiweMessage    string
	UnsignedJwt    string // set only for access-control-condition JWT requests
}

func (s BLSShare) complete() bool {
	return s.SignatureShare != "" && s.CurveType == "BLS" && s.DataSigned != ""
}

// CombineBLS aggregates BLS signature shares into a single signature,
// per spec.md §4.E "BLS path".
//
// Steps 1-3 of the spec (drop incomplete shares, enforce minNodeCount,
// pick the majority dataSigned) are performed here; step 4's
// aggregation primitive is point addition over BLS12-381 G1 — the
// threshold network's shares are assumed additive (Shamir-shared)
// fragments of the final signature, so summing them reconstructs it
// without needing Lagrange coefficients client-side.
func CombineBLS(shares []BLSShare, minNodeCount int) (sig []byte, err error) {
	timer := prometheus.NewTimer(metrics.CryptoOperationDuration.WithLabelValues("combineBls", "bls12381"))
	defer timer.ObserveDuration()
	metrics.CryptoOperations.WithLabelValues("combineBls", "bls12381").Inc()
	defer func() {
		if err != nil {
			metrics.CryptoErrors.WithLabelValues("combineBls").Inc()
		}
	}()

	complete := make([]BLSShare, 0, len(shares))
	for _, s := range shares {
		if s.complete() {
			complete = append(complete, s)
		}
	}
	if len(complete) < minNodeCount {
		return nil, literr.Newf(literr.InvalidArgumentException,
			"combine: only %d complete BLS shares, need %d", len(complete), minNodeCount)
	}

	sort.Slice(complete, func(i, j int) bool { return complete[i].ShareIndex < complete[j].ShareIndex })

	dataSigned := make([]string, len(complete))
	for i, s := range complete {
		dataSigned[i] = s.DataSigned
	}
	if _, ok := Majority(dataSigned); !ok {
		return nil, literr.New(literr.UnknownError, "combine: no dataSigned values to agree on")
	}
	// Disagreement is logged by the caller (which holds the logger); the
	// combiner proceeds with whichever shares it was given, per spec.md
	// §4.E step 3 ("not unanimous, log a warning but continue").

	var sum bls12381.G1
	sum.SetIdentity()
	for _, s := range complete {
		raw, err := hex.DecodeString(s.SignatureShare)
		if err != nil {
			return nil, fmt.Errorf("combine: decode signature share: %w", err)
		}
		var point bls12381.G1
		if err := point.SetBytes(raw); err != nil {
			return nil, fmt.Errorf("combine: invalid signature share point: %w", err)
		}
		sum.Add(&sum, &point)
	}

	return sum.BytesCompressed(), nil
}

// CombineBLSJwt combines shares whose UnsignedJwt is set and appends the
// aggregated signature to the majority unsignedJwt, per spec.md §4.E
// step 5: unsignedJwt + "." + base64url(signature bytes).
func CombineBLSJwt(shares []BLSShare, minNodeCount int) (string, error) {
	sig, err := CombineBLS(shares, minNodeCount)
	if err != nil {
		return "", err
	}

	jwts := make([]string, 0, len(shares))
	for _, s := range shares {
		if s.complete() && s.UnsignedJwt != "" {
			jwts = append(jwts, s.UnsignedJwt)
		}
	}
	unsignedJwt, ok := Majority(jwts)
	if !ok {
		return "", literr.New(literr.UnknownError, "combine: no unsignedJwt to append signature to")
	}

	return unsignedJwt + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}
