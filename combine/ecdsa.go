// SPDX-License-Identifier: LGPL-3.0-or-later

package combine

import (
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sage-x-project/lit-coordinator/internal/metrics"
	"github.com/sage-x-project/lit-coordinator/literr"
)

// secp256k1HalfOrder is N/2, used to normalise S to the canonical
// "low-S" form go-ethereum and most verifiers expect.
var secp256k1HalfOrder = new(big.Int).Rsh(secp256k1.S256().N, 1)

// ECDSAShare is one node's contribution to an ECDSA-signed request.
// Unlike the BLS path, the network's threshold-ECDSA protocol already
// reconstructs the full signature at each participating node, so
// combining reduces to checking that enough nodes agree rather than
// doing further curve arithmetic.
type ECDSAShare struct {
	R          string
	S          string
	V          byte
	DataSigned string
	ShareIndex int
}

// Signature is a canonical ECDSA signature, ready for on-chain use.
type Signature struct {
	R string `json:"r"`
	S string `json:"s"`
	V byte   `json:"v"`
}

func (s ECDSAShare) key() string {
	return s.R + s.S + string(s.V) + s.DataSigned
}

// CombineECDSA selects the ECDSA shares that agree with each other,
// requires at least minNodeCount of them, and returns the single
// canonical signature — spec.md §4.E "ECDSA path". For PKP signing this
// always yields exactly one signature.
func CombineECDSA(shares []ECDSAShare, minNodeCount int) (sig *Signature, err error) {
	timer := prometheus.NewTimer(metrics.CryptoOperationDuration.WithLabelValues("combineEcdsa", "secp256k1"))
	defer timer.ObserveDuration()
	metrics.CryptoOperations.WithLabelValues("combineEcdsa", "secp256k1").Inc()
	defer func() {
		if err != nil {
			metrics.CryptoErrors.WithLabelValues("combineEcdsa").Inc()
		}
	}()

	if len(shares) == 0 {
		return nil, literr.New(literr.InvalidArgumentException, "combine: no ECDSA shares")
	}

	keys := make([]string, len(shares))
	byKey := make(map[string]ECDSAShare, len(shares))
	for i, s := range shares {
		keys[i] = s.key()
		byKey[keys[i]] = s
	}

	winners, count := Tally(keys)
	if len(winners) == 0 || count < minNodeCount {
		return nil, literr.Newf(literr.InvalidArgumentException,
			"combine: only %d agreeing ECDSA shares, need %d", count, minNodeCount)
	}

	winner := byKey[winners[0]]
	return normalize(winner)
}

func normalize(s ECDSAShare) (*Signature, error) {
	r, ok := new(big.Int).SetString(s.R, 16)
	if !ok {
		return nil, fmt.Errorf("combine: invalid R %q", s.R)
	}
	sVal, ok := new(big.Int).SetString(s.S, 16)
	if !ok {
		return nil, fmt.Errorf("combine: invalid S %q", s.S)
	}
	v := s.V

	if sVal.Cmp(secp256k1HalfOrder) > 0 {
		sVal.Sub(secp256k1.S256().N, sVal)
		v ^= 1
	}

	return &Signature{
		R: fmt.Sprintf("%064x", r),
		S: fmt.Sprintf("%064x", sVal),
		V: v,
	}, nil
}
