// SPDX-License-Identifier: LGPL-3.0-or-later

// Package pkpsign implements the PKP signer (spec.md §4.H):
// threshold-signing an arbitrary digest under a PKP public key,
// requiring either session sigs or at least one auth method.
package pkpsign

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sage-x-project/lit-coordinator/combine"
	"github.com/sage-x-project/lit-coordinator/dispatcher"
	"github.com/sage-x-project/lit-coordinator/internal/metrics"
	"github.com/sage-x-project/lit-coordinator/literr"
	"github.com/sage-x-project/lit-coordinator/sessionsigs"
)

// AuthMethod is a network-verified proof of identity substitutable for
// session sigs, e.g. an OAuth/WebAuthn assertion — spec.md §4.H.
type AuthMethod struct {
	AuthMethodType int    `json:"authMethodType"`
	AccessToken    string `json:"accessToken"`
}

// Params are the inputs to PkpSign — spec.md §4.H.
type Params struct {
	ToSign      []byte
	PubKey      string // hex, with or without 0x prefix
	SessionSigs sessionsigs.SessionSigsMap
	AuthMethods []AuthMethod
	// MinNodeCount is the ECDSA agreement threshold; dispatch itself
	// requires all N node responses (spec.md §4.H), but combination only
	// needs this many of them to agree.
	MinNodeCount int
}

// nodeSignResponse is one node's reply to /web/pkp/sign.
type nodeSignResponse struct {
	R          string `json:"r"`
	S          string `json:"s"`
	V          byte   `json:"v"`
	DataSigned string `json:"dataSigned"`
}

// Signer dispatches PKP signing requests to every connected node, per
// spec.md §4.H.
type Signer struct {
	nodeURLs []string
	call     dispatcher.NodeCaller
}

// New builds a Signer over the connected node set. call performs the
// actual POST to /web/pkp/sign.
func New(nodeURLs []string, call dispatcher.NodeCaller) *Signer {
	return &Signer{nodeURLs: nodeURLs, call: call}
}

// PkpSign implements spec.md §4.H: requires either session sigs or at
// least one auth method, normalises toSign and pubKey, dispatches to
// every node, and combines the ECDSA shares.
func (s *Signer) PkpSign(ctx context.Context, p Params) (sig *combine.Signature, err error) {
	timer := prometheus.NewTimer(metrics.CryptoOperationDuration.WithLabelValues("pkpSign", "secp256k1"))
	defer timer.ObserveDuration()
	metrics.CryptoOperations.WithLabelValues("pkpSign", "secp256k1").Inc()
	defer func() {
		if err != nil {
			metrics.CryptoErrors.WithLabelValues("pkpSign").Inc()
		}
	}()

	if len(p.SessionSigs) == 0 && len(p.AuthMethods) == 0 {
		return nil, literr.New(literr.ParamsMissing, "pkpsign: sessionSigs or authMethods required")
	}
	if len(p.ToSign) == 0 {
		return nil, literr.ErrParamNull
	}

	pubKeyHex := "0x" + strings.TrimPrefix(strings.ToLower(p.PubKey), "0x")
	toSignHex := hex.EncodeToString(p.ToSign)

	urls := s.nodeURLs

	build := func(url string) (interface{}, error) {
		body := map[string]interface{}{
			"toSign": toSignHex,
			"pubKey": pubKeyHex,
		}
		if sig, ok := p.SessionSigs[url]; ok {
			body["authSig"] = sig
		} else if len(p.AuthMethods) > 0 {
			body["authMethods"] = p.AuthMethods
		} else {
			return nil, literr.ErrWalletSignatureNotFound
		}
		return body, nil
	}

	// ECDSA requires all N responses per spec.md §4.H; only minNodeCount
	// agreeing shares are needed to combine.
	minForQuorum := len(urls)
	d := dispatcher.New(dispatcher.Config{NodeURLs: urls, MinNodeCount: minForQuorum})
	result, err := d.Dispatch(ctx, urls, build, s.call)
	if err != nil {
		return nil, err
	}

	shares := make([]combine.ECDSAShare, 0, len(result.Values))
	for i, v := range result.Values {
		data, err := json.Marshal(v)
		if err != nil {
			continue
		}
		var resp nodeSignResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			continue
		}
		shares = append(shares, combine.ECDSAShare{R: resp.R, S: resp.S, V: resp.V, DataSigned: resp.DataSigned, ShareIndex: i})
	}

	minNodeCount := p.MinNodeCount
	if minNodeCount <= 0 {
		minNodeCount = minForQuorum
	}

	return combine.CombineECDSA(shares, minNodeCount)
}
