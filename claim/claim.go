// SPDX-License-Identifier: LGPL-3.0-or-later

// Package claim implements claimKeyId (spec.md §4.J): deriving and
// minting a PKP from an auth-method proof, without a pre-existing
// session key.
package claim

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sage-x-project/lit-coordinator/dispatcher"
	"github.com/sage-x-project/lit-coordinator/internal/metrics"
	"github.com/sage-x-project/lit-coordinator/literr"
)

// AuthMethodType enumerates the auth-method kinds claimKeyId accepts.
// WebAuthn is explicitly unsupported per spec.md §4.J step 1.
type AuthMethodType int

const (
	AuthMethodGoogle AuthMethodType = iota + 1
	AuthMethodDiscord
	AuthMethodStytchOTP
	AuthMethodWebAuthn // rejected
)

// AuthMethod is the proof of identity the network uses to derive a key.
type AuthMethod struct {
	AuthMethodType AuthMethodType
	AccessToken    string
}

// MintCallback mints the claimed PKP on-chain given the collected
// per-node signatures and derived public key, returning a transaction
// id — spec.md §4.J step 5.
type MintCallback func(ctx context.Context, req MintRequest) (txID string, err error)

// MintRequest is passed to MintCallback.
type MintRequest struct {
	DerivedKeyID   string
	AuthMethodType AuthMethodType
	Signatures     []Signature
	PubKey         string
	Network        string
}

// Signature is one node's (r, s, v) split of its claim signature —
// spec.md §4.J step 3.
type Signature struct {
	R string
	S string
	V byte
}

// nodeClaimResponse is one node's reply to /web/pkp/claim.
type nodeClaimResponse struct {
	Signature    string `json:"signature"` // hex, concatenated r||s||v
	DerivedKeyID string `json:"derivedKeyId"`
}

// Params are the inputs to ClaimKeyId — spec.md §4.J.
type Params struct {
	AuthMethod    AuthMethod
	MintCallback  MintCallback
	Network       string
	MasterPubKey  []byte // network's master secp256k1 public key, compressed
}

// Result is ClaimKeyId's return value.
type Result struct {
	TxID       string
	PubKey     string
	Signatures []Signature
}

// Claimer dispatches claim requests to every connected node, per
// spec.md §4.J.
type Claimer struct {
	nodeURLs []string
	call     dispatcher.NodeCaller
}

// New builds a Claimer over the connected node set. call performs the
// actual POST to /web/pkp/claim.
func New(nodeURLs []string, call dispatcher.NodeCaller) *Claimer {
	return &Claimer{nodeURLs: nodeURLs, call: call}
}

// ClaimKeyId implements spec.md §4.J steps 1-5.
func (c *Claimer) ClaimKeyId(ctx context.Context, p Params) (result *Result, err error) {
	timer := prometheus.NewTimer(metrics.CryptoOperationDuration.WithLabelValues("claim", "secp256k1"))
	defer timer.ObserveDuration()
	metrics.CryptoOperations.WithLabelValues("claim", "secp256k1").Inc()
	defer func() {
		if err != nil {
			metrics.CryptoErrors.WithLabelValues("claim").Inc()
		}
	}()

	if p.AuthMethod.AuthMethodType == AuthMethodWebAuthn {
		return nil, literr.New(literr.InvalidParamType, "claim: WebAuthn is not a supported auth method")
	}
	if p.AuthMethod.AccessToken == "" {
		return nil, literr.ErrParamsMissing
	}

	d := dispatcher.New(dispatcher.Config{NodeURLs: c.nodeURLs, MinNodeCount: len(c.nodeURLs)})

	build := func(url string) (interface{}, error) {
		return map[string]interface{}{
			"authMethodType": int(p.AuthMethod.AuthMethodType),
			"accessToken":    p.AuthMethod.AccessToken,
		}, nil
	}

	dispatchResult, err := d.Dispatch(ctx, c.nodeURLs, build, c.call)
	if err != nil {
		return nil, err
	}

	sigs := make([]Signature, 0, len(dispatchResult.Values))
	var derivedKeyID string
	for _, v := range dispatchResult.Values {
		resp, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		sigHex, _ := resp["signature"].(string)
		keyID, _ := resp["derivedKeyId"].(string)
		if keyID != "" {
			derivedKeyID = keyID
		}

		sig, err := splitSignature(sigHex)
		if err != nil {
			continue
		}
		sigs = append(sigs, *sig)
	}
	if derivedKeyID == "" {
		return nil, literr.New(literr.UnknownError, "claim: no node returned a derivedKeyId")
	}

	pubKey, err := computeHDPubKey(p.MasterPubKey, derivedKeyID)
	if err != nil {
		return nil, err
	}

	callback := p.MintCallback
	if callback == nil {
		return nil, literr.New(literr.ParamsMissing, "claim: mintCallback required")
	}

	txID, err := callback(ctx, MintRequest{
		DerivedKeyID:   derivedKeyID,
		AuthMethodType: p.AuthMethod.AuthMethodType,
		Signatures:     sigs,
		PubKey:         pubKey,
		Network:        p.Network,
	})
	if err != nil {
		return nil, fmt.Errorf("claim: mint callback failed: %w", err)
	}

	return &Result{TxID: txID, PubKey: pubKey, Signatures: sigs}, nil
}

// splitSignature parses a hex r||s||v signature into its components —
// spec.md §4.J step 3.
func splitSignature(sigHex string) (*Signature, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(sigHex, "0x"))
	if err != nil || len(raw) != 65 {
		return nil, fmt.Errorf("claim: malformed signature %q", sigHex)
	}
	return &Signature{
		R: hex.EncodeToString(raw[:32]),
		S: hex.EncodeToString(raw[32:64]),
		V: raw[64],
	}, nil
}

// computeHDPubKey derives a child public key from the network's master
// public key via additive tweak, the non-hardened BIP32-style scheme
// spec.md §4.J step 4 describes as "deterministic HD derivation rooted
// at the network's master public key": childPub = masterPub + tweak*G,
// where tweak = the hex-decoded derivedKeyId read as a big-endian
// integer and reduced mod the curve order (no hashing is applied).
func computeHDPubKey(masterPubKey []byte, derivedKeyID string) (string, error) {
	master, err := secp256k1.ParsePubKey(masterPubKey)
	if err != nil {
		return "", fmt.Errorf("claim: invalid master public key: %w", err)
	}

	tweakBytes, err := hex.DecodeString(strings.TrimPrefix(derivedKeyID, "0x"))
	if err != nil {
		return "", fmt.Errorf("claim: invalid derivedKeyId: %w", err)
	}
	var tweakScalar secp256k1.ModNScalar
	tweakScalar.SetByteSlice(tweakBytes)

	var masterJac secp256k1.JacobianPoint
	master.AsJacobian(&masterJac)

	var tweakJac secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&tweakScalar, &tweakJac)

	var sumJac secp256k1.JacobianPoint
	secp256k1.AddNonConst(&masterJac, &tweakJac, &sumJac)
	sumJac.ToAffine()

	child := secp256k1.NewPublicKey(&sumJac.X, &sumJac.Y)
	return "0x" + hex.EncodeToString(child.SerializeCompressed()), nil
}
