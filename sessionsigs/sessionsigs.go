// SPDX-License-Identifier: LGPL-3.0-or-later

// Package sessionsigs implements the session-sig orchestrator (spec.md
// §4.F): it turns a wallet-anchored AuthSig and a session keypair into a
// per-node SessionSigsMap that the dispatcher attaches to every
// outbound request.
package sessionsigs

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sage-x-project/lit-coordinator/capability"
	"github.com/sage-x-project/lit-coordinator/dispatcher"
	"github.com/sage-x-project/lit-coordinator/literr"
	"github.com/sage-x-project/lit-coordinator/sessionkey"
	"github.com/sage-x-project/lit-coordinator/walletsig"
)

// defaultSigExpiration is used when the caller does not override a
// per-session-sig expiration — spec.md §4.F step 8.
const defaultSigExpiration = 5 * time.Minute

// SessionSigningTemplate is signed, once per node address, by the
// session secret key — spec.md §3.
type SessionSigningTemplate struct {
	SessionKey              string                               `json:"sessionKey"`
	ResourceAbilityRequests []capability.ResourceAbilityRequest `json:"resourceAbilityRequests"`
	Capabilities            []*walletsig.AuthSig                 `json:"capabilities"`
	IssuedAt                string                               `json:"issuedAt"`
	Expiration              string                               `json:"expiration"`
	NodeAddress             string                               `json:"nodeAddress"`
}

// SessionSigsMap is node-url -> AuthSig, each produced by signing that
// node's SessionSigningTemplate with the session secret key — spec.md §3.
type SessionSigsMap map[string]*walletsig.AuthSig

// ChainHeadSource supplies the chain's latest block hash, used as the
// SIWE nonce (spec.md §6 "Chain head source").
type ChainHeadSource interface {
	LatestBlockhash(ctx context.Context) (string, error)
}

// Params are the inputs to GetSessionSigs — spec.md §4.F.
type Params struct {
	ResourceAbilityRequests   []capability.ResourceAbilityRequest
	Domain                    string
	Chain                     string
	Expiration                time.Time // zero means "use defaultSigExpiration per node sig"
	CapabilityAuthSigs        []*walletsig.AuthSig
	CapacityDelegationAuthSig *walletsig.AuthSig
	AuthNeededCallback        walletsig.AuthNeededCallback
	Capability                *capability.Object // caller-supplied; generated from ResourceAbilityRequests if nil
	LitActionCode             string
	LitActionIpfsID           string
	JsParams                  interface{}
}

// Orchestrator composes the session key store, wallet-sig acquirer and
// chain head source into GetSessionSigs, per spec.md §4.F.
type Orchestrator struct {
	keys      *sessionkey.Store
	wallet    *walletsig.Acquirer
	chainHead ChainHeadSource
	nodeURLs  []string
	signer    *nodeSigner
}

// New builds an Orchestrator. nodeURLs is the connected node set whose
// addresses become SessionSigningTemplate.NodeAddress values; call is
// the dispatcher.NodeCaller bound to /web/sign_session_key, used only
// by GetPkpSessionSigs/GetLitActionSessionSigs's derived callback.
func New(keys *sessionkey.Store, wallet *walletsig.Acquirer, chainHead ChainHeadSource, nodeURLs []string, call dispatcher.NodeCaller) *Orchestrator {
	return &Orchestrator{
		keys:      keys,
		wallet:    wallet,
		chainHead: chainHead,
		nodeURLs:  nodeURLs,
		signer:    &nodeSigner{nodeURLs: nodeURLs, call: call},
	}
}

// GetSessionSigs implements spec.md §4.F steps 1-9.
func (o *Orchestrator) GetSessionSigs(ctx context.Context, p Params) (SessionSigsMap, error) {
	kp, err := o.keys.GetSessionKey()
	if err != nil {
		return nil, err
	}
	sessionKeyURI := kp.Uri()

	capObj := p.Capability
	if capObj == nil {
		capObj = capability.FromResourceAbilityRequests(p.ResourceAbilityRequests)
	}

	if o.chainHead == nil {
		return nil, literr.ErrInvalidEthBlockhash
	}
	nonce, err := o.chainHead.LatestBlockhash(ctx)
	if err != nil || nonce == "" {
		return nil, literr.Wrap(literr.InvalidEthBlockhash, err, "sessionsigs: latest blockhash unavailable")
	}

	resourceURI, err := capObj.EncodeAsSiweResource()
	if err != nil {
		return nil, fmt.Errorf("sessionsigs: encode capability: %w", err)
	}

	expiration := p.Expiration
	if expiration.IsZero() {
		expiration = time.Now().Add(defaultSigExpiration)
	}

	authSig, err := o.wallet.GetWalletSig(ctx, walletsig.GetWalletSigParams{
		SessionKeyUri:           sessionKeyURI,
		Capability:              capObj,
		Domain:                  p.Domain,
		Chain:                   p.Chain,
		Nonce:                   nonce,
		Expiration:              expiration,
		ResourceAbilityRequests: p.ResourceAbilityRequests,
		LitActionCode:           p.LitActionCode,
		LitActionIpfsID:         p.LitActionIpfsID,
		JsParams:                p.JsParams,
		AuthNeededCallback:      p.AuthNeededCallback,
	})
	if err != nil {
		return nil, err
	}

	if walletsig.NeedToResign(authSig, sessionKeyURI, p.ResourceAbilityRequests) {
		return nil, literr.ErrWalletSignatureNotFound
	}
	if authSig.Address == "" || authSig.DerivedVia == "" || authSig.Sig == "" || authSig.SignedMessage == "" {
		return nil, literr.ErrWalletSignatureNotFound
	}
	_ = resourceURI // already embedded in authSig.SignedMessage by the callback/walletsig layer

	capabilities := make([]*walletsig.AuthSig, 0, len(p.CapabilityAuthSigs)+2)
	capabilities = append(capabilities, p.CapabilityAuthSigs...)
	if p.CapacityDelegationAuthSig != nil {
		capabilities = append(capabilities, p.CapacityDelegationAuthSig)
	}
	capabilities = append(capabilities, authSig)

	issuedAt := time.Now().UTC().Format(time.RFC3339)
	expiresAt := expiration.UTC().Format(time.RFC3339)

	sigs := make(SessionSigsMap, len(o.nodeURLs))
	for _, url := range o.nodeURLs {
		template := SessionSigningTemplate{
			SessionKey:              kp.PublicKey,
			ResourceAbilityRequests: p.ResourceAbilityRequests,
			Capabilities:            capabilities,
			IssuedAt:                issuedAt,
			Expiration:              expiresAt,
			NodeAddress:             url,
		}

		payload, err := canonicalJSON(template)
		if err != nil {
			return nil, fmt.Errorf("sessionsigs: marshal template for %s: %w", url, err)
		}

		sig, err := sessionkey.SignDetached(kp.SecretKey, payload)
		if err != nil {
			return nil, fmt.Errorf("sessionsigs: sign template for %s: %w", url, err)
		}

		sigs[url] = &walletsig.AuthSig{
			Sig:           hex.EncodeToString(sig),
			DerivedVia:    "litSessionSignViaNacl",
			SignedMessage: string(payload),
			Address:       kp.PublicKey,
			Algo:          "ed25519",
		}
	}

	return sigs, nil
}

// canonicalJSON marshals v with stable key order; Go's encoding/json
// already sorts map[string]any keys, and struct fields serialise in
// declaration order, which is sufficient for SessionSigningTemplate's
// fixed field set — spec.md §3 "serialised deterministically".
func canonicalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
