// SPDX-License-Identifier: LGPL-3.0-or-later

package walletsig

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sage-x-project/lit-coordinator/capability"
	"github.com/sage-x-project/lit-coordinator/internal/logger"
	"github.com/sage-x-project/lit-coordinator/literr"
	"github.com/sage-x-project/lit-coordinator/persistence"
)

// AuthCallbackParams is the full context passed to an
// AuthNeededCallback, mirroring spec.md §4.C / §6 "Wallet callback".
type AuthCallbackParams struct {
	SessionKeyUri           string
	Capability              *capability.Object
	Domain                  string
	Chain                   string
	Nonce                   string
	Expiration              string
	SwitchChain             bool
	ResourceAbilityRequests []capability.ResourceAbilityRequest
	LitActionCode           string
	LitActionIpfsID         string
	JsParams                interface{}
}

// AuthNeededCallback produces an AuthSig for the given context, e.g. by
// prompting an external wallet or hitting the network's
// sign_session_key endpoint.
type AuthNeededCallback func(ctx context.Context, params AuthCallbackParams) (*AuthSig, error)

// GetWalletSigParams are the inputs to Acquirer.GetWalletSig.
type GetWalletSigParams struct {
	SessionKeyUri           string
	Capability              *capability.Object
	Domain                  string
	Chain                   string
	Nonce                   string
	Expiration              time.Time
	SwitchChain             bool
	ResourceAbilityRequests []capability.ResourceAbilityRequest
	LitActionCode           string
	LitActionIpfsID         string
	JsParams                interface{}
	AuthNeededCallback      AuthNeededCallback
}

// Acquirer resolves and caches the AuthSig that anchors a session's
// capabilities, per spec.md §4.C.
type Acquirer struct {
	adapter         persistence.Adapter
	defaultCallback AuthNeededCallback
	log             logger.Logger
}

// NewAcquirer builds an Acquirer. defaultCallback may be nil — see
// resolution order in GetWalletSig.
func NewAcquirer(adapter persistence.Adapter, defaultCallback AuthNeededCallback, log logger.Logger) *Acquirer {
	if log == nil {
		log = logger.Default()
	}
	return &Acquirer{adapter: adapter, defaultCallback: defaultCallback, log: log}
}

// GetWalletSig resolves an AuthSig per spec.md §4.C's resolution order:
// cached sig (if still valid) -> caller's authNeededCallback -> the
// acquirer's default callback -> ParamsMissing.
func (a *Acquirer) GetWalletSig(ctx context.Context, p GetWalletSigParams) (*AuthSig, error) {
	required := p.ResourceAbilityRequests

	if cached := a.readCached(); cached != nil && !NeedToResign(cached, p.SessionKeyUri, required) {
		return cached, nil
	}

	callbackParams := AuthCallbackParams{
		SessionKeyUri:           p.SessionKeyUri,
		Capability:              p.Capability,
		Domain:                  p.Domain,
		Chain:                   p.Chain,
		Nonce:                   p.Nonce,
		Expiration:              p.Expiration.UTC().Format(time.RFC3339),
		SwitchChain:             p.SwitchChain,
		ResourceAbilityRequests: required,
		LitActionCode:           p.LitActionCode,
		LitActionIpfsID:         p.LitActionIpfsID,
		JsParams:                p.JsParams,
	}

	callback := p.AuthNeededCallback
	if callback == nil {
		callback = a.defaultCallback
	}
	if callback == nil {
		return nil, literr.ErrParamsMissing
	}

	authSig, err := callback(ctx, callbackParams)
	if err != nil {
		return nil, err
	}
	if authSig.Empty() {
		return nil, literr.ErrWalletSignatureNotFound
	}

	a.persist(authSig)
	return authSig, nil
}

func (a *Acquirer) readCached() *AuthSig {
	raw, err := a.adapter.Get(persistence.SlotWalletSignature)
	if err != nil {
		return nil
	}
	var sig AuthSig
	if err := json.Unmarshal([]byte(raw), &sig); err != nil {
		a.log.Warn("walletsig: cached auth sig unparsable", logger.Error(err))
		return nil
	}
	return &sig
}

func (a *Acquirer) persist(sig *AuthSig) {
	data, err := json.Marshal(sig)
	if err != nil {
		a.log.Warn("walletsig: marshal for persistence failed", logger.Error(err))
		return
	}
	if err := a.adapter.Set(persistence.SlotWalletSignature, string(data)); err != nil {
		a.log.Warn("walletsig: persist failed, continuing with in-memory sig", logger.Error(err))
	}
}
