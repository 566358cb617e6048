// SPDX-License-Identifier: LGPL-3.0-or-later

package sessionsigs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sage-x-project/lit-coordinator/claim"
	"github.com/sage-x-project/lit-coordinator/dispatcher"
	"github.com/sage-x-project/lit-coordinator/literr"
	"github.com/sage-x-project/lit-coordinator/walletsig"
)

// nodeSignSessionKeyResponse is one node's reply to /web/sign_session_key.
type nodeSignSessionKeyResponse struct {
	Sig           string `json:"sig"`
	DerivedVia    string `json:"derivedVia"`
	SignedMessage string `json:"signedMessage"`
	Address       string `json:"address"`
}

// nodeSigner dispatches a session's SIWE message to the network's
// /web/sign_session_key endpoint, the network-issued AuthSig source
// getPkpSessionSigs/getLitActionSessionSigs substitute for an external
// wallet — spec.md §4.F "Derived calls".
type nodeSigner struct {
	nodeURLs []string
	call     dispatcher.NodeCaller
}

// callback builds the authNeededCallback that replaces an external
// wallet with the node network itself: the callback context is
// forwarded to every node's /web/sign_session_key along with the
// identity proof (pubKey for a PKP-rooted session, authMethods for an
// auth-method-rooted one), and the network's own AuthSig is returned.
func (n *nodeSigner) callback(pubKey string, authMethods []claim.AuthMethod) walletsig.AuthNeededCallback {
	return func(ctx context.Context, params walletsig.AuthCallbackParams) (*walletsig.AuthSig, error) {
		build := func(url string) (interface{}, error) {
			body := map[string]interface{}{
				"sessionKeyUri":           params.SessionKeyUri,
				"resourceAbilityRequests": params.ResourceAbilityRequests,
				"domain":                  params.Domain,
				"chain":                   params.Chain,
				"nonce":                   params.Nonce,
				"expiration":              params.Expiration,
			}
			if pubKey != "" {
				body["pkpPublicKey"] = pubKey
			}
			if len(authMethods) > 0 {
				wireAuthMethods := make([]map[string]interface{}, len(authMethods))
				for i, am := range authMethods {
					wireAuthMethods[i] = map[string]interface{}{
						"authMethodType": int(am.AuthMethodType),
						"accessToken":    am.AccessToken,
					}
				}
				body["authMethods"] = wireAuthMethods
			}
			if params.LitActionCode != "" {
				body["litActionCode"] = params.LitActionCode
			}
			if params.LitActionIpfsID != "" {
				body["litActionIpfsId"] = params.LitActionIpfsID
			}
			if params.JsParams != nil {
				body["jsParams"] = params.JsParams
			}
			return body, nil
		}

		d := dispatcher.New(dispatcher.Config{NodeURLs: n.nodeURLs, MinNodeCount: len(n.nodeURLs)})
		result, err := d.Dispatch(ctx, n.nodeURLs, build, n.call)
		if err != nil {
			return nil, err
		}
		if len(result.Values) == 0 {
			return nil, literr.ErrWalletSignatureNotFound
		}

		data, err := json.Marshal(result.Values[0])
		if err != nil {
			return nil, fmt.Errorf("sessionsigs: marshal sign_session_key response: %w", err)
		}
		var resp nodeSignSessionKeyResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("sessionsigs: unmarshal sign_session_key response: %w", err)
		}

		return &walletsig.AuthSig{
			Sig:           resp.Sig,
			DerivedVia:    resp.DerivedVia,
			SignedMessage: resp.SignedMessage,
			Address:       resp.Address,
		}, nil
	}
}

// GetPkpSessionSigs wraps GetSessionSigs, supplying a callback that
// forwards the SIWE context to the network's /web/sign_session_key
// endpoint instead of an external wallet: the network itself, backed
// by pubKey's PKP and authMethods' proof, becomes the AuthSig source —
// spec.md §4.F "Derived calls".
func (o *Orchestrator) GetPkpSessionSigs(ctx context.Context, p Params, pubKey string, authMethods []claim.AuthMethod) (SessionSigsMap, error) {
	if pubKey == "" && len(authMethods) == 0 {
		return nil, literr.ErrParamsMissing
	}
	if p.AuthNeededCallback == nil {
		p.AuthNeededCallback = o.signer.callback(pubKey, authMethods)
	}
	return o.GetSessionSigs(ctx, p)
}

// GetLitActionSessionSigs wraps GetSessionSigs the same way, requiring
// exactly one of LitActionCode/LitActionIpfsID plus JsParams — spec.md
// §4.F "Derived calls".
func (o *Orchestrator) GetLitActionSessionSigs(ctx context.Context, p Params) (SessionSigsMap, error) {
	hasCode := p.LitActionCode != ""
	hasIpfsID := p.LitActionIpfsID != ""
	if hasCode == hasIpfsID {
		return nil, literr.New(literr.InvalidArgumentException, "sessionsigs: exactly one of litActionCode or litActionIpfsId is required")
	}
	if p.JsParams == nil {
		return nil, literr.ErrParamsMissing
	}
	if p.AuthNeededCallback == nil {
		p.AuthNeededCallback = o.signer.callback("", nil)
	}
	return o.GetSessionSigs(ctx, p)
}
