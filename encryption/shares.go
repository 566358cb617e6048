// SPDX-License-Identifier: LGPL-3.0-or-later

package encryption

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/sage-x-project/lit-coordinator/dispatcher"
	"github.com/sage-x-project/lit-coordinator/literr"
)

// nodeDecryptionShareResponse is one node's reply to /web/encryption/sign.
type nodeDecryptionShareResponse struct {
	SignatureShare string `json:"signatureShare"`
	DataSigned     string `json:"dataSigned"`
}

// ShareFetcher dispatches decryption-share requests to every connected
// node, per spec.md §4.I step 4's "nodes sign the identity parameter".
type ShareFetcher struct {
	nodeURLs []string
	call     dispatcher.NodeCaller
}

// NewShareFetcher builds a ShareFetcher over the connected node set.
// call performs the actual POST to /web/encryption/sign.
func NewShareFetcher(nodeURLs []string, call dispatcher.NodeCaller) *ShareFetcher {
	return &ShareFetcher{nodeURLs: nodeURLs, call: call}
}

// FetchDecryptionShares dispatches p's identity parameter and session
// sigs to every node and collects their BLS signature shares, ready to
// pass to Decrypt.
func (f *ShareFetcher) FetchDecryptionShares(ctx context.Context, p DecryptParams) ([]DecryptionShare, error) {
	conditionsHash := sha256.Sum256(p.Conditions)
	identity := IdentityParameterFromHashes(hex.EncodeToString(conditionsHash[:]), p.DataToEncryptHash)

	build := func(url string) (interface{}, error) {
		sig, ok := p.SessionSigs[url]
		if !ok {
			return nil, literr.ErrWalletSignatureNotFound
		}
		return map[string]interface{}{
			"identityParameter": identity,
			"conditions":        string(p.Conditions),
			"chain":             p.Chain,
			"authSig":           sig,
		}, nil
	}

	minNodeCount := p.MinNodeCount
	if minNodeCount <= 0 {
		minNodeCount = len(f.nodeURLs)
	}
	d := dispatcher.New(dispatcher.Config{NodeURLs: f.nodeURLs, MinNodeCount: minNodeCount})
	result, err := d.Dispatch(ctx, f.nodeURLs, build, f.call)
	if err != nil {
		return nil, err
	}

	shares := make([]DecryptionShare, 0, len(result.Values))
	for i, v := range result.Values {
		data, err := json.Marshal(v)
		if err != nil {
			continue
		}
		var resp nodeDecryptionShareResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			continue
		}
		shares = append(shares, DecryptionShare{SignatureShare: resp.SignatureShare, ShareIndex: i, DataSigned: resp.DataSigned})
	}
	return shares, nil
}
