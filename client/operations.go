// SPDX-License-Identifier: LGPL-3.0-or-later

package client

import (
	"context"

	"github.com/sage-x-project/lit-coordinator/action"
	"github.com/sage-x-project/lit-coordinator/claim"
	"github.com/sage-x-project/lit-coordinator/combine"
	"github.com/sage-x-project/lit-coordinator/encryption"
	"github.com/sage-x-project/lit-coordinator/pkpsign"
	"github.com/sage-x-project/lit-coordinator/sessionsigs"
)

// GetPkpSessionSigs implements spec.md §4.F's derived getPkpSessionSigs
// as a client method: the network itself, backed by a PKP public key
// and/or auth-method proof, becomes the AuthSig source instead of an
// external wallet.
func (c *Client) GetPkpSessionSigs(ctx context.Context, p sessionsigs.Params, pubKey string, authMethods []claim.AuthMethod) (sessionsigs.SessionSigsMap, error) {
	if err := c.ensureReady(); err != nil {
		return nil, err
	}
	return c.sessionSigs.GetPkpSessionSigs(ctx, p, pubKey, authMethods)
}

// GetLitActionSessionSigs implements spec.md §4.F's derived
// getLitActionSessionSigs as a client method.
func (c *Client) GetLitActionSessionSigs(ctx context.Context, p sessionsigs.Params) (sessionsigs.SessionSigsMap, error) {
	if err := c.ensureReady(); err != nil {
		return nil, err
	}
	return c.sessionSigs.GetLitActionSessionSigs(ctx, p)
}

// GetSessionSigs implements spec.md §4.F as a client method, failing
// fast if the client is not Ready.
func (c *Client) GetSessionSigs(ctx context.Context, p sessionsigs.Params) (sessionsigs.SessionSigsMap, error) {
	if err := c.ensureReady(); err != nil {
		return nil, err
	}
	return c.sessionSigs.GetSessionSigs(ctx, p)
}

// ExecuteJs implements spec.md §4.G as a client method.
func (c *Client) ExecuteJs(ctx context.Context, p action.Params) (*action.Result, error) {
	if err := c.ensureReady(); err != nil {
		return nil, err
	}
	return c.executor.ExecuteJs(ctx, p)
}

// PkpSign implements spec.md §4.H as a client method, using the
// connected network's minNodeCount threshold unless the caller
// overrides it.
func (c *Client) PkpSign(ctx context.Context, p pkpsign.Params) (*combine.Signature, error) {
	if err := c.ensureReady(); err != nil {
		return nil, err
	}
	if p.MinNodeCount <= 0 {
		p.MinNodeCount = c.NodeSet().MinNodeCount
	}
	return c.signer.PkpSign(ctx, p)
}

// Encrypt implements spec.md §4.I as a client method, using the
// connected network's subnetPubKey established by Connect unless the
// caller overrides it.
func (c *Client) Encrypt(p encryption.EncryptParams) (*encryption.EncryptResult, error) {
	if err := c.ensureReady(); err != nil {
		return nil, err
	}
	if len(p.SubnetPubKey) == 0 {
		p.SubnetPubKey = c.NodeSet().SubnetPubKey
	}
	return encryption.Encrypt(p)
}

// Decrypt implements spec.md §4.I as a client method, dispatching to
// /web/encryption/sign for the nodes' BLS decryption shares before
// combining and opening the ciphertext. Uses the connected network's
// minNodeCount threshold unless the caller overrides it.
func (c *Client) Decrypt(ctx context.Context, p encryption.DecryptParams) ([]byte, error) {
	if err := c.ensureReady(); err != nil {
		return nil, err
	}
	if p.MinNodeCount <= 0 {
		p.MinNodeCount = c.NodeSet().MinNodeCount
	}
	shares, err := c.shares.FetchDecryptionShares(ctx, p)
	if err != nil {
		return nil, err
	}
	return encryption.Decrypt(p, shares)
}

// ClaimKeyId implements spec.md §4.J as a client method, using the
// connected network's master public key unless the caller overrides it.
func (c *Client) ClaimKeyId(ctx context.Context, p claim.Params) (*claim.Result, error) {
	if err := c.ensureReady(); err != nil {
		return nil, err
	}
	if len(p.MasterPubKey) == 0 {
		p.MasterPubKey = c.NodeSet().NetworkPubKeySet
	}
	return c.claimer.ClaimKeyId(ctx, p)
}
