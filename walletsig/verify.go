// SPDX-License-Identifier: LGPL-3.0-or-later

package walletsig

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spruceid/siwe-go"

	"github.com/sage-x-project/lit-coordinator/capability"
)

// VerifySignature checks that a.Sig is a valid EIP-191 signature over
// a.SignedMessage produced by a.Address, per spec.md §3's AuthSig
// invariant. Non-EVM-derived AuthSigs (derivedVia != an EIP-191
// scheme) are not checked here — callers route those through their own
// scheme-specific verifier.
func VerifySignature(a *AuthSig) error {
	if a.Empty() {
		return fmt.Errorf("walletsig: incomplete auth sig")
	}

	msg, err := siwe.ParseMessage(a.SignedMessage)
	if err != nil {
		return fmt.Errorf("walletsig: parse siwe message: %w", err)
	}

	sig := strings.TrimPrefix(a.Sig, "0x")
	pubKey, err := msg.VerifyEIP191(sig)
	if err != nil {
		return fmt.Errorf("walletsig: signature verification failed: %w", err)
	}

	recovered := crypto.PubkeyToAddress(*pubKey)
	if !strings.EqualFold(recovered.Hex(), a.Address) {
		return fmt.Errorf("walletsig: signature does not match claimed address")
	}
	return nil
}

// NeedToResign implements spec.md §4.C's re-sign predicate (P6): the
// cached AuthSig must be re-obtained if any of the four conditions
// hold.
func NeedToResign(a *AuthSig, sessionKeyUri string, required []capability.ResourceAbilityRequest) bool {
	if a.Empty() {
		return true
	}

	if err := VerifySignature(a); err != nil {
		return true
	}

	msg, err := siwe.ParseMessage(a.SignedMessage)
	if err != nil {
		return true
	}

	if msg.GetURI().String() != sessionKeyUri {
		return true
	}

	resources := msg.GetResources()
	if len(resources) == 0 {
		return true
	}

	capObj, err := capability.Decode(resources[0])
	if err != nil {
		return true
	}

	for _, r := range required {
		if !capObj.VerifyCapabilitiesForResource(r.Resource, r.Ability) {
			return true
		}
	}

	return false
}
