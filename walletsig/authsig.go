// SPDX-License-Identifier: LGPL-3.0-or-later

// Package walletsig obtains, caches and validates the AuthSig — the
// detached signature over a SIWE+ReCap message that anchors a
// delegation from an external wallet (spec.md §4.C).
package walletsig

// AuthSig is a detached signature payload, per spec.md §3.
type AuthSig struct {
	Sig           string `json:"sig"`
	DerivedVia    string `json:"derivedVia"`
	SignedMessage string `json:"signedMessage"`
	Address       string `json:"address"`
	Algo          string `json:"algo,omitempty"`
}

// Empty reports whether a required field of the AuthSig is missing,
// per spec.md §4.F step 6.
func (a *AuthSig) Empty() bool {
	return a == nil || a.Address == "" || a.DerivedVia == "" || a.Sig == "" || a.SignedMessage == ""
}
