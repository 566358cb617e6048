// SPDX-License-Identifier: LGPL-3.0-or-later

package walletsig

import (
	"fmt"
	"strings"
	"time"
)

// MessageParams are the fields of an EIP-4361 (Sign-In with Ethereum)
// message the coordinator builds for the wallet to sign.
type MessageParams struct {
	Domain         string
	Address        string
	URI            string
	Statement      string
	ChainID        string
	Nonce          string
	IssuedAt       time.Time
	ExpirationTime time.Time
	Resources      []string
}

// BuildMessage renders params as the exact EIP-4361 text the wallet
// signs. Construction is hand-rolled (rather than going through
// siwe-go's message builder) so the coordinator controls the exact
// byte layout it later re-parses; siwe-go is used on the verification
// side, see VerifySignature.
func BuildMessage(p MessageParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s wants you to sign in with your Ethereum account:\n", p.Domain)
	fmt.Fprintf(&b, "%s\n\n", p.Address)
	if p.Statement != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Statement)
	}
	fmt.Fprintf(&b, "URI: %s\n", p.URI)
	fmt.Fprintf(&b, "Version: 1\n")
	if p.ChainID != "" {
		fmt.Fprintf(&b, "Chain ID: %s\n", p.ChainID)
	}
	fmt.Fprintf(&b, "Nonce: %s\n", p.Nonce)
	fmt.Fprintf(&b, "Issued At: %s\n", p.IssuedAt.UTC().Format(time.RFC3339))
	if !p.ExpirationTime.IsZero() {
		fmt.Fprintf(&b, "Expiration Time: %s\n", p.ExpirationTime.UTC().Format(time.RFC3339))
	}
	if len(p.Resources) > 0 {
		fmt.Fprintf(&b, "Resources:\n")
		for _, r := range p.Resources {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
