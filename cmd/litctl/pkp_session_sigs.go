// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/lit-coordinator/capability"
	"github.com/sage-x-project/lit-coordinator/claim"
	"github.com/sage-x-project/lit-coordinator/sessionsigs"
)

var (
	pkpSessionSigsResourceKind string
	pkpSessionSigsResourceID   string
	pkpSessionSigsAbility      string
	pkpSessionSigsDomain       string
	pkpSessionSigsChain        string
	pkpSessionSigsPubKey       string
	pkpSessionSigsAuthMethod   string
	pkpSessionSigsAccessToken  string
)

var pkpSessionSigsCmd = &cobra.Command{
	Use:   "pkp-session-sigs",
	Short: "Acquire session signatures rooted in a PKP, via the network's own sign_session_key endpoint",
	RunE:  runPkpSessionSigs,
}

func init() {
	rootCmd.AddCommand(pkpSessionSigsCmd)
	addWiringFlags(pkpSessionSigsCmd)
	pkpSessionSigsCmd.Flags().StringVar(&pkpSessionSigsResourceKind, "resource-kind", string(capability.ResourcePKP), "resource kind (pkp, lit-action, access-control-condition, *)")
	pkpSessionSigsCmd.Flags().StringVar(&pkpSessionSigsResourceID, "resource-id", "*", "resource id, or * for a wildcard grant")
	pkpSessionSigsCmd.Flags().StringVar(&pkpSessionSigsAbility, "ability", string(capability.PKPSigning), "ability requested for the resource")
	pkpSessionSigsCmd.Flags().StringVar(&pkpSessionSigsDomain, "domain", "litctl.local", "SIWE domain")
	pkpSessionSigsCmd.Flags().StringVar(&pkpSessionSigsChain, "chain", "1", "SIWE chain id")
	pkpSessionSigsCmd.Flags().StringVar(&pkpSessionSigsPubKey, "pub-key", "", "hex-encoded PKP public key rooting this session")
	pkpSessionSigsCmd.Flags().StringVar(&pkpSessionSigsAuthMethod, "auth-method-type", "google", "auth method type proving identity to the network (google, discord, stytch-otp)")
	pkpSessionSigsCmd.Flags().StringVar(&pkpSessionSigsAccessToken, "access-token", "", "access token for the auth method, if pub-key is not given")
}

func runPkpSessionSigs(cmd *cobra.Command, args []string) error {
	if pkpSessionSigsPubKey == "" && pkpSessionSigsAccessToken == "" {
		return fmt.Errorf("litctl: one of --pub-key or --access-token is required")
	}

	ctx := context.Background()
	c, err := connectedClient(ctx)
	if err != nil {
		return err
	}

	var authMethods []claim.AuthMethod
	if pkpSessionSigsAccessToken != "" {
		authMethods = []claim.AuthMethod{{
			AuthMethodType: parseAuthMethodType(pkpSessionSigsAuthMethod),
			AccessToken:    pkpSessionSigsAccessToken,
		}}
	}

	sigs, err := c.GetPkpSessionSigs(ctx, sessionsigs.Params{
		ResourceAbilityRequests: []capability.ResourceAbilityRequest{{
			Resource: capability.Resource{Kind: capability.ResourceKind(pkpSessionSigsResourceKind), ID: pkpSessionSigsResourceID},
			Ability:  capability.Ability(pkpSessionSigsAbility),
		}},
		Domain: pkpSessionSigsDomain,
		Chain:  pkpSessionSigsChain,
	}, pkpSessionSigsPubKey, authMethods)
	if err != nil {
		return fmt.Errorf("litctl: get pkp session sigs: %w", err)
	}

	out, err := json.MarshalIndent(sigs, "", "  ")
	if err != nil {
		return fmt.Errorf("litctl: encode session sigs: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func parseAuthMethodType(s string) claim.AuthMethodType {
	switch s {
	case "discord":
		return claim.AuthMethodDiscord
	case "stytch-otp":
		return claim.AuthMethodStytchOTP
	default:
		return claim.AuthMethodGoogle
	}
}
