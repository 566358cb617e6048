// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/lit-coordinator/claim"
)

var (
	claimAuthMethodType int
	claimAccessToken    string
	claimNetwork        string
)

var claimKeyIDCmd = &cobra.Command{
	Use:   "claim-key-id",
	Short: "Claim a derived PKP key ID from an auth method proof",
	RunE:  runClaimKeyID,
}

func init() {
	rootCmd.AddCommand(claimKeyIDCmd)
	addWiringFlags(claimKeyIDCmd)
	claimKeyIDCmd.Flags().IntVar(&claimAuthMethodType, "auth-method-type", int(claim.AuthMethodGoogle), "auth method type (1=Google, 2=Discord, 3=StytchOTP)")
	claimKeyIDCmd.Flags().StringVar(&claimAccessToken, "access-token", "", "auth method access token (required)")
	claimKeyIDCmd.Flags().StringVar(&claimNetwork, "network", "", "network identifier passed to the mint callback")
	claimKeyIDCmd.MarkFlagRequired("access-token")
}

func runClaimKeyID(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c, err := connectedClient(ctx)
	if err != nil {
		return err
	}

	result, err := c.ClaimKeyId(ctx, claim.Params{
		AuthMethod: claim.AuthMethod{
			AuthMethodType: claim.AuthMethodType(claimAuthMethodType),
			AccessToken:    claimAccessToken,
		},
		Network: claimNetwork,
	})
	if err != nil {
		return fmt.Errorf("litctl: claim key id: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("litctl: encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
