// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/lit-coordinator/capability"
	"github.com/sage-x-project/lit-coordinator/sessionsigs"
)

var (
	sessionSigsResourceKind string
	sessionSigsResourceID   string
	sessionSigsAbility      string
	sessionSigsDomain       string
	sessionSigsChain        string
)

var sessionSigsCmd = &cobra.Command{
	Use:   "session-sigs",
	Short: "Acquire session signatures for one resource/ability grant",
	RunE:  runSessionSigs,
}

func init() {
	rootCmd.AddCommand(sessionSigsCmd)
	addWiringFlags(sessionSigsCmd)
	sessionSigsCmd.Flags().StringVar(&sessionSigsResourceKind, "resource-kind", string(capability.ResourcePKP), "resource kind (pkp, lit-action, access-control-condition, *)")
	sessionSigsCmd.Flags().StringVar(&sessionSigsResourceID, "resource-id", "*", "resource id, or * for a wildcard grant")
	sessionSigsCmd.Flags().StringVar(&sessionSigsAbility, "ability", string(capability.PKPSigning), "ability requested for the resource")
	sessionSigsCmd.Flags().StringVar(&sessionSigsDomain, "domain", "litctl.local", "SIWE domain")
	sessionSigsCmd.Flags().StringVar(&sessionSigsChain, "chain", "1", "SIWE chain id")
}

func runSessionSigs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c, err := connectedClient(ctx)
	if err != nil {
		return err
	}

	sigs, err := c.GetSessionSigs(ctx, sessionsigs.Params{
		ResourceAbilityRequests: []capability.ResourceAbilityRequest{{
			Resource: capability.Resource{Kind: capability.ResourceKind(sessionSigsResourceKind), ID: sessionSigsResourceID},
			Ability:  capability.Ability(sessionSigsAbility),
		}},
		Domain: sessionSigsDomain,
		Chain:  sessionSigsChain,
	})
	if err != nil {
		return fmt.Errorf("litctl: get session sigs: %w", err)
	}

	out, err := json.MarshalIndent(sigs, "", "  ")
	if err != nil {
		return fmt.Errorf("litctl: encode session sigs: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
