// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/lit-coordinator/capability"
	"github.com/sage-x-project/lit-coordinator/sessionsigs"
)

var (
	litActionSessionSigsCodeFile string
	litActionSessionSigsIpfsID   string
	litActionSessionSigsParams   string
	litActionSessionSigsDomain   string
	litActionSessionSigsChain    string
)

var litActionSessionSigsCmd = &cobra.Command{
	Use:   "lit-action-session-sigs",
	Short: "Acquire session signatures rooted in a Lit Action, via the network's own sign_session_key endpoint",
	RunE:  runLitActionSessionSigs,
}

func init() {
	rootCmd.AddCommand(litActionSessionSigsCmd)
	addWiringFlags(litActionSessionSigsCmd)
	litActionSessionSigsCmd.Flags().StringVar(&litActionSessionSigsCodeFile, "code-file", "", "path to the Lit Action JS source (mutually exclusive with --ipfs-id)")
	litActionSessionSigsCmd.Flags().StringVar(&litActionSessionSigsIpfsID, "ipfs-id", "", "IPFS id of the Lit Action (mutually exclusive with --code-file)")
	litActionSessionSigsCmd.Flags().StringVar(&litActionSessionSigsParams, "js-params", "{}", "JSON object passed to the Lit Action as jsParams")
	litActionSessionSigsCmd.Flags().StringVar(&litActionSessionSigsDomain, "domain", "litctl.local", "SIWE domain")
	litActionSessionSigsCmd.Flags().StringVar(&litActionSessionSigsChain, "chain", "1", "SIWE chain id")
}

func runLitActionSessionSigs(cmd *cobra.Command, args []string) error {
	if (litActionSessionSigsCodeFile == "") == (litActionSessionSigsIpfsID == "") {
		return fmt.Errorf("litctl: exactly one of --code-file or --ipfs-id is required")
	}

	var code string
	if litActionSessionSigsCodeFile != "" {
		data, err := os.ReadFile(litActionSessionSigsCodeFile)
		if err != nil {
			return fmt.Errorf("litctl: read code file: %w", err)
		}
		code = string(data)
	}

	var jsParams interface{}
	if err := json.Unmarshal([]byte(litActionSessionSigsParams), &jsParams); err != nil {
		return fmt.Errorf("litctl: parse js-params: %w", err)
	}

	ctx := context.Background()
	c, err := connectedClient(ctx)
	if err != nil {
		return err
	}

	sigs, err := c.GetLitActionSessionSigs(ctx, sessionsigs.Params{
		ResourceAbilityRequests: []capability.ResourceAbilityRequest{{
			Resource: capability.Resource{Kind: capability.ResourceAction, ID: "*"},
			Ability:  capability.LitActionExecution,
		}},
		Domain:          litActionSessionSigsDomain,
		Chain:           litActionSessionSigsChain,
		LitActionCode:   code,
		LitActionIpfsID: litActionSessionSigsIpfsID,
		JsParams:        jsParams,
	})
	if err != nil {
		return fmt.Errorf("litctl: get lit action session sigs: %w", err)
	}

	out, err := json.MarshalIndent(sigs, "", "  ")
	if err != nil {
		return fmt.Errorf("litctl: encode session sigs: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
