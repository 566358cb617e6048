// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/lit-coordinator/capability"
	"github.com/sage-x-project/lit-coordinator/pkpsign"
)

var (
	pkpSignToSignHex string
	pkpSignPubKey    string
)

var pkpSignCmd = &cobra.Command{
	Use:   "pkp-sign",
	Short: "Threshold-sign a digest under a PKP",
	RunE:  runPkpSign,
}

func init() {
	rootCmd.AddCommand(pkpSignCmd)
	addWiringFlags(pkpSignCmd)
	pkpSignCmd.Flags().StringVar(&pkpSignToSignHex, "to-sign", "", "hex-encoded digest to sign (required)")
	pkpSignCmd.Flags().StringVar(&pkpSignPubKey, "pub-key", "", "hex-encoded PKP public key (required)")
	pkpSignCmd.MarkFlagRequired("to-sign")
	pkpSignCmd.MarkFlagRequired("pub-key")
}

func runPkpSign(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c, err := connectedClient(ctx)
	if err != nil {
		return err
	}

	toSign, err := hex.DecodeString(trimHex(pkpSignToSignHex))
	if err != nil {
		return fmt.Errorf("litctl: parse --to-sign: %w", err)
	}

	sigs, err := acquireSessionSigs(ctx, c, capability.ResourcePKP, capability.PKPSigning)
	if err != nil {
		return err
	}

	sig, err := c.PkpSign(ctx, pkpsign.Params{
		ToSign:      toSign,
		PubKey:      pkpSignPubKey,
		SessionSigs: sigs,
	})
	if err != nil {
		return fmt.Errorf("litctl: pkp sign: %w", err)
	}

	out, err := json.MarshalIndent(sig, "", "  ")
	if err != nil {
		return fmt.Errorf("litctl: encode signature: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
