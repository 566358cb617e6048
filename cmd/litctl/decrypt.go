// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/lit-coordinator/capability"
	"github.com/sage-x-project/lit-coordinator/encryption"
)

var (
	decryptCiphertextFile string
	decryptConditionsFile string
	decryptChain          string
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt data under an access-control condition",
	Long: `decrypt reads an EncryptResult previously written by "litctl encrypt"
(as JSON, with Ciphertext.Ephemeral/Sealed base64-encoded), collects the
nodes' BLS decryption shares and opens the sealed payload.`,
	RunE: runDecrypt,
}

func init() {
	rootCmd.AddCommand(decryptCmd)
	addWiringFlags(decryptCmd)
	decryptCmd.Flags().StringVar(&decryptCiphertextFile, "result-file", "", "path to the JSON EncryptResult (required)")
	decryptCmd.Flags().StringVar(&decryptConditionsFile, "conditions-file", "", "path to the canonical-JSON access-control conditions (required)")
	decryptCmd.Flags().StringVar(&decryptChain, "chain", "1", "chain the access-control condition is evaluated against")
	decryptCmd.MarkFlagRequired("result-file")
	decryptCmd.MarkFlagRequired("conditions-file")
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c, err := connectedClient(ctx)
	if err != nil {
		return err
	}

	resultData, err := os.ReadFile(decryptCiphertextFile)
	if err != nil {
		return fmt.Errorf("litctl: read result file: %w", err)
	}
	var result encryption.EncryptResult
	if err := json.Unmarshal(resultData, &result); err != nil {
		return fmt.Errorf("litctl: parse result file: %w", err)
	}

	conditions, err := os.ReadFile(decryptConditionsFile)
	if err != nil {
		return fmt.Errorf("litctl: read conditions file: %w", err)
	}

	sigs, err := acquireSessionSigs(ctx, c, capability.ResourceAccessControlCondition, capability.AccessControlConditionDecryption)
	if err != nil {
		return err
	}

	plaintext, err := c.Decrypt(ctx, encryption.DecryptParams{
		Ciphertext:        result.Ciphertext,
		DataToEncryptHash: result.DataToEncryptHash,
		Conditions:        conditions,
		Chain:             decryptChain,
		SessionSigs:       sigs,
	})
	if err != nil {
		return fmt.Errorf("litctl: decrypt: %w", err)
	}

	fmt.Println(base64.StdEncoding.EncodeToString(plaintext))
	return nil
}
