// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/lit-coordinator/encryption"
)

var (
	encryptDataFile       string
	encryptConditionsFile string
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "IBE-encrypt data under an access-control condition",
	RunE:  runEncrypt,
}

func init() {
	rootCmd.AddCommand(encryptCmd)
	addWiringFlags(encryptCmd)
	encryptCmd.Flags().StringVar(&encryptDataFile, "data-file", "", "path to the plaintext file to encrypt (required)")
	encryptCmd.Flags().StringVar(&encryptConditionsFile, "conditions-file", "", "path to the canonical-JSON access-control conditions (required)")
	encryptCmd.MarkFlagRequired("data-file")
	encryptCmd.MarkFlagRequired("conditions-file")
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c, err := connectedClient(ctx)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(encryptDataFile)
	if err != nil {
		return fmt.Errorf("litctl: read data file: %w", err)
	}
	conditions, err := os.ReadFile(encryptConditionsFile)
	if err != nil {
		return fmt.Errorf("litctl: read conditions file: %w", err)
	}

	result, err := c.Encrypt(encryption.EncryptParams{
		DataToEncrypt: data,
		Conditions:    conditions,
	})
	if err != nil {
		return fmt.Errorf("litctl: encrypt: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("litctl: encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
