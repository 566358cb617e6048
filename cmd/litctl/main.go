// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "litctl",
	Short: "litctl - threshold-signing node network CLI",
	Long: `litctl drives a lit-coordinator client against a configured set of
threshold-signing nodes: connecting to establish the node set, requesting
session signatures, executing Lit Actions, PKP-signing, encrypting and
decrypting under access-control conditions, and claiming a derived key ID.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "directory holding the config files config.Load looks up (default: config)")
	rootCmd.PersistentFlags().StringVar(&privateKeyHex, "private-key", "", "hex-encoded secp256k1 private key used to sign SIWE auth messages (without it no wallet callback is configured)")
	// Note: subcommands are registered in their respective files.
}
