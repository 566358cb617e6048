// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Run the node handshake and print the established node set",
	Long: `connect dispatches the handshake request to every configured node,
establishes the subnetPubKey, networkPubKeySet, epoch number and chain
head snapshot, and prints the resulting node set as JSON.`,
	RunE: runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
	addWiringFlags(connectCmd)
}

// addWiringFlags registers the chain-head/persistence flags every
// command that calls connectedClient needs.
func addWiringFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&chainType, "chain-type", "ethereum", "chain head source type (ethereum, solana)")
	cmd.Flags().StringVar(&pgHost, "postgres-host", "", "PostgreSQL host for the persistence adapter (default: in-memory)")
	cmd.Flags().IntVar(&pgPort, "postgres-port", 5432, "PostgreSQL port")
	cmd.Flags().StringVar(&pgUser, "postgres-user", "", "PostgreSQL user")
	cmd.Flags().StringVar(&pgPassword, "postgres-password", "", "PostgreSQL password")
	cmd.Flags().StringVar(&pgDatabase, "postgres-database", "", "PostgreSQL database")
}

func runConnect(cmd *cobra.Command, args []string) error {
	c, err := connectedClient(context.Background())
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(c.NodeSet(), "", "  ")
	if err != nil {
		return fmt.Errorf("litctl: encode node set: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
