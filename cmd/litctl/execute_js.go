// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/lit-coordinator/action"
	"github.com/sage-x-project/lit-coordinator/capability"
	"github.com/sage-x-project/lit-coordinator/client"
	"github.com/sage-x-project/lit-coordinator/sessionsigs"
)

var (
	executeJsCodeFile string
	executeJsIpfsID   string
	executeJsParams   string
)

var executeJsCmd = &cobra.Command{
	Use:   "execute-js",
	Short: "Execute a Lit Action across the connected node set",
	RunE:  runExecuteJs,
}

func init() {
	rootCmd.AddCommand(executeJsCmd)
	addWiringFlags(executeJsCmd)
	executeJsCmd.Flags().StringVar(&executeJsCodeFile, "code-file", "", "path to the JavaScript source to execute")
	executeJsCmd.Flags().StringVar(&executeJsIpfsID, "ipfs-id", "", "IPFS CID of the action, used instead of --code-file")
	executeJsCmd.Flags().StringVar(&executeJsParams, "js-params", "{}", "JSON object passed to the action as jsParams")
}

func runExecuteJs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c, err := connectedClient(ctx)
	if err != nil {
		return err
	}

	var code string
	if executeJsCodeFile != "" {
		data, err := os.ReadFile(executeJsCodeFile)
		if err != nil {
			return fmt.Errorf("litctl: read code file: %w", err)
		}
		code = string(data)
	}

	var jsParams interface{}
	if err := json.Unmarshal([]byte(executeJsParams), &jsParams); err != nil {
		return fmt.Errorf("litctl: parse --js-params: %w", err)
	}

	sigs, err := acquireSessionSigs(ctx, c, capability.ResourceAction, capability.LitActionExecution)
	if err != nil {
		return err
	}

	result, err := c.ExecuteJs(ctx, action.Params{
		Code:        code,
		IpfsID:      executeJsIpfsID,
		JsParams:    jsParams,
		SessionSigs: sigs,
	})
	if err != nil {
		return fmt.Errorf("litctl: execute js: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("litctl: encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
