// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/lit-coordinator/internal/metrics"
)

var serveMetricsAddr string

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Serve the Prometheus metrics registry over HTTP until interrupted",
	RunE:  runServeMetrics,
}

func init() {
	rootCmd.AddCommand(serveMetricsCmd)
	serveMetricsCmd.Flags().StringVar(&serveMetricsAddr, "addr", "", "listen address (default: config's metrics.port, on all interfaces)")
}

func runServeMetrics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("litctl: load config: %w", err)
	}

	addr := serveMetricsAddr
	path := "/metrics"
	if addr == "" {
		port := 9090
		if cfg.Metrics != nil && cfg.Metrics.Port != 0 {
			port = cfg.Metrics.Port
		}
		addr = fmt.Sprintf(":%d", port)
	}
	if cfg.Metrics != nil && cfg.Metrics.Path != "" {
		path = cfg.Metrics.Path
	}

	fmt.Fprintf(cmd.OutOrStdout(), "litctl: serving metrics on %s%s\n", addr, path)
	return metrics.StartServer(addr, path)
}
