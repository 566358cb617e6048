// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package config loads the coordinator's static configuration: the
// connected node set, chain-head RPC, and the ambient logging/metrics/
// health blocks.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the coordinator's top-level configuration.
type Config struct {
	Environment string         `yaml:"environment" json:"environment"`
	Nodes       *NodesConfig   `yaml:"nodes" json:"nodes"`
	Chain       *ChainConfig   `yaml:"chain" json:"chain"`
	Logging     *LoggingConfig `yaml:"logging" json:"logging"`
	Metrics     *MetricsConfig `yaml:"metrics" json:"metrics"`
	Health      *HealthConfig  `yaml:"health" json:"health"`
}

// NodesConfig describes the connected node set (spec.md §4.A/B) and the
// quorum/timeout policy dispatcher and sessionsigs apply to it.
type NodesConfig struct {
	URLs           []string      `yaml:"urls" json:"urls"`
	MinNodeCount   int           `yaml:"min_node_count" json:"min_node_count"`
	RetryTolerance int           `yaml:"retry_tolerance" json:"retry_tolerance"`
	PerNodeTimeout time.Duration `yaml:"per_node_timeout" json:"per_node_timeout"`
}

// ChainConfig points chainhead at the network used to source the
// blockhash/nonce handshake parameter (spec.md §4.B step 2).
type ChainConfig struct {
	RPC            string        `yaml:"rpc" json:"rpc"`
	ChainID        uint64        `yaml:"chain_id" json:"chain_id"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

// MetricsConfig represents metrics-endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    int    `yaml:"port" json:"port"`
	Path    string `yaml:"path" json:"path"`
}

// HealthConfig represents health-check-endpoint configuration.
type HealthConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    int    `yaml:"port" json:"port"`
	Path    string `yaml:"path" json:"path"`
}

// LoadFromFile loads configuration from a file, trying YAML then JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)

	return cfg, nil
}

// SaveToFile saves configuration to a file, choosing format by extension.
func SaveToFile(cfg *Config, path string) error {
	var data []byte
	var err error

	if len(path) > 5 && path[len(path)-5:] == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setDefaults fills unset fields with the coordinator's defaults.
func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.Nodes != nil {
		if cfg.Nodes.MinNodeCount == 0 {
			cfg.Nodes.MinNodeCount = len(cfg.Nodes.URLs)
		}
		if cfg.Nodes.PerNodeTimeout == 0 {
			cfg.Nodes.PerNodeTimeout = 30 * time.Second
		}
	}

	if cfg.Chain != nil {
		if cfg.Chain.MaxRetries == 0 {
			cfg.Chain.MaxRetries = 3
		}
		if cfg.Chain.RetryDelay == 0 {
			cfg.Chain.RetryDelay = 1 * time.Second
		}
		if cfg.Chain.RequestTimeout == 0 {
			cfg.Chain.RequestTimeout = 30 * time.Second
		}
	}

	if cfg.Logging != nil {
		if cfg.Logging.Level == "" {
			cfg.Logging.Level = "info"
		}
		if cfg.Logging.Format == "" {
			cfg.Logging.Format = "json"
		}
		if cfg.Logging.Output == "" {
			cfg.Logging.Output = "stdout"
		}
	}

	if cfg.Metrics != nil && cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Health != nil && cfg.Health.Path == "" {
		cfg.Health.Path = "/health"
	}
}

// Validate rejects a configuration dispatcher/sessionsigs/chainhead could
// not act on.
func (c *Config) Validate() error {
	if c.Nodes == nil || len(c.Nodes.URLs) == 0 {
		return fmt.Errorf("config: nodes.urls must list at least one node")
	}
	if c.Nodes.MinNodeCount > len(c.Nodes.URLs) {
		return fmt.Errorf("config: nodes.min_node_count (%d) exceeds node count (%d)", c.Nodes.MinNodeCount, len(c.Nodes.URLs))
	}
	return nil
}
