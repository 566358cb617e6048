// SPDX-License-Identifier: LGPL-3.0-or-later

// Package ethrpc implements sessionsigs.ChainHeadSource against an
// Ethereum-compatible JSON-RPC endpoint, for networks (e.g. Chronicle
// Yellowstone) where the session-key handshake's nonce parameter is an
// EVM block hash.
package ethrpc

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/sage-x-project/lit-coordinator/config"
)

// Source fetches the latest block hash over an Ethereum JSON-RPC
// connection, retrying transient dial/call failures with the same
// exponential backoff the coordinator's other chain clients use.
type Source struct {
	client *ethclient.Client
	cfg    *config.ChainConfig
}

// New dials rpc and verifies the reported chain id, retrying per cfg.
func New(ctx context.Context, cfg *config.ChainConfig) (*Source, error) {
	if cfg == nil || cfg.RPC == "" {
		return nil, fmt.Errorf("ethrpc: chain.rpc is required")
	}

	var client *ethclient.Client
	err := retryWithBackoff(ctx, cfg.MaxRetries, cfg.RetryDelay, func() error {
		dialCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()

		c, err := ethclient.DialContext(dialCtx, cfg.RPC)
		if err != nil {
			return fmt.Errorf("dial: %w", err)
		}

		if cfg.ChainID != 0 {
			id, err := c.ChainID(dialCtx)
			if err != nil {
				c.Close()
				return fmt.Errorf("fetch chain id: %w", err)
			}
			if id.Uint64() != cfg.ChainID {
				c.Close()
				return fmt.Errorf("chain id mismatch: expected %d, got %s", cfg.ChainID, id)
			}
		}

		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Source{client: client, cfg: cfg}, nil
}

// LatestBlockhash implements sessionsigs.ChainHeadSource.
func (s *Source) LatestBlockhash(ctx context.Context) (string, error) {
	var hash string
	err := retryWithBackoff(ctx, s.cfg.MaxRetries, s.cfg.RetryDelay, func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()

		header, err := s.client.HeaderByNumber(callCtx, nil)
		if err != nil {
			return fmt.Errorf("header by number: %w", err)
		}
		hash = header.Hash().Hex()
		return nil
	})
	return hash, err
}

// Close releases the underlying RPC connection.
func (s *Source) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// retryWithBackoff implements exponential backoff retry logic, bailing
// out early if ctx is cancelled between attempts.
func retryWithBackoff(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	delay := baseDelay
	if delay == 0 {
		delay = time.Second
	}

	for i := 0; i <= maxRetries; i++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if i < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > 30*time.Second {
				delay = 30 * time.Second
			}
		}
	}

	return fmt.Errorf("ethrpc: operation failed after %d retries: %w", maxRetries, lastErr)
}
