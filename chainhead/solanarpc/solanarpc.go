// SPDX-License-Identifier: LGPL-3.0-or-later

// Package solanarpc implements sessionsigs.ChainHeadSource against a
// Solana JSON-RPC endpoint, for networks where the session-key
// handshake's nonce parameter is a Solana blockhash.
package solanarpc

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/sage-x-project/lit-coordinator/config"
)

// Source fetches the latest blockhash over a Solana JSON-RPC connection.
type Source struct {
	client *rpc.Client
	cfg    *config.ChainConfig
}

// New builds a Source against cfg.RPC.
func New(cfg *config.ChainConfig) (*Source, error) {
	if cfg == nil || cfg.RPC == "" {
		return nil, fmt.Errorf("solanarpc: chain.rpc is required")
	}
	return &Source{client: rpc.New(cfg.RPC), cfg: cfg}, nil
}

// LatestBlockhash implements sessionsigs.ChainHeadSource.
func (s *Source) LatestBlockhash(ctx context.Context) (string, error) {
	var hash string
	err := retryWithBackoff(ctx, s.cfg.MaxRetries, s.cfg.RetryDelay, func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()

		result, err := s.client.GetLatestBlockhash(callCtx, rpc.CommitmentFinalized)
		if err != nil {
			return fmt.Errorf("get latest blockhash: %w", err)
		}
		hash = result.Value.Blockhash.String()
		return nil
	})
	return hash, err
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

	return fmt.Errorf("solanarpc: operation failed after %d retries: %w", maxRetries, lastErr)
}
