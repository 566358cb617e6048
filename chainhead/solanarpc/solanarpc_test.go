// SPDX-License-Identifier: LGPL-3.0-or-later

package solanarpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/lit-coordinator/config"
)

func TestNewRequiresRPC(t *testing.T) {
	_, err := New(&config.ChainConfig{})
	assert.Error(t, err)
}

func TestNewBuildsSource(t *testing.T) {
	s, err := New(&config.ChainConfig{RPC: "https://api.mainnet-beta.solana.com"})
	require.NoError(t, err)
	assert.NotNil(t, s.client)
}

func TestRetryWithBackoffSucceedsEventually(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
