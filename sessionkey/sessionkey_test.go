package sessionkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/lit-coordinator/persistence"
)

func TestGenerateProducesValidKeyPair(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)
	assert.True(t, IsSessionKeyPair(kp))
	assert.Equal(t, "lit:session:"+kp.PublicKey, kp.Uri())
}

func TestSignAndVerifyDetached(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	msg := []byte("session signing template")
	sig, err := SignDetached(kp.SecretKey, msg)
	require.NoError(t, err)
	assert.Len(t, sig, sigSize)

	assert.True(t, VerifyDetached(kp.PublicKey, msg, sig))
	assert.False(t, VerifyDetached(kp.PublicKey, []byte("tampered"), sig))
}

func TestStoreGeneratesAndPersistsOnMiss(t *testing.T) {
	adapter := persistence.NewMemoryAdapter()
	store := NewStore(adapter, nil)

	kp1, err := store.GetSessionKey()
	require.NoError(t, err)

	kp2, err := store.GetSessionKey()
	require.NoError(t, err)

	assert.Equal(t, kp1, kp2, "second call must reuse the persisted key")
}

func TestStoreRotateReplacesKey(t *testing.T) {
	adapter := persistence.NewMemoryAdapter()
	store := NewStore(adapter, nil)

	kp1, err := store.GetSessionKey()
	require.NoError(t, err)

	kp2, err := store.Rotate()
	require.NoError(t, err)
	assert.NotEqual(t, kp1.PublicKey, kp2.PublicKey)

	kp3, err := store.GetSessionKey()
	require.NoError(t, err)
	assert.Equal(t, kp2, kp3)
}
