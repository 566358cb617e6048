package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAdapterGetSetRemove(t *testing.T) {
	a := NewMemoryAdapter()

	_, err := a.Get(SlotSessionKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, a.Set(SlotSessionKey, `{"publicKey":"ab"}`))
	v, err := a.Get(SlotSessionKey)
	require.NoError(t, err)
	assert.Equal(t, `{"publicKey":"ab"}`, v)

	require.NoError(t, a.Remove(SlotSessionKey))
	_, err = a.Get(SlotSessionKey)
	assert.ErrorIs(t, err, ErrNotFound)
}
