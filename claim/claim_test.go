package claim

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMasterPubKey(t *testing.T) []byte {
	t.Helper()
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	return priv.PubKey().SerializeCompressed()
}

func fakeSig65() string {
	raw := make([]byte, 65)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	raw[64] = 27
	return hex.EncodeToString(raw)
}

func TestClaimKeyIdRejectsWebAuthn(t *testing.T) {
	call := func(ctx context.Context, url, requestID string, body interface{}) (interface{}, error) {
		return map[string]interface{}{}, nil
	}
	c := New([]string{"http://a"}, call)

	_, err := c.ClaimKeyId(context.Background(), Params{
		AuthMethod: AuthMethod{AuthMethodType: AuthMethodWebAuthn, AccessToken: "tok"},
	})
	assert.Error(t, err)
}

func TestClaimKeyIdRequiresAccessToken(t *testing.T) {
	call := func(ctx context.Context, url, requestID string, body interface{}) (interface{}, error) {
		return map[string]interface{}{}, nil
	}
	c := New([]string{"http://a"}, call)

	_, err := c.ClaimKeyId(context.Background(), Params{
		AuthMethod: AuthMethod{AuthMethodType: AuthMethodGoogle},
	})
	assert.Error(t, err)
}

func TestClaimKeyIdMintsFromNodeSignatures(t *testing.T) {
	master := testMasterPubKey(t)
	sig := fakeSig65()

	call := func(ctx context.Context, url, requestID string, body interface{}) (interface{}, error) {
		return map[string]interface{}{
			"signature":    sig,
			"derivedKeyId": "abcd1234",
		}, nil
	}
	c := New([]string{"http://a", "http://b", "http://c"}, call)

	var mintedReq MintRequest
	mint := func(ctx context.Context, req MintRequest) (string, error) {
		mintedReq = req
		return "0xtxid", nil
	}

	result, err := c.ClaimKeyId(context.Background(), Params{
		AuthMethod:   AuthMethod{AuthMethodType: AuthMethodGoogle, AccessToken: "tok"},
		MintCallback: mint,
		Network:      "lit-coordinator-testnet",
		MasterPubKey: master,
	})
	require.NoError(t, err)
	assert.Equal(t, "0xtxid", result.TxID)
	assert.Len(t, result.Signatures, 3)
	assert.NotEmpty(t, result.PubKey)
	assert.Equal(t, "abcd1234", mintedReq.DerivedKeyID)
	assert.Equal(t, AuthMethodGoogle, mintedReq.AuthMethodType)
}

func TestClaimKeyIdRequiresMintCallback(t *testing.T) {
	master := testMasterPubKey(t)
	sig := fakeSig65()
	call := func(ctx context.Context, url, requestID string, body interface{}) (interface{}, error) {
		return map[string]interface{}{"signature": sig, "derivedKeyId": "abcd1234"}, nil
	}
	c := New([]string{"http://a"}, call)

	_, err := c.ClaimKeyId(context.Background(), Params{
		AuthMethod:   AuthMethod{AuthMethodType: AuthMethodGoogle, AccessToken: "tok"},
		MasterPubKey: master,
	})
	assert.Error(t, err)
}

func TestComputeHDPubKeyIsDeterministic(t *testing.T) {
	master := testMasterPubKey(t)

	pk1, err := computeHDPubKey(master, "deadbeef")
	require.NoError(t, err)
	pk2, err := computeHDPubKey(master, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, pk1, pk2)

	pk3, err := computeHDPubKey(master, "cafebabe")
	require.NoError(t, err)
	assert.NotEqual(t, pk1, pk3)
}
