package sessionsigs

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/lit-coordinator/capability"
	"github.com/sage-x-project/lit-coordinator/persistence"
	"github.com/sage-x-project/lit-coordinator/sessionkey"
	"github.com/sage-x-project/lit-coordinator/walletsig"
)

type fixedChainHead struct{ hash string }

func (f fixedChainHead) LatestBlockhash(ctx context.Context) (string, error) {
	return f.hash, nil
}

// signedCallback builds an AuthNeededCallback that produces a
// real EIP-191-signed SIWE message, valid for NeedToResign's checks.
func signedCallback(t *testing.T) walletsig.AuthNeededCallback {
	t.Helper()
	priv, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	addr := ethcrypto.PubkeyToAddress(priv.PublicKey).Hex()

	return func(ctx context.Context, params walletsig.AuthCallbackParams) (*walletsig.AuthSig, error) {
		resourceURI, err := params.Capability.EncodeAsSiweResource()
		if err != nil {
			return nil, err
		}

		msg := walletsig.BuildMessage(walletsig.MessageParams{
			Domain:    "example.com",
			Address:   addr,
			URI:       params.SessionKeyUri,
			Statement: params.Capability.Statement(),
			ChainID:   "1",
			Nonce:     params.Nonce,
			IssuedAt:  time.Now(),
			Resources: []string{resourceURI},
		})

		hash := ethcrypto.Keccak256Hash([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)))
		sig, err := ethcrypto.Sign(hash.Bytes(), priv)
		if err != nil {
			return nil, err
		}

		return &walletsig.AuthSig{
			Sig:           hex.EncodeToString(sig),
			DerivedVia:    "web3.eth.personal.sign",
			SignedMessage: msg,
			Address:       addr,
		}, nil
	}
}

func TestGetSessionSigsProducesOneEntryPerNode(t *testing.T) {
	keyStore := sessionkey.NewStore(persistence.NewMemoryAdapter(), nil)
	acquirer := walletsig.NewAcquirer(persistence.NewMemoryAdapter(), signedCallback(t), nil)

	orch := New(keyStore, acquirer, fixedChainHead{hash: "0xaaaa"}, []string{"http://node1", "http://node2"}, nil)

	sigs, err := orch.GetSessionSigs(context.Background(), Params{
		ResourceAbilityRequests: []capability.ResourceAbilityRequest{
			{Resource: capability.Resource{Kind: capability.ResourcePKP, ID: "*"}, Ability: capability.PKPSigning},
		},
		Chain: "ethereum",
	})
	require.NoError(t, err)
	assert.Len(t, sigs, 2)

	for url, sig := range sigs {
		assert.Equal(t, "litSessionSignViaNacl", sig.DerivedVia)
		assert.Equal(t, "ed25519", sig.Algo)
		assert.NotEmpty(t, sig.Sig)
		assert.Contains(t, sig.SignedMessage, url)
	}
}

func TestGetSessionSigsFailsWithoutChainHead(t *testing.T) {
	keyStore := sessionkey.NewStore(persistence.NewMemoryAdapter(), nil)
	acquirer := walletsig.NewAcquirer(persistence.NewMemoryAdapter(), nil, nil)

	orch := New(keyStore, acquirer, nil, []string{"http://node1"}, nil)

	_, err := orch.GetSessionSigs(context.Background(), Params{Chain: "ethereum"})
	assert.Error(t, err)
}

func TestGetSessionSigsFailsWhenWalletCallbackMissing(t *testing.T) {
	keyStore := sessionkey.NewStore(persistence.NewMemoryAdapter(), nil)
	acquirer := walletsig.NewAcquirer(persistence.NewMemoryAdapter(), nil, nil)

	orch := New(keyStore, acquirer, fixedChainHead{hash: "0xaaaa"}, []string{"http://node1"}, nil)

	_, err := orch.GetSessionSigs(context.Background(), Params{Chain: "ethereum"})
	assert.Error(t, err)
}
