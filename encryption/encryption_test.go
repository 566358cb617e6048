package encryption

import (
	"encoding/hex"
	"testing"

	"github.com/cloudflare/circl/ecc/bls12381"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/lit-coordinator/sessionsigs"
	"github.com/sage-x-project/lit-coordinator/walletsig"
)

// networkSetup builds a toy single-key "network" (no real threshold
// split) so the roundtrip through Encrypt/Decrypt can be exercised
// without a multi-node combiner.
type networkSetup struct {
	secret       bls12381.Scalar
	subnetPubKey []byte
}

func newNetworkSetup(t *testing.T) networkSetup {
	t.Helper()
	var s bls12381.Scalar
	require.NoError(t, s.Random(randReaderForTest{}))

	var pub bls12381.G2
	pub.ScalarMult(&s, bls12381.G2Generator())

	return networkSetup{secret: s, subnetPubKey: pub.BytesCompressed()}
}

// randReaderForTest deterministically satisfies io.Reader for test scalars.
type randReaderForTest struct{}

func (randReaderForTest) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(i + 1)
	}
	return len(p), nil
}

func (net networkSetup) signShare(identity string, shareIndex int) DecryptionShare {
	var qid bls12381.G1
	qid.Hash([]byte(identity), []byte(identityHashToG1DST))

	var share bls12381.G1
	share.ScalarMult(&net.secret, &qid)

	return DecryptionShare{
		SignatureShare: hex.EncodeToString(share.BytesCompressed()),
		ShareIndex:     shareIndex,
		DataSigned:     identity,
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	net := newNetworkSetup(t)
	conditions := []byte(`{"chain":"ethereum"}`)
	data := []byte("the secret payload")

	encResult, err := Encrypt(EncryptParams{
		DataToEncrypt: data,
		Conditions:    conditions,
		SubnetPubKey:  net.subnetPubKey,
	})
	require.NoError(t, err)

	identity := IdentityParameter(conditions, data)
	shares := []DecryptionShare{net.signShare(identity, 0)}

	sigs := sessionsigs.SessionSigsMap{"http://a": &walletsig.AuthSig{Address: "0xabc", DerivedVia: "x", Sig: "y", SignedMessage: "m"}}

	plaintext, err := Decrypt(DecryptParams{
		Ciphertext:        encResult.Ciphertext,
		DataToEncryptHash: encResult.DataToEncryptHash,
		Conditions:        conditions,
		SessionSigs:       sigs,
		MinNodeCount:      1,
	}, shares)
	require.NoError(t, err)
	assert.Equal(t, data, plaintext)
}

func TestDecryptRequiresSessionSigs(t *testing.T) {
	_, err := Decrypt(DecryptParams{Ciphertext: &Ciphertext{}}, nil)
	assert.Error(t, err)
}

func TestIdentityParameterFormat(t *testing.T) {
	id := IdentityParameter([]byte("conditions"), []byte("data"))
	assert.Regexp(t, `^lit-accesscontrolcondition://[0-9a-f]{64}/[0-9a-f]{64}$`, id)
}
