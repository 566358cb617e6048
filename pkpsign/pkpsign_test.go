package pkpsign

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/lit-coordinator/sessionsigs"
	"github.com/sage-x-project/lit-coordinator/walletsig"
)

func TestPkpSignRequiresAuth(t *testing.T) {
	call := func(ctx context.Context, url, requestID string, body interface{}) (interface{}, error) {
		return map[string]interface{}{"r": "11", "s": "22", "v": 27, "dataSigned": "digest"}, nil
	}
	s := New([]string{"http://a"}, call)

	_, err := s.PkpSign(context.Background(), Params{ToSign: []byte("hello"), PubKey: "abcd"})
	assert.Error(t, err)
}

func TestPkpSignCombinesAgreeingShares(t *testing.T) {
	urls := []string{"http://a", "http://b", "http://c"}
	call := func(ctx context.Context, url, requestID string, body interface{}) (interface{}, error) {
		return map[string]interface{}{
			"r":          "1111111111111111111111111111111111111111111111111111111111111111",
			"s":          "2222222222222222222222222222222222222222222222222222222222222222",
			"v":          27,
			"dataSigned": "digest",
		}, nil
	}
	sigs := sessionsigs.SessionSigsMap{}
	for _, u := range urls {
		sigs[u] = &walletsig.AuthSig{Address: "0xabc", DerivedVia: "litSessionSignViaNacl", Sig: "deadbeef", SignedMessage: "m"}
	}

	s := New(urls, call)
	sig, err := s.PkpSign(context.Background(), Params{
		ToSign:      []byte("hello"),
		PubKey:      "0xABCDEF",
		SessionSigs: sigs,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sig.R)
	assert.NotEmpty(t, sig.S)
}

func TestPkpSignRejectsEmptyToSign(t *testing.T) {
	call := func(ctx context.Context, url, requestID string, body interface{}) (interface{}, error) {
		return map[string]interface{}{}, nil
	}
	sigs := sessionsigs.SessionSigsMap{"http://a": &walletsig.AuthSig{Address: "0xabc", DerivedVia: "x", Sig: "y", SignedMessage: "m"}}

	s := New([]string{"http://a"}, call)
	_, err := s.PkpSign(context.Background(), Params{PubKey: "abcd", SessionSigs: sigs})
	assert.Error(t, err)
}
