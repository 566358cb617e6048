package action

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/lit-coordinator/dispatcher"
	"github.com/sage-x-project/lit-coordinator/sessionsigs"
	"github.com/sage-x-project/lit-coordinator/walletsig"
)

func fakeSessionSigs(urls ...string) sessionsigs.SessionSigsMap {
	m := make(sessionsigs.SessionSigsMap, len(urls))
	for _, u := range urls {
		m[u] = &walletsig.AuthSig{Address: "0xabc", DerivedVia: "litSessionSignViaNacl", Sig: "deadbeef", SignedMessage: "msg"}
	}
	return m
}

func TestExecuteJsRejectsBothCodeAndIpfsID(t *testing.T) {
	d := dispatcher.New(dispatcher.Config{NodeURLs: []string{"http://a"}, MinNodeCount: 1})
	call := func(ctx context.Context, url, requestID string, body interface{}) (interface{}, error) {
		return map[string]interface{}{"success": true, "response": "ok"}, nil
	}
	exec := New(d, call)

	_, err := exec.ExecuteJs(context.Background(), Params{
		Code:        "print(1)",
		IpfsID:      "Qm123",
		SessionSigs: fakeSessionSigs("http://a"),
	})
	assert.Error(t, err)
}

func TestExecuteJsAggregatesMajorityResponse(t *testing.T) {
	urls := []string{"http://a", "http://b", "http://c"}
	d := dispatcher.New(dispatcher.Config{NodeURLs: urls, MinNodeCount: 2})
	call := func(ctx context.Context, url, requestID string, body interface{}) (interface{}, error) {
		if url == "http://c" {
			return map[string]interface{}{"success": true, "response": `"different"`}, nil
		}
		return map[string]interface{}{"success": true, "response": `"agreed"`}, nil
	}
	exec := New(d, call)

	result, err := exec.ExecuteJs(context.Background(), Params{
		Code:        "print(1)",
		SessionSigs: fakeSessionSigs(urls...),
	})
	require.NoError(t, err)
	assert.Equal(t, "agreed", result.Response)
	assert.NotEmpty(t, result.RequestID)
}

func TestExecuteJsCombinesECDSASignedData(t *testing.T) {
	urls := []string{"http://a", "http://b"}
	d := dispatcher.New(dispatcher.Config{NodeURLs: urls, MinNodeCount: 2})
	call := func(ctx context.Context, url, requestID string, body interface{}) (interface{}, error) {
		return map[string]interface{}{
			"success":  true,
			"response": `"done"`,
			"signedData": map[string]interface{}{
				"sig1": map[string]interface{}{
					"r":          "1111111111111111111111111111111111111111111111111111111111111111",
					"s":          "2222222222222222222222222222222222222222222222222222222222222222",
					"v":          27,
					"curveType":  "ECDSA",
					"dataSigned": "digest",
				},
			},
		}, nil
	}
	exec := New(d, call)

	result, err := exec.ExecuteJs(context.Background(), Params{
		Code:        "print(1)",
		SessionSigs: fakeSessionSigs(urls...),
	})
	require.NoError(t, err)
	require.Contains(t, result.Signatures, "sig1")
	assert.NotEmpty(t, result.Signatures["sig1"].R)
}

func TestExecuteJsRequiresSessionSigs(t *testing.T) {
	d := dispatcher.New(dispatcher.Config{NodeURLs: []string{"http://a"}, MinNodeCount: 1})
	call := func(ctx context.Context, url, requestID string, body interface{}) (interface{}, error) {
		return map[string]interface{}{"success": true, "response": "ok"}, nil
	}
	exec := New(d, call)

	_, err := exec.ExecuteJs(context.Background(), Params{Code: "print(1)"})
	assert.Error(t, err)
}
