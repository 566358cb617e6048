// SPDX-License-Identifier: LGPL-3.0-or-later

package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/lit-coordinator/dispatcher"
	"github.com/sage-x-project/lit-coordinator/literr"
)

func TestCallPostsToPathAndDecodesResponse(t *testing.T) {
	var gotPath, gotRequestID string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-Id")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": true})
	}))
	defer srv.Close()

	tr := New("/web/pkp/sign")
	result, err := tr.Call(context.Background(), srv.URL, "req-1", map[string]interface{}{"toSign": "abc"})
	require.NoError(t, err)

	assert.Equal(t, "/web/pkp/sign", gotPath)
	assert.Equal(t, "req-1", gotRequestID)
	assert.Equal(t, "abc", gotBody["toSign"])
	assert.Equal(t, map[string]interface{}{"ok": true}, result)
}

func TestCallSurfacesNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("node unavailable"))
	}))
	defer srv.Close()

	tr := New("/web/pkp/sign")
	_, err := tr.Call(context.Background(), srv.URL, "", map[string]interface{}{})
	assert.True(t, literr.Of(err, literr.UnknownError))
}

func TestTransportSatisfiesNodeCaller(t *testing.T) {
	tr := New("/web/pkp/sign")
	var _ dispatcher.NodeCaller = tr.Call
}
