// SPDX-License-Identifier: LGPL-3.0-or-later

// Package httptransport implements dispatcher.NodeCaller over HTTP/JSON,
// the transport every node endpoint in spec.md speaks (/web/pkp/sign,
// /web/encryption/sign, /web/sign_session_key, etc.).
package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sage-x-project/lit-coordinator/literr"
)

// Transport POSTs a dispatcher request body as JSON to nodeURL+path and
// decodes the JSON response body into a map, the shape dispatcher.Dispatch
// and its callers (pkpsign, claim, sessionsigs, action) expect back.
type Transport struct {
	path       string
	httpClient *http.Client
}

// New builds a Transport that appends path to each node's base URL
// (e.g. "/web/pkp/sign"). The client carries a 30s default timeout,
// matching the teacher's HTTPTransport default.
func New(path string) *Transport {
	return &Transport{
		path: path,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewWithClient builds a Transport with a caller-supplied *http.Client,
// for custom timeouts, TLS config, or test doubles.
func NewWithClient(path string, httpClient *http.Client) *Transport {
	return &Transport{path: path, httpClient: httpClient}
}

// Call implements dispatcher.NodeCaller.
func (t *Transport) Call(ctx context.Context, url string, requestID string, body interface{}) (interface{}, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("httptransport: marshal request: %w", err)
	}

	endpoint := strings.TrimSuffix(url, "/") + t.path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("httptransport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, literr.Wrap(literr.UnknownError, err, fmt.Sprintf("httptransport: request to %s failed", url))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, literr.Wrap(literr.UnknownError, err, "httptransport: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, literr.Newf(literr.UnknownError, "httptransport: %s returned HTTP %d: %s", url, resp.StatusCode, string(respBody))
	}

	var decoded interface{}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, literr.Wrap(literr.UnknownError, err, "httptransport: decode response body")
	}

	return decoded, nil
}
