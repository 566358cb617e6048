// SPDX-License-Identifier: LGPL-3.0-or-later

// Package action implements the action executor (spec.md §4.G):
// running a Lit Action across the node set, picking the majority
// response, and combining any signed/claim data shares it carries.
package action

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sort"

	"github.com/sage-x-project/lit-coordinator/combine"
	"github.com/sage-x-project/lit-coordinator/dispatcher"
	"github.com/sage-x-project/lit-coordinator/literr"
	"github.com/sage-x-project/lit-coordinator/sessionsigs"
	"github.com/sage-x-project/lit-coordinator/targeted"
)

// SharePayload is one named signature (or claim) share contributed by a
// single node, per spec.md §3 "NodeShare" narrowed to one named entry.
type SharePayload struct {
	SignatureShare string `json:"signatureShare,omitempty"`
	ShareIndex     int    `json:"shareIndex"`
	CurveType      string `json:"curveType"`
	DataSigned     string `json:"dataSigned"`
	R              string `json:"r,omitempty"`
	S              string `json:"s,omitempty"`
	V              byte   `json:"v,omitempty"`
	PublicKey      string `json:"publicKey,omitempty"`
}

// NodeShare is a single node's raw response to executeJs, per spec.md §3.
type NodeShare struct {
	Success    bool                    `json:"success"`
	SignedData map[string]SharePayload `json:"signedData,omitempty"`
	ClaimData  map[string]SharePayload `json:"claimData,omitempty"`
	Response   string                  `json:"response,omitempty"`
	Logs       string                  `json:"logs,omitempty"`
}

// Strategy resolves a tie among response strings equally common across
// the quorum — spec.md §4.G step 3. Mode "leastCommon" is the default:
// despite the name, the tie-break is lexicographic-least among the
// plurality winners (see combine.Majority); "mostCommon" picks the
// lexicographic-greatest; "custom" defers to Custom.
type Strategy struct {
	Mode   string // "leastCommon" (default), "mostCommon", "custom"
	Custom func(tied []string) string
}

func (s Strategy) resolve(tied []string) string {
	if len(tied) == 0 {
		return ""
	}
	switch s.Mode {
	case "mostCommon":
		return tied[len(tied)-1]
	case "custom":
		if s.Custom != nil {
			return s.Custom(tied)
		}
		return tied[0]
	default: // "leastCommon", and zero-value Strategy
		return tied[0]
	}
}

// Params are the inputs to ExecuteJs — spec.md §4.G.
type Params struct {
	Code            string // raw source; base64-encoded before send
	IpfsID          string
	JsParams        interface{}
	SessionSigs     sessionsigs.SessionSigsMap
	ResponseStrategy Strategy
	MinNodeCount    int
	// TargetNodeRange, when > 0, selects exactly that many nodes
	// deterministically instead of fanning out to every node — spec.md §4.K.
	TargetNodeRange int
}

// Result is executeJs's return value — spec.md §4.G.
type Result struct {
	Response    interface{}
	Logs        string
	Signatures  map[string]*combine.Signature
	BLSSigs     map[string][]byte
	Claims      map[string]*combine.Signature
	RequestID   string
}

// Executor runs Lit Actions across the node set, per spec.md §4.G.
type Executor struct {
	dispatcher *dispatcher.Dispatcher
	call       dispatcher.NodeCaller
}

// New builds an Executor. call performs the actual per-node HTTP POST to
// `/web/execute` (spec.md §6); the executor only shapes the body and
// interprets the response.
func New(d *dispatcher.Dispatcher, call dispatcher.NodeCaller) *Executor {
	return &Executor{dispatcher: d, call: call}
}

// ExecuteJs implements spec.md §4.G steps 1-6.
func (e *Executor) ExecuteJs(ctx context.Context, p Params) (*Result, error) {
	if (p.Code == "") == (p.IpfsID == "") {
		return nil, literr.New(literr.InvalidParamType, "action: exactly one of code or ipfsId is required")
	}
	if len(p.SessionSigs) == 0 {
		return nil, literr.ErrWalletSignatureNotFound
	}

	jsParamsCanonical, err := canonicalize(p.JsParams)
	if err != nil {
		return nil, literr.Wrap(literr.InvalidParamType, err, "action: jsParams not JSON-serialisable")
	}

	urls := e.dispatcher.NodeURLs()
	if p.TargetNodeRange > 0 {
		urls, err = targeted.SelectNodes(urls, p.IpfsID, p.TargetNodeRange)
		if err != nil {
			return nil, err
		}
	}

	build := func(url string) (interface{}, error) {
		sig, ok := p.SessionSigs[url]
		if !ok {
			return nil, literr.ErrWalletSignatureNotFound
		}
		body := map[string]interface{}{
			"jsParams": jsParamsCanonical,
			"authSig":  sig,
		}
		if p.Code != "" {
			body["code"] = base64.StdEncoding.EncodeToString([]byte(p.Code))
		} else {
			body["ipfsId"] = p.IpfsID
		}
		return body, nil
	}

	result, err := e.dispatcher.Dispatch(ctx, urls, build, e.call)
	if err != nil {
		return nil, err
	}

	shares := make([]NodeShare, 0, len(result.Values))
	for _, v := range result.Values {
		ns, err := toNodeShare(v)
		if err != nil {
			continue
		}
		shares = append(shares, ns)
	}

	responses := make([]string, 0, len(shares))
	for _, s := range shares {
		responses = append(responses, s.Response)
	}
	response, ok := Majority(responses, p.ResponseStrategy)
	if !ok {
		return nil, literr.New(literr.UnknownError, "action: no response to aggregate")
	}

	logsList := make([]string, 0, len(shares))
	for _, s := range shares {
		logsList = append(logsList, s.Logs)
	}
	logs, _ := combine.Majority(logsList)

	out := &Result{
		Response:  parseJSONOrString(response),
		Logs:      logs,
		RequestID: result.RequestID,
	}

	minNodeCount := p.MinNodeCount
	if minNodeCount <= 0 {
		minNodeCount = len(urls)
	}

	signedKeys := namedKeys(shares, func(ns NodeShare) map[string]SharePayload { return ns.SignedData })
	for _, key := range signedKeys {
		if err := combineNamed(shares, key, func(ns NodeShare) map[string]SharePayload { return ns.SignedData }, minNodeCount, out); err != nil {
			return nil, err
		}
	}

	claimKeys := namedKeys(shares, func(ns NodeShare) map[string]SharePayload { return ns.ClaimData })
	for _, key := range claimKeys {
		if err := combineClaimNamed(shares, key, minNodeCount, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Majority applies combine.Tally then, on a tie, the caller's Strategy —
// spec.md §4.G step 3.
func Majority(xs []string, strategy Strategy) (string, bool) {
	winners, _ := combine.Tally(xs)
	if len(winners) == 0 {
		return "", false
	}
	if len(winners) == 1 {
		return winners[0], true
	}
	return strategy.resolve(winners), true
}

func namedKeys(shares []NodeShare, pick func(NodeShare) map[string]SharePayload) []string {
	seen := make(map[string]struct{})
	for _, s := range shares {
		for k := range pick(s) {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func combineNamed(shares []NodeShare, key string, pick func(NodeShare) map[string]SharePayload, minNodeCount int, out *Result) error {
	var curve string
	for _, s := range shares {
		if p, ok := pick(s)[key]; ok {
			curve = p.CurveType
			break
		}
	}

	switch curve {
	case "ECDSA":
		ecdsaShares := make([]combine.ECDSAShare, 0, len(shares))
		for _, s := range shares {
			if p, ok := pick(s)[key]; ok {
				ecdsaShares = append(ecdsaShares, combine.ECDSAShare{R: p.R, S: p.S, V: p.V, DataSigned: p.DataSigned, ShareIndex: p.ShareIndex})
			}
		}
		sig, err := combine.CombineECDSA(ecdsaShares, minNodeCount)
		if err != nil {
			return err
		}
		if out.Signatures == nil {
			out.Signatures = make(map[string]*combine.Signature)
		}
		out.Signatures[key] = sig
	default: // "BLS"
		blsShares := make([]combine.BLSShare, 0, len(shares))
		for _, s := range shares {
			if p, ok := pick(s)[key]; ok {
				blsShares = append(blsShares, combine.BLSShare{SignatureShare: p.SignatureShare, ShareIndex: p.ShareIndex, CurveType: "BLS", DataSigned: p.DataSigned})
			}
		}
		sig, err := combine.CombineBLS(blsShares, minNodeCount)
		if err != nil {
			return err
		}
		if out.BLSSigs == nil {
			out.BLSSigs = make(map[string][]byte)
		}
		out.BLSSigs[key] = sig
	}
	return nil
}

func combineClaimNamed(shares []NodeShare, key string, minNodeCount int, out *Result) error {
	ecdsaShares := make([]combine.ECDSAShare, 0, len(shares))
	for _, s := range shares {
		if p, ok := s.ClaimData[key]; ok {
			ecdsaShares = append(ecdsaShares, combine.ECDSAShare{R: p.R, S: p.S, V: p.V, DataSigned: p.DataSigned, ShareIndex: p.ShareIndex})
		}
	}
	sig, err := combine.CombineECDSA(ecdsaShares, minNodeCount)
	if err != nil {
		return err
	}
	if out.Claims == nil {
		out.Claims = make(map[string]*combine.Signature)
	}
	out.Claims[key] = sig
	return nil
}

func canonicalize(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return json.RawMessage("null"), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func parseJSONOrString(s string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

func toNodeShare(v interface{}) (NodeShare, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return NodeShare{}, err
	}
	var ns NodeShare
	if err := json.Unmarshal(data, &ns); err != nil {
		return NodeShare{}, err
	}
	return ns, nil
}
