// SPDX-License-Identifier: LGPL-3.0-or-later

// Package client implements the coordinator's top-level lifecycle
// (spec.md §4 "State machines"): Unconnected -> Connecting -> Ready.
// Client is the single construction point that wires a persistence
// adapter, node transport, chain-head source, logger and metrics
// registry into every component package, and exposes the public
// operations (GetSessionSigs, ExecuteJs, PkpSign, Encrypt, Decrypt,
// ClaimKeyId) as methods that fail fast with literr.ErrLitNodeClientNotReady
// until Connect has succeeded.
package client

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/sage-x-project/lit-coordinator/action"
	"github.com/sage-x-project/lit-coordinator/claim"
	"github.com/sage-x-project/lit-coordinator/config"
	"github.com/sage-x-project/lit-coordinator/dispatcher"
	"github.com/sage-x-project/lit-coordinator/encryption"
	"github.com/sage-x-project/lit-coordinator/internal/logger"
	"github.com/sage-x-project/lit-coordinator/internal/metrics"
	"github.com/sage-x-project/lit-coordinator/literr"
	"github.com/sage-x-project/lit-coordinator/persistence"
	"github.com/sage-x-project/lit-coordinator/pkpsign"
	"github.com/sage-x-project/lit-coordinator/sessionkey"
	"github.com/sage-x-project/lit-coordinator/sessionsigs"
	"github.com/sage-x-project/lit-coordinator/walletsig"
)

// State is a position in the client's three-state lifecycle.
type State int

const (
	Unconnected State = iota
	Connecting
	Ready
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "Connecting"
	case Ready:
		return "Ready"
	default:
		return "Unconnected"
	}
}

// NodeSet is the connection snapshot Connect establishes, per spec.md
// §4 "Connection establishes subnetPubKey, networkPubKeySet,
// minNodeCount, currentEpochNumber, latestBlockhash, and connectedNodes."
type NodeSet struct {
	SubnetPubKey       []byte
	NetworkPubKeySet   []byte
	MinNodeCount       int
	CurrentEpochNumber int64
	LatestBlockhash    string
	ConnectedNodes     []string
}

// nodeHandshakeResponse is one node's reply to the handshake endpoint
// each node exposes (spec.md §6), the source of the NodeSet fields
// every other component reads via Client.
type nodeHandshakeResponse struct {
	SubnetPubKey     string `json:"subnetPubKey"`
	NetworkPubKeySet string `json:"networkPubKeySet"`
	EpochNumber      int64  `json:"epochNumber"`
}

// Node endpoint paths, per spec.md §6 "Node HTTP surface".
const (
	handshakePath      = "/web/handshake"
	executePath        = "/web/execute"
	pkpSignPath        = "/web/pkp/sign"
	claimPath          = "/web/pkp/claim"
	decryptionSignPath = "/web/encryption/sign"
	signSessionKeyPath = "/web/sign_session_key"
)

// CallerFactory returns the NodeCaller bound to a given node endpoint
// path, e.g. httptransport.New(path).Call.
type CallerFactory func(path string) dispatcher.NodeCaller

// Client owns the lifecycle and every wired component.
type Client struct {
	mu      sync.RWMutex
	state   State
	nodeSet NodeSet

	cfg       *config.Config
	log       logger.Logger
	handshake dispatcher.NodeCaller

	chainHead sessionsigs.ChainHeadSource
	persist   persistence.Adapter

	dispatch    *dispatcher.Dispatcher
	sessionKeys *sessionkey.Store
	wallet      *walletsig.Acquirer
	sessionSigs *sessionsigs.Orchestrator
	executor    *action.Executor
	signer      *pkpsign.Signer
	claimer     *claim.Claimer
	shares      *encryption.ShareFetcher
}

// New wires cfg's node set and every component package together.
// newCaller builds the per-endpoint transport (e.g.
// func(path string) dispatcher.NodeCaller { return httptransport.New(path).Call }),
// since each node operation (handshake, execute, pkp sign, claim) is a
// distinct HTTP path (spec.md §6); authCallback is the default
// wallet-signature callback used when no caller-supplied one is given
// to GetSessionSigs.
func New(cfg *config.Config, persist persistence.Adapter, chainHead sessionsigs.ChainHeadSource, newCaller CallerFactory, authCallback walletsig.AuthNeededCallback, log logger.Logger) *Client {
	if log == nil {
		log = logger.Default()
	}

	nodeURLs := cfg.Nodes.URLs
	d := dispatcher.New(dispatcher.Config{
		NodeURLs:       nodeURLs,
		MinNodeCount:   cfg.Nodes.MinNodeCount,
		RetryTolerance: cfg.Nodes.RetryTolerance,
		PerNodeTimeout: cfg.Nodes.PerNodeTimeout,
		Log:            log,
	})

	keys := sessionkey.NewStore(persist, log)
	wallet := walletsig.NewAcquirer(persist, authCallback, log)

	return &Client{
		state:       Unconnected,
		cfg:         cfg,
		log:         log,
		handshake:   newCaller(handshakePath),
		chainHead:   chainHead,
		persist:     persist,
		dispatch:    d,
		sessionKeys: keys,
		wallet:      wallet,
		sessionSigs: sessionsigs.New(keys, wallet, chainHead, nodeURLs, newCaller(signSessionKeyPath)),
		executor:    action.New(d, newCaller(executePath)),
		signer:      pkpsign.New(nodeURLs, newCaller(pkpSignPath)),
		claimer:     claim.New(nodeURLs, newCaller(claimPath)),
		shares:      encryption.NewShareFetcher(nodeURLs, newCaller(decryptionSignPath)),
	}
}

// State returns the client's current lifecycle state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// NodeSet returns the connection snapshot established by Connect. The
// zero value is returned before the first successful Connect.
func (c *Client) NodeSet() NodeSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodeSet
}

// Connect runs the handshake against every configured node, establishes
// the NodeSet, and transitions Unconnected -> Connecting -> Ready.
// Calling Connect again while Ready re-runs the handshake and refreshes
// the snapshot.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.state = Connecting
	c.mu.Unlock()
	metrics.ClientState.Set(float64(Connecting))

	build := func(url string) (interface{}, error) {
		return map[string]interface{}{}, nil
	}

	result, err := c.dispatch.Dispatch(ctx, c.cfg.Nodes.URLs, build, c.handshake)
	if err != nil {
		c.mu.Lock()
		c.state = Unconnected
		c.mu.Unlock()
		metrics.ClientState.Set(float64(Unconnected))
		metrics.ConnectAttempts.WithLabelValues("failed").Inc()
		return err
	}

	var subnetPubKey, networkPubKeySet string
	var epoch int64
	for _, v := range result.Values {
		data, err := json.Marshal(v)
		if err != nil {
			continue
		}
		var resp nodeHandshakeResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			continue
		}
		if subnetPubKey == "" && resp.SubnetPubKey != "" {
			subnetPubKey = resp.SubnetPubKey
		}
		if networkPubKeySet == "" && resp.NetworkPubKeySet != "" {
			networkPubKeySet = resp.NetworkPubKeySet
		}
		if resp.EpochNumber > epoch {
			epoch = resp.EpochNumber
		}
	}

	if subnetPubKey == "" {
		c.mu.Lock()
		c.state = Unconnected
		c.mu.Unlock()
		metrics.ClientState.Set(float64(Unconnected))
		metrics.ConnectAttempts.WithLabelValues("failed").Inc()
		return literr.New(literr.LitNodeClientNotReady, "client: no node returned a subnetPubKey")
	}

	subnetBytes, _ := hex.DecodeString(trimHexPrefix(subnetPubKey))
	networkBytes, _ := hex.DecodeString(trimHexPrefix(networkPubKeySet))

	var blockhash string
	if c.chainHead != nil {
		blockhash, _ = c.chainHead.LatestBlockhash(ctx)
	}

	c.mu.Lock()
	c.nodeSet = NodeSet{
		SubnetPubKey:       subnetBytes,
		NetworkPubKeySet:   networkBytes,
		MinNodeCount:       c.cfg.Nodes.MinNodeCount,
		CurrentEpochNumber: epoch,
		LatestBlockhash:    blockhash,
		ConnectedNodes:     c.cfg.Nodes.URLs,
	}
	c.state = Ready
	c.mu.Unlock()
	metrics.ClientState.Set(float64(Ready))
	metrics.ConnectAttempts.WithLabelValues("ready").Inc()

	c.log.Info("client: connected", logger.Int("connectedNodes", len(c.cfg.Nodes.URLs)), logger.Int("epoch", int(epoch)))
	return nil
}

// Disconnect resets the client to Unconnected, clearing the NodeSet.
// Subsequent calls fail with literr.ErrLitNodeClientNotReady until
// Connect succeeds again.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.state = Unconnected
	c.nodeSet = NodeSet{}
	c.mu.Unlock()
	metrics.ClientState.Set(float64(Unconnected))
}

// ensureReady fails fast per spec.md §4 "Any request made while not
// Ready fails with LitNodeClientNotReady."
func (c *Client) ensureReady() error {
	if c.State() != Ready {
		return literr.ErrLitNodeClientNotReady
	}
	return nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
